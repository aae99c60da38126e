package services

import (
	"github.com/SscSPs/xero_import_app/internal/core/coding"
	"github.com/SscSPs/xero_import_app/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/xero_import_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/xero_import_app/internal/core/ports/services"
	"github.com/SscSPs/xero_import_app/internal/platform/config"
)

// Gateways groups the outbound adapters the services depend on.
// Advisor and Archive are optional.
type Gateways struct {
	Accounting gateways.AccountingGateway
	Payroll    gateways.PayrollGateway
	OAuth      gateways.OAuthGateway
	Advisor    gateways.MatchAdvisor
	Archive    gateways.StatementArchive
}

// CodesFromConfig reads the coding rule account codes from configuration.
func CodesFromConfig(cfg *config.Config) coding.Codes {
	return coding.Codes{
		Subscriptions:     cfg.SubscriptionsCode,
		TelephoneInternet: cfg.TelephoneInternetCode,
		InterestExpense:   cfg.InterestExpenseCode,
		BankFees:          cfg.BankFeesCode,
		Wages:             cfg.WagesCode,
	}
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, gw Gateways) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Credential service first since every Xero call authorizes through it
	container.Credential = NewCredentialService(cfg, repos.CredentialRepo, gw.OAuth)

	var importOptions []ImportServiceOption
	if gw.Archive != nil {
		importOptions = append(importOptions, WithStatementArchive(gw.Archive))
	}
	container.Import = NewImportService(repos.StagedTransactionRepo, importOptions...)

	container.Coding = NewCodingService(
		repos.StagedTransactionRepo,
		coding.NewEngine(CodesFromConfig(cfg)),
		container.Credential,
		gw.Accounting,
	)
	container.Ledger = NewLedgerService(repos.StagedTransactionRepo, container.Credential, gw.Accounting)
	container.Payroll = NewPayrollService(
		repos.StagedTransactionRepo,
		container.Credential,
		gw.Payroll,
		WithPayRunDeepLink(cfg.XeroDeepLinkURL),
	)
	container.Advisor = NewAdvisorService(gw.Advisor)

	return container
}
