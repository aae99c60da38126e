package xero

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/SscSPs/xero_import_app/internal/core/ports/gateways"
	"github.com/shopspring/decimal"
)

// AccountingClient implements gateways.AccountingGateway.
type AccountingClient struct {
	*Client
}

// NewAccountingClient wraps c with the accounting endpoints.
func NewAccountingClient(c *Client) *AccountingClient {
	return &AccountingClient{Client: c}
}

var _ gateways.AccountingGateway = (*AccountingClient)(nil)

type xeroAccount struct {
	AccountID         string `json:"AccountID"`
	Code              string `json:"Code"`
	Name              string `json:"Name"`
	Type              string `json:"Type"`
	Status            string `json:"Status"`
	BankAccountNumber string `json:"BankAccountNumber"`
	BankAccountType   string `json:"BankAccountType"`
	CurrencyCode      string `json:"CurrencyCode"`
}

type accountsResponse struct {
	Accounts []xeroAccount `json:"Accounts"`
}

func (c *AccountingClient) fetchAccounts(ctx context.Context, auth domain.XeroAuth, where string) ([]xeroAccount, error) {
	var query url.Values
	if where != "" {
		query = url.Values{"where": {where}}
	}
	var resp accountsResponse
	if err := c.do(ctx, auth, http.MethodGet, accountingPath+"Accounts", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

// ListAccounts returns the whole chart of accounts.
func (c *AccountingClient) ListAccounts(ctx context.Context, auth domain.XeroAuth) ([]domain.LedgerAccount, error) {
	accounts, err := c.fetchAccounts(ctx, auth, "")
	if err != nil {
		return nil, err
	}
	out := make([]domain.LedgerAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, domain.LedgerAccount{
			AccountID: a.AccountID,
			Code:      a.Code,
			Name:      a.Name,
			Type:      domain.AccountType(a.Type),
			Status:    a.Status,
		})
	}
	return out, nil
}

// ListBankAccounts returns accounts of type BANK.
func (c *AccountingClient) ListBankAccounts(ctx context.Context, auth domain.XeroAuth) ([]domain.BankAccount, error) {
	accounts, err := c.fetchAccounts(ctx, auth, `Type=="BANK"`)
	if err != nil {
		return nil, err
	}
	out := make([]domain.BankAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, domain.BankAccount{
			AccountID:       a.AccountID,
			Name:            a.Name,
			Code:            a.Code,
			AccountNumber:   a.BankAccountNumber,
			BankAccountType: a.BankAccountType,
			CurrencyCode:    a.CurrencyCode,
			Status:          a.Status,
		})
	}
	return out, nil
}

// Amounts are sent as JSON numbers; decimal.Decimal would marshal them quoted.
type lineItemPayload struct {
	Description string      `json:"Description"`
	Quantity    json.Number `json:"Quantity"`
	UnitAmount  json.Number `json:"UnitAmount"`
	AccountCode string      `json:"AccountCode"`
}

type bankTransactionPayload struct {
	Type        string            `json:"Type"`
	BankAccount map[string]string `json:"BankAccount"`
	Date        string            `json:"Date"`
	LineItems   []lineItemPayload `json:"LineItems"`
	Reference   string            `json:"Reference,omitempty"`
	Contact     map[string]string `json:"Contact,omitempty"`
}

type xeroBankTransaction struct {
	BankTransactionID string `json:"BankTransactionID"`
	Type              string `json:"Type"`
	Status            string `json:"Status"`
	Date              string `json:"Date"`
	Reference         string `json:"Reference"`
	IsReconciled      bool   `json:"IsReconciled"`
	BankAccount       struct {
		AccountID string `json:"AccountID"`
		Name      string `json:"Name"`
		Code      string `json:"Code"`
	} `json:"BankAccount"`
	Contact *struct {
		ContactID string `json:"ContactID"`
		Name      string `json:"Name"`
	} `json:"Contact"`
	LineItems []struct {
		Description string          `json:"Description"`
		Quantity    decimal.Decimal `json:"Quantity"`
		UnitAmount  decimal.Decimal `json:"UnitAmount"`
		LineAmount  decimal.Decimal `json:"LineAmount"`
		AccountCode string          `json:"AccountCode"`
		TaxType     string          `json:"TaxType"`
	} `json:"LineItems"`
	SubTotal     decimal.Decimal `json:"SubTotal"`
	TotalTax     decimal.Decimal `json:"TotalTax"`
	Total        decimal.Decimal `json:"Total"`
	CurrencyCode string          `json:"CurrencyCode"`
}

type bankTransactionsEnvelope struct {
	BankTransactions []xeroBankTransaction `json:"BankTransactions"`
}

// CreateBankTransaction creates one SPEND or RECEIVE transaction with a single line item.
func (c *AccountingClient) CreateBankTransaction(ctx context.Context, auth domain.XeroAuth, draft domain.BankTransactionDraft) (string, error) {
	payload := bankTransactionPayload{
		Type:        string(draft.Type),
		BankAccount: map[string]string{"AccountID": draft.BankAccountID},
		Date:        draft.Date.Format(domain.DateLayout),
		LineItems: []lineItemPayload{{
			Description: draft.Description,
			Quantity:    json.Number("1"),
			UnitAmount:  json.Number(draft.Amount.Abs().StringFixed(2)),
			AccountCode: draft.AccountCode,
		}},
		Reference: draft.Reference,
	}
	if draft.ContactName != "" {
		payload.Contact = map[string]string{"Name": draft.ContactName}
	}

	body := map[string][]bankTransactionPayload{"BankTransactions": {payload}}
	var resp bankTransactionsEnvelope
	if err := c.do(ctx, auth, http.MethodPut, accountingPath+"BankTransactions", nil, body, &resp); err != nil {
		return "", err
	}
	if len(resp.BankTransactions) == 0 || resp.BankTransactions[0].BankTransactionID == "" {
		return "", errors.New("xero: response contained no bank transaction id")
	}
	return resp.BankTransactions[0].BankTransactionID, nil
}

// ListBankTransactions lists AUTHORISED transactions ordered newest first.
func (c *AccountingClient) ListBankTransactions(ctx context.Context, auth domain.XeroAuth, q domain.BankTransactionQuery, since time.Time) ([]domain.BankTransaction, error) {
	query := url.Values{
		"where": {bankTransactionsWhere(q, since)},
		"order": {"Date DESC"},
	}
	var resp bankTransactionsEnvelope
	if err := c.do(ctx, auth, http.MethodGet, accountingPath+"BankTransactions", query, nil, &resp); err != nil {
		return nil, err
	}

	out := make([]domain.BankTransaction, 0, len(resp.BankTransactions))
	for _, t := range resp.BankTransactions {
		out = append(out, toDomainBankTransaction(t))
	}
	return out, nil
}

func bankTransactionsWhere(q domain.BankTransactionQuery, since time.Time) string {
	where := `Status=="AUTHORISED"`
	if !q.IncludeAll {
		where += ` AND IsReconciled==false`
	}
	if !since.IsZero() {
		where += ` AND Date>=` + whereDate(since)
	}
	if q.BankAccountID != "" {
		where += fmt.Sprintf(` AND BankAccount.AccountID=Guid("%s")`, q.BankAccountID)
	}
	return where
}

func toDomainBankTransaction(t xeroBankTransaction) domain.BankTransaction {
	out := domain.BankTransaction{
		BankTransactionID: t.BankTransactionID,
		Type:              t.Type,
		Status:            t.Status,
		Date:              parseDate(t.Date),
		Reference:         t.Reference,
		IsReconciled:      t.IsReconciled,
		BankAccount: domain.BankAccountRef{
			AccountID: t.BankAccount.AccountID,
			Name:      t.BankAccount.Name,
			Code:      t.BankAccount.Code,
		},
		LineItems:    make([]domain.LineItem, 0, len(t.LineItems)),
		SubTotal:     t.SubTotal,
		TotalTax:     t.TotalTax,
		Total:        t.Total,
		CurrencyCode: t.CurrencyCode,
	}
	if t.Contact != nil {
		out.Contact = &domain.Contact{ContactID: t.Contact.ContactID, Name: t.Contact.Name}
	}
	for _, li := range t.LineItems {
		out.LineItems = append(out.LineItems, domain.LineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitAmount:  li.UnitAmount,
			LineAmount:  li.LineAmount,
			AccountCode: li.AccountCode,
			TaxType:     li.TaxType,
		})
	}
	return out
}

// ReconcileBankTransaction flags one transaction as reconciled.
func (c *AccountingClient) ReconcileBankTransaction(ctx context.Context, auth domain.XeroAuth, transactionID string) error {
	body := map[string][]map[string]any{
		"BankTransactions": {{
			"BankTransactionID": transactionID,
			"IsReconciled":      true,
		}},
	}
	return c.do(ctx, auth, http.MethodPost, accountingPath+"BankTransactions/"+url.PathEscape(transactionID), nil, body, nil)
}

// BankSummary fetches the BankSummary report between from and to, inclusive.
func (c *AccountingClient) BankSummary(ctx context.Context, auth domain.XeroAuth, from, to time.Time) (json.RawMessage, error) {
	query := url.Values{
		"fromDate": {from.Format(domain.DateLayout)},
		"toDate":   {to.Format(domain.DateLayout)},
	}
	raw, err := c.doRaw(ctx, auth, http.MethodGet, accountingPath+"Reports/BankSummary", query, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}
