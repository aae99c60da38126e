package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SscSPs/xero_import_app/internal/core/coding"
	"github.com/SscSPs/xero_import_app/internal/core/domain"
)

// codedLine is one statement line with the rule outcome.
type codedLine struct {
	Line        domain.StatementLine     `json:"line"`
	Matched     bool                     `json:"matched"`
	Rule        string                   `json:"rule,omitempty"`
	Status      domain.TransactionStatus `json:"status"`
	AccountCode string                   `json:"accountCode,omitempty"`
	AccountName string                   `json:"accountName,omitempty"`
}

var codeKeys = []struct {
	key   string
	usage string
}{
	{"subscriptions", "account code for software subscriptions"},
	{"telephone_internet", "account code for telephone and internet"},
	{"interest_expense", "account code for interest charges"},
	{"bank_fees", "account code for bank fees"},
	{"wages", "account code for wages"},
}

func newCodeCommand() *cobra.Command {
	v := viper.New()
	var codesFile string

	cmd := &cobra.Command{
		Use:   "code <statement.csv>",
		Short: "Run the coding rules over a statement and print the outcome per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if codesFile != "" {
				v.SetConfigFile(codesFile)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("reading codes file: %w", err)
				}
			}

			lines, err := readStatement(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), codeLines(lines, codesFrom(v)))
		},
	}

	cmd.Flags().StringVar(&codesFile, "codes-file", "", "YAML, JSON or TOML file with account code overrides")
	defaults := coding.DefaultCodes()
	defaultFor := map[string]string{
		"subscriptions":      defaults.Subscriptions,
		"telephone_internet": defaults.TelephoneInternet,
		"interest_expense":   defaults.InterestExpense,
		"bank_fees":          defaults.BankFees,
		"wages":              defaults.Wages,
	}
	for _, k := range codeKeys {
		flag := flagName(k.key)
		cmd.Flags().String(flag, defaultFor[k.key], k.usage)
		_ = v.BindPFlag(k.key, cmd.Flags().Lookup(flag))
	}

	return cmd
}

// flagName turns bank_fees into bank-fees-code.
func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-") + "-code"
}

// codesFrom reads codes with flag > file > default precedence.
func codesFrom(v *viper.Viper) coding.Codes {
	return coding.Codes{
		Subscriptions:     v.GetString("subscriptions"),
		TelephoneInternet: v.GetString("telephone_internet"),
		InterestExpense:   v.GetString("interest_expense"),
		BankFees:          v.GetString("bank_fees"),
		Wages:             v.GetString("wages"),
	}
}

func codeLines(lines []domain.StatementLine, codes coding.Codes) []codedLine {
	engine := coding.NewEngine(codes)
	out := make([]codedLine, 0, len(lines))
	for _, l := range lines {
		row := codedLine{Line: l, Status: domain.StatusPending}
		if s, ok := engine.Evaluate(l.Payee, l.Particulars, nil); ok {
			row.Matched = true
			row.Rule = s.Rule
			row.Status = s.Status
			row.AccountCode = s.AccountCode
			row.AccountName = s.AccountName
		}
		out = append(out, row)
	}
	return out
}
