// Package statement parses the bank statement-lines CSV exported from Xero.
//
// An export may hold several bank accounts. Each section is announced by one
// or two comma-free lines (account name, then optionally account number),
// followed by a "Date,Payee,..." header and the data rows.
package statement

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

const (
	headerPrefix     = "Date,Payee,"
	metaHeaderPrefix = "Date,"
	minFields        = 5
)

var dataRowPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2},`)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse converts the full export text into statement lines. It never fails:
// rows it cannot interpret are skipped.
func Parse(text string) []domain.StatementLine {
	var (
		lines         []domain.StatementLine
		accountName   string
		accountNumber string
		inDataSection bool
	)

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if !strings.Contains(line, ",") && !strings.HasPrefix(line, metaHeaderPrefix) {
			if accountName == "" || inDataSection {
				accountName = line
				accountNumber = ""
				inDataSection = false
			} else if accountNumber == "" {
				accountNumber = line
			}
			continue
		}

		if strings.HasPrefix(line, headerPrefix) {
			inDataSection = true
			continue
		}

		if !inDataSection || !dataRowPattern.MatchString(line) {
			continue
		}

		fields := SplitFields(line)
		if len(fields) < minFields {
			continue
		}
		lines = append(lines, domain.StatementLine{
			BankAccountName:   accountName,
			BankAccountNumber: accountNumber,
			Date:              fields[0],
			Payee:             fields[1],
			Particulars:       fields[2],
			Spent:             ParseAmount(fields[3]),
			Received:          ParseAmount(fields[4]),
			Tax:               optionalField(fields, 5),
			Comments:          optionalField(fields, 6),
		})
	}

	return lines
}

// ParseReader reads r fully and parses it. A leading UTF-8 byte order mark is dropped.
func ParseReader(r io.Reader) ([]domain.StatementLine, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	return Parse(string(data)), nil
}

// SplitFields splits a CSV row on commas outside double quotes.
// Quotes toggle the quoted state and are dropped; each field is trimmed.
func SplitFields(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(fields, strings.TrimSpace(current.String()))
}

// ParseAmount parses a money cell. Blank or non-numeric input yields nil;
// thousands separators are ignored.
func ParseAmount(s string) *decimal.Decimal {
	cleaned := strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if cleaned == "" {
		return nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	return &d
}

func optionalField(fields []string, i int) *string {
	if i >= len(fields) || fields[i] == "" {
		return nil
	}
	v := fields[i]
	return &v
}
