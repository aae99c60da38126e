package commands_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/xero_import_app/internal/commands"
)

const statementCSV = `Business Cheque Account
06-0123-0456789-00
Date,Payee,Particulars,Spent,Received,Tax,Comments
2025-02-03,OPENAI,CHATGPT SUBSCRIPTION,32.50,,GST,
2025-02-04,ACME LTD,INV 1001,,"1,234.50",,
2025-02-05,J SMITH,WAGE FEB,900.00,
`

func writeStatement(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte(statementCSV), 0o644))
	return path
}

func runXia(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := commands.NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

type codedRow struct {
	Matched     bool   `json:"matched"`
	Rule        string `json:"rule"`
	Status      string `json:"status"`
	AccountCode string `json:"accountCode"`
	AccountName string `json:"accountName"`
	Line        struct {
		Payee string `json:"payee"`
	} `json:"line"`
}

func TestParse_PrintsLines(t *testing.T) {
	out, err := runXia(t, "parse", writeStatement(t))
	require.NoError(t, err)

	var lines []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &lines))
	require.Len(t, lines, 3)
	assert.Equal(t, "OPENAI", lines[0]["payee"])
	assert.Equal(t, "06-0123-0456789-00", lines[0]["bankAccountNumber"])
}

func TestParse_MissingFile(t *testing.T) {
	_, err := runXia(t, "parse", filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestCode_DefaultCodes(t *testing.T) {
	out, err := runXia(t, "code", writeStatement(t))
	require.NoError(t, err)

	var rows []codedRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)

	assert.True(t, rows[0].Matched)
	assert.Equal(t, "subscriptions", rows[0].Rule)
	assert.Equal(t, "461", rows[0].AccountCode)
	assert.Equal(t, "coded", rows[0].Status)

	assert.False(t, rows[1].Matched)
	assert.Equal(t, "pending", rows[1].Status)

	assert.Equal(t, "wages", rows[2].Rule)
	assert.Equal(t, "477", rows[2].AccountCode)
}

func TestCode_Overrides(t *testing.T) {
	codes := filepath.Join(t.TempDir(), "codes.yaml")
	require.NoError(t, os.WriteFile(codes, []byte("subscriptions: \"489\"\nwages: \"470\"\n"), 0o644))

	out, err := runXia(t, "code", writeStatement(t), "--codes-file", codes, "--wages-code", "999")
	require.NoError(t, err)

	var rows []codedRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "489", rows[0].AccountCode, "file overrides default")
	assert.Equal(t, "999", rows[2].AccountCode, "flag overrides file")
}

func TestCode_RequiresFile(t *testing.T) {
	_, err := runXia(t, "code")
	assert.Error(t, err)
}
