package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/SscSPs/xero_import_app/internal/core/statement"
)

func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <statement.csv>",
		Short: "Print the parsed statement lines as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readStatement(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), lines)
		},
	}
}

func readStatement(path string) ([]domain.StatementLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	lines, err := statement.ParseReader(f)
	if err != nil {
		return nil, fmt.Errorf("parsing statement: %w", err)
	}
	return lines, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
