package main

import (
	"os"

	"github.com/SscSPs/xero_import_app/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
