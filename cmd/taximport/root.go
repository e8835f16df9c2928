package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "taximport",
	Short: "Import tax documents into typed ledger entries",
	Long: `taximport parses structured files (CSV, XLSX, JSON) and scanned
documents (PDF, images), maps their fields onto a per-type schema,
validates the values, and emits typed ledger entries as JSON.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}
