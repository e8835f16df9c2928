package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerline/taxdoc-import/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [docType]",
	Short: "List document types, or show the fields of one type",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		types, err := schema.Types()
		if err != nil {
			return err
		}
		for _, t := range types {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		return nil
	}

	sch, err := schema.ForType(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (category: %s)\n", sch.Type, sch.Label, sch.Category)
	for _, f := range sch.Fields {
		required := ""
		if f.Required {
			required = " (required)"
		}
		box := ""
		if f.Box != "" {
			box = fmt.Sprintf(" [box %s]", f.Box)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %-26s %-8s %s%s%s\n", f.Name, f.Type, f.Label, box, required)
	}
	return nil
}
