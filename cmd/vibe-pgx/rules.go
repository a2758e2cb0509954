package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-pgx/internal/output"
	"github.com/inodb/vibe-pgx/internal/pgx"
)

func newDrugsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "drugs [name]",
		Short: "List drugs with their gene, direction, and score table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drugs := pgx.Drugs()
			if len(args) == 1 {
				d, ok := pgx.DrugByName(args[0])
				if !ok {
					return fmt.Errorf("unknown drug %q", args[0])
				}
				drugs = []pgx.DrugRule{d}
			}
			switch format {
			case "json":
				return output.NewJSONWriter(cmd.OutOrStdout()).WriteValue(output.NewDrugDocs(drugs))
			case "tab":
				return output.WriteDrugTable(cmd.OutOrStdout(), drugs)
			}
			return usageError{fmt.Errorf("unknown output format %q", format)}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "tab", "Output format: tab, json")
	return cmd
}

func newGenesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "genes",
		Short: "List genes with the marker sites their phenotype is called from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			genes := output.NewGeneDocs()
			switch format {
			case "json":
				return output.NewJSONWriter(cmd.OutOrStdout()).WriteValue(genes)
			case "tab":
				return output.WriteGeneTable(cmd.OutOrStdout(), genes)
			}
			return usageError{fmt.Errorf("unknown output format %q", format)}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "tab", "Output format: tab, json")
	return cmd
}
