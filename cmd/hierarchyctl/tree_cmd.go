package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"partnersearch/internal/hierarchy"
)

func newTreeCmd(a *app) *cobra.Command {
	var (
		duns   string
		mode   string
		query  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the family tree of a company",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, ok := hierarchy.ParseViewMode(mode)
			if !ok {
				return fmt.Errorf("invalid --mode %q: must be full or downward", mode)
			}
			view, err := a.service.Tree(cmd.Context(), duns, m, query)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(a.out, view)
			}
			return printTree(a, view)
		},
	}

	cmd.Flags().StringVar(&duns, "duns", "", "D-U-N-S number of the company (required)")
	cmd.Flags().StringVar(&mode, "mode", string(hierarchy.ViewFull), "View mode (full, downward)")
	cmd.Flags().StringVar(&query, "q", "", "Filter members by name, duns or location")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tree view as JSON")
	_ = cmd.MarkFlagRequired("duns")
	return cmd
}

func printTree(a *app, view *hierarchy.TreeView) error {
	if view.Empty {
		_, err := fmt.Fprintf(a.out, "no members found for %s (%s)\n", view.DUNS, view.Mode)
		return err
	}
	for _, m := range view.Members {
		depth := 0
		if m.ExportLevel != nil {
			depth = *m.ExportLevel - 1
		}
		marker := ""
		if m.DUNS == view.DUNS {
			marker = " *"
		}
		if _, err := fmt.Fprintf(a.out, "%s%s  %s%s\n", strings.Repeat("  ", max(depth, 0)), m.DUNS, m.PrimaryName, marker); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(a.out, "%d members (%s)\n", view.Total, view.Mode)
	return err
}
