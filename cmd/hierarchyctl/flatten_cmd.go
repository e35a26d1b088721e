package main

import (
	"github.com/spf13/cobra"

	"partnersearch/internal/hierarchy"
)

type flattenOutput struct {
	DUNS     string                `json:"duns"`
	Entities int                   `json:"entity_count"`
	Rows     []hierarchy.ExportRow `json:"rows"`
}

func newFlattenCmd(a *app) *cobra.Command {
	var duns string

	cmd := &cobra.Command{
		Use:   "flatten",
		Short: "Print the flattened export rows as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := a.service.Flatten(cmd.Context(), duns)
			if err != nil {
				return err
			}
			return writeJSON(a.out, flattenOutput{DUNS: rows[0].DUNS, Entities: len(rows), Rows: rows})
		},
	}

	cmd.Flags().StringVar(&duns, "duns", "", "D-U-N-S number of the company (required)")
	_ = cmd.MarkFlagRequired("duns")
	return cmd
}
