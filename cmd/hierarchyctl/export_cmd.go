package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	hierarchyservice "partnersearch/internal/hierarchy/service"
)

type exportOutput struct {
	File     string `json:"file"`
	Entities int    `json:"entity_count"`
	Bytes    int    `json:"bytes"`
}

func newExportCmd(a *app) *cobra.Command {
	var (
		duns string
		out  string
		lang string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the hierarchy workbook for a company",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := a.service.Export(cmd.Context(), hierarchyservice.ExportRequest{DUNS: duns, Language: lang})
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = result.FileName
			} else if isDir(path) {
				path = filepath.Join(path, result.FileName)
			}

			f, err := openOutput(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			if _, err := f.Write(result.Data); err != nil {
				_ = f.Close()
				return fmt.Errorf("write %s: %w", path, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", path, err)
			}
			return writeJSON(a.out, exportOutput{File: path, Entities: result.Entities, Bytes: len(result.Data)})
		},
	}

	cmd.Flags().StringVar(&duns, "duns", "", "D-U-N-S number of the company (required)")
	cmd.Flags().StringVar(&out, "out", "", "Output file or directory (default: generated file name)")
	cmd.Flags().StringVar(&lang, "lang", hierarchyservice.LanguageFrench, "Workbook language (fr, en)")
	_ = cmd.MarkFlagRequired("duns")
	return cmd
}
