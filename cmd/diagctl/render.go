package main

import (
	"fmt"

	"codeberg.org/mutker/diagctl/internal/render"
	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the latest report to HTML or PDF",
		RunE:  runRender,
	}

	cmd.Flags().String("format", render.FormatHTML, "output format (html or pdf)")
	cmd.Flags().String("export-dir", ".", "directory to write the rendered report")

	return cmd
}

func runRender(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	exportDir, err := cmd.Flags().GetString("export-dir")
	if err != nil {
		return err
	}

	path, err := render.ExportLatest(cmd.Context(), cfg.OutputDir, exportDir, format)
	if err != nil {
		return err
	}

	fmt.Println(path)

	return nil
}
