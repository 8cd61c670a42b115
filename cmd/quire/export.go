package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/pkg/codec"
)

var (
	exportOut    string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump every workspace as YAML, JSON, Markdown or CSV",
	Long: `Render the whole tree. The format follows --format, else the extension
of --out (.yaml, .json, .md, .csv), else YAML.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withApp(func(ctx context.Context, app *quire.App) error {
			format := exportFormat
			if format == "" {
				format = exportOut
			}
			data, err := codec.ExporterFor(format).Export(app.Documents.Snapshot())
			if err != nil {
				return err
			}
			if exportOut == "" || exportOut == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}
			return os.WriteFile(exportOut, data, 0644)
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: stdout)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "yaml, json, md or csv")
	rootCmd.AddCommand(exportCmd)
}
