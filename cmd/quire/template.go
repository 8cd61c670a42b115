package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/pkg/document"
)

var (
	templateWorkspace string
	templateTitle     string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Inspect and apply page templates",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in and configured templates",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withApp(func(ctx context.Context, app *quire.App) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tBLOCKS\tDESCRIPTION")
			for _, t := range app.Documents.Templates() {
				fmt.Fprintf(w, "%s\t%s %s\t%d\t%s\n", t.ID, t.Icon, t.Name, len(t.Blocks), t.Description)
			}
			return w.Flush()
		})
	},
}

var templateApplyCmd = &cobra.Command{
	Use:   "apply <template-id>",
	Short: "Create a page from a template",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withApp(func(ctx context.Context, app *quire.App) error {
			ws := templateWorkspace
			if ws == "" {
				ws = app.Documents.CurrentWorkspace()
			}
			id, err := app.Documents.CreatePageFromTemplate(ws, args[0])
			if err != nil {
				return err
			}
			if id == "" {
				return fmt.Errorf("workspace %q not found", ws)
			}
			if templateTitle != "" {
				app.Documents.UpdatePage(id, document.PagePatch{Title: &templateTitle})
			}
			fmt.Println(id)
			return nil
		})
	},
}

func init() {
	templateApplyCmd.Flags().StringVarP(&templateWorkspace, "workspace", "w", "", "Workspace ID (default: current)")
	templateApplyCmd.Flags().StringVar(&templateTitle, "title", "", "Page title (default: template name)")

	templateCmd.AddCommand(templateListCmd, templateApplyCmd)
	rootCmd.AddCommand(templateCmd)
}
