package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/document"
)

var (
	pageWorkspace string
	pageIcon      string
	pageTemplate  string
	pageMatch     string
	pageJSON      bool
)

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Create, list, rename and delete pages",
}

var pageCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a page in the current (or given) workspace",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withApp(func(ctx context.Context, app *quire.App) error {
			docs := app.Documents
			ws := pageWorkspace
			if ws == "" {
				ws = docs.CurrentWorkspace()
			}

			var id string
			if pageTemplate != "" {
				var err error
				if id, err = docs.CreatePageFromTemplate(ws, pageTemplate); err != nil {
					return err
				}
				docs.UpdatePage(id, document.PagePatch{Title: &args[0]})
			} else {
				id = docs.CreatePage(ws, document.PageDraft{Title: args[0], Icon: pageIcon})
			}
			if id == "" {
				return fmt.Errorf("workspace %q not found", ws)
			}
			if pageTemplate != "" && pageIcon != "" {
				docs.UpdatePage(id, document.PagePatch{Icon: &pageIcon})
			}
			fmt.Println(id)
			return nil
		})
	},
}

var pageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pages, optionally filtered by a title glob",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withApp(func(ctx context.Context, app *quire.App) error {
			pattern := pageMatch
			if pattern == "" {
				pattern = "**"
			}
			pages, err := app.Documents.FindPages(pattern)
			if err != nil {
				return err
			}

			if pageJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(pages)
			}

			current, _ := app.Documents.CurrentPage()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tBLOCKS\tUPDATED")
			for _, p := range pages {
				marker := ""
				if p.ID == current.ID {
					marker = " *"
				}
				fmt.Fprintf(w, "%s%s\t%s %s\t%d\t%s\n", p.ID, marker, p.Icon, p.Title, countBlocks(p.Blocks), p.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		})
	},
}

var pageRenameCmd = &cobra.Command{
	Use:   "rename <page-id> <title>",
	Short: "Rename a page",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		withApp(func(ctx context.Context, app *quire.App) error {
			if _, ok := app.Documents.Page(args[0]); !ok {
				return fmt.Errorf("page %q not found", args[0])
			}
			app.Documents.UpdatePage(args[0], document.PagePatch{Title: &args[1]})
			return nil
		})
	},
}

var pageDeleteCmd = &cobra.Command{
	Use:   "delete <page-id>",
	Short: "Delete a page and its blocks",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withApp(func(ctx context.Context, app *quire.App) error {
			if _, ok := app.Documents.Page(args[0]); !ok {
				return fmt.Errorf("page %q not found", args[0])
			}
			app.Documents.DeletePage(args[0])
			fmt.Println("Deleted", args[0])
			return nil
		})
	},
}

func countBlocks(blocks []core.Block) int {
	n := len(blocks)
	for _, b := range blocks {
		n += countBlocks(b.Children)
	}
	return n
}

func init() {
	pageCreateCmd.Flags().StringVarP(&pageWorkspace, "workspace", "w", "", "Workspace ID (default: current)")
	pageCreateCmd.Flags().StringVar(&pageIcon, "icon", "", "Page icon")
	pageCreateCmd.Flags().StringVarP(&pageTemplate, "template", "t", "", "Template ID to start from")
	pageListCmd.Flags().StringVarP(&pageMatch, "match", "m", "", "Glob over page titles (e.g. 'Meeting*')")
	pageListCmd.Flags().BoolVar(&pageJSON, "json", false, "Output as JSON")

	pageCmd.AddCommand(pageCreateCmd, pageListCmd, pageRenameCmd, pageDeleteCmd)
	rootCmd.AddCommand(pageCmd)
}
