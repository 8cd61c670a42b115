package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/document"
)

var (
	blockType     string
	blockEditType string
	blockContent  string
)

var blockCmd = &cobra.Command{
	Use:   "block",
	Short: "Add, edit, remove and reorder blocks",
}

var blockAddCmd = &cobra.Command{
	Use:   "add <page-id> <content>",
	Short: "Append a block to a page",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		withApp(func(ctx context.Context, app *quire.App) error {
			id := app.Documents.CreateBlock(args[0], document.BlockDraft{
				Type:    core.BlockType(blockType),
				Content: args[1],
			})
			if id == "" {
				return fmt.Errorf("page %q not found", args[0])
			}
			fmt.Println(id)
			return nil
		})
	},
}

var blockEditCmd = &cobra.Command{
	Use:   "edit <block-id>",
	Short: "Change the content or type of a block",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withApp(func(ctx context.Context, app *quire.App) error {
			if _, ok := app.Documents.Block(args[0]); !ok {
				return fmt.Errorf("block %q not found", args[0])
			}
			var patch document.BlockPatch
			if cmd.Flags().Changed("content") {
				patch.Content = &blockContent
			}
			if cmd.Flags().Changed("type") {
				t := core.BlockType(blockEditType)
				patch.Type = &t
			}
			if patch.Content == nil && patch.Type == nil {
				return fmt.Errorf("nothing to change: pass --content or --type")
			}
			app.Documents.UpdateBlock(args[0], patch)
			return nil
		})
	},
}

var blockRmCmd = &cobra.Command{
	Use:   "rm <block-id>",
	Short: "Remove a block and its children",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withApp(func(ctx context.Context, app *quire.App) error {
			if _, ok := app.Documents.Block(args[0]); !ok {
				return fmt.Errorf("block %q not found", args[0])
			}
			app.Documents.DeleteBlock(args[0])
			return nil
		})
	},
}

var blockMvCmd = &cobra.Command{
	Use:   "mv <block-id> <index>",
	Short: "Move a top-level block to a new position on its page",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			fatal("Invalid index", err)
		}
		withApp(func(ctx context.Context, app *quire.App) error {
			pageID, ok := pageOfBlock(app.Documents.Snapshot(), args[0])
			if !ok {
				return fmt.Errorf("top-level block %q not found", args[0])
			}
			app.Documents.SetCurrentPage(pageID)
			app.Documents.MoveBlock(args[0], index)
			return nil
		})
	},
}

// pageOfBlock finds the page holding blockID among its top-level blocks.
func pageOfBlock(snap core.Snapshot, blockID string) (string, bool) {
	for _, ws := range snap.Workspaces {
		for _, p := range ws.Pages {
			for _, b := range p.Blocks {
				if b.ID == blockID {
					return p.ID, true
				}
			}
		}
	}
	return "", false
}

func init() {
	blockAddCmd.Flags().StringVarP(&blockType, "type", "t", string(core.BlockText), "Block type (text, heading, todo, code, quote)")
	blockEditCmd.Flags().StringVarP(&blockEditType, "type", "t", "", "New block type")
	blockEditCmd.Flags().StringVarP(&blockContent, "content", "c", "", "New content")

	blockCmd.AddCommand(blockAddCmd, blockEditCmd, blockRmCmd, blockMvCmd)
	rootCmd.AddCommand(blockCmd)
}
