package main

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/pkg/document"
)

var (
	commentUser string
	commentAll  bool
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Discuss blocks",
}

var commentAddCmd = &cobra.Command{
	Use:   "add <block-id> <text>",
	Short: "Comment on a block",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		name := commentUser
		if name == "" {
			name = currentUser()
		}
		withApp(func(ctx context.Context, app *quire.App) error {
			id := app.Documents.AddComment(args[0], document.CommentDraft{
				UserID:   name,
				UserName: name,
				Content:  args[1],
			})
			if id == "" {
				return fmt.Errorf("block %q not found", args[0])
			}
			fmt.Println(id)
			return nil
		})
	},
}

var commentListCmd = &cobra.Command{
	Use:   "list <block-id>",
	Short: "List the open comments of a block",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withApp(func(ctx context.Context, app *quire.App) error {
			block, ok := app.Documents.Block(args[0])
			if !ok {
				return fmt.Errorf("block %q not found", args[0])
			}
			comments := app.Documents.BlockComments(args[0])
			if commentAll {
				comments = block.Comments
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tAUTHOR\tRESOLVED\tTEXT")
			for _, c := range comments {
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", c.ID, c.UserName, c.Resolved, c.Content)
			}
			return w.Flush()
		})
	},
}

var commentResolveCmd = &cobra.Command{
	Use:   "resolve <block-id> <comment-id>",
	Short: "Mark a comment as resolved",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		withApp(func(ctx context.Context, app *quire.App) error {
			block, ok := app.Documents.Block(args[0])
			if !ok {
				return fmt.Errorf("block %q not found", args[0])
			}
			for _, c := range block.Comments {
				if c.ID == args[1] {
					app.Documents.ResolveComment(args[0], args[1])
					return nil
				}
			}
			return fmt.Errorf("comment %q not found on block %q", args[1], args[0])
		})
	},
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "anonymous"
}

func init() {
	commentAddCmd.Flags().StringVarP(&commentUser, "user", "u", "", "Author name (default: OS user)")
	commentListCmd.Flags().BoolVarP(&commentAll, "all", "a", false, "Include resolved comments")

	commentCmd.AddCommand(commentAddCmd, commentListCmd, commentResolveCmd)
	rootCmd.AddCommand(commentCmd)
}
