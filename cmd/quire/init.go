package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/quire"
)

var initWorkspace string

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a quire root in the current directory",
	Long: `Create .quire/ and a starter quire.yaml in the current directory, then
open the store so the default workspace exists.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			fatal("Failed to get CWD", err)
		}

		cfgPath := filepath.Join(cwd, "quire.yaml")
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			data, err := yaml.Marshal(quire.Config{
				DataDir:      ".quire",
				HistoryLimit: 50,
			})
			if err != nil {
				fatal("Failed to render config", err)
			}
			if err := os.WriteFile(cfgPath, data, 0644); err != nil {
				fatal("Failed to write config", err)
			}
		}
		if dataDir == "" {
			dataDir = filepath.Join(cwd, ".quire")
		}

		withApp(func(ctx context.Context, app *quire.App) error {
			if initWorkspace != "" {
				if ws, ok := app.Documents.Workspace(app.Documents.CurrentWorkspace()); ok {
					app.Documents.RenameWorkspace(ws.ID, initWorkspace)
				}
			}
			fmt.Println("Initialized quire store in", app.DataDir)
			return nil
		})
	},
}

func init() {
	initCmd.Flags().StringVar(&initWorkspace, "workspace", "", "Name of the first workspace")
	rootCmd.AddCommand(initCmd)
}
