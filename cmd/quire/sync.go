package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire"
)

var syncWatch bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push queued offline edits to the remote",
	Long: `Replay the pending queue against the remote. With --watch, keep running
and replay it every time the offline marker disappears.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if syncWatch {
			watch()
			return
		}
		withApp(func(ctx context.Context, app *quire.App) error {
			if !app.Store.IsOnline() {
				return fmt.Errorf("offline: remove the marker or run 'quire online' first")
			}
			before, _ := app.Store.PendingCount(ctx)
			if err := app.Sync(ctx); err != nil {
				return err
			}
			fmt.Printf("Synced %d operation(s)\n", before)
			return nil
		})
	},
}

func watch() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, l := openApp(ctx)
	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", l.marker)

	err := app.Run(ctx)
	if cerr := app.Close(context.Background()); cerr != nil {
		err = errors.Join(err, cerr)
	}
	if err != nil {
		fatal("Watch failed", err)
	}
}

var onlineCmd = &cobra.Command{
	Use:   "online",
	Short: "Leave offline mode and replay queued edits",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		l, _, err := resolveLayout()
		if err != nil {
			fatal("Failed to load config", err)
		}
		if err := os.Remove(l.marker); err != nil && !os.IsNotExist(err) {
			fatal("Failed to remove offline marker", err)
		}
		withApp(func(ctx context.Context, app *quire.App) error {
			n, err := app.Store.PendingCount(ctx)
			if err != nil {
				return err
			}
			if err := app.Sync(ctx); err != nil {
				return err
			}
			fmt.Printf("Online. Replayed %d queued operation(s)\n", n)
			return nil
		})
	},
}

var offlineCmd = &cobra.Command{
	Use:   "offline",
	Short: "Enter offline mode: edits are queued until 'quire online'",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		l, _, err := resolveLayout()
		if err != nil {
			fatal("Failed to load config", err)
		}
		if err := os.MkdirAll(filepath.Dir(l.marker), 0755); err != nil {
			fatal("Failed to create marker dir", err)
		}
		if err := os.WriteFile(l.marker, nil, 0644); err != nil {
			fatal("Failed to create offline marker", err)
		}
		fmt.Println("Offline. Marker:", l.marker)
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncWatch, "watch", false, "Keep running and sync on every reconnect")
	rootCmd.AddCommand(syncCmd, onlineCmd, offlineCmd)
}
