package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire"
)

var (
	verbose       bool
	dataDir       string
	configPath    string
	remoteURL     string
	offlineMarker string
	noSandbox     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quire",
	Short: "A local-first block editor engine with offline sync",
	Long: `Quire keeps workspaces, pages and nested blocks in a local SQLite store.
Edits made while offline are queued and replayed once the remote is reachable.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "dir", "d", "", "Data directory (default: <root>/.quire)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <root>/quire.yaml)")
	rootCmd.PersistentFlags().StringVar(&remoteURL, "remote", "", "WebSocket endpoint pending edits are pushed to")
	rootCmd.PersistentFlags().StringVar(&offlineMarker, "offline-marker", "", "Marker file that forces offline mode (default: <dir>/offline)")
	rootCmd.PersistentFlags().BoolVar(&noSandbox, "unsafe", false, "Disable the dev sandbox under `go run`")
}

// layout is where a command reads its configuration and data from.
type layout struct {
	root    string
	dataDir string
	config  string
	marker  string
}

// resolveLayout applies flag > file > default precedence. The root is the
// nearest ancestor holding .quire or quire.yaml, else the working directory.
func resolveLayout() (layout, quire.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return layout{}, quire.Config{}, err
	}
	root, err := quire.FindRoot(cwd)
	if err != nil {
		root = cwd
	}

	l := layout{root: root, config: configPath}
	if l.config == "" {
		l.config = filepath.Join(root, "quire.yaml")
	}
	cfg, err := quire.LoadConfig(l.config)
	if err != nil {
		return l, cfg, err
	}

	switch {
	case dataDir != "":
		l.dataDir = dataDir
	case cfg.DataDir != "":
		l.dataDir = cfg.DataDir
		if !filepath.IsAbs(l.dataDir) {
			l.dataDir = filepath.Join(root, l.dataDir)
		}
	default:
		l.dataDir = filepath.Join(root, ".quire")
	}

	switch {
	case offlineMarker != "":
		l.marker = offlineMarker
	case cfg.OfflineMarker != "":
		l.marker = cfg.OfflineMarker
	default:
		l.marker = filepath.Join(l.dataDir, "offline")
	}
	return l, cfg, nil
}

// openApp boots the engine for the resolved layout.
func openApp(ctx context.Context) (*quire.App, layout) {
	l, cfg, err := resolveLayout()
	if err != nil {
		fatal("Failed to load config", err)
	}

	opts := append(cfg.Options(),
		quire.WithLogger(slog.Default()),
		quire.WithOfflineMarker(l.marker),
		quire.WithDevSafety(!noSandbox),
	)
	if remoteURL != "" {
		opts = append(opts, quire.WithRemoteURL(remoteURL))
	}

	app, err := quire.New(ctx, l.dataDir, opts...)
	if err != nil {
		fatal("Failed to open store", err)
	}
	return app, l
}

// withApp runs fn against a freshly booted engine and flushes every write
// before returning.
func withApp(fn func(ctx context.Context, app *quire.App) error) {
	ctx := context.Background()
	app, _ := openApp(ctx)

	runErr := fn(ctx, app)
	if err := app.Close(ctx); err != nil {
		fatal("Failed to flush changes", err)
	}
	if runErr != nil {
		fatal("Error", runErr)
	}
}
