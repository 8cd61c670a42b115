package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/aretw0/quire/pkg/adapters/remote"
	"github.com/aretw0/quire/pkg/core"
)

var serveAddr string

var serveRemoteCmd = &cobra.Command{
	Use:   "serve-remote",
	Short: "Run a development remote that acknowledges pushed operations",
	Long: `Start an HTTP server whose /sync endpoint speaks the WebSocket sync
protocol. Every received operation is printed and kept in memory; GET /ops
lists them. Point clients at it with --remote ws://<addr>/sync.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := serveRemote(ctx, serveAddr, slog.Default()); err != nil {
			fatal("Server failed", err)
		}
	},
}

// opLog keeps every operation the dev remote received.
type opLog struct {
	mu  sync.Mutex
	ops []core.SyncOperation
}

func (l *opLog) record(_ context.Context, op core.SyncOperation) error {
	l.mu.Lock()
	l.ops = append(l.ops, op)
	l.mu.Unlock()
	fmt.Printf("%s %s %s %s\n", op.Timestamp.Format(time.RFC3339), op.Action, op.Type, op.EntityID)
	return nil
}

func (l *opLog) list(w http.ResponseWriter, r *http.Request) {
	l.mu.Lock()
	ops := append([]core.SyncOperation(nil), l.ops...)
	l.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ops)
}

func newRemoteRouter(log *opLog, logger *slog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Handle("/sync", remote.NewSink(log.record, logger))
	router.HandleFunc("/ops", log.list).Methods("GET")
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")
	return router
}

func serveRemote(ctx context.Context, addr string, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           newRemoteRouter(&opLog{}, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		logger.Info("dev remote listening", "addr", addr, "endpoint", "ws://"+addr+"/sync")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		return nil
	})

	select {
	case <-ctx.Done():
		logger.Info("shutting down dev remote")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

func init() {
	serveRemoteCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8765", "Listen address")
	rootCmd.AddCommand(serveRemoteCmd)
}
