package remote

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/aretw0/quire/pkg/core"
)

// HandlerFunc processes one received operation.
type HandlerFunc func(ctx context.Context, op core.SyncOperation) error

// Sink is the receiving end of the WebSocket remote. It acks every
// operation with the result of its handler.
type Sink struct {
	handle   HandlerFunc
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewSink creates a Sink. A nil handler accepts everything.
func NewSink(handle HandlerFunc, logger *slog.Logger) *Sink {
	if handle == nil {
		handle = func(context.Context, core.SyncOperation) error { return nil }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{
		handle: handle,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		logger: logger,
	}
}

func (s *Sink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	for {
		var op core.SyncOperation
		if err := conn.ReadJSON(&op); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				s.logger.Debug("sink read ended", "error", err)
			}
			return
		}

		ack := Ack{ID: op.ID, OK: true}
		if err := s.handle(r.Context(), op); err != nil {
			ack.OK = false
			ack.Error = err.Error()
		}
		if err := conn.WriteJSON(ack); err != nil {
			s.logger.Debug("sink write failed", "error", err)
			return
		}
	}
}
