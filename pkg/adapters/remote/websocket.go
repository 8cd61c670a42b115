package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aretw0/quire/pkg/core"
)

// ErrRejected is returned when the remote answers with a negative ack.
var ErrRejected = errors.New("remote rejected operation")

// WebSocket pushes operations as JSON text frames over one lazily dialed
// connection and waits for an Ack after each.
type WebSocket struct {
	URL     string
	Timeout time.Duration

	mu     sync.Mutex
	conn   *websocket.Conn
	dialer *websocket.Dialer
	logger *slog.Logger
}

// NewWebSocket creates a client for url (ws:// or wss://).
func NewWebSocket(url string, logger *slog.Logger) *WebSocket {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocket{
		URL:     url,
		Timeout: 10 * time.Second,
		dialer:  websocket.DefaultDialer,
		logger:  logger,
	}
}

// Push sends op and waits for its acknowledgement. A transport error drops
// the connection so the next Push redials.
func (w *WebSocket) Push(ctx context.Context, op core.SyncOperation) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		conn, _, err := w.dialer.DialContext(ctx, w.URL, nil)
		if err != nil {
			return fmt.Errorf("dial %s: %w", w.URL, err)
		}
		w.conn = conn
		w.logger.Debug("remote connected", "url", w.URL)
	}

	deadline := time.Now().Add(w.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = w.conn.SetWriteDeadline(deadline)
	_ = w.conn.SetReadDeadline(deadline)

	if err := w.conn.WriteJSON(op); err != nil {
		w.dropLocked()
		return fmt.Errorf("send: %w", err)
	}
	var ack Ack
	if err := w.conn.ReadJSON(&ack); err != nil {
		w.dropLocked()
		return fmt.Errorf("read ack: %w", err)
	}
	if !ack.OK {
		return fmt.Errorf("%w: %s", ErrRejected, ack.Error)
	}
	return nil
}

// Close closes the connection, if any.
func (w *WebSocket) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return nil
	}
	_ = w.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	err := w.conn.Close()
	w.conn = nil
	return err
}

func (w *WebSocket) dropLocked() {
	if w.conn != nil {
		_ = w.conn.Close()
		w.conn = nil
	}
}

var _ core.Remote = (*WebSocket)(nil)
