// Package remote holds the backends the pending sync queue is replayed
// against.
package remote

import (
	"context"
	"log/slog"

	"github.com/aretw0/quire/pkg/core"
)

// Ack is the reply a remote sends for each pushed operation.
type Ack struct {
	ID    int64  `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Nop acknowledges every operation without sending it anywhere.
type Nop struct {
	Logger *slog.Logger
}

// Push logs op and reports success.
func (n Nop) Push(ctx context.Context, op core.SyncOperation) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("sync placeholder", "action", op.Action, "type", op.Type, "id", op.EntityID)
	return ctx.Err()
}

var _ core.Remote = Nop{}
