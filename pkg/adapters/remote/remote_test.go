package remote_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quire/pkg/adapters/remote"
	"github.com/aretw0/quire/pkg/core"
)

func TestNop(t *testing.T) {
	err := remote.Nop{}.Push(context.Background(), core.SyncOperation{EntityID: "b1"})
	assert.NoError(t, err)
}

func TestWebSocket_PushAndAck(t *testing.T) {
	var (
		mu       sync.Mutex
		received []core.SyncOperation
	)
	sink := remote.NewSink(func(_ context.Context, op core.SyncOperation) error {
		mu.Lock()
		defer mu.Unlock()
		if op.EntityID == "bad" {
			return errors.New("unknown entity")
		}
		received = append(received, op)
		return nil
	}, nil)
	srv := httptest.NewServer(sink)
	defer srv.Close()

	client := remote.NewWebSocket("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	defer client.Close()
	ctx := context.Background()

	require.NoError(t, client.Push(ctx, core.SyncOperation{ID: 1, Type: core.EntityBlock, Action: core.ActionUpdate, EntityID: "b1", Data: []byte{1, 2}}))
	require.NoError(t, client.Push(ctx, core.SyncOperation{ID: 2, Type: core.EntityPage, Action: core.ActionDelete, EntityID: "p1"}))

	err := client.Push(ctx, core.SyncOperation{ID: 3, EntityID: "bad"})
	assert.ErrorIs(t, err, remote.ErrRejected)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 2)
	assert.Equal(t, []byte{1, 2}, received[0].Data)
	assert.Equal(t, core.ActionDelete, received[1].Action)
}

func TestWebSocket_DialFailure(t *testing.T) {
	srv := httptest.NewServer(remote.NewSink(nil, nil))
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	client := remote.NewWebSocket(url, nil)
	assert.Error(t, client.Push(context.Background(), core.SyncOperation{EntityID: "x"}))
}
