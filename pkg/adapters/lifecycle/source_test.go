package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	quirelifecycle "github.com/aretw0/quire/pkg/adapters/lifecycle"
	"github.com/aretw0/quire/pkg/document"
)

func TestSource_BridgesServiceEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := document.New()
	require.NoError(t, svc.Bootstrap(ctx))
	defer svc.Close(context.Background())

	src := quirelifecycle.NewSource(svc.Watch(ctx))
	require.NoError(t, src.Start(ctx))

	id := svc.CreatePage(svc.CurrentWorkspace(), document.PageDraft{Title: "Bridged"})

	select {
	case e := <-src.Events():
		assert.Equal(t, "CREATE page "+id, e.String())
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for bridged event")
	}

	cancel()
	require.Eventually(t, func() bool {
		_, open := <-src.Events()
		return !open
	}, 2*time.Second, 10*time.Millisecond)
}
