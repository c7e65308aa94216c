package tokenstore

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchFile(t *testing.T) {
	logger, _ := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "warden", "tokens.yaml")

	var (
		mu  sync.Mutex
		ops []fsnotify.Op
	)
	seen := func(op fsnotify.Op) bool {
		mu.Lock()
		defer mu.Unlock()
		for _, o := range ops {
			if o&op != 0 {
				return true
			}
		}
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	ready := make(chan struct{})
	go func() {
		close(ready)
		done <- WatchFile(ctx, path, logger, func(op fsnotify.Op) {
			mu.Lock()
			ops = append(ops, op)
			mu.Unlock()
		})
	}()
	<-ready

	store := NewFileStore(path)
	// The watcher registers asynchronously; keep saving until it reports.
	require.Eventually(t, func() bool {
		assert.NoError(t, store.Save(context.Background(), Tokens{Access: "a", Refresh: "r"}))
		return seen(fsnotify.Create | fsnotify.Write)
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, store.Clear(context.Background()))
	assert.Eventually(t, func() bool { return seen(fsnotify.Remove) }, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
