package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farolabs/faro/internal/extract"
)

func startTestWatcher(t *testing.T) (*recordingUpserter, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "logistica"), 0o755))

	up := &recordingUpserter{}
	ing := New(root, extract.New(extract.DefaultChunkParams()), up)
	w := NewWatcher(ing, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	// give the watcher a beat to install its watches
	time.Sleep(100 * time.Millisecond)
	return up, root
}

func TestWatcher_IngestsNewFile(t *testing.T) {
	up, root := startTestWatcher(t)

	path := filepath.Join(root, "logistica", "aviso.txt")
	require.NoError(t, os.WriteFile(path, []byte("el barco atraca el jueves"), 0o644))

	assert.Eventually(t, func() bool { return up.callCount() >= 1 }, 5*time.Second, 25*time.Millisecond)

	call := up.lastCall()
	assert.Equal(t, path, call.doc.Path)
	assert.Equal(t, "logistica", call.area)
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	up, root := startTestWatcher(t)

	path := filepath.Join(root, "logistica", "borrador.txt")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("versión en progreso"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return up.callCount() >= 1 }, 5*time.Second, 25*time.Millisecond)

	// the burst collapses into one ingestion; allow the loop to settle
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, up.callCount())
}

func TestWatcher_PicksUpNewAreaDirectory(t *testing.T) {
	up, root := startTestWatcher(t)

	dir := filepath.Join(root, "ventas")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cifras.txt"), []byte("ventas del mes"), 0o644))

	assert.Eventually(t, func() bool {
		return up.callCount() >= 1 && up.lastCall().area == "ventas"
	}, 5*time.Second, 25*time.Millisecond)
}

func TestWatcher_IgnoresUnsupportedAndLockFiles(t *testing.T) {
	up, root := startTestWatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(root, "logistica", "foto.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "logistica", "~$abierto.xlsx"), []byte("lock"), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, up.callCount())
}

func TestWatcher_RemovalKeepsIndex(t *testing.T) {
	up, root := startTestWatcher(t)

	path := filepath.Join(root, "logistica", "temporal.txt")
	require.NoError(t, os.WriteFile(path, []byte("documento pasajero"), 0o644))
	assert.Eventually(t, func() bool { return up.callCount() >= 1 }, 5*time.Second, 25*time.Millisecond)

	before := up.callCount()
	require.NoError(t, os.Remove(path))

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, before, up.callCount(), "removals must not touch the index")
}

func TestWatcher_StopDrains(t *testing.T) {
	root := t.TempDir()
	ing := New(root, extract.New(extract.DefaultChunkParams()), &recordingUpserter{})
	w := NewWatcher(ing, 50*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- w.Start(context.Background()) }()
	time.Sleep(100 * time.Millisecond)

	w.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
