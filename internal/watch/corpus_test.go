package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorpusWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book_summaries.txt")
	require.NoError(t, os.WriteFile(path, []byte("## Title: A\nx\n"), 0o644))

	w, err := NewCorpusWatcher(path, nil)
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	events, err := w.Watch(ctx)
	require.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)
		os.WriteFile(path, []byte("## Title: B\ny\n"), 0o644)
	}()

	select {
	case ev := <-events:
		abs, _ := filepath.Abs(path)
		assert.Equal(t, abs, ev.Path)
	case <-ctx.Done():
		t.Fatal("timeout waiting for corpus event")
	}
}

func TestCorpusWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book_summaries.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	w, err := NewCorpusWatcher(path, nil)
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	events, err := w.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("{}"), 0o644))

	select {
	case ev := <-events:
		t.Errorf("unexpected event %v for %s", ev.Operation, ev.Path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestOperation_String(t *testing.T) {
	assert.Equal(t, "created", Created.String())
	assert.Equal(t, "modified", Modified.String())
	assert.Equal(t, "removed", Removed.String())
}
