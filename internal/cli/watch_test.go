package cli

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgrey4296/instal-stable-sub001/internal/testutil"
)

func TestRelevant(t *testing.T) {
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "specs/a.cue", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "specs/a.cue", Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: "instal.yaml", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "specs/a.cue", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "notes.md", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, relevant(tt.event), tt.event.String())
	}
}

func TestSpecWatcher_RunsOnChange(t *testing.T) {
	dir := writeSpecs(t, map[string]string{"shop.cue": unusedSpec, ".hidden/x.cue": ""})

	w, err := newSpecWatcher([]string{dir}, testutil.DiscardLogger())
	require.NoError(t, err)
	defer w.Close()
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func() { calls.Add(1) }) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shop.cue"), []byte(librarySpec), 0644))

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestSpecWatcher_MissingPath(t *testing.T) {
	_, err := newSpecWatcher([]string{filepath.Join(t.TempDir(), "absent")}, testutil.DiscardLogger())
	require.Error(t, err)
}
