package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(42), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestNewFileWatcher(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.NotNil(t, watcher.watcher)
	assert.NotNil(t, watcher.debouncer)
	assert.Empty(t, watcher.filters)
	assert.Empty(t, watcher.handlers)

	_, err = NewFileWatcher(0, nil)
	assert.Error(t, err)
}

func TestFileWatcherAddFilterAndHandler(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	watcher.AddFilter(NoGitFilter)
	watcher.AddFilter(NoBackupFilter)
	assert.Len(t, watcher.filters, 2)
	assert.True(t, watcher.accepts("bindings/prod.yml"))
	assert.False(t, watcher.accepts("bindings/.git/HEAD"))
	assert.False(t, watcher.accepts("bindings/prod.yml~"))

	var got []ChangeEvent
	watcher.AddHandler(func(events []ChangeEvent) error {
		got = events
		return nil
	})
	assert.Len(t, watcher.handlers, 1)

	watcher.dispatch(context.Background(), []ChangeEvent{{Type: EventTypeCreated, Path: "a.yml"}})
	require.Len(t, got, 1)
	assert.Equal(t, "a.yml", got[0].Path)
}

func TestFileWatcherAddPath(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	dir := t.TempDir()
	require.NoError(t, watcher.AddPath(dir))
	assert.Contains(t, watcher.WatchList(), dir)

	assert.Error(t, watcher.AddPath(filepath.Join(dir, "does-not-exist")))
	assert.Error(t, watcher.AddPath(""))
	assert.Error(t, watcher.AddPath("a\x00b"))
}

func TestFileWatcherAddFile(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	dir := t.TempDir()
	require.NoError(t, watcher.AddFile(filepath.Join(dir, "not-yet.yml")))
	assert.Equal(t, []string{dir}, watcher.WatchList())
}

func TestFileWatcherAddRecursive(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "env", "eu"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git", "objects"), 0o755))

	require.NoError(t, watcher.AddRecursive(dir))

	list := watcher.WatchList()
	assert.Contains(t, list, dir)
	assert.Contains(t, list, filepath.Join(dir, "env"))
	assert.Contains(t, list, filepath.Join(dir, "env", "eu"))
	assert.NotContains(t, list, filepath.Join(dir, ".git"))
}

func TestFileWatcherStartStop(t *testing.T) {
	watcher, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	dir := t.TempDir()
	require.NoError(t, watcher.AddPath(dir))
	watcher.AddFilter(PatternFilter(dir, []string{"**/*.yml"}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan []ChangeEvent, 10)
	watcher.AddHandler(func(events []ChangeEvent) error {
		received <- events
		return nil
	})

	require.NoError(t, watcher.Start(ctx))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prod.yml"), []byte("a: 1\n"), 0o644))

	select {
	case events := <-received:
		require.NotEmpty(t, events)
		for _, e := range events {
			assert.Equal(t, filepath.Join(dir, "prod.yml"), e.Path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a debounced change event")
	}

	cancel()
	assert.NoError(t, watcher.Stop())
}

func TestNewChangeEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.yml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o644))

	testCases := []struct {
		op       fsnotify.Op
		expected EventType
	}{
		{fsnotify.Create, EventTypeCreated},
		{fsnotify.Write, EventTypeModified},
		{fsnotify.Remove, EventTypeDeleted},
		{fsnotify.Rename, EventTypeRenamed},
		{fsnotify.Create | fsnotify.Write, EventTypeCreated},
	}

	for _, tc := range testCases {
		t.Run(tc.op.String(), func(t *testing.T) {
			event := newChangeEvent(fsnotify.Event{Name: path, Op: tc.op})
			assert.Equal(t, tc.expected, event.Type)
			assert.Equal(t, int64(5), event.Size)
			assert.False(t, event.ModTime.IsZero())
		})
	}

	missing := newChangeEvent(fsnotify.Event{Name: filepath.Join(dir, "gone"), Op: fsnotify.Remove})
	assert.True(t, missing.ModTime.IsZero())
	assert.Zero(t, missing.Size)
}

func TestPatternFilter(t *testing.T) {
	root := t.TempDir()
	filter := PatternFilter(root, []string{"**/*.yml", "config/*.json"})

	testCases := []struct {
		path     string
		expected bool
	}{
		{filepath.Join(root, "prod.yml"), true},
		{filepath.Join(root, "env", "eu", "prod.yml"), true},
		{filepath.Join(root, "config", "a.json"), true},
		{filepath.Join(root, "config", "nested", "a.json"), false},
		{filepath.Join(root, "notes.txt"), false},
		{"relative/prod.yml", true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, filter(tc.path))
		})
	}

	abs := PatternFilter(root, []string{filepath.Join(root, "only.yml")})
	assert.True(t, abs(filepath.Join(root, "only.yml")))
	assert.False(t, abs(filepath.Join(root, "other.yml")))
}

func TestFileSetAndAnyFilter(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, ".pathtemplate.yml")

	set := FileSetFilter([]string{config})
	assert.True(t, set(config))
	assert.False(t, set(filepath.Join(dir, "other.yml")))

	combined := AnyFilter(set, PatternFilter(dir, []string{"*.json"}))
	assert.True(t, combined(config))
	assert.True(t, combined(filepath.Join(dir, "b.json")))
	assert.False(t, combined(filepath.Join(dir, "b.yml")))
	assert.False(t, AnyFilter()("anything"))
}

func TestNoGitFilter(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{"bindings/prod.yml", true},
		{".git/config", false},
		{"src/.git/index", false},
		{"prod.yml", true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, NoGitFilter(tc.path))
		})
	}
}

func TestNoBackupFilter(t *testing.T) {
	assert.True(t, NoBackupFilter("prod.yml"))
	assert.False(t, NoBackupFilter("prod.yml~"))
	assert.False(t, NoBackupFilter(".prod.yml.swp"))
	assert.False(t, NoBackupFilter("dir/.#prod.yml"))
}

func TestDebouncer(t *testing.T) {
	debouncer := newDebouncer(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go debouncer.start(ctx)

	var mu sync.Mutex
	var batches [][]ChangeEvent
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case events := <-debouncer.output:
				mu.Lock()
				batches = append(batches, events)
				mu.Unlock()
			}
		}
	}()

	for _, path := range []string{"b.yml", "a.yml", "b.yml", "a.yml"} {
		debouncer.events <- ChangeEvent{Type: EventTypeModified, Path: path}
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, batches[0], 2)
	assert.Equal(t, "a.yml", batches[0][0].Path)
	assert.Equal(t, "b.yml", batches[0][1].Path)
}

func TestCoalesce(t *testing.T) {
	events := coalesce([]ChangeEvent{
		{Type: EventTypeCreated, Path: "b"},
		{Type: EventTypeModified, Path: "a"},
		{Type: EventTypeDeleted, Path: "b"},
	})

	require.Len(t, events, 2)
	assert.Equal(t, ChangeEvent{Type: EventTypeModified, Path: "a"}, events[0])
	assert.Equal(t, ChangeEvent{Type: EventTypeDeleted, Path: "b"}, events[1])
}
