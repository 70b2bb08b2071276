package registry

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/conneroisu/pathtemplate/internal/errors"
	"github.com/conneroisu/pathtemplate/pkg/pathtemplate"
)

func TestNewTemplateRegistry(t *testing.T) {
	registry := NewTemplateRegistry(nil)

	assert.NotNil(t, registry)
	assert.NotNil(t, registry.templates)
	assert.NotNil(t, registry.watchers)
	assert.Equal(t, 0, registry.Count())
	assert.Equal(t, 0, registry.CacheSize())
}

func TestTemplateRegistry_Register(t *testing.T) {
	registry := NewTemplateRegistry(nil)

	info, err := registry.Register("users", "/v1/users/{id}")
	require.NoError(t, err)
	assert.Equal(t, "users", info.Name)
	assert.Equal(t, "/v1/users/{id}", info.Source)
	assert.False(t, info.RegisteredAt.IsZero())

	retrieved, exists := registry.Get("users")
	assert.True(t, exists)
	assert.Same(t, info, retrieved)
	assert.Equal(t, 1, registry.Count())

	all := registry.GetAll()
	assert.Len(t, all, 1)
	assert.Same(t, info, all["users"])

	path, err := retrieved.Template.Render(map[string]string{"id": "42"})
	require.NoError(t, err)
	assert.Equal(t, "/v1/users/42", path)
}

func TestTemplateRegistry_RegisterInvalid(t *testing.T) {
	registry := NewTemplateRegistry(nil)

	_, err := registry.Register("users", "/v1/users/{id}")
	require.NoError(t, err)

	_, err = registry.Register("users", "/v1/users/{id}/")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.True(t, pathtemplate.IsStructural(err))

	info, _ := registry.Get("users")
	assert.Equal(t, "/v1/users/{id}", info.Source)
	assert.Equal(t, 1, registry.CacheSize())
}

func TestTemplateRegistry_Update(t *testing.T) {
	registry := NewTemplateRegistry(nil)

	_, err := registry.Register("users", "/v1/users/{id}")
	require.NoError(t, err)
	_, err = registry.Register("users", "/v2/users/{id?uc}")
	require.NoError(t, err)

	info, exists := registry.Get("users")
	assert.True(t, exists)
	assert.Equal(t, "/v2/users/{id?uc}", info.Source)
	assert.Equal(t, 1, registry.Count())
	assert.Equal(t, 2, registry.CacheSize())
}

func TestTemplateRegistry_Remove(t *testing.T) {
	registry := NewTemplateRegistry(nil)

	_, err := registry.Register("users", "/v1/users/{id}")
	require.NoError(t, err)

	registry.Remove("users")
	registry.Remove("missing")

	_, exists := registry.Get("users")
	assert.False(t, exists)
	assert.Equal(t, 0, registry.Count())
	assert.Empty(t, registry.GetAll())
}

func TestTemplateRegistry_Lookup(t *testing.T) {
	registry := NewTemplateRegistry(nil)

	_, err := registry.Lookup("users")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Contains(t, err.Error(), "users")

	_, err = registry.Register("users", "{id}")
	require.NoError(t, err)

	info, err := registry.Lookup("users")
	require.NoError(t, err)
	assert.Equal(t, "users", info.Name)
}

func TestTemplateRegistry_CompileCache(t *testing.T) {
	registry := NewTemplateRegistry(nil)

	first, err := registry.Compile("/a/{b}")
	require.NoError(t, err)
	second, err := registry.Compile("/a/{b}")
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = registry.Compile("//a")
	require.Error(t, err)
	assert.Equal(t, 1, registry.CacheSize())

	_, err = registry.Register("one", "/a/{b}")
	require.NoError(t, err)
	_, err = registry.Register("two", "/a/{b}")
	require.NoError(t, err)
	assert.Equal(t, 1, registry.CacheSize())
}

func TestTemplateRegistry_LoadAll(t *testing.T) {
	registry := NewTemplateRegistry(nil)
	collector := apperrors.NewErrorCollector()

	loaded := registry.LoadAll(map[string]string{
		"users":   "/v1/users/{id}",
		"broken":  "/v1/{a?uc?lc}",
		"trailer": "/v1/",
		"events":  "{org}/events",
	}, collector)

	assert.Equal(t, 2, loaded)
	assert.Equal(t, []string{"events", "users"}, registry.Names())
	assert.True(t, collector.HasErrors())
	assert.Equal(t, []string{"broken", "trailer"}, collector.Templates())

	failures := collector.GetErrorsByTemplate("broken")
	require.Len(t, failures, 1)
	assert.Equal(t, "/v1/{a?uc?lc}", failures[0].Source)
	assert.Contains(t, failures[0].Message, pathtemplate.CodeMultipleModifiers)

	assert.NotPanics(t, func() {
		registry.LoadAll(map[string]string{"bad": "//"}, nil)
	})
}

func TestTemplateRegistry_Sync(t *testing.T) {
	registry := NewTemplateRegistry(nil)

	loaded := registry.Sync(map[string]string{
		"users":  "/v1/users/{id}",
		"events": "{org}/events",
	}, nil)
	assert.Equal(t, 2, loaded)
	users, _ := registry.Get("users")

	events := registry.Watch()
	defer registry.UnWatch(events)

	collector := apperrors.NewErrorCollector()
	loaded = registry.Sync(map[string]string{
		"users": "/v1/users/{id}",
		"files": "/v1/files/{path?slashok}",
	}, collector)
	assert.Equal(t, 1, loaded)
	assert.False(t, collector.HasErrors())
	assert.Equal(t, []string{"files", "users"}, registry.Names())

	unchanged, _ := registry.Get("users")
	assert.Same(t, users, unchanged)

	var got []string
	for i := 0; i < 2; i++ {
		select {
		case event := <-events:
			got = append(got, event.Type.String()+" "+event.Template.Name)
		case <-time.After(time.Second):
			t.Fatal("expected registry event")
		}
	}
	assert.ElementsMatch(t, []string{"removed events", "added files"}, got)

	loaded = registry.Sync(map[string]string{
		"users": "/v1/users/{id}/",
		"files": "/v1/files/{path?slashok}",
	}, collector)
	assert.Equal(t, 0, loaded)
	assert.Equal(t, []string{"users"}, collector.Templates())
	_, ok := registry.Get("users")
	assert.False(t, ok)
	assert.Equal(t, []string{"files"}, registry.Names())
}

func TestTemplateRegistry_Watch(t *testing.T) {
	registry := NewTemplateRegistry(nil)

	watcher := registry.Watch()
	assert.NotNil(t, watcher)

	go func() {
		time.Sleep(10 * time.Millisecond)
		_, _ = registry.Register("users", "/v1/users/{id}")
	}()

	select {
	case event := <-watcher:
		assert.Equal(t, EventTypeAdded, event.Type)
		assert.Equal(t, "users", event.Template.Name)
	case <-time.After(time.Second):
		t.Fatal("Expected to receive template added event")
	}

	_, err := registry.Register("users", "/v2/users/{id}")
	require.NoError(t, err)
	registry.Remove("users")

	assert.Equal(t, EventTypeUpdated, (<-watcher).Type)
	assert.Equal(t, EventTypeRemoved, (<-watcher).Type)
}

func TestTemplateRegistry_UnWatch(t *testing.T) {
	registry := NewTemplateRegistry(nil)

	watcher1 := registry.Watch()
	watcher2 := registry.Watch()
	assert.Len(t, registry.watchers, 2)

	registry.UnWatch(watcher1)
	assert.Len(t, registry.watchers, 1)

	_, ok := <-watcher1
	assert.False(t, ok, "unwatched channel should be closed")

	_, err := registry.Register("users", "{id}")
	require.NoError(t, err)

	select {
	case event := <-watcher2:
		assert.Equal(t, EventTypeAdded, event.Type)
	default:
		t.Fatal("remaining watcher should still receive events")
	}
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "added", EventTypeAdded.String())
	assert.Equal(t, "updated", EventTypeUpdated.String())
	assert.Equal(t, "removed", EventTypeRemoved.String())
	assert.Equal(t, "unknown", EventType(9).String())
}

func TestTemplateRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewTemplateRegistry(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("t%d", i)
			_, err := registry.Register(name, fmt.Sprintf("/v1/{id}/%d", i%5))
			assert.NoError(t, err)
			_, _ = registry.Get(name)
			_ = registry.Names()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, registry.Count())
	assert.Equal(t, 5, registry.CacheSize())
}
