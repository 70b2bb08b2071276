// Package registry keeps named, compiled path templates and notifies
// watchers when they change.
package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "github.com/conneroisu/pathtemplate/internal/errors"
	"github.com/conneroisu/pathtemplate/internal/logging"
	"github.com/conneroisu/pathtemplate/pkg/pathtemplate"
)

// TemplateRegistry manages named templates and a compile cache keyed by source
type TemplateRegistry struct {
	templates map[string]*TemplateInfo
	cache     map[string]*pathtemplate.Template
	mutex     sync.RWMutex
	watchers  []chan TemplateEvent
	logger    logging.Logger
}

// TemplateInfo holds a registered template and its metadata
type TemplateInfo struct {
	Name         string
	Source       string
	Template     *pathtemplate.Template
	RegisteredAt time.Time
}

// TemplateEvent represents a change in the template registry
type TemplateEvent struct {
	Type      EventType
	Template  *TemplateInfo
	Timestamp time.Time
}

// EventType represents the type of template event
type EventType int

const (
	EventTypeAdded EventType = iota
	EventTypeUpdated
	EventTypeRemoved
)

func (e EventType) String() string {
	switch e {
	case EventTypeAdded:
		return "added"
	case EventTypeUpdated:
		return "updated"
	case EventTypeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// NewTemplateRegistry creates a new template registry. A nil logger discards output.
func NewTemplateRegistry(logger logging.Logger) *TemplateRegistry {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &TemplateRegistry{
		templates: make(map[string]*TemplateInfo),
		cache:     make(map[string]*pathtemplate.Template),
		watchers:  make([]chan TemplateEvent, 0),
		logger:    logger.WithComponent("registry"),
	}
}

// Compile returns the compiled form of source, reusing an earlier result
// for the same text. Failed compilations are not cached.
func (r *TemplateRegistry) Compile(source string) (*pathtemplate.Template, error) {
	r.mutex.RLock()
	tmpl, ok := r.cache[source]
	r.mutex.RUnlock()
	if ok {
		return tmpl, nil
	}

	tmpl, err := pathtemplate.Compile(source)
	if err != nil {
		return nil, err
	}

	r.mutex.Lock()
	if cached, ok := r.cache[source]; ok {
		tmpl = cached
	} else {
		r.cache[source] = tmpl
	}
	r.mutex.Unlock()

	return tmpl, nil
}

// Register compiles source and adds or replaces the template called name.
// An invalid template leaves the registry unchanged.
func (r *TemplateRegistry) Register(name, source string) (*TemplateInfo, error) {
	tmpl, err := r.Compile(source)
	if err != nil {
		return nil, apperrors.FromRenderError(err, name)
	}

	info := &TemplateInfo{
		Name:         name,
		Source:       source,
		Template:     tmpl,
		RegisteredAt: time.Now(),
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	eventType := EventTypeAdded
	if _, exists := r.templates[name]; exists {
		eventType = EventTypeUpdated
	}

	r.templates[name] = info
	r.notify(TemplateEvent{Type: eventType, Template: info, Timestamp: info.RegisteredAt})

	r.logger.Debug(context.Background(), "Template registered",
		"template", name,
		"event", eventType.String(),
		"variables", len(tmpl.Variables()),
	)

	return info, nil
}

// LoadAll registers every template in templates. Failures are added to
// collector and do not stop the remaining templates from loading. It
// returns the number of templates registered.
func (r *TemplateRegistry) LoadAll(templates map[string]string, collector *apperrors.ErrorCollector) int {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)

	loaded := 0
	for _, name := range names {
		source := templates[name]
		if _, err := r.Register(name, source); err != nil {
			r.logger.Debug(context.Background(), "Template rejected", "template", name, "error", err)
			if collector != nil {
				collector.Add(apperrors.TemplateError{
					Template: name,
					Source:   source,
					Message:  err.Error(),
					Severity: apperrors.ErrorSeverityError,
				})
			}
			continue
		}
		loaded++
	}

	return loaded
}

// Sync makes the registry hold the templates in templates. Names with an
// unchanged source are left alone, names no longer present are removed, and
// a template whose new source fails to compile is removed rather than kept
// at its old source. It returns the number of templates added or updated.
func (r *TemplateRegistry) Sync(templates map[string]string, collector *apperrors.ErrorCollector) int {
	current := r.GetAll()

	for name := range current {
		if _, ok := templates[name]; !ok {
			r.Remove(name)
		}
	}

	changed := make(map[string]string)
	for name, source := range templates {
		if info, ok := current[name]; ok && info.Source == source {
			continue
		}
		changed[name] = source
	}

	loaded := r.LoadAll(changed, collector)
	for name, source := range changed {
		if info, ok := r.Get(name); ok && info.Source != source {
			r.Remove(name)
		}
	}

	return loaded
}

// Get retrieves a template by name
func (r *TemplateRegistry) Get(name string) (*TemplateInfo, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	info, exists := r.templates[name]
	return info, exists
}

// Lookup is like Get but returns a not-found error for unknown names.
func (r *TemplateRegistry) Lookup(name string) (*TemplateInfo, error) {
	info, ok := r.Get(name)
	if !ok {
		return nil, apperrors.ErrTemplateNotFound(name)
	}
	return info, nil
}

// GetAll returns all registered templates
func (r *TemplateRegistry) GetAll() map[string]*TemplateInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make(map[string]*TemplateInfo, len(r.templates))
	for name, info := range r.templates {
		result[name] = info
	}
	return result
}

// Names returns the registered template names in sorted order
func (r *TemplateRegistry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove removes a template from the registry
func (r *TemplateRegistry) Remove(name string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	info, exists := r.templates[name]
	if !exists {
		return
	}

	delete(r.templates, name)
	r.notify(TemplateEvent{Type: EventTypeRemoved, Template: info, Timestamp: time.Now()})
}

// notify must be called with the write lock held.
func (r *TemplateRegistry) notify(event TemplateEvent) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}

// Watch returns a channel that receives template events
func (r *TemplateRegistry) Watch() <-chan TemplateEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan TemplateEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *TemplateRegistry) UnWatch(ch <-chan TemplateEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// Count returns the number of registered templates
func (r *TemplateRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.templates)
}

// CacheSize returns the number of distinct compiled sources
func (r *TemplateRegistry) CacheSize() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.cache)
}
