package tmpl

import (
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/ardnew/stamp/log"
)

// Registry maps binding keys to the deferred output of the blocks bound to
// them. One Registry serves a single top-level expansion and is shared by the
// continuations that settle its placeholders.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Future[string]
	logger  log.Logger
}

// NewRegistry returns an empty Registry that reports overwrites to logger.
func NewRegistry(logger log.Logger) *Registry {
	return &Registry{
		entries: make(map[string]*Future[string]),
		logger:  logger,
	}
}

// Register stores f under key, replacing any previous entry.
func (r *Registry) Register(key string, f *Future[string]) {
	r.mu.Lock()
	_, exists := r.entries[key]
	r.entries[key] = f
	r.mu.Unlock()

	if exists {
		r.logger.Warn("binding overwritten", slog.String("key", key))
	}
}

// Bind stores f under base, or under the first free key of the form
// base~1, base~2, ... if base is taken, and returns the key used.
func (r *Registry) Bind(base string, f *Future[string]) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := base
	for n := 1; ; n++ {
		if _, taken := r.entries[key]; !taken {
			break
		}

		key = base + "~" + strconv.Itoa(n)
	}

	r.entries[key] = f

	return key
}

// Get returns the deferred output bound to key.
func (r *Registry) Get(key string) (*Future[string], error) {
	r.mu.RLock()
	f, ok := r.entries[key]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrMissingBinding.With(slog.String("key", key))
	}

	return f, nil
}

// Len returns the number of bound keys.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// Keys returns the bound keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.entries))

	for k := range r.entries {
		keys = append(keys, k)
	}
	r.mu.RUnlock()

	slices.Sort(keys)

	return keys
}
