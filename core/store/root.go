package store

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Part is the type-independent view of a Slice.
type Part interface {
	Name() string
	Busy() bool
	FirstError() string
	ClearError(key string)
	Reset()
}

// Root composes the slices of every domain.
type Root struct {
	mu    sync.RWMutex
	parts map[string]Part
}

func NewRoot() *Root {
	return &Root{parts: make(map[string]Part)}
}

// Register adds p under its name.
func (r *Root) Register(p Part) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.parts[p.Name()]; ok {
		return errors.Errorf("slice %q already registered", p.Name())
	}
	r.parts[p.Name()] = p
	return nil
}

// MustRegister is Register for startup wiring.
func (r *Root) MustRegister(parts ...Part) {
	for _, p := range parts {
		if err := r.Register(p); err != nil {
			panic(err)
		}
	}
}

func (r *Root) Slice(name string) (Part, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parts[name]
	return p, ok
}

// Names returns the registered slice names, sorted.
func (r *Root) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.parts))
	for name := range r.parts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Busy reports whether an operation is in flight in any slice.
func (r *Root) Busy() bool {
	for _, name := range r.Names() {
		if p, ok := r.Slice(name); ok && p.Busy() {
			return true
		}
	}
	return false
}

// Errors returns the first error of every failing slice.
func (r *Root) Errors() map[string]string {
	errs := make(map[string]string)
	for _, name := range r.Names() {
		if p, ok := r.Slice(name); ok {
			if msg := p.FirstError(); msg != "" {
				errs[name] = msg
			}
		}
	}
	return errs
}

func (r *Root) ClearErrors() {
	for _, name := range r.Names() {
		if p, ok := r.Slice(name); ok {
			p.ClearError(AllKeys)
		}
	}
}

// Reset resets the named slices, or all of them when none is named.
func (r *Root) Reset(names ...string) {
	if len(names) == 0 {
		names = r.Names()
	}
	for _, name := range names {
		if p, ok := r.Slice(name); ok {
			p.Reset()
		}
	}
}
