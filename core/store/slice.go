// Package store holds the client-side state of the dashboard.
//
// Every business domain owns one Slice: its records, a loading flag and an error message per
// named operation, the filters used by the next list fetch and the last pagination returned by
// the backend. Slices are composed into a Root at startup.
package store

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/gyaanbuddy/core"
)

// AllKeys makes ClearError reset every operation.
const AllKeys = "all"

// Entity is a domain record identified by a unique id.
type Entity interface {
	EntityID() string
}

type Pagination struct {
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
	PerPage    int `json:"perPage"`
}

// State is the data owned by a Slice. Errors hold "" when an operation has no error.
type State[T Entity, X any] struct {
	Items      []T
	Current    *T
	Loading    map[string]bool
	Errors     map[string]string
	Filters    map[string]string
	Pagination Pagination
	Extra      X
}

type (
	// Reducer applies the result of a successful operation to the state.
	Reducer[T Entity, X any] func(st *State[T, X])

	// Work is the asynchronous part of an operation.
	// It returns the Reducer to apply on success; a nil Reducer leaves the data unchanged.
	Work[T Entity, X any] func(ctx context.Context) (Reducer[T, X], error)
)

// Config declares the initial state of a Slice.
type Config[X any] struct {
	Keys    []string          // operations, e.g. "list", "create"
	Filters map[string]string // filter defaults
	Extra   X
	Logger  core.Logger
}

type Slice[T Entity, X any] struct {
	name     string
	keys     []string
	defaults map[string]string
	extra    X
	logger   core.Logger

	mu    sync.RWMutex
	state State[T, X]
	gens  map[string]uint64 // latest dispatched generation per operation
	epoch uint64            // bumped by Reset
}

func NewSlice[T Entity, X any](name string, conf Config[X]) *Slice[T, X] {
	s := &Slice[T, X]{
		name:     name,
		keys:     append([]string(nil), conf.Keys...),
		defaults: copyStrings(conf.Filters),
		extra:    conf.Extra,
		logger:   conf.Logger,
		gens:     make(map[string]uint64, len(conf.Keys)),
	}
	s.state = s.initialState()
	return s
}

func (s *Slice[T, X]) initialState() State[T, X] {
	st := State[T, X]{
		Items:   []T{},
		Loading: make(map[string]bool, len(s.keys)),
		Errors:  make(map[string]string, len(s.keys)),
		Filters: copyStrings(s.defaults),
		Extra:   s.extra,
	}
	for _, key := range s.keys {
		st.Loading[key] = false
		st.Errors[key] = ""
	}
	return st
}

func (s *Slice[T, X]) Name() string { return s.name }

// ensureKey keeps Loading and Errors on the same key set. Must hold s.mu.
func (s *Slice[T, X]) ensureKey(key string) {
	if _, ok := s.state.Loading[key]; ok {
		return
	}
	s.keys = append(s.keys, key)
	s.state.Loading[key] = false
	s.state.Errors[key] = ""
}

// Dispatch starts the operation `key`.
// Before returning it marks the operation as loading and clears its error; the work then runs
// in its own goroutine. Only the latest dispatch of a key may settle the state: the result of
// a superseded dispatch is dropped. A dispatch that outlives a Reset still records its failure
// but never touches the data.
func (s *Slice[T, X]) Dispatch(ctx context.Context, key string, work Work[T, X]) *Op {
	s.mu.Lock()
	s.ensureKey(key)
	s.gens[key]++
	gen, epoch := s.gens[key], s.epoch
	s.state.Loading[key] = true
	s.state.Errors[key] = ""
	s.mu.Unlock()

	op := &Op{Key: key, done: make(chan struct{})}
	go func() {
		defer close(op.done)
		reduce, err := execute(ctx, work)
		op.stale, op.err = s.settle(key, gen, epoch, reduce, err)
	}()
	return op
}

// Run dispatches the operation and waits for it to settle.
func (s *Slice[T, X]) Run(ctx context.Context, key string, work Work[T, X]) error {
	return s.Dispatch(ctx, key, work).Wait()
}

func execute[T Entity, X any](ctx context.Context, work Work[T, X]) (reduce Reducer[T, X], err error) {
	defer func() {
		if r := recover(); r != nil {
			reduce, err = nil, errors.Errorf("unexpected failure: %v", r)
		}
	}()
	return work(ctx)
}

// settle records the outcome of the dispatch `gen` of key, unless it has been superseded.
// The data of a dispatch started before the last Reset is dropped; its failure is not.
func (s *Slice[T, X]) settle(key string, gen, epoch uint64, reduce Reducer[T, X], err error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gens[key] != gen {
		return true, err
	}
	stale := s.epoch != epoch
	s.ensureKey(key)
	s.state.Loading[key] = false
	if err == nil && reduce != nil && !stale {
		err = s.apply(reduce)
	}
	if err != nil {
		s.state.Errors[key] = Message(err)
		if s.logger != nil {
			s.logger.Debug("operation failed", map[string]interface{}{
				"slice": s.name,
				"op":    key,
				"error": err.Error(),
			})
		}
	}
	return stale, err
}

// apply runs reduce on a copy so that a failing reducer leaves the data untouched. Must hold s.mu.
func (s *Slice[T, X]) apply(reduce Reducer[T, X]) (err error) {
	draft := s.state.clone()
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("unexpected failure: %v", r)
		}
	}()
	reduce(&draft)
	// bookkeeping belongs to the slice, not to reducers
	draft.Loading = s.state.Loading
	draft.Errors = s.state.Errors
	if draft.Items == nil {
		draft.Items = []T{}
	}
	s.state = draft
	return nil
}

// ClearError resets the error of key, or of every operation when key is AllKeys.
func (s *Slice[T, X]) ClearError(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key == AllKeys {
		for k := range s.state.Errors {
			s.state.Errors[k] = ""
		}
		return
	}
	if _, ok := s.state.Errors[key]; ok {
		s.state.Errors[key] = ""
	}
}

// SetFilters merges partial into the current filters. It does not fetch anything.
func (s *Slice[T, X]) SetFilters(partial map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range partial {
		s.state.Filters[k] = v
	}
}

// ClearFilters restores the declared filter defaults.
func (s *Slice[T, X]) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Filters = copyStrings(s.defaults)
}

// Update applies reduce synchronously, outside of any operation.
func (s *Slice[T, X]) Update(reduce Reducer[T, X]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(reduce)
}

// Reset restores the initial state. Operations still in flight settle without touching the
// data; their failures are still recorded.
func (s *Slice[T, X]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.state = s.initialState()
}

// Busy reports whether any operation is in flight.
func (s *Slice[T, X]) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, loading := range s.state.Loading {
		if loading {
			return true
		}
	}
	return false
}

// FirstError returns the first error message in operation declaration order, or "".
func (s *Slice[T, X]) FirstError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, key := range s.keys {
		if msg := s.state.Errors[key]; msg != "" {
			return msg
		}
	}
	return ""
}

// HasError reports whether any operation failed.
func (s *Slice[T, X]) HasError() bool { return s.FirstError() != "" }

func (s *Slice[T, X]) Loading(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Loading[key]
}

func (s *Slice[T, X]) Error(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Errors[key]
}

func (s *Slice[T, X]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T{}, s.state.Items...)
}

func (s *Slice[T, X]) Current() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.Current == nil {
		var zero T
		return zero, false
	}
	return *s.state.Current, true
}

func (s *Slice[T, X]) Filters() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyStrings(s.state.Filters)
}

// Query returns the non-empty filters as URL query values.
func (s *Slice[T, X]) Query() url.Values {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := make(url.Values, len(s.state.Filters))
	for k, v := range s.state.Filters {
		if v = strings.TrimSpace(v); v != "" {
			q.Set(k, v)
		}
	}
	return q
}

func (s *Slice[T, X]) Pagination() Pagination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Pagination
}

func (s *Slice[T, X]) Extra() X {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Extra
}

// Snapshot returns a copy of the whole state.
func (s *Slice[T, X]) Snapshot() State[T, X] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (st State[T, X]) clone() State[T, X] {
	cp := st
	cp.Items = append([]T{}, st.Items...)
	if st.Current != nil {
		cur := *st.Current
		cp.Current = &cur
	}
	cp.Loading = make(map[string]bool, len(st.Loading))
	for k, v := range st.Loading {
		cp.Loading[k] = v
	}
	cp.Errors = copyStrings(st.Errors)
	cp.Filters = copyStrings(st.Filters)
	return cp
}

func copyStrings(m map[string]string) map[string]string {
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// Op is a dispatched operation.
type Op struct {
	Key   string
	done  chan struct{}
	err   error
	stale bool
}

// Done is closed once the operation settled.
func (op *Op) Done() <-chan struct{} { return op.done }

// Wait blocks until the operation settled and returns its failure, already recorded in the slice.
func (op *Op) Wait() error {
	<-op.done
	return op.err
}

// Stale reports whether a later dispatch of the same key superseded this one. Only valid after Done.
func (op *Op) Stale() bool {
	<-op.done
	return op.stale
}

// Message turns err into the plain message stored in a slice.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var msg string
	switch cause := errors.Cause(err).(type) {
	case *core.APIError, *core.ValidationError:
		msg = cause.Error()
	default:
		if core.IsNetwork(err) || core.IsThrottled(err) {
			msg = cause.Error()
		} else {
			msg = err.Error()
		}
	}
	if strings.TrimSpace(msg) == "" {
		msg = "unknown error"
	}
	return msg
}
