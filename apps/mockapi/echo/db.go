package echoapi

import (
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/gyaanbuddy/core/store"
)

var newID = uuid.NewString // mockable

// table is an in-memory collection of T that keeps insertion order.
type table[T store.Entity] struct {
	mu    sync.RWMutex
	rows  map[string]T
	order []string
}

func newTable[T store.Entity](rows ...T) *table[T] {
	t := &table[T]{rows: make(map[string]T, len(rows))}
	for _, row := range rows {
		t.rows[row.EntityID()] = row
		t.order = append(t.order, row.EntityID())
	}
	return t
}

func (t *table[T]) all() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	res := make([]T, 0, len(t.order))
	for _, id := range t.order {
		res = append(res, t.rows[id])
	}
	return res
}

func (t *table[T]) filter(keep func(T) bool) []T {
	res := make([]T, 0)
	for _, row := range t.all() {
		if keep(row) {
			res = append(res, row)
		}
	}
	return res
}

func (t *table[T]) find(match func(T) bool) (T, bool) {
	for _, row := range t.all() {
		if match(row) {
			return row, true
		}
	}
	var zero T
	return zero, false
}

func (t *table[T]) get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.order)
}

// insert stores row under id, which must be its EntityID.
func (t *table[T]) insert(id string, row T) T {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.rows[id]; !exists {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
	return row
}

// update applies change to row id under the table lock.
func (t *table[T]) update(id string, change func(*T) error) (T, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.rows[id]
	if !ok {
		return row, false, nil
	}
	if err := change(&row); err != nil {
		return row, true, err
	}
	t.rows[id] = row
	return row, true, nil
}

func (t *table[T]) delete(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			break
		}
	}
	return true
}
