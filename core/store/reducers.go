package store

// ReplaceItems replaces the whole collection, as a list fetch does.
func (st *State[T, X]) ReplaceItems(items []T) {
	st.Items = append([]T{}, items...)
}

// UpsertItem adds item to the collection, or replaces the record with the same id.
// Either way the record appears exactly once afterwards.
func (st *State[T, X]) UpsertItem(item T) {
	id := item.EntityID()
	out := st.Items[:0:0]
	var found bool
	for _, it := range st.Items {
		if it.EntityID() != id {
			out = append(out, it)
			continue
		}
		if !found {
			out = append(out, item)
			found = true
		}
	}
	if !found {
		out = append(out, item)
	}
	st.Items = out
	st.syncCurrent(item)
}

// ReplaceItem replaces in place the record with the same id as item.
// It reports false and changes nothing when no such record exists.
func (st *State[T, X]) ReplaceItem(item T) bool {
	id := item.EntityID()
	var found bool
	for i := range st.Items {
		if st.Items[i].EntityID() == id {
			st.Items[i] = item
			found = true
		}
	}
	if found {
		st.syncCurrent(item)
	}
	return found
}

// RemoveItem removes the record identified by id, and clears Current if it was that record.
func (st *State[T, X]) RemoveItem(id string) bool {
	out := st.Items[:0:0]
	for _, it := range st.Items {
		if it.EntityID() != id {
			out = append(out, it)
		}
	}
	removed := len(out) != len(st.Items)
	st.Items = out
	if st.Current != nil && (*st.Current).EntityID() == id {
		st.Current = nil
	}
	return removed
}

func (st *State[T, X]) SetCurrent(item T) {
	st.Current = &item
}

func (st *State[T, X]) ClearCurrent() {
	st.Current = nil
}

// SetPagination keeps p when the backend sent one.
func (st *State[T, X]) SetPagination(p *Pagination) {
	if p != nil {
		st.Pagination = *p
	}
}

func (st *State[T, X]) syncCurrent(item T) {
	if st.Current != nil && (*st.Current).EntityID() == item.EntityID() {
		st.Current = &item
	}
}
