package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newState(items ...item) *State[item, extras] {
	st := &State[item, extras]{Items: items}
	return st
}

func TestState_UpsertItem(t *testing.T) {
	tests := []struct {
		name  string
		items []item
		add   item
		want  []item
	}{
		{name: "empty", add: item{ID: "1"}, want: []item{{ID: "1"}}},
		{name: "append", items: []item{{ID: "1"}}, add: item{ID: "2"}, want: []item{{ID: "1"}, {ID: "2"}}},
		{
			name:  "existing id",
			items: []item{{ID: "1"}, {ID: "2", Name: "old"}},
			add:   item{ID: "2", Name: "new"},
			want:  []item{{ID: "1"}, {ID: "2", Name: "new"}},
		},
		{
			name:  "duplicates collapse",
			items: []item{{ID: "2"}, {ID: "1"}, {ID: "2"}},
			add:   item{ID: "2", Name: "new"},
			want:  []item{{ID: "2", Name: "new"}, {ID: "1"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newState(tt.items...)
			st.UpsertItem(tt.add)
			assert.Equal(t, tt.want, st.Items)
		})
	}
}

func TestState_ReplaceItem(t *testing.T) {
	st := newState(item{ID: "1", Name: "a"}, item{ID: "2", Name: "b"}, item{ID: "3", Name: "c"})
	st.SetCurrent(item{ID: "2", Name: "b"})

	assert.True(t, st.ReplaceItem(item{ID: "2", Name: "B"}))
	assert.Equal(t, []item{{ID: "1", Name: "a"}, {ID: "2", Name: "B"}, {ID: "3", Name: "c"}}, st.Items)
	assert.Equal(t, item{ID: "2", Name: "B"}, *st.Current)

	assert.False(t, st.ReplaceItem(item{ID: "9", Name: "z"}))
	assert.Len(t, st.Items, 3)
}

func TestState_RemoveItem(t *testing.T) {
	st := newState(item{ID: "1"}, item{ID: "2"})
	st.SetCurrent(item{ID: "2"})

	assert.False(t, st.RemoveItem("9"))
	assert.NotNil(t, st.Current)

	assert.True(t, st.RemoveItem("2"))
	assert.Equal(t, []item{{ID: "1"}}, st.Items)
	assert.Nil(t, st.Current)

	assert.True(t, st.RemoveItem("1"))
	assert.Empty(t, st.Items)
}

func TestState_SetPagination(t *testing.T) {
	st := newState()
	st.SetPagination(&Pagination{Page: 2, TotalPages: 3})
	st.SetPagination(nil)
	assert.Equal(t, Pagination{Page: 2, TotalPages: 3}, st.Pagination)
}
