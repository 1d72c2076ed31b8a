package store

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRoot(t *testing.T) {
	items := newTestSlice()
	others := NewSlice[item]("others", Config[struct{}]{Keys: []string{"list"}})

	root := NewRoot()
	root.MustRegister(items, others)

	assert.Error(t, root.Register(newTestSlice()))
	assert.Equal(t, []string{"items", "others"}, root.Names())

	p, ok := root.Slice("others")
	assert.True(t, ok)
	assert.Equal(t, "others", p.Name())

	_ = others.Run(context.Background(), "list", func(ctx context.Context) (Reducer[item, struct{}], error) {
		return nil, errors.New("down")
	})
	assert.Equal(t, map[string]string{"others": "down"}, root.Errors())

	root.ClearErrors()
	assert.Empty(t, root.Errors())

	_ = items.Update(func(st *State[item, extras]) { st.ReplaceItems([]item{{ID: "1"}}) })
	_ = others.Update(func(st *State[item, struct{}]) { st.ReplaceItems([]item{{ID: "1"}}) })

	root.Reset("items")
	assert.Empty(t, items.Items())
	assert.Len(t, others.Items(), 1)

	root.Reset()
	assert.Empty(t, others.Items())
	assert.False(t, root.Busy())
}
