package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gyaanbuddy/core"
)

func TestStorage(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "localstorage.db")

	s, err := Open(path)
	require.NoError(t, err)

	val, err := s.Get(ctx, core.TokenKey)
	assert.NoError(t, err)
	assert.Equal(t, "", val)

	require.NoError(t, s.Set(ctx, core.TokenKey, "tok-1"))
	require.NoError(t, s.Set(ctx, core.TokenKey, "tok-2"))
	require.NoError(t, s.Set(ctx, "theme", "dark"))

	val, err = s.Get(ctx, core.TokenKey)
	assert.NoError(t, err)
	assert.Equal(t, "tok-2", val)

	val, err = s.Get(ctx, "theme")
	assert.NoError(t, err)
	assert.Equal(t, "dark", val)
	require.NoError(t, s.Close())

	// survives a reopen
	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	val, err = s.Get(ctx, core.TokenKey)
	assert.NoError(t, err)
	assert.Equal(t, "tok-2", val)

	require.NoError(t, s.Remove(ctx, core.TokenKey))
	require.NoError(t, s.Remove(ctx, "missing"))
	val, err = s.Get(ctx, core.TokenKey)
	assert.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestOpen_memory(t *testing.T) {
	ctx := context.Background()
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Set(ctx, "k", "v"))
	val, err := s.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Equal(t, "v", val)
}
