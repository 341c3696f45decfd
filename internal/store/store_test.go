package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Get(ctx, "settings")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Put(ctx, "settings", []byte(`{"zipCode":"10001"}`)))
	got, err := kv.Get(ctx, "settings")
	require.NoError(t, err)
	assert.JSONEq(t, `{"zipCode":"10001"}`, string(got))

	require.NoError(t, kv.Put(ctx, "settings", []byte(`{"zipCode":"94103"}`)))
	got, err = kv.Get(ctx, "settings")
	require.NoError(t, err)
	assert.JSONEq(t, `{"zipCode":"94103"}`, string(got))

	require.NoError(t, kv.Put(ctx, "applications:pgr", []byte(`[]`)))
	require.NoError(t, kv.Delete(ctx, "settings"))
	_, err = kv.Get(ctx, "settings")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = kv.Get(ctx, "applications:pgr")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	assert.NoError(t, kv.Delete(ctx, "missing"))
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemoryKV())
}

func TestMemoryKV_CopiesValues(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, kv.Put(ctx, "k", in))
	in[0] = 'x'

	out, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))

	out[0] = 'y'
	again, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestSQLiteKV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lawn.db")
	kv, err := OpenSQLite(path)
	require.NoError(t, err)
	exerciseKV(t, kv)
	require.NoError(t, kv.Close())

	// Data survives reopening.
	kv, err = OpenSQLite(path)
	require.NoError(t, err)
	defer kv.Close()
	got, err := kv.Get(context.Background(), "applications:pgr")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}
