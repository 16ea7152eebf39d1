package memkv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedium(t *testing.T) {
	ctx := context.Background()
	m := New()

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, got)

	val := []byte(`[1]`)
	require.NoError(t, m.Put(ctx, map[string][]byte{"a": val, "b": []byte(`[]`)}))
	val[1] = '2' // the medium keeps its own copy

	got, err = m.Get(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": []byte(`[1]`), "b": []byte(`[]`)}, got)

	got["a"][1] = '3'
	got, err = m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1]`), got["a"])
}
