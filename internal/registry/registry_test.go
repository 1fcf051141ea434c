package registry

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := New[int]()

	_, ok := r.Get("missing")
	assert.False(t, ok)

	r.Add("one", 1)
	v, ok := r.Get("one")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	r.Add("one", 11)
	v, _ = r.Get("one")
	assert.Equal(t, 11, v, "add overwrites")

	r.Del("one")
	_, ok = r.Get("one")
	assert.False(t, ok)
}

func TestRegistryGetOrAdd(t *testing.T) {
	r := New[string]()

	v, loaded := r.GetOrAdd("key", func() string { return "computed" })
	assert.Equal(t, "computed", v)
	assert.False(t, loaded)

	v, loaded = r.GetOrAdd("key", func() string { return "other" })
	assert.Equal(t, "computed", v)
	assert.True(t, loaded)
}

func TestRegistryKeys(t *testing.T) {
	r := New[int]()
	for i, name := range []string{"b", "a", "c"} {
		r.Add(name, i)
	}

	keys := r.Keys()
	sort.Strings(keys)
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}
