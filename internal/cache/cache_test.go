// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	a := Fingerprint("pubmed-pack", "v1", "glioblastoma", "metformin")
	b := Fingerprint("pubmed-pack", "v1", "glioblastoma", "metformin")
	assert.Equal(t, a, b, "fingerprints must be deterministic")
	assert.Len(t, a, 64)

	c := Fingerprint("pubmed-pack", "v1", "glioblastoma", "aspirin")
	assert.NotEqual(t, a, c)

	// Length prefixing keeps part boundaries from colliding.
	assert.NotEqual(t, Fingerprint("ab", "c"), Fingerprint("a", "bc"))
	assert.NotEqual(t, Fingerprint("abc"), Fingerprint("ab", "c"))
}

func TestMemoryCache(t *testing.T) {
	c := NewMemory()

	_, ok, err := c.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put("k", []byte("value")))

	got, ok, err := c.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("value"), got)

	// The cache holds its own copy: mutating the returned slice must not
	// change the stored value.
	got[0] = 'X'
	again, ok, err := c.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("value"), again)

	// Put replaces.
	require.NoError(t, c.Put("k", []byte("new")))
	got, _, _ = c.Get("k")
	assert.Equal(t, []byte("new"), got)
}

func TestNopCache(t *testing.T) {
	c := Nop{}
	require.NoError(t, c.Put("k", []byte("v")))
	_, ok, err := c.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}
