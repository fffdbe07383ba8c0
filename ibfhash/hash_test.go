package ibfhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXXH3Deterministic(t *testing.T) {
	h := XXH3{Seed: 7}
	a := h.Hash([]byte("hello"))
	b := h.Hash([]byte("hello"))
	assert.Equal(t, a, b)

	other := XXH3{Seed: 9}
	assert.NotEqual(t, a, other.Hash([]byte("hello")), "different seeds should usually diverge")
}

func TestBlake2bDeterministic(t *testing.T) {
	var h Blake2b
	a := h.Hash([]byte("world"))
	b := h.Hash([]byte("world"))
	assert.Equal(t, a, b)
}

func TestBlake3Deterministic(t *testing.T) {
	var h Blake3
	a := h.Hash([]byte("world"))
	b := h.Hash([]byte("world"))
	assert.Equal(t, a, b)
}

func TestBlake3PoolReuseDoesNotLeakState(t *testing.T) {
	var h Blake3
	first := h.Hash([]byte("alpha"))
	second := h.Hash([]byte("beta"))
	assert.NotEqual(t, first, second)
	assert.Equal(t, first, h.Hash([]byte("alpha")))
}

func TestIDHashZeroRemapped(t *testing.T) {
	h := IDHash(0)
	assert.NotZero(t, h)
}

func TestIDHashDeterministic(t *testing.T) {
	assert.Equal(t, IDHash(42), IDHash(42))
	assert.NotEqual(t, IDHash(42), IDHash(43))
}

func TestPositionsDistinctAndInRange(t *testing.T) {
	pos := Positions(IDHash(123), 100, 4)
	require.Len(t, pos, 4)
	seen := make(map[uint32]bool)
	for _, p := range pos {
		assert.Less(t, p, uint32(100))
		assert.False(t, seen[p], "position repeated: %d", p)
		seen[p] = true
	}
}

func TestPositionsDeterministic(t *testing.T) {
	a := Positions(555, 64, 3)
	b := Positions(555, 64, 3)
	assert.Equal(t, a, b)
}

func TestPositionsSmallM(t *testing.T) {
	pos := Positions(1, 3, 3)
	require.Len(t, pos, 3)
}

func TestPositionsDegenerate(t *testing.T) {
	assert.Nil(t, Positions(1, 0, 3))
	assert.Nil(t, Positions(1, 10, 0))
}

func TestCachedHasherMemoizes(t *testing.T) {
	calls := 0
	counting := countingHasher{hash: func(v []byte) uint32 {
		calls++
		return XXH3{}.Hash(v)
	}}
	cached := NewCached(&counting, 8)

	h1 := cached.Hash([]byte("x"))
	h2 := cached.Hash([]byte("x"))
	assert.Equal(t, h1, h2)
	assert.Equal(t, 1, calls, "second lookup should hit the cache")

	cached.Hash([]byte("y"))
	assert.Equal(t, 2, calls)
}

type countingHasher struct {
	hash func([]byte) uint32
}

func (c *countingHasher) Hash(v []byte) uint32 { return c.hash(v) }
