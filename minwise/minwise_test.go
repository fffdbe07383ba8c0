package minwise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarityIdenticalSetsIsHigh(t *testing.T) {
	a := New(2, 64, 1000)
	b := New(2, 64, 1000)
	for i := uint64(0); i < 500; i++ {
		a.Add(i)
		b.Add(i)
	}
	assert.InDelta(t, 1.0, a.Similarity(b), 0.01)
}

func TestSimilarityDisjointSetsIsLow(t *testing.T) {
	a := New(4, 128, 1000)
	b := New(4, 128, 1000)
	for i := uint64(0); i < 500; i++ {
		a.Add(i)
	}
	for i := uint64(5000); i < 5500; i++ {
		b.Add(i)
	}
	assert.Less(t, a.Similarity(b), 0.3)
}

func TestSimilarityIncompatibleSketchesIsZero(t *testing.T) {
	a := New(2, 64, 100)
	b := New(2, 32, 100)
	assert.Zero(t, a.Similarity(b))
}

func TestFoldReducesHashCount(t *testing.T) {
	a := New(2, 64, 100)
	for i := uint64(0); i < 200; i++ {
		a.Add(i)
	}
	folded, err := a.Fold(4)
	require.NoError(t, err)
	assert.Equal(t, 16, folded.HashCount())
	assert.Equal(t, a.ItemCount(), folded.ItemCount())

	_, err = a.Fold(5)
	assert.ErrorIs(t, err, ErrInvalidFoldFactor)
}

func TestIntersectApproximatesUnion(t *testing.T) {
	a := New(2, 64, 1000)
	b := New(2, 64, 1000)
	for i := uint64(0); i < 300; i++ {
		a.Add(i)
	}
	for i := uint64(300); i < 600; i++ {
		b.Add(i)
	}
	union, err := a.Intersect(b)
	require.NoError(t, err)

	full := New(2, 64, 1000)
	for i := uint64(0); i < 600; i++ {
		full.Add(i)
	}
	// Per-permutation minimum over a union of sets equals the min of each
	// set's own minimum, so the two sketches must match exactly, not just
	// approximately.
	assert.Equal(t, full.PackedBits(), union.PackedBits())
}

func TestIntersectRequiresCompatibility(t *testing.T) {
	a := New(2, 64, 100)
	b := New(2, 32, 100)
	_, err := a.Intersect(b)
	assert.ErrorIs(t, err, ErrIncompatibleSketches)
}

func TestPackedBitsRoundTrip(t *testing.T) {
	a := New(2, 32, 100)
	for i := uint64(0); i < 50; i++ {
		a.Add(i)
	}
	packed := a.PackedBits()
	rebuilt := FromWire(2, 32, 100, a.ItemCount(), packed)
	assert.Equal(t, packed, rebuilt.PackedBits())
	assert.InDelta(t, 1.0, a.Similarity(rebuilt), 1e-9)
}
