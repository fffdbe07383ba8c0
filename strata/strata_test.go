package strata

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/go-ibf/ibf"
)

func records(n int, offset uint64) []ibf.Record {
	out := make([]ibf.Record, n)
	for i := 0; i < n; i++ {
		id := offset + uint64(i)
		out[i] = ibf.Record{ID: id, Value: []byte(fmt.Sprintf("v-%d", id))}
	}
	return out
}

func TestStratumOfIsStableAndBounded(t *testing.T) {
	s := stratumOf(12345)
	assert.Equal(t, s, stratumOf(12345))
	assert.GreaterOrEqual(t, s, 0)
	assert.Less(t, s, Levels)
}

func TestEstimateIdenticalSetsIsZero(t *testing.T) {
	cfg := ibf.DefaultConfig(3)
	a := New(cfg, 16)
	b := New(cfg, 16)
	for _, r := range records(500, 1) {
		a.Add(r)
		b.Add(r)
	}
	estimate, ok := a.Estimate(b)
	require.True(t, ok)
	assert.Zero(t, estimate)
}

func TestEstimateApproximatesKnownDifference(t *testing.T) {
	cfg := ibf.DefaultConfig(3)
	a := New(cfg, 32)
	b := New(cfg, 32)
	for _, r := range records(2000, 1) {
		a.Add(r)
	}
	for _, r := range records(1980, 1) {
		b.Add(r)
	}
	for _, r := range records(20, 9000) {
		b.Add(r)
	}
	estimate, ok := a.Estimate(b)
	require.True(t, ok)
	// True symmetric difference size is 40 (20 only-A, 20 only-B); the
	// strata estimate is only required to be in the right ballpark.
	assert.InDelta(t, 40, estimate, 40)
}

func TestDecodeCountFactor(t *testing.T) {
	assert.EqualValues(t, 1, DecodeCountFactor(0))
	assert.EqualValues(t, 2, DecodeCountFactor(1))
	assert.EqualValues(t, 8, DecodeCountFactor(3))
}

func TestFromLevelsRoundTrip(t *testing.T) {
	cfg := ibf.DefaultConfig(3)
	a := New(cfg, 16)
	for _, r := range records(100, 1) {
		a.Add(r)
	}
	var levels [Levels]*ibf.IBF
	for i := 0; i < Levels; i++ {
		levels[i] = a.Level(i)
	}
	rebuilt := FromLevels(cfg, levels)
	for i := 0; i < Levels; i++ {
		assert.Equal(t, a.Level(i).Cells(), rebuilt.Level(i).Cells())
	}
}
