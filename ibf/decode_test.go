package ibf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "fail", Fail.String())
}

func TestDecodeUndersizedFilterFails(t *testing.T) {
	cfg := DefaultConfig(3)
	a := New(cfg, 16, false)
	b := New(cfg, 16, false)
	for _, r := range records(50, 1) {
		a.Add(r)
	}
	for _, r := range records(50, 1000) {
		b.Add(r)
	}
	outcome, _, err := SubtractAndDecode(a, b, false)
	require.NoError(t, err)
	assert.Equal(t, Fail, outcome)
}

func TestModifiedRecordAppearsOnBothSidesOfReverseDecode(t *testing.T) {
	cfg := DefaultConfig(3)
	a := New(cfg, 64, true)
	b := New(cfg, 64, true)
	for _, r := range records(10, 1) {
		a.Add(r)
	}
	mutated := records(10, 1)
	mutated[0].Value = []byte("changed-value")
	for _, r := range mutated {
		b.Add(r)
	}
	outcome, sets, err := SubtractAndDecode(a, b, false)
	require.NoError(t, err)
	assert.Equal(t, Success, outcome)
	// Keyed by value hash, a changed value lands at a different cell on
	// each side, so the decode surfaces it as the same id in both OnlyA
	// and OnlyB rather than in Modified; Paired.SubtractAndDecode is what
	// reconciles that pattern into a single Modified entry.
	assert.Contains(t, sets.OnlyA, uint64(1))
	assert.Contains(t, sets.OnlyB, uint64(1))
	assert.Empty(t, sets.Modified)
}
