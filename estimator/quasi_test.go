package estimator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spacemeshos/go-ibf/ibf"
)

func TestQuasiEmptySample(t *testing.T) {
	cfg := ibf.DefaultConfig(3)
	f := ibf.New(cfg, 64, false)
	assert.Zero(t, Quasi(f, nil, 100, 0))
}

func TestQuasiAllMembersIsZero(t *testing.T) {
	cfg := ibf.DefaultConfig(3)
	f := ibf.New(cfg, 256, false)
	sample := records(50, 1)
	for _, r := range sample {
		f.Add(r)
	}
	assert.Zero(t, Quasi(f, sample, 50, 0))
}

func TestQuasiAllMissingApproximatesOtherSetSize(t *testing.T) {
	cfg := ibf.DefaultConfig(3)
	f := ibf.New(cfg, 256, false)
	for _, r := range records(50, 1) {
		f.Add(r)
	}
	sample := records(50, 9000)
	estimate := Quasi(f, sample, 50, 0)
	// A lightly loaded filter has a small but nonzero false-positive rate,
	// so this only has to land close to the true count, not match exactly.
	assert.InDelta(t, 50, estimate, 10)
}

func TestQuasiCapsAtCombinedSize(t *testing.T) {
	cfg := ibf.DefaultConfig(3)
	f := ibf.New(cfg, 64, false)
	for _, r := range records(5, 1) {
		f.Add(r)
	}
	sample := records(100, 9000)
	estimate := Quasi(f, sample, 1000, 0.9)
	assert.LessOrEqual(t, estimate, int64(1000)+f.ItemCount())
}
