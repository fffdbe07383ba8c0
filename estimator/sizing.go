package estimator

import (
	"math"

	"github.com/spacemeshos/go-ibf/ibf"
	"github.com/spacemeshos/go-ibf/ibfcount"
	"github.com/spacemeshos/go-ibf/internal/log"
)

// NextIBFSize returns the (m, k) a reconciliation IBF should be allocated
// with given an estimated difference d and the number of prior failed
// decode attempts: k steps from 3 to 4 at 200 expected differences, and m
// doubles per failure on top of its 1.5*k*d base. logger receives the
// resizing decision; pass log.NewNop() when a caller doesn't care.
func NextIBFSize(logger log.Log, d int64, failedAttempts int) (m, k int) {
	k = 3
	if d >= 200 {
		k = 4
	}
	base := math.Ceil(1.5 * float64(d) * float64(k))
	m = int(base) << uint(failedAttempts)
	if m < k {
		m = k
	}
	logger.With().Debug("sized next ibf",
		log.BlockSize(m), log.Int("k", k), log.Int64("estimated_diff", d), log.Int("failed_attempts", failedAttempts))
	return m, k
}

// NextCountKind picks the narrowest counter width that NextIBFSize's (m, k)
// pairing can support for an estimated difference d.
func NextCountKind(d int64, m int) ibfcount.Kind {
	return ibfcount.Pick(m, int(d))
}

// HybridParams returns the strata cell count, minwise hash count and bit
// size for a hybrid estimator sized for setSize items. The deepest tier (13
// strata cells, 15 minwise permutations) applies both above the
// 16,000-item threshold and after any failed decode; that case is checked
// first so the 8,000-item tier stays reachable for sets between 8,000 and
// 16,000 items. logger receives the tiering decision; pass log.NewNop()
// when a caller doesn't care.
func HybridParams(logger log.Log, setSize int64, failedDecodeCount int) (strataCells, hashCount, bitSize int) {
	bitSize = 2
	strataCells, hashCount = 7, 8
	switch {
	case setSize > 16000 || failedDecodeCount > 0:
		strataCells, hashCount = 13, 15
	case setSize > 8000:
		strataCells, hashCount = 9, 10
	}
	logger.With().Debug("sized hybrid estimator tier",
		log.Int("strata_cells", strataCells), log.Int("hash_count", hashCount),
		log.Int64("set_size", setSize), log.Int("failed_decode_count", failedDecodeCount))
	return strataCells, hashCount, bitSize
}

// Factory constructs hybrid estimators sized from a set-size estimate and a
// failed-decode count, per the abstract HybridEstimatorFactory.create.
type Factory struct {
	Config ibf.Config
}

// Create returns a hybrid estimator sized for setSize items, escalating to
// deeper strata and more minwise permutations after a failed decode.
func (f Factory) Create(setSize int64, failedDecodeCount int) *HybridEstimator {
	strataCells, hashCount, bitSize := HybridParams(f.Config.Log, setSize, failedDecodeCount)
	return New(f.Config, int(setSize), bitSize, hashCount, setSize, strataCells)
}
