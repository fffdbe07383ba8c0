// Package strata implements the strata estimator: a bank of 32 small
// IBFs, one per stratum of the identifier hash's trailing-zero count, used
// to cheaply estimate the size of a symmetric difference before sizing the
// main reconciliation filter.
package strata

import (
	"math/bits"

	"github.com/spacemeshos/go-ibf/ibf"
	"github.com/spacemeshos/go-ibf/ibfhash"
	"github.com/spacemeshos/go-ibf/internal/log"
)

// Levels is the number of strata, one per possible trailing-zero count of
// a 32-bit hash.
const Levels = 32

// Estimator holds one small IBF per stratum. An item with identifier hash
// h is placed into stratum trailingZeros(h): the lowest strata are the
// most densely populated (roughly half of all items land in stratum 0),
// the highest are sparse, which is what lets decoding start from the
// sparsest populated stratum and work down only as far as needed.
type Estimator struct {
	cfg    ibf.Config
	cellsM int
	levels [Levels]*ibf.IBF
}

// New allocates a strata estimator whose mini-IBFs each have cellsM cells.
func New(cfg ibf.Config, cellsM int) *Estimator {
	e := &Estimator{cfg: cfg, cellsM: cellsM}
	for i := range e.levels {
		e.levels[i] = ibf.New(cfg, cellsM, false)
	}
	return e
}

// FromLevels reconstructs a strata estimator from 32 already-populated
// mini-IBFs, for deserialization.
func FromLevels(cfg ibf.Config, levels [Levels]*ibf.IBF) *Estimator {
	return &Estimator{cfg: cfg, levels: levels}
}

func stratumOf(id uint64) int {
	h := ibfhash.IDHash(id)
	tz := bits.TrailingZeros32(h)
	if tz >= Levels {
		tz = Levels - 1
	}
	return tz
}

// Level returns the mini-IBF for the given stratum, for inspection and
// serialization.
func (e *Estimator) Level(i int) *ibf.IBF { return e.levels[i] }

// Add inserts a record into the stratum determined by its identifier hash.
func (e *Estimator) Add(r ibf.Record) {
	e.levels[stratumOf(r.ID)].Add(r)
}

// Remove deletes a record from its stratum.
func (e *Estimator) Remove(r ibf.Record) {
	e.levels[stratumOf(r.ID)].Remove(r)
}

// DecodeCountFactor scales an estimate to compensate for prior failed
// decode attempts: it doubles per failed attempt, biasing the next
// estimate larger so a retry is less likely to undershoot again.
func DecodeCountFactor(failedAttempts int) int64 {
	if failedAttempts <= 0 {
		return 1
	}
	f := int64(1)
	for i := 0; i < failedAttempts; i++ {
		f *= 2
	}
	return f
}

// Estimate decodes e against other from the deepest stratum upward,
// stopping at the first stratum (scanning from 31 down to 0) whose
// subtraction decodes successfully, and scales the accumulated difference
// by 2^level to account for the strata below it that were never examined.
// It returns the estimate and whether any stratum decoded successfully.
func (e *Estimator) Estimate(other *Estimator) (int64, bool) {
	var accumulated int64
	sMin := -1
	for level := Levels - 1; level >= 0; level-- {
		outcome, sets, err := ibf.SubtractAndDecode(e.levels[level], other.levels[level], false)
		if err != nil || outcome != ibf.Success {
			e.cfg.Log.With().Debug("stratum decode stalled, stopping strata scan", log.Stratum(level))
			break
		}
		accumulated += int64(len(sets.OnlyA) + len(sets.OnlyB) + len(sets.Modified))
		sMin = level
	}
	if sMin < 0 {
		e.cfg.Log.With().Debug("no stratum decoded, strata estimate unavailable")
		return 0, false
	}
	e.cfg.Log.With().Debug("strata estimate settled", log.Stratum(sMin), log.Int64("accumulated", accumulated))
	return accumulated << uint(sMin), true
}
