// Package estimator composes the strata and b-bit minwise sketches into a
// single cardinality estimate of a symmetric difference, and derives sizing
// parameters for the main reconciliation IBF from that estimate.
package estimator

import (
	"github.com/spacemeshos/go-ibf/ibf"
	"github.com/spacemeshos/go-ibf/minwise"
	"github.com/spacemeshos/go-ibf/strata"
)

// HybridEstimator composes a strata estimator, which is accurate for small
// differences, with a b-bit minwise sketch, whose similarity estimate
// degrades gracefully into the large-difference range where strata decoding
// is likely to fail.
type HybridEstimator struct {
	cfg       ibf.Config
	capacity  int
	strata    *strata.Estimator
	minwise   *minwise.Estimator
	itemCount int64
}

// New allocates a hybrid estimator. capacity bounds the final estimate
// (items added cannot exceed it meaningfully); bitSize and hashCount
// configure the minwise sketch; strataCells sizes each of the strata
// estimator's 32 mini-IBFs. setSize is accepted for parity with the
// abstract constructor signature but does not otherwise affect allocation;
// callers that want setSize-driven sizing should go through Factory.Create.
func New(cfg ibf.Config, capacity, bitSize, hashCount int, setSize int64, strataCells int) *HybridEstimator {
	return &HybridEstimator{
		cfg:      cfg,
		capacity: capacity,
		strata:   strata.New(cfg, strataCells),
		minwise:  minwise.New(bitSize, hashCount, capacity),
	}
}

// Strata, Minwise and Capacity expose the estimator's constituent sketches
// and configured capacity, for serialization.
func (h *HybridEstimator) Strata() *strata.Estimator   { return h.strata }
func (h *HybridEstimator) Minwise() *minwise.Estimator { return h.minwise }
func (h *HybridEstimator) Capacity() int               { return h.capacity }

// FromWire reconstructs a hybrid estimator from its deserialized
// constituent sketches.
func FromWire(cfg ibf.Config, capacity int, itemCount int64, s *strata.Estimator, mw *minwise.Estimator) *HybridEstimator {
	return &HybridEstimator{cfg: cfg, capacity: capacity, itemCount: itemCount, strata: s, minwise: mw}
}

// Add inserts a record into both constituent sketches.
func (h *HybridEstimator) Add(r ibf.Record) {
	h.strata.Add(r)
	h.minwise.Add(r.ID)
	h.itemCount++
}

// ItemCount returns the number of records added so far.
func (h *HybridEstimator) ItemCount() int64 { return h.itemCount }

// Decode estimates |self △ other|: the strata component supplies
// an accurate close-range estimate; the minwise similarity supplies a
// far-range fallback term scaled by the decode-count factor for
// failedDecodeCount prior attempts. If the strata component fails to
// decode at any stratum, the caller must fall back to a quasi-estimator
// (see Quasi) — Decode reports that with ok=false.
func (h *HybridEstimator) Decode(other *HybridEstimator, failedDecodeCount int) (int64, bool) {
	strataEstimate, ok := h.strata.Estimate(other.strata)
	if !ok {
		return 0, false
	}
	similarity := h.minwise.Similarity(other.minwise)
	factor := float64(strata.DecodeCountFactor(failedDecodeCount))
	farRange := int64(2 * factor * float64(h.capacity) * (1 - similarity))
	estimate := strataEstimate + farRange
	if bound := h.itemCount + other.itemCount; estimate > bound {
		estimate = bound
	}
	if estimate < 0 {
		estimate = 0
	}
	return estimate, true
}
