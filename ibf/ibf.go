// Package ibf implements the Invertible Bloom Filter: a counting sketch
// whose cells carry XOR-folded identifier and hash sums, supporting
// insertion, deletion, subtraction between compatible filters, and a
// peeling decoder that recovers a symmetric difference.
package ibf

import (
	"fmt"

	"github.com/spacemeshos/go-ibf/ibfcount"
	"github.com/spacemeshos/go-ibf/ibfhash"
	"github.com/spacemeshos/go-ibf/internal/log"
	"github.com/spacemeshos/go-ibf/internal/metrics"
)

// Cell is one slot of an IBF's backing arrays. The identity cell is the
// zero value.
type Cell struct {
	Count   int64
	IDSum   uint64
	HashSum uint32
}

// isZero reports whether the cell equals the identity cell.
func (c Cell) isZero() bool {
	return c.Count == 0 && c.IDSum == 0 && c.HashSum == 0
}

// IBF is an Invertible Bloom Filter over records. A filter is either a
// "primary" filter, positioned by the identifier hash, or a "reverse"
// filter, positioned by the value hash; pairing one of each (see package
// ibfkv) extends plain peeling with modification detection, since a record
// whose value changes moves to a different cell in the reverse filter
// instead of cancelling silently.
//
// IBF is not safe for concurrent use; callers synchronizing disjoint
// filters across goroutines need no coordination, but a single filter must
// not be mutated from more than one goroutine at a time.
type IBF struct {
	cfg       Config
	m         int
	capacity  int
	isReverse bool
	cells     []Cell
	itemCount int64
	saturated bool
	destroyed bool

	// pendingA and pendingB hold ids captured by Subtract's fast path
	// positions where both operands were individually pure but
	// failed to cancel. Decode seeds its output sets with these before
	// peeling.
	pendingA []uint64
	pendingB []uint64
}

// New allocates an empty IBF with the given configuration and block size.
// isReverse selects the positioning axis: false positions by the record's
// identifier hash (a "key" filter), true positions by the record's value
// hash (a "reverse" filter). m is rounded up per cfg.Folding.AllocSize so
// later folds have divisors to work with, and must end up >= cfg.K.
func New(cfg Config, m int, isReverse bool) *IBF {
	if cfg.Folding != nil {
		m = cfg.Folding.AllocSize(m)
	}
	if m < cfg.K {
		m = cfg.K
	}
	return &IBF{
		cfg:       cfg,
		m:         m,
		capacity:  m,
		isReverse: isReverse,
		cells:     make([]Cell, m),
	}
}

// FromWire reconstructs an IBF from its serialized fields, without
// replaying Add/Remove. capacity is the block size the filter was
// originally allocated at, before any folds; it is metadata only and does
// not affect cell count, which is determined solely by len(cells).
func FromWire(cfg Config, capacity int, isReverse bool, cells []Cell, itemCount int64, saturated bool) *IBF {
	out := &IBF{
		cfg:       cfg,
		m:         len(cells),
		capacity:  capacity,
		isReverse: isReverse,
		cells:     make([]Cell, len(cells)),
		itemCount: itemCount,
		saturated: saturated,
	}
	copy(out.cells, cells)
	return out
}

// M returns the filter's block size (number of cells).
func (f *IBF) M() int { return f.m }

// Capacity returns the block size the filter was originally allocated at,
// before any folds reduced its cell count.
func (f *IBF) Capacity() int { return f.capacity }

// K returns the number of hash functions used per record.
func (f *IBF) K() int { return f.cfg.K }

// CountKind returns the saturating counter width backing this filter's
// cells.
func (f *IBF) CountKind() ibfcount.Kind { return f.cfg.CountKind }

// IsReverse reports whether this filter positions by value hash.
func (f *IBF) IsReverse() bool { return f.isReverse }

// ItemCount returns the filter's running estimate of its own cardinality,
// maintained incrementally by Add/Remove and recombined by Subtract and
// AddSketch.
func (f *IBF) ItemCount() int64 { return f.itemCount }

// IsSaturated reports whether any cell has hit its counter's representable
// bound, a soft CountSaturation condition.
func (f *IBF) IsSaturated() bool { return f.saturated }

func (f *IBF) checkAlive() {
	if DebugChecks && f.destroyed {
		panic(ErrDestroyedOperand)
	}
}

func (f *IBF) seed(r Record) uint32 {
	return f.cfg.seedFor(f.isReverse, r)
}

// Seed returns the positioning seed a record would hash to in this filter,
// for callers that want to precompute seeds (e.g. concurrently) before
// applying them with AddSeeded.
func (f *IBF) Seed(r Record) uint32 { return f.seed(r) }

func (f *IBF) positions(seed uint32) []uint32 {
	return ibfhash.Positions(seed, f.m, f.cfg.K)
}

// apply adds (sign=+1) or removes (sign=-1) a record's contribution at all
// of its k positions, tracking saturation.
func (f *IBF) apply(seed uint32, idv uint64, sign int64) {
	for _, pos := range f.positions(seed) {
		c := &f.cells[pos]
		nc, sat := f.cfg.CountKind.Add(c.Count, sign)
		c.Count = nc
		c.IDSum ^= idv
		c.HashSum ^= seed
		if sat {
			if !f.saturated {
				metrics.ReportSaturation()
			}
			f.saturated = true
		}
	}
}

// Add inserts a record into the filter.
func (f *IBF) Add(r Record) {
	f.checkAlive()
	f.apply(f.seed(r), r.ID, 1)
	f.itemCount++
}

// AddSeeded inserts an id using an externally precomputed positioning
// seed instead of deriving it from a Record, letting a caller hash many
// records concurrently before applying them with this single-threaded
// call.
func (f *IBF) AddSeeded(seed uint32, id uint64) {
	f.checkAlive()
	f.apply(seed, id, 1)
	f.itemCount++
}

// Remove deletes a record from the filter. Removing a record that was never
// added leaves the filter in a state where later decoding will report it as
// belonging to "the other side".
func (f *IBF) Remove(r Record) {
	f.checkAlive()
	f.apply(f.seed(r), r.ID, -1)
	f.itemCount--
}

// RemoveKey removes a record identified only by id, deriving positions from
// IDHash(id) rather than from a value hash. This is only meaningful for a
// primary (non-reverse) filter, where positions are id-based already; it
// exists for callers that know an id must be purged but no longer hold the
// associated value.
func (f *IBF) RemoveKey(id uint64) {
	f.checkAlive()
	f.apply(ibfhash.IDHash(id), id, -1)
	f.itemCount--
}

// Contains reports whether a record's positions are all non-empty; a false
// result is definitive, a true result is probabilistic (subject to the
// filter's false-positive rate).
func (f *IBF) Contains(r Record) bool {
	f.checkAlive()
	for _, pos := range f.positions(f.seed(r)) {
		if f.cells[pos].Count == 0 {
			return false
		}
	}
	return true
}

// Cells returns a copy of the filter's backing cell array, for inspection,
// testing and serialization.
func (f *IBF) Cells() []Cell {
	out := make([]Cell, len(f.cells))
	copy(out, f.cells)
	return out
}

// isPure reports whether cell p is pure: it carries exactly one net
// contribution, verified by recomputing that contribution's positions from
// its hash sum and checking p is among them. HashSum is always defined as
// the seed used to position the record, for both primary and reverse
// filters, so this check is uniform across both axes.
func (f *IBF) isPure(p int) bool {
	c := f.cells[p]
	if !f.cfg.CountKind.IsPure(c.Count) {
		return false
	}
	for _, pos := range f.positions(c.HashSum) {
		if int(pos) == p {
			return true
		}
	}
	return false
}

// IsCompatibleWith reports whether two filters can be aligned for Subtract
// or AddSketch: matching k, matching isReverse, and block sizes that share
// a fold-compatible common divisor (here, their GCD).
func (f *IBF) IsCompatibleWith(other *IBF) bool {
	if other == nil {
		return false
	}
	if f.cfg.K != other.cfg.K || f.isReverse != other.isReverse {
		return false
	}
	return gcd(f.m, other.m) >= f.cfg.K
}

// Fold reduces the filter to size m/factor by XOR/sum-reducing stripes of
// cells whose indices agree modulo the new size. factor must divide m
// exactly.
func (f *IBF) Fold(factor int) (*IBF, error) {
	f.checkAlive()
	if factor <= 0 || f.m%factor != 0 {
		return nil, fmt.Errorf("%w: factor=%d m=%d", ErrInvalidFoldFactor, factor, f.m)
	}
	if factor == 1 {
		return f.clone(), nil
	}
	newM := f.m / factor
	out := &IBF{
		cfg:       f.cfg,
		m:         newM,
		capacity:  f.capacity,
		isReverse: f.isReverse,
		cells:     foldCells(f.cells, newM),
		itemCount: f.itemCount,
	}
	metrics.ReportFold(f.isReverse)
	f.cfg.Log.With().Debug("folded ibf", log.FoldFactor(factor), log.BlockSize(newM))
	return out, nil
}

// foldCells XOR/sum-reduces cells into a target-sized array, stripe i
// absorbing every source index congruent to i modulo target.
func foldCells(cells []Cell, target int) []Cell {
	out := make([]Cell, target)
	for i, c := range cells {
		t := &out[i%target]
		t.Count += c.Count
		t.IDSum ^= c.IDSum
		t.HashSum ^= c.HashSum
	}
	return out
}

// Compress asks the configured FoldingStrategy for a divisor and folds if
// one is returned; otherwise it returns a copy of the filter unchanged.
func (f *IBF) Compress() (*IBF, error) {
	f.checkAlive()
	if f.cfg.Folding == nil {
		return f.clone(), nil
	}
	estimated := int(estimatedCount(f.cells, f.cfg.K))
	factor := f.cfg.Folding.Divisor(f.m, f.m, estimated)
	if factor <= 1 {
		f.cfg.Log.With().Debug("compress found no fold warranted", log.BlockSize(f.m))
		return f.clone(), nil
	}
	return f.Fold(factor)
}

func estimatedCount(cells []Cell, k int) int64 {
	if k <= 0 {
		return 0
	}
	var sum int64
	for _, c := range cells {
		if c.Count < 0 {
			sum -= c.Count
		} else {
			sum += c.Count
		}
	}
	return sum / int64(k)
}

func (f *IBF) clone() *IBF {
	out := &IBF{
		cfg:       f.cfg,
		m:         f.m,
		capacity:  f.capacity,
		isReverse: f.isReverse,
		cells:     make([]Cell, len(f.cells)),
		itemCount: f.itemCount,
		saturated: f.saturated,
	}
	copy(out.cells, f.cells)
	out.pendingA = append([]uint64(nil), f.pendingA...)
	out.pendingB = append([]uint64(nil), f.pendingB...)
	return out
}

// Subtract computes a - other, aligning the two filters to the GCD of
// their block sizes by folding whichever side needs it. If destructive is
// true, f's backing arrays are reused for the result and f must not be
// read afterward (its destroyed flag is set, enforced when DebugChecks is
// on); otherwise a fresh filter is allocated.
//
// While subtracting, any cell where both operand cells were individually
// pure but whose combination is non-zero is resolved immediately: the two
// singletons cancel each other's positional trace but not their identity,
// so both are captured into the result's pending sets and the cell is
// zeroed. This early capture handles the common case of two colliding
// singletons whose counts happen to net to zero without the slower peel
// ever seeing them.
func (f *IBF) Subtract(other *IBF, destructive bool) (*IBF, error) {
	f.checkAlive()
	other.checkAlive()
	if !f.IsCompatibleWith(other) {
		return nil, ErrIncompatibleSketches
	}
	target := gcd(f.m, other.m)
	a := f
	if f.m != target {
		folded, err := f.Fold(f.m / target)
		if err != nil {
			return nil, err
		}
		a = folded
		destructive = false
	}
	b := other
	if other.m != target {
		folded, err := other.Fold(other.m / target)
		if err != nil {
			return nil, err
		}
		b = folded
	}

	var out *IBF
	if destructive {
		out = a
	} else {
		out = &IBF{cfg: f.cfg, m: target, capacity: target, isReverse: f.isReverse, cells: make([]Cell, target)}
	}
	if out.cells == nil || len(out.cells) != target {
		out.cells = make([]Cell, target)
	}

	for i := 0; i < target; i++ {
		ca, cb := a.cells[i], b.cells[i]
		aPure := f.cfg.CountKind.IsPure(ca.Count)
		bPure := f.cfg.CountKind.IsPure(cb.Count)
		nc, sat := f.cfg.CountKind.Subtract(ca.Count, cb.Count)
		idSum := ca.IDSum ^ cb.IDSum
		hashSum := ca.HashSum ^ cb.HashSum
		if sat {
			if !out.saturated {
				metrics.ReportSaturation()
			}
			out.saturated = true
		}
		if aPure && bPure && nc == 0 && (idSum != 0 || hashSum != 0) {
			out.pendingA = append(out.pendingA, ca.IDSum)
			out.pendingB = append(out.pendingB, cb.IDSum)
			out.cells[i] = Cell{}
			continue
		}
		out.cells[i] = Cell{Count: nc, IDSum: idSum, HashSum: hashSum}
	}
	out.itemCount = f.itemCount - other.itemCount
	if out.itemCount < 0 {
		out.itemCount = -out.itemCount
	}

	if destructive {
		f.destroyed = true
	}
	return out, nil
}

// AddSketch combines two compatible filters cell-wise: counts add, id and
// hash sums XOR, and item counts sum. If inPlace is true, f's own arrays
// receive the result and are returned (f must be mutable, not destroyed);
// otherwise a fresh filter is returned.
func (f *IBF) AddSketch(other *IBF, inPlace bool) (*IBF, error) {
	f.checkAlive()
	other.checkAlive()
	if !f.IsCompatibleWith(other) || f.m != other.m {
		return nil, ErrIncompatibleSketches
	}
	var out *IBF
	if inPlace {
		out = f
	} else {
		out = f.clone()
	}
	for i := range out.cells {
		oc := other.cells[i]
		nc, sat := f.cfg.CountKind.Add(out.cells[i].Count, oc.Count)
		out.cells[i].Count = nc
		out.cells[i].IDSum ^= oc.IDSum
		out.cells[i].HashSum ^= oc.HashSum
		if sat {
			if !out.saturated {
				metrics.ReportSaturation()
			}
			out.saturated = true
		}
	}
	out.itemCount += other.itemCount
	return out, nil
}
