package ibf

import (
	"time"

	"github.com/spacemeshos/go-ibf/internal/log"
	"github.com/spacemeshos/go-ibf/internal/metrics"
)

// Outcome is the distinguishable result of a decode attempt. Probabilistic
// decode failure is an ordinary return value, not an error.
type Outcome int

const (
	// Success means every non-pure cell reduced to the identity cell.
	Success Outcome = iota
	// Fail means the peel stalled with non-identity cells remaining; the
	// output sets hold whatever was extracted before the stall, and the
	// caller is expected to resize and retry.
	Fail
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	if o == Success {
		return "success"
	}
	return "fail"
}

// Sets holds a decode's recovered symmetric difference: identifiers unique
// to each side, plus identifiers whose value changed across sides (when
// decoding a filter capable of detecting modifications).
type Sets struct {
	OnlyA    []uint64
	OnlyB    []uint64
	Modified []uint64
}

// Decode runs the peeling algorithm against f, which is
// typically the (destructive) result of a Subtract. Decode is itself
// destructive: it consumes f's cells as it peels them. The filter's
// pending sets from Subtract's early-capture fast path seed the output
// before peeling begins.
func Decode(f *IBF) (Outcome, Sets) {
	f.checkAlive()
	start := time.Now()
	outcome, out := decode(f)
	metrics.ReportDecode(outcome.String(), time.Since(start).Seconds())
	if outcome != Success {
		f.cfg.Log.With().Warning("decode stalled, caller should resize and retry", log.BlockSize(f.m))
	}
	return outcome, out
}

func decode(f *IBF) (Outcome, Sets) {
	var out Sets
	out.OnlyA = append(out.OnlyA, f.pendingA...)
	out.OnlyB = append(out.OnlyB, f.pendingB...)
	f.pendingA, f.pendingB = nil, nil

	queue := make([]int, 0, len(f.cells))
	queued := make([]bool, len(f.cells))
	push := func(p int) {
		if !queued[p] {
			queue = append(queue, p)
			queued[p] = true
		}
	}
	for i := range f.cells {
		if f.isPure(i) {
			push(i)
		}
	}

	for len(queue) > 0 {
		p := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		queued[p] = false
		if !f.isPure(p) {
			continue
		}
		cell := f.cells[p]
		id := cell.IDSum
		h := cell.HashSum
		neg := cell.Count < 0

		modified := false
		for _, qu := range f.positions(h) {
			q := int(qu)
			if q == p {
				continue
			}
			qc := f.cells[q]
			switch {
			case f.isPure(q) && qc.IDSum == id && qc.HashSum != h:
				// Modification signal: the same id resolves at a second
				// pure cell with a different value hash. Cancel that
				// cell's own singleton entirely rather than using h.
				f.cells[q] = Cell{}
				out.Modified = append(out.Modified, id)
				modified = true
			default:
				sign := int64(-1)
				if neg {
					sign = 1
				}
				nc, _ := f.cfg.CountKind.Add(qc.Count, sign)
				f.cells[q] = Cell{Count: nc, IDSum: qc.IDSum ^ id, HashSum: qc.HashSum ^ h}
				if nc != 0 && f.isPure(q) {
					push(q)
				}
			}
		}
		f.cells[p] = Cell{}

		if !modified {
			if neg {
				out.OnlyB = append(out.OnlyB, id)
			} else {
				out.OnlyA = append(out.OnlyA, id)
			}
			f.cfg.Log.With().Debug("peeled singleton cell", log.RecordID(id), log.Bool("only_b", neg))
		}
	}

	// Post-pass: cells left with count==0 but a non-identity sum
	// are recovered modifications that the in-loop signal missed because
	// the two colliding singletons never both reached purity at once.
	for i := range f.cells {
		c := f.cells[i]
		if c.Count != 0 || c.isZero() {
			continue
		}
		out.Modified = append(out.Modified, c.IDSum)
		f.cells[i] = Cell{}
	}

	outcome := Success
	for _, c := range f.cells {
		if !c.isZero() {
			outcome = Fail
			break
		}
	}
	return outcome, out
}

// SubtractAndDecode subtracts other from f and decodes the result,
// returning the decode outcome and recovered sets. f is left destroyed if
// destructive is true, matching Subtract.
func SubtractAndDecode(f, other *IBF, destructive bool) (Outcome, Sets, error) {
	d, err := f.Subtract(other, destructive)
	if err != nil {
		return Fail, Sets{}, err
	}
	outcome, sets := Decode(d)
	return outcome, sets, nil
}
