package estimator

import "github.com/spacemeshos/go-ibf/ibf"

// Quasi estimates the size of a symmetric difference when only one side's
// IBF is available and the other side can supply a raw sample of its
// records: each sampled record is membership-tested against the filter,
// any miss is a definite non-member, and the false-positive rate corrects
// for hits that aren't real matches. The result is capped at
// otherSetSize + filter.ItemCount(), since no true difference can exceed
// the combined size of both sides.
func Quasi(f *ibf.IBF, sample []ibf.Record, otherSetSize int64, falsePositiveRate float64) int64 {
	if len(sample) == 0 {
		return 0
	}
	nonMembers := 0
	for _, r := range sample {
		if !f.Contains(r) {
			nonMembers++
		}
	}
	fraction := float64(nonMembers) / float64(len(sample))
	if falsePositiveRate < 1 {
		fraction /= 1 - falsePositiveRate
	}
	estimate := int64(fraction * float64(otherSetSize))
	if cap := otherSetSize + f.ItemCount(); estimate > cap {
		estimate = cap
	}
	if estimate < 0 {
		estimate = 0
	}
	return estimate
}
