// Package minwise implements a b-bit minwise estimator: a Jaccard-similarity
// sketch built from n independent min-hash permutations, retaining only the
// low b bits of each permutation's observed minimum. It trades exact
// similarity for a fixed, small memory footprint, the same tradeoff the
// strata estimator makes for set-difference cardinality.
package minwise

import (
	"encoding/binary"
	"math"

	"github.com/spacemeshos/go-ibf/ibfhash"
)

// Estimator holds n permutation minimums. mins carries the full 32-bit
// minimum per permutation (needed for exact Fold and Intersect); values is
// the bit-packed low-b-bits form used for Similarity and for serialization,
// since the wire layout only ever carries the packed bits.
type Estimator struct {
	bitSize   int
	hashCount int
	capacity  int
	itemCount int64
	mins      []uint32
	values    []byte
}

// New allocates an estimator with n = hashCount permutations retaining the
// low bitSize bits of each minimum.
func New(bitSize, hashCount, capacity int) *Estimator {
	e := &Estimator{
		bitSize:   bitSize,
		hashCount: hashCount,
		capacity:  capacity,
		mins:      make([]uint32, hashCount),
		values:    make([]byte, packedLen(bitSize, hashCount)),
	}
	for i := range e.mins {
		e.mins[i] = math.MaxUint32
	}
	return e
}

// FromWire reconstructs an estimator from its bit-packed form alone, for
// deserialization. The recovered per-permutation minimums are truncated to
// bitSize bits, so Fold and Intersect on a reconstructed estimator only
// approximate what they would compute from the original full-width hashes.
func FromWire(bitSize, hashCount, capacity int, itemCount int64, packed []byte) *Estimator {
	e := New(bitSize, hashCount, capacity)
	e.itemCount = itemCount
	copy(e.values, packed)
	for i := 0; i < hashCount; i++ {
		e.mins[i] = e.getBits(i)
	}
	return e
}

// BitSize, HashCount, Capacity and ItemCount expose the sketch's
// configuration and running cardinality, mirroring the accessors on ibf.IBF.
func (e *Estimator) BitSize() int     { return e.bitSize }
func (e *Estimator) HashCount() int   { return e.hashCount }
func (e *Estimator) Capacity() int    { return e.capacity }
func (e *Estimator) ItemCount() int64 { return e.itemCount }

// permSeed derives the i-th permutation's hash seed. Any fixed, distinct
// per-index seed works; the exact constant has no bearing on correctness.
func permSeed(i int) uint64 {
	return uint64(i)*0x9E3779B97F4A7C15 + 1
}

// Add folds an identifier into every permutation's running minimum.
func (e *Estimator) Add(id uint64) {
	e.itemCount++
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], id)
	for i := 0; i < e.hashCount; i++ {
		h := ibfhash.XXH3{Seed: permSeed(i)}.Hash(buf[:])
		if h < e.mins[i] {
			e.mins[i] = h
			e.setBits(i, h)
		}
	}
}

func (e *Estimator) setBits(slot int, h uint32) {
	setPackedBits(e.values, slot, e.bitSize, h)
}

func (e *Estimator) getBits(slot int) uint32 {
	return getPackedBits(e.values, slot, e.bitSize)
}

// Similarity estimates the Jaccard coefficient between e and other's
// underlying sets from the fraction of permutation slots whose low bits
// agree, corrected for the 2^-b probability that two unrelated slots agree
// by chance. The result is clamped to [0, 1].
func (e *Estimator) Similarity(other *Estimator) float64 {
	if e.hashCount != other.hashCount || e.bitSize != other.bitSize {
		return 0
	}
	agree := 0
	for i := 0; i < e.hashCount; i++ {
		if e.getBits(i) == other.getBits(i) {
			agree++
		}
	}
	observed := float64(agree) / float64(e.hashCount)
	chance := math.Pow(2, -float64(e.bitSize))
	if chance >= 1 {
		return 0
	}
	j := (observed - chance) / (1 - chance)
	if j < 0 {
		return 0
	}
	if j > 1 {
		return 1
	}
	return j
}

// Fold reduces the sketch to hashCount/factor permutations by taking the
// minimum within each group of factor adjacent permutations, the minwise
// analogue of IBF's stripe folding.
func (e *Estimator) Fold(factor int) (*Estimator, error) {
	if factor <= 0 || e.hashCount%factor != 0 {
		return nil, errInvalidFoldFactor(factor, e.hashCount)
	}
	if factor == 1 {
		return e.clone(), nil
	}
	newCount := e.hashCount / factor
	out := New(e.bitSize, newCount, e.capacity)
	out.itemCount = e.itemCount
	for i := 0; i < newCount; i++ {
		m := e.mins[i]
		for j := 1; j < factor; j++ {
			if v := e.mins[i+j*newCount]; v < m {
				m = v
			}
		}
		out.mins[i] = m
		out.setBits(i, m)
	}
	return out, nil
}

// Intersect combines e and other slot-wise by minimum, approximating the
// minwise sketch of the union of their underlying sets: the minimum hash
// value for a permutation over a union of sets is the minimum of the two
// sets' own minimums for that permutation.
func (e *Estimator) Intersect(other *Estimator) (*Estimator, error) {
	if e.hashCount != other.hashCount || e.bitSize != other.bitSize {
		return nil, errIncompatible()
	}
	out := New(e.bitSize, e.hashCount, e.capacity)
	out.itemCount = e.itemCount + other.itemCount
	for i := 0; i < e.hashCount; i++ {
		m := e.mins[i]
		if other.mins[i] < m {
			m = other.mins[i]
		}
		out.mins[i] = m
		out.setBits(i, m)
	}
	return out, nil
}

func (e *Estimator) clone() *Estimator {
	out := &Estimator{
		bitSize:   e.bitSize,
		hashCount: e.hashCount,
		capacity:  e.capacity,
		itemCount: e.itemCount,
		mins:      append([]uint32(nil), e.mins...),
		values:    append([]byte(nil), e.values...),
	}
	return out
}

// PackedBits exposes the bit-packed low-bits array for serialization.
func (e *Estimator) PackedBits() []byte {
	out := make([]byte, len(e.values))
	copy(out, e.values)
	return out
}

func packedLen(bitSize, hashCount int) int {
	total := bitSize * hashCount
	return (total + 7) / 8
}

func setPackedBits(buf []byte, slot, bitSize int, v uint32) {
	start := slot * bitSize
	mask := uint32(1)<<uint(bitSize) - 1
	v &= mask
	for b := 0; b < bitSize; b++ {
		bitPos := start + b
		byteIdx := bitPos / 8
		bitIdx := uint(bitPos % 8)
		if v&(1<<uint(b)) != 0 {
			buf[byteIdx] |= 1 << bitIdx
		} else {
			buf[byteIdx] &^= 1 << bitIdx
		}
	}
}

func getPackedBits(buf []byte, slot, bitSize int) uint32 {
	start := slot * bitSize
	var v uint32
	for b := 0; b < bitSize; b++ {
		bitPos := start + b
		byteIdx := bitPos / 8
		bitIdx := uint(bitPos % 8)
		if buf[byteIdx]&(1<<bitIdx) != 0 {
			v |= 1 << uint(b)
		}
	}
	return v
}
