// Package ibfhash supplies the non-cryptographic hashing primitives shared
// by every sketch in this module: a pluggable 32-bit hash over opaque
// values, a deterministic identifier hash with a reserved zero word, and
// the double-hashing scheme used to turn one hash into k distinct cell
// positions.
package ibfhash

import (
	"encoding/binary"
	"sync"

	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// secondarySeed salts the secondary hash in the double-hashing scheme. It is
// arbitrary but fixed, so that two processes running the same scheme agree
// on cell positions without exchanging the seed.
const secondarySeed uint32 = 0x365CAB4E

// Hasher reduces an opaque value to a 32-bit word. Implementations need not
// be collision resistant; they only need to spread values evenly.
type Hasher interface {
	Hash(value []byte) uint32
}

// XXH3 hashes values with the xxHash3 algorithm, the default Hasher for this
// module: fast, well distributed, and already vetted for non-cryptographic
// sketch use.
type XXH3 struct{ Seed uint64 }

// Hash implements Hasher.
func (h XXH3) Hash(value []byte) uint32 {
	return uint32(xxh3.HashSeed(value, h.Seed))
}

// Blake2b hashes values with BLAKE2b-256 truncated to 32 bits. It trades
// speed for a cryptographic hash's diffusion, useful when callers want the
// value hash to double as a tamper-evidence check outside the sketch.
type Blake2b struct{}

// Hash implements Hasher.
func (Blake2b) Hash(value []byte) uint32 {
	sum := blake2b.Sum256(value)
	return binary.LittleEndian.Uint32(sum[:4])
}

// blake3Pool amortizes hasher allocation across Blake3.Hash calls, the same
// pooling this module's blake3 dependency is used for elsewhere.
var blake3Pool = sync.Pool{
	New: func() any { return blake3.New() },
}

// Blake3 hashes values with BLAKE3 truncated to 32 bits, pulling a hasher
// from blake3Pool rather than allocating one per call.
type Blake3 struct{}

// Hash implements Hasher.
func (Blake3) Hash(value []byte) uint32 {
	h := blake3Pool.Get().(*blake3.Hasher)
	defer blake3Pool.Put(h)
	h.Reset()
	h.Write(value) //nolint:errcheck // blake3.Hasher.Write never errors.
	var sum [32]byte
	h.Sum(sum[:0])
	return binary.LittleEndian.Uint32(sum[:4])
}

// IDHash hashes a 64-bit identifier into a nonzero 32-bit word. Zero is
// reserved as the XOR identity element, so id 0 is remapped: without this,
// an item with id 0 could vanish from a cell's idSum without leaving any
// trace in hashSum, breaking the purity check.
func IDHash(id uint64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], id)
	h := uint32(xxh3.Hash(buf[:]))
	if h == 0 {
		return 1
	}
	return h
}

// secondary computes the double-hashing step's secondary hash from a
// primary 32-bit hash.
func secondary(h uint32) uint32 {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], h^secondarySeed)
	s := uint32(xxh3.Hash(buf[:]))
	if s == 0 {
		return 1
	}
	return s
}

// Positions derives k distinct cell positions in [0, m) from a 32-bit hash
// using double hashing: position j is (h + j*h') mod m, skipping duplicates
// until k distinct positions have been collected.
//
// m must be >= k for this to terminate; callers are expected to enforce that
// invariant when sizing a filter.
func Positions(h uint32, m, k int) []uint32 {
	if m <= 0 || k <= 0 {
		return nil
	}
	hp := secondary(h)
	positions := make([]uint32, 0, k)
	seen := make(map[uint32]bool, k)
	// Double hashing can cycle through fewer than m residues when hp and m
	// share a factor; fall back to linear probing past a generous bound so
	// Positions always terminates even for pathological (h, m) pairs.
	limit := uint32(m) * 4
	for j := uint32(0); len(positions) < k && j < limit; j++ {
		pos := uint32((uint64(h) + uint64(j)*uint64(hp)) % uint64(m))
		if seen[pos] {
			continue
		}
		seen[pos] = true
		positions = append(positions, pos)
	}
	for pos := uint32(0); len(positions) < k && pos < uint32(m); pos++ {
		if !seen[pos] {
			seen[pos] = true
			positions = append(positions, pos)
		}
	}
	return positions
}
