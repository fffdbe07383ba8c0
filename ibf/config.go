package ibf

import (
	"github.com/spacemeshos/go-ibf/ibfcount"
	"github.com/spacemeshos/go-ibf/ibfhash"
	"github.com/spacemeshos/go-ibf/internal/log"
)

// cachedHasherSize bounds the LRU memoization DefaultConfig wraps its value
// hasher with: a reconciliation session typically replays hashes for a
// bounded universe of values across many rounds of resizing and retrying.
const cachedHasherSize = 4096

// Record is a single (identifier, value) pair being synchronized. Value is
// opaque to the sketch; only its hash under Config.Hasher is ever used.
type Record struct {
	ID    uint64
	Value []byte
}

// Config bundles the pluggable primitives every IBF in a reconciliation
// session must agree on: the number of hash functions, the counter width,
// the folding policy and the value hasher. Two filters are only compatible
// (see IsCompatibleWith) if they share K and IsReverse; Hasher and Folding
// only need to agree in practice, since they determine cell contents.
type Config struct {
	// K is the number of hash functions (cell positions) per record.
	// 3 is appropriate below ~200 expected differences, 4 above.
	K int
	// CountKind selects the saturating counter width backing each cell.
	CountKind ibfcount.Kind
	// Hasher reduces a record's value to a 32-bit word.
	Hasher ibfhash.Hasher
	// Folding chooses divisors when compressing an under-loaded filter.
	Folding FoldingStrategy
	// Log receives structured records of resizing, folding and
	// decode-retry decisions made against filters built from this config.
	// The zero value discards everything, matching library code that must
	// not log unless a caller opts in.
	Log log.Log
}

// DefaultConfig returns a Config using an LRU-memoized xxHash3 and the
// smooth-numbers folding strategy, suitable unless a caller has a specific
// reason to choose otherwise.
func DefaultConfig(k int) Config {
	return Config{
		K:         k,
		CountKind: ibfcount.I32,
		Hasher:    ibfhash.NewCached(ibfhash.XXH3{}, cachedHasherSize),
		Folding:   DefaultSmoothFolding,
	}
}

func (c Config) seedFor(isReverse bool, r Record) uint32 {
	if isReverse {
		return c.Hasher.Hash(r.Value)
	}
	return ibfhash.IDHash(r.ID)
}
