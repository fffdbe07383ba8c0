// Package ibfkv pairs a primary (identifier-keyed) IBF with a reverse
// (value-keyed) IBF so that peeling can recover not only records unique to
// one side but records present on both sides under a changed value — a
// capability the plain Eppstein-Goodrich-Uyeda-Varghese construction lacks,
// since an unchanged identifier cancels silently when the filter is keyed
// by identifier alone.
package ibfkv

import (
	"github.com/spacemeshos/go-ibf/ibf"
)

// Paired owns a primary filter (keyed by identifier) and a reverse filter
// (keyed by value hash). The two are siblings coordinated by this struct,
// not a recursive ownership chain: Primary alone can answer "which ids
// differ", Reverse alone can answer "which ids moved to a different cell
// because their value changed".
type Paired struct {
	Primary *ibf.IBF
	Reverse *ibf.IBF
}

// New allocates a paired filter. Both halves share m and cfg; Primary is
// positioned by identifier hash, Reverse by value hash.
func New(cfg ibf.Config, m int) *Paired {
	return &Paired{
		Primary: ibf.New(cfg, m, false),
		Reverse: ibf.New(cfg, m, true),
	}
}

// Add inserts a record into both halves.
func (p *Paired) Add(r ibf.Record) {
	p.Primary.Add(r)
	p.Reverse.Add(r)
}

// Remove deletes a record from both halves.
func (p *Paired) Remove(r ibf.Record) {
	p.Primary.Remove(r)
	p.Reverse.Remove(r)
}

// IsCompatibleWith reports whether two paired filters can be subtracted:
// both halves must individually be compatible.
func (p *Paired) IsCompatibleWith(other *Paired) bool {
	return p.Primary.IsCompatibleWith(other.Primary) && p.Reverse.IsCompatibleWith(other.Reverse)
}

// SubtractAndDecode subtracts other from p and decodes both halves,
// reconciling them into a single symmetric difference:
//
//  1. The primary decode yields ids unique to one side by identity alone;
//     it is blind to value-only changes, since an unchanged identifier's
//     contributions cancel regardless of value.
//  2. The reverse decode, keyed by value hash, sees a record whose value
//     changed as two independent singletons — one per side, at different
//     cells — so its id surfaces in *both* reverse-decode output sets.
//     Any id in both is a modification; it is removed from the plain
//     onlyIn sets (if present there by coincidence) and reported once in
//     Modified.
//
// The returned bool is the conjunction of both decoders' success flags.
func (p *Paired) SubtractAndDecode(other *Paired, destructive bool) (bool, ibf.Sets, error) {
	if !p.IsCompatibleWith(other) {
		return false, ibf.Sets{}, ibf.ErrIncompatibleSketches
	}

	primaryOutcome, primarySets, err := ibf.SubtractAndDecode(p.Primary, other.Primary, destructive)
	if err != nil {
		return false, ibf.Sets{}, err
	}
	reverseOutcome, reverseSets, err := ibf.SubtractAndDecode(p.Reverse, other.Reverse, destructive)
	if err != nil {
		return false, ibf.Sets{}, err
	}

	modified := intersect(reverseSets.OnlyA, reverseSets.OnlyB)
	modified = union(modified, primarySets.Modified, reverseSets.Modified)

	onlyA := subtract(union(primarySets.OnlyA, reverseSets.OnlyA, nil), modified)
	onlyB := subtract(union(primarySets.OnlyB, reverseSets.OnlyB, nil), modified)

	out := ibf.Sets{OnlyA: onlyA, OnlyB: onlyB, Modified: modified}
	success := primaryOutcome == ibf.Success && reverseOutcome == ibf.Success
	return success, out, nil
}

func union(a, b, c []uint64) []uint64 {
	seen := make(map[uint64]bool, len(a)+len(b)+len(c))
	var out []uint64
	add := func(ids []uint64) {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	add(a)
	add(b)
	add(c)
	return out
}

func intersect(a, b []uint64) []uint64 {
	set := make(map[uint64]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	seen := make(map[uint64]bool, len(b))
	var out []uint64
	for _, id := range b {
		if set[id] && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func subtract(a, remove []uint64) []uint64 {
	rm := make(map[uint64]bool, len(remove))
	for _, id := range remove {
		rm[id] = true
	}
	var out []uint64
	for _, id := range a {
		if !rm[id] {
			out = append(out, id)
		}
	}
	return out
}
