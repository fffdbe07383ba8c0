package ibf

// FoldingStrategy chooses a divisor of a filter's block size m to shrink it
// when it is under-loaded, trading cell count for a better fill ratio.
type FoldingStrategy interface {
	// Divisor returns the largest divisor of m that still leaves capacity/f
	// comfortably ahead of itemCount, or 0 if no fold is warranted.
	Divisor(m, capacity, itemCount int) int
	// AllocSize rounds want up to a block size this strategy can fold
	// cleanly, or returns want unchanged if the strategy imposes no
	// preference.
	AllocSize(want int) int
}

// SafetyFoldingStrategy requires that folding never push the load factor
// (itemCount/size) above 1/safety. It divides by the smallest factor that
// achieves that, preferring large folds when the filter is very sparse.
type SafetyFoldingStrategy struct {
	// Safety is the minimum capacity-to-itemCount ratio that must survive
	// a fold. At least 2x is the conventional floor.
	Safety int
}

// DefaultSafetyFolding is the 2x-safety folding strategy.
var DefaultSafetyFolding = SafetyFoldingStrategy{Safety: 2}

// Divisor implements FoldingStrategy.
func (s SafetyFoldingStrategy) Divisor(m, capacity, itemCount int) int {
	if itemCount <= 0 || m <= 1 {
		return 0
	}
	safety := s.Safety
	if safety < 1 {
		safety = 1
	}
	best := 0
	for f := 2; f <= m; f++ {
		if m%f != 0 {
			continue
		}
		if capacity/f >= safety*itemCount {
			best = f
		}
	}
	return best
}

// AllocSize implements FoldingStrategy; the plain safety strategy imposes no
// preference on the allocated size.
func (s SafetyFoldingStrategy) AllocSize(want int) int {
	if want < 1 {
		return 1
	}
	return want
}

// SmoothFoldingStrategy restricts allocation sizes to 7-smooth numbers
// (products of powers of 2, 3, 5 and 7) so that a fold divisor almost always
// exists, then applies the same safety rule as SafetyFoldingStrategy to pick
// it.
type SmoothFoldingStrategy struct {
	Safety int
}

// DefaultSmoothFolding is the 2x-safety smooth-numbers folding strategy.
var DefaultSmoothFolding = SmoothFoldingStrategy{Safety: 2}

// Divisor implements FoldingStrategy.
func (s SmoothFoldingStrategy) Divisor(m, capacity, itemCount int) int {
	return SafetyFoldingStrategy{Safety: s.Safety}.Divisor(m, capacity, itemCount)
}

// AllocSize implements FoldingStrategy, rounding want up to the next
// 7-smooth number so later folds have many candidate divisors.
func (s SmoothFoldingStrategy) AllocSize(want int) int {
	if want < 1 {
		return 1
	}
	for n := want; ; n++ {
		if isSmooth(n) {
			return n
		}
	}
}

// isSmooth reports whether n's only prime factors are 2, 3, 5 or 7.
func isSmooth(n int) bool {
	if n <= 0 {
		return false
	}
	for _, p := range [...]int{2, 3, 5, 7} {
		for n%p == 0 {
			n /= p
		}
	}
	return n == 1
}

// gcd returns the greatest common divisor of a and b.
func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
