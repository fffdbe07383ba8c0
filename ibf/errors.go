package ibf

import "errors"

// ErrIncompatibleSketches is returned by Subtract and AddSketch when the two
// operand filters cannot be aligned: differing k, differing isReverse, or no
// common fold factor between their block sizes.
var ErrIncompatibleSketches = errors.New("ibf: incompatible sketches")

// ErrInvalidFoldFactor is returned by Fold when the requested factor is
// non-positive or does not divide the filter's block size.
var ErrInvalidFoldFactor = errors.New("ibf: invalid fold factor")

// ErrDestroyedOperand is returned when a debug build detects a read of an
// IBF that was consumed as the left operand of a destructive Subtract.
var ErrDestroyedOperand = errors.New("ibf: read of destroyed operand")

// DebugChecks enables generation-counter misuse checks. It defaults to
// false; tests and debug builds can set it to catch use of an operand
// consumed by a destructive Subtract. Left disabled, reading a destroyed
// operand is undefined rather than checked, matching ordinary release-build
// behavior.
var DebugChecks = false
