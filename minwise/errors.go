package minwise

import (
	"errors"
	"fmt"
)

// ErrIncompatibleSketches mirrors ibf.ErrIncompatibleSketches for minwise
// operations across sketches with different permutation counts or bit sizes.
var ErrIncompatibleSketches = errors.New("minwise: incompatible sketches")

// ErrInvalidFoldFactor mirrors ibf.ErrInvalidFoldFactor for Fold factors that
// don't evenly divide the permutation count.
var ErrInvalidFoldFactor = errors.New("minwise: invalid fold factor")

func errInvalidFoldFactor(factor, hashCount int) error {
	return fmt.Errorf("%w: factor=%d hashCount=%d", ErrInvalidFoldFactor, factor, hashCount)
}

func errIncompatible() error {
	return ErrIncompatibleSketches
}
