package linalg

import "errors"

var (
	// ErrDimension reports a vector or matrix that is not 2D or 3D.
	ErrDimension = errors.New("linalg: dimension must be 2 or 3")
	// ErrNotSquare reports matrix rows of unequal length or a row count
	// that differs from the column count.
	ErrNotSquare = errors.New("linalg: matrix must be square")
	// ErrDimensionMismatch reports a binary operation on operands of
	// different dimension.
	ErrDimensionMismatch = errors.New("linalg: dimension mismatch")
	// ErrCrossDimension reports a cross product on non-3D operands.
	ErrCrossDimension = errors.New("linalg: cross product requires 3D vectors")
)

// Epsilon guards degenerate numeric cases such as normalizing a zero vector.
const Epsilon = 1e-10
