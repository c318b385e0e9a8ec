package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Parameter errors are fatal to the call and raised before any computation.
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrListTooLong      = fmt.Errorf("%w: list too long", ErrInvalidParameter)
	ErrInvalidIndices   = fmt.Errorf("%w: indices must be sorted, unique and in range", ErrInvalidParameter)
	ErrTableTooSmall    = fmt.Errorf("%w: dynamic programming table too small", ErrInvalidParameter)
	ErrEmptyList        = fmt.Errorf("%w: list is empty", ErrInvalidParameter)

	// ErrInsufficientPrecision marks a p-value limited by float64 precision.
	// Engines signal it with NaN; the orchestrator attaches it to the result.
	ErrInsufficientPrecision = errors.New("insufficient floating point precision")
)

// NewParameterError reports a value outside its valid range.
func NewParameterError(name string, value interface{}, constraint string) error {
	return fmt.Errorf("%w: %s=%v; should be %s", ErrInvalidParameter, name, value, constraint)
}

// NewListTooLongError reports a list that cannot be indexed with 16-bit indices.
func NewListTooLongError(n, max int) error {
	return fmt.Errorf("%w: N=%d exceeds %d", ErrListTooLong, n, max)
}

// NewIndicesError reports the first offending position of an index list.
func NewIndicesError(pos int, reason string) error {
	return fmt.Errorf("%w: position %d: %s", ErrInvalidIndices, pos, reason)
}

// NewTableTooSmallError reports an undersized caller-supplied buffer.
func NewTableTooSmallError(rows, cols, needRows, needCols int) error {
	return fmt.Errorf("%w: got %dx%d, need at least %dx%d", ErrTableTooSmall, rows, cols, needRows, needCols)
}

// Error checking helpers
func IsParameterError(err error) bool {
	return errors.Is(err, ErrInvalidParameter)
}

func IsPrecisionError(err error) bool {
	return errors.Is(err, ErrInsufficientPrecision)
}
