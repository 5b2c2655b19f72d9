package keyboard

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded is wrapped by every *CapacityError.
	ErrCapacityExceeded = errors.New("keyboard: matrix capacity exceeded")

	// ErrNegativeRow is returned when a key sits above the first row.
	ErrNegativeRow = errors.New("keyboard: key placed above row 0")

	// ErrKeyboardState is returned when a lifecycle step runs out of order.
	ErrKeyboardState = errors.New("keyboard: invalid lifecycle state")
)

// Dimension names the matrix axis that overflowed.
type Dimension string

const (
	DimensionRows    Dimension = "rows"
	DimensionColumns Dimension = "columns"
)

// CapacityError reports a key whose row or column index does not fit the
// configured matrix. The output net table has a fixed number of row and
// column nets, so this is fatal.
type CapacityError struct {
	Dimension Dimension // rows or columns
	Index     int       // Offending index
	Limit     int       // Configured maximum count
	Key       int       // Number of the first key that overflowed
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("keyboard: too many %s: key %d needs index %d, limit is %d",
		e.Dimension, e.Key, e.Index, e.Limit)
}

// Unwrap lets errors.Is match ErrCapacityExceeded.
func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}
