package keyboard

import "fmt"

// MatrixConfig bounds the matrix and tunes the column heuristic.
type MatrixConfig struct {
	// Capacity of the output net table
	MaxRows    int // Number of row nets (default: 8)
	MaxColumns int // Number of column nets (default: 18)

	// Drift correction: a candidate column more than MaxColumnDrift away from
	// the previous key's column is pulled back by one when the key is
	// narrower than WideKeyWidth.
	WideKeyWidth   float64 // default: 1.5
	MaxColumnDrift int     // default: 1
}

// DefaultMatrixConfig returns the bounds of the stock control circuit:
// 8 rows and 18 columns use all 26 I/O pins of an ATmega32U4.
func DefaultMatrixConfig() MatrixConfig {
	return MatrixConfig{
		MaxRows:        8,
		MaxColumns:     18,
		WideKeyWidth:   1.5,
		MaxColumnDrift: 1,
	}
}

// Validate checks the configuration for errors.
func (c MatrixConfig) Validate() error {
	if c.MaxRows < 1 {
		return fmt.Errorf("keyboard: max rows must be positive, got %d", c.MaxRows)
	}
	if c.MaxColumns < 1 {
		return fmt.Errorf("keyboard: max columns must be positive, got %d", c.MaxColumns)
	}
	if c.WideKeyWidth <= 0 {
		return fmt.Errorf("keyboard: wide key width must be positive, got %g", c.WideKeyWidth)
	}
	if c.MaxColumnDrift < 0 {
		return fmt.Errorf("keyboard: max column drift must not be negative, got %d", c.MaxColumnDrift)
	}
	return nil
}
