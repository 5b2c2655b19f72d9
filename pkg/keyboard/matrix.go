package keyboard

import (
	"fmt"
	"math"
)

// PartitionRows groups keys by Row(), checking every row index against
// maxRows. Keys are expected in ingestion order.
func PartitionRows(keys []Key, maxRows int) ([]Group, error) {
	for _, key := range keys {
		row := key.Row()
		if row < 0 {
			return nil, fmt.Errorf("%w: key %d (%q) has row %d", ErrNegativeRow, key.Number, key.Legend, row)
		}
		if row > maxRows-1 {
			return nil, &CapacityError{
				Dimension: DimensionRows,
				Index:     row,
				Limit:     maxRows,
				Key:       key.Number,
			}
		}
	}

	return groupBy(len(keys), func(i int) int { return keys[i].Row() }), nil
}

// InferColumns returns the logical column of every key, indexed like keys.
// It has no side effects, so running it twice on the same keys gives the
// same answer.
func InferColumns(keys []Key, cfg MatrixConfig) ([]int, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rows, err := PartitionRows(keys, cfg.MaxRows)
	if err != nil {
		return nil, err
	}
	return inferColumns(keys, rows, cfg)
}

func inferColumns(keys []Key, rows []Group, cfg MatrixConfig) ([]int, error) {
	columns := make([]int, len(keys))

	for r, row := range rows {
		prev := 0
		for pos, idx := range row.Keys {
			column := pos

			if r > 0 && pos > 0 {
				key := keys[idx]
				column = nearestColumn(keys, columns, rows[r-1].Keys, key.X)

				// Never share a column with the key to the left
				if column == prev {
					column++
				}

				// Narrow keys may not skip a column
				if abs(column-prev) > cfg.MaxColumnDrift && key.Width < cfg.WideKeyWidth {
					column--
				}
			}

			column = clampColumn(column)
			columns[idx] = column
			prev = column
		}
	}

	for idx, column := range columns {
		if column > cfg.MaxColumns-1 {
			return nil, &CapacityError{
				Dimension: DimensionColumns,
				Index:     column,
				Limit:     cfg.MaxColumns,
				Key:       keys[idx].Number,
			}
		}
	}

	return columns, nil
}

// nearestColumn returns the column of the key in candidates whose X is
// closest to x. The earliest candidate wins a tie.
func nearestColumn(keys []Key, columns []int, candidates []int, x float64) int {
	best := candidates[0]
	bestDist := math.Abs(keys[best].X - x)

	for _, idx := range candidates[1:] {
		if d := math.Abs(keys[idx].X - x); d < bestDist {
			best, bestDist = idx, d
		}
	}
	return columns[best]
}

func clampColumn(v int) int {
	return max(v, 0)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
