package keyboard

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rowKeys lays out keys left to right on row y. Each entry is {gap, width}:
// the cursor moves by gap before the key is placed.
func rowKeys(y float64, entries ...[2]float64) [][3]float64 {
	var specs [][3]float64
	x := 0.0
	for _, e := range entries {
		x += e[0]
		specs = append(specs, [3]float64{x + e[1]/2, y + 0.5, e[1]})
		x += e[1]
	}
	return specs
}

func columnsOf(t *testing.T, cfg MatrixConfig, rows ...[][3]float64) []int {
	t.Helper()

	var specs [][3]float64
	for _, r := range rows {
		specs = append(specs, r...)
	}
	kb := buildKeyboard(t, specs...)
	require.NoError(t, kb.GenerateMatrix(cfg))

	columns := make([]int, kb.Len())
	for i, key := range kb.Keys() {
		columns[i] = key.Column
	}
	return columns
}

var unit = [2]float64{0, 1}

func TestFirstRowIsPositional(t *testing.T) {
	widths := [][]float64{
		{1},
		{1, 1, 1, 1},
		{1.5, 1, 1, 2.25},
		{6.25, 1.25, 1.25},
	}

	for _, ws := range widths {
		entries := make([][2]float64, len(ws))
		want := make([]int, len(ws))
		for i, w := range ws {
			entries[i] = [2]float64{0, w}
			want[i] = i
		}
		got := columnsOf(t, DefaultMatrixConfig(), rowKeys(0, entries...))
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("widths %v: columns mismatch (-want +got):\n%s", ws, diff)
		}
	}
}

func TestQuarterUnitStagger(t *testing.T) {
	got := columnsOf(t, DefaultMatrixConfig(),
		rowKeys(0, unit, unit, unit, unit),
		rowKeys(1, [2]float64{0.25, 1}, unit, unit, unit),
	)
	assert.Equal(t, []int{0, 1, 2, 3, 0, 1, 2, 3}, got)
}

func TestStaggerFollowsNearestKeyNotPosition(t *testing.T) {
	// Second row: a key at 0.75, then a 1.5u key centered at 3.0 after a
	// one unit gap. Its nearest neighbours above are at 2.5 and 3.5; the
	// first wins the tie, so it lands in column 2 rather than position 1.
	got := columnsOf(t, DefaultMatrixConfig(),
		rowKeys(0, unit, unit, unit, unit),
		rowKeys(1, [2]float64{0.25, 1}, [2]float64{1, 1.5}),
	)
	assert.Equal(t, []int{0, 1, 2, 3, 0, 2}, got)
}

func TestDuplicateColumnIsBumped(t *testing.T) {
	// A 2u key on the row above is nearest to both of the first two keys
	// below it.
	got := columnsOf(t, DefaultMatrixConfig(),
		rowKeys(0, [2]float64{0, 2}, unit, unit),
		rowKeys(1, unit, unit, unit),
	)
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2}, got)
}

func TestDriftCorrection(t *testing.T) {
	above := rowKeys(0, unit, unit, unit, unit)

	t.Run("narrow key pulled back", func(t *testing.T) {
		got := columnsOf(t, DefaultMatrixConfig(), above,
			rowKeys(1, unit, [2]float64{1, 1}))
		assert.Equal(t, []int{0, 1, 2, 3, 0, 1}, got)
	})

	t.Run("wide key keeps its column", func(t *testing.T) {
		got := columnsOf(t, DefaultMatrixConfig(), above,
			rowKeys(1, unit, [2]float64{1, 1.5}))
		assert.Equal(t, []int{0, 1, 2, 3, 0, 2}, got)
	})

	t.Run("threshold is configurable", func(t *testing.T) {
		cfg := DefaultMatrixConfig()
		cfg.MaxColumnDrift = 2
		got := columnsOf(t, cfg, above, rowKeys(1, unit, [2]float64{1, 1}))
		assert.Equal(t, []int{0, 1, 2, 3, 0, 2}, got)
	})
}

func TestColumnClampedAtZero(t *testing.T) {
	specs := rowKeys(0, unit, unit, unit)
	specs = append(specs,
		[3]float64{0.5, 1.5, 1},
		[3]float64{2.5, 1.5, 1.5},
		[3]float64{0.75, 1.5, 1}, // moved back under the first column
	)
	got := columnsOf(t, DefaultMatrixConfig(), specs)
	assert.Equal(t, []int{0, 1, 2, 0, 2, 0}, got)
}

func TestPreviousRowSkipsGaps(t *testing.T) {
	// Rows 0 and 2 only: row 2 aligns against row 0.
	got := columnsOf(t, DefaultMatrixConfig(),
		rowKeys(0, unit, unit, unit),
		rowKeys(2, [2]float64{0.25, 1}, unit),
	)
	assert.Equal(t, []int{0, 1, 2, 0, 1}, got)
}

func TestRowCapacityExceeded(t *testing.T) {
	kb := buildKeyboard(t, append(append(
		rowKeys(0, unit),
		rowKeys(1, unit)...),
		rowKeys(2, unit, unit)...)...)

	cfg := DefaultMatrixConfig()
	cfg.MaxRows = 2

	err := kb.GenerateMatrix(cfg)
	require.ErrorIs(t, err, ErrCapacityExceeded)

	var capErr *CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, DimensionRows, capErr.Dimension)
	assert.Equal(t, 2, capErr.Index)
	assert.Equal(t, 2, capErr.Limit)
	assert.Equal(t, 2, capErr.Key)
	assert.Contains(t, err.Error(), "rows")
}

func TestColumnCapacityExceeded(t *testing.T) {
	kb := buildKeyboard(t, rowKeys(0, unit, unit, unit, unit)...)

	cfg := DefaultMatrixConfig()
	cfg.MaxColumns = 3

	var capErr *CapacityError
	require.True(t, errors.As(kb.GenerateMatrix(cfg), &capErr))
	assert.Equal(t, DimensionColumns, capErr.Dimension)
	assert.Equal(t, 3, capErr.Index)
	assert.Equal(t, 3, capErr.Key)
	assert.Contains(t, capErr.Error(), "columns")
}

func TestNegativeRow(t *testing.T) {
	kb := buildKeyboard(t, [3]float64{0.5, -0.5, 1})
	assert.ErrorIs(t, kb.GenerateMatrix(DefaultMatrixConfig()), ErrNegativeRow)
}

func TestInferColumnsProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	widths := []float64{1, 1, 1, 1.25, 1.5, 1.75, 2, 2.25, 2.75, 6.25}

	cfg := DefaultMatrixConfig()
	cfg.MaxColumns = 1000

	for trial := 0; trial < 200; trial++ {
		var keys []Key
		rows := 1 + rng.Intn(6)
		for r := 0; r < rows; r++ {
			x := rng.Float64() * 0.75
			for n := 1 + rng.Intn(15); n > 0; n-- {
				w := widths[rng.Intn(len(widths))]
				keys = append(keys, Key{
					X: x + w/2, Y: float64(r) + 0.5, Width: w, Height: 1,
					Number: len(keys),
				})
				x += w + float64(rng.Intn(3))*0.25
			}
		}

		first, err := InferColumns(keys, cfg)
		require.NoError(t, err)
		second, err := InferColumns(keys, cfg)
		require.NoError(t, err)
		require.Equal(t, first, second, "trial %d: inference must be repeatable", trial)

		for i, column := range first {
			require.GreaterOrEqual(t, column, 0, "trial %d key %d", trial, i)
		}
	}
}
