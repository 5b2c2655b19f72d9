package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/kle-pcbgen/pkg/keyboard"
	"github.com/OpenTraceLab/kle-pcbgen/pkg/kle"
)

// numpad has 17 keys in 5 rows. The metadata block comes first as KLE
// writes it.
const numpad = `[
  {"name": "Numpad", "author": "tester"},
  ["Num", "/", "*", "-"],
  ["7", "8", "9", {"h": 2}, "+"],
  ["4", "5", "6"],
  ["1", "2", "3", {"h": 2}, "Enter"],
  [{"w": 2}, "0", "."]
]`

func writeLayout(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "layout.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// run executes the root command with fresh flag values and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	configPath, layoutFmt = "", "auto"
	logLevel, logFormat, verbose = "warn", "text", false
	infile, outname, reportKind = "", "", "none"
	matrixInfile, matrixJSON = "", false

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), err
}

func TestGenerateE2E(t *testing.T) {
	t.Setenv("KLEPCBGEN_CONFIG", "")
	dir := t.TempDir()
	layout := writeLayout(t, dir, numpad)
	out := filepath.Join(dir, "numpad")

	stdout, err := run(t, "--infile", layout, "--outname", out, "--report", "csv")
	require.NoError(t, err)

	for _, want := range []string{"Keyboard: Numpad", "tester", "17", "5 of 8", "numpad.kicad_pcb", "numpad-bom.csv"} {
		assert.Contains(t, stdout, want)
	}
	for _, name := range []string{"numpad.sch", "numpad.kicad_pcb", "numpad.pro", "numpad.net", "numpad-cpl.csv", "numpad-bom.csv"} {
		assert.FileExists(t, filepath.Join(out, name))
	}

	t.Run("inspect lists nets", func(t *testing.T) {
		stdout, err := run(t, "inspect", filepath.Join(out, "numpad.kicad_pcb"))
		require.NoError(t, err)
		assert.Contains(t, stdout, "/Row_0")
		assert.Contains(t, stdout, "/Col_17")
		assert.Contains(t, stdout, "Net-(D16-Pad2)")
	})

	t.Run("inspect one net", func(t *testing.T) {
		stdout, err := run(t, "inspect", filepath.Join(out, "numpad.kicad_pcb"), "Net-(D0-Pad2)")
		require.NoError(t, err)
		assert.Contains(t, stdout, "K0 pad 2")
		assert.Contains(t, stdout, "D0 pad 2")
	})

	t.Run("inspect unknown net", func(t *testing.T) {
		_, err := run(t, "inspect", filepath.Join(out, "numpad.kicad_pcb"), "/Nope")
		require.Error(t, err)
	})
}

func TestGenerateXLSX(t *testing.T) {
	t.Setenv("KLEPCBGEN_CONFIG", "")
	dir := t.TempDir()
	layout := writeLayout(t, dir, numpad)
	out := filepath.Join(dir, "pad")

	_, err := run(t, "-i", layout, "-o", out, "--report", "xlsx")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "pad-assembly.xlsx"))
	assert.NoFileExists(t, filepath.Join(out, "pad-cpl.csv"))
}

func TestMatrixE2E(t *testing.T) {
	t.Setenv("KLEPCBGEN_CONFIG", "")
	layout := writeLayout(t, t.TempDir(), numpad)

	t.Run("grid", func(t *testing.T) {
		stdout, err := run(t, "matrix", "--infile", layout)
		require.NoError(t, err)
		assert.Contains(t, stdout, "17 keys, 5 rows")
		assert.Contains(t, stdout, "Enter")
		assert.Equal(t, 5+3, strings.Count(stdout, "\n"))
	})

	t.Run("json", func(t *testing.T) {
		stdout, err := run(t, "matrix", "--infile", layout, "--json")
		require.NoError(t, err)

		var doc struct {
			Keyboard string `json:"keyboard"`
			NetCount int    `json:"net_count"`
			Keys     []struct {
				Number int `json:"number"`
				Diode  int `json:"diode_net"`
			} `json:"keys"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
		assert.Equal(t, "Numpad", doc.Keyboard)
		assert.Equal(t, 14+8+18+17, doc.NetCount)
		require.Len(t, doc.Keys, 17)
		assert.Equal(t, 14+8+18+1, doc.Keys[0].Diode)
	})
}

func TestStageErrors(t *testing.T) {
	t.Setenv("KLEPCBGEN_CONFIG", "")
	dir := t.TempDir()
	layout := writeLayout(t, dir, numpad)

	tight := filepath.Join(dir, "tight.yaml")
	require.NoError(t, os.WriteFile(tight, []byte("matrix:\n  max_rows: 2\n"), 0o644))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[["a", {"w": "wide"}, "b"]]`), 0o644))

	tests := []struct {
		name    string
		args    []string
		prefix  string
		wantErr error
	}{
		{
			name:   "missing layout",
			args:   []string{"matrix", "--infile", filepath.Join(dir, "missing.json")},
			prefix: "reading layout",
		},
		{
			name:    "malformed layout",
			args:    []string{"matrix", "--infile", bad},
			prefix:  "reading layout",
			wantErr: kle.ErrMalformedLayout,
		},
		{
			name:    "too many rows",
			args:    []string{"matrix", "--infile", layout, "--config", tight},
			prefix:  "inferring matrix",
			wantErr: keyboard.ErrCapacityExceeded,
		},
		{
			name:   "missing config",
			args:   []string{"matrix", "--infile", layout, "--config", filepath.Join(dir, "none.yaml")},
			prefix: "loading config",
		},
		{
			name:   "bad layout format",
			args:   []string{"matrix", "--infile", layout, "--format", "xml"},
			prefix: "reading layout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.True(t, strings.HasPrefix(err.Error(), tt.prefix+": "), "got %q", err)

			var se *stageError
			assert.True(t, errors.As(err, &se))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestFlagErrors(t *testing.T) {
	layout := writeLayout(t, t.TempDir(), numpad)

	tests := []struct {
		name string
		args []string
	}{
		{"log level", []string{"matrix", "--infile", layout, "--log-level", "loud"}},
		{"log format", []string{"matrix", "--infile", layout, "--log-format", "xml"}},
		{"report kind", []string{"--infile", layout, "--outname", t.TempDir(), "--report", "pdf"}},
		{"stray argument", []string{"matrix", "--infile", layout, "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}
