package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/kle-pcbgen/pkg/keyboard"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, keyboard.DefaultMatrixConfig(), cfg.MatrixConfig())
	assert.Equal(t, 19.05, cfg.Layout.KeyPitch)
	assert.Equal(t, 800, cfg.Schematic.ScaleX)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		check   func(t *testing.T, cfg *Config)
		wantErr bool
	}{
		{
			name: "empty keeps defaults",
			yaml: "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "partial override",
			yaml: "matrix:\n  max_rows: 6\nproject:\n  comment: rev A\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 6, cfg.Matrix.MaxRows)
				assert.Equal(t, 18, cfg.Matrix.MaxColumns)
				assert.Equal(t, "rev A", cfg.Project.Comment)
			},
		},
		{
			name: "layout",
			yaml: "layout:\n  key_pitch: 18\n  origin_x: 0\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 18.0, cfg.LayoutConfig().KeyPitch)
				assert.Equal(t, 0.0, cfg.LayoutConfig().OriginX)
				assert.Equal(t, 17.78, cfg.LayoutConfig().OriginY)
			},
		},
		{name: "unknown key", yaml: "matrix:\n  max_row: 6\n", wantErr: true},
		{name: "zero rows", yaml: "matrix:\n  max_rows: 0\n", wantErr: true},
		{name: "negative drift", yaml: "matrix:\n  max_column_drift: -1\n", wantErr: true},
		{name: "zero pitch", yaml: "layout:\n  key_pitch: 0\n", wantErr: true},
		{name: "zero scale", yaml: "schematic:\n  scale_y: 0\n", wantErr: true},
		{name: "not yaml", yaml: "matrix: [", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "klepcbgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("matrix:\n  max_columns: 12\n"), 0o644))

	t.Run("no path no env", func(t *testing.T) {
		t.Setenv(EnvVar, "")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv(EnvVar, path)
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 12, cfg.Matrix.MaxColumns)
	})

	t.Run("flag wins over env", func(t *testing.T) {
		t.Setenv(EnvVar, filepath.Join(dir, "missing.yaml"))
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 12, cfg.Matrix.MaxColumns)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.yaml"))
		require.Error(t, err)
	})
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Project.Comment = "hello"

	data, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_rows: 8")

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}
