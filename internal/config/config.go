// Package config loads the klepcbgen configuration.
//
// Configuration is read from a single YAML file named by:
//   - the --config flag, or
//   - the KLEPCBGEN_CONFIG environment variable.
//
// Without either, built-in defaults are used. Values missing from the file
// keep their defaults; unknown keys are an error so typos do not pass
// silently.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/kle-pcbgen/pkg/keyboard"
	"github.com/OpenTraceLab/kle-pcbgen/pkg/kicad/project"
)

// EnvVar names the environment variable holding the config path.
const EnvVar = "KLEPCBGEN_CONFIG"

// Config is the complete generator configuration.
type Config struct {
	// Matrix bounds the matrix and tunes column inference.
	Matrix MatrixConfig `yaml:"matrix"`

	// Layout places footprints on the board.
	Layout LayoutConfig `yaml:"layout"`

	// Schematic places symbols on the sheet.
	Schematic SchematicConfig `yaml:"schematic"`

	// Project sets title block fields.
	Project ProjectConfig `yaml:"project"`
}

// MatrixConfig mirrors keyboard.MatrixConfig.
type MatrixConfig struct {
	// MaxRows is the number of row nets. Default: 8
	MaxRows int `yaml:"max_rows"`

	// MaxColumns is the number of column nets. Default: 18
	MaxColumns int `yaml:"max_columns"`

	// WideKeyWidth is the width in units from which a key may drift more
	// than MaxColumnDrift columns. Default: 1.5
	WideKeyWidth float64 `yaml:"wide_key_width"`

	// MaxColumnDrift is the largest column jump allowed for narrow keys.
	// Default: 1
	MaxColumnDrift int `yaml:"max_column_drift"`
}

// LayoutConfig mirrors project.LayoutConfig. Values are millimetres.
type LayoutConfig struct {
	KeyPitch float64 `yaml:"key_pitch"`
	OriginX  float64 `yaml:"origin_x"`
	OriginY  float64 `yaml:"origin_y"`
}

// SchematicConfig mirrors project.SchematicConfig. Values are mils.
type SchematicConfig struct {
	OriginX int `yaml:"origin_x"`
	OriginY int `yaml:"origin_y"`
	ScaleX  int `yaml:"scale_x"`
	ScaleY  int `yaml:"scale_y"`
}

// ProjectConfig sets title block fields.
type ProjectConfig struct {
	// Comment replaces the "Generated by klepcbgen" title block comment.
	Comment string `yaml:"comment"`
}

// Default returns the built-in configuration.
func Default() *Config {
	m := keyboard.DefaultMatrixConfig()
	l := project.DefaultLayoutConfig()
	s := project.DefaultSchematicConfig()

	return &Config{
		Matrix: MatrixConfig{
			MaxRows:        m.MaxRows,
			MaxColumns:     m.MaxColumns,
			WideKeyWidth:   m.WideKeyWidth,
			MaxColumnDrift: m.MaxColumnDrift,
		},
		Layout: LayoutConfig{
			KeyPitch: l.KeyPitch,
			OriginX:  l.OriginX,
			OriginY:  l.OriginY,
		},
		Schematic: SchematicConfig{
			OriginX: s.OriginX,
			OriginY: s.OriginY,
			ScaleX:  s.ScaleX,
			ScaleY:  s.ScaleY,
		},
	}
}

// Load reads the file at path, or at $KLEPCBGEN_CONFIG when path is empty.
// With neither set it returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.MatrixConfig().Validate(); err != nil {
		return err
	}
	if err := c.LayoutConfig().Validate(); err != nil {
		return err
	}
	return c.SchematicConfig().Validate()
}

// MatrixConfig converts the matrix section.
func (c *Config) MatrixConfig() keyboard.MatrixConfig {
	return keyboard.MatrixConfig{
		MaxRows:        c.Matrix.MaxRows,
		MaxColumns:     c.Matrix.MaxColumns,
		WideKeyWidth:   c.Matrix.WideKeyWidth,
		MaxColumnDrift: c.Matrix.MaxColumnDrift,
	}
}

// LayoutConfig converts the layout section.
func (c *Config) LayoutConfig() project.LayoutConfig {
	return project.LayoutConfig{
		KeyPitch: c.Layout.KeyPitch,
		OriginX:  c.Layout.OriginX,
		OriginY:  c.Layout.OriginY,
	}
}

// SchematicConfig converts the schematic section.
func (c *Config) SchematicConfig() project.SchematicConfig {
	return project.SchematicConfig{
		OriginX: c.Schematic.OriginX,
		OriginY: c.Schematic.OriginY,
		ScaleX:  c.Schematic.ScaleX,
		ScaleY:  c.Schematic.ScaleY,
	}
}

// Marshal renders the configuration as YAML, for `klepcbgen config`.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
