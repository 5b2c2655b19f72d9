package kle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/jsonc"
	"golang.org/x/text/encoding/charmap"

	"github.com/OpenTraceLab/kle-pcbgen/pkg/keyboard"
)

// Format selects how layout bytes are decoded.
type Format int

const (
	FormatAuto Format = iota // JSON first, raw data as fallback
	FormatJSON               // KLE JSON download, comments tolerated
	FormatRaw                // KLE "Raw data" text
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatJSON:
		return "json"
	case FormatRaw:
		return "raw"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat converts a flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "raw":
		return FormatRaw, nil
	}
	return FormatAuto, fmt.Errorf("kle: unknown format %q (want auto, json or raw)", s)
}

type options struct {
	format Format
}

// Option configures Parse and ParseFile.
type Option func(*options)

// WithFormat forces a decoding format instead of auto-detection.
func WithFormat(f Format) Option {
	return func(o *options) {
		o.format = f
	}
}

// ParseFile reads and parses a layout file.
func ParseFile(path string, opts ...Option) (*keyboard.Keyboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	return Parse(data, opts...)
}

// Parse decodes layout bytes and ingests them.
func Parse(data []byte, opts ...Option) (*keyboard.Keyboard, error) {
	o := options{format: FormatAuto}
	for _, opt := range opts {
		opt(&o)
	}

	elements, err := Decode(data, o.format)
	if err != nil {
		return nil, err
	}
	return Ingest(elements)
}

// Decode turns layout bytes into generic elements without interpreting
// them. Input that is not valid UTF-8 is read as Latin-1.
func Decode(data []byte, format Format) ([]any, error) {
	data = toUTF8(data)

	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatRaw:
		return decodeRaw(data)
	case FormatAuto:
	default:
		return nil, fmt.Errorf("kle: unknown format %v", format)
	}

	elements, jsonErr := decodeJSON(data)
	if jsonErr == nil && isLayout(elements) {
		return elements, nil
	}

	raw, rawErr := decodeRaw(data)
	if rawErr == nil {
		return raw, nil
	}
	if jsonErr != nil {
		return nil, fmt.Errorf("%w: neither JSON (%v) nor raw data (%v)", ErrMalformedLayout, jsonErr, rawErr)
	}
	// Valid JSON with a bad top-level element; let Ingest name it
	return elements, nil
}

func decodeJSON(data []byte) ([]any, error) {
	var elements []any
	if err := json.Unmarshal(jsonc.ToJSON(data), &elements); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLayout, err)
	}
	return elements, nil
}

// isLayout reports whether every element is a row or a metadata object.
func isLayout(elements []any) bool {
	for _, element := range elements {
		switch element.(type) {
		case []any, map[string]any:
		default:
			return false
		}
	}
	return true
}

func toUTF8(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return data
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return decoded
}
