package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies the file format backend used to read and write a Config.
type Format int

const (
	// FormatTOML selects the TOML backend.
	FormatTOML Format = iota

	// FormatYAML selects the YAML backend.
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// configBackend decodes and encodes a Config in one file format.
type configBackend interface {
	// Decode reads data into cfg, leaving fields the data does not mention untouched.
	// Unknown keys are an error.
	//
	// Parameters:
	//   - data: the encoded configuration
	//   - cfg: the destination, usually pre-filled with defaults
	//
	// Returns:
	//   - error: error if the data is malformed or has unknown keys
	Decode(data []byte, cfg *Config) error

	// Encode writes cfg in the backend's format.
	//
	// Parameters:
	//   - cfg: the configuration to encode
	//
	// Returns:
	//   - []byte: the encoded configuration
	//   - error: error if encoding fails
	Encode(cfg *Config) ([]byte, error)
}

func backendFor(format Format) (configBackend, error) {
	switch format {
	case FormatTOML:
		return newTOMLConfigBackend(), nil
	case FormatYAML:
		return newYAMLConfigBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}
}

// FormatFromPath selects a backend format from a file extension.
//
// Parameters:
//   - path: the config file path
//
// Returns:
//   - Format: FormatTOML for .toml, FormatYAML for .yaml and .yml
//   - error: error if the extension is not recognized
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("unsupported config format: %q", ext)
	}
}
