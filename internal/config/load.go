package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file format.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// Load reads path over the defaults, applies the environment and
// validates the result.
func Load(path string) (*Config, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := Default()
	if err := decode(path, data, format, cfg); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes r over the defaults. Unknown keys are errors. The result is
// not validated.
func Parse(r io.Reader, format Format) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := decode("<reader>", data, format, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(source string, data []byte, format Format, cfg *Config) error {
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			pe := &ParseError{Path: source, Message: err.Error(), Err: err}
			var de *toml.DecodeError
			if errors.As(err, &de) {
				pe.Line, _ = de.Position()
			}
			return pe
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return &ParseError{Path: source, Message: err.Error(), Err: err}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return nil
}

// Marshal encodes c in format.
func (c *Config) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		return toml.Marshal(c)
	case FormatYAML:
		return yaml.Marshal(c)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
