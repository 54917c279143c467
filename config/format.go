package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file syntax.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Extensions lists the file extensions recognised for each format, in the
// order Paths probes them.
var Extensions = []string{".yaml", ".yml", ".toml", ".json"}

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	case ".json":
		return FormatJSON, true
	default:
		return 0, false
	}
}

// decode parses b into a generic tree.
func (f Format) decode(b []byte) (map[string]any, error) {
	tree := map[string]any{}
	switch f {
	case FormatYAML:
		if err := yaml.Unmarshal(b, &tree); err != nil {
			return nil, err
		}
	case FormatTOML:
		if _, err := toml.Decode(string(b), &tree); err != nil {
			return nil, err
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		if err := dec.Decode(&tree); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("format %d: %w", f, ErrUnknownFormat)
	}
	if tree == nil {
		// an empty YAML document decodes to nil
		tree = map[string]any{}
	}
	return tree, nil
}
