// Package config loads layered configuration from YAML, TOML and JSON files,
// built-in defaults and prefixed environment variables into a Go struct.
//
// Layers are applied in order: defaults, then files in the order they were
// added, then the environment. Keys are case-insensitive. Nested tables are
// merged; scalars and lists in a later layer replace earlier ones.
//
// Environment variables are matched by prefix and split on a separator,
// "__" by default, so with prefix "APP":
//
//	APP__SERVER__PORT=9090  ->  server.port = 9090
//	APP_DEBUG=true          ->  debug = true
//
// Struct fields are matched using their json tags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
)

const DefaultEnvSeparator = "__"

type fileSource struct {
	path   string
	format Format
	// inferred sources resolve their format from the extension at build time
	inferred bool
}

// Builder assembles configuration layers. The zero value is not usable; use
// NewBuilder.
type Builder struct {
	files         []fileSource
	envPrefix     string
	envSeparator  string
	ignoreMissing bool
	defaults      []defaultValue
	dotenv        []string
	err           error
}

type defaultValue struct {
	key   string
	value any
}

func NewBuilder() *Builder {
	return &Builder{envSeparator: DefaultEnvSeparator}
}

// AddFile adds a file whose format is inferred from its extension.
func (b *Builder) AddFile(path string) *Builder {
	b.files = append(b.files, fileSource{path: path, inferred: true})
	return b
}

// AddFileAs adds a file in an explicit format.
func (b *Builder) AddFileAs(path string, format Format) *Builder {
	b.files = append(b.files, fileSource{path: path, format: format})
	return b
}

func (b *Builder) AddYAMLFile(path string) *Builder { return b.AddFileAs(path, FormatYAML) }
func (b *Builder) AddTOMLFile(path string) *Builder { return b.AddFileAs(path, FormatTOML) }
func (b *Builder) AddJSONFile(path string) *Builder { return b.AddFileAs(path, FormatJSON) }

// WithEnvPrefix enables the environment layer for variables starting with prefix.
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.envPrefix = prefix
	return b
}

// WithEnvSeparator sets the separator between nested key segments in
// environment variable names.
func (b *Builder) WithEnvSeparator(sep string) *Builder {
	b.envSeparator = sep
	return b
}

// IgnoreMissingFiles skips files that do not exist instead of failing.
func (b *Builder) IgnoreMissingFiles(ignore bool) *Builder {
	b.ignoreMissing = ignore
	return b
}

// WithDefault sets a default for a dotted key such as "server.port".
func (b *Builder) WithDefault(key string, value any) *Builder {
	if _, err := splitKey(key, "."); err != nil && b.err == nil {
		b.err = err
	}
	b.defaults = append(b.defaults, defaultValue{key: key, value: value})
	return b
}

// WithDotenv loads the given .env files into the process environment before
// the environment layer is read. Variables already set are left alone and
// missing files are skipped.
func (b *Builder) WithDotenv(paths ...string) *Builder {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	b.dotenv = append(b.dotenv, paths...)
	return b
}

// Build merges all layers and decodes the result into out, which must be a
// pointer. Fields without a value in any layer keep what out already holds.
func (b *Builder) Build(out any) error {
	tree, err := b.BuildMap()
	if err != nil {
		return err
	}
	return decode(tree, out)
}

// BuildMap merges all layers into a generic tree with lowercased keys.
func (b *Builder) BuildMap() (map[string]any, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.loadDotenv(); err != nil {
		return nil, err
	}

	tree := map[string]any{}
	for _, d := range b.defaults {
		path, _ := splitKey(d.key, ".")
		setPath(tree, path, normalize(d.value))
	}

	for _, src := range b.files {
		layer, err := b.readFile(src)
		if err != nil {
			return nil, err
		}
		merge(tree, layer)
	}

	if b.envPrefix != "" {
		b.overlayEnv(tree, os.Environ())
	}
	return tree, nil
}

func (b *Builder) loadDotenv() error {
	var existing []string
	for _, p := range b.dotenv {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("%w: dotenv: %w", ErrParse, err)
	}
	return nil
}

func (b *Builder) readFile(src fileSource) (map[string]any, error) {
	format := src.format
	if src.inferred {
		f, ok := FormatFromPath(src.path)
		if !ok {
			return nil, fmt.Errorf("%s: %w", src.path, ErrUnknownFormat)
		}
		format = f
	}

	data, err := os.ReadFile(src.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if b.ignoreMissing {
				return map[string]any{}, nil
			}
			return nil, fmt.Errorf("%s: %w", src.path, ErrFileNotFound)
		}
		return nil, err
	}

	tree, err := format.decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s (%s): %w", ErrParse, src.path, format, err)
	}
	return normalize(tree).(map[string]any), nil
}

func (b *Builder) overlayEnv(tree map[string]any, environ []string) {
	prefix := strings.ToUpper(b.envPrefix)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" {
			continue
		}
		upper := strings.ToUpper(name)
		if !strings.HasPrefix(upper, prefix) {
			continue
		}
		rest := name[len(prefix):]
		switch {
		case b.envSeparator != "" && strings.HasPrefix(rest, b.envSeparator):
			rest = rest[len(b.envSeparator):]
		case strings.HasPrefix(rest, "_"):
			rest = rest[1:]
		default:
			continue
		}
		path, err := splitKey(strings.ToLower(rest), strings.ToLower(b.envSeparator))
		if err != nil {
			continue
		}
		setPath(tree, path, parseScalar(value))
	}
}

func splitKey(key, sep string) ([]string, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	var parts []string
	if sep == "" {
		parts = []string{key}
	} else {
		parts = strings.Split(key, sep)
	}
	for i, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
		parts[i] = strings.ToLower(p)
	}
	return parts, nil
}

func setPath(tree map[string]any, path []string, value any) {
	node := tree
	for _, seg := range path[:len(path)-1] {
		child, ok := node[seg].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[seg] = child
		}
		node = child
	}
	last := path[len(path)-1]
	if m, ok := value.(map[string]any); ok {
		if existing, ok := node[last].(map[string]any); ok {
			merge(existing, m)
			return
		}
	}
	node[last] = value
}

// merge copies src into dst, recursing into tables present on both sides.
func merge(dst, src map[string]any) {
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				merge(dm, sm)
				continue
			}
		}
		dst[k] = v
	}
}

// normalize lowercases keys and converts decoder specific container and
// number types into map[string]any, []any, int64 and float64.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[strings.ToLower(k)] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[strings.ToLower(fmt.Sprint(k))] = normalize(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}

// parseScalar interprets an environment value as bool, integer or float,
// falling back to the raw string.
func parseScalar(s string) any {
	if strings.EqualFold(s, "true") {
		return true
	}
	if strings.EqualFold(s, "false") {
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func decode(tree map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if err := dec.Decode(tree); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

// Load reads a single file, format inferred from its extension.
func Load[T any](path string) (T, error) {
	var out T
	err := NewBuilder().AddFile(path).Build(&out)
	return out, err
}

// LoadWithEnv reads a single file and overlays variables starting with envPrefix.
func LoadWithEnv[T any](path, envPrefix string) (T, error) {
	var out T
	err := NewBuilder().AddFile(path).WithEnvPrefix(envPrefix).Build(&out)
	return out, err
}

// LoadMultiple merges the files that exist, in order, and overlays the
// environment when envPrefix is not empty.
func LoadMultiple[T any](paths []string, envPrefix string) (T, error) {
	var out T
	b := NewBuilder().IgnoreMissingFiles(true)
	for _, p := range paths {
		b.AddFile(p)
	}
	if envPrefix != "" {
		b.WithEnvPrefix(envPrefix)
	}
	err := b.Build(&out)
	return out, err
}

// Paths lists the conventional locations for a config named name: the
// working directory first, then its config/ subdirectory.
func Paths(name string) []string {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	paths := make([]string, 0, 2*len(Extensions))
	for _, base := range []string{dir, filepath.Join(dir, "config")} {
		for _, ext := range Extensions {
			paths = append(paths, filepath.Join(base, name+ext))
		}
	}
	return paths
}

// AutoLoad merges every file Paths(name) finds and overlays the environment.
func AutoLoad[T any](name, envPrefix string) (T, error) {
	return LoadMultiple[T](Paths(name), envPrefix)
}
