package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fastraven/fastraven/pkg/collection"
)

// Option configures loading behavior.
type Option func(*loader)

type loader struct {
	envPrefix string
	defaults  map[string]any
}

// WithEnvPrefix enables environment variable overrides. A dotted key
// like "server.port" is overridden by <PREFIX>_SERVER_PORT when set.
func WithEnvPrefix(prefix string) Option {
	return func(l *loader) {
		l.envPrefix = prefix
	}
}

// WithDefaults sets fallback values applied before the file and any
// environment overrides.
func WithDefaults(defaults map[string]any) Option {
	return func(l *loader) {
		l.defaults = defaults
	}
}

// Load reads a YAML configuration file into an ordered collection.
// Nested mappings are flattened into dotted keys, so
//
//	server:
//	  port: 8080
//
// becomes "server.port". Precedence from lowest to highest: defaults,
// file, environment.
func Load(path string, opts ...Option) (*collection.Collection, error) {
	var l loader
	for _, opt := range opts {
		opt(&l)
	}

	cfg := collection.New()
	for _, key := range sortedKeys(l.defaults) {
		cfg.Set(key, l.defaults[key])
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		flat := make(map[string]any)
		flatten("", raw, flat)
		for _, key := range sortedKeys(flat) {
			cfg.Set(key, flat[key])
		}
	}

	if l.envPrefix != "" {
		for _, key := range cfg.Keys() {
			if val, ok := os.LookupEnv(envName(l.envPrefix, key)); ok {
				cfg.Set(key, val)
			}
		}
	}

	return cfg, nil
}

func flatten(prefix string, src map[string]any, dst map[string]any) {
	for key, val := range src {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flatten(full, nested, dst)
			continue
		}
		dst[full] = val
	}
}

func envName(prefix, key string) string {
	name := strings.NewReplacer(".", "_", "-", "_").Replace(key)
	return prefix + "_" + strings.ToUpper(name)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
