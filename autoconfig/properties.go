// Package autoconfig implements the layered autoconfiguration assembly
// (spec.md §4.5, component C9): ConfigProperties built from ordered
// layers, a composable customizer chain per extension category, an SPI
// provider registry replacing classpath scanning, and the deterministic
// SDK build sequence with partial-failure cleanup.
package autoconfig

import (
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Properties is the merged configuration view the rest of autoconfig
// reads from (spec.md §4.5's ConfigProperties): layers are merged in the
// order supplied, later layers overriding earlier ones, mirroring
// koanf.Load's accumulate-in-call-order semantics.
type Properties struct {
	k *koanf.Koanf
}

// NewProperties merges suppliers (typically: built-in defaults, then a
// config file, then environment variables, then explicit overrides) into
// one Properties view, each later layer winning over earlier ones on key
// collision.
func NewProperties(layers ...map[string]any) (*Properties, error) {
	k := koanf.New(".")
	for _, layer := range layers {
		if err := k.Load(confmap.Provider(layer, "."), nil); err != nil {
			return nil, err
		}
	}
	return &Properties{k: k}, nil
}

// LoadEnv merges OTEL_-prefixed environment variables into p, lower-cased
// and with underscores turned into koanf's "." path separator
// (OTEL_EXPORTER_OTLP_ENDPOINT -> otel.exporter.otlp.endpoint), matching
// spec.md §4.5's "OTEL_* environment variables override file-based
// configuration" rule.
func (p *Properties) LoadEnv(prefix string) error {
	transform := func(s string) string {
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "_", ".")
	}
	return p.k.Load(env.Provider(prefix, ".", transform), nil)
}

// LoadJSON merges a JSON document into p (used for file-based
// configuration per spec.md §4.5).
func (p *Properties) LoadJSON(data []byte) error {
	return p.k.Load(rawBytesProvider{data: data}, json.Parser())
}

func (p *Properties) String(key, fallback string) string {
	if !p.k.Exists(key) {
		return fallback
	}
	return p.k.String(key)
}

func (p *Properties) Bool(key string, fallback bool) bool {
	if !p.k.Exists(key) {
		return fallback
	}
	return p.k.Bool(key)
}

func (p *Properties) Int(key string, fallback int) int {
	if !p.k.Exists(key) {
		return fallback
	}
	return p.k.Int(key)
}

func (p *Properties) Duration(key string, fallback time.Duration) time.Duration {
	if !p.k.Exists(key) {
		return fallback
	}
	// Plain integers are parsed first, as milliseconds, matching the
	// reference implementation's "duration properties are milliseconds
	// unless suffixed" convention; koanf.Duration would read them as
	// nanoseconds. Anything else goes to koanf's duration parsing.
	if ms, err := strconv.Atoi(p.k.String(key)); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	if d := p.k.Duration(key); d != 0 {
		return d
	}
	return fallback
}

func (p *Properties) StringSlice(key string, fallback []string) []string {
	if !p.k.Exists(key) {
		return fallback
	}
	return p.k.Strings(key)
}

// rawBytesProvider adapts a []byte document to koanf's Provider interface
// without needing a temp file, mirroring confmap's in-memory style.
type rawBytesProvider struct{ data []byte }

func (r rawBytesProvider) ReadBytes() ([]byte, error) { return r.data, nil }
func (r rawBytesProvider) Read() (map[string]any, error) {
	return nil, nil
}
