package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/staffgraph/staffgraph/internal/cache"
)

// EngineConfig is the optional YAML file tuning the reconciliation
// engine: extra organization aliases, cache TTL overrides and the
// organization matching mode. Everything has a working default, the
// file only overrides.
type EngineConfig struct {
	// OrgAliases maps raw organization names to canonical keys, merged
	// over the built-in alias table.
	OrgAliases map[string]string `yaml:"org_aliases"`

	// OrgMatching selects the resolver: "lenient" (default) also treats
	// containment as a match, "strict" requires identical keys.
	OrgMatching string `yaml:"org_matching"`

	// CacheTTLs overrides per-category cache lifetimes, e.g. "48h".
	// A zero duration disables expiry for that category.
	CacheTTLs map[string]string `yaml:"cache_ttls"`
}

// LoadEngineConfig reads the engine config file. An empty path returns
// the zero config, meaning all defaults.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	cfg := &EngineConfig{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read engine config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse engine config %s: %w", path, err)
	}

	switch cfg.OrgMatching {
	case "", "lenient", "strict":
	default:
		return nil, fmt.Errorf("engine config: org_matching must be 'lenient' or 'strict', got %q", cfg.OrgMatching)
	}
	return cfg, nil
}

// TTLOverrides parses the configured cache lifetimes.
func (c *EngineConfig) TTLOverrides() (map[cache.Kind]time.Duration, error) {
	if len(c.CacheTTLs) == 0 {
		return nil, nil
	}
	overrides := make(map[cache.Kind]time.Duration, len(c.CacheTTLs))
	for name, raw := range c.CacheTTLs {
		switch cache.Kind(name) {
		case cache.KindCurated, cache.KindRoster, cache.KindProfile, cache.KindNews:
		default:
			return nil, fmt.Errorf("engine config: unknown cache category %q", name)
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("engine config: bad TTL for %s: %w", name, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("engine config: negative TTL for %s", name)
		}
		overrides[cache.Kind(name)] = d
	}
	return overrides, nil
}
