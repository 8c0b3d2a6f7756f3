package etl

import (
	"gopkg.in/yaml.v2"

	"aegis/pkg/core/apperr"
	"aegis/pkg/core/obslog"
	"aegis/pkg/core/settings"
)

// TierConfig resolves a Tier to a concrete connector name, plus the
// per-task knobs spec.md §9's "heterogeneous config objects" redesign
// note describes: unrecognized YAML keys warn via obslog rather than
// fail, since these files are hand-edited by analysts, not developers.
type TierConfig struct {
	Models        map[Tier]string
	Temperature   float64
	MaxTokens     int
	MaxConcurrent int
	RetryMax      int
}

var knownTierKeys = map[string]bool{
	"small": true, "medium": true, "large": true,
	"temperature": true, "max_tokens": true, "max_concurrent": true, "retry_max": true,
}

type rawTierConfig map[string]any

// LoadTierConfig parses a tier YAML document and layers overrides onto
// it: env-var knobs the process already resolved in settings.ETLSettings
// (model/temperature/max_tokens/max_concurrent) take precedence over the
// YAML defaults, mirroring the original source's "env var wins, YAML is
// the fallback" config.py pattern.
func LoadTierConfig(raw []byte, overrides settings.ETLSettings) (*TierConfig, error) {
	var doc rawTierConfig
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, apperr.Config("etl.tierconfig", "failed to parse tier config YAML", err)
	}

	cfg := &TierConfig{
		Models:        map[Tier]string{},
		Temperature:   0.1,
		MaxTokens:     4096,
		MaxConcurrent: 5,
		RetryMax:      3,
	}

	for key, val := range doc {
		if !knownTierKeys[key] {
			obslog.Warn("etl.tierconfig.unknown_key", "key", key)
			continue
		}
		switch key {
		case "small", "medium", "large":
			if s, ok := val.(string); ok {
				cfg.Models[Tier(key)] = s
			}
		case "temperature":
			if f, ok := toFloat(val); ok {
				cfg.Temperature = f
			}
		case "max_tokens":
			if n, ok := toInt(val); ok {
				cfg.MaxTokens = n
			}
		case "max_concurrent":
			if n, ok := toInt(val); ok {
				cfg.MaxConcurrent = n
			}
		case "retry_max":
			if n, ok := toInt(val); ok {
				cfg.RetryMax = n
			}
		}
	}

	if overrides.Model != "" {
		cfg.Models[TierLarge] = overrides.Model
	}
	if overrides.Temperature != 0 {
		cfg.Temperature = overrides.Temperature
	}
	if overrides.MaxTokens != 0 {
		cfg.MaxTokens = overrides.MaxTokens
	}
	if overrides.MaxConcurrent != 0 {
		cfg.MaxConcurrent = overrides.MaxConcurrent
	}

	return cfg, nil
}

// ModelFor resolves tier to a connector name, falling back to the large
// tier's model when a smaller tier was never configured.
func (c *TierConfig) ModelFor(tier Tier) string {
	if m, ok := c.Models[tier]; ok && m != "" {
		return m
	}
	return c.Models[TierLarge]
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}
