// Package configstore provides read access to each guild's enabled trigger configurations.
//
// Configs are owned by the external tenant configuration layer; the engine only ever sees validated, read-only snapshots. Declaration order is preserved so match output is deterministic.
package configstore

import (
	"context"
	"fmt"

	"github.com/guildmod/guildmod/trigger"
)

type ConfigStore interface {
	GetEnabledTriggerConfigs(ctx context.Context, guildID string) ([]trigger.Config, error)
}

// ValidateRaw turns one raw config entry (a JSON-decoded map carrying a "kind" field alongside the kind-specific fields) into a validated trigger config.
func ValidateRaw(registry *trigger.Registry, raw map[string]any) (trigger.Config, error) {
	kindVal, ok := raw["kind"]
	if !ok {
		return nil, fmt.Errorf("config entry missing \"kind\" field")
	}
	kindStr, ok := kindVal.(string)
	if !ok {
		return nil, fmt.Errorf("config \"kind\" field must be a string")
	}
	fields := make(map[string]any, len(raw)-1)
	for k, v := range raw {
		if k != "kind" {
			fields[k] = v
		}
	}
	return registry.ValidateConfig(trigger.Kind(kindStr), fields)
}

// ValidateRawList validates a guild's full declared config list, rejecting the whole list on the first invalid entry so a guild's rules are never partially applied.
func ValidateRawList(registry *trigger.Registry, raws []map[string]any) ([]trigger.Config, error) {
	out := make([]trigger.Config, 0, len(raws))
	for i, raw := range raws {
		cfg, err := ValidateRaw(registry, raw)
		if err != nil {
			return nil, fmt.Errorf("config entry %d: %w", i, err)
		}
		out = append(out, cfg)
	}
	return out, nil
}
