package receipt

import (
	"encoding/json"
	"fmt"

	"github.com/nix-community/nix-installer/internal/plan"
)

// migration upgrades a receipt one schema version forward.
type migration struct {
	from string
	to   string
	fn   func(raw map[string]any) (map[string]any, error)
}

// migrations is ordered oldest-first; MigrateIfNeeded walks it applying
// every step whose `from` matches the receipt's current version, so a
// receipt several versions behind upgrades in one Load (§9
// "migrate-old-receipt shim").
var migrations = []migration{
	{
		from: "0.9.0",
		to:   "1.0.0",
		fn: func(raw map[string]any) (map[string]any, error) {
			raw["version"] = "1.0.0"
			if _, ok := raw["diagnostic_data"]; !ok {
				raw["diagnostic_data"] = map[string]any{}
			}
			return raw, nil
		},
	},
}

// MigrateIfNeeded upgrades data to plan.CurrentVersion when a matching
// migration chain exists, returning an error naming the unmigratable
// version otherwise (§9: "the installer refuses to uninstall and
// directs the user to a matching installer version").
func MigrateIfNeeded(data []byte) ([]byte, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse receipt for migration check: %w", err)
	}

	version, _ := raw["version"].(string)
	if version == plan.CurrentVersion {
		return data, nil
	}

	for {
		if version == plan.CurrentVersion {
			return json.Marshal(raw)
		}

		migrated := false
		for _, m := range migrations {
			if m.from == version {
				next, err := m.fn(raw)
				if err != nil {
					return nil, fmt.Errorf("migrating receipt from %s to %s: %w", m.from, m.to, err)
				}
				raw = next
				version = m.to
				migrated = true
				break
			}
		}

		if !migrated {
			return nil, fmt.Errorf("receipt version %q has no migration path to %s; install a matching installer version to uninstall it", version, plan.CurrentVersion)
		}
	}
}
