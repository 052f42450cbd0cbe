// Package planner implements the per-platform Planner functions (C4,
// §4.2): each consults Settings and a probe.Snapshot and produces a
// Plan whose root is a sequential Composite of top-level Actions, or a
// PlanError naming why the combination is rejected.
package planner

import (
	"fmt"

	"github.com/nix-community/nix-installer/internal/action"
	"github.com/nix-community/nix-installer/internal/errs"
	"github.com/nix-community/nix-installer/internal/plan"
	"github.com/nix-community/nix-installer/internal/probe"
	"github.com/nix-community/nix-installer/internal/settings"
)

// Planner produces a Plan for one platform target from Settings and a
// gathered probe Snapshot.
type Planner func(s *settings.Settings, snap *probe.Snapshot) (*plan.Plan, error)

// Registry maps the CLI's planner argument to its constructor, mirroring
// the discriminator-map shape used by internal/action's registry.
var Registry = map[string]Planner{
	"linux":      Linux,
	"macos":      MacOS,
	"steam-deck": SteamDeck,
	"ostree":     Ostree,
}

// Lookup returns the named planner or a PlanError if it does not exist.
func Lookup(name string) (Planner, error) {
	p, ok := Registry[name]
	if !ok {
		return nil, &errs.PlanError{Kind: errs.UnsupportedPlatform, Resource: name, Reason: "no planner registered for this target"}
	}
	return p, nil
}

func buildUserNames(prefix string, count int64) []string {
	names := make([]string, 0, count)
	for i := int64(1); i <= count; i++ {
		names = append(names, fmt.Sprintf("%s%d", prefix, i))
	}
	return names
}

func shellProfileActions(targets map[string][]string, snippet string) []action.Action {
	var actions []action.Action
	for _, paths := range targets {
		for _, path := range paths {
			actions = append(actions, action.NewConfigureShellProfile(path, snippet))
		}
	}
	return actions
}
