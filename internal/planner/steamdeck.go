package planner

import (
	"github.com/nix-community/nix-installer/internal/action"
	"github.com/nix-community/nix-installer/internal/constants"
	"github.com/nix-community/nix-installer/internal/errs"
	"github.com/nix-community/nix-installer/internal/plan"
	"github.com/nix-community/nix-installer/internal/probe"
	"github.com/nix-community/nix-installer/internal/settings"
)

// steamDeckBindMountTarget is the directory on the writable home
// partition that is bind-mounted onto /nix, since the base OS image
// ships a read-only root partition (§4.2: "Steam-deck ... planners add
// additional Actions").
const steamDeckBindMountTarget = "/home/.nix-installer-mount"

// SteamDeck builds on Linux's action sequence and additionally creates
// a bind-mount source directory under the writable home partition,
// since SteamOS's root filesystem is read-only and /nix cannot be
// created directly on it.
func SteamDeck(s *settings.Settings, snap *probe.Snapshot) (*plan.Plan, error) {
	if !snap.SteamDeck && !s.Force {
		return nil, &errs.PlanError{Kind: errs.UnsupportedPlatform, Resource: "steam-deck", Reason: "host does not identify as SteamOS"}
	}

	base, err := Linux(s, snap)
	if err != nil {
		return nil, err
	}

	bindMount := action.NewComposite("Create Nix bind mount", action.Sequential,
		action.NewCreateDirectory(steamDeckBindMountTarget, "", "", 0o755, s.Force),
		action.NewCreateDirectory(constants.NixRoot, "", "", 0o755, s.Force),
		action.NewCreateBindMount(steamDeckBindMountTarget, constants.NixRoot, s.Force),
	)

	root, ok := base.Root.(*action.Composite)
	if !ok {
		return nil, &errs.PlanError{Kind: errs.UnsupportedPlatform, Resource: "steam-deck", Reason: "linux planner did not produce a composite root"}
	}

	root.Children = append([]action.Action{bindMount}, root.Children...)
	base.Planner = "steam-deck"

	return base, nil
}
