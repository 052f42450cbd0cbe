package planner

import (
	"github.com/nix-community/nix-installer/internal/action"
	"github.com/nix-community/nix-installer/internal/constants"
	"github.com/nix-community/nix-installer/internal/errs"
	"github.com/nix-community/nix-installer/internal/plan"
	"github.com/nix-community/nix-installer/internal/probe"
	"github.com/nix-community/nix-installer/internal/settings"
)

// ostreeSystemdUnitOverrideDir holds a drop-in that points nix-daemon's
// StateDirectory at a location that survives an ostree deployment swap,
// since the base /etc and /usr trees are replaced wholesale on upgrade.
const ostreeSystemdUnitOverrideDir = "/etc/systemd/system/nix-daemon.service.d"

// ostreeNixStateDir is where /nix actually lives on an ostree system:
// the deployment root is replaced wholesale on upgrade, so /nix must be
// bind-mounted in from /var, which persists across deployments.
const ostreeNixStateDir = "/var/nix"

// Ostree builds on Linux's action sequence, additionally bind-mounting
// /nix from /var (since the deployment root is read-only and replaced
// on upgrade, §4.2) and writing a systemd unit override so the daemon
// survives an ostree deployment swap.
func Ostree(s *settings.Settings, snap *probe.Snapshot) (*plan.Plan, error) {
	base, err := Linux(s, snap)
	if err != nil {
		return nil, err
	}

	bindMount := action.NewComposite("Bind mount /nix from /var", action.Sequential,
		action.NewCreateDirectory(ostreeNixStateDir, "", "", 0o755, s.Force),
		action.NewCreateDirectory(constants.NixRoot, "", "", 0o755, s.Force),
		action.NewCreateBindMount(ostreeNixStateDir, constants.NixRoot, s.Force),
	)

	override := "[Service]\nStateDirectory=nix-daemon\n"

	overrideStep := action.NewComposite("Configure ostree-durable daemon unit", action.Sequential,
		action.NewCreateDirectory(ostreeSystemdUnitOverrideDir, "", "", 0o755, s.Force),
		action.NewCreateFile(ostreeSystemdUnitOverrideDir+"/override.conf", "", "", 0o644, []byte(override), s.Force),
	)

	root, ok := base.Root.(*action.Composite)
	if !ok {
		return nil, &errs.PlanError{Kind: errs.UnsupportedPlatform, Resource: "ostree", Reason: "linux planner did not produce a composite root"}
	}

	root.Children = append([]action.Action{bindMount}, root.Children...)
	root.Children = append(root.Children, overrideStep)
	base.Planner = "ostree"

	return base, nil
}
