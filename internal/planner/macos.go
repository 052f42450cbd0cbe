package planner

import (
	"fmt"

	"github.com/nix-community/nix-installer/internal/action"
	"github.com/nix-community/nix-installer/internal/constants"
	"github.com/nix-community/nix-installer/internal/errs"
	"github.com/nix-community/nix-installer/internal/plan"
	"github.com/nix-community/nix-installer/internal/probe"
	"github.com/nix-community/nix-installer/internal/settings"
)

// MacOS inserts CreateApfsVolume and CreateNixHookService before
// ProvisionNix, as described in §4.2.
func MacOS(s *settings.Settings, snap *probe.Snapshot) (*plan.Plan, error) {
	if s.Init == settings.InitSystemSystemd {
		return nil, &errs.PlanError{Kind: errs.UnsupportedPlatform, Resource: "init=systemd", Reason: "systemd is not available on macOS"}
	}

	var steps []action.Action

	steps = append(steps, action.NewCreateAPFSVolume("disk1", "Nix Store", constants.NixRoot))
	steps = append(steps, createNixTree(s)...)

	if !s.NoStartDaemon {
		steps = append(steps, createNixHookService(s))
	}

	steps = append(steps, provisionNix(s, false)...)
	steps = append(steps, configureNix(s, false)...)

	if s.ModifyProfile {
		steps = append(steps, setupDefaultProfile()...)
	}

	root := action.NewComposite("Install Nix (macOS)", action.Sequential, steps...)
	return plan.New("macos", s, root), nil
}

// createNixHookService writes the launchd daemon plist for nix-daemon,
// the macOS analogue of the Linux planner's systemd unit files. It is a
// single CreateFile step: nothing in this plan runs launchctl to load
// the plist.
func createNixHookService(s *settings.Settings) action.Action {
	plist := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
  <key>Label</key><string>%s</string>
  <key>ProgramArguments</key>
  <array>
    <string>/nix/var/nix/profiles/default/bin/nix-daemon</string>
  </array>
  <key>RunAtLoad</key><true/>
  <key>KeepAlive</key><true/>
</dict>
</plist>
`, constants.LaunchdDaemonLabel)

	return action.NewComposite("Configure launchd daemon", action.Sequential,
		action.NewCreateFile(constants.LaunchdDaemonPlistPath, "root", "wheel", 0o644, []byte(plist), s.Force),
	)
}
