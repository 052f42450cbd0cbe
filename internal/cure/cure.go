// Package cure implements the diagnosis/repair layer (C7, §4.4): when
// no receipt exists but Nix artifacts are already present, it probes
// what exists, classifies each resource per §4.1.1, and synthesizes a
// Plan biased toward Adopt that still re-canonicalizes the init
// service, shell profile, and nix.conf.
package cure

import (
	"os"
	"time"

	"github.com/djherbis/times"

	"github.com/nix-community/nix-installer/internal/action"
	"github.com/nix-community/nix-installer/internal/constants"
	"github.com/nix-community/nix-installer/internal/plan"
	"github.com/nix-community/nix-installer/internal/planner"
	"github.com/nix-community/nix-installer/internal/probe"
	"github.com/nix-community/nix-installer/internal/settings"
	"github.com/nix-community/nix-installer/internal/system"
)

// IsInstalled reports whether this host shows signs of a prior Nix
// install: a populated /nix/store or an existing build group.
func IsInstalled(sys system.System, s *settings.Settings) bool {
	if info, err := sys.FS().Stat(constants.NixStoreDirectory); err == nil && info.IsDir() {
		entries, err := sys.FS().ReadDir(constants.NixStoreDirectory)
		if err == nil && len(entries) > 0 {
			return true
		}
	}

	found, _, err := probe.DetectExistingGroup(s.NixBuildGroupName)
	return err == nil && found
}

// InstallAge reports how long ago path (typically constants.NixRoot)
// was created, for surfacing in repair diagnostics ("found an
// unreceipted install from N days ago"). It prefers the filesystem's
// birth time where the platform exposes one and falls back to mtime
// otherwise, the same fallback the teacher applies when reporting
// generation creation times.
func InstallAge(path string) (time.Duration, error) {
	stat, err := times.Stat(path)
	if err != nil {
		return 0, err
	}

	created := stat.ModTime()
	if stat.HasBirthTime() {
		created = stat.BirthTime()
	}

	return time.Since(created), nil
}

// HasReceipt reports whether a canonical receipt already exists, in
// which case the ordinary install/uninstall path applies instead of
// cure.
func HasReceipt(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Diagnose builds the "cure-self" Plan described in §4.4: it reuses the
// platform Planner to get the canonical action sequence (so nix.conf
// and init-service canonicalization logic is defined in exactly one
// place) and tags the result as a cure plan. Diagnose does not call
// Plan() itself: when the returned Plan is planned against the live
// host, every Action's own Create/Adopt/Conflict classification takes
// over, so resources that already exist in the expected shape come back
// Adopt and the rest Create.
func Diagnose(sys system.System, s *settings.Settings, snap *probe.Snapshot, plannerName string) (*plan.Plan, error) {
	p, err := planner.Lookup(plannerName)
	if err != nil {
		return nil, err
	}

	result, err := p(s, snap)
	if err != nil {
		return nil, err
	}

	result.DiagnosticData = map[string]any{"cure": true}
	return result, nil
}

// CleanupBackupFiles removes the shell-profile backups
// (`.backup-before-nix`) the upstream shell-script installer leaves
// behind once this installer's own fenced block has been adopted,
// mirroring the nix-foundry cleanup pattern of sweeping leftover
// artifacts from a prior installer generation.
func CleanupBackupFiles(sys system.System, targets map[string][]string) []action.Action {
	var steps []action.Action
	for _, paths := range targets {
		for _, path := range paths {
			backup := path + constants.ShellProfileBackupSuffix
			if _, err := sys.FS().Stat(backup); err == nil {
				steps = append(steps, action.NewRemoveDirectory(backup))
			}
		}
	}
	return steps
}
