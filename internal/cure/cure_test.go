package cure

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nix-community/nix-installer/internal/logger"
	"github.com/nix-community/nix-installer/internal/probe"
	"github.com/nix-community/nix-installer/internal/settings"
	"github.com/nix-community/nix-installer/internal/system"
)

func TestHasReceiptReflectsFileExistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipt.json")

	if HasReceipt(path) {
		t.Fatalf("expected HasReceipt false before the file exists")
	}

	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("failed to seed receipt file: %v", err)
	}

	if !HasReceipt(path) {
		t.Fatalf("expected HasReceipt true once the file exists")
	}
}

func TestInstallAgeReportsElapsedTime(t *testing.T) {
	dir := t.TempDir()

	age, err := InstallAge(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if age < 0 {
		t.Fatalf("expected a non-negative age, got %v", age)
	}

	if age > time.Minute {
		t.Fatalf("expected a freshly created temp dir to be very young, got %v", age)
	}
}

func TestInstallAgeErrorsOnMissingPath(t *testing.T) {
	_, err := InstallAge(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatalf("expected an error for a nonexistent path")
	}
}

func TestCleanupBackupFilesOnlyMatchesExistingBackups(t *testing.T) {
	dir := t.TempDir()
	sys := system.NewLocalSystem(logger.NewNoOpLogger())

	present := filepath.Join(dir, "profile")
	if err := os.WriteFile(present+".backup-before-nix", []byte("old"), 0o644); err != nil {
		t.Fatalf("failed to seed backup file: %v", err)
	}

	absent := filepath.Join(dir, "other-profile")

	targets := map[string][]string{
		"shell": {present, absent},
	}

	steps := CleanupBackupFiles(sys, targets)
	if len(steps) != 1 {
		t.Fatalf("expected exactly 1 cleanup step, got %d", len(steps))
	}
}

func TestDiagnoseRejectsUnknownPlanner(t *testing.T) {
	sys := system.NewLocalSystem(logger.NewNoOpLogger())
	s := settings.NewSettings()

	_, err := Diagnose(sys, s, &probe.Snapshot{}, "amiga")
	if err == nil {
		t.Fatalf("expected an error for an unregistered planner name")
	}
}

func TestDiagnoseTagsDiagnosticData(t *testing.T) {
	sys := system.NewLocalSystem(logger.NewNoOpLogger())
	s := settings.NewSettings()
	s.ModifyProfile = false
	s.NixBuildUserCount = 0

	snap := &probe.Snapshot{
		Init:      settings.InitSystemSystemd,
		SELinux:   probe.SELinuxDisabled,
		Container: probe.ContainerNone,
	}

	p, err := Diagnose(sys, s, snap, "linux")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.DiagnosticData["cure"] != true {
		t.Fatalf("expected DiagnosticData[\"cure\"] to be true, got %+v", p.DiagnosticData)
	}
}
