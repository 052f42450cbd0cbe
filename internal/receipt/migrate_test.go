package receipt

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nix-community/nix-installer/internal/plan"
)

func TestMigrateIfNeededNoOpAtCurrentVersion(t *testing.T) {
	data := []byte(`{"version":"` + plan.CurrentVersion + `","planner":"linux"}`)

	out, err := MigrateIfNeeded(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(out) != string(data) {
		t.Fatalf("expected data unchanged at current version, got %s", out)
	}
}

func TestMigrateIfNeededAppliesChain(t *testing.T) {
	data := []byte(`{"version":"0.9.0","planner":"linux"}`)

	out, err := MigrateIfNeeded(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(out, &raw); err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}

	if raw["version"] != plan.CurrentVersion {
		t.Fatalf("expected migrated version %q, got %v", plan.CurrentVersion, raw["version"])
	}

	if _, ok := raw["diagnostic_data"]; !ok {
		t.Fatalf("expected migration to backfill diagnostic_data")
	}
}

func TestMigrateIfNeededRefusesUnknownVersion(t *testing.T) {
	data := []byte(`{"version":"0.1.0","planner":"linux"}`)

	_, err := MigrateIfNeeded(data)
	if err == nil {
		t.Fatalf("expected an error for a version with no migration path")
	}

	if !strings.Contains(err.Error(), "no migration path") {
		t.Fatalf("unexpected error message: %v", err)
	}
}
