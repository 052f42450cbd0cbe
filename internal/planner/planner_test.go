package planner

import (
	"errors"
	"testing"

	"github.com/nix-community/nix-installer/internal/errs"
)

func TestLookupKnownPlanners(t *testing.T) {
	for _, name := range []string{"linux", "macos", "steam-deck", "ostree"} {
		if _, err := Lookup(name); err != nil {
			t.Errorf("Lookup(%q): unexpected error: %v", name, err)
		}
	}
}

func TestLookupUnknownPlanner(t *testing.T) {
	_, err := Lookup("amiga")
	if err == nil {
		t.Fatalf("expected an error for an unregistered planner name")
	}

	var planErr *errs.PlanError
	if !errors.As(err, &planErr) {
		t.Fatalf("expected *errs.PlanError, got %T", err)
	}

	if planErr.Kind != errs.UnsupportedPlatform {
		t.Fatalf("expected Kind UnsupportedPlatform, got %v", planErr.Kind)
	}
}

func TestBuildUserNames(t *testing.T) {
	names := buildUserNames("nixbld", 3)
	want := []string{"nixbld1", "nixbld2", "nixbld3"}

	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %d: %v", len(want), len(names), names)
	}

	for i, n := range want {
		if names[i] != n {
			t.Errorf("names[%d] = %q, want %q", i, names[i], n)
		}
	}
}

func TestBuildUserNamesZeroCount(t *testing.T) {
	names := buildUserNames("nixbld", 0)
	if len(names) != 0 {
		t.Fatalf("expected no names for a zero count, got %v", names)
	}
}
