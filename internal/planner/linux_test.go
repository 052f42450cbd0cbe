package planner

import (
	"errors"
	"testing"

	"github.com/nix-community/nix-installer/internal/action"
	"github.com/nix-community/nix-installer/internal/errs"
	"github.com/nix-community/nix-installer/internal/probe"
	"github.com/nix-community/nix-installer/internal/settings"
)

func TestLinuxRejectsLaunchd(t *testing.T) {
	s := settings.NewSettings()
	s.Init = settings.InitSystemLaunchd

	_, err := Linux(s, &probe.Snapshot{})
	if err == nil {
		t.Fatalf("expected an error when Init is launchd")
	}

	var planErr *errs.PlanError
	if !errors.As(err, &planErr) {
		t.Fatalf("expected *errs.PlanError, got %T", err)
	}

	if planErr.Kind != errs.UnsupportedPlatform {
		t.Fatalf("expected Kind UnsupportedPlatform, got %v", planErr.Kind)
	}
}

func TestLinuxProducesSequentialRootWithExpectedSteps(t *testing.T) {
	s := settings.NewSettings()
	s.NixBuildUserCount = 2
	s.ModifyProfile = false

	snap := &probe.Snapshot{
		Init:         settings.InitSystemSystemd,
		DistroFamily: "debian",
		SELinux:      probe.SELinuxDisabled,
		Container:    probe.ContainerNone,
	}

	p, err := Linux(s, snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	root, ok := p.Root.(*action.Composite)
	if !ok {
		t.Fatalf("expected root *action.Composite, got %T", p.Root)
	}

	if root.Concurrency != action.Sequential {
		t.Fatalf("expected a sequential root, got %v", root.Concurrency)
	}

	// createNixTree (dir + group + 2 users) + provisionNix (2) +
	// configureNix (2) + configureSystemdInitService (2 unit files +
	// ConfigureInitService), with SELinux disabled and ModifyProfile
	// false contributing nothing.
	wantSteps := 4 + 2 + 2 + 3
	if len(root.Children) != wantSteps {
		t.Fatalf("expected %d steps, got %d", wantSteps, len(root.Children))
	}

	if p.Planner != "linux" {
		t.Fatalf("expected plan.Planner \"linux\", got %q", p.Planner)
	}
}

func TestLinuxIncludesSELinuxStepWhenEnforcing(t *testing.T) {
	s := settings.NewSettings()
	s.NixBuildUserCount = 0
	s.ModifyProfile = false

	snap := &probe.Snapshot{
		Init:      settings.InitSystemSystemd,
		SELinux:   probe.SELinuxEnforcing,
		Container: probe.ContainerNone,
	}

	p, err := Linux(s, snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	root := p.Root.(*action.Composite)
	if len(root.Children) == 0 {
		t.Fatalf("expected at least one step")
	}

	if _, ok := root.Children[0].(*action.ConfigureSELinux); !ok {
		t.Fatalf("expected the first step to be ConfigureSELinux, got %T", root.Children[0])
	}
}

func TestLinuxFallsBackToNoneInitInContainer(t *testing.T) {
	s := settings.NewSettings()
	s.NixBuildUserCount = 0
	s.ModifyProfile = false

	snap := &probe.Snapshot{
		Init:      settings.InitSystemSystemd,
		SELinux:   probe.SELinuxDisabled,
		Container: probe.ContainerDocker,
	}

	p, err := Linux(s, snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	root := p.Root.(*action.Composite)
	last := root.Children[len(root.Children)-1]

	svc, ok := last.(*action.ConfigureInitService)
	if !ok {
		t.Fatalf("expected the last step to be ConfigureInitService, got %T", last)
	}

	if svc.Init != "none" {
		t.Fatalf("expected init system \"none\" inside a container, got %q", svc.Init)
	}
}
