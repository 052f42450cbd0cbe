package plan

import (
	"encoding/json"
	"testing"

	"github.com/nix-community/nix-installer/internal/action"
	"github.com/nix-community/nix-installer/internal/settings"
)

func TestPlanRoundTrip(t *testing.T) {
	s := settings.NewSettings()
	root := action.NewComposite("install", action.Sequential,
		action.NewCreateDirectory("/nix", "", "", 0o755, false),
		action.NewRemoveDirectory("/nix/var/stale"),
	)

	p := New("linux", s, root)
	p.DiagnosticData = map[string]any{"cure": true}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}

	var restored Plan
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}

	if restored.Version != CurrentVersion {
		t.Fatalf("expected version %q, got %q", CurrentVersion, restored.Version)
	}

	if restored.Planner != "linux" {
		t.Fatalf("expected planner \"linux\", got %q", restored.Planner)
	}

	if restored.DiagnosticData["cure"] != true {
		t.Fatalf("expected diagnostic_data to survive round-trip, got %+v", restored.DiagnosticData)
	}

	restoredRoot, ok := restored.Root.(*action.Composite)
	if !ok {
		t.Fatalf("expected root *action.Composite, got %T", restored.Root)
	}

	if len(restoredRoot.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(restoredRoot.Children))
	}
}

func TestPlanStateReflectsRoot(t *testing.T) {
	p := &Plan{}

	if got := p.State(); got != action.StateUncompleted {
		t.Fatalf("expected Uncompleted for a nil root, got %s", got)
	}

	p.Root = action.NewComposite("empty", action.Sequential)
	if got := p.State(); got != action.StateCompleted {
		t.Fatalf("expected Completed for an empty composite root, got %s", got)
	}
}
