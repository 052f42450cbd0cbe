package receipt

import (
	"path/filepath"
	"testing"

	"github.com/nix-community/nix-installer/internal/action"
	"github.com/nix-community/nix-installer/internal/plan"
	"github.com/nix-community/nix-installer/internal/settings"
)

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	receiptPath := filepath.Join(dir, "receipt.json")

	store := NewStore(receiptPath, "")

	root := action.NewComposite("install", action.Sequential,
		action.NewCreateDirectory("/nix", "", "", 0o755, false),
	)
	p := plan.New("linux", settings.NewSettings(), root)

	if err := store.Save(p); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	if !store.Exists() {
		t.Fatalf("expected Exists() to report true after Save")
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	if loaded.Planner != "linux" {
		t.Fatalf("expected planner \"linux\", got %q", loaded.Planner)
	}

	if _, ok := loaded.Root.(*action.Composite); !ok {
		t.Fatalf("expected *action.Composite root, got %T", loaded.Root)
	}
}

func TestStoreExistsFalseBeforeSave(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "receipt.json"), "")

	if store.Exists() {
		t.Fatalf("expected Exists() to report false before any Save")
	}
}
