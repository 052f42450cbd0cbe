package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nix-community/nix-installer/internal/action"
	"github.com/nix-community/nix-installer/internal/errs"
	"github.com/nix-community/nix-installer/internal/logger"
	"github.com/nix-community/nix-installer/internal/plan"
	"github.com/nix-community/nix-installer/internal/receipt"
	"github.com/nix-community/nix-installer/internal/settings"
	"github.com/nix-community/nix-installer/internal/system"
)

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	store := receipt.NewStore(filepath.Join(dir, "receipt.json"), "")
	sys := system.NewLocalSystem(logger.NewNoOpLogger())
	return New(store, sys), dir
}

func TestEngineExecuteSucceedsAndPersistsReceipt(t *testing.T) {
	eng, dir := newTestEngine(t)
	target := filepath.Join(dir, "nix")

	root := action.NewComposite("install", action.Sequential,
		action.NewCreateDirectory(target, "", "", 0o755, false),
	)
	p := plan.New("linux", settings.NewSettings(), root)

	if err := eng.Execute(context.Background(), p, false); err != nil {
		t.Fatalf("unexpected execute error: %v", err)
	}

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected %s to have been created: %v", target, err)
	}

	if !eng.Store.Exists() {
		t.Fatalf("expected a receipt to have been persisted")
	}
}

func TestEngineExecuteCancelledBeforeStartReverts(t *testing.T) {
	eng, dir := newTestEngine(t)
	target := filepath.Join(dir, "nix")

	root := action.NewComposite("install", action.Sequential,
		action.NewCreateDirectory(target, "", "", 0o755, false),
	)
	p := plan.New("linux", settings.NewSettings(), root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := eng.Execute(ctx, p, false)
	if err == nil {
		t.Fatalf("expected an error for an already-cancelled context")
	}

	var engineErr *errs.EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("expected *errs.EngineError, got %T: %v", err, err)
	}

	if engineErr.Kind != errs.Cancelled {
		t.Fatalf("expected Kind Cancelled, got %v", engineErr.Kind)
	}

	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Fatalf("expected %s not to have been created, stat err: %v", target, statErr)
	}
}

func TestEngineExecuteConflictStopsBeforeSideEffects(t *testing.T) {
	eng, dir := newTestEngine(t)

	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("failed to seed test file: %v", err)
	}

	target := filepath.Join(dir, "nix")
	root := action.NewComposite("install", action.Sequential,
		action.NewCreateDirectory(target, "", "", 0o755, false),
		action.NewCreateDirectory(blocker, "", "", 0o755, false),
	)
	p := plan.New("linux", settings.NewSettings(), root)

	err := eng.Execute(context.Background(), p, false)
	if err == nil {
		t.Fatalf("expected planning to fail because %s is a file, not a directory", blocker)
	}

	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Fatalf("expected %s not to exist since planning failed before any execution", target)
	}
}

func TestEngineRevertRemovesCreatedDirectory(t *testing.T) {
	eng, dir := newTestEngine(t)
	target := filepath.Join(dir, "nix")

	root := action.NewComposite("install", action.Sequential,
		action.NewCreateDirectory(target, "", "", 0o755, false),
	)
	p := plan.New("linux", settings.NewSettings(), root)

	if err := eng.Execute(context.Background(), p, false); err != nil {
		t.Fatalf("unexpected execute error: %v", err)
	}

	if err := eng.Revert(context.Background(), p, false); err != nil {
		t.Fatalf("unexpected revert error: %v", err)
	}

	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Fatalf("expected %s to have been removed by revert", target)
	}
}
