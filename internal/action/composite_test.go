package action

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/nix-community/nix-installer/internal/logger"
	"github.com/nix-community/nix-installer/internal/system"
)

func newTestContext() *Context {
	return &Context{
		Ctx: context.Background(),
		Sys: system.NewLocalSystem(logger.NewNoOpLogger()),
	}
}

func TestCompositeStateDerivation(t *testing.T) {
	dir := t.TempDir()
	ctx := newTestContext()

	a := NewCreateDirectory(filepath.Join(dir, "a"), "", "", 0o755, false)
	b := NewCreateDirectory(filepath.Join(dir, "b"), "", "", 0o755, false)
	composite := NewComposite("test composite", Sequential, a, b)

	if got := composite.State(); got != StateUncompleted {
		t.Fatalf("expected Uncompleted before any execute, got %s", got)
	}

	if err := composite.Plan(ctx); err != nil {
		t.Fatalf("unexpected plan error: %v", err)
	}

	if err := composite.Execute(ctx); err != nil {
		t.Fatalf("unexpected execute error: %v", err)
	}

	if got := composite.State(); got != StateCompleted {
		t.Fatalf("expected Completed after full execute, got %s", got)
	}

	if err := composite.Revert(ctx); err != nil {
		t.Fatalf("unexpected revert error: %v", err)
	}

	if got := composite.State(); got != StateUncompleted {
		t.Fatalf("expected Uncompleted after full revert, got %s", got)
	}
}

func TestCompositePartialStateIsProgress(t *testing.T) {
	a := NewRemoveDirectory("/does/not/matter")
	a.state = StateCompleted

	b := NewRemoveDirectory("/does/not/matter/either")
	b.state = StateUncompleted

	composite := NewComposite("mixed", Sequential, a, b)

	if got := composite.State(); got != StateProgress {
		t.Fatalf("expected Progress for a mix of Completed/Uncompleted children, got %s", got)
	}
}

func TestCompositeJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()

	inner := NewComposite("inner", Parallel,
		NewCreateDirectory(filepath.Join(dir, "x"), "", "", 0o755, false),
		NewRemoveDirectory(filepath.Join(dir, "y")),
	)
	outer := NewComposite("outer", Sequential, inner)

	data, err := MarshalAction(outer)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}

	restored, err := UnmarshalAction(data)
	if err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}

	restoredOuter, ok := restored.(*Composite)
	if !ok {
		t.Fatalf("expected *Composite, got %T", restored)
	}

	if restoredOuter.Synopsis != "outer" || restoredOuter.Concurrency != Sequential {
		t.Fatalf("top-level fields did not survive round-trip: %+v", restoredOuter)
	}

	if len(restoredOuter.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(restoredOuter.Children))
	}

	restoredInner, ok := restoredOuter.Children[0].(*Composite)
	if !ok {
		t.Fatalf("expected nested *Composite, got %T", restoredOuter.Children[0])
	}

	if restoredInner.Concurrency != Parallel || len(restoredInner.Children) != 2 {
		t.Fatalf("nested composite did not survive round-trip: %+v", restoredInner)
	}

	if _, ok := restoredInner.Children[0].(*CreateDirectory); !ok {
		t.Fatalf("expected *CreateDirectory, got %T", restoredInner.Children[0])
	}

	if _, ok := restoredInner.Children[1].(*RemoveDirectory); !ok {
		t.Fatalf("expected *RemoveDirectory, got %T", restoredInner.Children[1])
	}
}

func TestCompositeRevertIsBestEffort(t *testing.T) {
	ctx := newTestContext()
	dir := t.TempDir()

	good := NewRemoveDirectory(filepath.Join(dir, "gone"))
	good.state = StateCompleted

	// A non-empty directory: os.Remove fails on it (not ENOENT), so
	// CreateDirectory.Revert surfaces a real ActionError here.
	nonEmpty := filepath.Join(dir, "non-empty")
	if err := os.MkdirAll(nonEmpty, 0o755); err != nil {
		t.Fatalf("test setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(nonEmpty, "file"), []byte("x"), 0o644); err != nil {
		t.Fatalf("test setup: %v", err)
	}

	bad := NewCreateDirectory(nonEmpty, "", "", 0o755, false)
	bad.state = StateCompleted
	bad.disposition = DispositionCreate

	composite := NewComposite("partial failure", Sequential, good, bad)

	err := composite.Revert(ctx)
	if err == nil {
		t.Fatalf("expected a partial failure error")
	}

	if got := good.State(); got != StateUncompleted {
		t.Fatalf("expected the earlier child to be reverted despite the later child's failure, got %s", got)
	}

	data, marshalErr := json.Marshal(composite)
	if marshalErr != nil {
		t.Fatalf("composite must still be serializable after a partial revert failure: %v", marshalErr)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty serialized composite")
	}
}
