// Package engine implements the execution engine (C5, §4.4): it drives
// a Plan's Action tree through state transitions, persists the receipt
// after each transition, and honors SIGINT/SIGTERM cancellation by
// invoking a best-effort revert.
package engine

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nix-community/nix-installer/internal/action"
	"github.com/nix-community/nix-installer/internal/errs"
	"github.com/nix-community/nix-installer/internal/plan"
	"github.com/nix-community/nix-installer/internal/receipt"
	"github.com/nix-community/nix-installer/internal/system"
)

// Engine drives a single Plan from start to finish, persisting the
// receipt through Store after every Action state transition.
type Engine struct {
	Store *receipt.Store
	Sys   system.System
}

func New(store *receipt.Store, sys system.System) *Engine {
	return &Engine{Store: store, Sys: sys}
}

// Execute plans the root Action against the live host, persists
// the receipt with its initial state (§4.4 step 1), then executes it,
// saving the receipt after every transition. A SIGINT/SIGTERM during
// execution cancels the context, triggering a best-effort Revert, per
// §4.4's cancellation paragraph.
func (e *Engine) Execute(ctx context.Context, p *plan.Plan, force bool) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := p.Root.Plan(&action.Context{Ctx: ctx, Sys: e.Sys, Force: force}); err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}

	if err := e.Store.Save(p); err != nil {
		return fmt.Errorf("failed to write initial receipt: %w", err)
	}

	var mu sync.Mutex
	actionCtx := &action.Context{
		Ctx:   ctx,
		Sys:   e.Sys,
		Force: force,
		OnTransition: func() {
			mu.Lock()
			defer mu.Unlock()
			if err := e.Store.Save(p); err != nil {
				_ = err // best-effort; the next transition's save will retry
			}
		},
	}

	execErr := p.Root.Execute(actionCtx)
	_ = e.Store.Save(p)

	if execErr == nil {
		return nil
	}

	var engineErr *errs.EngineError
	cancelled := ctx.Err() != nil
	if cancelled {
		engineErr = &errs.EngineError{Kind: errs.Cancelled}
	}

	revertCtx := &action.Context{Ctx: context.Background(), Sys: e.Sys, Force: force, OnTransition: actionCtx.OnTransition}
	revertErr := p.Root.Revert(revertCtx)
	_ = e.Store.Save(p)

	if revertErr != nil {
		return revertErr
	}

	if cancelled {
		return engineErr
	}

	return execErr
}

// Revert runs the root Action's Revert in isolation, used by the
// uninstall command against a loaded receipt (§4.4 step 5).
func (e *Engine) Revert(ctx context.Context, p *plan.Plan, force bool) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	actionCtx := &action.Context{
		Ctx:   ctx,
		Sys:   e.Sys,
		Force: force,
		OnTransition: func() {
			_ = e.Store.Save(p)
		},
	}

	err := p.Root.Revert(actionCtx)
	_ = e.Store.Save(p)
	return err
}

// AcquireLock wraps system.AcquireLock for callers that don't want a
// direct dependency on the system package's lock path constant.
func AcquireLock(path string) (*system.Lock, error) {
	return system.AcquireLock(path)
}
