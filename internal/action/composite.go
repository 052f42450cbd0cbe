package action

import (
	"encoding/json"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/nix-community/nix-installer/internal/errs"
)

// Concurrency selects how a Composite's children run (§5).
type Concurrency string

const (
	Sequential Concurrency = "sequential"
	Parallel   Concurrency = "parallel"
)

// Composite owns an ordered sequence of child Actions (§3). Its own
// State is derived from its children rather than stored directly:
// Completed iff every child is Completed, Uncompleted iff every child is
// Uncompleted, Progress otherwise.
type Composite struct {
	Synopsis    string      `json:"synopsis"`
	Concurrency Concurrency `json:"concurrency"`
	Children    []Action    `json:"-"`

	// FailedIndex records which child was mid-flight when execute
	// stopped forward progress, so diagnostics can describe exactly how
	// far a Progress composite got.
	FailedIndex int `json:"failed_index"`
}

func NewComposite(synopsis string, concurrency Concurrency, children ...Action) *Composite {
	return &Composite{
		Synopsis:    synopsis,
		Concurrency: concurrency,
		Children:    children,
		FailedIndex: -1,
	}
}

func (c *Composite) Typetag() string { return "composite" }

func (c *Composite) TracingSynopsis() string { return c.Synopsis }

func (c *Composite) TracingSpanData() map[string]string {
	return map[string]string{
		"concurrency": string(c.Concurrency),
		"children":    fmt.Sprintf("%d", len(c.Children)),
	}
}

func (c *Composite) State() State {
	if len(c.Children) == 0 {
		return StateCompleted
	}

	allCompleted := true
	allUncompleted := true

	for _, child := range c.Children {
		switch child.State() {
		case StateCompleted:
			allUncompleted = false
		case StateUncompleted:
			allCompleted = false
		default:
			allCompleted = false
			allUncompleted = false
		}
	}

	switch {
	case allCompleted:
		return StateCompleted
	case allUncompleted:
		return StateUncompleted
	default:
		return StateProgress
	}
}

// Plan calls Plan on every child in order, stopping at the first error
// (§4.1: plan is pure and must not mutate, so partial planning leaves no
// side effects to undo).
func (c *Composite) Plan(ctx *Context) error {
	for i, child := range c.Children {
		if err := child.Plan(ctx); err != nil {
			return fmt.Errorf("planning child %d (%s): %w", i, child.TracingSynopsis(), err)
		}
	}
	return nil
}

// Execute runs children per §4.3: sequential composites run children in
// declaration order, each one's Completed happening-before the next
// begins; parallel composites run children concurrently with a bounded
// errgroup and cancel the remaining children on the first error.
func (c *Composite) Execute(ctx *Context) error {
	switch c.Concurrency {
	case Parallel:
		return c.executeParallel(ctx)
	default:
		return c.executeSequential(ctx)
	}
}

func (c *Composite) executeSequential(ctx *Context) error {
	for i, child := range c.Children {
		if child.State() == StateCompleted {
			continue
		}

		if err := ctx.Ctx.Err(); err != nil {
			c.FailedIndex = i
			return &errs.EngineError{Kind: errs.Cancelled}
		}

		err := child.Execute(ctx)
		ctx.notify()
		if err != nil {
			c.FailedIndex = i
			return fmt.Errorf("executing %s: %w", child.TracingSynopsis(), err)
		}
	}

	c.FailedIndex = -1
	return nil
}

func (c *Composite) executeParallel(ctx *Context) error {
	g, gctx := errgroup.WithContext(ctx.Ctx)
	g.SetLimit(runtime.NumCPU())
	childCtx := &Context{Ctx: gctx, Sys: ctx.Sys, Force: ctx.Force, OnTransition: ctx.OnTransition}

	for i, child := range c.Children {
		if child.State() == StateCompleted {
			continue
		}

		i, child := i, child
		g.Go(func() error {
			err := child.Execute(childCtx)
			childCtx.notify()
			if err != nil {
				return fmt.Errorf("executing %s (index %d): %w", child.TracingSynopsis(), i, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for i, child := range c.Children {
			if child.State() != StateCompleted {
				c.FailedIndex = i
				break
			}
		}
		return err
	}

	c.FailedIndex = -1
	return nil
}

// Revert runs children in reverse order, per §4.3, only reverting
// children whose state is not Uncompleted. Failures are accumulated
// rather than stopping the sweep, matching the engine's best-effort
// revert policy (§7).
func (c *Composite) Revert(ctx *Context) error {
	var unreverted []error

	for i := len(c.Children) - 1; i >= 0; i-- {
		child := c.Children[i]
		if child.State() == StateUncompleted {
			continue
		}

		err := child.Revert(ctx)
		ctx.notify()
		if err != nil {
			unreverted = append(unreverted, fmt.Errorf("%s: %w", child.TracingSynopsis(), err))
		}
	}

	if len(unreverted) > 0 {
		return &errs.PartialFailure{Unreverted: unreverted}
	}

	return nil
}

type compositeJSON struct {
	Synopsis    string            `json:"synopsis"`
	Concurrency Concurrency       `json:"concurrency"`
	Children    []json.RawMessage `json:"children"`
	FailedIndex int               `json:"failed_index"`
}

// MarshalJSON encodes each child through MarshalAction so the receipt
// carries each child's discriminator tag alongside its data, letting
// UnmarshalJSON reconstruct the right concrete type per child.
func (c *Composite) MarshalJSON() ([]byte, error) {
	children := make([]json.RawMessage, 0, len(c.Children))
	for _, child := range c.Children {
		raw, err := MarshalAction(child)
		if err != nil {
			return nil, err
		}
		children = append(children, raw)
	}

	return json.Marshal(compositeJSON{
		Synopsis:    c.Synopsis,
		Concurrency: c.Concurrency,
		Children:    children,
		FailedIndex: c.FailedIndex,
	})
}

func (c *Composite) UnmarshalJSON(data []byte) error {
	var raw compositeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	children := make([]Action, 0, len(raw.Children))
	for _, childRaw := range raw.Children {
		child, err := UnmarshalAction(childRaw)
		if err != nil {
			return err
		}
		children = append(children, child)
	}

	c.Synopsis = raw.Synopsis
	c.Concurrency = raw.Concurrency
	c.Children = children
	c.FailedIndex = raw.FailedIndex

	return nil
}
