// Package plan implements the Plan type described in §3: a root Action
// plus the Settings it was planned from, a schema version, and optional
// diagnostic metadata. A Plan owns its Action tree exclusively; there
// are no cycles or back-references (§3 "Ownership & relationships").
package plan

import (
	"encoding/json"

	"github.com/nix-community/nix-installer/internal/action"
	"github.com/nix-community/nix-installer/internal/settings"
)

// CurrentVersion gates deserialization (§9 "Receipt schema evolution").
const CurrentVersion = "1.0.0"

// Plan is the root of everything a Planner produces and the engine
// executes. It is serializable to canonical JSON and round-trips
// exactly (§3 invariant; tested as the "Round-trip" property in §8).
type Plan struct {
	Version        string            `json:"version"`
	Planner        string            `json:"planner"`
	Settings       *settings.Settings `json:"settings"`
	Root           action.Action     `json:"-"`
	DiagnosticData map[string]any    `json:"diagnostic_data,omitempty"`
}

func New(plannerName string, s *settings.Settings, root action.Action) *Plan {
	return &Plan{
		Version:  CurrentVersion,
		Planner:  plannerName,
		Settings: s,
		Root:     root,
	}
}

type planJSON struct {
	Version        string             `json:"version"`
	Planner        string             `json:"planner"`
	Settings       *settings.Settings `json:"settings"`
	Actions        json.RawMessage    `json:"actions"`
	DiagnosticData map[string]any     `json:"diagnostic_data,omitempty"`
}

// MarshalJSON serializes the root action through action.MarshalAction
// so receipts carry the root's discriminator tag without reflection
// (§3, §9).
func (p *Plan) MarshalJSON() ([]byte, error) {
	var rootRaw json.RawMessage
	if p.Root != nil {
		raw, err := action.MarshalAction(p.Root)
		if err != nil {
			return nil, err
		}
		rootRaw = raw
	}

	return json.Marshal(planJSON{
		Version:        p.Version,
		Planner:        p.Planner,
		Settings:       p.Settings,
		Actions:        rootRaw,
		DiagnosticData: p.DiagnosticData,
	})
}

func (p *Plan) UnmarshalJSON(data []byte) error {
	var raw planJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.Version = raw.Version
	p.Planner = raw.Planner
	p.Settings = raw.Settings
	p.DiagnosticData = raw.DiagnosticData

	if len(raw.Actions) > 0 {
		root, err := action.UnmarshalAction(raw.Actions)
		if err != nil {
			return err
		}
		p.Root = root
	}

	return nil
}

// State reports the root Action's lifecycle state, which by
// Composite's State() derivation rule reflects the whole tree.
func (p *Plan) State() action.State {
	if p.Root == nil {
		return action.StateUncompleted
	}
	return p.Root.State()
}
