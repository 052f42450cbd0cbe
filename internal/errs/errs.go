// Package errs defines the three error kinds used throughout planning
// and execution (§7): PlanError, ActionError, and EngineError. These are
// kinds, not a class hierarchy — each is a concrete struct with a Kind
// field, found with errors.As and mapped to an exit code at the command
// layer.
package errs

import (
	"errors"
	"fmt"
)

// PlanErrorKind distinguishes the ways planning can refuse to produce a
// Plan. A PlanError always means zero side effects occurred.
type PlanErrorKind string

const (
	UnsupportedPlatform PlanErrorKind = "unsupported_platform"
	ConflictingResource  PlanErrorKind = "conflicting_resource"
	MissingPrerequisite  PlanErrorKind = "missing_prerequisite"
	InvalidSetting       PlanErrorKind = "invalid_setting"
)

type PlanError struct {
	Kind     PlanErrorKind
	Resource string
	Reason   string
	Tool     string
	Field    string
}

func (e *PlanError) Error() string {
	switch e.Kind {
	case ConflictingResource:
		return fmt.Sprintf("conflicting resource %q: %s", e.Resource, e.Reason)
	case MissingPrerequisite:
		return fmt.Sprintf("missing prerequisite tool %q", e.Tool)
	case InvalidSetting:
		return fmt.Sprintf("invalid setting %q: %s", e.Field, e.Reason)
	case UnsupportedPlatform:
		return fmt.Sprintf("unsupported platform: %s", e.Reason)
	default:
		return fmt.Sprintf("plan error (%s): %s", e.Kind, e.Reason)
	}
}

// ActionErrorKind distinguishes the ways an Action's execute/revert step
// can fail.
type ActionErrorKind string

const (
	Command     ActionErrorKind = "command"
	Io          ActionErrorKind = "io"
	Http        ActionErrorKind = "http"
	Checksum    ActionErrorKind = "checksum"
	UserAborted ActionErrorKind = "user_aborted"
	Timeout     ActionErrorKind = "timeout"
)

type ActionError struct {
	Kind ActionErrorKind

	Program    string
	ExitCode   int
	StderrTail string

	Path    string
	OsError error

	URL    string
	Status string

	ExpectedChecksum string
	GotChecksum      string

	Op string
}

func (e *ActionError) Error() string {
	switch e.Kind {
	case Command:
		return fmt.Sprintf("command %q exited %d: %s", e.Program, e.ExitCode, e.StderrTail)
	case Io:
		return fmt.Sprintf("io error on %q: %v", e.Path, e.OsError)
	case Http:
		return fmt.Sprintf("http request to %q failed: %s", e.URL, e.Status)
	case Checksum:
		return fmt.Sprintf("checksum mismatch: expected %s, got %s", e.ExpectedChecksum, e.GotChecksum)
	case UserAborted:
		return "aborted by user"
	case Timeout:
		return fmt.Sprintf("timed out waiting on %s", e.Op)
	default:
		return fmt.Sprintf("action error (%s)", e.Kind)
	}
}

func (e *ActionError) Unwrap() error {
	return e.OsError
}

// EngineErrorKind distinguishes engine-level failures that are not
// attributable to any single Action.
type EngineErrorKind string

const (
	Cancelled      EngineErrorKind = "cancelled"
	LockHeld       EngineErrorKind = "lock_held"
	ReceiptCorrupt EngineErrorKind = "receipt_corrupt"
)

type EngineError struct {
	Kind EngineErrorKind

	PID  int
	Path string
}

func (e *EngineError) Error() string {
	switch e.Kind {
	case Cancelled:
		return "operation cancelled"
	case LockHeld:
		return fmt.Sprintf("install lock is held by pid %d", e.PID)
	case ReceiptCorrupt:
		return fmt.Sprintf("receipt at %q is corrupt or unreadable", e.Path)
	default:
		return fmt.Sprintf("engine error (%s)", e.Kind)
	}
}

// PartialFailure wraps the accumulated revert errors described in §4.3/§7:
// the engine attempted every revertible Action, but one or more could not
// be undone. Its presence is what drives exit code 3 rather than 1.
type PartialFailure struct {
	Unreverted []error
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("%d action(s) could not be fully reverted", len(e.Unreverted))
}

func (e *PartialFailure) Unwrap() []error {
	return e.Unreverted
}

// ExitCode maps an error returned from the top of the command tree to
// one of the four exit codes in §6: 0 success, 1 user-facing error, 2
// cancellation, 3 partial failure leaving non-reverted state.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var engineErr *EngineError
	if errors.As(err, &engineErr) && engineErr.Kind == Cancelled {
		return 2
	}

	var partial *PartialFailure
	if errors.As(err, &partial) {
		return 3
	}

	return 1
}
