package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain action error", &ActionError{Kind: Io, Path: "/nix"}, 1},
		{"cancelled", &EngineError{Kind: Cancelled}, 2},
		{"wrapped cancelled", fmt.Errorf("executing step: %w", &EngineError{Kind: Cancelled}), 2},
		{"partial failure", &PartialFailure{Unreverted: []error{errors.New("boom")}}, 3},
	}

	for _, c := range cases {
		if got := ExitCode(c.err); got != c.want {
			t.Errorf("%s: ExitCode() = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestActionErrorUnwrap(t *testing.T) {
	inner := errors.New("permission denied")
	e := &ActionError{Kind: Io, Path: "/nix", OsError: inner}

	if !errors.Is(e, inner) {
		t.Fatalf("expected errors.Is to find the wrapped OsError")
	}
}

func TestPartialFailureMessage(t *testing.T) {
	e := &PartialFailure{Unreverted: []error{errors.New("a"), errors.New("b")}}

	if e.Error() != "2 action(s) could not be fully reverted" {
		t.Fatalf("unexpected message: %s", e.Error())
	}
}
