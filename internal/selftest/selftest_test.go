package selftest

import (
	"errors"
	"os"
	"testing"

	"github.com/nix-community/nix-installer/internal/logger"
	"github.com/nix-community/nix-installer/internal/system"
)

// fakeSystem is a minimal system.System double that answers Run calls
// from a canned table instead of spawning real subprocesses, since
// checkStorePing and checkTrivialBuild both shell out to a real `nix`
// binary that isn't guaranteed to be present wherever these tests run.
type fakeSystem struct {
	log    logger.Logger
	exit   map[string]int
	errFor map[string]error
}

func newFakeSystem() *fakeSystem {
	return &fakeSystem{
		log:    logger.NewNoOpLogger(),
		exit:   map[string]int{},
		errFor: map[string]error{},
	}
}

func (f *fakeSystem) Run(cmd *system.Command) (int, error) {
	if err, ok := f.errFor[cmd.Name]; ok {
		return -1, err
	}

	if cmd.Name == "nix-build" && f.exit[cmd.Name] == 0 {
		for i, a := range cmd.Args {
			if a == "--out-link" && i+1 < len(cmd.Args) {
				_ = os.WriteFile(cmd.Args[i+1], []byte("ok\n"), 0o644)
			}
		}
	}

	return f.exit[cmd.Name], nil
}

func (f *fakeSystem) Logger() logger.Logger { return f.log }
func (f *fakeSystem) HasCommand(cmd string) bool { return true }
func (f *fakeSystem) IsNixOS() bool { return false }
func (f *fakeSystem) FS() system.Filesystem { return &system.LocalFilesystem{} }

var _ system.System = (*fakeSystem)(nil)

func TestCheckStorePingPassesOnZeroExit(t *testing.T) {
	sys := newFakeSystem()
	sys.exit["nix"] = 0

	result := checkStorePing(sys, "root")
	if !result.Passed {
		t.Fatalf("expected a zero exit code to pass, got: %+v", result)
	}
}

func TestCheckStorePingFailsOnNonZeroExit(t *testing.T) {
	t.Setenv("SUDO_USER", "alice")

	sys := newFakeSystem()
	sys.exit["sudo"] = 1

	result := checkStorePing(sys, "invoking user")
	if result.Passed {
		t.Fatalf("expected a non-zero exit code to fail")
	}

	if result.Detail != "non-zero exit" {
		t.Fatalf("unexpected detail: %q", result.Detail)
	}
}

func TestCheckStorePingAsInvokingUserDropsPrivilege(t *testing.T) {
	t.Setenv("SUDO_USER", "alice")

	sys := newFakeSystem()
	sys.exit["sudo"] = 0

	result := checkStorePing(sys, "invoking user")
	if !result.Passed {
		t.Fatalf("expected a zero exit code to pass, got: %+v", result)
	}
}

func TestCheckStorePingAsInvokingUserFailsWithoutSudoUser(t *testing.T) {
	sys := newFakeSystem()

	result := checkStorePing(sys, "invoking user")
	if result.Passed {
		t.Fatalf("expected the check to fail when SUDO_USER is unset")
	}
}

func TestCheckStorePingFailsOnRunError(t *testing.T) {
	sys := newFakeSystem()
	sys.errFor["nix"] = errors.New("exec: \"nix\": executable file not found in $PATH")

	result := checkStorePing(sys, "root")
	if result.Passed {
		t.Fatalf("expected a run error to fail the check")
	}
}

func TestCheckTrivialBuildFailsOnNonZeroExit(t *testing.T) {
	sys := newFakeSystem()
	sys.exit["nix-build"] = 1

	result := checkTrivialBuild(sys)
	if result.Passed {
		t.Fatalf("expected a non-zero nix-build exit code to fail")
	}
}

func TestCheckTrivialBuildPassesOnZeroExit(t *testing.T) {
	sys := newFakeSystem()
	sys.exit["nix-build"] = 0

	result := checkTrivialBuild(sys)
	if !result.Passed {
		t.Fatalf("expected a zero nix-build exit code to pass, got: %+v", result)
	}
}
