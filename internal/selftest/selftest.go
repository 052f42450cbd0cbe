// Package selftest implements the post-install verification Actions
// described in §4.5. Failures here are diagnostic only: they never
// trigger an automatic revert.
package selftest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/nix-community/nix-installer/internal/settings"
	"github.com/nix-community/nix-installer/internal/system"
	systemdUtils "github.com/nix-community/nix-installer/internal/systemd"
)

// CheckResult records one self-test check's outcome.
type CheckResult struct {
	Name    string
	Passed  bool
	Detail  string
}

// Run executes every applicable check for plannedInit and returns their
// results in order. It never returns an error itself; individual
// failures are reported as CheckResult entries (§4.5: "reported but do
// not trigger automatic revert").
func Run(ctx context.Context, sys system.System, plannedInit settings.InitSystem) []CheckResult {
	var results []CheckResult

	if plannedInit == settings.InitSystemSystemd {
		results = append(results, checkDaemonSocketReachable(ctx))
	}

	results = append(results, checkStorePing(sys, "root"))
	results = append(results, checkStorePing(sys, "invoking user"))
	results = append(results, checkTrivialBuild(sys))

	return results
}

// checkDaemonSocketReachable polls the nix-daemon.socket unit's active
// state with exponential backoff bounded to 30 seconds in total,
// matching the teacher's use of `cenkalti/backoff/v4` for retrying
// transient service-state checks.
func checkDaemonSocketReachable(ctx context.Context) CheckResult {
	const name = "daemon socket reachable"

	mgr, err := systemdUtils.NewManager(ctx)
	if err != nil {
		return CheckResult{Name: name, Passed: false, Detail: err.Error()}
	}
	defer mgr.Close()

	eb := backoff.NewExponentialBackOff()
	eb.MaxElapsedTime = 30 * time.Second
	bo := backoff.WithContext(eb, ctx)

	operation := func() error {
		active, err := mgr.IsActive(ctx, "nix-daemon.socket")
		if err != nil {
			return err
		}
		if !active {
			return fmt.Errorf("nix-daemon.socket is not active yet")
		}
		return nil
	}

	if err := backoff.Retry(operation, bo); err != nil {
		return CheckResult{Name: name, Passed: false, Detail: err.Error()}
	}

	return CheckResult{Name: name, Passed: true}
}

// checkStorePing runs `nix store ping --store daemon` both as root and
// as the user that invoked the installer, per §4.5: these are two
// distinct checks because a daemon that only accepts root's socket
// peer credentials would otherwise go undetected until the first
// real user-triggered build. The root call runs directly; the
// invoking-user call drops privilege via `sudo -u $SUDO_USER` the same
// way ExecAsRoot elevates in the other direction.
func checkStorePing(sys system.System, as string) CheckResult {
	name := fmt.Sprintf("nix store ping (%s)", as)

	var cmd *system.Command
	if as == "root" {
		cmd = system.NewCommand("nix", "store", "ping", "--store", "daemon")
	} else {
		invokingUser := os.Getenv("SUDO_USER")
		if invokingUser == "" {
			return CheckResult{Name: name, Passed: false, Detail: "SUDO_USER not set, cannot drop privilege to check as the invoking user"}
		}
		cmd = system.NewCommand("sudo", "-u", invokingUser, "nix", "store", "ping", "--store", "daemon")
	}

	code, err := sys.Run(cmd)
	if err != nil || code != 0 {
		detail := "non-zero exit"
		if err != nil {
			detail = err.Error()
		}
		return CheckResult{Name: name, Passed: false, Detail: detail}
	}

	return CheckResult{Name: name, Passed: true}
}

func checkTrivialBuild(sys system.System) CheckResult {
	const name = "trivial derivation build"
	const wantContents = "ok\n"

	tmpFile, err := os.CreateTemp("", "nix-installer-selftest-*.nix")
	if err != nil {
		return CheckResult{Name: name, Passed: false, Detail: err.Error()}
	}
	defer os.Remove(tmpFile.Name())

	expr := `derivation { name = "nix-installer-selftest"; system = builtins.currentSystem; builder = "/bin/sh"; args = [ "-c" "echo ok > $out" ]; }`
	if _, err := tmpFile.WriteString(expr); err != nil {
		tmpFile.Close()
		return CheckResult{Name: name, Passed: false, Detail: err.Error()}
	}
	tmpFile.Close()

	outLink, err := os.MkdirTemp("", "nix-installer-selftest-out-*")
	if err != nil {
		return CheckResult{Name: name, Passed: false, Detail: err.Error()}
	}
	defer os.RemoveAll(outLink)
	resultLink := filepath.Join(outLink, "result")

	var stdout bytes.Buffer
	cmd := system.NewCommand("nix-build", "--no-substitute", "--out-link", resultLink, tmpFile.Name())
	cmd.Stdout = &stdout
	code, err := sys.Run(cmd)
	if err != nil || code != 0 {
		detail := "build failed"
		if err != nil {
			detail = err.Error()
		}
		return CheckResult{Name: name, Passed: false, Detail: detail}
	}

	contents, err := os.ReadFile(resultLink)
	if err != nil {
		return CheckResult{Name: name, Passed: false, Detail: fmt.Sprintf("could not read build output: %v", err)}
	}

	if string(contents) != wantContents {
		return CheckResult{Name: name, Passed: false, Detail: fmt.Sprintf("unexpected build output: %q", contents)}
	}

	return CheckResult{Name: name, Passed: true}
}
