package action

import (
	"bytes"
	"os/exec"

	"github.com/nix-community/nix-installer/internal/errs"
	"github.com/nix-community/nix-installer/internal/system"
)

// runCommand resolves name on PATH and runs it through c.Sys.Run,
// capturing stderr so a failure can be reported as an ActionError with a
// StderrTail instead of a bare exec.ExitError (§7).
func runCommand(c *Context, name string, args ...string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return &errs.ActionError{Kind: errs.Command, Program: name, OsError: err}
	}

	var stderr bytes.Buffer
	cmd := system.NewCommand(path, args...)
	cmd.Stderr = &stderr
	cmd.Stdin = nil

	code, err := c.Sys.Run(cmd)
	if err != nil || code != 0 {
		return &errs.ActionError{
			Kind:       errs.Command,
			Program:    name,
			ExitCode:   code,
			StderrTail: stderr.String(),
			OsError:    err,
		}
	}

	return nil
}

// runCommandOutput behaves like runCommand but also returns the
// command's captured stdout, for the rare Action that needs to parse a
// tool's output (e.g. reading a volume UUID back out of diskutil).
func runCommandOutput(c *Context, name string, args ...string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", &errs.ActionError{Kind: errs.Command, Program: name, OsError: err}
	}

	var stdout, stderr bytes.Buffer
	cmd := system.NewCommand(path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Stdin = nil

	code, err := c.Sys.Run(cmd)
	if err != nil || code != 0 {
		return "", &errs.ActionError{
			Kind:       errs.Command,
			Program:    name,
			ExitCode:   code,
			StderrTail: stderr.String(),
			OsError:    err,
		}
	}

	return stdout.String(), nil
}
