package utils

import (
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"syscall"
)

// ExecAsRoot re-execs the current process as root with the same argv,
// via rootCommand (usually "sudo"). Per §5, the environment is not
// passed through wholesale: only NIX_INSTALLER_* variables survive the
// privilege boundary.
func ExecAsRoot(rootCommand string) error {
	rootCommandPath, err := exec.LookPath(rootCommand)
	if err != nil {
		return err
	}

	argv := []string{rootCommand}
	argv = append(argv, os.Args...)

	env := make([]string, 0)
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "NIX_INSTALLER_") {
			env = append(env, kv)
		}
	}

	return syscall.Exec(rootCommandPath, argv, env)
}

func EscapeAndJoinArgs(args []string) string {
	var escapedArgs []string

	for _, arg := range args {
		if strings.ContainsAny(arg, " \t\n\"'\\") {
			arg = strings.ReplaceAll(arg, "\\", "\\\\")
			arg = strings.ReplaceAll(arg, "\"", "\\\"")
			escapedArgs = append(escapedArgs, fmt.Sprintf("\"%s\"", arg))
		} else {
			escapedArgs = append(escapedArgs, arg)
		}
	}

	return strings.Join(escapedArgs, " ")
}

var specialCharsPattern = regexp.MustCompile(`[^\w@%+=:,./-]`)

// Quote returns a shell-escaped version of the string s. The returned value
// is a string that can safely be used as one token in a shell command line.
//
// Taken directly from github.com/alessio/shellescape.
func Quote(s string) string {
	if len(s) == 0 {
		return "''"
	}

	if specialCharsPattern.MatchString(s) {
		return "'" + strings.ReplaceAll(s, "'", "'\"'\"'") + "'"
	}

	return s
}
