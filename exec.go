package extbuild

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/sh"

	"github.com/eugo-inc/brotli/internal/ctxlog"
)

// Package-level seams for testing.
var (
	execCommandContext = exec.CommandContext
	shExec             = startTool
)

// startTool runs name with args verbatim, adding env on top of the process
// environment. The boolean reports whether the tool started at all.
func startTool(ctx context.Context, env map[string]string, stdout, stderr io.Writer, name string, args ...string) (bool, error) {
	cmd := execCommandContext(ctx, name, args...)
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	return sh.CmdRan(err), err
}

// toolRun is the captured result of one external tool invocation.
type toolRun struct {
	Command string
	Stdout  string
	Stderr  string
	Ran     bool // false when the tool could not be started at all
	Err     error
}

// ExitStatus returns the tool's exit code, 0 on success.
func (r *toolRun) ExitStatus() int {
	return sh.ExitStatus(r.Err)
}

// Output returns stdout followed by stderr, split into lines, with blank
// trailing lines removed.
func (r *toolRun) Output() []string {
	var lines []string
	for _, chunk := range []string{r.Stdout, r.Stderr} {
		chunk = strings.TrimRight(chunk, "\r\n")
		if chunk == "" {
			continue
		}
		lines = append(lines, strings.Split(chunk, "\n")...)
	}
	return lines
}

// runTool executes name with args and extra environment, blocking until it
// exits or ctx is cancelled.
func runTool(ctx context.Context, env map[string]string, name string, args ...string) *toolRun {
	var stdout, stderr bytes.Buffer
	if ctx == nil {
		ctx = context.Background()
	}

	command := strings.TrimSpace(name + " " + strings.Join(args, " "))
	ctxlog.FromContext(ctx).Debug("Running tool.", "command", command)

	ran, err := shExec(ctx, env, &stdout, &stderr, name, args...)
	return &toolRun{
		Command: command,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Ran:     ran,
		Err:     err,
	}
}
