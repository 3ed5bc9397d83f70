package convert

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

// Runner executes a command and returns what it wrote.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner runs commands as child processes. The child gets its own process
// group so a cancelled context also kills anything it spawned.
type ExecRunner struct {
	// WaitDelay bounds how long Run waits for output pipes after a kill.
	WaitDelay time.Duration
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	configureProcessGroup(cmd)
	cmd.Cancel = func() error {
		return killProcessGroup(cmd)
	}
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = 5 * time.Second
	}
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
