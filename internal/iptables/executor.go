package iptables

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Executor abstracts command execution for iptables interactions.
type Executor interface {
	Run(ctx context.Context, command string, args ...string) (Result, error)
}

// Result holds the streams captured from a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// CommandError captures detailed failure information from command execution.
type CommandError struct {
	Command    string
	Args       []string
	Output     string
	ExitCode   int
	NotStarted bool
	Err        error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	joined := strings.Join(e.Args, " ")
	if e.NotStarted {
		return fmt.Sprintf("command %s %s could not be started: %v", e.Command, joined, e.Err)
	}
	if e.Output != "" {
		return fmt.Sprintf("command %s %s failed: %v: %s", e.Command, joined, e.Err, strings.TrimSpace(e.Output))
	}
	return fmt.Sprintf("command %s %s failed: %v", e.Command, joined, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As checks.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// RealExecutor executes commands on the host system.
type RealExecutor struct {
	// Sudo prefixes commands with sudo when the process is not root.
	Sudo bool
}

// NewExecutor constructs a RealExecutor instance.
func NewExecutor(sudo bool) Executor {
	return &RealExecutor{Sudo: sudo}
}

// Run executes the provided command, waits for it and returns both captured
// streams. A start failure or non-zero exit is reported as a *CommandError
// alongside whatever output was captured.
func (r *RealExecutor) Run(ctx context.Context, command string, args ...string) (Result, error) {
	name, argv := command, args
	if r.Sudo && os.Geteuid() != 0 {
		name = "sudo"
		argv = append([]string{command}, args...)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, argv...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return result, nil
	}

	cmdErr := &CommandError{
		Command: name,
		Args:    append([]string(nil), argv...),
		Output:  stderr.String(),
		Err:     err,
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		cmdErr.ExitCode = result.ExitCode
		return result, cmdErr
	}

	result.ExitCode = -1
	cmdErr.ExitCode = -1
	cmdErr.NotStarted = true
	return result, cmdErr
}
