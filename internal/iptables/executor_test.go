package iptables

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRealExecutorCapturesStreams(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(false)
	result, err := exec.Run(context.Background(), "sh", "-c", "echo out; echo err >&2")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if string(result.Stdout) != "out\n" {
		t.Fatalf("unexpected stdout %q", result.Stdout)
	}
	if string(result.Stderr) != "err\n" {
		t.Fatalf("unexpected stderr %q", result.Stderr)
	}
	if result.ExitCode != 0 {
		t.Fatalf("unexpected exit code %d", result.ExitCode)
	}
}

func TestRealExecutorNonZeroExit(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(false)
	result, err := exec.Run(context.Background(), "sh", "-c", "echo partial; echo 'Bad rule' >&2; exit 3")

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected CommandError, got %v", err)
	}
	if cmdErr.ExitCode != 3 || result.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got error=%d result=%d", cmdErr.ExitCode, result.ExitCode)
	}
	if cmdErr.NotStarted {
		t.Fatal("expected NotStarted to be false for a process that ran")
	}
	if string(result.Stdout) != "partial\n" {
		t.Fatalf("stdout not captured on failure: %q", result.Stdout)
	}
	if !strings.Contains(err.Error(), "Bad rule") {
		t.Fatalf("expected stderr in error message, got %q", err.Error())
	}
}

func TestRealExecutorSpawnFailure(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(false)
	result, err := exec.Run(context.Background(), "forward-test-binary-that-does-not-exist", "-L")

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected CommandError, got %v", err)
	}
	if !cmdErr.NotStarted || result.ExitCode != -1 {
		t.Fatalf("expected spawn failure, got %+v / %+v", cmdErr, result)
	}
	if !strings.Contains(err.Error(), "could not be started") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCommandErrorFormatting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *CommandError
		want string
	}{
		{
			name: "with output",
			err:  &CommandError{Command: "iptables", Args: []string{"-D", "FORWARD"}, Output: "Bad rule\n", ExitCode: 1, Err: fmt.Errorf("exit status 1")},
			want: "command iptables -D FORWARD failed: exit status 1: Bad rule",
		},
		{
			name: "without output",
			err:  &CommandError{Command: "iptables", Args: []string{"-L"}, ExitCode: 2, Err: fmt.Errorf("exit status 2")},
			want: "command iptables -L failed: exit status 2",
		},
		{
			name: "not started",
			err:  &CommandError{Command: "iptables", Args: []string{"-L"}, ExitCode: -1, NotStarted: true, Err: fmt.Errorf("executable file not found")},
			want: "command iptables -L could not be started: executable file not found",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.err.Error(); got != tc.want {
				t.Fatalf("Error() = %q, want %q", got, tc.want)
			}
			if errors.Unwrap(tc.err) != tc.err.Err {
				t.Fatal("Unwrap did not return underlying error")
			}
		})
	}
}
