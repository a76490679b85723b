package iptables

import (
	"context"
	"fmt"
	"io"
	"strconv"
)

// Backend appends or deletes a single rule.
type Backend interface {
	Exec(ctx context.Context, action Action, family Family, rule Rule) error
}

// NewBackend builds the backend named by cfg.Backend. Output of the exec
// backend is relayed to stdout and stderr.
func NewBackend(cfg Config, stdout, stderr io.Writer) (Backend, error) {
	switch cfg.Backend {
	case "", BackendExec:
		return NewCommandBackend(cfg, NewExecutor(cfg.Sudo), stdout, stderr), nil
	case BackendGoIPTables:
		return NewGoIPTablesBackend(cfg), nil
	default:
		return nil, fmt.Errorf("unknown firewall backend %q", cfg.Backend)
	}
}

// CommandBackend runs iptables through an Executor and relays whatever the
// command prints.
type CommandBackend struct {
	cfg      Config
	executor Executor
	stdout   io.Writer
	stderr   io.Writer
}

// NewCommandBackend constructs a CommandBackend. Nil writers discard output.
func NewCommandBackend(cfg Config, executor Executor, stdout, stderr io.Writer) *CommandBackend {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &CommandBackend{cfg: cfg, executor: executor, stdout: stdout, stderr: stderr}
}

// Exec implements Backend.
func (b *CommandBackend) Exec(ctx context.Context, action Action, family Family, rule Rule) error {
	result, err := b.executor.Run(ctx, b.cfg.binary(family), b.args(action, rule)...)
	if len(result.Stdout) > 0 {
		_, _ = b.stdout.Write(result.Stdout)
	}
	if len(result.Stderr) > 0 {
		_, _ = b.stderr.Write(result.Stderr)
	}
	return err
}

func (b *CommandBackend) args(action Action, rule Rule) []string {
	args := make([]string, 0, len(rule.RuleSpec)+6)
	if b.cfg.WaitSeconds > 0 {
		args = append(args, "-w", strconv.Itoa(b.cfg.WaitSeconds))
	}
	if rule.Table != "" && rule.Table != tableFilter {
		args = append(args, "-t", rule.Table)
	}
	args = append(args, string(action), rule.Chain)
	return append(args, rule.RuleSpec...)
}
