package iptables

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/denniswebb/forward/internal/rules"
)

// Recorder observes the outcome of every rule invocation.
type Recorder interface {
	ObserveFirewallCall(action string, rule string, err error)
}

// Firewall applies and removes the rule sets belonging to forwarding rules.
type Firewall struct {
	backend  Backend
	logger   *slog.Logger
	recorder Recorder
}

// NewFirewall constructs a Firewall. recorder may be nil.
func NewFirewall(backend Backend, logger *slog.Logger, recorder Recorder) *Firewall {
	if logger == nil {
		logger = slog.Default()
	}
	return &Firewall{backend: backend, logger: logger, recorder: recorder}
}

// ApplyRule appends the DNAT, FORWARD and SNAT rules for r.
func (f *Firewall) ApplyRule(ctx context.Context, r rules.ForwardingRule) error {
	return f.run(ctx, ActionAppend, r)
}

// UnapplyRule deletes the DNAT, FORWARD and SNAT rules for r.
func (f *Firewall) UnapplyRule(ctx context.Context, r rules.ForwardingRule) error {
	return f.run(ctx, ActionDelete, r)
}

// run attempts every rule even after a failure. Nothing is rolled back; the
// returned error is a *multierror.Error listing each failed call.
func (f *Firewall) run(ctx context.Context, action Action, r rules.ForwardingRule) error {
	family := familyOf(r)

	var merr *multierror.Error
	for _, rule := range ForwardRules(r) {
		f.logger.Debug("invoking firewall",
			slog.String("action", action.String()),
			slog.String("rule", rule.Name),
			slog.String("table", rule.Table),
			slog.String("chain", rule.Chain),
			slog.Bool("ipv6", family == FamilyIPv6),
		)

		err := f.backend.Exec(ctx, action, family, rule)
		if f.recorder != nil {
			f.recorder.ObserveFirewallCall(action.String(), rule.Name, err)
		}
		if err != nil {
			f.logger.Error("firewall call failed",
				slog.String("action", action.String()),
				slog.String("rule", rule.Name),
				slog.String("forwarding_rule", r.String()),
				slog.String("error", err.Error()),
			)
			merr = multierror.Append(merr, fmt.Errorf("%s %s rule: %w", action, rule.Name, err))
		}
	}

	return merr.ErrorOrNil()
}
