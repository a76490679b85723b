// Package forward implements the add, remove, apply, unapply and list
// commands on top of the rule store and the firewall.
//
// A command loads the store, mutates the in-memory list, writes it back and
// then drives the firewall. Store and firewall are not updated atomically: a
// failed save leaves the firewall change in place, and a failed firewall call
// leaves the store change in place. Both are reported and neither aborts the
// command.
package forward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/denniswebb/forward/internal/metrics"
	"github.com/denniswebb/forward/internal/rules"
)

// Firewall applies and removes the netfilter rules behind a forwarding rule.
type Firewall interface {
	ApplyRule(ctx context.Context, r rules.ForwardingRule) error
	UnapplyRule(ctx context.Context, r rules.ForwardingRule) error
}

// Recorder receives store level metrics.
type Recorder interface {
	IncrementStoreError(errorType string)
	SetRuleCount(count int)
}

// Config wires a Manager.
type Config struct {
	Store        *rules.Store
	Firewall     Firewall
	AuditMapPath string
	Metrics      Recorder
	Logger       *slog.Logger
}

// Manager runs commands against one rule store and one firewall.
type Manager struct {
	store    *rules.Store
	firewall Firewall
	auditMap string
	metrics  Recorder
	logger   *slog.Logger
}

// NewManager validates cfg and constructs a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("rule store is required")
	}
	if cfg.Firewall == nil {
		return nil, fmt.Errorf("firewall is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = noopRecorder{}
	}

	return &Manager{
		store:    cfg.Store,
		firewall: cfg.Firewall,
		auditMap: strings.TrimSpace(cfg.AuditMapPath),
		metrics:  recorder,
		logger:   logger.With(slog.String("store", cfg.Store.Path())),
	}, nil
}

// Add appends rule to the store, persists it and applies it to the firewall.
// Duplicates are stored as given.
func (m *Manager) Add(ctx context.Context, rule rules.ForwardingRule) error {
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("invalid forwarding rule: %w", err)
	}

	m.logger.Info("adding forwarding rule", ruleAttrs(rule)...)

	list := m.load()
	list = append(list, rule)
	m.persist(list)

	failed := failedCalls(m.firewall.ApplyRule(ctx, rule))
	if failed > 0 {
		m.logger.Warn("forwarding rule added with firewall errors", slog.String("rule", rule.String()), slog.Int("failed_calls", failed))
		return nil
	}

	m.logger.Info("forwarding rule added", slog.String("rule", rule.String()))
	return nil
}

// Remove drops every stored rule equal to rule, persists the result and
// removes the firewall rules once per dropped entry. It returns how many
// entries were dropped; zero means nothing matched and nothing was touched.
func (m *Manager) Remove(ctx context.Context, rule rules.ForwardingRule) (int, error) {
	if err := rule.Validate(); err != nil {
		return 0, fmt.Errorf("invalid forwarding rule: %w", err)
	}

	m.logger.Info("removing forwarding rule", ruleAttrs(rule)...)

	list := m.load()
	kept, removed := rules.Remove(list, rule)
	if removed == 0 {
		m.logger.Warn("forwarding rule not found", slog.String("rule", rule.String()))
		m.metrics.SetRuleCount(len(list))
		return 0, nil
	}

	m.persist(kept)

	failed := 0
	for i := 0; i < removed; i++ {
		failed += failedCalls(m.firewall.UnapplyRule(ctx, rule))
	}
	if failed > 0 {
		m.logger.Warn("forwarding rule removed with firewall errors",
			slog.String("rule", rule.String()),
			slog.Int("removed", removed),
			slog.Int("failed_calls", failed),
		)
		return removed, nil
	}

	m.logger.Info("forwarding rule removed", slog.String("rule", rule.String()), slog.Int("removed", removed))
	return removed, nil
}

// Apply applies every stored rule to the firewall, in store order.
func (m *Manager) Apply(ctx context.Context) int {
	return m.each(ctx, "applied", m.firewall.ApplyRule)
}

// Unapply removes every stored rule from the firewall, in store order. The
// store is left untouched.
func (m *Manager) Unapply(ctx context.Context) int {
	return m.each(ctx, "unapplied", m.firewall.UnapplyRule)
}

// List returns the stored rules in insertion order.
func (m *Manager) List() []rules.ForwardingRule {
	list := m.load()
	m.metrics.SetRuleCount(len(list))
	return list
}

func (m *Manager) each(ctx context.Context, verb string, fn func(context.Context, rules.ForwardingRule) error) int {
	list := m.load()
	m.metrics.SetRuleCount(len(list))

	failed := 0
	for _, rule := range list {
		failed += failedCalls(fn(ctx, rule))
	}

	attrs := []any{slog.Int("rules", len(list))}
	if failed > 0 {
		attrs = append(attrs, slog.Int("failed_calls", failed))
		m.logger.Warn(verb+" forwarding rules with firewall errors", attrs...)
		return len(list)
	}

	m.logger.Info(verb+" forwarding rules", attrs...)
	return len(list)
}

// load never fails: an unreadable store is reported and treated as empty.
func (m *Manager) load() []rules.ForwardingRule {
	list, err := m.store.Load()
	if err != nil {
		m.metrics.IncrementStoreError(metrics.StoreErrorLoad)
		m.logger.Error("rule store unreadable, continuing with no rules", slog.String("error", err.Error()))
	}
	return list
}

// persist reports failures and carries on; the change is still applied to
// the firewall.
func (m *Manager) persist(list []rules.ForwardingRule) {
	m.metrics.SetRuleCount(len(list))

	if err := m.store.Save(list); err != nil {
		m.metrics.IncrementStoreError(metrics.StoreErrorSave)
		m.logger.Error("failed to save rule store", slog.String("error", err.Error()))
		return
	}

	if m.auditMap == "" {
		return
	}
	if err := rules.WriteAuditMap(m.auditMap, list, m.logger); err != nil {
		m.metrics.IncrementStoreError(metrics.StoreErrorAuditMap)
		m.logger.Error("failed to write audit map", slog.String("path", m.auditMap), slog.String("error", err.Error()))
	}
}

func failedCalls(err error) int {
	if err == nil {
		return 0
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return len(merr.Errors)
	}
	return 1
}

func ruleAttrs(rule rules.ForwardingRule) []any {
	return []any{
		slog.String("source_ip", rule.SourceAddress),
		slog.Int("source_port", rule.SourcePort),
		slog.String("dest_ip", rule.DestAddress),
		slog.Int("dest_port", rule.DestPort),
	}
}

type noopRecorder struct{}

func (noopRecorder) IncrementStoreError(string) {}

func (noopRecorder) SetRuleCount(int) {}
