package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"

	// StoreErrorLoad counts unreadable or malformed rule stores.
	StoreErrorLoad = "load"
	// StoreErrorSave counts failed rule store writes.
	StoreErrorSave = "save"
	// StoreErrorAuditMap counts failed audit map writes.
	StoreErrorAuditMap = "audit_map"
)

// Metrics bundles Prometheus instruments for a single invocation.
type Metrics struct {
	registry      *prometheus.Registry
	firewallCalls *prometheus.CounterVec
	storeErrors   *prometheus.CounterVec
	rules         prometheus.Gauge
}

// NewMetrics constructs a Metrics instance with an isolated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	firewallCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forward",
		Name:      "firewall_calls_total",
		Help:      "Total number of firewall rule invocations by action, rule and result.",
	}, []string{"action", "rule", "result"})

	storeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forward",
		Name:      "store_errors_total",
		Help:      "Total number of rule store errors by type.",
	}, []string{"type"})

	rules := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "forward",
		Name:      "rules",
		Help:      "Number of forwarding rules in the store after the last command.",
	})

	registry.MustRegister(firewallCalls, storeErrors, rules)

	return &Metrics{
		registry:      registry,
		firewallCalls: firewallCalls,
		storeErrors:   storeErrors,
		rules:         rules,
	}
}

// ObserveFirewallCall counts one rule invocation.
func (m *Metrics) ObserveFirewallCall(action string, rule string, err error) {
	result := resultSuccess
	if err != nil {
		result = resultFailure
	}
	m.firewallCalls.WithLabelValues(action, rule, result).Inc()
}

// IncrementStoreError increments the store error counter for the provided type label.
func (m *Metrics) IncrementStoreError(errorType string) {
	m.storeErrors.WithLabelValues(errorType).Inc()
}

// SetRuleCount records the number of stored forwarding rules.
func (m *Metrics) SetRuleCount(count int) {
	m.rules.Set(float64(count))
}

// WriteTextfile writes the registry in the text exposition format for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
