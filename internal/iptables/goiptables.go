package iptables

import (
	"context"
	"fmt"

	goiptables "github.com/coreos/go-iptables/iptables"
)

type ruleTable interface {
	Append(table, chain string, rulespec ...string) error
	Delete(table, chain string, rulespec ...string) error
}

// GoIPTablesBackend applies rules through coreos/go-iptables. Handles are
// created on first use per family so a host without ip6tables only fails
// IPv6 rules.
type GoIPTablesBackend struct {
	newTable func(Family) (ruleTable, error)
	tables   map[Family]ruleTable
}

// NewGoIPTablesBackend constructs a GoIPTablesBackend.
func NewGoIPTablesBackend(cfg Config) *GoIPTablesBackend {
	return &GoIPTablesBackend{
		newTable: func(family Family) (ruleTable, error) {
			proto := goiptables.ProtocolIPv4
			if family == FamilyIPv6 {
				proto = goiptables.ProtocolIPv6
			}
			var (
				ipt *goiptables.IPTables
				err error
			)
			if cfg.WaitSeconds > 0 {
				ipt, err = goiptables.New(goiptables.IPFamily(proto), goiptables.Timeout(cfg.WaitSeconds))
			} else {
				ipt, err = goiptables.New(goiptables.IPFamily(proto))
			}
			if err != nil {
				return nil, err
			}
			return ipt, nil
		},
		tables: map[Family]ruleTable{},
	}
}

// Exec implements Backend.
func (b *GoIPTablesBackend) Exec(ctx context.Context, action Action, family Family, rule Rule) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	table, err := b.table(family)
	if err != nil {
		return err
	}

	switch action {
	case ActionAppend:
		err = table.Append(rule.Table, rule.Chain, rule.RuleSpec...)
	case ActionDelete:
		err = table.Delete(rule.Table, rule.Chain, rule.RuleSpec...)
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
	if err != nil {
		return fmt.Errorf("%s %s/%s rule: %w", action, rule.Table, rule.Chain, err)
	}
	return nil
}

func (b *GoIPTablesBackend) table(family Family) (ruleTable, error) {
	if t, ok := b.tables[family]; ok {
		return t, nil
	}
	t, err := b.newTable(family)
	if err != nil {
		return nil, fmt.Errorf("initialize go-iptables: %w", err)
	}
	b.tables[family] = t
	return t, nil
}
