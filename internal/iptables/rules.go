package iptables

import (
	"net"
	"strconv"

	"github.com/denniswebb/forward/internal/rules"
)

const (
	ipv4Binary = "iptables"
	ipv6Binary = "ip6tables"

	tableNAT    = "nat"
	tableFilter = "filter"

	forwardStates = "NEW,ESTABLISHED,RELATED"
)

// ForwardRules expands a forwarding rule into its DNAT, FORWARD accept and
// SNAT rules, in the order they must be applied.
func ForwardRules(r rules.ForwardingRule) []Rule {
	sourcePort := strconv.Itoa(r.SourcePort)
	destPort := strconv.Itoa(r.DestPort)

	return []Rule{
		{
			Name:  "dnat",
			Table: tableNAT,
			Chain: "PREROUTING",
			RuleSpec: []string{
				"-p", "tcp", "-m", "tcp",
				"-d", r.SourceAddress, "--dport", sourcePort,
				"-j", "DNAT", "--to-destination", net.JoinHostPort(r.DestAddress, destPort),
			},
		},
		{
			Name:  "forward",
			Table: tableFilter,
			Chain: "FORWARD",
			RuleSpec: []string{
				"-m", "state", "-p", "tcp",
				"-d", r.DestAddress, "--dport", destPort,
				"--state", forwardStates,
				"-j", "ACCEPT",
			},
		},
		{
			Name:  "snat",
			Table: tableNAT,
			Chain: "POSTROUTING",
			RuleSpec: []string{
				"-p", "tcp", "-m", "tcp",
				"-s", r.DestAddress, "--sport", destPort,
				"-j", "SNAT", "--to-source", r.SourceAddress,
			},
		},
	}
}

func familyOf(r rules.ForwardingRule) Family {
	if r.IPv6() {
		return FamilyIPv6
	}
	return FamilyIPv4
}
