package iptables

const (
	// BackendExec shells out to the iptables binaries.
	BackendExec = "exec"
	// BackendGoIPTables uses github.com/coreos/go-iptables.
	BackendGoIPTables = "go-iptables"
)

// Config represents iptables/ip6tables invocation options.
type Config struct {
	Backend     string
	Binary      string
	Binary6     string
	WaitSeconds int
	Sudo        bool
}

func (c Config) binary(family Family) string {
	if family == FamilyIPv6 {
		if c.Binary6 != "" {
			return c.Binary6
		}
		return ipv6Binary
	}
	if c.Binary != "" {
		return c.Binary
	}
	return ipv4Binary
}

// Action selects whether a rule is appended to or deleted from its chain.
type Action string

const (
	ActionAppend Action = "-A"
	ActionDelete Action = "-D"
)

// String returns a label suitable for logs and metrics.
func (a Action) String() string {
	switch a {
	case ActionAppend:
		return "append"
	case ActionDelete:
		return "delete"
	default:
		return string(a)
	}
}

// Family is the address family a rule belongs to.
type Family int

const (
	FamilyIPv4 Family = iota
	FamilyIPv6
)

// Rule represents a single iptables rule, without the action and chain
// arguments.
type Rule struct {
	Name     string
	Table    string
	Chain    string
	RuleSpec []string
}
