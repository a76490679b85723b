// Package rules holds the forwarding rule model and the flat-file store that
// keeps the registered rules between invocations.
package rules

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

const (
	minPort = 1
	maxPort = 65535
)

// ForwardingRule maps an external address/port pair onto an internal one.
// Field order is the on-disk order.
type ForwardingRule struct {
	SourceAddress string `json:"sourceIp"`
	SourcePort    int    `json:"sourcePort"`
	DestAddress   string `json:"destIp"`
	DestPort      int    `json:"destPort"`
}

// Equal reports whether all four fields match exactly.
func (r ForwardingRule) Equal(other ForwardingRule) bool {
	return r.SourceAddress == other.SourceAddress &&
		r.SourcePort == other.SourcePort &&
		r.DestAddress == other.DestAddress &&
		r.DestPort == other.DestPort
}

// String renders the rule as "source:port -> dest:port".
func (r ForwardingRule) String() string {
	return fmt.Sprintf("%s -> %s",
		net.JoinHostPort(r.SourceAddress, strconv.Itoa(r.SourcePort)),
		net.JoinHostPort(r.DestAddress, strconv.Itoa(r.DestPort)))
}

// IPv6 reports whether both addresses are IPv6 literals.
func (r ForwardingRule) IPv6() bool {
	return isIPv6(r.SourceAddress) && isIPv6(r.DestAddress)
}

// Validate checks ports are in range, addresses are present and, when both
// addresses are IP literals, that they belong to the same family.
func (r ForwardingRule) Validate() error {
	if strings.TrimSpace(r.SourceAddress) == "" {
		return fmt.Errorf("source address cannot be empty")
	}
	if strings.TrimSpace(r.DestAddress) == "" {
		return fmt.Errorf("destination address cannot be empty")
	}
	if err := validatePort(r.SourcePort); err != nil {
		return fmt.Errorf("source port: %w", err)
	}
	if err := validatePort(r.DestPort); err != nil {
		return fmt.Errorf("destination port: %w", err)
	}

	src := net.ParseIP(r.SourceAddress)
	dst := net.ParseIP(r.DestAddress)
	if src != nil && dst != nil && (src.To4() == nil) != (dst.To4() == nil) {
		return fmt.Errorf("mixed address families: %s and %s", r.SourceAddress, r.DestAddress)
	}
	return nil
}

// Parse builds a rule from the four positional command arguments.
func Parse(sourceAddress, sourcePort, destAddress, destPort string) (ForwardingRule, error) {
	sp, err := ParsePort(sourcePort)
	if err != nil {
		return ForwardingRule{}, fmt.Errorf("invalid source port: %w", err)
	}
	dp, err := ParsePort(destPort)
	if err != nil {
		return ForwardingRule{}, fmt.Errorf("invalid destination port: %w", err)
	}

	rule := ForwardingRule{
		SourceAddress: strings.TrimSpace(sourceAddress),
		SourcePort:    sp,
		DestAddress:   strings.TrimSpace(destAddress),
		DestPort:      dp,
	}
	if err := rule.Validate(); err != nil {
		return ForwardingRule{}, err
	}
	return rule, nil
}

// ParsePort converts a decimal port string, rejecting values outside 1-65535.
func ParsePort(raw string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if err := validatePort(port); err != nil {
		return 0, err
	}
	return port, nil
}

// Remove returns the rules that do not equal target, in their original order,
// along with how many were dropped.
func Remove(list []ForwardingRule, target ForwardingRule) ([]ForwardingRule, int) {
	kept := make([]ForwardingRule, 0, len(list))
	removed := 0
	for _, rule := range list {
		if rule.Equal(target) {
			removed++
			continue
		}
		kept = append(kept, rule)
	}
	return kept, removed
}

func validatePort(port int) error {
	if port < minPort || port > maxPort {
		return fmt.Errorf("port %d out of range %d-%d", port, minPort, maxPort)
	}
	return nil
}

func isIPv6(addr string) bool {
	parsed := net.ParseIP(addr)
	return parsed != nil && parsed.To4() == nil
}
