// Package iptables turns forwarding rules into netfilter rule invocations. Each
// forwarding rule expands to three rules (PREROUTING DNAT, FORWARD accept,
// POSTROUTING SNAT) which are appended or deleted through a Backend. The
// default backend shells out to the iptables binary and relays its output; an
// alternative backend drives the same rule specs through coreos/go-iptables.
// Calls are best effort: every rule of a set is attempted and failures are
// aggregated rather than rolled back.
package iptables
