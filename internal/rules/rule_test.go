package rules

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      [4]string
		want      ForwardingRule
		errSubstr string
	}{
		{
			name: "valid ipv4",
			args: [4]string{"1.2.3.4", "8080", "10.0.0.5", "80"},
			want: ForwardingRule{SourceAddress: "1.2.3.4", SourcePort: 8080, DestAddress: "10.0.0.5", DestPort: 80},
		},
		{
			name: "valid ipv6",
			args: [4]string{"2001:db8::1", "443", "fd00::5", "8443"},
			want: ForwardingRule{SourceAddress: "2001:db8::1", SourcePort: 443, DestAddress: "fd00::5", DestPort: 8443},
		},
		{
			name: "host names accepted",
			args: [4]string{"gw.example", "22", "db.internal", "2222"},
			want: ForwardingRule{SourceAddress: "gw.example", SourcePort: 22, DestAddress: "db.internal", DestPort: 2222},
		},
		{name: "non numeric source port", args: [4]string{"10.0.0.1", "abc", "10.0.0.2", "80"}, errSubstr: "invalid source port"},
		{name: "non numeric dest port", args: [4]string{"10.0.0.1", "80", "10.0.0.2", "http"}, errSubstr: "invalid destination port"},
		{name: "zero port", args: [4]string{"10.0.0.1", "0", "10.0.0.2", "80"}, errSubstr: "out of range"},
		{name: "port too large", args: [4]string{"10.0.0.1", "80", "10.0.0.2", "65536"}, errSubstr: "out of range"},
		{name: "empty source", args: [4]string{" ", "80", "10.0.0.2", "80"}, errSubstr: "source address cannot be empty"},
		{name: "mixed families", args: [4]string{"10.0.0.1", "80", "fd00::2", "80"}, errSubstr: "mixed address families"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tc.args[0], tc.args[1], tc.args[2], tc.args[3])
			if tc.errSubstr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got rule %+v", tc.errSubstr, got)
				}
				if !strings.Contains(err.Error(), tc.errSubstr) {
					t.Fatalf("error %q does not contain %q", err, tc.errSubstr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("unexpected rule (-want +got):\n%s", diff)
			}
		})
	}
}

func TestForwardingRuleString(t *testing.T) {
	t.Parallel()

	v4 := ForwardingRule{SourceAddress: "1.2.3.4", SourcePort: 8080, DestAddress: "10.0.0.5", DestPort: 80}
	if got, want := v4.String(), "1.2.3.4:8080 -> 10.0.0.5:80"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}

	v6 := ForwardingRule{SourceAddress: "fd00::1", SourcePort: 443, DestAddress: "fd00::2", DestPort: 8443}
	if got, want := v6.String(), "[fd00::1]:443 -> [fd00::2]:8443"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if !v6.IPv6() {
		t.Fatal("expected ipv6 rule to report IPv6")
	}
	if v4.IPv6() {
		t.Fatal("expected ipv4 rule not to report IPv6")
	}
}

func TestRemoveExactMatchOnly(t *testing.T) {
	t.Parallel()

	list := []ForwardingRule{
		{SourceAddress: "A", SourcePort: 1, DestAddress: "B", DestPort: 2},
		{SourceAddress: "A", SourcePort: 1, DestAddress: "B", DestPort: 3},
	}

	kept, removed := Remove(list, ForwardingRule{SourceAddress: "A", SourcePort: 1, DestAddress: "B", DestPort: 2})
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	want := []ForwardingRule{{SourceAddress: "A", SourcePort: 1, DestAddress: "B", DestPort: 3}}
	if diff := cmp.Diff(want, kept); diff != "" {
		t.Fatalf("unexpected remaining rules (-want +got):\n%s", diff)
	}
}

func TestRemoveDropsEveryDuplicate(t *testing.T) {
	t.Parallel()

	dup := ForwardingRule{SourceAddress: "A", SourcePort: 1, DestAddress: "B", DestPort: 2}
	other := ForwardingRule{SourceAddress: "C", SourcePort: 1, DestAddress: "B", DestPort: 2}
	list := []ForwardingRule{dup, other, dup}

	kept, removed := Remove(list, dup)
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if diff := cmp.Diff([]ForwardingRule{other}, kept); diff != "" {
		t.Fatalf("unexpected remaining rules (-want +got):\n%s", diff)
	}

	kept, removed = Remove(kept, dup)
	if removed != 0 || len(kept) != 1 {
		t.Fatalf("expected no-op removal, got removed=%d kept=%v", removed, kept)
	}
}
