package rules

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const auditMapHeader = "# Forwarding rules managed by forward\n# Format: source_ip:source_port/tcp -> dest_ip:dest_port\n"

// WriteAuditMap writes a plain-text listing of list to path, one rule per line.
func WriteAuditMap(path string, list []ForwardingRule, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	if err := validateAuditMapPath(path); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(auditMapHeader)
	for _, rule := range list {
		fmt.Fprintf(&b, "%s:%d/tcp -> %s:%d\n", rule.SourceAddress, rule.SourcePort, rule.DestAddress, rule.DestPort)
	}

	// #nosec G306 -- the audit map is meant to be world readable.
	if err := os.WriteFile(path, []byte(b.String()), storeFileMode); err != nil {
		return fmt.Errorf("write audit map %s: %w", path, err)
	}

	logger.Debug("audit map written", slog.String("path", path), slog.Int("rules", len(list)))
	return nil
}

func validateAuditMapPath(path string) error {
	clean := filepath.Clean(path)
	for _, part := range strings.Split(clean, string(filepath.Separator)) {
		if part == ".." {
			return fmt.Errorf("audit map path %q contains unsupported traversal component", path)
		}
	}
	return nil
}
