package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/denniswebb/forward/internal/config"
	"github.com/denniswebb/forward/internal/forward"
	"github.com/denniswebb/forward/internal/iptables"
	"github.com/denniswebb/forward/internal/logging"
	"github.com/denniswebb/forward/internal/metrics"
	"github.com/denniswebb/forward/internal/rules"
)

// session wires one command invocation: configuration, firewall backend,
// store and metrics.
type session struct {
	cfg     config.Config
	manager *forward.Manager
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := logging.GetLogger()
	if logger == nil {
		logger = slog.Default()
	}

	m := metrics.NewMetrics()

	backend, err := iptables.NewBackend(iptables.Config{
		Backend:     cfg.Backend,
		Binary:      cfg.IPTablesBinary,
		Binary6:     cfg.IP6TablesBinary,
		WaitSeconds: cfg.Wait,
		Sudo:        cfg.Sudo,
	}, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	manager, err := forward.NewManager(forward.Config{
		Store:        rules.NewStore(cfg.Store),
		Firewall:     iptables.NewFirewall(backend, logger, m),
		AuditMapPath: cfg.AuditMap,
		Metrics:      m,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, manager: manager, metrics: m, logger: logger}, nil
}

// close flushes the metrics textfile when one is configured.
func (s *session) close() {
	if s.cfg.MetricsTextfile == "" {
		return
	}
	if err := s.metrics.WriteTextfile(s.cfg.MetricsTextfile); err != nil {
		s.logger.Warn("failed to write metrics textfile", slog.String("error", err.Error()))
	}
}
