package main

import (
	"context"
	"fmt"

	"github.com/marmos91/afile/internal/logger"
	"github.com/marmos91/afile/pkg/afile"
	"github.com/marmos91/afile/pkg/backend"
	"github.com/marmos91/afile/pkg/config"
	"github.com/marmos91/afile/pkg/priority"
)

// app carries the state shared by all subcommands.
type app struct {
	configFile   string
	logLevel     string
	priorityFlag string
	origin       string

	priority priority.Priority
	backend  backend.Backend

	stopMetrics context.CancelFunc
	metricsDone chan error
}

// setup loads the configuration, applies flag overrides and installs the
// configured backend as the active one.
func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.priorityFlag != "" {
		cfg.Priority = a.priorityFlag
	}
	if a.origin != "" {
		cfg.Backend.Type = "remote"
		cfg.Backend.Remote["origin"] = a.origin
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		return fmt.Errorf("failed to configure logger: %w", err)
	}
	a.priority = cfg.DefaultPriority()

	m, err := config.InitializeMetrics(cfg)
	if err != nil {
		return err
	}
	if m.Server != nil {
		mctx, cancel := context.WithCancel(context.Background())
		a.stopMetrics = cancel
		a.metricsDone = make(chan error, 1)
		go func() { a.metricsDone <- m.Server.Start(mctx) }()
	}

	b, err := config.CreateBackend(ctx, &cfg.Backend, m.BackendMetrics)
	if err != nil {
		return err
	}
	a.backend = b
	afile.SetBackend(b)

	logger.Debug("Backend %s ready, priority %s", b.Name(), a.priority)
	return nil
}

// teardown releases the backend and stops the metrics server.
func (a *app) teardown() error {
	var firstErr error
	if c, ok := a.backend.(backend.Closer); ok {
		if err := c.Close(); err != nil {
			firstErr = err
		}
	}
	if a.stopMetrics != nil {
		a.stopMetrics()
		if err := <-a.metricsDone; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	_ = logger.Sync()
	return firstErr
}
