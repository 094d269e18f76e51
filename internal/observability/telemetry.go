// Package observability starts the tracing, profiling and pprof side channels
// of an ingest run.
package observability

import (
	"context"
	"errors"

	"github.com/riskibarqy/archive-ingest/internal/config"
	"github.com/riskibarqy/archive-ingest/internal/platform/logging"
)

// Telemetry owns whatever Start enabled. Shutdown stops it in reverse order.
type Telemetry struct {
	PprofAddr string

	logger  *logging.Logger
	closers []closer
}

type closer struct {
	name  string
	close func(context.Context) error
}

// Start enables each component its config turns on. A failing component stops
// the ones already started.
func Start(cfg config.Config, logger *logging.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Telemetry{logger: logger}

	steps := []struct {
		name  string
		start func(config.Config, *logging.Logger) (func(context.Context) error, error)
	}{
		{"uptrace", startTracing},
		{"pyroscope", startProfiling},
		{"pprof", t.startPprof},
	}
	for _, step := range steps {
		stop, err := step.start(cfg, logger)
		if err != nil {
			_ = t.Shutdown(context.Background())
			return nil, err
		}
		if stop != nil {
			t.closers = append(t.closers, closer{name: step.name, close: stop})
		}
	}
	return t, nil
}

// Shutdown stops every started component and joins their errors.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	for i := len(t.closers) - 1; i >= 0; i-- {
		c := t.closers[i]
		if err := c.close(ctx); err != nil {
			t.logger.Warn("telemetry shutdown failed", "component", c.name, "error", err)
			errs = append(errs, err)
		}
	}
	t.closers = nil
	return errors.Join(errs...)
}
