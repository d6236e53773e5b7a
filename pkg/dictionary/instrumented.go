package dictionary

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/japaniel/hanreader/pkg/metrics"
)

// InstrumentedLookup wraps a Lookup with timing, counters and logging.
type InstrumentedLookup struct {
	inner  Lookup
	name   string
	logger *zap.Logger
}

// NewInstrumentedLookup wraps inner; name labels the log lines.
func NewInstrumentedLookup(inner Lookup, name string, logger *zap.Logger) *InstrumentedLookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedLookup{inner: inner, name: name, logger: logger}
}

func (l *InstrumentedLookup) Lookup(ctx context.Context, stems []string) ([][]Entry, error) {
	start := time.Now()
	lists, err := l.inner.Lookup(ctx, stems)
	duration := time.Since(start)
	metrics.LookupDuration.WithLabelValues("dictionary").Observe(duration.Seconds())

	if err != nil {
		metrics.LookupsTotal.WithLabelValues("dictionary", "error").Inc()
		l.logger.Error("Dictionary lookup failed",
			zap.String("dictionary", l.name),
			zap.Strings("stems", stems),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.LookupsTotal.WithLabelValues("dictionary", "ok").Inc()
	l.logger.Debug("Dictionary lookup completed",
		zap.String("dictionary", l.name),
		zap.Int("stems", len(stems)),
		zap.Int("lists", len(lists)),
		zap.Duration("duration", duration),
	)
	return lists, nil
}
