// Package scan drives a full diagnostic pass: collectors in sequence,
// one interpreter call, then upload, persistence and history as side
// effects on the finished report.
package scan

import (
	"context"
	"time"

	"codeberg.org/mutker/diagctl/internal/collector"
	"codeberg.org/mutker/diagctl/internal/errors"
	"codeberg.org/mutker/diagctl/internal/history"
	"codeberg.org/mutker/diagctl/internal/interpret"
	"codeberg.org/mutker/diagctl/internal/logger"
	"codeberg.org/mutker/diagctl/internal/report"
	"codeberg.org/mutker/diagctl/internal/upload"
)

// Progress reports fractional completion and a stage label. It may be
// called from a worker goroutine and must not block.
type Progress func(fraction float64, stage string)

// Uploader posts a finished report to an endpoint.
type Uploader interface {
	Send(ctx context.Context, endpoint string, r report.Report) error
}

type Config struct {
	OutputDir      string
	ServerEndpoint string
}

type Scanner struct {
	cfg        Config
	collectors []collector.Collector
	store      history.Store
	uploader   Uploader
	now        func() time.Time
}

// Option adjusts scanner construction.
type Option func(*Scanner)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) {
		s.now = now
	}
}

func New(cfg Config, collectors []collector.Collector, store history.Store, uploader Uploader, opts ...Option) *Scanner {
	s := &Scanner{
		cfg:        cfg,
		collectors: collectors,
		store:      store,
		uploader:   uploader,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// DefaultCollectors returns the standard set in scan order.
func DefaultCollectors(smartCacheTTL time.Duration) []collector.Collector {
	return []collector.Collector{
		collector.NewSystem(),
		collector.NewStorage(collector.NewSMARTCache(smartCacheTTL)),
		collector.NewWindows11(),
		collector.NewTemperatures(),
	}
}

// Run executes one scan and returns the enriched report and the path
// it was written to. Cancellation is cooperative: the context is
// checked between stages, never mid-collector.
func (s *Scanner) Run(ctx context.Context, progress Progress) (report.Report, string, error) {
	errFactory := errors.New()

	emit := func(fraction float64, stage string) {
		if progress != nil {
			progress(fraction, stage)
		}
	}

	started := s.now()
	r := report.New(started)

	for i, c := range s.collectors {
		if err := ctx.Err(); err != nil {
			return nil, "", errFactory.Wrap(errors.ErrScanCancelled, err)
		}
		emit(float64(i)/float64(len(s.collectors)), c.Describe())
		r[c.Key()] = c.Collect(ctx)
	}

	if err := ctx.Err(); err != nil {
		return nil, "", errFactory.Wrap(errors.ErrScanCancelled, err)
	}

	emit(0.9, "Interpreting results")
	summary := interpret.Interpret(r)
	r.Merge(summary)

	r["upload_status"] = s.sendReport(ctx, r)

	path, err := r.Write(s.cfg.OutputDir, started)
	if err != nil {
		return nil, "", err
	}

	if err := s.record(ctx, started, r, summary); err != nil {
		// History is best-effort: the report on disk is the product.
		logger.Warn().Err(err).Msg("failed to record scan history")
	}

	emit(1.0, "Report written to "+path)

	return r, path, nil
}

// sendReport uploads the report when an endpoint is configured and
// returns the upload_status value to record. A failed upload is a
// warning, never fatal.
func (s *Scanner) sendReport(ctx context.Context, r report.Report) string {
	if s.cfg.ServerEndpoint == "" || s.uploader == nil {
		return upload.StatusDisabled
	}

	if err := s.uploader.Send(ctx, s.cfg.ServerEndpoint, r); err != nil {
		logger.Warn().Err(err).Str("endpoint", s.cfg.ServerEndpoint).Msg("report upload failed")
		return upload.StatusFailed
	}

	logger.Info().Str("endpoint", s.cfg.ServerEndpoint).Msg("report uploaded")

	return upload.StatusSuccess
}

func (s *Scanner) record(ctx context.Context, started time.Time, r report.Report, summary report.Summary) error {
	return s.store.Record(ctx, &history.Entry{
		Timestamp:       started,
		Status:          summary.Status.String(),
		HealthScore:     summary.HealthScore,
		WarningCount:    len(summary.Warnings),
		CPUTempC:        floatAt(r, "temps", "cpu_c"),
		DiskUsedPercent: floatAt(r, "storage", "usage", "used_percent"),
		RAMGB:           floatAt(r, "system", "RAM_GB"),
	})
}

// floatAt walks nested report mappings and returns the numeric leaf,
// or zero when the path is missing or not numeric.
func floatAt(r report.Report, path ...string) float64 {
	var current any = map[string]any(r)
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return 0
		}
		current = m[key]
	}

	switch v := current.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
