// Package scheduler loads the glossary at startup, reloads it on a fixed
// interval and warns when reloads stop succeeding.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/giygas/cardioexplain-api/explainer"
	"github.com/giygas/cardioexplain-api/interfaces"
	"github.com/giygas/cardioexplain-api/logging"
	"github.com/giygas/cardioexplain-api/metrics"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

const (
	loadTimeout     = 2 * time.Minute
	monitorInterval = time.Hour
	// staleAfterIntervals is how many missed reload intervals trigger a warning
	staleAfterIntervals = 3
)

// Scheduler handles glossary reloads and staleness monitoring
type Scheduler struct {
	store     interfaces.GlossaryStore
	source    interfaces.GlossarySource
	validator interfaces.GlossaryValidator
	interval  time.Duration

	scheduler *gocron.Scheduler
	job       *gocron.Job

	stopMonitor chan struct{}
	stopOnce    sync.Once
}

// NewScheduler creates a scheduler. An interval of zero loads the glossary
// once at Start and never reloads it.
func NewScheduler(store interfaces.GlossaryStore, source interfaces.GlossarySource,
	validator interfaces.GlossaryValidator, interval time.Duration) *Scheduler {
	return &Scheduler{
		store:       store,
		source:      source,
		validator:   validator,
		interval:    interval,
		scheduler:   gocron.NewScheduler(time.Local),
		stopMonitor: make(chan struct{}),
	}
}

// Start performs the initial load, which must succeed, then schedules reloads
func (s *Scheduler) Start() error {
	if err := s.Reload(context.Background()); err != nil {
		logging.Error("Failed to perform initial glossary load", "source", s.source.Describe(), "error", err)
		return fmt.Errorf("initial glossary load failed: %w", err)
	}

	if s.interval <= 0 {
		logging.Info("Scheduled glossary reloads disabled")
		return nil
	}

	job, err := s.scheduler.Every(s.interval).WaitForSchedule().SingletonMode().Do(func() {
		if err := s.Reload(context.Background()); err != nil {
			logging.Error("Scheduled glossary reload failed, keeping the previous glossary",
				"source", s.source.Describe(), "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule glossary reloads", "error", err)
		return fmt.Errorf("failed to schedule glossary reloads: %w", err)
	}
	s.job = job

	s.scheduler.StartAsync()
	s.startHealthMonitoring()

	logging.Info("Glossary reloads scheduled", "interval", s.interval.String(), "next_run", s.NextReload())
	return nil
}

// Stop stops reloads and the health monitor
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopMonitor)
		s.scheduler.Stop()
	})
}

// NextReload returns when the next scheduled reload runs, zero when reloads are disabled
func (s *Scheduler) NextReload() time.Time {
	if s.job == nil {
		return time.Time{}
	}
	return s.job.NextRun()
}

// Reload loads the glossary from the source and swaps it in. On failure the
// current glossary stays in service and the error is recorded on the store.
// A reload already in progress makes this a no-op.
func (s *Scheduler) Reload(ctx context.Context) error {
	if !s.store.BeginUpdate() {
		logging.Info("Glossary reload already in progress, skipping")
		metrics.RecordReload(metrics.ReloadSkipped, 0)
		return nil
	}
	defer s.store.EndUpdate()

	start := time.Now()
	logging.Info("Starting glossary load", "source", s.source.Describe())

	engine, report, err := s.build(ctx)
	if err != nil {
		s.store.RecordReloadError(err)
		metrics.RecordReload(metrics.ReloadFailure, 0)
		return err
	}

	logQualityReport(report)

	s.store.UpdateEngine(engine, report)
	g := engine.Glossary()
	metrics.RecordReload(metrics.ReloadSuccess, g.Len())

	logging.Info("Glossary load completed",
		"duration", time.Since(start).String(),
		"version", g.Version(),
		"entries", g.Len(),
	)
	return nil
}

func (s *Scheduler) build(ctx context.Context) (*explainer.Engine, *interfaces.GlossaryQualityReport, error) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	g, err := s.source.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load glossary from %s: %w", s.source.Describe(), err)
	}

	engine, err := explainer.NewEngine(g)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compile glossary: %w", err)
	}

	return engine, s.validator.ReportGlossaryQuality(g), nil
}

func logQualityReport(report *interfaces.GlossaryQualityReport) {
	if !report.HasIssues() {
		return
	}

	if len(report.NestedTerms) > 0 {
		pairs := make([]string, len(report.NestedTerms))
		for i, n := range report.NestedTerms {
			pairs[i] = n.Inner + " in " + n.Outer
		}
		logging.Warn("Glossary terms nested in other terms, both will be reported",
			"total", len(pairs),
			"pairs", pairs,
		)
	}

	if len(report.EmptyCategories) > 0 {
		logging.Warn("Glossary categories without entries", "categories", report.EmptyCategories)
	}

	if len(report.LongTexts) > 0 {
		logging.Warn("Glossary entries with long texts", "terms", report.LongTexts)
	}
}

// startHealthMonitoring warns when the glossary has not been refreshed for
// several reload intervals
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(monitorInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopMonitor:
				return
			case <-ticker.C:
				s.checkStaleness(time.Now())
			}
		}
	}()
}

// checkStaleness reports whether the last successful load is older than
// staleAfterIntervals reload intervals, logging a warning when it is
func (s *Scheduler) checkStaleness(now time.Time) bool {
	if s.interval <= 0 {
		return false
	}

	limit := staleAfterIntervals * s.interval
	age := now.Sub(s.store.GetLastUpdated())
	if age <= limit {
		return false
	}

	logging.Warn("Glossary has not been reloaded successfully in a while",
		"age", age.Round(time.Second).String(),
		"limit", limit.String(),
		"last_error", s.store.LastReloadError(),
	)
	return true
}
