// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs background jobs: scheduled publishing, event log
// retention and cleanup of in-memory limiter state.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job names.
const (
	JobPublishScheduled = "publish-scheduled"
	JobEventRetention   = "event-retention"
	JobLimiterCleanup   = "limiter-cleanup"
)

// DefaultEventRetention is how long event log rows are kept.
const DefaultEventRetention = 90 * 24 * time.Hour

// Publisher publishes pages whose scheduled time has passed.
type Publisher interface {
	PublishDue(ctx context.Context) (int, error)
}

// EventPruner deletes old event log rows.
type EventPruner interface {
	DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Cleaner drops expired in-memory state.
type Cleaner interface {
	Cleanup()
}

// Deps are the services the core jobs act on. Nil members skip their job.
type Deps struct {
	Publisher      Publisher
	Events         EventPruner
	EventRetention time.Duration
	Cleaners       []Cleaner
}

// Scheduler owns the cron instance and its job registry.
type Scheduler struct {
	cron     *cron.Cron
	registry *Registry
	logger   *slog.Logger
}

// New creates a scheduler. Jobs run in UTC with panics recovered.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cronLogger{logger})),
		cron.WithLogger(cronLogger{logger}),
	)
	return &Scheduler{cron: c, registry: NewRegistry(c, logger), logger: logger}
}

// Registry returns the job registry.
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// RegisterCoreJobs adds the built-in jobs for deps.
func (s *Scheduler) RegisterCoreJobs(deps Deps) error {
	if deps.Publisher != nil {
		err := s.registry.Add(Job{
			Name:        JobPublishScheduled,
			Description: "Publish pages whose scheduled time has passed",
			Schedule:    "* * * * *",
			Run: func(ctx context.Context) error {
				n, err := deps.Publisher.PublishDue(ctx)
				if n > 0 {
					s.logger.Info("published scheduled pages", "count", n)
				}
				return err
			},
		})
		if err != nil {
			return err
		}
	}

	if deps.Events != nil {
		retention := deps.EventRetention
		if retention <= 0 {
			retention = DefaultEventRetention
		}
		err := s.registry.Add(Job{
			Name:        JobEventRetention,
			Description: "Delete event log entries older than the retention period",
			Schedule:    "@daily",
			Timeout:     5 * time.Minute,
			Run: func(ctx context.Context) error {
				n, err := deps.Events.DeleteOldEvents(ctx, retention)
				if err != nil {
					return err
				}
				if n > 0 {
					s.logger.Info("deleted old events", "count", n, "retention", retention)
				}
				return nil
			},
		})
		if err != nil {
			return err
		}
	}

	if len(deps.Cleaners) > 0 {
		err := s.registry.Add(Job{
			Name:        JobLimiterCleanup,
			Description: "Drop expired login lockouts and rate limiter state",
			Schedule:    "*/10 * * * *",
			Run: func(context.Context) error {
				for _, c := range deps.Cleaners {
					c.Cleanup()
				}
				return nil
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Start begins running jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop stops the scheduler and waits for running jobs or ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out", "error", ctx.Err())
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
