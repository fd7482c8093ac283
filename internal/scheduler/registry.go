// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrJobNotFound is returned for unknown job names.
var ErrJobNotFound = errors.New("job not found")

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Job is a named background task.
type Job struct {
	Name        string
	Description string
	Schedule    string
	// Timeout bounds one run; zero means one minute.
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// registeredJob holds a job with its cron entry and last result.
type registeredJob struct {
	job      Job
	schedule string // effective schedule (override or default)
	entryID  cron.EntryID

	mu        sync.Mutex
	running   bool
	lastRun   time.Time
	lastError string
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DefaultSchedule string    `json:"defaultSchedule"`
	Schedule        string    `json:"schedule"`
	IsOverridden    bool      `json:"isOverridden"`
	LastRun         time.Time `json:"lastRun,omitzero"`
	NextRun         time.Time `json:"nextRun,omitzero"`
	LastError       string    `json:"lastError,omitempty"`
}

// Registry manages the jobs of one cron instance.
type Registry struct {
	cron   *cron.Cron
	logger *slog.Logger
	mu     sync.RWMutex
	jobs   map[string]*registeredJob
}

// NewRegistry creates a registry adding entries to c.
func NewRegistry(c *cron.Cron, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{cron: c, logger: logger, jobs: make(map[string]*registeredJob)}
}

// Add validates the job schedule and adds it to cron.
func (r *Registry) Add(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("job needs a name and a run function")
	}
	if _, err := cronParser.Parse(job.Schedule); err != nil {
		return fmt.Errorf("invalid cron expression %q for %s: %w", job.Schedule, job.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.Name]; ok {
		return fmt.Errorf("job %s already registered", job.Name)
	}
	rj := &registeredJob{job: job, schedule: job.Schedule}
	id, err := r.cron.AddFunc(job.Schedule, func() { _ = r.run(context.Background(), rj) })
	if err != nil {
		return err
	}
	rj.entryID = id
	r.jobs[job.Name] = rj

	r.logger.Debug("registered scheduled job", "name", job.Name, "schedule", job.Schedule)
	return nil
}

// run executes one job, skipping it when the previous run is still busy.
func (r *Registry) run(ctx context.Context, rj *registeredJob) error {
	rj.mu.Lock()
	if rj.running {
		rj.mu.Unlock()
		r.logger.Warn("scheduled job still running, skipped", "name", rj.job.Name)
		return nil
	}
	rj.running = true
	rj.mu.Unlock()

	timeout := rj.job.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := rj.job.Run(ctx)

	rj.mu.Lock()
	rj.running = false
	rj.lastRun = start
	rj.lastError = ""
	if err != nil {
		rj.lastError = err.Error()
	}
	rj.mu.Unlock()

	if err != nil {
		r.logger.Error("scheduled job failed", "name", rj.job.Name, "error", err, "duration", time.Since(start))
	}
	return err
}

// List returns all registered jobs sorted by name.
func (r *Registry) List() []JobInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]JobInfo, 0, len(r.jobs))
	for _, rj := range r.jobs {
		entry := r.cron.Entry(rj.entryID)
		rj.mu.Lock()
		info := JobInfo{
			Name:            rj.job.Name,
			Description:     rj.job.Description,
			DefaultSchedule: rj.job.Schedule,
			Schedule:        rj.schedule,
			IsOverridden:    rj.schedule != rj.job.Schedule,
			LastRun:         rj.lastRun,
			NextRun:         entry.Next,
			LastError:       rj.lastError,
		}
		rj.mu.Unlock()
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// TriggerNow runs a job immediately and returns its error.
func (r *Registry) TriggerNow(ctx context.Context, name string) error {
	r.mu.RLock()
	rj, ok := r.jobs[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	r.logger.Info("manually triggering job", "name", name)
	return r.run(ctx, rj)
}

// UpdateSchedule replaces the cron entry of a job with a new schedule.
func (r *Registry) UpdateSchedule(name, schedule string) error {
	if _, err := cronParser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", schedule, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	rj, ok := r.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	r.cron.Remove(rj.entryID)
	id, err := r.cron.AddFunc(schedule, func() { _ = r.run(context.Background(), rj) })
	if err != nil {
		fallbackID, fallbackErr := r.cron.AddFunc(rj.schedule, func() { _ = r.run(context.Background(), rj) })
		if fallbackErr != nil {
			return fmt.Errorf("critical: failed to restore schedule after update failure: %w (original: %w)", fallbackErr, err)
		}
		rj.entryID = fallbackID
		return fmt.Errorf("failed to apply new schedule: %w", err)
	}
	rj.entryID = id
	rj.schedule = schedule

	r.logger.Info("updated job schedule", "name", name, "schedule", schedule)
	return nil
}

// ResetSchedule restores the default schedule of a job.
func (r *Registry) ResetSchedule(name string) error {
	r.mu.RLock()
	rj, ok := r.jobs[name]
	overridden := ok && rj.schedule != rj.job.Schedule
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if !overridden {
		return nil
	}
	return r.UpdateSchedule(name, rj.job.Schedule)
}
