// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/olegiv/blockcms/internal/testutil"
)

type fakePublisher struct {
	n   int
	err error
}

func (f *fakePublisher) PublishDue(context.Context) (int, error) { return f.n, f.err }

type fakePruner struct {
	olderThan time.Duration
}

func (f *fakePruner) DeleteOldEvents(_ context.Context, olderThan time.Duration) (int64, error) {
	f.olderThan = olderThan
	return 3, nil
}

type fakeCleaner struct{ calls int }

func (f *fakeCleaner) Cleanup() { f.calls++ }

func TestRegisterCoreJobs(t *testing.T) {
	s := New(testutil.TestLoggerSilent())
	pub := &fakePublisher{n: 2, err: errors.New("page 7 failed")}
	pruner := &fakePruner{}
	a, b := &fakeCleaner{}, &fakeCleaner{}

	if err := s.RegisterCoreJobs(Deps{Publisher: pub, Events: pruner, Cleaners: []Cleaner{a, b}}); err != nil {
		t.Fatal(err)
	}
	jobs := s.Registry().List()
	if len(jobs) != 3 {
		t.Fatalf("jobs = %+v", jobs)
	}

	ctx := context.Background()
	if err := s.Registry().TriggerNow(ctx, JobPublishScheduled); err == nil {
		t.Error("publish error not reported")
	}
	if err := s.Registry().TriggerNow(ctx, JobEventRetention); err != nil {
		t.Fatal(err)
	}
	if pruner.olderThan != DefaultEventRetention {
		t.Errorf("retention = %v", pruner.olderThan)
	}
	if err := s.Registry().TriggerNow(ctx, JobLimiterCleanup); err != nil {
		t.Fatal(err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("cleaner calls = %d, %d", a.calls, b.calls)
	}
}

func TestRegisterCoreJobs_SkipsMissingDeps(t *testing.T) {
	s := New(nil)
	if err := s.RegisterCoreJobs(Deps{Events: &fakePruner{}, EventRetention: time.Hour}); err != nil {
		t.Fatal(err)
	}
	jobs := s.Registry().List()
	if len(jobs) != 1 || jobs[0].Name != JobEventRetention {
		t.Errorf("jobs = %+v", jobs)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(testutil.TestLoggerSilent())
	if err := s.RegisterCoreJobs(Deps{Publisher: &fakePublisher{}}); err != nil {
		t.Fatal(err)
	}
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
