package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/config"
)

// fakeStore records sweep cutoffs and can be scripted to fail.
type fakeStore struct {
	mu      sync.Mutex
	cutoffs []time.Time
	errs    []error
	deleted int64
}

func (s *fakeStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cutoffs = append(s.cutoffs, cutoff)
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return 0, err
		}
	}
	return s.deleted, nil
}

func (s *fakeStore) calls() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Time, len(s.cutoffs))
	copy(out, s.cutoffs)
	return out
}

func TestSweepCutoffMatchesRetentionHorizon(t *testing.T) {
	store := &fakeStore{deleted: 3}
	cfg := &config.AuditConfig{Enabled: true, RetentionDays: 180}
	s := NewRetentionSweeper(store, cfg)

	before := time.Now().UTC().Add(-cfg.RetentionHorizon())
	s.sweep(context.Background())
	after := time.Now().UTC().Add(-cfg.RetentionHorizon())

	calls := store.calls()
	if len(calls) != 1 {
		t.Fatalf("sweeps = %d, want 1", len(calls))
	}
	// An entry 200 days old falls before the cutoff; one 10 days old does not.
	cutoff := calls[0]
	if cutoff.Before(before) || cutoff.After(after) {
		t.Errorf("cutoff %v outside [%v, %v]", cutoff, before, after)
	}
	if !time.Now().UTC().AddDate(0, 0, -200).Before(cutoff) {
		t.Error("a 200-day-old entry should fall before the cutoff")
	}
	if time.Now().UTC().AddDate(0, 0, -10).Before(cutoff) {
		t.Error("a 10-day-old entry should not fall before the cutoff")
	}
}

func TestSweepFailureDoesNotStopSchedule(t *testing.T) {
	store := &fakeStore{errs: []error{errors.New("db down")}}
	cfg := &config.AuditConfig{Enabled: true, RetentionDays: 30}
	s := NewRetentionSweeper(store, cfg)

	s.sweep(context.Background())
	s.sweep(context.Background())

	if got := len(store.calls()); got != 2 {
		t.Errorf("sweeps = %d, want 2 (failure must not break the loop)", got)
	}
}

func TestStartRunsImmediateSweepAndStops(t *testing.T) {
	store := &fakeStore{}
	cfg := &config.AuditConfig{Enabled: true, RetentionDays: 30, SweepIntervalHours: 1}
	s := NewRetentionSweeper(store, cfg)

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for len(store.calls()) == 0 {
		select {
		case <-deadline:
			t.Fatal("no immediate sweep on Start")
		case <-time.After(10 * time.Millisecond):
		}
	}

	s.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestStartDisabledByConfig(t *testing.T) {
	store := &fakeStore{}
	cfg := &config.AuditConfig{Enabled: false, RetentionDays: 30}
	s := NewRetentionSweeper(store, cfg)

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start should return immediately when audit is disabled")
	}
	if len(store.calls()) != 0 {
		t.Error("disabled sweeper must not sweep")
	}
}

func TestStartHonorsContextCancellation(t *testing.T) {
	store := &fakeStore{}
	cfg := &config.AuditConfig{Enabled: true, RetentionDays: 30, SweepIntervalHours: 1}
	s := NewRetentionSweeper(store, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after context cancellation")
	}
}

func TestDefaultSweepInterval(t *testing.T) {
	s := NewRetentionSweeper(&fakeStore{}, &config.AuditConfig{Enabled: true, RetentionDays: 180})
	if s.interval != 24*time.Hour {
		t.Errorf("interval = %v, want 24h", s.interval)
	}
}
