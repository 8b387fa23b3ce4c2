package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func newTestScheduler() *Scheduler {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(log)
}

func TestRegister_RejectsInvalidInterval(t *testing.T) {
	s := newTestScheduler()
	if err := s.Register("job", 0, func(ctx context.Context) error { return nil }); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestSetInterval_Validation(t *testing.T) {
	s := newTestScheduler()
	if err := s.Register("job", time.Minute, func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if err := s.SetInterval("job", -time.Second); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("expected ErrInvalidInterval for negative interval, got %v", err)
	}
	if err := s.SetInterval("missing", time.Second); !errors.Is(err, ErrUnknownJob) {
		t.Errorf("expected ErrUnknownJob, got %v", err)
	}

	// a rejected reconfiguration leaves the interval unchanged
	if every, _ := s.Interval("job"); every != time.Minute {
		t.Errorf("expected interval to stay at 1m, got %s", every)
	}

	if err := s.SetInterval("job", 120000*time.Millisecond); err != nil {
		t.Fatalf("SetInterval error: %v", err)
	}
	if every, _ := s.Interval("job"); every != 120000*time.Millisecond {
		t.Errorf("expected interval 120000ms, got %s", every)
	}
}

func TestScheduler_RunsImmediatelyAndPeriodically(t *testing.T) {
	s := newTestScheduler()
	var runs atomic.Int64
	if err := s.Register("job", 20*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	s.Start()
	defer s.Stop()

	// immediate startup run
	deadline := time.Now().Add(time.Second)
	for runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if runs.Load() == 0 {
		t.Fatal("expected an immediate run at startup")
	}

	time.Sleep(90 * time.Millisecond)
	if got := runs.Load(); got < 3 {
		t.Errorf("expected at least 3 runs after several ticks, got %d", got)
	}
}

func TestScheduler_FailedRunDoesNotBlockNextTick(t *testing.T) {
	s := newTestScheduler()
	var runs atomic.Int64
	if err := s.Register("job", 15*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("upstream unreachable")
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	s.Start()
	defer s.Stop()

	time.Sleep(80 * time.Millisecond)
	if got := runs.Load(); got < 3 {
		t.Errorf("expected failing job to keep ticking, got %d runs", got)
	}
}

func TestScheduler_NeverRunsJobConcurrently(t *testing.T) {
	s := newTestScheduler()
	var inFlight atomic.Int64
	var overlaps atomic.Int64
	run := func(ctx context.Context) error {
		if inFlight.Add(1) > 1 {
			overlaps.Add(1)
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	}
	if err := s.Register("job", 5*time.Millisecond, run); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	s.Start()
	defer s.Stop()

	// hammer the job from the manual path while it ticks
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			_ = s.RunNow(context.Background(), "job", nil)
		}
	}()
	<-done

	if overlaps.Load() != 0 {
		t.Errorf("job ran concurrently %d times", overlaps.Load())
	}
}

func TestRunNow_UnknownJobAndOverride(t *testing.T) {
	s := newTestScheduler()
	if err := s.RunNow(context.Background(), "missing", nil); !errors.Is(err, ErrUnknownJob) {
		t.Fatalf("expected ErrUnknownJob, got %v", err)
	}

	var registered, override atomic.Int64
	if err := s.Register("job", time.Hour, func(ctx context.Context) error {
		registered.Add(1)
		return nil
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if err := s.RunNow(context.Background(), "job", func(ctx context.Context) error {
		override.Add(1)
		return nil
	}); err != nil {
		t.Fatalf("RunNow error: %v", err)
	}
	if registered.Load() != 0 || override.Load() != 1 {
		t.Errorf("expected only the override to run, got registered=%d override=%d", registered.Load(), override.Load())
	}

	wantErr := errors.New("cycle failed")
	if err := s.RunNow(context.Background(), "job", func(ctx context.Context) error { return wantErr }); !errors.Is(err, wantErr) {
		t.Errorf("expected run error to propagate, got %v", err)
	}
}

func TestSetInterval_AffectsSubsequentTicks(t *testing.T) {
	s := newTestScheduler()
	var runs atomic.Int64
	if err := s.Register("job", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	s.Start()
	defer s.Stop()

	time.Sleep(35 * time.Millisecond)
	if err := s.SetInterval("job", time.Hour); err != nil {
		t.Fatalf("SetInterval error: %v", err)
	}
	// the tick already scheduled still fires under the old period
	time.Sleep(25 * time.Millisecond)
	settled := runs.Load()

	time.Sleep(50 * time.Millisecond)
	if got := runs.Load(); got != settled {
		t.Errorf("expected no further runs after stretching the interval, got %d extra", got-settled)
	}
}
