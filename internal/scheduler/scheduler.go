// Package scheduler drives periodic execution of named sync jobs. Each job
// runs once at startup and then every interval; the interval can be swapped
// at runtime without restarting the loop.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Job names used across the service.
const (
	JobInventory   = "inventory"
	JobSalesReport = "sales-report"
)

var (
	ErrUnknownJob      = errors.New("scheduler: unknown job")
	ErrInvalidInterval = errors.New("scheduler: interval must be a positive duration")
)

// RunFunc is one sync cycle. A returned error marks the run failed; it is
// logged and does not block the next tick.
type RunFunc func(ctx context.Context) error

type job struct {
	name       string
	run        RunFunc
	intervalNs atomic.Int64
	// mu serializes runs. Scheduled ticks TryLock and skip when the
	// previous run is still in flight; RunNow blocks instead.
	mu sync.Mutex
}

func (j *job) interval() time.Duration {
	return time.Duration(j.intervalNs.Load())
}

type Scheduler struct {
	log  *logrus.Logger
	mu   sync.Mutex
	jobs map[string]*job
	stop chan struct{}
	wg   sync.WaitGroup
}

func New(log *logrus.Logger) *Scheduler {
	return &Scheduler{
		log:  log,
		jobs: make(map[string]*job),
		stop: make(chan struct{}),
	}
}

// Register adds a named job. Must be called before Start.
func (s *Scheduler) Register(name string, every time.Duration, run RunFunc) error {
	if every <= 0 {
		return ErrInvalidInterval
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return errors.New("scheduler: job already registered: " + name)
	}
	j := &job{name: name, run: run}
	j.intervalNs.Store(int64(every))
	s.jobs[name] = j
	return nil
}

// Start launches one scheduling loop per registered job. Every job runs
// immediately, then on its interval. The loop re-reads the interval after
// each run, so a SetInterval takes effect on the tick after the one already
// scheduled.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(j)
	}
}

func (s *Scheduler) loop(j *job) {
	defer s.wg.Done()

	s.execute(context.Background(), j, "startup")

	timer := time.NewTimer(j.interval())
	defer timer.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-timer.C:
			s.execute(context.Background(), j, "tick")
			timer.Reset(j.interval())
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, j *job, trigger string) {
	if !j.mu.TryLock() {
		s.log.WithFields(logrus.Fields{
			"job":     j.name,
			"trigger": trigger,
		}).Warn("previous run still in flight, skipping tick")
		return
	}
	defer j.mu.Unlock()

	log := s.log.WithFields(logrus.Fields{
		"job":     j.name,
		"run_id":  uuid.NewString(),
		"trigger": trigger,
	})
	log.Info("sync run started")
	start := time.Now()
	if err := j.run(ctx); err != nil {
		log.WithError(err).WithField("duration_ms", time.Since(start).Milliseconds()).Error("sync run failed")
		return
	}
	log.WithField("duration_ms", time.Since(start).Milliseconds()).Info("sync run completed")
}

// SetInterval atomically swaps a job's period. The run in flight, if any,
// and the tick already scheduled are unaffected; the following tick uses the
// new period.
func (s *Scheduler) SetInterval(name string, every time.Duration) error {
	if every <= 0 {
		return ErrInvalidInterval
	}
	j, ok := s.lookup(name)
	if !ok {
		return ErrUnknownJob
	}
	j.intervalNs.Store(int64(every))
	s.log.WithFields(logrus.Fields{
		"job":      name,
		"interval": every.String(),
	}).Info("job interval reconfigured")
	return nil
}

// Interval reports a job's current period.
func (s *Scheduler) Interval(name string) (time.Duration, bool) {
	j, ok := s.lookup(name)
	if !ok {
		return 0, false
	}
	return j.interval(), true
}

// RunNow executes run (or the job's registered function when run is nil)
// under the job's lock, blocking until any in-flight run finishes first. A
// scheduled tick arriving meanwhile is skipped, so at most one run per job is
// ever executing.
func (s *Scheduler) RunNow(ctx context.Context, name string, run RunFunc) error {
	j, ok := s.lookup(name)
	if !ok {
		return ErrUnknownJob
	}
	if run == nil {
		run = j.run
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return run(ctx)
}

// Stop halts the scheduling loops and waits for in-flight runs to complete.
// Runs are never pre-empted mid-flight.
func (s *Scheduler) Stop() {
	close(s.stop)
	s.wg.Wait()
}

func (s *Scheduler) lookup(name string) (*job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[name]
	return j, ok
}
