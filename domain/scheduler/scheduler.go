package scheduler

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/getcalls/website/pkg/logger"
)

// TaskFunc is a scheduled unit of work.
type TaskFunc func(ctx context.Context) error

// Scheduler runs named tasks on cron schedules or fixed intervals.
type Scheduler struct {
	cron    *cron.Cron
	log     *slog.Logger
	timeout time.Duration

	mu      sync.RWMutex
	tasks   map[string]cron.EntryID
	running bool
}

// NewScheduler creates a stopped scheduler. Overlapping runs of the same
// task are skipped.
func NewScheduler(log *slog.Logger) *Scheduler {
	log = log.With(logger.Scope("scheduler"))
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{log}),
		cron.SkipIfStillRunning(cronLogger{log}),
	))

	return &Scheduler{
		cron:    c,
		log:     log,
		timeout: 5 * time.Minute,
		tasks:   make(map[string]cron.EntryID),
	}
}

// Start begins running tasks.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	s.cron.Start()
	s.running = true
	s.log.Info("scheduler started", slog.Int("tasks", len(s.tasks)))
	return nil
}

// Stop waits for running tasks or ctx, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	select {
	case <-s.cron.Stop().Done():
		s.log.Info("scheduler stopped gracefully")
	case <-ctx.Done():
		s.log.Warn("scheduler stop timeout")
	}
	s.running = false
	return nil
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// AddCronTask adds a task with a standard 5-field cron expression.
func (s *Scheduler) AddCronTask(name, schedule string, task TaskFunc) error {
	return s.add(name, schedule, task)
}

// AddIntervalTask adds a task that runs every interval.
func (s *Scheduler) AddIntervalTask(name string, interval time.Duration, task TaskFunc) error {
	return s.add(name, "@every "+interval.String(), task)
}

// AddTask uses schedule when non-empty and interval otherwise.
func (s *Scheduler) AddTask(name, schedule string, interval time.Duration, task TaskFunc) error {
	if schedule != "" {
		return s.AddCronTask(name, schedule, task)
	}
	return s.AddIntervalTask(name, interval, task)
}

func (s *Scheduler) add(name, schedule string, task TaskFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.tasks[name]; ok {
		s.cron.Remove(id)
		delete(s.tasks, name)
	}

	id, err := s.cron.AddFunc(schedule, func() { s.RunNow(name, task) })
	if err != nil {
		return err
	}
	s.tasks[name] = id
	s.log.Info("added task", slog.String("name", name), slog.String("schedule", schedule))
	return nil
}

// RemoveTask removes a scheduled task.
func (s *Scheduler) RemoveTask(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.tasks[name]; ok {
		s.cron.Remove(id)
		delete(s.tasks, name)
		s.log.Info("removed task", slog.String("name", name))
	}
}

// RunNow executes task synchronously with the scheduler's timeout and
// logging. Cron entries call it; tests may too.
func (s *Scheduler) RunNow(name string, task TaskFunc) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := task(ctx); err != nil {
		s.log.Error("scheduled task failed",
			slog.String("name", name),
			logger.Error(err),
			slog.Duration("duration", time.Since(start)))
		return err
	}
	s.log.Debug("scheduled task completed",
		slog.String("name", name),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// ListTasks returns the sorted names of all scheduled tasks.
func (s *Scheduler) ListTasks() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TaskInfo describes a scheduled task.
type TaskInfo struct {
	Name    string    `json:"name"`
	NextRun time.Time `json:"next_run"`
	PrevRun time.Time `json:"prev_run,omitempty"`
}

// GetTaskInfo returns next/previous run times for every task.
func (s *Scheduler) GetTaskInfo() []TaskInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := make([]TaskInfo, 0, len(s.tasks))
	for name, id := range s.tasks {
		e := s.cron.Entry(id)
		info = append(info, TaskInfo{Name: name, NextRun: e.Next, PrevRun: e.Prev})
	}
	sort.Slice(info, func(i, j int) bool { return info[i].Name < info[j].Name })
	return info
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ log *slog.Logger }

func (l cronLogger) Info(msg string, kv ...any) {
	l.log.Debug(msg, kv...)
}

func (l cronLogger) Error(err error, msg string, kv ...any) {
	l.log.Error(msg, append([]any{logger.Error(err)}, kv...)...)
}
