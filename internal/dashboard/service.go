// Package dashboard computes the cross-entity task metrics shown on the
// dashboard and serves them through a cache-aside read path.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nadmax/tasktracker/internal/employee"
	"github.com/nadmax/tasktracker/internal/metrics"
	"github.com/nadmax/tasktracker/internal/task"
	"golang.org/x/sync/errgroup"
)

const DefaultTTL = 30 * time.Second

// Source reads the full task and employee record sets.
type Source interface {
	ListTasks(ctx context.Context) ([]*task.Task, error)
	ListEmployees(ctx context.Context) ([]*employee.Employee, error)
}

// Cache holds the last computed Snapshot under a single key. Get reports a
// miss with ok == false and a nil error.
type Cache interface {
	Get(ctx context.Context) (snapshot *Snapshot, ok bool, err error)
	Put(ctx context.Context, snapshot *Snapshot, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type Service struct {
	source Source
	cache  Cache
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Service)

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(source Source, cache Cache, opts ...Option) *Service {
	s := &Service{
		source: source,
		cache:  cache,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With(slog.String("component", "dashboard"))
	return s
}

// GetMetrics returns the cached Snapshot when one is present, otherwise it
// recomputes every statistic, caches the result for the configured TTL and
// returns it. A failed computation returns an error and never a partial Snapshot.
func (s *Service) GetMetrics(ctx context.Context) (*Snapshot, error) {
	cached, ok, err := s.cache.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics cache: %w", err)
	}

	if ok {
		metrics.RecordCacheHit()
		s.logger.Debug("Dashboard metrics served from cache", "computed_at", cached.ComputedAt)
		return cached, nil
	}

	metrics.RecordCacheMiss()

	start := time.Now()
	snapshot, err := s.compute(ctx)
	metrics.RecordDashboardCompute(time.Since(start), err)
	if err != nil {
		s.logger.Error("Error computing dashboard metrics", "error", err)
		return nil, err
	}

	if err := s.cache.Put(ctx, snapshot, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store metrics snapshot: %w", err)
	}

	s.logger.Info("Dashboard metrics computed",
		"total_tasks", snapshot.TotalTaskCount,
		"employees", snapshot.EmployeeCount,
		"duration", time.Since(start))

	return snapshot, nil
}

// Invalidate drops the cached Snapshot so the next GetMetrics recomputes.
// Task writers call it after every successful create, update or delete.
func (s *Service) Invalidate(ctx context.Context) error {
	if err := s.cache.Invalidate(ctx); err != nil {
		return fmt.Errorf("failed to invalidate metrics cache: %w", err)
	}

	metrics.RecordCacheInvalidation()
	s.logger.Debug("Dashboard metrics invalidated")
	return nil
}

func (s *Service) compute(ctx context.Context) (*Snapshot, error) {
	now := s.now()
	g, ctx := errgroup.WithContext(ctx)
	records := newRecordSet(ctx, s.source)

	snapshot := &Snapshot{ComputedAt: now}

	withTasks := func(fn func([]*task.Task)) func() error {
		return func() error {
			tasks, err := records.tasks()
			if err != nil {
				return err
			}

			fn(tasks)
			return nil
		}
	}

	g.Go(withTasks(func(tasks []*task.Task) {
		snapshot.StatusCounts = CountByStatus(tasks)
	}))
	g.Go(withTasks(func(tasks []*task.Task) {
		snapshot.PriorityCounts = CountByPriority(tasks)
	}))
	g.Go(withTasks(func(tasks []*task.Task) {
		snapshot.OverdueTaskCount = CountOverdue(tasks, now)
	}))
	g.Go(withTasks(func(tasks []*task.Task) {
		snapshot.AverageCompletionTime = AverageCompletion(tasks)
	}))
	g.Go(withTasks(func(tasks []*task.Task) {
		snapshot.TotalTaskCount = CountTasks(tasks)
	}))
	g.Go(func() error {
		employees, err := records.employees()
		if err != nil {
			return err
		}

		snapshot.EmployeeCount = CountEmployees(employees)
		return nil
	})
	g.Go(func() error {
		tasks, err := records.tasks()
		if err != nil {
			return err
		}

		employees, err := records.employees()
		if err != nil {
			return err
		}

		snapshot.TasksByEmployee = SummarizeByEmployee(tasks, employees)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot.CompletedTaskCount = snapshot.StatusCounts.Completed
	snapshot.CompletionRate = CompletionRate(snapshot.StatusCounts)
	snapshot.AvgCompletionTime = snapshot.AverageCompletionTime.Formatted

	return snapshot, nil
}

// recordSet loads each record set at most once per computation pass so that
// every statistic in one Snapshot is derived from the same records.
type recordSet struct {
	tasks     func() ([]*task.Task, error)
	employees func() ([]*employee.Employee, error)
}

func newRecordSet(ctx context.Context, source Source) *recordSet {
	return &recordSet{
		tasks: sync.OnceValues(func() ([]*task.Task, error) {
			tasks, err := source.ListTasks(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to load tasks: %w", err)
			}
			return tasks, nil
		}),
		employees: sync.OnceValues(func() ([]*employee.Employee, error) {
			employees, err := source.ListEmployees(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to load employees: %w", err)
			}
			return employees, nil
		}),
	}
}
