package dashboard

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/nadmax/tasktracker/internal/employee"
	"github.com/nadmax/tasktracker/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu                 sync.Mutex
	tasks              []*task.Task
	employees          []*employee.Employee
	listTasksCalls     int
	listEmployeesCalls int
	tasksErr           error
	employeesErr       error
}

func (f *fakeSource) ListTasks(ctx context.Context) ([]*task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listTasksCalls++
	if f.tasksErr != nil {
		return nil, f.tasksErr
	}

	return slices.Clone(f.tasks), nil
}

func (f *fakeSource) ListEmployees(ctx context.Context) ([]*employee.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listEmployeesCalls++
	if f.employeesErr != nil {
		return nil, f.employeesErr
	}

	return slices.Clone(f.employees), nil
}

func (f *fakeSource) removeTask(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tasks = slices.DeleteFunc(f.tasks, func(t *task.Task) bool { return t.ID == id })
}

func (f *fakeSource) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.listTasksCalls, f.listEmployeesCalls
}

type putCall struct {
	snapshot *Snapshot
	ttl      time.Duration
}

type fakeCache struct {
	mu              sync.Mutex
	stored          *Snapshot
	puts            []putCall
	invalidateCalls int
	getErr          error
	putErr          error
	invalidateErr   error
}

func (f *fakeCache) Get(ctx context.Context) (*Snapshot, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, false, f.getErr
	}
	if f.stored == nil {
		return nil, false, nil
	}

	return f.stored, true, nil
}

func (f *fakeCache) Put(ctx context.Context, snapshot *Snapshot, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.puts = append(f.puts, putCall{snapshot: snapshot, ttl: ttl})
	if f.putErr != nil {
		return f.putErr
	}

	f.stored = snapshot
	return nil
}

func (f *fakeCache) Invalidate(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.invalidateCalls++
	if f.invalidateErr != nil {
		return f.invalidateErr
	}

	f.stored = nil
	return nil
}

func setupTestService(t *testing.T, opts ...Option) (*Service, *fakeSource, *fakeCache) {
	t.Helper()

	tasks, employees := scenarioRecords()
	source := &fakeSource{tasks: tasks, employees: employees}
	cache := &fakeCache{}

	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewService(source, cache, opts...), source, cache
}

func TestGetMetrics_ComputesOnMiss(t *testing.T) {
	svc, source, cache := setupTestService(t)

	snapshot, err := svc.GetMetrics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, snapshot.EmployeeCount)
	assert.Equal(t, 3, snapshot.TotalTaskCount)
	assert.Equal(t, 1, snapshot.CompletedTaskCount)
	assert.Equal(t, 33, snapshot.CompletionRate)
	assert.Equal(t, StatusCounts{Todo: 1, InProgress: 1, Completed: 1}, snapshot.StatusCounts)
	assert.Equal(t, PriorityCounts{Low: 1, Medium: 1, High: 1}, snapshot.PriorityCounts)
	assert.Equal(t, 1, snapshot.OverdueTaskCount)
	assert.Len(t, snapshot.TasksByEmployee, 2)
	assert.Equal(t, "1.5", snapshot.AvgCompletionTime.String())
	assert.Equal(t, snapshot.AverageCompletionTime.Formatted, snapshot.AvgCompletionTime)
	assert.Equal(t, testNow, snapshot.ComputedAt)
	assert.Equal(t, snapshot.TotalTaskCount, snapshot.StatusCounts.Total())

	taskCalls, employeeCalls := source.calls()
	assert.Equal(t, 1, taskCalls)
	assert.Equal(t, 1, employeeCalls)

	require.Len(t, cache.puts, 1)
	assert.Same(t, snapshot, cache.puts[0].snapshot)
	assert.Equal(t, DefaultTTL, cache.puts[0].ttl)
}

func TestGetMetrics_HitSkipsRecompute(t *testing.T) {
	svc, source, cache := setupTestService(t)
	ctx := context.Background()

	first, err := svc.GetMetrics(ctx)
	require.NoError(t, err)

	second, err := svc.GetMetrics(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	taskCalls, employeeCalls := source.calls()
	assert.Equal(t, 1, taskCalls)
	assert.Equal(t, 1, employeeCalls)
	assert.Len(t, cache.puts, 1)
}

func TestGetMetrics_WithTTL(t *testing.T) {
	svc, _, cache := setupTestService(t, WithTTL(time.Minute))

	_, err := svc.GetMetrics(context.Background())
	require.NoError(t, err)

	require.Len(t, cache.puts, 1)
	assert.Equal(t, time.Minute, cache.puts[0].ttl)
}

func TestGetMetrics_IgnoresNonPositiveTTL(t *testing.T) {
	svc, _, cache := setupTestService(t, WithTTL(0))

	_, err := svc.GetMetrics(context.Background())
	require.NoError(t, err)

	require.Len(t, cache.puts, 1)
	assert.Equal(t, DefaultTTL, cache.puts[0].ttl)
}

func TestGetMetrics_EmptyStore(t *testing.T) {
	source := &fakeSource{}
	svc := NewService(source, &fakeCache{}, WithClock(func() time.Time { return testNow }))

	snapshot, err := svc.GetMetrics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, snapshot.TotalTaskCount)
	assert.Equal(t, 0, snapshot.CompletionRate)
	assert.Equal(t, StatusCounts{}, snapshot.StatusCounts)
	assert.NotNil(t, snapshot.TasksByEmployee)
	assert.Empty(t, snapshot.TasksByEmployee)
	assert.Equal(t, "N/A", snapshot.AvgCompletionTime.String())
}

func TestGetMetrics_SourceFailure(t *testing.T) {
	tests := []struct {
		name   string
		source *fakeSource
		want   string
	}{
		{
			name:   "tasks unavailable",
			source: &fakeSource{tasksErr: errors.New("connection refused")},
			want:   "failed to load tasks",
		},
		{
			name:   "employees unavailable",
			source: &fakeSource{employeesErr: errors.New("connection refused")},
			want:   "failed to load employees",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := &fakeCache{}
			svc := NewService(tt.source, cache)

			snapshot, err := svc.GetMetrics(context.Background())

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Nil(t, snapshot)
			assert.Empty(t, cache.puts)
		})
	}
}

func TestGetMetrics_CacheReadFailure(t *testing.T) {
	svc, source, cache := setupTestService(t)
	cache.getErr = errors.New("redis: connection refused")

	snapshot, err := svc.GetMetrics(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read metrics cache")
	assert.Nil(t, snapshot)

	taskCalls, _ := source.calls()
	assert.Equal(t, 0, taskCalls)
}

func TestGetMetrics_CacheWriteFailure(t *testing.T) {
	svc, _, cache := setupTestService(t)
	cache.putErr = errors.New("redis: OOM")

	snapshot, err := svc.GetMetrics(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store metrics snapshot")
	assert.Nil(t, snapshot)
}

func TestInvalidate_ForcesRecompute(t *testing.T) {
	svc, source, cache := setupTestService(t)
	ctx := context.Background()

	before, err := svc.GetMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, before.TotalTaskCount)

	source.removeTask("task-2")
	require.NoError(t, svc.Invalidate(ctx))

	after, err := svc.GetMetrics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, after.TotalTaskCount)
	assert.Equal(t, StatusCounts{Todo: 1, Completed: 1}, after.StatusCounts)
	assert.Equal(t, 50, after.CompletionRate)
	assert.Len(t, after.TasksByEmployee, 1)
	assert.Equal(t, 1, cache.invalidateCalls)

	taskCalls, _ := source.calls()
	assert.Equal(t, 2, taskCalls)
}

func TestGetMetrics_StaleWithoutInvalidate(t *testing.T) {
	svc, source, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.GetMetrics(ctx)
	require.NoError(t, err)

	source.removeTask("task-2")

	snapshot, err := svc.GetMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, snapshot.TotalTaskCount)
}

func TestInvalidate_Idempotent(t *testing.T) {
	svc, _, cache := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Invalidate(ctx))
	require.NoError(t, svc.Invalidate(ctx))

	assert.Equal(t, 2, cache.invalidateCalls)
}

func TestInvalidate_Failure(t *testing.T) {
	svc, _, cache := setupTestService(t)
	cache.invalidateErr = errors.New("redis: connection refused")

	err := svc.Invalidate(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to invalidate metrics cache")
}

func TestGetMetrics_ConcurrentReaders(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			snapshot, err := svc.GetMetrics(ctx)
			if err != nil {
				errs <- err
				return
			}
			if snapshot.StatusCounts.Total() != snapshot.TotalTaskCount {
				errs <- errors.New("status counts do not add up to total tasks")
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}
