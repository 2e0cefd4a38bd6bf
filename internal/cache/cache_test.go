package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nadmax/tasktracker/internal/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) (*MetricsCache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)

	return NewMetricsCache(client), mr
}

func sampleSnapshot() *dashboard.Snapshot {
	return &dashboard.Snapshot{
		EmployeeCount:      2,
		TotalTaskCount:     3,
		CompletedTaskCount: 1,
		CompletionRate:     33,
		StatusCounts:       dashboard.StatusCounts{Todo: 1, InProgress: 1, Completed: 1},
		PriorityCounts:     dashboard.PriorityCounts{Low: 1, Medium: 1, High: 1},
		TasksByEmployee: []dashboard.EmployeeTaskSummary{
			{EmployeeID: "emp-1", EmployeeName: "Ada", EmployeeEmail: "ada@example.com", TaskCount: 1, InProgress: 1},
		},
		OverdueTaskCount:  1,
		AvgCompletionTime: dashboard.NumericLabel(2.5),
		AverageCompletionTime: dashboard.CompletionTime{
			Hours:     60,
			Days:      2.5,
			Formatted: dashboard.NumericLabel(2.5),
		},
		ComputedAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewRedisClient_InvalidAddress(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "invalid:99999", "", 0)
	assert.Error(t, err)
}

func TestGet_EmptyCacheIsMiss(t *testing.T) {
	c, mr := setupTestCache(t)
	defer mr.Close()
	defer func() { _ = c.Close() }()

	snapshot, ok, err := c.Get(context.Background())

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, snapshot)
}

func TestPutAndGet(t *testing.T) {
	c, mr := setupTestCache(t)
	defer mr.Close()
	defer func() { _ = c.Close() }()

	ctx := context.Background()
	original := sampleSnapshot()
	require.NoError(t, c.Put(ctx, original, 30*time.Second))

	assert.True(t, mr.Exists(MetricsKey))
	assert.Equal(t, 30*time.Second, mr.TTL(MetricsKey))

	restored, ok, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, original, restored)
	assert.NotSame(t, original, restored)
}

func TestPut_OverwritesExistingEntry(t *testing.T) {
	c, mr := setupTestCache(t)
	defer mr.Close()
	defer func() { _ = c.Close() }()

	ctx := context.Background()
	first := sampleSnapshot()
	second := sampleSnapshot()
	second.TotalTaskCount = 7

	require.NoError(t, c.Put(ctx, first, 30*time.Second))
	require.NoError(t, c.Put(ctx, second, 30*time.Second))

	restored, ok, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7, restored.TotalTaskCount)
}

func TestPut_RejectsNonPositiveTTL(t *testing.T) {
	c, mr := setupTestCache(t)
	defer mr.Close()
	defer func() { _ = c.Close() }()

	err := c.Put(context.Background(), sampleSnapshot(), 0)

	assert.Error(t, err)
	assert.False(t, mr.Exists(MetricsKey))
}

func TestTTLExpiry(t *testing.T) {
	c, mr := setupTestCache(t)
	defer mr.Close()
	defer func() { _ = c.Close() }()

	ctx := context.Background()
	original := sampleSnapshot()
	require.NoError(t, c.Put(ctx, original, 30*time.Second))

	mr.FastForward(29 * time.Second)

	restored, ok, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok, "snapshot should still be cached at T+29s")
	assert.Equal(t, original, restored)

	mr.FastForward(2 * time.Second)

	restored, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "snapshot should have expired at T+31s")
	assert.Nil(t, restored)
}

func TestInvalidate(t *testing.T) {
	c, mr := setupTestCache(t)
	defer mr.Close()
	defer func() { _ = c.Close() }()

	ctx := context.Background()
	require.NoError(t, c.Put(ctx, sampleSnapshot(), 30*time.Second))

	require.NoError(t, c.Invalidate(ctx))

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(MetricsKey))
}

func TestInvalidate_EmptyCacheIsNoop(t *testing.T) {
	c, mr := setupTestCache(t)
	defer mr.Close()
	defer func() { _ = c.Close() }()

	ctx := context.Background()

	assert.NoError(t, c.Invalidate(ctx))
	assert.NoError(t, c.Invalidate(ctx))
}

func TestGet_UndecodableEntryIsMiss(t *testing.T) {
	c, mr := setupTestCache(t)
	defer mr.Close()
	defer func() { _ = c.Close() }()

	require.NoError(t, mr.Set(MetricsKey, "{not json"))

	snapshot, ok, err := c.Get(context.Background())

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, snapshot)
}

func TestGet_StoreUnavailable(t *testing.T) {
	c, mr := setupTestCache(t)
	defer func() { _ = c.Close() }()

	mr.Close()

	_, _, err := c.Get(context.Background())
	assert.Error(t, err)

	assert.Error(t, c.Invalidate(context.Background()))
}

func TestPing(t *testing.T) {
	c, mr := setupTestCache(t)
	defer mr.Close()
	defer func() { _ = c.Close() }()

	assert.NoError(t, c.Ping(context.Background()))
}
