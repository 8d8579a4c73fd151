package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groow/smoke/internal/domain/models"
	"github.com/groow/smoke/internal/repository/memory"
)

var now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	runs := []models.Summary{
		{RunID: "old-run", Timestamp: now.AddDate(0, 0, -30), TotalTests: 10, Passed: 0, Failed: 10},
		{RunID: "healthy-1", Timestamp: now.Add(-48 * time.Hour), TotalTests: 100, Passed: 100, Duration: 40 * time.Second},
		{RunID: "b7c9e2f1-broken", Timestamp: now.Add(-24 * time.Hour), TotalTests: 100, Passed: 80, Failed: 20, Duration: 20 * time.Second},
		{RunID: "cancelled", Timestamp: now.Add(-time.Hour), Skipped: 100},
	}
	for _, r := range runs {
		require.NoError(t, store.SaveRun(context.Background(), r))
	}
	return store
}

func newService(t *testing.T, lister RunLister) *Service {
	t.Helper()
	svc := NewService(lister, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func TestLastDays(t *testing.T) {
	svc := newService(t, seededStore(t))

	trend, err := svc.LastDays(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 3, trend.Runs)
	assert.Equal(t, 2, trend.Healthy, "the empty cancelled run counts as healthy")
	assert.Equal(t, 200, trend.Requests)
	assert.Equal(t, 180, trend.Passed)
	assert.InDelta(t, 90.0, trend.PassRate, 0.001)
	assert.Equal(t, 20*time.Second, trend.AvgDuration)
	assert.Equal(t, "b7c9e2f1-broken", trend.WorstRunID)
	assert.InDelta(t, 80.0, trend.WorstRate, 0.001)

	assert.Equal(t,
		"Smoke trend (2026-05-03-2026-05-10): 3 runs, 2 healthy. Pass rate 90.00% over 200 requests. Average duration 20.0s. Worst run b7c9e2f1 at 80.00%.",
		trend.String())
}

func TestCalculate_EmptyWindow(t *testing.T) {
	svc := newService(t, seededStore(t))

	trend, err := svc.Calculate(context.Background(), now.AddDate(1, 0, 0), now.AddDate(1, 0, 7))
	require.NoError(t, err)
	assert.Zero(t, trend.Runs)
	assert.Zero(t, trend.WorstRate)
	assert.Equal(t, "Smoke trend (2027-05-10-2027-05-17): no runs recorded.", trend.String())
}

func TestCalculate_AllHealthyOmitsWorst(t *testing.T) {
	svc := newService(t, seededStore(t))

	trend, err := svc.Calculate(context.Background(), now.Add(-72*time.Hour), now.Add(-47*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, trend.Runs)
	assert.NotContains(t, trend.String(), "Worst run")
}

type failingLister struct{}

func (failingLister) ListRuns(context.Context, int) ([]models.Summary, error) {
	return nil, errors.New("mongo down")
}

func TestCalculate_ListError(t *testing.T) {
	_, err := newService(t, failingLister{}).LastDays(context.Background(), 7)
	assert.ErrorContains(t, err, "mongo down")
}
