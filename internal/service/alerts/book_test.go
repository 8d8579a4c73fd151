package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groow/smoke/internal/domain/models"
	"github.com/groow/smoke/internal/service/svcerr"
)

type fakeAPI struct {
	alerts []models.StockAlert
	calls  []string
	err    error
}

func (f *fakeAPI) List(context.Context, string) ([]models.StockAlert, error) {
	f.calls = append(f.calls, "list")
	return f.alerts, f.err
}

func (f *fakeAPI) Acknowledge(_ context.Context, id, _ string) error {
	f.calls = append(f.calls, "ack:"+id)
	return f.err
}

func (f *fakeAPI) Resolve(_ context.Context, id, _ string) error {
	f.calls = append(f.calls, "resolve:"+id)
	return f.err
}

func (f *fakeAPI) Dismiss(_ context.Context, id, _ string) error {
	f.calls = append(f.calls, "dismiss:"+id)
	return f.err
}

func loadedBook(t *testing.T) (*Book, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{alerts: []models.StockAlert{
		{ID: "a1", Status: models.AlertActive},
		{ID: "a2", Status: models.AlertActive},
		{ID: "a3", Status: models.AlertAcknowledged},
	}}
	b := NewBook(api, nil)
	b.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	require.NoError(t, b.Load(context.Background()))
	return b, api
}

func TestBook_DismissIsIdempotent(t *testing.T) {
	b, api := loadedBook(t)
	ctx := context.Background()

	require.NoError(t, b.Dismiss(ctx, "a1"))
	require.NoError(t, b.Dismiss(ctx, "a1"))
	require.NoError(t, b.Dismiss(ctx, "missing"))

	assert.Equal(t, []string{"list", "dismiss:a1"}, api.calls)
	assert.Len(t, b.Alerts(), 2)
}

func TestBook_DismissFailureKeepsAlert(t *testing.T) {
	b, api := loadedBook(t)
	api.err = errors.New("network down")

	err := b.Dismiss(context.Background(), "a2")
	require.Error(t, err)
	assert.Equal(t, "Failed to dismiss alert", svcerr.Message(err))
	assert.Len(t, b.Alerts(), 3)
}

func TestBook_Acknowledge(t *testing.T) {
	b, api := loadedBook(t)
	ctx := context.Background()

	require.NoError(t, b.Acknowledge(ctx, "a1", "seen"))
	require.NoError(t, b.Acknowledge(ctx, "a3", "already"))

	assert.Equal(t, []string{"list", "ack:a1"}, api.calls)
	assert.Len(t, b.Active(), 1)

	var acked models.StockAlert
	for _, a := range b.Alerts() {
		if a.ID == "a1" {
			acked = a
		}
	}
	assert.Equal(t, models.AlertAcknowledged, acked.Status)
	require.NotNil(t, acked.AcknowledgedAt)
	assert.Equal(t, 2026, acked.AcknowledgedAt.Year())
}

func TestBook_Resolve(t *testing.T) {
	b, api := loadedBook(t)
	require.NoError(t, b.Resolve(context.Background(), "a2", "restocked"))
	require.NoError(t, b.Resolve(context.Background(), "a2", "restocked"))
	assert.Equal(t, []string{"list", "resolve:a2"}, api.calls)
}

func TestBook_LoadFailure(t *testing.T) {
	api := &fakeAPI{err: errors.New("boom")}
	err := NewBook(api, nil).Load(context.Background())
	assert.Equal(t, "Failed to load alerts", svcerr.Message(err))
}

func TestBook_AlertsReturnsCopy(t *testing.T) {
	b, _ := loadedBook(t)
	snapshot := b.Alerts()
	snapshot[0].Status = models.AlertDismissed
	assert.Equal(t, models.AlertActive, b.Alerts()[0].Status)
}
