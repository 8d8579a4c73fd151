package alerts

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/groow/smoke/internal/domain/models"
	"github.com/groow/smoke/internal/service/svcerr"
)

// API is the subset of the inventory alerts client the book needs.
type API interface {
	List(ctx context.Context, status string) ([]models.StockAlert, error)
	Acknowledge(ctx context.Context, id, reason string) error
	Resolve(ctx context.Context, id, resolution string) error
	Dismiss(ctx context.Context, id, reason string) error
}

// Book is a local copy of the vendor's stock alerts. Mutations call the API
// first and only touch local state on success; operations on ids that are no
// longer in the book are no-ops.
type Book struct {
	api    API
	logger *zap.Logger
	now    func() time.Time

	mu     sync.RWMutex
	alerts []models.StockAlert
}

// NewBook builds an empty book.
func NewBook(api API, logger *zap.Logger) *Book {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Book{api: api, logger: logger, now: time.Now}
}

// Load replaces the local alerts with the API's current list.
func (b *Book) Load(ctx context.Context) error {
	alerts, err := b.api.List(ctx, "")
	if err != nil {
		return svcerr.Wrap("Failed to load alerts", err)
	}

	b.mu.Lock()
	b.alerts = alerts
	b.mu.Unlock()

	b.logger.Debug("alerts loaded", zap.Int("count", len(alerts)))
	return nil
}

// Alerts returns a copy of the local alerts.
func (b *Book) Alerts() []models.StockAlert {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.alerts)
}

// Active returns alerts that still need attention.
func (b *Book) Active() []models.StockAlert {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []models.StockAlert
	for _, a := range b.alerts {
		if a.Status == models.AlertActive {
			out = append(out, a)
		}
	}
	return out
}

// Dismiss removes the alert remotely and then from the book.
func (b *Book) Dismiss(ctx context.Context, id string) error {
	if !b.has(id) {
		return nil
	}
	if err := b.api.Dismiss(ctx, id, ""); err != nil {
		return svcerr.Wrap("Failed to dismiss alert", err)
	}

	b.mu.Lock()
	b.alerts = slices.DeleteFunc(b.alerts, func(a models.StockAlert) bool { return a.ID == id })
	b.mu.Unlock()
	return nil
}

// Acknowledge marks the alert as seen. Already acknowledged alerts are left alone.
func (b *Book) Acknowledge(ctx context.Context, id, reason string) error {
	alert, ok := b.get(id)
	if !ok || alert.Status == models.AlertAcknowledged {
		return nil
	}
	if err := b.api.Acknowledge(ctx, id, reason); err != nil {
		return svcerr.Wrap("Failed to acknowledge alert", err)
	}

	now := b.now().UTC()
	b.update(id, func(a *models.StockAlert) {
		a.Status = models.AlertAcknowledged
		a.AcknowledgedAt = &now
		a.UpdatedAt = now
	})
	return nil
}

// Resolve closes the alert and keeps it in the book with resolved status.
func (b *Book) Resolve(ctx context.Context, id, resolution string) error {
	alert, ok := b.get(id)
	if !ok || alert.Status == models.AlertResolved {
		return nil
	}
	if err := b.api.Resolve(ctx, id, resolution); err != nil {
		return svcerr.Wrap("Failed to resolve alert", err)
	}

	now := b.now().UTC()
	b.update(id, func(a *models.StockAlert) {
		a.Status = models.AlertResolved
		a.UpdatedAt = now
	})
	return nil
}

func (b *Book) has(id string) bool {
	_, ok := b.get(id)
	return ok
}

func (b *Book) get(id string) (models.StockAlert, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, a := range b.alerts {
		if a.ID == id {
			return a, true
		}
	}
	return models.StockAlert{}, false
}

func (b *Book) update(id string, fn func(*models.StockAlert)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.alerts {
		if b.alerts[i].ID == id {
			fn(&b.alerts[i])
			return
		}
	}
}
