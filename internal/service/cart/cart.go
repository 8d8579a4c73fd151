package cart

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/groow/smoke/internal/domain/models"
	"github.com/groow/smoke/internal/service/svcerr"
	"github.com/groow/smoke/pkg/clients/marketplace"
)

// ErrNotReorderable is returned for orders that are not delivered or have no items.
var ErrNotReorderable = errors.New("order cannot be reordered")

// CartAPI is the subset of the cart client used here.
type CartAPI interface {
	Get(ctx context.Context) ([]models.CartItem, error)
	Add(ctx context.Context, req marketplace.AddToCartRequest) (*models.CartItem, error)
	Remove(ctx context.Context, itemID string) error
	Clear(ctx context.Context) error
}

// OrdersAPI fetches orders for quick reorder.
type OrdersAPI interface {
	Get(ctx context.Context, id string) (*models.Order, error)
}

// Cart mirrors the shopper's cart locally.
type Cart struct {
	cart   CartAPI
	orders OrdersAPI
	logger *zap.Logger

	mu    sync.RWMutex
	items []models.CartItem
}

// New builds an empty local cart.
func New(cartAPI CartAPI, orders OrdersAPI, logger *zap.Logger) *Cart {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cart{cart: cartAPI, orders: orders, logger: logger}
}

// Load fetches the remote cart.
func (c *Cart) Load(ctx context.Context) error {
	items, err := c.cart.Get(ctx)
	if err != nil {
		return svcerr.Wrap("Failed to load cart", err)
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return nil
}

// Items returns a copy of the local cart lines.
func (c *Cart) Items() []models.CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Total sums quantity times unit price over all lines.
func (c *Cart) Total() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Clear empties the cart. An already empty cart makes no API call.
func (c *Cart) Clear(ctx context.Context) error {
	c.mu.RLock()
	empty := len(c.items) == 0
	c.mu.RUnlock()
	if empty {
		return nil
	}

	if err := c.cart.Clear(ctx); err != nil {
		return svcerr.Wrap("Failed to clear cart", err)
	}
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
	return nil
}

// Remove deletes one line. Removing a line that is not in the cart is a no-op.
func (c *Cart) Remove(ctx context.Context, itemID string) error {
	c.mu.RLock()
	found := slices.ContainsFunc(c.items, func(it models.CartItem) bool { return it.ID == itemID })
	c.mu.RUnlock()
	if !found {
		return nil
	}

	if err := c.cart.Remove(ctx, itemID); err != nil {
		return svcerr.Wrap("Failed to remove item", err)
	}
	c.mu.Lock()
	c.items = slices.DeleteFunc(c.items, func(it models.CartItem) bool { return it.ID == itemID })
	c.mu.Unlock()
	return nil
}

// Reorder adds every line of a delivered order back to the cart and returns
// how many lines were added. Lines added before a failure stay in the cart.
func (c *Cart) Reorder(ctx context.Context, orderID string) (int, error) {
	order, err := c.orders.Get(ctx, orderID)
	if err != nil {
		return 0, svcerr.Wrap("Failed to load order", err)
	}
	if !order.Reorderable() {
		return 0, svcerr.Wrap("Only delivered orders can be reordered", ErrNotReorderable)
	}

	added := 0
	for _, line := range order.Items {
		item, err := c.cart.Add(ctx, marketplace.AddToCartRequest{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			VariantID: line.VariantID,
		})
		if err != nil {
			c.logger.Warn("reorder line failed", zap.String("order_id", orderID), zap.String("product_id", line.ProductID), zap.Error(err))
			return added, svcerr.Wrap("Failed to add some items to cart", err)
		}
		if item == nil {
			item = &models.CartItem{ProductID: line.ProductID, VariantID: line.VariantID, ProductName: line.ProductName, Quantity: line.Quantity, UnitPrice: line.UnitPrice}
		}

		c.mu.Lock()
		c.items = append(c.items, *item)
		c.mu.Unlock()
		added++
	}

	c.logger.Info("order reordered", zap.String("order_id", orderID), zap.Int("lines", added))
	return added, nil
}
