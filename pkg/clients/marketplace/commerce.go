package marketplace

import (
	"context"
	"net/http"
	"net/url"

	"github.com/groow/smoke/internal/domain/models"
)

// InventoryAlertsAPI wraps /inventory/alerts.
type InventoryAlertsAPI struct {
	c *Client
}

// InventoryAlerts returns the inventory alerts module.
func (c *Client) InventoryAlerts() *InventoryAlertsAPI {
	return &InventoryAlertsAPI{c: c}
}

// List returns the vendor's stock alerts, filtered by status when it is set.
func (a *InventoryAlertsAPI) List(ctx context.Context, status string) ([]models.StockAlert, error) {
	query := map[string]string{}
	if status != "" {
		query["status"] = status
	}
	var out []models.StockAlert
	err := a.c.call(ctx, http.MethodGet, "/inventory/alerts", query, nil, &out)
	return out, err
}

// Acknowledge marks an alert as seen.
func (a *InventoryAlertsAPI) Acknowledge(ctx context.Context, id, reason string) error {
	return a.c.call(ctx, http.MethodPost, "/inventory/alerts/"+url.PathEscape(id)+"/acknowledge", nil, map[string]string{"reason": reason}, nil)
}

// Resolve closes an alert with a resolution note.
func (a *InventoryAlertsAPI) Resolve(ctx context.Context, id, resolution string) error {
	return a.c.call(ctx, http.MethodPost, "/inventory/alerts/"+url.PathEscape(id)+"/resolve", nil, map[string]string{"resolution": resolution}, nil)
}

// Dismiss removes an alert.
func (a *InventoryAlertsAPI) Dismiss(ctx context.Context, id, reason string) error {
	return a.c.call(ctx, http.MethodPost, "/inventory/alerts/"+url.PathEscape(id)+"/dismiss", nil, map[string]string{"reason": reason}, nil)
}

// CartAPI wraps /cart.
type CartAPI struct {
	c *Client
}

// Cart returns the cart module.
func (c *Client) Cart() *CartAPI {
	return &CartAPI{c: c}
}

// AddToCartRequest is the body of POST /cart.
type AddToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	VariantID string `json:"variantId,omitempty"`
}

// Get returns the current cart lines.
func (a *CartAPI) Get(ctx context.Context) ([]models.CartItem, error) {
	var out struct {
		Items []models.CartItem `json:"items"`
	}
	err := a.c.call(ctx, http.MethodGet, "/cart", nil, nil, &out)
	return out.Items, err
}

// Add puts a product in the cart and returns the new line.
func (a *CartAPI) Add(ctx context.Context, req AddToCartRequest) (*models.CartItem, error) {
	var out models.CartItem
	if err := a.c.call(ctx, http.MethodPost, "/cart", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateQuantity sets the quantity of one cart line.
func (a *CartAPI) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	return a.c.call(ctx, http.MethodPatch, "/cart/"+url.PathEscape(itemID), nil, map[string]int{"quantity": quantity}, nil)
}

// Remove deletes one cart line.
func (a *CartAPI) Remove(ctx context.Context, itemID string) error {
	return a.c.call(ctx, http.MethodDelete, "/cart/"+url.PathEscape(itemID), nil, nil, nil)
}

// Clear empties the cart.
func (a *CartAPI) Clear(ctx context.Context) error {
	return a.c.call(ctx, http.MethodDelete, "/cart", nil, nil, nil)
}

// OrdersAPI wraps /orders.
type OrdersAPI struct {
	c *Client
}

// Orders returns the orders module.
func (c *Client) Orders() *OrdersAPI {
	return &OrdersAPI{c: c}
}

// List returns one page of the caller's orders.
func (a *OrdersAPI) List(ctx context.Context, page, limit int, status models.OrderStatus) (models.Page[models.Order], error) {
	query := pageQuery(page, limit)
	if status != "" {
		query["status"] = string(status)
	}
	var out models.Page[models.Order]
	err := a.c.call(ctx, http.MethodGet, "/orders", query, nil, &out)
	return out, err
}

// Get fetches one order with its lines.
func (a *OrdersAPI) Get(ctx context.Context, id string) (*models.Order, error) {
	var out models.Order
	if err := a.c.call(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Cancel cancels an order that has not shipped.
func (a *OrdersAPI) Cancel(ctx context.Context, id, reason string) error {
	return a.c.call(ctx, http.MethodPatch, "/orders/"+url.PathEscape(id)+"/cancel", nil, map[string]string{"reason": reason}, nil)
}
