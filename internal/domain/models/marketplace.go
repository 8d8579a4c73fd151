package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates the order lifecycle states exposed by the API.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

// Order is the single canonical order shape shared by customer, vendor and admin surfaces.
type Order struct {
	ID                 string          `json:"id"`
	OrderNumber        string          `json:"orderNumber"`
	CustomerID         string          `json:"customerId"`
	VendorIDs          []string        `json:"vendorIds,omitempty"`
	Items              []OrderItem     `json:"items"`
	ShippingAddress    *Address        `json:"shippingAddress,omitempty"`
	BillingAddress     *Address        `json:"billingAddress,omitempty"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	ShippingCost       decimal.Decimal `json:"shippingCost"`
	TaxAmount          decimal.Decimal `json:"taxAmount"`
	DiscountAmount     decimal.Decimal `json:"discountAmount"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	Currency           string          `json:"currency,omitempty"`
	Status             OrderStatus     `json:"status"`
	PaymentMethod      string          `json:"paymentMethod,omitempty"`
	PaymentStatus      string          `json:"paymentStatus,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	CouponCode         string          `json:"couponCode,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
	DeliveredAt        *time.Time      `json:"deliveredAt,omitempty"`
	CancelledAt        *time.Time      `json:"cancelledAt,omitempty"`
	CancellationReason string          `json:"cancellationReason,omitempty"`
}

// OrderItem is one product line of an Order.
type OrderItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	VariantID   string          `json:"variantId,omitempty"`
	VendorID    string          `json:"vendorId"`
	SKU         string          `json:"sku"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

// LineTotal returns quantity times unit price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Reorderable reports whether the order may be placed again from the quick-reorder screen.
func (o Order) Reorderable() bool {
	return o.Status == OrderDelivered && len(o.Items) > 0
}

// Address is a postal address used for shipping and billing.
type Address struct {
	FullName   string `json:"fullName"`
	Line1      string `json:"addressLine1"`
	Line2      string `json:"addressLine2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// CartItem is one line of the shopping cart.
type CartItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	VariantID   string          `json:"variantId,omitempty"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// AlertStatus enumerates inventory alert states.
type AlertStatus string

const (
	AlertActive       AlertStatus = "active"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertResolved     AlertStatus = "resolved"
	AlertDismissed    AlertStatus = "dismissed"
)

// StockAlert is an inventory alert raised for a vendor product.
type StockAlert struct {
	ID                string      `json:"id"`
	ProductID         string      `json:"productId"`
	ProductName       string      `json:"productName"`
	ProductSKU        string      `json:"productSku"`
	AlertType         string      `json:"alertType"`
	Severity          string      `json:"severity"`
	Status            AlertStatus `json:"status"`
	CurrentStock      int         `json:"currentStock"`
	Threshold         int         `json:"threshold"`
	RecommendedAction string      `json:"recommendedAction,omitempty"`
	Message           string      `json:"message,omitempty"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
	AcknowledgedAt    *time.Time  `json:"acknowledgedAt,omitempty"`
}

// PriceAlert notifies a customer when a product price reaches a target.
type PriceAlert struct {
	ID                  string          `json:"id"`
	ProductID           string          `json:"productId"`
	ProductName         string          `json:"productName"`
	CurrentPrice        decimal.Decimal `json:"currentPrice"`
	TargetPrice         decimal.Decimal `json:"targetPrice"`
	AlertType           string          `json:"alertType"`
	Status              string          `json:"status"`
	NotificationEnabled bool            `json:"isNotificationEnabled"`
	CreatedAt           time.Time       `json:"createdAt"`
	TriggeredAt         *time.Time      `json:"triggeredAt,omitempty"`
}

// RFQ is a Request For Quote raised by a customer.
type RFQ struct {
	ID          string          `json:"id"`
	RFQNumber   string          `json:"rfqNumber"`
	CustomerID  string          `json:"customerId"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	Budget      decimal.Decimal `json:"budget"`
	Status      string          `json:"status"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Quotation is a vendor's answer to an RFQ.
type Quotation struct {
	ID              string          `json:"id"`
	RFQID           string          `json:"rfqId"`
	VendorID        string          `json:"vendorId"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	Notes           string          `json:"notes,omitempty"`
	ValidityDays    int             `json:"validityDays,omitempty"`
	Status          string          `json:"status"`
	ExpiresAt       *time.Time      `json:"expiresAt,omitempty"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
}
