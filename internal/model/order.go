package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money goes over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

const DefaultETAMinutes = 30

type OrderStatus string

const (
	StatusPlaced         OrderStatus = "PLACED"
	StatusConfirmed      OrderStatus = "CONFIRMED"
	StatusPreparing      OrderStatus = "PREPARING"
	StatusPickedUp       OrderStatus = "PICKED_UP"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

var orderStatuses = []OrderStatus{
	StatusPlaced,
	StatusConfirmed,
	StatusPreparing,
	StatusPickedUp,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, known := range orderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is accepted from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentCard   PaymentMethod = "CARD"
	PaymentUPI    PaymentMethod = "UPI"
	PaymentWallet PaymentMethod = "WALLET"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentCard, PaymentUPI, PaymentWallet:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

type OrderItem struct {
	ID             string          `json:"id,omitempty"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Qty            int             `json:"qty"`
	RestaurantID   string          `json:"restaurantId,omitempty"`
	RestaurantName string          `json:"restaurantName,omitempty"`
}

type DeliveryAddress struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode"`
}

type Payment struct {
	Method        PaymentMethod `json:"method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transactionId,omitempty"`
}

type Order struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"userId"`
	UserEmail          string          `json:"userEmail"`
	RestaurantID       string          `json:"restaurantId"`
	RestaurantName     string          `json:"restaurantName"`
	Items              []OrderItem     `json:"items"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	Discount           decimal.Decimal `json:"discount"`
	DeliveryFee        decimal.Decimal `json:"deliveryFee"`
	Total              decimal.Decimal `json:"total"`
	Status             OrderStatus     `json:"status"`
	ETA                int             `json:"eta"`
	DeliveryAddress    DeliveryAddress `json:"deliveryAddress"`
	Payment            Payment         `json:"payment"`
	PlacedAt           time.Time       `json:"placedAt"`
	DeliveredAt        *time.Time      `json:"deliveredAt,omitempty"`
	CancelledAt        *time.Time      `json:"cancelledAt,omitempty"`
	CancellationReason string          `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// DurationMinutes is the rounded time from placement to delivery, or nil
// while the order is undelivered.
func (o Order) DurationMinutes() *int {
	if o.DeliveredAt == nil {
		return nil
	}
	minutes := int(o.DeliveredAt.Sub(o.PlacedAt).Round(time.Minute) / time.Minute)
	return &minutes
}

func (o Order) MarshalJSON() ([]byte, error) {
	type Alias Order
	return json.Marshal(&struct {
		Duration *int `json:"duration,omitempty"`
		*Alias
	}{
		Duration: o.DurationMinutes(),
		Alias:    (*Alias)(&o),
	})
}

// SubtotalOf sums price × qty over items.
func SubtotalOf(items []OrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	return sum
}

// CreateOrderRequest is the caller's view of a new order. Status and Payment
// are accepted on the wire but never trusted.
type CreateOrderRequest struct {
	RestaurantID    string           `json:"restaurantId"`
	RestaurantName  string           `json:"restaurantName"`
	Items           []OrderItem      `json:"items"`
	Subtotal        *decimal.Decimal `json:"subtotal,omitempty"`
	Discount        decimal.Decimal  `json:"discount"`
	DeliveryFee     decimal.Decimal  `json:"deliveryFee"`
	Total           decimal.Decimal  `json:"total"`
	ETA             *int             `json:"eta,omitempty"`
	DeliveryAddress DeliveryAddress  `json:"deliveryAddress"`
	PaymentMethod   PaymentMethod    `json:"paymentMethod,omitempty"`
	Status          OrderStatus      `json:"status,omitempty"`
	Payment         *Payment         `json:"payment,omitempty"`
}

// MaxAmount is the largest money value an order can store. Amounts are kept
// with two decimal places.
var MaxAmount = decimal.RequireFromString("9999999999.99")

func (e *ValidationError) checkAmount(field, label string, d decimal.Decimal) {
	switch {
	case !d.Equal(d.Round(2)):
		e.add(field, label+" must have at most 2 decimal places")
	case d.Abs().GreaterThan(MaxAmount):
		e.add(field, label+" must not exceed "+MaxAmount.StringFixed(2))
	}
}

func (r CreateOrderRequest) Validate() error {
	v := &ValidationError{}

	if strings.TrimSpace(r.RestaurantID) == "" {
		v.add("restaurantId", "restaurant ID is required")
	}
	if strings.TrimSpace(r.RestaurantName) == "" {
		v.add("restaurantName", "restaurant name is required")
	}
	if len(r.Items) == 0 {
		v.add("items", "at least one item is required")
	}
	for i, item := range r.Items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.Name) == "" {
			v.add(field+".name", "item name is required")
		}
		if item.Price.IsNegative() {
			v.add(field+".price", "item price must not be negative")
		} else {
			v.checkAmount(field+".price", "item price", item.Price)
		}
		if item.Qty < 1 {
			v.add(field+".qty", "item quantity must be at least 1")
		}
	}
	switch {
	case r.Subtotal != nil && r.Subtotal.IsNegative():
		v.add("subtotal", "subtotal must not be negative")
	case r.Subtotal != nil && !r.Subtotal.IsZero():
		v.checkAmount("subtotal", "subtotal", *r.Subtotal)
	case SubtotalOf(r.Items).GreaterThan(MaxAmount):
		v.add("subtotal", "items add up to more than "+MaxAmount.StringFixed(2))
	}
	if r.Discount.IsNegative() {
		v.add("discount", "discount must not be negative")
	} else {
		v.checkAmount("discount", "discount", r.Discount)
	}
	if r.DeliveryFee.IsNegative() {
		v.add("deliveryFee", "delivery fee must not be negative")
	} else {
		v.checkAmount("deliveryFee", "delivery fee", r.DeliveryFee)
	}
	if !r.Total.IsPositive() {
		v.add("total", "total must be a positive number")
	} else {
		v.checkAmount("total", "total", r.Total)
	}
	if r.ETA != nil && *r.ETA < 0 {
		v.add("eta", "eta must not be negative")
	}
	if r.PaymentMethod != "" && !r.PaymentMethod.Valid() {
		v.add("paymentMethod", "payment method must be one of COD, CARD, UPI, WALLET")
	}
	if strings.TrimSpace(r.DeliveryAddress.Line1) == "" {
		v.add("deliveryAddress.line1", "address line is required")
	}
	if strings.TrimSpace(r.DeliveryAddress.City) == "" {
		v.add("deliveryAddress.city", "city is required")
	}
	if strings.TrimSpace(r.DeliveryAddress.Pincode) == "" {
		v.add("deliveryAddress.pincode", "pincode is required")
	}

	return v.orNil()
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

type OrderFilter struct {
	Status OrderStatus
	Limit  int
	Skip   int
}

// Normalize applies the listing defaults and bounds.
func (f OrderFilter) Normalize() OrderFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
	return f
}

type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Skip    int  `json:"skip"`
	HasMore bool `json:"hasMore"`
}

type OrderPage struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

type StatusStat struct {
	Status      OrderStatus     `json:"status"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type OrderStats struct {
	TotalOrders int             `json:"totalOrders"`
	TotalSpent  decimal.Decimal `json:"totalSpent"`
	ByStatus    []StatusStat    `json:"byStatus"`
}

type DeliveryAssignment struct {
	OrderID         string          `json:"orderId"`
	RestaurantID    string          `json:"restaurantId"`
	DeliveryAddress DeliveryAddress `json:"deliveryAddress"`
}
