// Package orders records placed orders and implements checkout pricing and
// validation.
package orders

import (
	"time"

	"golang.org/x/exp/slices"

	"github.com/dreamware/petsclaws/internal/cart"
)

// Status of an order. Orders are created pending; nothing moves them on.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ShippingAddress is where an order is delivered.
type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
}

// Order is an immutable record of a checkout.
type Order struct {
	CreatedAt       time.Time       `json:"createdAt"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Status          Status          `json:"status"`
	PaymentMethod   string          `json:"paymentMethod"`
	DeliveryMethod  string          `json:"deliveryMethod"`
	DeliveryDate    string          `json:"deliveryDate,omitempty"`
	DeliveryTime    string          `json:"deliveryTime,omitempty"`
	Items           []cart.Line     `json:"items"`
	TotalPrice      float64         `json:"totalPrice"`
	DeliveryPrice   float64         `json:"deliveryPrice"`
}

// NewOrder is an order without the fields Log.Create assigns. A zero
// CreatedAt and an empty Status are filled in as now and pending.
type NewOrder struct {
	CreatedAt       time.Time
	ShippingAddress ShippingAddress
	UserID          string
	Status          Status
	PaymentMethod   string
	DeliveryMethod  string
	DeliveryDate    string
	DeliveryTime    string
	Items           []cart.Line
	TotalPrice      float64
	DeliveryPrice   float64
}

// SortNewestFirst orders by CreatedAt descending, in place.
func SortNewestFirst(orders []Order) {
	slices.SortStableFunc(orders, func(a, b Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
