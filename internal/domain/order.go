package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is a state of the cart/order lifecycle.
type OrderStatus string

const (
	OrderStatusOpen     OrderStatus = "open"
	OrderStatusOrdered  OrderStatus = "ordered"
	OrderStatusCanceled OrderStatus = "canceled"
	OrderStatusClosed   OrderStatus = "closed"
)

// ErrInvalidTransition is returned when a lifecycle change is not allowed
// from the current status.
var ErrInvalidTransition = errors.New("invalid order status transition")

// orderTransitions is the whole lifecycle: an open cart is placed, a placed
// order is either canceled or delivered. Canceled and closed are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusOpen:    {OrderStatusOrdered},
	OrderStatusOrdered: {OrderStatusCanceled, OrderStatusClosed},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusOpen, OrderStatusOrdered, OrderStatusCanceled, OrderStatusClosed:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// NextStatuses lists the statuses reachable from s in one step.
func NextStatuses(s OrderStatus) []OrderStatus {
	return append([]OrderStatus(nil), orderTransitions[s]...)
}

// CanTransition returns ErrInvalidTransition unless from -> to is allowed.
func CanTransition(from, to OrderStatus) error {
	for _, next := range orderTransitions[from] {
		if next == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

// Order is either a user's open cart or a historical order.
type Order struct {
	OrderNumber     int64           `json:"orderNumber"`
	UserNumber      int64           `json:"userNumber"`
	OrderStatus     OrderStatus     `json:"orderStatus"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	PaymentID       *int64          `json:"paymentID"`
	ArrayOfProducts string          `json:"arrayOfProducts"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// PlacedOrder is the result of checking out a cart.
type PlacedOrder struct {
	Ordered *Order `json:"ordered"`
	NewOpen *Order `json:"newOpen"`
}
