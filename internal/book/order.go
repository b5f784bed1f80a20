// Package book implements the price-ordered, time-priority data structures
// that back one side of a limit order book: the FIFO price level, the
// sorted book of levels, and the order-id index that ties them together.
package book

import "container/list"

// Side identifies which side of the book an order belongs to.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Order is a resting or in-flight limit order. ID, Side, and Price never
// change once the order is created; Size is the remaining quantity and
// decreases as the order fills.
type Order struct {
	ID        string
	Side      Side
	Price     int64
	Size      int64
	Timestamp int64

	elem *list.Element // this order's node in its PriceLevel's queue, while resting
}

// NewOrder constructs an order with the given identity and full size.
func NewOrder(id string, side Side, price, size, timestamp int64) *Order {
	return &Order{
		ID:        id,
		Side:      side,
		Price:     price,
		Size:      size,
		Timestamp: timestamp,
	}
}
