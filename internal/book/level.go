package book

import "container/list"

// PriceLevel is a FIFO queue of resting orders at one exact price. A level
// is removed from its book the instant it becomes empty — it never
// persists in an empty state.
type PriceLevel struct {
	Price  int64
	orders *list.List
}

func newPriceLevel(price int64) *PriceLevel {
	return &PriceLevel{
		Price:  price,
		orders: list.New(),
	}
}

// PushBack appends an order to the tail of the queue (newest arrival).
func (l *PriceLevel) PushBack(o *Order) {
	o.elem = l.orders.PushBack(o)
}

// Front returns the oldest resting order, or nil if the level is empty.
func (l *PriceLevel) Front() *Order {
	e := l.orders.Front()
	if e == nil {
		return nil
	}
	return e.Value.(*Order)
}

// PopFront removes and returns the oldest resting order.
func (l *PriceLevel) PopFront() *Order {
	e := l.orders.Front()
	if e == nil {
		return nil
	}
	o := e.Value.(*Order)
	l.orders.Remove(e)
	o.elem = nil
	return o
}

// RemoveByID removes the unique order with the given id, if present. A
// linear scan is acceptable here: the index guarantees at most one
// resting order per id, so this is only ever called on a cancel.
func (l *PriceLevel) RemoveByID(id string) bool {
	for e := l.orders.Front(); e != nil; e = e.Next() {
		o := e.Value.(*Order)
		if o.ID == id {
			l.orders.Remove(e)
			o.elem = nil
			return true
		}
	}
	return false
}

// Len reports the number of resting orders at this level.
func (l *PriceLevel) Len() int {
	return l.orders.Len()
}

// Walk calls f with each resting order from oldest to newest, stopping
// early if f returns false. It is a read-only view for diagnostics and
// tests; matching itself only ever needs Front/PopFront.
func (l *PriceLevel) Walk(f func(o *Order) bool) {
	for e := l.orders.Front(); e != nil; e = e.Next() {
		if !f(e.Value.(*Order)) {
			return
		}
	}
}

// Empty reports whether the level holds no resting orders.
func (l *PriceLevel) Empty() bool {
	return l.orders.Len() == 0
}
