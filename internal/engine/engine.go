// Package engine implements the continuous limit order book matching
// algorithm: price priority across levels, time priority within a level,
// partial-fill accounting, and the cross-book index consistency that
// insert and cancel must maintain. It has no knowledge of transport,
// persistence, or any host runtime — see internal/api for that boundary.
package engine

import "github.com/lobmatch/lobmatch/internal/book"

// Engine is a single-instrument matching engine. It is not safe for
// concurrent use: callers that share an Engine across goroutines must
// serialize Insert and Cancel themselves (a single writer, or a coarse
// lock around each call) — the engine performs no suspension, I/O, or
// background work, and offers no internal synchronization.
type Engine struct {
	bids  *book.Book
	asks  *book.Book
	index *book.Index
}

// New returns an empty engine: empty books, empty index.
func New() *Engine {
	return &Engine{
		bids:  book.NewBidBook(),
		asks:  book.NewAskBook(),
		index: book.NewIndex(),
	}
}

// Insert submits a new limit order. It matches immediately against
// resting opposite-side liquidity at or better than price, then rests
// any unfilled remainder on its own side at price. Fills are returned in
// the exact order they occurred; a validation failure aborts before any
// mutation and the engine's state is unchanged.
func (e *Engine) Insert(orderID string, side book.Side, price, size, timestamp int64) ([]Fill, error) {
	if err := validateInsert(orderID, price, size, timestamp); err != nil {
		return nil, err
	}
	if e.index.Has(orderID) {
		return nil, validationError("order_id", ErrDuplicateOrder)
	}

	order := book.NewOrder(orderID, side, price, size, timestamp)

	var own, opposite *book.Book
	var crosses func(levelPrice int64) bool
	switch side {
	case book.Buy:
		own, opposite = e.bids, e.asks
		crosses = func(levelPrice int64) bool { return levelPrice <= price }
	case book.Sell:
		own, opposite = e.asks, e.bids
		crosses = func(levelPrice int64) bool { return levelPrice >= price }
	default:
		return nil, validationError("side", ErrInvalidSide)
	}

	fills := e.sweep(order, opposite, crosses)

	if order.Size > 0 {
		e.rest(order, own)
	}

	e.checkUncrossed()
	return fills, nil
}

// Cancel removes a resting order by id. It returns false, with no error
// and no book mutation, if the id is not currently resting — that is an
// expected outcome, not a failure.
func (e *Engine) Cancel(orderID string) (bool, error) {
	if orderID == "" {
		return false, validationError("order_id", ErrEmptyOrderID)
	}

	side, price, ok := e.index.Get(orderID)
	if !ok {
		return false, nil
	}

	b := e.bookFor(side)
	level, ok := b.GetLevel(price)
	invariant(ok, "index pointed at a price with no level")

	removed := level.RemoveByID(orderID)
	invariant(removed, "index pointed at a price with no matching order")

	if level.Empty() {
		b.RemoveLevel(price)
	}
	e.index.Delete(orderID)
	return true, nil
}

// Bids returns the resting bid book, for read-only diagnostics such as a
// depth snapshot. Callers must not mutate it directly.
func (e *Engine) Bids() *book.Book {
	return e.bids
}

// Asks returns the resting ask book, for read-only diagnostics such as a
// depth snapshot. Callers must not mutate it directly.
func (e *Engine) Asks() *book.Book {
	return e.asks
}

func (e *Engine) bookFor(side book.Side) *book.Book {
	if side == book.Buy {
		return e.bids
	}
	return e.asks
}

func (e *Engine) rest(order *book.Order, own *book.Book) {
	level := own.EnsureLevel(order.Price)
	level.PushBack(order)
	e.index.Put(order.ID, order.Side, order.Price)
}

// checkUncrossed enforces that no resting BUY level may sit at or above
// a resting SELL level once an insert completes. Cancel does not call it:
// removing a resting order cannot cross the book.
func (e *Engine) checkUncrossed() {
	bid, hasBid := e.bids.Best()
	ask, hasAsk := e.asks.Best()
	if hasBid && hasAsk {
		invariant(bid.Price < ask.Price, "book crossed after insert")
	}
}
