package engine

import "github.com/lobmatch/lobmatch/internal/book"

// sweep walks opposite from its best level outward, draining resting
// orders FIFO against order while each level's price still crosses. It
// is the one routine both BUY and SELL inserts call — crosses and
// opposite encode the only difference between the two sides.
func (e *Engine) sweep(order *book.Order, opposite *book.Book, crosses func(levelPrice int64) bool) []Fill {
	var fills []Fill

	for order.Size > 0 {
		level, ok := opposite.Best()
		if !ok || !crosses(level.Price) {
			break
		}

		for !level.Empty() && order.Size > 0 {
			maker := level.Front()
			m := min(order.Size, maker.Size)

			fills = append(fills, Fill{
				TakerOrderID: order.ID,
				MakerOrderID: maker.ID,
				Price:        level.Price,
				Size:         m,
				Timestamp:    order.Timestamp,
			})

			order.Size -= m
			maker.Size -= m

			if maker.Size == 0 {
				level.PopFront()
				e.index.Delete(maker.ID)
			}
		}

		if level.Empty() {
			opposite.RemoveLevel(level.Price)
		}
	}

	return fills
}
