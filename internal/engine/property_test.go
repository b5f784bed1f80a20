package engine

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/lobmatch/lobmatch/internal/book"
)

// op is one random operation drawn by genOps: either an insert with a
// fresh id, or a cancel of a previously-seen id (including ones already
// gone, to exercise the unknown-id path).
type op struct {
	insert    bool
	id        string
	side      book.Side
	price     int64
	size      int64
	timestamp int64
}

func genOps(t *rapid.T, seenIDs *[]string) []op {
	n := rapid.IntRange(1, 60).Draw(t, "n")
	ops := make([]op, 0, n)
	nextID := 0
	var ts int64

	for i := 0; i < n; i++ {
		ts++
		doInsert := len(*seenIDs) == 0 || rapid.IntRange(0, 4).Draw(t, "choice") != 0

		if doInsert {
			id := fmt.Sprintf("o%d", nextID)
			nextID++
			side := book.Buy
			if rapid.Bool().Draw(t, "sell") {
				side = book.Sell
			}
			price := rapid.Int64Range(90, 110).Draw(t, "price")
			size := rapid.Int64Range(1, 20).Draw(t, "size")
			ops = append(ops, op{insert: true, id: id, side: side, price: price, size: size, timestamp: ts})
			*seenIDs = append(*seenIDs, id)
		} else {
			id := rapid.SampledFrom(*seenIDs).Draw(t, "cancelID")
			ops = append(ops, op{insert: false, id: id})
		}
	}
	return ops
}

// TestProperty_InvariantsHoldAfterEveryOperation drives random sequences
// of Insert/Cancel and checks, after every single call, that there are
// no empty levels, the book is never crossed, and the index stays
// consistent with what is actually resting.
func TestProperty_InvariantsHoldAfterEveryOperation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var seenIDs []string
		ops := genOps(t, &seenIDs)

		e := New()
		for _, o := range ops {
			if o.insert {
				_, err := e.Insert(o.id, o.side, o.price, o.size, o.timestamp)
				if err != nil {
					t.Fatalf("unexpected validation error on fresh id: %v", err)
				}
			} else {
				_, _ = e.Cancel(o.id)
			}

			assertNoEmptyLevels(t, e.bids)
			assertNoEmptyLevels(t, e.asks)
			assertUncrossed(t, e)
			assertIndexConsistent(t, e)
		}
	})
}

func assertNoEmptyLevels(t *rapid.T, b *book.Book) {
	b.Walk(func(level *book.PriceLevel) bool {
		if level.Empty() {
			t.Fatalf("book holds an empty level at price %d", level.Price)
		}
		return true
	})
}

func assertUncrossed(t *rapid.T, e *Engine) {
	bid, hasBid := e.bids.Best()
	ask, hasAsk := e.asks.Best()
	if hasBid && hasAsk && bid.Price >= ask.Price {
		t.Fatalf("book crossed: best bid %d >= best ask %d", bid.Price, ask.Price)
	}
}

func assertIndexConsistent(t *rapid.T, e *Engine) {
	e.index.Range(func(id string, side book.Side, price int64) bool {
		b := e.bookFor(side)
		level, ok := b.GetLevel(price)
		if !ok {
			t.Fatalf("index has %s at price %d but no such level exists", id, price)
		}

		found := false
		level.Walk(func(o *book.Order) bool {
			if o.ID == id {
				found = true
				if o.Size <= 0 {
					t.Fatalf("resting order %s has non-positive size %d", id, o.Size)
				}
				return false
			}
			return true
		})
		if !found {
			t.Fatalf("index has %s at price %d but the level holds no such order", id, price)
		}
		return true
	})
}

// TestProperty_PricePriorityWithinASingleInsert checks that fills from
// one Insert are non-worsening in price for the taker, and FIFO within
// equal prices.
func TestProperty_PricePriorityWithinASingleInsert(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := New()
		nLevels := rapid.IntRange(1, 5).Draw(t, "nLevels")

		prices := make([]int64, 0, nLevels)
		arrival := make(map[string]int)
		basePrice := int64(100)
		for i := 0; i < nLevels; i++ {
			p := basePrice + int64(i)
			prices = append(prices, p)
			ordersAtLevel := rapid.IntRange(1, 3).Draw(t, "ordersAtLevel")
			for j := 0; j < ordersAtLevel; j++ {
				id := fmt.Sprintf("ask-%d-%d", i, j)
				size := rapid.Int64Range(1, 10).Draw(t, "size")
				_, err := e.Insert(id, book.Sell, p, size, int64(i*10+j))
				if err != nil {
					t.Fatalf("seed insert failed: %v", err)
				}
				arrival[id] = len(arrival)
			}
		}

		takerSize := rapid.Int64Range(1, 200).Draw(t, "takerSize")
		takerPrice := prices[len(prices)-1] // crosses every seeded level
		fills, err := e.Insert("taker", book.Buy, takerPrice, takerSize, 9999)
		if err != nil {
			t.Fatalf("taker insert failed: %v", err)
		}

		for i := 1; i < len(fills); i++ {
			if fills[i].Price < fills[i-1].Price {
				t.Fatalf("price priority violated: fill %d price %d < fill %d price %d",
					i, fills[i].Price, i-1, fills[i-1].Price)
			}
			if fills[i].Price == fills[i-1].Price &&
				arrival[fills[i].MakerOrderID] < arrival[fills[i-1].MakerOrderID] {
				t.Fatalf("time priority violated: fill %d maker %s arrived before fill %d maker %s",
					i, fills[i].MakerOrderID, i-1, fills[i-1].MakerOrderID)
			}
		}
	})
}

// TestProperty_CancelIsIdempotent checks that once an id is cancelled,
// every subsequent cancel of that id returns false.
func TestProperty_CancelIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := New()
		id := "only"
		_, err := e.Insert(id, book.Buy, 100, rapid.Int64Range(1, 100).Draw(t, "size"), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		first, err := e.Cancel(id)
		if err != nil || !first {
			t.Fatalf("expected first cancel to succeed, got ok=%v err=%v", first, err)
		}

		repeats := rapid.IntRange(1, 5).Draw(t, "repeats")
		for i := 0; i < repeats; i++ {
			ok, err := e.Cancel(id)
			if err != nil || ok {
				t.Fatalf("expected repeat cancel to return false, got ok=%v err=%v", ok, err)
			}
		}
	})
}

// TestProperty_SizeConservation checks that, across a random run, every
// unit of size removed from resting makers or the taker is accounted
// for by the emitted fills.
func TestProperty_SizeConservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := New()
		nMakers := rapid.IntRange(1, 6).Draw(t, "nMakers")

		var totalMakerSize int64
		for i := 0; i < nMakers; i++ {
			size := rapid.Int64Range(1, 20).Draw(t, "makerSize")
			totalMakerSize += size
			_, err := e.Insert(fmt.Sprintf("m%d", i), book.Sell, 100, size, int64(i))
			if err != nil {
				t.Fatalf("seed insert failed: %v", err)
			}
		}

		takerSize := rapid.Int64Range(1, 200).Draw(t, "takerSize")
		fills, err := e.Insert("taker", book.Buy, 100, takerSize, 999)
		if err != nil {
			t.Fatalf("taker insert failed: %v", err)
		}

		var filledSize int64
		for _, f := range fills {
			filledSize += f.Size
		}

		expected := min(takerSize, totalMakerSize)
		if filledSize != expected {
			t.Fatalf("size conservation violated: filled %d, expected min(taker=%d, makers=%d)=%d",
				filledSize, takerSize, totalMakerSize, expected)
		}
	})
}
