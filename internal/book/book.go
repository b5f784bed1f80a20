package book

import "github.com/google/btree"

// Book is a sorted collection of price levels on one side of the market.
// It is iterable from the best price via Best: for bids "best" is the
// highest price, for asks the lowest. Both are expressed as the minimum
// element of the underlying tree by choosing the comparator per side, so
// Best is always a single Min lookup regardless of side.
type Book struct {
	tree   *btree.BTreeG[*PriceLevel]
	levels map[int64]*PriceLevel
}

// newBook builds a Book whose tree orders levels so that the
// match-priority-first level is always the tree minimum. less(a, b)
// reports whether price a should be visited before price b.
func newBook(less func(a, b int64) bool) *Book {
	return &Book{
		tree: btree.NewG(2, func(a, b *PriceLevel) bool {
			return less(a.Price, b.Price)
		}),
		levels: make(map[int64]*PriceLevel),
	}
}

// NewBidBook returns an empty book whose best price is the highest.
func NewBidBook() *Book {
	return newBook(func(a, b int64) bool { return a > b })
}

// NewAskBook returns an empty book whose best price is the lowest.
func NewAskBook() *Book {
	return newBook(func(a, b int64) bool { return a < b })
}

// Best returns the match-priority-first level, or false if the book is
// empty.
func (b *Book) Best() (*PriceLevel, bool) {
	return b.tree.Min()
}

// GetLevel returns the level at an exact price, if one exists.
func (b *Book) GetLevel(price int64) (*PriceLevel, bool) {
	l, ok := b.levels[price]
	return l, ok
}

// EnsureLevel returns the level at an exact price, creating and inserting
// it into the book first if absent.
func (b *Book) EnsureLevel(price int64) *PriceLevel {
	if l, ok := b.levels[price]; ok {
		return l
	}
	l := newPriceLevel(price)
	b.levels[price] = l
	b.tree.ReplaceOrInsert(l)
	return l
}

// RemoveLevel removes the level at an exact price. The caller is
// responsible for only calling this once the level is empty.
func (b *Book) RemoveLevel(price int64) {
	l, ok := b.levels[price]
	if !ok {
		return
	}
	delete(b.levels, price)
	b.tree.Delete(l)
}

// Len reports the number of distinct price levels in the book.
func (b *Book) Len() int {
	return b.tree.Len()
}

// Walk calls f with each level in match-priority order (best first),
// stopping early if f returns false. Used for diagnostics and
// aggregated depth views, never by the matching algorithm itself.
func (b *Book) Walk(f func(level *PriceLevel) bool) {
	b.tree.Ascend(f)
}
