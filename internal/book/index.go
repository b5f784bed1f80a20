package book

// entry is the locating metadata an Index keeps for a resting order: not
// a second owning reference, just enough to find the order's level.
type entry struct {
	Side  Side
	Price int64
}

// Index maps an order id to the (side, price) of its resting order,
// present for exactly as long as the order is resting.
type Index struct {
	m map[string]entry
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{m: make(map[string]entry)}
}

// Put records that order id is resting on side s at price.
func (ix *Index) Put(id string, s Side, price int64) {
	ix.m[id] = entry{Side: s, Price: price}
}

// Get returns the (side, price) of a resting order, or false if id is not
// currently resting.
func (ix *Index) Get(id string) (Side, int64, bool) {
	e, ok := ix.m[id]
	return e.Side, e.Price, ok
}

// Has reports whether id is currently resting.
func (ix *Index) Has(id string) bool {
	_, ok := ix.m[id]
	return ok
}

// Delete erases the entry for id, if any.
func (ix *Index) Delete(id string) {
	delete(ix.m, id)
}

// Len reports the number of resting orders tracked by the index.
func (ix *Index) Len() int {
	return len(ix.m)
}

// Range calls f for every (id, side, price) entry in the index, in
// unspecified order, until f returns false. It exists for diagnostics
// and tests; the matching algorithm itself never needs to enumerate the
// index.
func (ix *Index) Range(f func(id string, side Side, price int64) bool) {
	for id, e := range ix.m {
		if !f(id, e.Side, e.Price) {
			return
		}
	}
}
