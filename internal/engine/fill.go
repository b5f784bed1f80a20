package engine

// Fill describes one taker/maker match produced by a single Insert call.
// It executes at the maker's resting price, never the taker's limit.
type Fill struct {
	TakerOrderID string
	MakerOrderID string
	Price        int64
	Size         int64
	Timestamp    int64
}
