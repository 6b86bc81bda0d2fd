// Defines the Round, one elimination level of the bracket.
// A Round owns the pool of items still waiting to be compared at this level
// and a child Round that collects the level's survivors.

package bracket

import "fmt"

// Round holds one level's undecided items plus its winners.
//
// winners is nil until the first item is added to the round (or to winners
// itself). A nil winners round means "never received an item", which is
// distinct from an initialized but empty winners round. Whenever pending is
// non-empty, winners is non-nil.
type Round struct {
	pending *pool
	winners *Round
}

// NewRound creates a round seeded with items. Duplicate keys are dropped.
// A round created with no items has no winners round.
func NewRound(items ...Item) *Round {
	r := &Round{pending: newPool()}
	r.Add(items...)
	return r
}

// Add inserts items at the back of the pool. Items already present are
// ignored. The winners round is created on first use.
func (r *Round) Add(items ...Item) {
	for _, it := range items {
		r.pending.PushBack(it)
	}
	if len(items) > 0 {
		r.ensureWinners()
	}
}

// Winners returns the round collecting this level's survivors, or nil if
// this round never received an item.
func (r *Round) Winners() *Round {
	return r.winners
}

func (r *Round) ensureWinners() *Round {
	if r.winners == nil {
		r.winners = &Round{pending: newPool()}
	}
	return r.winners
}

// promote adds items to the winners round, creating it if needed.
func (r *Round) promote(items ...Item) {
	w := r.ensureWinners()
	w.Add(items...)
}

// NextPair removes and returns the front and back items of the pool.
// Taking opposite ends keeps items that were adjacent on insertion (burst
// shots in capture order) from meeting each other.
// Returns false if fewer than two items remain.
func (r *Round) NextPair() (Pair, bool) {
	if r.pending.Len() < 2 {
		return Pair{}, false
	}
	left := r.pending.PopFront()
	right := r.pending.PopBack()
	return Pair{Left: left, Right: right}, true
}

// NextSingle removes and returns the last remaining item. Returns false
// unless exactly one item is pending.
func (r *Round) NextSingle() (Item, bool) {
	if r.pending.Len() != 1 {
		return nil, false
	}
	return r.pending.PopFront(), true
}

// drainSingle moves a lone pending item into winners.
func (r *Round) drainSingle() bool {
	it, ok := r.NextSingle()
	if !ok {
		return false
	}
	r.promote(it)
	return true
}

// IsEmpty reports whether no items are pending.
// NOTE: mutates. A single remaining item is moved into winners before the
// check, since it can never be paired at this level.
func (r *Round) IsEmpty() bool {
	r.drainSingle()
	return r.pending.Len() == 0
}

// HasNextPair reports whether NextPair would succeed. Does not mutate.
func (r *Round) HasNextPair() bool {
	return r.pending.Len() >= 2
}

// Size returns the number of pending items.
func (r *Round) Size() int {
	return r.pending.Len()
}

// Snapshot returns a copy of the pending items in pool order.
// Changing the returned slice never affects the round.
func (r *Round) Snapshot() []Item {
	return r.pending.Items()
}

// Equal reports whether both rounds hold the same pending items,
// ignoring order.
func (r *Round) Equal(other *Round) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.pending.Len() != other.pending.Len() {
		return false
	}
	for e := r.pending.order.Front(); e != nil; e = e.Next() {
		if !other.pending.Contains(e.Value.(Item)) {
			return false
		}
	}
	return true
}

func (r *Round) String() string {
	w := "<nil>"
	if r.winners != nil {
		w = r.winners.pending.String()
	}
	return fmt.Sprintf("Round: (pending: %s, winners: %s)", r.pending, w)
}
