// Defines the Bracket, which drives round-to-round elimination.
// The Bracket owns the current Round, counts promotions, and tracks whether
// the current round has eliminated anything since it started.

package bracket

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Bracket schedules pairs for a judge and promotes survivors round by round.
//
// Thread-safety: NOT thread-safe. All scheduling calls must come from a
// single goroutine. StartLoad is the only method that does work elsewhere,
// and it only reads a snapshot of the pool.
type Bracket struct {
	current  *Round
	rounds   int  // number of promotions so far
	override bool // set when the current round produced a non-pair verdict, or by IgnoreDone
	shown    *Pair

	history history
}

// New creates a bracket whose first round holds items.
func New(items ...Item) *Bracket {
	return &Bracket{current: NewRound(items...)}
}

// Add inserts items into the current round's pool.
func (b *Bracket) Add(items ...Item) {
	b.current.Add(items...)
}

// IsEmpty reports whether the bracket has never held an item: the current
// round has nothing pending and its winners round was never created.
// NOTE: may move a lone pending item into winners (see Round.IsEmpty).
func (b *Bracket) IsEmpty() bool {
	b.drain()
	return b.current.Size() == 0 && b.current.winners == nil
}

// HasNextPair reports whether NextPair can produce a pair, either from the
// current round or, once the override flag is set, from the winners round
// after promotion. A displayed pair that has not been judged yet counts.
func (b *Bracket) HasNextPair() bool {
	if b.shown != nil || b.current.HasNextPair() {
		return true
	}
	w := b.current.winners
	if !b.override || w == nil {
		return false
	}
	return (b.current.Size() > 0 && w.Size() > 0) || w.HasNextPair()
}

// NextPair returns the next pair to display.
//
// A round holding one unpaired item while its winners round already has
// survivors hands that item to winners. If the current round was already
// exhausted when NextPair was called and the override flag is set, the
// winners round is promoted and becomes the current round.
//
// Returns false when no pair is available; callers should consult
// HasNextPair before treating that as the end of the bracket, since a round
// with an odd leftover ends with one false result before promotion.
// Calling NextPair again before a verdict returns the same pair.
func (b *Bracket) NextPair() (Pair, bool) {
	if b.shown != nil {
		return *b.shown, true
	}
	exhausted := b.current.Size() == 0
	if w := b.current.winners; w != nil && w.Size() > 0 && b.current.Size() > 0 && !b.current.HasNextPair() {
		b.drain()
	}
	if exhausted && b.override {
		b.promote()
	}
	p, ok := b.current.NextPair()
	if ok {
		b.shown = &p
		logrus.Debugf("[round %d] presenting %s vs %s", b.rounds, p.Left.Key(), p.Right.Key())
	}
	return p, ok
}

// promote makes the winners round current. The override flag and the
// undo/redo history do not carry across rounds.
func (b *Bracket) promote() {
	w := b.current.winners
	if w == nil || w.Size() == 0 {
		return
	}
	b.current = w
	b.rounds++
	b.override = false
	b.history.clear()
	logrus.Infof("[round %d] promoted %d items", b.rounds, w.Size())
}

// Displayed returns the pair most recently returned by NextPair that has not
// been judged or requeued yet.
func (b *Bracket) Displayed() (Pair, bool) {
	if b.shown == nil {
		return Pair{}, false
	}
	return *b.shown, true
}

// Selected records the judge's verdict on the displayed pair. Every item
// passed survives into the current round's winners. Any count other than two
// means the round eliminated something, which sets the override flag so the
// bracket continues into the next round.
func (b *Bracket) Selected(items ...Item) error {
	if err := b.checkVerdict(items); err != nil {
		return fmt.Errorf("selected: %w", err)
	}
	cmd := verdictCommand{
		pair:     *b.shown,
		kept:     append([]Item(nil), items...),
		override: b.override,
	}
	b.apply(cmd)
	b.history.record(cmd)
	return nil
}

// Decide applies a verdict to the displayed pair.
func (b *Bracket) Decide(v Verdict) error {
	if b.shown == nil {
		return fmt.Errorf("decide %s: %w", v, ErrNoPairShown)
	}
	if !validVerdicts[v] {
		return fmt.Errorf("decide: unknown verdict %q", v)
	}
	return b.Selected(v.Kept(*b.shown)...)
}

func (b *Bracket) apply(cmd verdictCommand) {
	b.current.promote(cmd.kept...)
	if len(cmd.kept) != 2 {
		b.override = true
	}
	b.shown = nil
	logrus.Debugf("[round %d] verdict %s on %s vs %s", b.rounds,
		VerdictFor(cmd.pair, cmd.kept), cmd.pair.Left.Key(), cmd.pair.Right.Key())
}

func (b *Bracket) checkVerdict(items []Item) error {
	if b.shown == nil {
		return ErrNoPairShown
	}
	if len(items) > 2 {
		return ErrTooManyItems
	}
	for i, it := range items {
		if !b.shown.Contains(it) {
			return fmt.Errorf("%s: %w", keyOf(it), ErrNotShown)
		}
		for _, prev := range items[:i] {
			if prev.Key() == it.Key() {
				return fmt.Errorf("%s: %w", it.Key(), ErrDuplicateItem)
			}
		}
	}
	return nil
}

// Requeue returns the displayed pair to the current round's pool without a
// verdict (the judge wants different pictures) and presents a new pair.
// Passing no items requeues the whole displayed pair; otherwise items must
// name both displayed items. Requeueing never sets the override flag.
func (b *Bracket) Requeue(items ...Item) (Pair, bool, error) {
	if len(items) == 0 && b.shown != nil {
		items = b.shown.Items()
	}
	if err := b.checkVerdict(items); err != nil {
		return Pair{}, false, fmt.Errorf("requeue: %w", err)
	}
	if len(items) != 2 {
		return Pair{}, false, fmt.Errorf("requeue: %w", ErrPartialRequeue)
	}
	b.shown = nil
	b.current.Add(items...)
	b.history.redo = nil
	logrus.Debugf("[round %d] requeued %s and %s", b.rounds, items[0].Key(), items[1].Key())
	p, ok := b.NextPair()
	return p, ok, nil
}

// IgnoreDone sets the override flag so the bracket continues into the next
// round even though the current round eliminated nothing.
func (b *Bracket) IgnoreDone() {
	b.override = true
}

// Override reports whether the override flag is set.
func (b *Bracket) Override() bool {
	return b.override
}

// CurrentItems returns a copy of the current round's pending pool.
func (b *Bracket) CurrentItems() []Item {
	return b.current.Snapshot()
}

// AllItems returns the current round's pending pool followed by its winners.
func (b *Bracket) AllItems() []Item {
	items := b.current.Snapshot()
	if w := b.current.winners; w != nil {
		items = append(items, w.Snapshot()...)
	}
	return items
}

// RoundCount returns the number of promotions so far.
func (b *Bracket) RoundCount() int {
	return b.rounds
}

// RoundSize returns the number of items pending in the current round.
func (b *Bracket) RoundSize() int {
	return b.current.Size()
}

// Size returns the number of items pending in the current round plus those
// already in its winners round.
func (b *Bracket) Size() int {
	n := b.current.Size()
	if w := b.current.winners; w != nil {
		n += w.Size()
	}
	return n
}

// WinnersSize returns the number of items already promoted out of the
// current round.
func (b *Bracket) WinnersSize() int {
	if w := b.current.winners; w != nil {
		return w.Size()
	}
	return 0
}

func keyOf(it Item) string {
	if it == nil {
		return "<nil>"
	}
	return it.Key()
}

func (b *Bracket) String() string {
	return fmt.Sprintf("Bracket: (round: %d, override: %t, current: %s)", b.rounds, b.override, b.current)
}
