package bracket

import "github.com/sirupsen/logrus"

// verdictCommand is one accepted verdict: the pair that was displayed, the
// items that survived into winners, and the override flag before the verdict.
// Commands are never modified after they are recorded.
type verdictCommand struct {
	pair     Pair
	kept     []Item
	override bool
}

// change is one entry on the undo stack: an accepted verdict, or a lone
// leftover that NextPair handed to winners after it.
type change struct {
	verdict *verdictCommand
	drained Item
}

// history keeps reversible changes for the current round only.
type history struct {
	undo []change
	redo []verdictCommand
}

func (h *history) record(cmd verdictCommand) {
	h.undo = append(h.undo, change{verdict: &cmd})
	h.redo = nil
}

// recordDrain notes a leftover moved into winners. It does not touch the
// redo stack, since Redo itself may drain.
func (h *history) recordDrain(it Item) {
	h.undo = append(h.undo, change{drained: it})
}

func (h *history) clear() {
	h.undo = nil
	h.redo = nil
}

// CanUndo reports whether a verdict of the current round can be reversed.
func (b *Bracket) CanUndo() bool {
	for _, c := range b.history.undo {
		if c.verdict != nil {
			return true
		}
	}
	return false
}

// CanRedo reports whether an undone verdict can be applied again.
func (b *Bracket) CanRedo() bool {
	return len(b.history.redo) > 0
}

// Undo reverses the most recent verdict of the current round.
//
// The pair displayed at the time of the call goes back to the ends of the
// pool it came from, leftovers drained into winners since the verdict return
// to the pool, the items the verdict kept leave winners, the override flag is
// restored, and the undone pair is displayed again.
// Verdicts from earlier rounds cannot be undone.
func (b *Bracket) Undo() (Pair, error) {
	if !b.CanUndo() {
		return Pair{}, ErrNothingToUndo
	}
	b.unshow()
	var cmd verdictCommand
	for {
		n := len(b.history.undo)
		c := b.history.undo[n-1]
		b.history.undo = b.history.undo[:n-1]
		if c.verdict != nil {
			cmd = *c.verdict
			break
		}
		if w := b.current.winners; w != nil {
			w.pending.Remove(c.drained)
		}
		b.current.pending.PushBack(c.drained)
	}
	if w := b.current.winners; w != nil {
		for _, it := range cmd.kept {
			w.pending.Remove(it)
		}
	}
	b.override = cmd.override
	p := cmd.pair
	b.shown = &p
	b.history.redo = append(b.history.redo, cmd)
	logrus.Debugf("[round %d] undo: %s vs %s displayed again", b.rounds, p.Left.Key(), p.Right.Key())
	return p, nil
}

// Redo applies the most recently undone verdict again and returns the next
// pair to display.
func (b *Bracket) Redo() (Pair, bool, error) {
	n := len(b.history.redo)
	if n == 0 {
		return Pair{}, false, ErrNothingToRedo
	}
	cmd := b.history.redo[n-1]
	b.history.redo = b.history.redo[:n-1]

	// The undone pair is displayed until something else happens, and any
	// verdict or requeue drops the redo stack, so it is still on screen.
	b.shown = &cmd.pair
	b.apply(cmd)
	b.history.undo = append(b.history.undo, change{verdict: &cmd})
	p, ok := b.NextPair()
	return p, ok, nil
}

// unshow returns the displayed pair to the ends of the pool, reversing
// Round.NextPair.
func (b *Bracket) unshow() {
	if b.shown == nil {
		return
	}
	b.current.pending.PushFront(b.shown.Left)
	b.current.pending.PushBack(b.shown.Right)
	b.shown = nil
}

// drain moves a lone pending item into winners and remembers it for Undo.
func (b *Bracket) drain() {
	it, ok := b.current.NextSingle()
	if !ok {
		return
	}
	b.current.promote(it)
	b.history.recordDrain(it)
}
