// Package session binds a Bracket to its journal and trace.
//
// Every scheduling call made through a Session is first reserved in the
// journal, then applied to the bracket and recorded in the trace, and the
// journal entry is committed only if the bracket accepted it. Because the
// bracket is deterministic, replaying the journal against the initial pool
// reproduces the exact state, which is how Resume works.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/photo-bracket/photo-bracket/bracket"
	"github.com/photo-bracket/photo-bracket/bracket/journal"
	"github.com/photo-bracket/photo-bracket/bracket/trace"
)

// ErrAlreadyStarted is returned by New when the bracket has already made
// scheduling progress and its initial pool can no longer be journaled.
var ErrAlreadyStarted = errors.New("bracket already started")

// ErrDiverged is returned once a journal commit failed after the bracket
// already changed. The journal no longer matches the bracket, so the session
// refuses further operations; resuming from the journal restores the last
// committed state.
var ErrDiverged = errors.New("session diverged from journal")

// Resolver turns a journaled item key back into an item.
type Resolver func(key string) (bracket.Item, error)

// Option configures a Session.
type Option func(*Session)

// WithTraceLevel enables tracing at the given level.
func WithTraceLevel(level trace.TraceLevel) Option {
	return func(s *Session) {
		s.trace = trace.NewSessionTrace(level)
	}
}

// Session is a bracket plus its journal and trace.
// Like Bracket, it is NOT thread-safe.
type Session struct {
	id    string // empty when unjournaled
	b     *bracket.Bracket
	store *journal.Store
	trace *trace.SessionTrace

	items     map[string]bracket.Item
	step      int
	lastRound int
	diverged  error
}

// New starts a session over a fresh bracket. With a nil store the session
// is not journaled and ID returns "".
func New(ctx context.Context, b *bracket.Bracket, store *journal.Store, label string, opts ...Option) (*Session, error) {
	if b.RoundCount() > 0 || b.WinnersSize() > 0 {
		return nil, ErrAlreadyStarted
	}
	if _, shown := b.Displayed(); shown {
		return nil, ErrAlreadyStarted
	}
	s := newSession(b, store, opts)
	for _, it := range b.CurrentItems() {
		s.items[it.Key()] = it
	}
	if store != nil {
		id, err := store.CreateSession(ctx, label, bracket.Keys(b.CurrentItems()))
		if err != nil {
			return nil, fmt.Errorf("creating session: %w", err)
		}
		s.id = id
	}
	return s, nil
}

// Resume rebuilds a journaled session by replaying its operations against
// its initial pool.
func Resume(ctx context.Context, store *journal.Store, id string, resolve Resolver, opts ...Option) (*Session, error) {
	if store == nil {
		return nil, errors.New("resume: no journal")
	}
	keys, err := store.Items(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resume: %w", err)
	}
	ops, err := store.Ops(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resume: %w", err)
	}

	s := newSession(bracket.New(), store, opts)
	s.id = id
	initial, err := s.resolveAll(keys, resolve)
	if err != nil {
		return nil, fmt.Errorf("resume: %w", err)
	}
	s.b.Add(initial...)

	for _, op := range ops {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if op.Kind == journal.OpAdd {
			if _, err := s.resolveAll(op.Keys, resolve); err != nil {
				return nil, fmt.Errorf("resume op %d: %w", op.Seq, err)
			}
		}
		if _, _, err := s.apply(op); err != nil {
			return nil, fmt.Errorf("resume op %d (%s): %w", op.Seq, op.Kind, err)
		}
	}
	logrus.Infof("session %s: resumed after %d operations (round %d, %d items)",
		id, len(ops), s.b.RoundCount(), s.b.Size())
	return s, nil
}

func newSession(b *bracket.Bracket, store *journal.Store, opts []Option) *Session {
	s := &Session{
		b:     b,
		store: store,
		items: make(map[string]bracket.Item),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastRound = b.RoundCount()
	return s
}

func (s *Session) resolveAll(keys []string, resolve Resolver) ([]bracket.Item, error) {
	items := make([]bracket.Item, 0, len(keys))
	for _, k := range keys {
		it, ok := s.items[k]
		if !ok {
			var err error
			if it, err = resolve(k); err != nil {
				return nil, fmt.Errorf("resolving %s: %w", k, err)
			}
			s.items[k] = it
		}
		items = append(items, it)
	}
	return items, nil
}

func (s *Session) lookup(keys []string) ([]bracket.Item, error) {
	items := make([]bracket.Item, 0, len(keys))
	for _, k := range keys {
		it, ok := s.items[k]
		if !ok {
			return nil, fmt.Errorf("%s: %w", k, bracket.ErrNotShown)
		}
		items = append(items, it)
	}
	return items, nil
}

// ID returns the journal ID, or "" for an unjournaled session.
func (s *Session) ID() string { return s.id }

// Bracket returns the underlying bracket for read-only queries.
func (s *Session) Bracket() *bracket.Bracket { return s.b }

// Trace returns the collected trace, or nil when tracing is off.
func (s *Session) Trace() *trace.SessionTrace { return s.trace }

// Step returns the number of operations applied so far.
func (s *Session) Step() int { return s.step }

// Next returns the pair to display. Unlike Bracket.NextPair it never
// reports false at a round boundary; false means the bracket is finished
// unless the judge calls IgnoreDone.
func (s *Session) Next(ctx context.Context) (bracket.Pair, bool, error) {
	if p, ok := s.b.Displayed(); ok {
		return p, true, nil
	}
	for {
		p, ok, err := s.run(ctx, journal.Op{Kind: journal.OpNext})
		if err != nil || ok {
			return p, ok, err
		}
		if !s.b.HasNextPair() {
			return bracket.Pair{}, false, nil
		}
	}
}

// Decide applies a verdict to the displayed pair.
func (s *Session) Decide(ctx context.Context, v bracket.Verdict) error {
	p, ok := s.b.Displayed()
	if !ok {
		return fmt.Errorf("decide %s: %w", v, bracket.ErrNoPairShown)
	}
	if _, err := bracket.ParseVerdict(string(v)); err != nil {
		return err
	}
	_, _, err := s.run(ctx, journal.Op{Kind: journal.OpSelect, Keys: bracket.Keys(v.Kept(p))})
	return err
}

// Select keeps exactly the given items of the displayed pair.
func (s *Session) Select(ctx context.Context, items ...bracket.Item) error {
	p, ok := s.b.Displayed()
	if !ok {
		return fmt.Errorf("selected: %w", bracket.ErrNoPairShown)
	}
	for _, it := range items {
		if it == nil {
			return fmt.Errorf("selected: <nil>: %w", bracket.ErrNotShown)
		}
		if !p.Contains(it) {
			return fmt.Errorf("selected: %s: %w", it.Key(), bracket.ErrNotShown)
		}
	}
	_, _, err := s.run(ctx, journal.Op{Kind: journal.OpSelect, Keys: bracket.Keys(items)})
	return err
}

// Requeue sends the displayed pair back to the pool and returns the next
// pair to display.
func (s *Session) Requeue(ctx context.Context) (bracket.Pair, bool, error) {
	p, ok := s.b.Displayed()
	if !ok {
		return bracket.Pair{}, false, fmt.Errorf("requeue: %w", bracket.ErrNoPairShown)
	}
	next, ok, err := s.run(ctx, journal.Op{Kind: journal.OpRequeue, Keys: bracket.Keys(p.Items())})
	if err != nil || ok {
		return next, ok, err
	}
	return s.Next(ctx)
}

// IgnoreDone continues into the next round even though the current round
// eliminated nothing.
func (s *Session) IgnoreDone(ctx context.Context) error {
	_, _, err := s.run(ctx, journal.Op{Kind: journal.OpIgnore})
	return err
}

// Undo reverses the most recent verdict of the current round and returns
// the pair it was made on, which is displayed again.
func (s *Session) Undo(ctx context.Context) (bracket.Pair, error) {
	if !s.b.CanUndo() {
		return bracket.Pair{}, bracket.ErrNothingToUndo
	}
	p, _, err := s.run(ctx, journal.Op{Kind: journal.OpUndo})
	return p, err
}

// Redo applies the most recently undone verdict again and returns the next
// pair to display.
func (s *Session) Redo(ctx context.Context) (bracket.Pair, bool, error) {
	if !s.b.CanRedo() {
		return bracket.Pair{}, false, bracket.ErrNothingToRedo
	}
	p, ok, err := s.run(ctx, journal.Op{Kind: journal.OpRedo})
	if err != nil || ok {
		return p, ok, err
	}
	return s.Next(ctx)
}

// Add inserts new items into the current round.
func (s *Session) Add(ctx context.Context, items ...bracket.Item) error {
	for _, it := range items {
		s.items[it.Key()] = it
	}
	_, _, err := s.run(ctx, journal.Op{Kind: journal.OpAdd, Keys: bracket.Keys(items)})
	return err
}

// run reserves op in the journal, applies it, and commits the entry only if
// the bracket accepted it.
func (s *Session) run(ctx context.Context, op journal.Op) (bracket.Pair, bool, error) {
	if s.diverged != nil {
		return bracket.Pair{}, false, fmt.Errorf("%s: %w: %v", op.Kind, ErrDiverged, s.diverged)
	}
	if s.store == nil || s.id == "" {
		return s.apply(op)
	}
	pending, err := s.store.Reserve(ctx, s.id, op)
	if err != nil {
		return bracket.Pair{}, false, fmt.Errorf("journal %s: %w", op.Kind, err)
	}
	p, ok, err := s.apply(op)
	if err != nil {
		if rerr := pending.Rollback(); rerr != nil {
			logrus.Warnf("session %s: discarding %s entry: %v", s.id, op.Kind, rerr)
		}
		return p, ok, err
	}
	if _, err := pending.Commit(); err != nil {
		s.diverged = err
		logrus.Errorf("session %s: %s applied but not journaled: %v", s.id, op.Kind, err)
		return p, ok, fmt.Errorf("journal %s: %w: %v", op.Kind, ErrDiverged, err)
	}
	return p, ok, nil
}

// apply performs op on the bracket and records it in the trace.
func (s *Session) apply(op journal.Op) (bracket.Pair, bool, error) {
	var (
		p   bracket.Pair
		ok  bool
		err error
	)
	step := s.step + 1
	round := s.b.RoundCount()

	switch op.Kind {
	case journal.OpNext:
		p, ok = s.b.NextPair()
	case journal.OpSelect:
		shown, _ := s.b.Displayed()
		var kept []bracket.Item
		if kept, err = s.lookup(op.Keys); err != nil {
			return p, false, fmt.Errorf("selected: %w", err)
		}
		if err = s.b.Selected(kept...); err == nil {
			s.trace.RecordVerdict(trace.VerdictRecord{
				Step:    step,
				Round:   round,
				Left:    shown.Left.Key(),
				Right:   shown.Right.Key(),
				Verdict: string(bracket.VerdictFor(shown, kept)),
				Kept:    bracket.Keys(kept),
			})
		}
	case journal.OpRequeue:
		var items []bracket.Item
		if items, err = s.lookup(op.Keys); err != nil {
			return p, false, fmt.Errorf("requeue: %w", err)
		}
		shown, _ := s.b.Displayed()
		if p, ok, err = s.b.Requeue(items...); err == nil {
			s.trace.RecordRequeue(trace.RequeueRecord{
				Step: step, Round: round, Left: shown.Left.Key(), Right: shown.Right.Key(),
			})
		}
	case journal.OpIgnore:
		s.b.IgnoreDone()
	case journal.OpUndo:
		if p, err = s.b.Undo(); err == nil {
			ok = true
			s.trace.RecordUndo(trace.UndoRecord{
				Step: step, Round: round, Left: p.Left.Key(), Right: p.Right.Key(),
			})
		}
	case journal.OpRedo:
		shown, _ := s.b.Displayed()
		if p, ok, err = s.b.Redo(); err == nil {
			s.trace.RecordUndo(trace.UndoRecord{
				Step: step, Round: round, Redo: true, Left: shown.Left.Key(), Right: shown.Right.Key(),
			})
		}
	case journal.OpAdd:
		var items []bracket.Item
		if items, err = s.lookup(op.Keys); err != nil {
			return p, false, fmt.Errorf("add: %w", err)
		}
		s.b.Add(items...)
	default:
		return p, false, fmt.Errorf("unknown op kind %q", op.Kind)
	}
	if err != nil {
		return p, ok, err
	}

	s.step = step
	if r := s.b.RoundCount(); r != s.lastRound {
		s.lastRound = r
		size := s.b.RoundSize()
		if _, shown := s.b.Displayed(); shown {
			size += 2
		}
		s.trace.RecordRound(trace.RoundRecord{Step: step, Round: r, Size: size})
		logrus.Debugf("session %s: round %d begins with %d items", s.id, r, size)
	}
	return p, ok, nil
}
