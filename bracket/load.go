package bracket

import (
	"context"

	"github.com/sirupsen/logrus"
)

// ProgressListener receives per-item results of a bulk load.
// Calls happen synchronously on the goroutine running the load.
type ProgressListener interface {
	ItemLoaded(it Item)
	ItemFailed(it Item, err error)
	// Complete is called exactly once when the load finishes or is
	// cancelled. err is nil on a full pass, ctx.Err() on cancellation.
	Complete(err error)
}

// ListenerFuncs adapts plain functions to ProgressListener. Nil fields are
// skipped.
type ListenerFuncs struct {
	OnLoaded   func(it Item)
	OnFailed   func(it Item, err error)
	OnComplete func(err error)
}

func (f ListenerFuncs) ItemLoaded(it Item) {
	if f.OnLoaded != nil {
		f.OnLoaded(it)
	}
}

func (f ListenerFuncs) ItemFailed(it Item, err error) {
	if f.OnFailed != nil {
		f.OnFailed(it, err)
	}
}

func (f ListenerFuncs) Complete(err error) {
	if f.OnComplete != nil {
		f.OnComplete(err)
	}
}

// loadItems loads each item in turn. Cancellation is checked between items,
// never in the middle of one. A failed item is reported and the pass goes on.
func loadItems(ctx context.Context, items []Item, l ProgressListener) error {
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := it.Load(); err != nil {
			logrus.Warnf("loading %s: %v", it.Key(), err)
			l.ItemFailed(it, err)
			continue
		}
		l.ItemLoaded(it)
	}
	return nil
}

func flushItems(items []Item) {
	for _, it := range items {
		it.Flush()
	}
}

// LoadAll loads every pending item of the round.
func (r *Round) LoadAll(ctx context.Context, l ProgressListener) error {
	err := loadItems(ctx, r.Snapshot(), l)
	l.Complete(err)
	return err
}

// FlushAll drops the decoded state of every pending item.
func (r *Round) FlushAll() {
	flushItems(r.Snapshot())
}

// loadSet is everything the bracket loads or flushes: the current pool and
// the winners pool.
func (b *Bracket) loadSet() []Item {
	return b.AllItems()
}

// LoadAll loads every item of the current round and its winners round.
// The pool is copied before the first item is loaded, so scheduling state is
// never touched. Returns ctx.Err() if cancelled.
func (b *Bracket) LoadAll(ctx context.Context, l ProgressListener) error {
	err := loadItems(ctx, b.loadSet(), l)
	l.Complete(err)
	return err
}

// StartLoad copies the pool on the calling goroutine and loads it on a new
// one, so the caller can keep scheduling while photos decode. The returned
// channel receives the load result once and is then closed.
func (b *Bracket) StartLoad(ctx context.Context, l ProgressListener) <-chan error {
	items := b.loadSet()
	done := make(chan error, 1)
	go func() {
		defer close(done)
		err := loadItems(ctx, items, l)
		l.Complete(err)
		done <- err
	}()
	return done
}

// FlushAll drops the decoded state of every item of the current round and
// its winners round.
func (b *Bracket) FlushAll() {
	flushItems(b.loadSet())
}
