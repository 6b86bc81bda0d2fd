// Implements the pool, which holds the undecided items of a single round.
// Items keep insertion order, duplicates are rejected, and either end can be
// removed in constant time.

package bracket

import (
	"container/list"
	"strings"
)

// pool is an insertion-ordered set of items keyed by Item.Key().
// Membership lives in the index; order lives in the linked list.
type pool struct {
	order *list.List               // front-to-back iteration order
	index map[string]*list.Element // key -> element holding the item
}

func newPool(items ...Item) *pool {
	p := &pool{
		order: list.New(),
		index: make(map[string]*list.Element),
	}
	for _, it := range items {
		p.PushBack(it)
	}
	return p
}

// PushBack appends an item. Returns false if an item with the same key is
// already present.
func (p *pool) PushBack(it Item) bool {
	if it == nil {
		panic("pool.PushBack: item must not be nil")
	}
	if _, ok := p.index[it.Key()]; ok {
		return false
	}
	p.index[it.Key()] = p.order.PushBack(it)
	return true
}

// PushFront inserts an item at the front. Used when undo puts a pair back
// where it was taken from.
func (p *pool) PushFront(it Item) bool {
	if it == nil {
		panic("pool.PushFront: item must not be nil")
	}
	if _, ok := p.index[it.Key()]; ok {
		return false
	}
	p.index[it.Key()] = p.order.PushFront(it)
	return true
}

// PopFront removes and returns the front item, or nil if the pool is empty.
func (p *pool) PopFront() Item {
	return p.remove(p.order.Front())
}

// PopBack removes and returns the back item, or nil if the pool is empty.
func (p *pool) PopBack() Item {
	return p.remove(p.order.Back())
}

// Remove deletes the item with the same key as it. Returns false if absent.
func (p *pool) Remove(it Item) bool {
	e, ok := p.index[it.Key()]
	if !ok {
		return false
	}
	p.remove(e)
	return true
}

func (p *pool) remove(e *list.Element) Item {
	if e == nil {
		return nil
	}
	it := p.order.Remove(e).(Item)
	delete(p.index, it.Key())
	return it
}

// Contains reports whether an item with the same key is present.
func (p *pool) Contains(it Item) bool {
	_, ok := p.index[it.Key()]
	return ok
}

// Len returns the number of items in the pool.
func (p *pool) Len() int {
	return len(p.index)
}

// Items returns a copy of the pool contents in iteration order.
func (p *pool) Items() []Item {
	out := make([]Item, 0, p.Len())
	for e := p.order.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(Item))
	}
	return out
}

func (p *pool) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for e := p.order.Front(); e != nil; e = e.Next() {
		sb.WriteString(e.Value.(Item).Key())
		if e.Next() != nil {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
