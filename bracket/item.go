package bracket

import "sort"

// Item is a handle to one photograph.
//
// Key returns the canonical identity (for files, the resolved absolute path).
// Two items with equal keys are the same item regardless of load state.
// Load decodes the underlying resource and fails when it is missing or
// unreadable. Flush drops any decoded state; it never fails and may be
// called repeatedly.
type Item interface {
	Key() string
	Load() error
	Flush()
}

// Pair is two distinct items presented to the judge together.
type Pair struct {
	Left  Item
	Right Item
}

// Items returns the pair as a two-element slice.
func (p Pair) Items() []Item {
	return []Item{p.Left, p.Right}
}

// Contains reports whether it is one of the two items of the pair.
func (p Pair) Contains(it Item) bool {
	if it == nil || p.Left == nil {
		return false
	}
	return it.Key() == p.Left.Key() || it.Key() == p.Right.Key()
}

// Less orders items by key.
func Less(a, b Item) bool {
	return a.Key() < b.Key()
}

// SortItems sorts items in place by key.
func SortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return Less(items[i], items[j])
	})
}

// Keys returns the keys of items, preserving order.
func Keys(items []Item) []string {
	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = it.Key()
	}
	return keys
}
