package bracket

import (
	"fmt"
	"sync"
)

// testItem is an in-memory Item that counts loads and flushes.
type testItem struct {
	key     string
	loadErr error

	mu      sync.Mutex
	loads   int
	flushes int
	loaded  bool
}

func newTestItem(key string) *testItem {
	return &testItem{key: key}
}

func (t *testItem) Key() string { return t.key }

func (t *testItem) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loads++
	if t.loadErr != nil {
		return t.loadErr
	}
	t.loaded = true
	return nil
}

func (t *testItem) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.flushes++
	t.loaded = false
}

func (t *testItem) String() string { return t.key }

// testItems returns items named by keys, e.g. testItems("A", "B").
func testItems(keys ...string) []Item {
	items := make([]Item, len(keys))
	for i, k := range keys {
		items[i] = newTestItem(k)
	}
	return items
}

// numberedItems returns n items named item_000, item_001, ...
func numberedItems(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = newTestItem(fmt.Sprintf("item_%03d", i))
	}
	return items
}

// pairKeys returns the keys of a pair as [left, right].
func pairKeys(p Pair) []string {
	return []string{p.Left.Key(), p.Right.Key()}
}
