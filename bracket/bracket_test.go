package bracket

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBracket_FiveItemScenario walks the documented five-item example:
// one both-kept pair, one elimination, an odd leftover, then promotion.
func TestBracket_FiveItemScenario(t *testing.T) {
	items := testItems("A", "B", "C", "D", "E")
	b := New(items...)

	// first pair comes from the two ends
	p, ok := b.NextPair()
	require.True(t, ok)
	assert.Equal(t, []string{"A", "E"}, pairKeys(p))

	// keeping both leaves the override flag unset
	require.NoError(t, b.Selected(p.Left, p.Right))
	assert.False(t, b.Override())

	p, ok = b.NextPair()
	require.True(t, ok)
	assert.Equal(t, []string{"B", "D"}, pairKeys(p))

	// keeping one is an elimination
	require.NoError(t, b.Selected(p.Left))
	assert.True(t, b.Override())

	// C is alone: it is handed to winners and no pair comes back
	_, ok = b.NextPair()
	assert.False(t, ok)
	assert.Equal(t, 0, b.RoundSize())
	assert.Equal(t, 0, b.RoundCount())

	// the winners round can continue
	assert.True(t, b.HasNextPair())

	// the next request promotes {A, E, B, C}
	p, ok = b.NextPair()
	require.True(t, ok)
	assert.Equal(t, 1, b.RoundCount())
	assert.False(t, b.Override(), "promotion clears the override flag")
	assert.Equal(t, []string{"A", "C"}, pairKeys(p))
	assert.Equal(t, []string{"E", "B"}, Keys(b.CurrentItems()))
}

func TestBracket_NeverAdded(t *testing.T) {
	// GIVEN a bracket that never received an item
	b := New()

	// THEN it is empty and yields nothing
	assert.True(t, b.IsEmpty())
	assert.False(t, b.HasNextPair())
	_, ok := b.NextPair()
	assert.False(t, ok)
	assert.Equal(t, 0, b.Size())
}

func TestBracket_AddToEmpty(t *testing.T) {
	tests := []struct {
		name     string
		keys     []string
		wantPair bool
	}{
		{"one item", []string{"A"}, false},
		{"two items", []string{"A", "B"}, true},
		{"three items", []string{"A", "B", "C"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			b.Add(testItems(tt.keys...)...)
			assert.Equal(t, tt.wantPair, b.HasNextPair())
			assert.False(t, b.IsEmpty())
		})
	}
}

func TestBracket_IsEmptyAndHasNextPair_NeverBothTrue(t *testing.T) {
	for n := 0; n <= 9; n++ {
		b := New(numberedItems(n)...)
		for guard := 0; guard < 1000; guard++ {
			require.False(t, b.HasNextPair() && b.IsEmpty(), "n=%d step=%d", n, guard)
			if !b.HasNextPair() {
				break
			}
			if _, ok := b.NextPair(); ok {
				require.NoError(t, b.Decide(VerdictRight))
			}
		}
	}
}

// TestBracket_SingleElimination_VisitsEveryItemOnce checks that with one
// elimination per verdict every first-round item is presented at most once,
// the ones not presented were drained as leftovers, and the bracket ends
// with exactly one survivor.
func TestBracket_SingleElimination_VisitsEveryItemOnce(t *testing.T) {
	for n := 2; n <= 33; n++ {
		items := numberedItems(n)
		b := New(items...)
		presented := map[string]int{}

		steps := 0
		for b.HasNextPair() {
			steps++
			require.Less(t, steps, 10*n, "bracket did not terminate for n=%d", n)
			p, ok := b.NextPair()
			if !ok {
				continue
			}
			if b.RoundCount() == 0 {
				presented[p.Left.Key()]++
				presented[p.Right.Key()]++
			}
			require.NoError(t, b.Decide(VerdictLeft))
		}

		for _, it := range items {
			assert.LessOrEqual(t, presented[it.Key()], 1, "n=%d item %s", n, it.Key())
		}
		assert.Equal(t, n-n%2, len(presented), "n=%d: all but an odd leftover are presented in round 0", n)
		assert.Equal(t, 1, b.Size(), "n=%d", n)
		assert.Equal(t, bits.Len(uint(n-1))-1, b.RoundCount(), "n=%d", n)
	}
}

func TestBracket_NoElimination_StopsAtRoundBoundary(t *testing.T) {
	// GIVEN a round where every verdict keeps both items
	b := New(testItems("A", "B", "C", "D")...)
	for b.HasNextPair() {
		_, ok := b.NextPair()
		require.True(t, ok)
		require.NoError(t, b.Decide(VerdictBoth))
	}

	// THEN the bracket stops without promoting
	_, ok := b.NextPair()
	assert.False(t, ok)
	assert.Equal(t, 0, b.RoundCount())
	assert.Equal(t, 4, b.Size())
	assert.False(t, b.IsEmpty())

	// WHEN the judge overrides
	b.IgnoreDone()

	// THEN the winners round is promoted and pairing resumes
	assert.True(t, b.HasNextPair())
	p, ok := b.NextPair()
	require.True(t, ok)
	assert.Equal(t, 1, b.RoundCount())
	assert.Equal(t, []string{"A", "C"}, pairKeys(p))
}

func TestBracket_Promotion_OnlyWhenExhaustedAndOverridden(t *testing.T) {
	// GIVEN a bracket with the override flag set while pairs remain
	b := New(testItems("A", "B", "C", "D")...)
	b.IgnoreDone()

	// WHEN the round is played out
	_, _ = b.NextPair()
	require.NoError(t, b.Decide(VerdictLeft))
	_, _ = b.NextPair()

	// THEN no promotion happened while the round still had items
	assert.Equal(t, 0, b.RoundCount())
	require.NoError(t, b.Decide(VerdictLeft))

	// AND the first request after exhaustion promotes exactly once
	p, ok := b.NextPair()
	require.True(t, ok)
	assert.Equal(t, 1, b.RoundCount())
	assert.Equal(t, []string{"A", "B"}, pairKeys(p))
	require.NoError(t, b.Decide(VerdictBoth))

	// AND a round that eliminated nothing is not promoted again
	_, ok = b.NextPair()
	assert.False(t, ok)
	assert.Equal(t, 1, b.RoundCount())
}

func TestBracket_AllItems_IsCurrentPlusWinners(t *testing.T) {
	b := New(numberedItems(7)...)
	for step := 0; step < 20 && b.HasNextPair(); step++ {
		if _, ok := b.NextPair(); ok {
			require.NoError(t, b.Decide(VerdictLeft))
		}

		all := b.AllItems()
		assert.Equal(t, len(b.CurrentItems())+b.WinnersSize(), len(all))
		seen := map[string]bool{}
		for _, it := range all {
			assert.False(t, seen[it.Key()], "duplicate %s", it.Key())
			seen[it.Key()] = true
		}
		assert.Equal(t, b.Size(), len(all))
	}
}

func TestBracket_NextPair_RepeatsUntilJudged(t *testing.T) {
	b := New(testItems("A", "B", "C", "D")...)
	p1, _ := b.NextPair()
	p2, _ := b.NextPair()
	assert.Equal(t, pairKeys(p1), pairKeys(p2))
	assert.Equal(t, 2, b.RoundSize())

	shown, ok := b.Displayed()
	require.True(t, ok)
	assert.Equal(t, pairKeys(p1), pairKeys(shown))
}

func TestBracket_Selected_RejectsBadInput(t *testing.T) {
	b := New(testItems("A", "B", "C", "D")...)

	// nothing displayed yet
	assert.ErrorIs(t, b.Selected(), ErrNoPairShown)

	p, ok := b.NextPair()
	require.True(t, ok)
	other := newTestItem("C")

	tests := []struct {
		name  string
		items []Item
		want  error
	}{
		{"too many", []Item{p.Left, p.Right, p.Left}, ErrTooManyItems},
		{"not shown", []Item{other}, ErrNotShown},
		{"duplicate", []Item{p.Left, p.Left}, ErrDuplicateItem},
		{"nil", []Item{nil}, ErrNotShown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.Selected(tt.items...)
			assert.ErrorIs(t, err, tt.want)

			// rejected input changes nothing
			shown, ok := b.Displayed()
			assert.True(t, ok)
			assert.Equal(t, pairKeys(p), pairKeys(shown))
			assert.Equal(t, 0, b.WinnersSize())
			assert.False(t, b.Override())
		})
	}
}

func TestBracket_Selected_Zero_EliminatesBoth(t *testing.T) {
	b := New(testItems("A", "B", "C")...)
	_, _ = b.NextPair()
	require.NoError(t, b.Selected())
	assert.True(t, b.Override())
	assert.Equal(t, 0, b.WinnersSize())
	assert.Equal(t, []string{"B"}, Keys(b.AllItems()))
}

func TestBracket_Decide(t *testing.T) {
	tests := []struct {
		verdict      Verdict
		wantWinners  []string
		wantOverride bool
	}{
		{VerdictLeft, []string{"A"}, true},
		{VerdictRight, []string{"D"}, true},
		{VerdictBoth, []string{"A", "D"}, false},
		{VerdictNeither, []string{}, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.verdict), func(t *testing.T) {
			b := New(testItems("A", "B", "C", "D")...)
			_, _ = b.NextPair()
			require.NoError(t, b.Decide(tt.verdict))
			assert.Equal(t, tt.wantWinners, Keys(b.current.winners.Snapshot()))
			assert.Equal(t, tt.wantOverride, b.Override())
		})
	}

	b := New(testItems("A", "B")...)
	assert.ErrorIs(t, b.Decide(VerdictLeft), ErrNoPairShown)
	_, _ = b.NextPair()
	assert.Error(t, b.Decide(Verdict("sideways")))
}

func TestBracket_Requeue_ReturnsPairToPool(t *testing.T) {
	// GIVEN a displayed pair (A, D) from [A, B, C, D]
	b := New(testItems("A", "B", "C", "D")...)
	_, _ = b.NextPair()

	// WHEN the judge asks for different pictures
	p, ok, err := b.Requeue()

	// THEN A and D go to the back and the next pair is drawn from [B, C, A, D]
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"B", "D"}, pairKeys(p))
	assert.Equal(t, []string{"C", "A"}, Keys(b.CurrentItems()))
	assert.False(t, b.Override(), "requeue is not an elimination")
	assert.Equal(t, 0, b.WinnersSize())
}

func TestBracket_Requeue_Validation(t *testing.T) {
	b := New(testItems("A", "B", "C", "D")...)

	_, _, err := b.Requeue()
	assert.ErrorIs(t, err, ErrNoPairShown)

	p, _ := b.NextPair()
	_, _, err = b.Requeue(p.Left)
	assert.ErrorIs(t, err, ErrPartialRequeue)

	_, _, err = b.Requeue(newTestItem("B"), p.Left)
	assert.ErrorIs(t, err, ErrNotShown)

	// explicit full pair in either order is accepted
	_, ok, err := b.Requeue(p.Right, p.Left)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBracket_IgnoreDone_OnEmptyBracket(t *testing.T) {
	b := New()
	b.IgnoreDone()
	assert.False(t, b.HasNextPair())
	_, ok := b.NextPair()
	assert.False(t, ok)
	assert.Equal(t, 0, b.RoundCount())
	assert.True(t, b.IsEmpty())
}

func TestBracket_AllEliminated_DoesNotPromoteEmptyRound(t *testing.T) {
	b := New(testItems("A", "B")...)
	_, _ = b.NextPair()
	require.NoError(t, b.Decide(VerdictNeither))

	assert.False(t, b.HasNextPair())
	_, ok := b.NextPair()
	assert.False(t, ok)
	assert.Equal(t, 0, b.RoundCount())
	assert.Equal(t, 0, b.Size())
	assert.False(t, b.IsEmpty(), "a bracket that held items is exhausted, not empty")
}

func TestSortItems_OrdersByKey(t *testing.T) {
	items := testItems("C", "A", "B")
	assert.True(t, Less(items[1], items[0]))
	assert.False(t, Less(items[0], items[0]))

	SortItems(items)

	assert.Equal(t, []string{"A", "B", "C"}, Keys(items))
}
