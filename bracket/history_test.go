package bracket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBracket_Undo_RestoresPairAndPool(t *testing.T) {
	// GIVEN [A..F]; (A, F) judged left, (B, E) now displayed
	b := New(testItems("A", "B", "C", "D", "E", "F")...)
	_, _ = b.NextPair()
	require.NoError(t, b.Decide(VerdictLeft))
	_, _ = b.NextPair()
	require.True(t, b.Override())

	// WHEN the verdict is undone
	p, err := b.Undo()

	// THEN (A, F) is displayed again, (B, E) is back in the pool in place,
	// winners is empty, and the override flag is restored
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "F"}, pairKeys(p))
	shown, ok := b.Displayed()
	require.True(t, ok)
	assert.Equal(t, []string{"A", "F"}, pairKeys(shown))
	assert.Equal(t, []string{"B", "C", "D", "E"}, Keys(b.CurrentItems()))
	assert.Equal(t, 0, b.WinnersSize())
	assert.False(t, b.Override())
	assert.False(t, b.CanUndo())
	assert.True(t, b.CanRedo())
}

func TestBracket_Redo_ReappliesVerdict(t *testing.T) {
	b := New(testItems("A", "B", "C", "D", "E", "F")...)
	_, _ = b.NextPair()
	require.NoError(t, b.Decide(VerdictLeft))
	_, _ = b.NextPair()
	_, err := b.Undo()
	require.NoError(t, err)

	// WHEN the verdict is redone
	p, ok, err := b.Redo()

	// THEN A is kept again and (B, E) is displayed next
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"B", "E"}, pairKeys(p))
	assert.Equal(t, 1, b.WinnersSize())
	assert.True(t, b.Override())
	assert.True(t, b.CanUndo())
	assert.False(t, b.CanRedo())
}

func TestBracket_UndoTwice_ThenRedoTwice(t *testing.T) {
	b := New(testItems("A", "B", "C", "D", "E", "F")...)
	_, _ = b.NextPair()
	require.NoError(t, b.Decide(VerdictBoth))
	_, _ = b.NextPair()
	require.NoError(t, b.Decide(VerdictRight))
	_, _ = b.NextPair() // (C, D)

	p, err := b.Undo()
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "E"}, pairKeys(p))
	p, err = b.Undo()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "F"}, pairKeys(p))
	assert.Equal(t, []string{"B", "C", "D", "E"}, Keys(b.CurrentItems()))

	_, err = b.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)

	p, _, err = b.Redo()
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "E"}, pairKeys(p))
	p, _, err = b.Redo()
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "D"}, pairKeys(p))
	assert.Equal(t, []string{"A", "F", "E"}, Keys(b.current.winners.Snapshot()))

	_, _, err = b.Redo()
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestBracket_NewVerdict_ClearsRedo(t *testing.T) {
	b := New(testItems("A", "B", "C", "D")...)
	_, _ = b.NextPair()
	require.NoError(t, b.Decide(VerdictLeft))
	_, _ = b.NextPair()
	_, err := b.Undo()
	require.NoError(t, err)
	require.True(t, b.CanRedo())

	require.NoError(t, b.Decide(VerdictRight))
	assert.False(t, b.CanRedo())
}

func TestBracket_Promotion_ClearsHistory(t *testing.T) {
	b := New(testItems("A", "B", "C", "D")...)
	_, _ = b.NextPair()
	require.NoError(t, b.Decide(VerdictLeft))
	_, _ = b.NextPair()
	require.NoError(t, b.Decide(VerdictLeft))
	require.True(t, b.CanUndo())

	// WHEN the next pair crosses into round 1
	_, ok := b.NextPair()
	require.True(t, ok)
	require.Equal(t, 1, b.RoundCount())

	// THEN earlier verdicts cannot be undone
	assert.False(t, b.CanUndo())
	_, err := b.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestBracket_Undo_ReturnsDrainedLeftoverToPool(t *testing.T) {
	// GIVEN [A, B, C]; (A, C) judged left, then NextPair hands B to winners
	b := New(testItems("A", "B", "C")...)
	_, _ = b.NextPair()
	require.NoError(t, b.Decide(VerdictLeft))
	_, ok := b.NextPair()
	require.False(t, ok)
	require.Equal(t, 2, b.WinnersSize())
	require.Equal(t, 0, b.RoundSize())

	// WHEN the verdict is undone
	p, err := b.Undo()

	// THEN (A, C) is displayed again and B is pending, not a winner
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, pairKeys(p))
	assert.Equal(t, []string{"B"}, Keys(b.CurrentItems()))
	assert.Equal(t, 0, b.WinnersSize())
	assert.False(t, b.CanUndo())

	// AND a requeue pairs B at this level
	p, ok, err = b.Requeue()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, pairKeys(p), "B")
}

func TestBracket_Redo_DrainsLeftoverAgain(t *testing.T) {
	b := New(testItems("A", "B", "C")...)
	_, _ = b.NextPair()
	require.NoError(t, b.Decide(VerdictLeft))
	_, _ = b.NextPair()
	_, err := b.Undo()
	require.NoError(t, err)

	_, ok, err := b.Redo()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, b.WinnersSize())
	assert.Equal(t, 0, b.RoundSize())

	// undo reverses the redone verdict and its drain together
	_, err = b.Undo()
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, Keys(b.CurrentItems()))
	assert.Equal(t, 0, b.WinnersSize())
}
