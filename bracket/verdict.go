package bracket

import (
	"errors"
	"fmt"
)

// Verdict is the judge's outcome for a displayed pair.
type Verdict string

const (
	VerdictLeft    Verdict = "left"    // keep the left item
	VerdictRight   Verdict = "right"   // keep the right item
	VerdictBoth    Verdict = "both"    // keep both items
	VerdictNeither Verdict = "neither" // keep neither item
)

// validVerdicts maps accepted verdict strings.
var validVerdicts = map[Verdict]bool{
	VerdictLeft:    true,
	VerdictRight:   true,
	VerdictBoth:    true,
	VerdictNeither: true,
}

// ParseVerdict converts s to a Verdict.
func ParseVerdict(s string) (Verdict, error) {
	v := Verdict(s)
	if !validVerdicts[v] {
		return "", fmt.Errorf("unknown verdict %q", s)
	}
	return v, nil
}

// Kept returns the items of p that survive verdict v.
func (v Verdict) Kept(p Pair) []Item {
	switch v {
	case VerdictLeft:
		return []Item{p.Left}
	case VerdictRight:
		return []Item{p.Right}
	case VerdictBoth:
		return []Item{p.Left, p.Right}
	default:
		return nil
	}
}

// VerdictFor classifies which items of p were kept.
func VerdictFor(p Pair, kept []Item) Verdict {
	var left, right bool
	for _, it := range kept {
		switch it.Key() {
		case p.Left.Key():
			left = true
		case p.Right.Key():
			right = true
		}
	}
	switch {
	case left && right:
		return VerdictBoth
	case left:
		return VerdictLeft
	case right:
		return VerdictRight
	default:
		return VerdictNeither
	}
}

var (
	// ErrNoPairShown is returned when a verdict arrives while no pair is displayed.
	ErrNoPairShown = errors.New("no pair is displayed")
	// ErrTooManyItems is returned when a verdict names more than two items.
	ErrTooManyItems = errors.New("a verdict names at most two items")
	// ErrNotShown is returned when a verdict names an item that is not displayed.
	ErrNotShown = errors.New("item is not part of the displayed pair")
	// ErrDuplicateItem is returned when a verdict names the same item twice.
	ErrDuplicateItem = errors.New("item named twice")
	// ErrPartialRequeue is returned when a requeue names only one of the displayed items.
	ErrPartialRequeue = errors.New("requeue must return the whole displayed pair")
	// ErrNothingToUndo is returned by Undo when no verdict can be reversed.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrNothingToRedo is returned by Redo when no undone verdict remains.
	ErrNothingToRedo = errors.New("nothing to redo")
)
