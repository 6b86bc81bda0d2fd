// Package trace records what happened during a bracket session: each pair
// presented, each verdict, each requeue and each round promotion.
// This package has no dependencies on bracket/; it stores pure data types.
package trace

// VerdictRecord captures a single verdict on a displayed pair.
type VerdictRecord struct {
	Step    int      // session step at which the verdict arrived
	Round   int      // bracket round count at the time
	Left    string   // key of the left item
	Right   string   // key of the right item
	Verdict string   // "left", "right", "both", "neither"
	Kept    []string // keys that survived into winners
}

// RequeueRecord captures a pair sent back to the pool without a verdict.
type RequeueRecord struct {
	Step  int
	Round int
	Left  string
	Right string
}

// RoundRecord captures a round transition.
type RoundRecord struct {
	Step  int
	Round int // round count after the promotion
	Size  int // items pending in the new round
}

// UndoRecord captures an undo or redo of a verdict.
type UndoRecord struct {
	Step  int
	Round int
	Redo  bool
	Left  string
	Right string
}
