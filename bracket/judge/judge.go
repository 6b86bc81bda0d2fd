// Package judge provides automated judges and the loop that drives a
// session with one. They stand in for a person in simulations and tests.
package judge

import (
	"fmt"
	"math/rand"

	"github.com/photo-bracket/photo-bracket/bracket"
)

// Decision is a judge's answer for one pair: a verdict, or a skip that
// sends the pair back to the pool.
type Decision struct {
	Verdict bracket.Verdict
	Skip    bool
}

// Skip is the Decision that requeues the pair.
var Skip = Decision{Skip: true}

// Keep returns the Decision for verdict v.
func Keep(v bracket.Verdict) Decision {
	return Decision{Verdict: v}
}

func (d Decision) String() string {
	if d.Skip {
		return "skip"
	}
	return string(d.Verdict)
}

// Judge decides a displayed pair.
type Judge interface {
	Judge(p bracket.Pair) Decision
}

// Func adapts a function to Judge.
type Func func(p bracket.Pair) Decision

// Judge calls f(p).
func (f Func) Judge(p bracket.Pair) Decision { return f(p) }

// Weights are the relative odds of each decision for a Random judge.
type Weights struct {
	Left    float64 `yaml:"left"`
	Right   float64 `yaml:"right"`
	Both    float64 `yaml:"both"`
	Neither float64 `yaml:"neither"`
	Skip    float64 `yaml:"skip"`
}

// DefaultWeights favors single-survivor verdicts.
var DefaultWeights = Weights{Left: 0.35, Right: 0.35, Both: 0.1, Neither: 0.1, Skip: 0.1}

// Validate checks that every weight is non-negative and that at least one
// verdict weight is positive. Skip alone never finishes a bracket.
func (w Weights) Validate() error {
	for _, nw := range w.named() {
		if nw.value < 0 {
			return fmt.Errorf("weight %s must be >= 0, got %g", nw.name, nw.value)
		}
	}
	if w.Left+w.Right+w.Both+w.Neither <= 0 {
		return fmt.Errorf("at least one of left, right, both or neither must be positive")
	}
	return nil
}

type namedWeight struct {
	name  string
	value float64
}

func (w Weights) named() []namedWeight {
	return []namedWeight{
		{"left", w.Left}, {"right", w.Right}, {"both", w.Both}, {"neither", w.Neither}, {"skip", w.Skip},
	}
}

// Random draws decisions with fixed odds.
type Random struct {
	rng     *rand.Rand
	weights Weights
	total   float64
}

// NewRandom creates a Random judge. Invalid weights fall back to DefaultWeights.
func NewRandom(rng *rand.Rand, w Weights) *Random {
	if w.Validate() != nil {
		w = DefaultWeights
	}
	return &Random{
		rng:     rng,
		weights: w,
		total:   w.Left + w.Right + w.Both + w.Neither + w.Skip,
	}
}

// Judge draws a decision; the pair itself is ignored.
func (r *Random) Judge(bracket.Pair) Decision {
	x := r.rng.Float64() * r.total
	steps := []struct {
		weight float64
		d      Decision
	}{
		{r.weights.Left, Keep(bracket.VerdictLeft)},
		{r.weights.Right, Keep(bracket.VerdictRight)},
		{r.weights.Both, Keep(bracket.VerdictBoth)},
		{r.weights.Neither, Keep(bracket.VerdictNeither)},
		{r.weights.Skip, Skip},
	}
	for _, s := range steps {
		if x < s.weight {
			return s.d
		}
		x -= s.weight
	}
	return Keep(bracket.VerdictLeft)
}

// Preference keeps the higher-scored item of each pair and both on ties.
// Items without a score count as zero.
type Preference struct {
	scores map[string]float64
}

// NewPreference creates a Preference judge over scores keyed by item key.
func NewPreference(scores map[string]float64) *Preference {
	return &Preference{scores: scores}
}

// Judge compares the scores of the pair.
func (p *Preference) Judge(pair bracket.Pair) Decision {
	l, r := p.scores[pair.Left.Key()], p.scores[pair.Right.Key()]
	switch {
	case l > r:
		return Keep(bracket.VerdictLeft)
	case r > l:
		return Keep(bracket.VerdictRight)
	default:
		return Keep(bracket.VerdictBoth)
	}
}
