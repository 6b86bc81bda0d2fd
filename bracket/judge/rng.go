package judge

import (
	"hash/fnv"
	"math/rand"

	"github.com/photo-bracket/photo-bracket/bracket"
)

// Stream names. Each stream has its own *rand.Rand so that, for example,
// shuffling a larger pool never shifts the verdicts drawn for a seed.
const (
	StreamJudge   = "judge"   // verdict draws; seeded with the run seed itself
	StreamShuffle = "shuffle" // initial pool order
	StreamScores  = "scores"  // hidden item scores for a Preference judge
)

// Streams hands out one deterministic random stream per purpose for a run
// seed. Streams other than StreamJudge are seeded with seed XOR fnv1a(name).
//
// NOT thread-safe.
type Streams struct {
	seed int64
	rngs map[string]*rand.Rand
}

// NewStreams creates the streams for seed.
func NewStreams(seed int64) *Streams {
	return &Streams{seed: seed, rngs: make(map[string]*rand.Rand)}
}

// Stream returns the cached generator for name, creating it on first use.
func (s *Streams) Stream(name string) *rand.Rand {
	if rng, ok := s.rngs[name]; ok {
		return rng
	}
	derived := s.seed
	if name != StreamJudge {
		h := fnv.New64a()
		h.Write([]byte(name))
		derived ^= int64(h.Sum64())
	}
	rng := rand.New(rand.NewSource(derived))
	s.rngs[name] = rng
	return rng
}

// ShuffleItems permutes items in place.
func (s *Streams) ShuffleItems(items []bracket.Item) {
	s.Stream(StreamShuffle).Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
}

// Scores draws a score in [0,1) for every item, in item order.
func (s *Streams) Scores(items []bracket.Item) map[string]float64 {
	r := s.Stream(StreamScores)
	scores := make(map[string]float64, len(items))
	for _, it := range items {
		scores[it.Key()] = r.Float64()
	}
	return scores
}
