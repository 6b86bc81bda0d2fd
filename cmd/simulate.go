package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/photo-bracket/photo-bracket/bracket"
	"github.com/photo-bracket/photo-bracket/bracket/journal"
	"github.com/photo-bracket/photo-bracket/bracket/judge"
	"github.com/photo-bracket/photo-bracket/bracket/photo"
	"github.com/photo-bracket/photo-bracket/bracket/session"
	"github.com/photo-bracket/photo-bracket/bracket/trace"
)

var (
	simItems   int    // Number of synthetic items
	simSeed    int64  // Master seed for the judge and shuffle subsystems
	simJudge   string // Judge kind: random or preference
	simJournal bool   // Journal the simulated session
)

// Judge kinds accepted by --judge.
const (
	judgeRandom     = "random"
	judgePreference = "preference"
)

// syntheticItem is a placeholder photo for simulations.
type syntheticItem string

func (s syntheticItem) Key() string { return string(s) }
func (s syntheticItem) Load() error { return nil }
func (s syntheticItem) Flush()      {}

// SimulationOutput is what simulate prints.
type SimulationOutput struct {
	Session string              `json:"session,omitempty"`
	Seed    int64               `json:"seed"`
	Judge   string              `json:"judge"`
	Items   int                 `json:"items"`
	Result  judge.Result        `json:"result"`
	Trace   *trace.TraceSummary `json:"trace"`
}

// simulateCmd drives a bracket with an automated judge
var simulateCmd = &cobra.Command{
	Use:   "simulate [DIR|FILE...]",
	Short: "Run a bracket with an automated judge and print a JSON summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		var items []bracket.Item
		switch {
		case len(args) > 0:
			photos, err := photo.Scan(args, cfg.Library.ScanOptions())
			if err != nil {
				return err
			}
			items = photo.Items(photos)
		case simItems > 0:
			items = syntheticItems(simItems)
		default:
			return errors.New("give --items N or at least one directory")
		}

		seed := cfg.Judge.Seed
		if cmd.Flags().Changed("seed") {
			seed = simSeed
		}
		ctx := cmd.Context()
		var store *journal.Store
		if simJournal {
			var err error
			if store, err = openJournal(ctx, cfg.Journal); err != nil {
				return err
			}
			defer store.Close()
		}
		out, err := runSimulation(ctx, items, seed, simJudge, cfg.Judge, store)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), out)
	},
}

func syntheticItems(n int) []bracket.Item {
	items := make([]bracket.Item, n)
	for i := range items {
		items[i] = syntheticItem(fmt.Sprintf("item_%04d", i))
	}
	return items
}

// runSimulation shuffles items, builds a session and lets the chosen judge
// run it to the configured limits.
func runSimulation(ctx context.Context, items []bracket.Item, seed int64, kind string, jc JudgeConfig, store *journal.Store) (*SimulationOutput, error) {
	streams := judge.NewStreams(seed)
	streams.ShuffleItems(items)

	var j judge.Judge
	switch kind {
	case judgeRandom:
		j = judge.NewRandom(streams.Stream(judge.StreamJudge), jc.Weights)
	case judgePreference:
		j = judge.NewPreference(streams.Scores(items))
	default:
		return nil, fmt.Errorf("unknown judge %q (want %s or %s)", kind, judgeRandom, judgePreference)
	}

	level := trace.TraceLevel(jc.Trace)
	if level == "" || level == trace.TraceLevelNone {
		level = trace.TraceLevelVerdicts
	}
	s, err := session.New(ctx, bracket.New(items...), store, "simulate", session.WithTraceLevel(level))
	if err != nil {
		return nil, err
	}
	logrus.Infof("simulate: %d items, seed %d, %s judge", len(items), seed, kind)

	res, err := judge.Run(ctx, s, j, jc.Limits())
	if err != nil {
		return nil, err
	}
	return &SimulationOutput{
		Session: s.ID(),
		Seed:    seed,
		Judge:   kind,
		Items:   len(items),
		Result:  res,
		Trace:   trace.Summarize(s.Trace()),
	}, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func init() {
	simulateCmd.Flags().IntVar(&simItems, "items", 0, "Number of synthetic items to judge")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 42, "Seed for verdicts and the initial shuffle (default: judge.seed)")
	simulateCmd.Flags().StringVar(&simJudge, "judge", judgeRandom, "Automated judge (random, preference)")
	simulateCmd.Flags().BoolVar(&simJournal, "journal", false, "Journal the simulated session")
}
