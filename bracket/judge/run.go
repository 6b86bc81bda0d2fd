package judge

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/photo-bracket/photo-bracket/bracket"
	"github.com/photo-bracket/photo-bracket/bracket/session"
)

// StopReason says why Run returned.
type StopReason string

const (
	StopExhausted StopReason = "exhausted"  // no pair left to judge
	StopTarget    StopReason = "target"     // pool shrank to Limits.Target
	StopMaxRounds StopReason = "max_rounds" // Limits.MaxRounds promotions happened
	StopMaxSteps  StopReason = "max_steps"  // Limits.MaxSteps decisions were made
)

// Limits bound a Run. Zero values mean no limit.
type Limits struct {
	Target        int  // stop once at most this many items survive
	MaxRounds     int  // stop after this many promotions
	MaxSteps      int  // stop after this many decisions
	ForceContinue bool // call IgnoreDone when a round ends without eliminations; requires MaxRounds
}

// Validate checks the limits for consistency.
func (l Limits) Validate() error {
	if l.Target < 0 || l.MaxRounds < 0 || l.MaxSteps < 0 {
		return errors.New("limits must be >= 0")
	}
	if l.ForceContinue && l.MaxRounds == 0 {
		return errors.New("force continue requires max rounds")
	}
	return nil
}

// Result summarizes a Run.
type Result struct {
	Reason    StopReason `json:"reason"`
	Decisions int        `json:"decisions"`
	Rounds    int        `json:"rounds"`
	Survivors []string   `json:"survivors"`
}

// alive counts the items still in play, including a displayed pair.
func alive(b *bracket.Bracket) int {
	n := b.Size()
	if _, ok := b.Displayed(); ok {
		n += 2
	}
	return n
}

// Run lets j judge s until a limit is hit or no pair remains.
func Run(ctx context.Context, s *session.Session, j Judge, limits Limits) (Result, error) {
	if err := limits.Validate(); err != nil {
		return Result{}, err
	}
	b := s.Bracket()
	res := Result{}
	logrus.Infof("judge: starting with %d items", alive(b))

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if limits.Target > 0 && alive(b) <= limits.Target {
			res.Reason = StopTarget
			break
		}
		if limits.MaxRounds > 0 && b.RoundCount() >= limits.MaxRounds {
			res.Reason = StopMaxRounds
			break
		}
		if limits.MaxSteps > 0 && res.Decisions >= limits.MaxSteps {
			res.Reason = StopMaxSteps
			break
		}

		p, ok, err := s.Next(ctx)
		if err != nil {
			return res, err
		}
		if !ok {
			if limits.ForceContinue && alive(b) > 1 && !b.Override() {
				logrus.Infof("[round %d] no eliminations; continuing", b.RoundCount())
				if err := s.IgnoreDone(ctx); err != nil {
					return res, err
				}
				continue
			}
			res.Reason = StopExhausted
			break
		}

		d := j.Judge(p)
		res.Decisions++
		logrus.Debugf("[round %d] %s vs %s: %s", b.RoundCount(), p.Left.Key(), p.Right.Key(), d)
		if d.Skip {
			if _, _, err := s.Requeue(ctx); err != nil {
				return res, fmt.Errorf("requeue: %w", err)
			}
			continue
		}
		if err := s.Decide(ctx, d.Verdict); err != nil {
			return res, err
		}
	}

	res.Rounds = b.RoundCount()
	survivors := b.AllItems()
	if p, ok := b.Displayed(); ok {
		survivors = append(survivors, p.Items()...)
	}
	bracket.SortItems(survivors)
	res.Survivors = bracket.Keys(survivors)
	logrus.Infof("judge: stopped (%s) after %d decisions, %d rounds, %d survivors",
		res.Reason, res.Decisions, res.Rounds, len(res.Survivors))
	return res, nil
}
