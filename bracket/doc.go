// Package bracket provides the elimination scheduler for photo-bracket.
//
// # Reading Guide
//
// Start with these files to understand the scheduler:
//   - item.go: the Item handle and Pair
//   - round.go: one elimination level (pending pool + lazily created winners)
//   - bracket.go: round-to-round state machine and the override flag
//
// # Rounds and promotion
//
// A Round hands out pairs from the two ends of its pool. Survivors of each
// verdict go to the round's winners. When the current round runs dry the
// winners round is promoted, but only if the round eliminated something (a
// verdict that kept one or zero items) or the judge called IgnoreDone.
// Otherwise the bracket stops instead of replaying an unchanged round.
//
// # Sub-packages
//   - bracket/photo: Item implementation backed by image files
//   - bracket/trace: verdict and round records
//   - bracket/journal: SQL journal of session operations
//   - bracket/session: journaled, traced, replayable sessions
//   - bracket/judge: automated judges and the run loop used by simulate
package bracket
