// Package srs defines the spaced-repetition engine contract and the
// engines that implement it. The scheduler depends only on this
// contract: given a schedule and a review time, an engine produces one
// candidate outcome per grade, and the caller picks the branch for the
// grade that was actually given.
package srs

import (
	"time"

	"github.com/sahinakkaya/pawn-appetit/internal/domain"
)

// Outcome is one branch of the four-outcome table: the schedule a card
// would move to and the log record of the review. The engine leaves the
// log's FEN empty; the caller tags it with the graded card.
type Outcome struct {
	Schedule domain.Schedule
	Log      domain.LogEntry
}

// Engine computes scheduling state transitions.
type Engine interface {
	// NewSchedule returns the state for a card that has never been
	// reviewed: zero repetitions, immediately due.
	NewSchedule() domain.Schedule

	// Repeat deterministically computes, for each of the four grades,
	// the outcome of reviewing a card with schedule s at time now.
	Repeat(s domain.Schedule, now time.Time) map[domain.Grade]Outcome
}
