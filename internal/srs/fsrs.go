package srs

import (
	"time"

	fsrs "github.com/open-spaced-repetition/go-fsrs"

	"github.com/sahinakkaya/pawn-appetit/internal/domain"
)

// FSRS schedules reviews with the FSRS memory-strength model.
type FSRS struct {
	params fsrs.Parameters
}

// NewFSRS returns an FSRS engine with the library's default parameters.
func NewFSRS() *FSRS {
	return &FSRS{params: fsrs.DefaultParam()}
}

// NewFSRSWithRetention returns an FSRS engine tuned to the given desired
// retention rate (e.g. 0.9 for 90%).
func NewFSRSWithRetention(retention float64) *FSRS {
	params := fsrs.DefaultParam()
	params.RequestRetention = retention
	return &FSRS{params: params}
}

// NewSchedule returns the state of a never-reviewed card.
func (e *FSRS) NewSchedule() domain.Schedule {
	return fromFSRSCard(fsrs.NewCard())
}

// Repeat computes the four candidate outcomes for reviewing at now.
func (e *FSRS) Repeat(s domain.Schedule, now time.Time) map[domain.Grade]Outcome {
	table := e.params.Repeat(toFSRSCard(s), now)
	out := make(map[domain.Grade]Outcome, len(table))
	for rating, info := range table {
		out[domain.Grade(rating)] = Outcome{
			Schedule: fromFSRSCard(info.Card),
			Log: domain.LogEntry{
				Due:           info.Card.Due,
				Rating:        domain.Grade(info.ReviewLog.Rating),
				ScheduledDays: info.ReviewLog.ScheduledDays,
				ElapsedDays:   info.ReviewLog.ElapsedDays,
				State:         int(info.ReviewLog.State),
				ReviewedAt:    now,
			},
		}
	}
	return out
}

func toFSRSCard(s domain.Schedule) fsrs.Card {
	return fsrs.Card{
		Due:           s.Due,
		Stability:     s.Stability,
		Difficulty:    s.Difficulty,
		ElapsedDays:   s.ElapsedDays,
		ScheduledDays: s.ScheduledDays,
		Reps:          s.Reps,
		Lapses:        s.Lapses,
		State:         fsrs.State(s.State),
		LastReview:    s.LastReview,
	}
}

func fromFSRSCard(c fsrs.Card) domain.Schedule {
	return domain.Schedule{
		Due:           c.Due,
		Stability:     c.Stability,
		Difficulty:    c.Difficulty,
		ElapsedDays:   c.ElapsedDays,
		ScheduledDays: c.ScheduledDays,
		Reps:          c.Reps,
		Lapses:        c.Lapses,
		State:         int(c.State),
		LastReview:    c.LastReview,
	}
}
