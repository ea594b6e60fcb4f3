package srs

import (
	"math"
	"time"

	"github.com/sahinakkaya/pawn-appetit/internal/domain"
)

// SM2 schedules reviews with the SuperMemo-2 algorithm. It exists
// mostly to keep the engine contract honest: anything that works with
// FSRS must work with it too. Ease factor is carried in the schedule's
// Difficulty field and the interval in ScheduledDays.
type SM2 struct {
	// Grades at or above this value count as a successful recall.
	PassThreshold domain.Grade
	// Longest allowed interval in days.
	MaxInterval int
	// Ease factor floor.
	MinEase float64
}

const sm2InitialEase = 2.5

// NewSM2 returns an SM2 engine with the canonical defaults.
func NewSM2() *SM2 {
	return &SM2{
		PassThreshold: domain.Good,
		MaxInterval:   365,
		MinEase:       1.3,
	}
}

// NewSchedule returns the state of a never-reviewed card.
func (e *SM2) NewSchedule() domain.Schedule {
	return domain.Schedule{Difficulty: sm2InitialEase}
}

// Repeat computes the four candidate outcomes for reviewing at now.
func (e *SM2) Repeat(s domain.Schedule, now time.Time) map[domain.Grade]Outcome {
	elapsed := elapsedDays(s, now)
	out := make(map[domain.Grade]Outcome, 4)
	for g := domain.Again; g <= domain.Easy; g++ {
		next := e.next(s, g, now)
		out[g] = Outcome{
			Schedule: next,
			Log: domain.LogEntry{
				Due:           next.Due,
				Rating:        g,
				ScheduledDays: next.ScheduledDays,
				ElapsedDays:   elapsed,
				State:         next.State,
				ReviewedAt:    now,
			},
		}
	}
	return out
}

func (e *SM2) next(s domain.Schedule, g domain.Grade, now time.Time) domain.Schedule {
	// Map the four grades onto SM-2's 0..5 quality scale: 2..5.
	quality := float64(g) + 1

	ease := s.Difficulty
	if ease == 0 {
		ease = sm2InitialEase
	}
	ease += 0.1 - (5-quality)*(0.08+(5-quality)*0.02)
	if ease < e.MinEase {
		ease = e.MinEase
	}

	interval := 1
	lapses := s.Lapses
	if g >= e.PassThreshold {
		switch {
		case s.Reps == 0 || s.ScheduledDays == 0:
			interval = 1
		case s.ScheduledDays == 1:
			interval = 6
		default:
			interval = int(float64(s.ScheduledDays) * ease)
		}
		if interval > e.MaxInterval {
			interval = e.MaxInterval
		}
	} else if s.Reps > 0 {
		lapses++
	}

	return domain.Schedule{
		Due:           now.Add(time.Duration(interval) * 24 * time.Hour),
		Stability:     float64(interval),
		Difficulty:    ease,
		ElapsedDays:   elapsedDays(s, now),
		ScheduledDays: uint64(interval),
		Reps:          s.Reps + 1,
		Lapses:        lapses,
		State:         2, // Review
		LastReview:    now,
	}
}

func elapsedDays(s domain.Schedule, now time.Time) uint64 {
	if s.LastReview.IsZero() {
		return 0
	}
	days := now.Sub(s.LastReview).Hours() / 24
	if days < 0 {
		return 0
	}
	return uint64(math.Floor(days))
}
