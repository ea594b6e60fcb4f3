package deck

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sahinakkaya/pawn-appetit/internal/domain"
	"github.com/sahinakkaya/pawn-appetit/internal/srs"
)

var (
	// ErrInvalidGrade indicates a grade outside 1..4 (a caller bug).
	ErrInvalidGrade = errors.New("grade out of range")
	// ErrIndexOutOfRange indicates a card index outside the deck (a caller bug).
	ErrIndexOutOfRange = errors.New("card index out of range")
)

// Scheduler picks the next card to review and records grading outcomes
// through the injected spaced-repetition engine.
type Scheduler struct {
	engine srs.Engine
	rng    *rand.Rand
}

// NewScheduler returns a Scheduler backed by the given engine.
func NewScheduler(engine srs.Engine) *Scheduler {
	return &Scheduler{
		engine: engine,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Engine returns the injected engine, for callers that need fresh
// scheduling state (the deck builder).
func (s *Scheduler) Engine() srs.Engine {
	return s.engine
}

// SelectNext returns the first card in deck order whose due time has
// passed, or false if nothing is due. It deliberately keeps list order
// as the tie-break rather than earliest-due. cards is not mutated.
func (s *Scheduler) SelectNext(cards []domain.Card, now time.Time) (domain.Card, bool) {
	for _, c := range cards {
		if !c.Schedule.Due.After(now) {
			return c, true
		}
	}
	return domain.Card{}, false
}

// SelectRandom returns a uniformly random card from the full set,
// ignoring due state. Used by drill modes.
func (s *Scheduler) SelectRandom(cards []domain.Card) (domain.Card, bool) {
	if len(cards) == 0 {
		return domain.Card{}, false
	}
	return cards[s.rng.Intn(len(cards))], true
}

// Grade computes the card's next schedule and the log entry for grading
// it with grade at time now. The card itself is not modified; applying
// the result to a deck is the store's job.
func (s *Scheduler) Grade(card domain.Card, grade domain.Grade, now time.Time) (domain.Schedule, domain.LogEntry, error) {
	if !grade.Valid() {
		return domain.Schedule{}, domain.LogEntry{}, fmt.Errorf("%w: %d", ErrInvalidGrade, grade)
	}
	outcome, ok := s.engine.Repeat(card.Schedule, now)[grade]
	if !ok {
		return domain.Schedule{}, domain.LogEntry{}, fmt.Errorf("%w: engine returned no outcome for %d", ErrInvalidGrade, grade)
	}
	log := outcome.Log
	log.FEN = card.FEN
	return outcome.Schedule, log, nil
}

// ComputeStats summarizes the cards' scheduling state in a single pass.
// "now" is captured once by the caller so every card is judged against
// the same instant. An empty card set yields all-zero stats.
func ComputeStats(cards []domain.Card, now time.Time) domain.Stats {
	stats := domain.Stats{Total: len(cards)}
	for _, c := range cards {
		if c.Schedule.Reps == 0 {
			stats.Unseen++
			continue
		}
		if c.Schedule.Due.After(now) {
			stats.Practiced++
		} else {
			stats.Due++
		}
		if stats.NextDue == nil || c.Schedule.Due.Before(*stats.NextDue) {
			due := c.Schedule.Due
			stats.NextDue = &due
		}
	}
	return stats
}
