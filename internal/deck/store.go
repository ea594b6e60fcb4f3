package deck

import (
	"fmt"
	"time"

	"github.com/sahinakkaya/pawn-appetit/internal/domain"
	"github.com/sahinakkaya/pawn-appetit/internal/tree"
)

// Key identifies one deck: the repertoire file it came from (empty for
// ad-hoc decks) and the game index within that file. Distinct keys are
// fully independent decks.
type Key struct {
	File string `json:"file"`
	Game int    `json:"game"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s#%d", k.File, k.Game)
}

// Store holds one deck aggregate and applies all mutations to it.
// Every mutation swaps in a freshly built Positions/Logs pair, so a
// Deck value obtained from Deck() is never torn by later updates.
type Store struct {
	key       Key
	deck      domain.Deck
	scheduler *Scheduler
}

// NewStore returns an empty store for the given deck identity.
func NewStore(key Key, scheduler *Scheduler) *Store {
	return &Store{key: key, scheduler: scheduler}
}

// Key returns the deck's identity.
func (s *Store) Key() Key {
	return s.key
}

// Deck returns the current aggregate value.
func (s *Store) Deck() domain.Deck {
	return s.deck
}

// SetDeck installs a previously persisted aggregate, typically right
// after loading it from storage.
func (s *Store) SetDeck(d domain.Deck) {
	s.deck = d
}

// SeedIfEmpty builds the deck's positions from the tree if and only if
// the deck has none yet and the build yields at least one card. Logs
// are never touched by seeding. It reports whether seeding happened,
// and calling it again on a non-empty deck is a no-op.
func (s *Store) SeedIfEmpty(t *tree.Tree, side domain.Side, mastered tree.Path) bool {
	if len(s.deck.Positions) > 0 {
		return false
	}
	cards := Build(t, side, mastered, s.scheduler.Engine())
	if len(cards) == 0 {
		return false
	}
	s.deck = domain.Deck{Positions: cards, Logs: s.deck.Logs}
	return true
}

// Reset discards the deck's positions and logs and rebuilds the
// positions from the current tree. The result may be empty if the tree
// has no eligible candidates. Irreversible: callers must confirm with
// the user before invoking it.
func (s *Store) Reset(t *tree.Tree, side domain.Side, mastered tree.Path) {
	s.deck = domain.Deck{
		Positions: Build(t, side, mastered, s.scheduler.Engine()),
		Logs:      nil,
	}
}

// IndexOf returns the position index of the card with the given FEN.
func (s *Store) IndexOf(fen string) (int, bool) {
	for i, c := range s.deck.Positions {
		if c.FEN == fen {
			return i, true
		}
	}
	return 0, false
}

// GradeAt grades the card at index i and applies the outcome: the new
// schedule replaces the card's schedule and the log entry is appended.
// Both land in one aggregate swap, so readers see either the old deck
// or the fully updated one. An out-of-range index is a caller bug and
// returns ErrIndexOutOfRange.
func (s *Store) GradeAt(i int, grade domain.Grade, now time.Time) (domain.LogEntry, error) {
	if i < 0 || i >= len(s.deck.Positions) {
		return domain.LogEntry{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(s.deck.Positions))
	}

	schedule, entry, err := s.scheduler.Grade(s.deck.Positions[i], grade, now)
	if err != nil {
		return domain.LogEntry{}, err
	}

	positions := make([]domain.Card, len(s.deck.Positions))
	copy(positions, s.deck.Positions)
	positions[i].Schedule = schedule

	logs := make([]domain.LogEntry, len(s.deck.Logs), len(s.deck.Logs)+1)
	copy(logs, s.deck.Logs)
	logs = append(logs, entry)

	s.deck = domain.Deck{Positions: positions, Logs: logs}
	return entry, nil
}

// SkipAdvance grades the card at index i with the skip grade (Hard,
// without the user attempting the answer) and surfaces the next due
// card, if any.
func (s *Store) SkipAdvance(i int, now time.Time) (domain.Card, bool, error) {
	if _, err := s.GradeAt(i, domain.Hard, now); err != nil {
		return domain.Card{}, false, err
	}
	next, ok := s.scheduler.SelectNext(s.deck.Positions, now)
	return next, ok, nil
}

// SelectNext returns the first due card in deck order, if any.
func (s *Store) SelectNext(now time.Time) (domain.Card, bool) {
	return s.scheduler.SelectNext(s.deck.Positions, now)
}

// Stats summarizes the deck's scheduling state at now.
func (s *Store) Stats(now time.Time) domain.Stats {
	return ComputeStats(s.deck.Positions, now)
}
