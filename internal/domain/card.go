package domain

import "time"

// Side is the color the user practices as.
type Side string

const (
	White Side = "white"
	Black Side = "black"
)

// ToMove reports whether this side is to move at the given ply.
// Even plies are White-to-move positions, odd plies Black-to-move.
func (s Side) ToMove(halfMoves int) bool {
	if s == Black {
		return halfMoves%2 == 1
	}
	return halfMoves%2 == 0
}

// Grade is the user's response to a card review.
// The values correspond to FSRS ratings:
// 1: Again (incorrect)
// 2: Hard (also used for "skip")
// 3: Good
// 4: Easy (fully correct, unaided)
type Grade int

const (
	Again Grade = 1
	Hard  Grade = 2
	Good  Grade = 3
	Easy  Grade = 4
)

// Valid reports whether g is one of the four defined grades.
func (g Grade) Valid() bool {
	return g >= Again && g <= Easy
}

// Schedule is a card's scheduling state. The engine owns these fields;
// the rest of the code only inspects Reps (zero vs non-zero) and Due.
type Schedule struct {
	Due           time.Time `json:"due"`
	Stability     float64   `json:"stability"`
	Difficulty    float64   `json:"difficulty"`
	ElapsedDays   uint64    `json:"elapsedDays"`
	ScheduledDays uint64    `json:"scheduledDays"`
	Reps          uint64    `json:"reps"`
	Lapses        uint64    `json:"lapses"`
	State         int       `json:"state"`
	LastReview    time.Time `json:"lastReview"`
}

// Card is a single practice unit: the position to show and the expected
// continuation. FEN values are unique within a deck, and Answer never
// changes after the card is built.
type Card struct {
	FEN      string   `json:"fen"`
	Answer   string   `json:"answer"`
	Schedule Schedule `json:"schedule"`
}

// LogEntry records a single grading event. Entries are only ever
// appended, never mutated or deleted.
type LogEntry struct {
	FEN           string    `json:"fen"`
	Due           time.Time `json:"due"`
	Rating        Grade     `json:"rating"`
	ScheduledDays uint64    `json:"scheduledDays"`
	ElapsedDays   uint64    `json:"elapsedDays"`
	State         int       `json:"state"`
	ReviewedAt    time.Time `json:"reviewedAt"`
}
