package domain

import "time"

// Deck is the persisted aggregate for one repertoire game: the practice
// positions in first-encountered order and the chronological grading
// history. Updates replace the whole value rather than mutating slices
// in place, so a Deck held by a reader stays consistent.
type Deck struct {
	Positions []Card     `json:"positions"`
	Logs      []LogEntry `json:"logs"`
}

// Stats summarizes a deck's scheduling state at a point in time.
// It is derived, never persisted.
type Stats struct {
	Unseen    int        `json:"unseen"`
	Due       int        `json:"due"`
	Practiced int        `json:"practiced"`
	Total     int        `json:"total"`
	NextDue   *time.Time `json:"nextDue,omitempty"`
}
