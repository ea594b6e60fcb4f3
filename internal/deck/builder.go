// Package deck builds, schedules and stores chess opening practice
// decks. A deck is built once from a repertoire move tree, then advanced
// card by card as the user grades their recall of each position.
package deck

import (
	"github.com/sahinakkaya/pawn-appetit/internal/domain"
	"github.com/sahinakkaya/pawn-appetit/internal/srs"
	"github.com/sahinakkaya/pawn-appetit/internal/tree"
)

// Build scans the move tree and returns the initial practice cards for
// the given side, in traversal encounter order. A node becomes a card
// only if it has a continuation, its path is not a prefix of the
// mastered path, the continuation has a move notation, no earlier node
// already claimed its FEN, and it is the side's turn to move there.
//
// The prefix check is directional on purpose: a mastered path that is a
// prefix of a deeper candidate does not exclude that candidate.
//
// Build is pure and deterministic; engine is consulted only for the
// fresh scheduling state of each card.
func Build(t *tree.Tree, side domain.Side, mastered tree.Path, engine srs.Engine) []domain.Card {
	var cards []domain.Card
	seen := make(map[string]struct{})

	t.Walk(func(path tree.Path, n *tree.Node) bool {
		if len(n.Children) == 0 {
			return true
		}
		if path.IsPrefixOf(mastered) {
			return true
		}
		first := n.Children[0]
		if first.Move == "" {
			return true
		}
		if _, dup := seen[n.FEN]; dup {
			return true
		}
		if !side.ToMove(n.HalfMoves) {
			return true
		}

		seen[n.FEN] = struct{}{}
		cards = append(cards, domain.Card{
			FEN:      n.FEN,
			Answer:   first.Move,
			Schedule: engine.NewSchedule(),
		})
		return true
	})

	return cards
}
