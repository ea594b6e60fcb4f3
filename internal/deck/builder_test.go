package deck

import (
	"testing"

	"github.com/sahinakkaya/pawn-appetit/internal/domain"
	"github.com/sahinakkaya/pawn-appetit/internal/srs"
	"github.com/sahinakkaya/pawn-appetit/internal/tree"
)

func node(fen, move string, halfMoves int, children ...*tree.Node) *tree.Node {
	return &tree.Node{FEN: fen, Move: move, HalfMoves: halfMoves, Children: children}
}

// mainline builds a single line of the given length: the node at ply i
// has fen "p<i>" and one child reached by move "m<i+1>".
func mainline(plies int) *tree.Tree {
	var build func(ply int) *tree.Node
	build = func(ply int) *tree.Node {
		n := node(fenAt(ply), moveAt(ply), ply)
		if ply < plies {
			n.Children = []*tree.Node{build(ply + 1)}
		}
		return n
	}
	return tree.New(build(0))
}

func fenAt(ply int) string  { return "p" + string(rune('0'+ply)) }
func moveAt(ply int) string { return "m" + string(rune('0'+ply)) }

func TestBuildParityFilter(t *testing.T) {
	engine := srs.NewFSRS()
	// Plies 0..4; nodes 0..3 have children. With an empty mastered path
	// the root (ply 0) is excluded as the mastered position itself.
	tr := mainline(4)

	t.Run("white", func(t *testing.T) {
		cards := Build(tr, domain.White, tree.Path{}, engine)
		if len(cards) != 1 {
			t.Fatalf("Expected 1 white card, got %d", len(cards))
		}
		if cards[0].FEN != fenAt(2) {
			t.Errorf("Expected card at ply 2, got %s", cards[0].FEN)
		}
	})

	t.Run("black", func(t *testing.T) {
		cards := Build(tr, domain.Black, tree.Path{}, engine)
		if len(cards) != 2 {
			t.Fatalf("Expected 2 black cards, got %d", len(cards))
		}
		if cards[0].FEN != fenAt(1) || cards[1].FEN != fenAt(3) {
			t.Errorf("Expected cards at plies 1 and 3, got %s and %s", cards[0].FEN, cards[1].FEN)
		}
	})
}

func TestBuildCardShape(t *testing.T) {
	engine := srs.NewFSRS()
	tr := mainline(4)

	cards := Build(tr, domain.Black, tree.Path{}, engine)
	if len(cards) == 0 {
		t.Fatal("Expected at least one card")
	}

	card := cards[0]
	if card.FEN != fenAt(1) {
		t.Errorf("Expected fen %s, got %s", fenAt(1), card.FEN)
	}
	// The answer is the first child's move notation.
	if card.Answer != moveAt(2) {
		t.Errorf("Expected answer %s, got %s", moveAt(2), card.Answer)
	}
	if card.Schedule.Reps != 0 {
		t.Errorf("Expected a fresh schedule with 0 reps, got %d", card.Schedule.Reps)
	}
}

func TestBuildMasteredPrefixExclusion(t *testing.T) {
	engine := srs.NewFSRS()
	// Line of plies 0..6: white branch points at plies 0, 2, 4 have
	// children (6 is the leaf's parent at odd ply).
	tr := mainline(6)

	testCases := []struct {
		name     string
		mastered tree.Path
		expected []string
	}{
		{
			name:     "empty mastered excludes only the root",
			mastered: tree.Path{},
			expected: []string{fenAt(2), fenAt(4)},
		},
		{
			name:     "mastered through ply 2 excludes plies 0 and 2",
			mastered: tree.Path{0, 0},
			expected: []string{fenAt(4)},
		},
		{
			// The check is directional: a mastered path that is a prefix
			// of a deeper candidate must NOT exclude that candidate.
			name:     "deeper candidates survive a shallow mastered path",
			mastered: tree.Path{0},
			expected: []string{fenAt(2), fenAt(4)},
		},
		{
			name:     "mastered beyond all candidates excludes everything on the line",
			mastered: tree.Path{0, 0, 0, 0, 0, 0},
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cards := Build(tr, domain.White, tc.mastered, engine)
			if len(cards) != len(tc.expected) {
				t.Fatalf("Expected %d cards, got %d", len(tc.expected), len(cards))
			}
			for i, fen := range tc.expected {
				if cards[i].FEN != fen {
					t.Errorf("Expected card %d to be %s, got %s", i, fen, cards[i].FEN)
				}
			}
		})
	}
}

func TestBuildSkipsLeaves(t *testing.T) {
	engine := srs.NewFSRS()
	tr := tree.New(node("root", "", 0)) // a root with no continuation

	if cards := Build(tr, domain.White, tree.Path{0}, engine); len(cards) != 0 {
		t.Errorf("Expected no cards from a childless tree, got %d", len(cards))
	}
}

func TestBuildSkipsEmptyMoveNotation(t *testing.T) {
	engine := srs.NewFSRS()
	tr := tree.New(node("root", "", 0,
		node("a", "e4", 1,
			node("b", "", 2, // continuation has no notation: "a" not quizzable
				node("c", "e5", 3)))))

	cards := Build(tr, domain.Black, tree.Path{}, engine)
	if len(cards) != 0 {
		t.Errorf("Expected no cards when the continuation has no notation, got %d", len(cards))
	}
}

func TestBuildDeduplicatesTranspositions(t *testing.T) {
	engine := srs.NewFSRS()
	// Two different move orders reach the same position "same".
	tr := tree.New(node("root", "", 0,
		node("x", "e4", 1,
			node("same", "d4", 2,
				node("y", "e5", 3))),
		node("z", "d4", 1,
			node("same", "e4", 2,
				node("y2", "d5", 3))),
	))

	cards := Build(tr, domain.White, tree.Path{}, engine)

	seen := make(map[string]int)
	for _, c := range cards {
		seen[c.FEN]++
	}
	for fen, count := range seen {
		if count > 1 {
			t.Errorf("Expected unique fens, got %d cards for %s", count, fen)
		}
	}
	if seen["same"] != 1 {
		t.Errorf("Expected exactly one card for the transposed position, got %d", seen["same"])
	}
}

func TestBuildDeterministic(t *testing.T) {
	engine := srs.NewSM2()
	tr := mainline(6)

	first := Build(tr, domain.White, tree.Path{}, engine)
	second := Build(tr, domain.White, tree.Path{}, engine)

	if len(first) != len(second) {
		t.Fatalf("Expected identical builds, got %d and %d cards", len(first), len(second))
	}
	for i := range first {
		if first[i].FEN != second[i].FEN || first[i].Answer != second[i].Answer {
			t.Errorf("Card %d differs between builds: %+v vs %+v", i, first[i], second[i])
		}
	}
}
