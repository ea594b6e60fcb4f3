package sync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sahinakkaya/pawn-appetit/internal/deck"
	"github.com/sahinakkaya/pawn-appetit/internal/srs"
	"github.com/sahinakkaya/pawn-appetit/internal/storage"
)

const repertoireJSON = `{"games":[
	{"side":"white","root":{"fen":"start","children":[
		{"fen":"p1","san":"e4","halfMoves":1,"children":[
			{"fen":"p2","san":"e5","halfMoves":2,"children":[
				{"fen":"p3","san":"Nf3","halfMoves":3}
			]}
		]}
	]}},
	{"side":"black","root":{"fen":"start","children":[
		{"fen":"q1","san":"d4","halfMoves":1,"children":[
			{"fen":"q2","san":"d5","halfMoves":2}
		]}
	]}}
]}`

func TestRunSeedsLocalSources(t *testing.T) {
	dir := t.TempDir()
	sourceDir := filepath.Join(dir, "openings")
	if err := os.MkdirAll(sourceDir, 0o755); err != nil {
		t.Fatalf("Failed to create source dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sourceDir, "ruy.json"), []byte(repertoireJSON), 0o644); err != nil {
		t.Fatalf("Failed to write repertoire file: %v", err)
	}
	// A non-repertoire file in the way must not abort the sync.
	if err := os.WriteFile(filepath.Join(sourceDir, "notes.json"), []byte("not a repertoire"), 0o644); err != nil {
		t.Fatalf("Failed to write decoy file: %v", err)
	}

	db, err := storage.Open(filepath.Join(dir, "practice.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if _, err := db.InsertSource(sourceDir, "local"); err != nil {
		t.Fatalf("Failed to insert source: %v", err)
	}

	scheduler := deck.NewScheduler(srs.NewFSRS())
	Run(db, scheduler, filepath.Join(dir, "repos"))

	refs, err := db.ListDecks()
	if err != nil {
		t.Fatalf("Failed to list decks: %v", err)
	}
	// Both games of the repertoire file get their own deck.
	if len(refs) != 2 {
		t.Fatalf("Expected 2 seeded decks, got %d", len(refs))
	}

	first, _, err := db.LoadDeck(refs[0].Key)
	if err != nil {
		t.Fatalf("Failed to load deck: %v", err)
	}
	if len(first.Positions) == 0 {
		t.Error("Expected the seeded deck to have positions")
	}

	t.Run("second run does not re-seed", func(t *testing.T) {
		Run(db, scheduler, filepath.Join(dir, "repos"))

		refs, err := db.ListDecks()
		if err != nil {
			t.Fatalf("Failed to list decks: %v", err)
		}
		if len(refs) != 2 {
			t.Errorf("Expected decks unchanged after second run, got %d", len(refs))
		}
		again, _, err := db.LoadDeck(refs[0].Key)
		if err != nil {
			t.Fatalf("Failed to load deck: %v", err)
		}
		if len(again.Positions) != len(first.Positions) {
			t.Errorf("Expected %d positions after re-run, got %d", len(first.Positions), len(again.Positions))
		}
	})
}
