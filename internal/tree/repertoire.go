package tree

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sahinakkaya/pawn-appetit/internal/domain"
)

// Game is one repertoire entry in a file: the move tree to practice, the
// side the user plays, and an optional already-mastered prefix of moves
// that should not be quizzed.
type Game struct {
	Side     domain.Side `json:"side"`
	Mastered Path        `json:"mastered,omitempty"`
	Root     *Node       `json:"root"`
}

// repertoireFile is the on-disk shape: either a bare list of games or a
// wrapper object with a "games" field.
type repertoireFile struct {
	Games []Game `json:"games"`
}

// LoadFile reads a repertoire file from the given path.
func LoadFile(path string) ([]Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	games, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return games, nil
}

// Load reads repertoire games from an io.Reader.
func Load(r io.Reader) ([]Game, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var file repertoireFile
	if err := json.Unmarshal(data, &file); err != nil {
		// Fall back to a bare array of games.
		var games []Game
		if arrErr := json.Unmarshal(data, &games); arrErr != nil {
			return nil, err
		}
		file.Games = games
	}

	for i, g := range file.Games {
		if g.Root == nil {
			return nil, fmt.Errorf("game %d: missing root node", i)
		}
		if g.Side != domain.White && g.Side != domain.Black {
			return nil, fmt.Errorf("game %d: invalid side %q", i, g.Side)
		}
	}
	return file.Games, nil
}
