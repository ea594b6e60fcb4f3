package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Registers the sqlite driver

	"github.com/sahinakkaya/pawn-appetit/internal/deck"
	"github.com/sahinakkaya/pawn-appetit/internal/domain"
)

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_foreign_keys=1", dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// DeckRef is a stored deck's row ID together with its identity key.
type DeckRef struct {
	ID  int64
	Key deck.Key
}

// ListDecks returns all stored decks.
func (db *DB) ListDecks() ([]DeckRef, error) {
	rows, err := db.conn.Query(`
		SELECT id, source_path, game_index
		FROM decks ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	var refs []DeckRef
	for rows.Next() {
		var ref DeckRef
		if err := rows.Scan(&ref.ID, &ref.Key.File, &ref.Key.Game); err != nil {
			return nil, fmt.Errorf("failed to scan deck row: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// FindDeckByID resolves a deck row ID back to its identity key.
func (db *DB) FindDeckByID(id int64) (deck.Key, error) {
	var key deck.Key
	row := db.conn.QueryRow(`
		SELECT source_path, game_index
		FROM decks WHERE id = ?
	`, id)
	if err := row.Scan(&key.File, &key.Game); err != nil {
		if err == sql.ErrNoRows {
			return deck.Key{}, sql.ErrNoRows
		}
		return deck.Key{}, fmt.Errorf("failed to find deck %d: %w", id, err)
	}
	return key, nil
}

// SaveDeck persists the whole aggregate for the given key, replacing any
// prior rows in a single transaction. The aggregate is copy-on-write in
// memory, so a wholesale replace is the natural write shape.
func (db *DB) SaveDeck(key deck.Key, d domain.Deck) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO decks (source_path, game_index)
		VALUES (?, ?)
		ON CONFLICT(source_path, game_index) DO NOTHING
	`, key.File, key.Game); err != nil {
		return fmt.Errorf("failed to upsert deck %s: %w", key, err)
	}

	var deckID int64
	row := tx.QueryRow(`SELECT id FROM decks WHERE source_path = ? AND game_index = ?`, key.File, key.Game)
	if err := row.Scan(&deckID); err != nil {
		return fmt.Errorf("failed to resolve deck ID for %s: %w", key, err)
	}

	if _, err := tx.Exec(`DELETE FROM cards WHERE deck_id = ?`, deckID); err != nil {
		return fmt.Errorf("failed to clear cards for %s: %w", key, err)
	}
	if _, err := tx.Exec(`DELETE FROM logs WHERE deck_id = ?`, deckID); err != nil {
		return fmt.Errorf("failed to clear logs for %s: %w", key, err)
	}

	for i, card := range d.Positions {
		schedule, err := json.Marshal(card.Schedule)
		if err != nil {
			return fmt.Errorf("failed to encode schedule for %s: %w", card.FEN, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO cards (deck_id, ordinal, fen, answer, schedule)
			VALUES (?, ?, ?, ?, ?)
		`, deckID, i, card.FEN, card.Answer, string(schedule)); err != nil {
			return fmt.Errorf("failed to insert card %s: %w", card.FEN, err)
		}
	}

	for i, entry := range d.Logs {
		payload, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to encode log entry %d: %w", i, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO logs (deck_id, seq, fen, due, rating, entry)
			VALUES (?, ?, ?, ?, ?, ?)
		`, deckID, i, entry.FEN, entry.Due, int(entry.Rating), string(payload)); err != nil {
			return fmt.Errorf("failed to insert log entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deck %s: %w", key, err)
	}
	return nil
}

// LoadDeck restores the aggregate for the given key. The second return
// value is false when no deck row exists for the key.
func (db *DB) LoadDeck(key deck.Key) (domain.Deck, bool, error) {
	var deckID int64
	row := db.conn.QueryRow(`SELECT id FROM decks WHERE source_path = ? AND game_index = ?`, key.File, key.Game)
	if err := row.Scan(&deckID); err != nil {
		if err == sql.ErrNoRows {
			return domain.Deck{}, false, nil
		}
		return domain.Deck{}, false, fmt.Errorf("failed to find deck %s: %w", key, err)
	}

	var d domain.Deck

	rows, err := db.conn.Query(`
		SELECT fen, answer, schedule
		FROM cards WHERE deck_id = ? ORDER BY ordinal
	`, deckID)
	if err != nil {
		return domain.Deck{}, false, fmt.Errorf("failed to load cards for %s: %w", key, err)
	}
	defer rows.Close()
	for rows.Next() {
		var card domain.Card
		var schedule string
		if err := rows.Scan(&card.FEN, &card.Answer, &schedule); err != nil {
			return domain.Deck{}, false, fmt.Errorf("failed to scan card row: %w", err)
		}
		if err := json.Unmarshal([]byte(schedule), &card.Schedule); err != nil {
			return domain.Deck{}, false, fmt.Errorf("failed to decode schedule for %s: %w", card.FEN, err)
		}
		d.Positions = append(d.Positions, card)
	}
	if err := rows.Err(); err != nil {
		return domain.Deck{}, false, fmt.Errorf("failed to read card rows: %w", err)
	}

	logRows, err := db.conn.Query(`
		SELECT entry
		FROM logs WHERE deck_id = ? ORDER BY seq
	`, deckID)
	if err != nil {
		return domain.Deck{}, false, fmt.Errorf("failed to load logs for %s: %w", key, err)
	}
	defer logRows.Close()
	for logRows.Next() {
		var payload string
		if err := logRows.Scan(&payload); err != nil {
			return domain.Deck{}, false, fmt.Errorf("failed to scan log row: %w", err)
		}
		var entry domain.LogEntry
		if err := json.Unmarshal([]byte(payload), &entry); err != nil {
			return domain.Deck{}, false, fmt.Errorf("failed to decode log entry: %w", err)
		}
		d.Logs = append(d.Logs, entry)
	}
	if err := logRows.Err(); err != nil {
		return domain.Deck{}, false, fmt.Errorf("failed to read log rows: %w", err)
	}

	return d, true, nil
}

// Source represents a repertoire source, either a local path or a git URL.
type Source struct {
	ID          int64
	Path        string
	Kind        string
	LastScanned sql.NullTime
}

// InsertSource inserts a new source into the database and returns its ID.
func (db *DB) InsertSource(path, kind string) (int64, error) {
	res, err := db.conn.Exec(`
		INSERT INTO sources (path, kind)
		VALUES (?, ?)
	`, path, kind)
	if err != nil {
		return 0, fmt.Errorf("failed to insert source %s: %w", path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for source %s: %w", path, err)
	}
	return id, nil
}

// GetAllSources retrieves all stored sources from the database.
func (db *DB) GetAllSources() ([]Source, error) {
	rows, err := db.conn.Query(`
		SELECT id, path, kind, last_scanned
		FROM sources ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var s Source
		if err := rows.Scan(&s.ID, &s.Path, &s.Kind, &s.LastScanned); err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// DeleteSource removes a source by ID. Decks seeded from it stay intact.
func (db *DB) DeleteSource(id int64) error {
	if _, err := db.conn.Exec(`DELETE FROM sources WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete source %d: %w", id, err)
	}
	return nil
}

// UpdateSourceLastScanned updates the last_scanned timestamp for a source.
func (db *DB) UpdateSourceLastScanned(sourceID int64) error {
	_, err := db.conn.Exec(`
		UPDATE sources
		SET last_scanned = ?
		WHERE id = ?
	`, time.Now(), sourceID)
	if err != nil {
		return fmt.Errorf("failed to update last scanned for source ID %d: %w", sourceID, err)
	}
	return nil
}
