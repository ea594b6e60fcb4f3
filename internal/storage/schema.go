package storage

const schema = `
-- The 'sources' table tracks where repertoire files come from, either a
-- local directory or a git repository.
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    kind TEXT NOT NULL DEFAULT 'local', -- 'local' or 'git'
    last_scanned DATETIME
);

-- One row per deck identity (repertoire file + game index).
CREATE TABLE IF NOT EXISTS decks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source_path TEXT NOT NULL DEFAULT '',
    game_index INTEGER NOT NULL,

    UNIQUE(source_path, game_index)
);

-- Practice positions in insertion order. The schedule column carries the
-- engine-defined scheduling record as JSON, round-tripped untouched.
CREATE TABLE IF NOT EXISTS cards (
    deck_id INTEGER NOT NULL,
    ordinal INTEGER NOT NULL,
    fen TEXT NOT NULL,
    answer TEXT NOT NULL,
    schedule TEXT NOT NULL,

    PRIMARY KEY(deck_id, ordinal),
    FOREIGN KEY(deck_id) REFERENCES decks(id) ON DELETE CASCADE
);

-- Append-only grading history in chronological order. due and rating are
-- lifted out for querying; entry holds the full log record as JSON.
CREATE TABLE IF NOT EXISTS logs (
    deck_id INTEGER NOT NULL,
    seq INTEGER NOT NULL,
    fen TEXT NOT NULL,
    due DATETIME NOT NULL,
    rating INTEGER NOT NULL,
    entry TEXT NOT NULL,

    PRIMARY KEY(deck_id, seq),
    FOREIGN KEY(deck_id) REFERENCES decks(id) ON DELETE CASCADE
);
`
