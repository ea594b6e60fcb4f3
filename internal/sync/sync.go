// Package sync reconciles registered repertoire sources with the deck
// database: git sources are cloned or pulled, every repertoire file is
// loaded, and a deck is seeded for each game that does not have one yet.
// Existing decks and their grading history are left alone.
package sync

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/sahinakkaya/pawn-appetit/internal/deck"
	"github.com/sahinakkaya/pawn-appetit/internal/gitsource"
	"github.com/sahinakkaya/pawn-appetit/internal/storage"
	"github.com/sahinakkaya/pawn-appetit/internal/tree"
)

// Run iterates over all sources and reconciles them.
func Run(db *storage.DB, scheduler *deck.Scheduler, reposDir string) {
	slog.Info("Starting sync for all repertoire sources")
	sources, err := db.GetAllSources()
	if err != nil {
		slog.Error("Failed to get sources", "error", err)
		return
	}

	if len(sources) == 0 {
		slog.Info("No sources configured. Add one with --add-source <path/or/url.git>")
		return
	}

	if err := os.MkdirAll(reposDir, os.ModePerm); err != nil {
		slog.Error("Failed to create repos directory", "error", err)
		return
	}

	for _, source := range sources {
		slog.Info("Syncing source", "id", source.ID, "kind", source.Kind, "path", source.Path)

		root := source.Path
		if source.Kind == "git" {
			localPath, err := gitURLToLocalPath(reposDir, source.Path)
			if err != nil {
				slog.Error("Error determining local path for git repo", "url", source.Path, "error", err)
				continue
			}
			if err := gitsource.Sync(source.Path, localPath); err != nil {
				slog.Error("Error syncing git repo", "url", source.Path, "error", err)
				continue
			}
			root = localPath
		}

		reconcileSource(db, scheduler, root)

		if err := db.UpdateSourceLastScanned(source.ID); err != nil {
			slog.Warn("Failed to update last scanned for source", "source_id", source.ID, "error", err)
		}
	}
	slog.Info("Sync complete")
}

// reconcileSource walks a directory tree for repertoire files and seeds
// a deck for every game found that has no positions yet.
func reconcileSource(db *storage.DB, scheduler *deck.Scheduler, root string) {
	var seeded, visited int

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".json") {
			return nil
		}

		games, err := tree.LoadFile(path)
		if err != nil {
			slog.Warn("Skipping unreadable repertoire file", "path", path, "error", err)
			return nil
		}

		for i, game := range games {
			visited++
			key := deck.Key{File: path, Game: i}

			store := deck.NewStore(key, scheduler)
			existing, found, err := db.LoadDeck(key)
			if err != nil {
				slog.Error("Failed to load deck", "key", key.String(), "error", err)
				continue
			}
			if found {
				store.SetDeck(existing)
			}

			if store.SeedIfEmpty(tree.New(game.Root), game.Side, game.Mastered) {
				if err := db.SaveDeck(key, store.Deck()); err != nil {
					slog.Error("Failed to save seeded deck", "key", key.String(), "error", err)
					continue
				}
				seeded++
				slog.Info("Seeded new deck", "key", key.String(), "cards", len(store.Deck().Positions))
			}
		}
		return nil
	})

	if walkErr != nil {
		slog.Error("Error walking source directory", "path", root, "error", walkErr)
		return
	}

	slog.Info("Source reconciled", "path", root, "games", visited, "seeded", seeded)
}

func gitURLToLocalPath(baseDir, repoURL string) (string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err != nil || (parsedURL.Scheme != "https" && parsedURL.Scheme != "http") {
		// Try scp-style syntax: git@host:user/repo.git
		if strings.Contains(repoURL, "@") {
			parts := strings.Split(repoURL, ":")
			if len(parts) == 2 {
				hostAndUser := strings.Split(parts[0], "@")
				if len(hostAndUser) == 2 {
					host := hostAndUser[1]
					repoPath := strings.TrimSuffix(parts[1], ".git")
					return filepath.Join(baseDir, host, repoPath), nil
				}
			}
		}
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}

	sanitizedPath := strings.TrimSuffix(parsedURL.Path, ".git")
	return filepath.Join(baseDir, parsedURL.Host, sanitizedPath), nil
}
