// Package web exposes the review loop over a small JSON API. The core
// scheduling rules live in the deck package; the handlers here only
// load an aggregate, apply one operation and persist the result.
package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sahinakkaya/pawn-appetit/internal/deck"
	"github.com/sahinakkaya/pawn-appetit/internal/domain"
	"github.com/sahinakkaya/pawn-appetit/internal/storage"
	sourcesync "github.com/sahinakkaya/pawn-appetit/internal/sync"
	"github.com/sahinakkaya/pawn-appetit/internal/tree"
)

var validate = validator.New()

// Server holds the dependencies for the HTTP server.
type Server struct {
	db        *storage.DB
	scheduler *deck.Scheduler
	reposDir  string
	router    *http.ServeMux
}

// NewServer creates and configures a new server.
func NewServer(db *storage.DB, scheduler *deck.Scheduler, reposDir string) *Server {
	s := &Server{
		db:        db,
		scheduler: scheduler,
		reposDir:  reposDir,
		router:    http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /decks", s.handleListDecks())
	s.router.HandleFunc("GET /decks/{id}/next", s.handleNextCard())
	s.router.HandleFunc("GET /decks/{id}/stats", s.handleDeckStats())
	s.router.HandleFunc("POST /decks/{id}/review", s.handleReview())
	s.router.HandleFunc("POST /decks/{id}/skip", s.handleSkip())
	s.router.HandleFunc("POST /decks/{id}/reset", s.handleReset())

	s.router.HandleFunc("GET /sources", s.handleGetSources())
	s.router.HandleFunc("POST /sources", s.handlePostSource())
	s.router.HandleFunc("DELETE /sources/{id}", s.handleDeleteSource())
	s.router.HandleFunc("POST /sync", s.handlePostSync())
}

// deckSummary is one row of the deck listing.
type deckSummary struct {
	ID    int64        `json:"id"`
	File  string       `json:"file"`
	Game  int          `json:"game"`
	Stats domain.Stats `json:"stats"`
}

func (s *Server) handleListDecks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refs, err := s.db.ListDecks()
		if err != nil {
			s.serverError(w, "listing decks", err)
			return
		}

		now := time.Now()
		summaries := make([]deckSummary, 0, len(refs))
		for _, ref := range refs {
			d, _, err := s.db.LoadDeck(ref.Key)
			if err != nil {
				s.serverError(w, "loading deck", err)
				return
			}
			summaries = append(summaries, deckSummary{
				ID:    ref.ID,
				File:  ref.Key.File,
				Game:  ref.Key.Game,
				Stats: deck.ComputeStats(d.Positions, now),
			})
		}
		writeJSON(w, http.StatusOK, summaries)
	}
}

func (s *Server) handleNextCard() http.HandlerFunc {
	type response struct {
		Card *domain.Card `json:"card"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := s.loadStore(w, r)
		if !ok {
			return
		}

		var card domain.Card
		var found bool
		if r.URL.Query().Get("mode") == "random" {
			card, found = s.scheduler.SelectRandom(store.Deck().Positions)
		} else {
			card, found = store.SelectNext(time.Now())
		}
		if !found {
			// Nothing due is not an error; the client disables review actions.
			writeJSON(w, http.StatusOK, response{Card: nil})
			return
		}
		writeJSON(w, http.StatusOK, response{Card: &card})
	}
}

func (s *Server) handleDeckStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := s.loadStore(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, store.Stats(time.Now()))
	}
}

// reviewRequest grades the card identified by FEN.
type reviewRequest struct {
	FEN   string `json:"fen" validate:"required"`
	Grade int    `json:"grade" validate:"required,min=1,max=4"`
}

type reviewResponse struct {
	Log  domain.LogEntry `json:"log"`
	Next *domain.Card    `json:"next,omitempty"`
}

func (s *Server) handleReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reviewRequest
		if !readJSON(w, r, &req) {
			return
		}

		store, ok := s.loadStore(w, r)
		if !ok {
			return
		}
		idx, found := store.IndexOf(req.FEN)
		if !found {
			http.Error(w, "unknown position", http.StatusNotFound)
			return
		}

		now := time.Now()
		entry, err := store.GradeAt(idx, domain.Grade(req.Grade), now)
		if err != nil {
			s.serverError(w, "grading card", err)
			return
		}
		if err := s.db.SaveDeck(store.Key(), store.Deck()); err != nil {
			s.serverError(w, "saving deck", err)
			return
		}

		resp := reviewResponse{Log: entry}
		// A fully correct answer auto-advances to the next due card,
		// computed once here for this grading event.
		if domain.Grade(req.Grade) == domain.Easy {
			if next, ok := store.SelectNext(now); ok {
				resp.Next = &next
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// skipRequest skips the card identified by FEN without an attempt.
type skipRequest struct {
	FEN string `json:"fen" validate:"required"`
}

func (s *Server) handleSkip() http.HandlerFunc {
	type response struct {
		Next *domain.Card `json:"next,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req skipRequest
		if !readJSON(w, r, &req) {
			return
		}

		store, ok := s.loadStore(w, r)
		if !ok {
			return
		}
		idx, found := store.IndexOf(req.FEN)
		if !found {
			http.Error(w, "unknown position", http.StatusNotFound)
			return
		}

		next, hasNext, err := store.SkipAdvance(idx, time.Now())
		if err != nil {
			s.serverError(w, "skipping card", err)
			return
		}
		if err := s.db.SaveDeck(store.Key(), store.Deck()); err != nil {
			s.serverError(w, "saving deck", err)
			return
		}

		resp := response{}
		if hasNext {
			resp.Next = &next
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Resetting discards all grading history; the client must ask
		// the user and say so explicitly.
		if r.URL.Query().Get("confirm") != "true" {
			http.Error(w, "reset requires confirm=true", http.StatusBadRequest)
			return
		}

		store, ok := s.loadStore(w, r)
		if !ok {
			return
		}

		key := store.Key()
		games, err := tree.LoadFile(key.File)
		if err != nil {
			s.serverError(w, "loading repertoire file", err)
			return
		}
		if key.Game < 0 || key.Game >= len(games) {
			http.Error(w, "game no longer present in repertoire file", http.StatusConflict)
			return
		}

		game := games[key.Game]
		store.Reset(tree.New(game.Root), game.Side, game.Mastered)
		if err := s.db.SaveDeck(key, store.Deck()); err != nil {
			s.serverError(w, "saving deck", err)
			return
		}
		writeJSON(w, http.StatusOK, store.Stats(time.Now()))
	}
}

func (s *Server) handleGetSources() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sources, err := s.db.GetAllSources()
		if err != nil {
			s.serverError(w, "listing sources", err)
			return
		}
		writeJSON(w, http.StatusOK, sources)
	}
}

// sourceRequest registers a new repertoire source.
type sourceRequest struct {
	Path string `json:"path" validate:"required"`
}

func (s *Server) handlePostSource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sourceRequest
		if !readJSON(w, r, &req) {
			return
		}

		id, err := s.db.InsertSource(req.Path, SourceKind(req.Path))
		if err != nil {
			s.serverError(w, "inserting source", err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
	}
}

func (s *Server) handleDeleteSource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid source ID", http.StatusBadRequest)
			return
		}
		if err := s.db.DeleteSource(id); err != nil {
			s.serverError(w, "deleting source", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handlePostSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Run in the foreground to make the client wait for the result.
		sourcesync.Run(s.db, s.scheduler, s.reposDir)
		w.WriteHeader(http.StatusNoContent)
	}
}

// SourceKind classifies a source path as local or git.
func SourceKind(path string) string {
	if strings.HasSuffix(path, ".git") || strings.HasPrefix(path, "git@") ||
		strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://") {
		return "git"
	}
	return "local"
}

// loadStore resolves the {id} path value to a persisted deck and wraps
// it in a store. It writes the error response itself on failure.
func (s *Server) loadStore(w http.ResponseWriter, r *http.Request) (*deck.Store, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid deck ID", http.StatusBadRequest)
		return nil, false
	}

	key, err := s.db.FindDeckByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
		} else {
			s.serverError(w, "resolving deck", err)
		}
		return nil, false
	}

	d, _, err := s.db.LoadDeck(key)
	if err != nil {
		s.serverError(w, "loading deck", err)
		return nil, false
	}

	store := deck.NewStore(key, s.scheduler)
	store.SetDeck(d)
	return store, true
}

func (s *Server) serverError(w http.ResponseWriter, action string, err error) {
	slog.Error("Request failed", "action", action, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// readJSON decodes and validates a request body. It writes the error
// response itself and reports whether decoding succeeded.
func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			http.Error(w, fmt.Sprintf("%s failed %s validation", verrs[0].Field(), verrs[0].Tag()), http.StatusBadRequest)
		} else {
			http.Error(w, "invalid request", http.StatusBadRequest)
		}
		return false
	}
	return true
}
