// internal/httpserver/server.go
//
// HTTP server wiring for the Wordle API.
// Responsibilities:
//   - Router + middleware (request IDs, logging, panic recovery, timeouts, JSON, CORS).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Game endpoints (optional auth): POST /game/new, POST /game/guess,
//     GET /game/{id}, DELETE /game/{id}.
//   - Account endpoints: /auth/* (see auth.go).
//
// Games live in the session store only; finished games are never persisted.
// ExpireSessions drops finished and abandoned games from the store.
// A game can only be read or played by the player (or anonymous cookie) that
// created it.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordler/internal/accounts"
	"github.com/robalobadob/wordler/internal/config"
	"github.com/robalobadob/wordler/internal/daily"
	"github.com/robalobadob/wordler/internal/dictionary"
	"github.com/robalobadob/wordler/internal/game"
	"github.com/robalobadob/wordler/internal/store"
)

// Server bundles router, dictionary, session store and account services.
type Server struct {
	r       *chi.Mux
	cfg     config.Config
	dict    *dictionary.English
	store   store.Store
	players *accounts.Repo
	tokens  *accounts.Tokens
	now     func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, dict *dictionary.English, st store.Store, players *accounts.Repo) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		cfg:     cfg,
		dict:    dict,
		store:   st,
		players: players,
		tokens:  accounts.NewTokens(cfg.JWTSecret, time.Duration(cfg.JWTExpiresDays)*24*time.Hour),
		now:     time.Now,
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(cors(cfg.ClientOrigin))

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "wordler",
			"endpoints": []string{"/health", "POST /game/new", "POST /game/guess", "GET /game/{id}", "DELETE /game/{id}", "/auth/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"source": s.dict.Source(), "words": s.dict.Len(), "games": s.store.Len()})
	})

	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		r.Post("/game/new", s.handleNewGame)
		r.Post("/game/guess", s.handleGuess)
		r.Get("/game/{id}", s.handleGetGame)
		r.Delete("/game/{id}", s.handleDeleteGame)
	})

	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Handler exposes the router (useful for tests and custom listeners).
func (s *Server) Handler() http.Handler { return s.r }

// ExpireSessions sweeps the session store every interval until ctx is done.
func (s *Server) ExpireSessions(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.expireSessions(ctx)
		}
	}
}

func (s *Server) expireSessions(ctx context.Context) {
	n, err := s.store.Expire(ctx, s.now())
	if err != nil {
		log.Warn().Err(err).Msg("expire sessions")
		return
	}
	if n > 0 {
		log.Info().Int("expired", n).Int("live", s.store.Len()).Msg("sessions expired")
	}
}

// ------------------------------ GAME ---------------------------------------

// maxTurnsLimit bounds the turn count a client may ask for.
const maxTurnsLimit = 20

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Daily    bool   `json:"daily"`
	MaxTurns int    `json:"maxTurns"`
	Answer   string `json:"answer"` // fixed answer, honoured outside production only
}
type newGameRes struct {
	GameID     string `json:"gameId"`
	MaxTurns   int    `json:"maxTurns"`
	WordLength int    `json:"wordLength"`
	Date       string `json:"date,omitempty"`
}

// handleNewGame creates a game owned by the caller and stores it.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	maxTurns := s.cfg.MaxTurns
	if req.MaxTurns != 0 {
		maxTurns = req.MaxTurns
	}
	if maxTurns > maxTurnsLimit {
		writeError(w, http.StatusBadRequest, "invalid_max_turns")
		return
	}
	opts := []game.Option{game.WithMaxTurns(maxTurns)}
	var date string
	switch {
	case req.Daily:
		now := s.now()
		date = daily.DateKey(now)
		opts = append(opts, game.WithTarget(daily.Word(s.dict, now, s.cfg.DailySalt)))
	case req.Answer != "" && !s.cfg.Production():
		opts = append(opts, game.WithTarget(req.Answer))
	}

	g, err := game.New(s.dict, opts...)
	if err != nil {
		writeError(w, http.StatusBadRequest, errorCode(err))
		return
	}
	owner := s.ownerID(w, r)
	if err := s.store.Save(r.Context(), &store.Session{Owner: owner, Game: g}); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	log.Info().Str("gameId", g.ID()).Str("owner", owner).Bool("daily", req.Daily).Msg("game started")

	writeJSON(w, http.StatusOK, newGameRes{GameID: g.ID(), MaxTurns: g.MaxTurns(), WordLength: g.WordLength(), Date: date})
}

// guessReq/Res payloads for POST /game/guess.
type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}
type guessRes struct {
	Guess    string      `json:"guess"`
	Marks    []game.Mark `json:"marks"`
	State    game.State  `json:"state"`
	Turn     int         `json:"turn"`
	MaxTurns int         `json:"maxTurns"`
	Answer   string      `json:"answer,omitempty"`
}

// handleGuess applies a guess to a stored game.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess, err := s.store.Get(r.Context(), req.GameID, s.ownerID(w, r))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	var res guessRes
	err = sess.Do(func(g *game.Game) error {
		played, err := g.Play(normalizeGuess(req.Guess))
		if err != nil {
			return err
		}
		res = guessRes{
			Guess:    played.Turn.Guess,
			Marks:    played.Turn.Marks,
			State:    played.State,
			Turn:     g.Turn(),
			MaxTurns: g.MaxTurns(),
			Answer:   played.Answer,
		}
		return nil
	})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, game.ErrGameOver) {
			status = http.StatusConflict
		}
		writeError(w, status, errorCode(err))
		return
	}
	if res.State.Over() {
		log.Info().Str("gameId", req.GameID).Str("state", string(res.State)).Int("turns", res.Turn).Msg("game finished")
	}
	writeJSON(w, http.StatusOK, res)
}

// gameRes is returned by GET /game/{id}.
type gameRes struct {
	GameID   string            `json:"gameId"`
	State    game.State        `json:"state"`
	Turn     int               `json:"turn"`
	MaxTurns int               `json:"maxTurns"`
	History  []game.TurnResult `json:"history"`
	Answer   string            `json:"answer,omitempty"`
}

// handleGetGame returns the caller's view of a game.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"), s.ownerID(w, r))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	var res gameRes
	_ = sess.Do(func(g *game.Game) error {
		res = gameRes{
			GameID:   g.ID(),
			State:    g.State(),
			Turn:     g.Turn(),
			MaxTurns: g.MaxTurns(),
			History:  g.History(),
			Answer:   g.Answer(),
		}
		return nil
	})
	writeJSON(w, http.StatusOK, res)
}

// handleDeleteGame abandons one of the caller's games.
func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Get(r.Context(), id, s.ownerID(w, r)); err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		log.Error().Err(err).Msg("delete game")
		writeError(w, http.StatusInternalServerError, "delete_failed")
		return
	}
	log.Info().Str("gameId", id).Msg("game abandoned")
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// errorCode maps engine errors to stable API codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrInvalidLength):
		return "invalid_length"
	case errors.Is(err, game.ErrNotInDictionary):
		return "not_in_dictionary"
	case errors.Is(err, game.ErrGameOver):
		return "game_over"
	case errors.Is(err, game.ErrInvalidMaxTurns):
		return "invalid_max_turns"
	default:
		return "bad_request"
	}
}

// ------------------------------- small util --------------------------------

// normalizeGuess trims surrounding whitespace; case is handled by the engine.
func normalizeGuess(s string) string { return strings.TrimSpace(s) }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
