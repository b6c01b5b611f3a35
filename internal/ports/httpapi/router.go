// Package httpapi exposes the game over a polling HTTP API. Clients act with
// POSTs and read their view of the table with GET; all hidden-information
// rules are enforced by the snapshot projection.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"sgbridge/internal/app"
	"sgbridge/internal/bot"
	"sgbridge/internal/config"
	"sgbridge/internal/domain"
	"sgbridge/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Server wires the app service and the game registry behind HTTP handlers.
type Server struct {
	svc   *app.Service
	games *store.Store
}

func NewServer(svc *app.Service, games *store.Store) *Server {
	return &Server{svc: svc, games: games}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/api/games", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{gameID}", func(r chi.Router) {
			r.Get("/", s.handleSnapshot)
			r.Delete("/", s.handleAbandon)
			r.Post("/join", s.handleJoin)
			r.Post("/bots", s.handleAddBot)
			r.Post("/start", s.handleStart)
			r.Post("/bid", s.handleBid)
			r.Post("/call", s.handleCall)
			r.Post("/play", s.handlePlay)
		})
	})

	return r
}

type joinRequest struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

type actorRequest struct {
	PlayerID string `json:"player_id"`
}

type bidRequest struct {
	PlayerID string `json:"player_id"`
	Bid      string `json:"bid"`
}

type cardRequest struct {
	PlayerID string `json:"player_id"`
	Card     string `json:"card"`
}

// handleCreate opens a table and seats the creator.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !decode(w, r, &req) {
		return
	}
	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}

	g := s.svc.CreateGame(uuid.NewString())
	if _, err := s.svc.AddHuman(g, req.PlayerID, displayName(req)); err != nil {
		writeErrorFor(w, err)
		return
	}
	if err := s.games.Put(g); err != nil {
		writeErrorFor(w, err)
		return
	}

	snap, err := s.svc.Snapshot(g, req.PlayerID)
	if err != nil {
		writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !decode(w, r, &req) {
		return
	}
	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	s.respondAfter(w, r, req.PlayerID, func(g *domain.Game) error {
		_, err := s.svc.AddHuman(g, req.PlayerID, displayName(req))
		return err
	})
}

// handleAddBot seats an automated player on behalf of the requester.
func (s *Server) handleAddBot(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	if !decode(w, r, &req) {
		return
	}
	s.respondAfter(w, r, req.PlayerID, func(g *domain.Game) error {
		if _, ok := g.SeatOf(req.PlayerID); !ok {
			return app.ErrUnknownPlayer
		}
		identity := bot.IdentityForSeat(len(g.Players))
		brain, err := bot.NewBrain(config.GetBotLevel(), nil)
		if err != nil {
			return err
		}
		_, err = s.svc.AddBot(g, identity.ID, identity.Name, brain)
		return err
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	if !decode(w, r, &req) {
		return
	}
	s.respondAfter(w, r, req.PlayerID, func(g *domain.Game) error {
		if _, ok := g.SeatOf(req.PlayerID); !ok {
			return app.ErrUnknownPlayer
		}
		_, err := s.svc.Start(g)
		return err
	})
}

func (s *Server) handleBid(w http.ResponseWriter, r *http.Request) {
	var req bidRequest
	if !decode(w, r, &req) {
		return
	}
	bid, err := domain.ParseBid(req.Bid)
	if err != nil {
		writeErrorFor(w, err)
		return
	}
	s.respondAfter(w, r, req.PlayerID, func(g *domain.Game) error {
		_, err := s.svc.SubmitBid(g, req.PlayerID, bid)
		return err
	})
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if !decode(w, r, &req) {
		return
	}
	card, err := domain.ParseCard(req.Card)
	if err != nil {
		writeErrorFor(w, err)
		return
	}
	s.respondAfter(w, r, req.PlayerID, func(g *domain.Game) error {
		_, err := s.svc.CallPartner(g, req.PlayerID, card)
		return err
	})
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if !decode(w, r, &req) {
		return
	}
	card, err := domain.ParseCard(req.Card)
	if err != nil {
		writeErrorFor(w, err)
		return
	}
	s.respondAfter(w, r, req.PlayerID, func(g *domain.Game) error {
		_, err := s.svc.Play(g, req.PlayerID, card)
		return err
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player_id")
	if playerID == "" {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	var snap app.Snapshot
	err := s.games.With(chi.URLParam(r, "gameID"), func(g *domain.Game) error {
		var err error
		snap, err = s.svc.Snapshot(g, playerID)
		return err
	})
	if err != nil {
		writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleAbandon removes the table. Any seated player may abandon.
func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player_id")
	gameID := chi.URLParam(r, "gameID")

	err := s.games.With(gameID, func(g *domain.Game) error {
		if _, ok := g.SeatOf(playerID); !ok {
			return app.ErrUnknownPlayer
		}
		return nil
	})
	if err != nil {
		writeErrorFor(w, err)
		return
	}
	if err := s.games.Delete(gameID); err != nil {
		writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": gameID})
}

// respondAfter runs the action under the game lock and replies with the
// actor's fresh snapshot.
func (s *Server) respondAfter(w http.ResponseWriter, r *http.Request, playerID string, action func(*domain.Game) error) {
	if playerID == "" {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	var snap app.Snapshot
	err := s.games.With(chi.URLParam(r, "gameID"), func(g *domain.Game) error {
		if err := action(g); err != nil {
			return err
		}
		var err error
		snap, err = s.svc.Snapshot(g, playerID)
		return err
	})
	if err != nil {
		writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func displayName(req joinRequest) string {
	if req.Name != "" {
		return req.Name
	}
	return req.PlayerID
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeErrorFor maps sentinel errors onto HTTP statuses.
func writeErrorFor(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrGameNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrUnknownPlayer):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrIllegalBid), errors.Is(err, domain.ErrIllegalCard):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrIllegalTurn), errors.Is(err, domain.ErrIllegalPhase),
		errors.Is(err, domain.ErrGameFull), errors.Is(err, app.ErrNotStartable),
		errors.Is(err, store.ErrGameExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
