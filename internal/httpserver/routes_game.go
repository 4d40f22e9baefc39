// internal/httpserver/routes_game.go
//
// Game routes. Every request that changes a session runs exactly one tick
// of its game while holding the session lock:
//   - POST /game/new    → start a session at the catalog's first (or given) level
//   - GET  /game/{id}   → current state
//   - POST /game/input  → one tick of sampled input
//   - POST /game/next   → deliver LevelSolved after the completion reveal
//   - DELETE /game/{id} → abandon a session (owner only)

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/spellcircle/internal/game"
	"github.com/robalobadob/spellcircle/internal/ring"
	"github.com/robalobadob/spellcircle/internal/store"
)

// mountGame registers the /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Get("/game/{id}", s.handleGetGame)
	r.Post("/game/input", s.handleInput)
	r.Post("/game/next", s.handleNext)
	r.Delete("/game/{id}", s.handleDeleteGame)
}

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Level *int `json:"level"` // optional starting level (wrapped into the catalog)
}
type newGameRes struct {
	GameID string     `json:"gameId"`
	State  game.State `json:"state"`
}

// handleNewGame creates a session with its own catalog cursor.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	cat := s.opt.Catalog.Clone()
	if req.Level != nil {
		cat.Seek(*req.Level)
	}
	g, err := game.New(cat, s.opt.Words, s.opt.Game)
	if err != nil {
		log.Error().Err(err).Int("level", cat.Cursor()).Msg("build level")
		http.Error(w, `{"error":"level_unavailable"}`, http.StatusInternalServerError)
		return
	}
	sess := store.NewSession(s.ownerOf(w, r), g)
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	log.Debug().Str("gameId", sess.ID).Int("level", cat.Cursor()).Msg("game started")
	_ = json.NewEncoder(w).Encode(newGameRes{GameID: sess.ID, State: g.Snapshot()})
}

// handleGetGame returns the current snapshot.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	var st game.State
	_ = sess.Do(func(g *game.Game) error {
		st = g.Snapshot()
		return nil
	})
	_ = json.NewEncoder(w).Encode(st)
}

// handleDeleteGame drops a session owned by the caller.
func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	if sess.Owner != s.ownerOf(w, r) {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	if err := s.store.Delete(r.Context(), sess.ID); err != nil {
		log.Error().Err(err).Str("gameId", sess.ID).Msg("delete session")
		http.Error(w, `{"error":"delete_failed"}`, http.StatusInternalServerError)
		return
	}
	log.Debug().Str("gameId", sess.ID).Msg("game abandoned")
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// pointerReq is a pointer/touch sample in world coordinates.
type pointerReq struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Pressed bool    `json:"pressed"` // press edge this tick
}

// inputReq is one tick's worth of input for POST /game/input and /daily/input.
type inputReq struct {
	GameID    string      `json:"gameId"`
	Chars     string      `json:"chars"`
	Pointer   *pointerReq `json:"pointer"`
	Backspace bool        `json:"backspace"`
	Reset     bool        `json:"reset"`
}

func (in inputReq) toInput() game.Input {
	out := game.Input{Chars: in.Chars, Backspace: in.Backspace, Reset: in.Reset}
	if in.Pointer != nil {
		out.Pointer = &game.Pointer{At: ring.Point{X: in.Pointer.X, Y: in.Pointer.Y}, JustPressed: in.Pointer.Pressed}
	}
	return out
}

// eventRes is the wire form of a game event.
type eventRes struct {
	Type      string         `json:"type"`
	NextLayer *int           `json:"nextLayer,omitempty"`
	Kind      game.SolveKind `json:"kind,omitempty"`
	Word      string         `json:"word,omitempty"`
}

func encodeEvents(evs []game.Event) []eventRes {
	out := make([]eventRes, 0, len(evs))
	for _, e := range evs {
		er := eventRes{Type: e.EventName()}
		if rs, ok := e.(game.RingSolved); ok {
			next := rs.NextLayer
			er.NextLayer, er.Kind, er.Word = &next, rs.Kind, rs.Word
		}
		out = append(out, er)
	}
	return out
}

// tickRes is returned by every tick endpoint.
type tickRes struct {
	State  game.State `json:"state"`
	Events []eventRes `json:"events"`
}

// tickResult is what a locked tick hands back to the handler.
type tickResult struct {
	state  game.State
	events []game.Event
}

// tick runs one game tick on sess.
func (s *Server) tick(sess *store.Session, in game.Input) (tickResult, error) {
	var res tickResult
	err := sess.Do(func(g *game.Game) error {
		evs, err := g.Tick(in)
		if err != nil {
			return err
		}
		res = tickResult{state: g.Snapshot(), events: evs}
		return nil
	})
	return res, err
}

// record stores ring solves and, when the last ring fell, the level.
// Best effort: failures are logged, not returned to the player.
func (s *Server) record(ctx context.Context, sess *store.Session, res tickResult) {
	for _, e := range res.events {
		rs, ok := e.(game.RingSolved)
		if !ok {
			continue
		}
		err := s.history.RecordSolve(ctx, store.Solve{
			SessionID: sess.ID,
			Owner:     sess.Owner,
			Level:     res.state.Level,
			Layer:     rs.NextLayer - 1,
			Kind:      string(rs.Kind),
			Word:      rs.Word,
		})
		if err != nil {
			log.Warn().Err(err).Str("gameId", sess.ID).Msg("record solve")
		}
		if rs.NextLayer == res.state.RingCount {
			if err := s.history.RecordLevel(ctx, sess.ID, sess.Owner, res.state.Level); err != nil {
				log.Warn().Err(err).Str("gameId", sess.ID).Msg("record level")
			}
		}
	}
}

// handleInput applies one tick of input.
func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req inputReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	res, err := s.tick(sess, req.toInput())
	if err != nil {
		log.Error().Err(err).Str("gameId", sess.ID).Msg("tick")
		http.Error(w, `{"error":"tick_failed"}`, http.StatusInternalServerError)
		return
	}
	s.record(r.Context(), sess, res)
	_ = json.NewEncoder(w).Encode(tickRes{State: res.state, Events: encodeEvents(res.events)})
}

// nextReq is the payload for POST /game/next.
type nextReq struct {
	GameID string `json:"gameId"`
}

// handleNext delivers LevelSolved once every ring is solved.
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	var req nextReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}

	var res tickResult
	err = sess.Do(func(g *game.Game) error {
		if !g.LevelComplete() {
			return game.ErrLevelIncomplete
		}
		g.Post(game.LevelSolved{})
		evs, err := g.Tick(game.Input{})
		if err != nil {
			return err
		}
		res = tickResult{state: g.Snapshot(), events: evs}
		return nil
	})
	switch {
	case errors.Is(err, game.ErrLevelIncomplete):
		http.Error(w, `{"error":"level_incomplete"}`, http.StatusConflict)
		return
	case err != nil:
		log.Error().Err(err).Str("gameId", sess.ID).Msg("advance level")
		http.Error(w, `{"error":"level_unavailable"}`, http.StatusInternalServerError)
		return
	}
	log.Debug().Str("gameId", sess.ID).Int("level", res.state.Level).Msg("level advanced")
	_ = json.NewEncoder(w).Encode(tickRes{State: res.state, Events: encodeEvents(res.events)})
}
