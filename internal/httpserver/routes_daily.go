// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Level" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start the day's level (creates or reuses session)
//   - POST /daily/input       → one tick of input on today's level
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// Each player can complete the daily level once per day (enforced by DB +
// in-memory session). Sessions are held in memory for active play and the
// result is persisted when the last ring is solved. The level is chosen
// deterministically from date + salt.

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/spellcircle/internal/daily"
	"github.com/robalobadob/spellcircle/internal/game"
	"github.com/robalobadob/spellcircle/internal/store"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	sessions map[string]*dailySession // active sessions keyed by userID|date
	mu       sync.Mutex               // guards sessions and their counters
}

// dailySession holds transient in-memory state for an in-progress daily level.
type dailySession struct {
	Session    *store.Session
	UserID     string
	Date       string
	LevelIndex int
	Start      time.Time
	Alternates int
	Finished   bool
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     getEnv("DAILY_SALT", "local_dev_salt"),
		sessions: make(map[string]*dailySession),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/input", dd.handleInput)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// today returns today's date key and level index.
func (d *dailyServer) today() (date string, idx int) {
	now := time.Now().UTC()
	return daily.DateKey(now), daily.LevelIndex(now, d.salt, d.srv.opt.Catalog.Len())
}

// userIDWithAnon returns the owner and its key: the authenticated user ID
// if logged in, otherwise the guest anonymous ID.
func (d *dailyServer) userIDWithAnon(w http.ResponseWriter, r *http.Request) (store.Owner, string) {
	o := d.srv.ownerOf(w, r)
	if o.UserID != "" {
		return o, o.UserID
	}
	return o, o.AnonymousID
}

// -----------------------------------------------------------------------------
// /daily/new

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	GameID string      `json:"gameId"`
	Date   string      `json:"date"`
	Played bool        `json:"played"`
	State  *game.State `json:"state,omitempty"`
}

// handleNew creates or reuses a daily session for the current date.
// - If the player already has a DB row for today → return Played=true.
// - Otherwise create/reuse an in-memory session and return its GameID.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	owner, uid := d.userIDWithAnon(w, r)
	date, idx := d.today()

	if played, err := d.store.AlreadyPlayed(r.Context(), uid, date); err == nil && played {
		_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Played: true})
		return
	}

	key := uid + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()
	if ds, ok := d.sessions[key]; ok {
		var st game.State
		_ = ds.Session.Do(func(g *game.Game) error {
			st = g.Snapshot()
			return nil
		})
		_ = json.NewEncoder(w).Encode(dailyNewRes{GameID: ds.Session.ID, Date: date, State: &st})
		return
	}

	cat := d.srv.opt.Catalog.Clone()
	cat.Seek(idx)
	g, err := game.New(cat, d.srv.opt.Words, d.srv.opt.Game)
	if err != nil {
		log.Error().Err(err).Int("level", idx).Msg("build daily level")
		http.Error(w, `{"error":"level_unavailable"}`, http.StatusInternalServerError)
		return
	}
	ds := &dailySession{
		Session:    store.NewSession(owner, g),
		UserID:     uid,
		Date:       date,
		LevelIndex: idx,
		Start:      time.Now(),
	}
	d.sessions[key] = ds
	st := g.Snapshot()
	_ = json.NewEncoder(w).Encode(dailyNewRes{GameID: ds.Session.ID, Date: date, State: &st})
}

// -----------------------------------------------------------------------------
// /daily/input

// dailyInputRes is the response payload for /daily/input.
type dailyInputRes struct {
	State  string      `json:"state"` // in_progress | won | locked
	Game   *game.State `json:"game,omitempty"`
	Events []eventRes  `json:"events"`
}

// handleInput applies one tick of input to today's session.
// - Rejects if no session, or a GameID that is not today's session.
// - A finished session is locked; further input is not applied.
// - Persists the result when the last ring is solved.
func (d *dailyServer) handleInput(w http.ResponseWriter, r *http.Request) {
	_, uid := d.userIDWithAnon(w, r)

	var req inputReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}

	date, _ := d.today()
	key := uid + "|" + date
	d.mu.Lock()
	ds, ok := d.sessions[key]
	d.mu.Unlock()
	if !ok || req.GameID == "" || ds.Session.ID != req.GameID {
		http.Error(w, `{"error":"no_session"}`, http.StatusConflict)
		return
	}

	d.mu.Lock()
	finished := ds.Finished
	d.mu.Unlock()
	if finished {
		_ = json.NewEncoder(w).Encode(dailyInputRes{State: "locked", Events: []eventRes{}})
		return
	}

	res, err := d.srv.tick(ds.Session, req.toInput())
	if err != nil {
		log.Error().Err(err).Str("gameId", ds.Session.ID).Msg("daily tick")
		http.Error(w, `{"error":"tick_failed"}`, http.StatusInternalServerError)
		return
	}
	d.srv.record(r.Context(), ds.Session, res)

	won := false
	d.mu.Lock()
	for _, e := range res.events {
		if rs, ok := e.(game.RingSolved); ok && rs.Kind == game.SolveAlternate {
			ds.Alternates++
		}
	}
	if res.state.Phase == game.PhaseAllSolved && !ds.Finished {
		ds.Finished, won = true, true
	}
	alternates := ds.Alternates
	d.mu.Unlock()

	state := "in_progress"
	if won {
		state = "won"
		err := d.store.InsertResult(r.Context(), daily.Result{
			UserID:     uid,
			Date:       date,
			LevelIndex: ds.LevelIndex,
			Alternates: alternates,
			ElapsedMs:  int(time.Since(ds.Start).Milliseconds()),
		})
		if err != nil {
			log.Warn().Err(err).Str("user", uid).Msg("insert daily result")
		}
	}
	_ = json.NewEncoder(w).Encode(dailyInputRes{State: state, Game: &res.state, Events: encodeEvents(res.events)})
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date, _ = d.today()
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}
