// internal/httpserver/auth.go
//
// Accounts and identity for game sessions.
//   - POST /auth/signup, /auth/login, /auth/logout; GET /auth/me
//   - GET /stats/me (solve counters + streak), GET /solves/mine (recent solves)
//   - Every request resolves to a store.Owner: the signed-in user (HS256 JWT in
//     the Authorization header or the auth cookie) or a guest anonymous ID
//     kept in its own cookie. Guest history is claimed on signup/login.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/spellcircle/internal/store"
)

const anonCookieName = "spellcircle_anon"

// authConfig is read from the environment once per server.
type authConfig struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool // production: Secure + SameSite=None cookies
}

func authConfigFromEnv() authConfig {
	days := 14
	if n, err := strconv.Atoi(getEnv("JWT_EXPIRES_DAYS", "")); err == nil && n > 0 {
		days = n
	}
	return authConfig{
		secret:     []byte(getEnv("JWT_SECRET", "dev_secret_change_me")),
		cookieName: getEnv("COOKIE_NAME", "spellcircle_token"),
		ttl:        time.Duration(days) * 24 * time.Hour,
		secure:     getEnv("NODE_ENV", "") == "production",
	}
}

func (c authConfig) cookie(name, value string) *http.Cookie {
	ck := &http.Cookie{Name: name, Value: value, Path: "/", HttpOnly: true, Secure: c.secure, SameSite: http.SameSiteLaxMode}
	if c.secure {
		ck.SameSite = http.SameSiteNoneMode
	}
	return ck
}

// credentials is the signup/login payload.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// mountAuthRoutes registers the account and per-user routes.
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)

	s.r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
			u := currentUser(r)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": u.ID, "username": u.Username})
		})
		r.Get("/stats/me", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(currentUser(r))
		})
		r.Get("/solves/mine", func(w http.ResponseWriter, r *http.Request) {
			rows, err := s.history.RecentSolves(r.Context(), currentUser(r).ID, 50)
			if err != nil {
				log.Error().Err(err).Msg("recent solves")
				http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
				return
			}
			_ = json.NewEncoder(w).Encode(rows)
		})
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	u, err := s.users.Create(r.Context(), body.Username, body.Password)
	switch {
	case errors.Is(err, store.ErrUsernameTaken):
		http.Error(w, `{"error":"Username taken"}`, http.StatusConflict)
		return
	case err != nil:
		http.Error(w, jsonError(err.Error()), http.StatusBadRequest)
		return
	}
	s.signIn(w, r, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	u, err := s.users.Authenticate(r.Context(), body.Username, body.Password)
	switch {
	case errors.Is(err, store.ErrBadCredentials):
		http.Error(w, `{"error":"Invalid username or password"}`, http.StatusUnauthorized)
		return
	case err != nil:
		log.Error().Err(err).Msg("login")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	s.signIn(w, r, u)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ck := s.auth.cookie(s.auth.cookieName, "")
	ck.MaxAge = -1
	http.SetCookie(w, ck)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// signIn issues the auth cookie for u and moves the caller's guest history
// onto the account.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, u *store.User) {
	exp := time.Now().Add(s.auth.ttl)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       u.ID,
		"username": u.Username,
		"exp":      exp.Unix(),
		"iat":      time.Now().Unix(),
	}).SignedString(s.auth.secret)
	if err != nil {
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}
	ck := s.auth.cookie(s.auth.cookieName, tok)
	ck.Expires = exp
	http.SetCookie(w, ck)

	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		if err := s.history.ClaimAnonymous(r.Context(), c.Value, u.ID); err != nil {
			log.Warn().Err(err).Str("user", u.ID).Msg("claim anon history")
		}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"id": u.ID, "username": u.Username, "createdAt": u.CreatedAt})
}

// ------------------------------- identity ----------------------------------

type ctxUserKey struct{}

func currentUser(r *http.Request) *store.User {
	u, _ := r.Context().Value(ctxUserKey{}).(*store.User)
	return u
}

var errNoToken = errors.New("no token")

// userFromRequest verifies the bearer/cookie token and loads its user.
func (s *Server) userFromRequest(r *http.Request) (*store.User, error) {
	raw := ""
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		raw = strings.TrimSpace(a[7:])
	} else if c, err := r.Cookie(s.auth.cookieName); err == nil {
		raw = c.Value
	}
	if raw == "" {
		return nil, errNoToken
	}
	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.auth.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})); err != nil {
		return nil, err
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return nil, errors.New("token without id")
	}
	return s.users.ByID(r.Context(), id)
}

// withOptionalAuth attaches the user when the token is valid; guests pass through.
func (s *Server) withOptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, err := s.userFromRequest(r); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u))
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth rejects requests without a valid token for an existing user.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := s.userFromRequest(r)
		switch {
		case errors.Is(err, errNoToken):
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		case err != nil:
			http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u)))
	})
}

// ownerOf returns the signed-in user, or the guest's anonymous ID (set as a
// cookie on first use).
func (s *Server) ownerOf(w http.ResponseWriter, r *http.Request) store.Owner {
	if u := currentUser(r); u != nil {
		return u.Owner()
	}
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return store.Owner{AnonymousID: c.Value}
	}
	id := uuid.NewString()
	ck := s.auth.cookie(anonCookieName, id)
	ck.Expires = time.Now().Add(180 * 24 * time.Hour)
	http.SetCookie(w, ck)
	return store.Owner{AnonymousID: id}
}

func jsonError(msg string) string {
	b, _ := json.Marshal(map[string]string{"error": msg})
	return string(b)
}
