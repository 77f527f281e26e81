// Copyright (c) 2026 Lehae. All rights reserved.

/*
Package apitest provides an in-process fake of the Lehae REST API.

The test suites exercise the real client stack — token store, refreshing
transport, resource clients — over actual HTTP against this server. It speaks
exactly the dialect the production backend speaks: SimpleJWT-style token
endpoints, DRF-style error bodies, and the two favorite shapes.

Behavior is configured per test through exported fields; counters expose how
often the sensitive endpoints were hit so tests can assert invariants like
"exactly one refresh per expiry event".
*/
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Server is a configurable fake Lehae API.
type Server struct {
	*httptest.Server

	// Valid login credentials.
	Username string
	Password string

	// Static token pair handed out by login when set; otherwise real HS256
	// JWTs are minted.
	StaticAccess  string
	StaticRefresh string

	// FailRefresh forces the refresh endpoint to reject every attempt.
	FailRefresh bool

	// RejectAll makes every protected endpoint 401 regardless of token,
	// simulating a request that stays unauthorized even after a refresh.
	RejectAll bool

	// RefreshDelay holds the refresh handler open, widening the window in
	// which concurrent 401s must share one in-flight refresh.
	RefreshDelay time.Duration

	// Registration behavior.
	RegisterStatus int
	RegisterJSON   string

	// Response bodies, raw JSON. Empty string means a sensible default.
	ProfileJSON    string
	PropertiesJSON string
	FavoritesJSON  string
	FavoriteAdd    string
	UsersJSON      string
	ReportsJSON    string

	// PropertiesByID answers id-filtered listing queries; FailPropertyIDs
	// makes specific hydration fetches blow up with a 500.
	PropertiesByID  map[int]string
	FailPropertyIDs map[int]bool

	// PropertyDetails answers single-property GETs; unknown IDs 404.
	PropertyDetails map[int]string

	secret []byte

	mu            sync.Mutex
	validAccess   map[string]bool
	refreshToken  string
	refreshCalls  int
	tokenCalls    int
	registerCalls int
	profileCalls  int
	listCalls     int
	contactCalls  int
	idListCalls   map[int]int
	lastListQuery url.Values
	totalRequests int
	lastAuth      string
}

// New starts a fake API. Callers must Close it.
func New() *Server {
	server := &Server{
		Username:        "alice",
		Password:        "secret",
		RegisterStatus:  http.StatusCreated,
		secret:          []byte("apitest-signing-secret"),
		validAccess:     make(map[string]bool),
		PropertiesByID:  make(map[int]string),
		FailPropertyIDs: make(map[int]bool),
		PropertyDetails: make(map[int]string),
		idListCalls:     make(map[int]int),
	}

	router := chi.NewRouter()

	// Every request is counted and its Authorization header recorded, so
	// tests can assert "zero network calls" and "no bearer after logout".
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			server.mu.Lock()
			server.totalRequests++
			server.lastAuth = r.Header.Get("Authorization")
			server.mu.Unlock()
			next.ServeHTTP(w, r)
		})
	})

	router.Post("/api/token/", server.handleToken)
	router.Post("/api/token/refresh/", server.handleRefresh)
	router.Post("/api/register/", server.handleRegister)
	router.Get("/api/profile/", server.requireAuth(server.handleProfile))
	router.Put("/api/profile/", server.requireAuth(server.handleProfile))
	router.Get("/api/properties/", server.handleListProperties)
	router.Get("/api/properties/{id}/", server.handleGetProperty)
	router.Post("/api/properties/", server.requireAuth(server.handleEchoProperty))
	router.Put("/api/properties/{id}/", server.requireAuth(server.handleEchoProperty))
	router.Delete("/api/properties/{id}/", server.requireAuth(server.handleNoContent))
	router.Post("/api/property-images/", server.requireAuth(server.handleImageUpload))
	router.Delete("/api/property-images/{id}/", server.requireAuth(server.handleNoContent))
	router.Get("/api/favorites/", server.requireAuth(server.handleListFavorites))
	router.Post("/api/favorites/", server.requireAuth(server.handleAddFavorite))
	router.Delete("/api/favorites/", server.requireAuth(server.handleNoContent))
	router.Get("/api/users/", server.requireAuth(server.handleUsers))
	router.Put("/api/users/{id}/verify/", server.requireAuth(server.handleNoContent))
	router.Delete("/api/users/{id}/", server.requireAuth(server.handleNoContent))
	router.Get("/api/reports/", server.requireAuth(server.handleReports))
	router.Post("/api/contact/", server.handleContact)

	server.Server = httptest.NewServer(router)
	return server
}

// # Test Controls

// GrantAccess marks a token as accepted by protected endpoints.
func (s *Server) GrantAccess(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validAccess[token] = true
}

// RevokeAccess expires a token, so its next use 401s.
func (s *Server) RevokeAccess(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.validAccess, token)
}

// SetRefreshToken registers the refresh token the refresh endpoint accepts.
func (s *Server) SetRefreshToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshToken = token
}

// RefreshCalls reports how many refresh attempts the server saw.
func (s *Server) RefreshCalls() int { s.mu.Lock(); defer s.mu.Unlock(); return s.refreshCalls }

// TokenCalls reports how many login attempts the server saw.
func (s *Server) TokenCalls() int { s.mu.Lock(); defer s.mu.Unlock(); return s.tokenCalls }

// RegisterCalls reports how many registration attempts the server saw.
func (s *Server) RegisterCalls() int { s.mu.Lock(); defer s.mu.Unlock(); return s.registerCalls }

// ContactCalls reports how many inquiries the server received.
func (s *Server) ContactCalls() int { s.mu.Lock(); defer s.mu.Unlock(); return s.contactCalls }

// ListCalls reports unfiltered property list requests.
func (s *Server) ListCalls() int { s.mu.Lock(); defer s.mu.Unlock(); return s.listCalls }

// IDListCalls reports how often the given property ID was hydrated.
func (s *Server) IDListCalls(id int) int { s.mu.Lock(); defer s.mu.Unlock(); return s.idListCalls[id] }

// LastListQuery returns the query string of the most recent listing request.
func (s *Server) LastListQuery() url.Values { s.mu.Lock(); defer s.mu.Unlock(); return s.lastListQuery }

// Requests reports the total number of HTTP requests received.
func (s *Server) Requests() int { s.mu.Lock(); defer s.mu.Unlock(); return s.totalRequests }

// LastAuthHeader returns the Authorization header of the most recent request.
func (s *Server) LastAuthHeader() string { s.mu.Lock(); defer s.mu.Unlock(); return s.lastAuth }

// # Handlers

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.tokenCalls++
	s.mu.Unlock()

	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&creds)

	if creds.Username != s.Username || creds.Password != s.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "No active account found with the given credentials",
		})
		return
	}

	access, refresh := s.StaticAccess, s.StaticRefresh
	if access == "" {
		access = s.mintJWT(creds.Username, 5*time.Minute)
	}
	if refresh == "" {
		refresh = s.mintJWT(creds.Username, 24*time.Hour)
	}

	s.GrantAccess(access)
	s.SetRefreshToken(refresh)

	writeJSON(w, http.StatusOK, map[string]string{"access": access, "refresh": refresh})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.refreshCalls++
	serial := s.refreshCalls
	expected := s.refreshToken
	s.mu.Unlock()

	var payload struct {
		Refresh string `json:"refresh"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)

	if s.RefreshDelay > 0 {
		time.Sleep(s.RefreshDelay)
	}

	if s.FailRefresh || payload.Refresh == "" || payload.Refresh != expected {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "Token is invalid or expired",
		})
		return
	}

	// Distinguishable per-refresh tokens let tests assert which credential a
	// retried request carried.
	access := s.mintJWT("refreshed", time.Duration(serial)*time.Minute+5*time.Minute)
	s.GrantAccess(access)

	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.registerCalls++
	s.mu.Unlock()

	if s.RegisterJSON != "" {
		writeRaw(w, s.RegisterStatus, s.RegisterJSON)
		return
	}

	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)

	access := s.mintJWT(payload.Username, 5*time.Minute)
	refresh := s.mintJWT(payload.Username, 24*time.Hour)
	s.GrantAccess(access)
	s.SetRefreshToken(refresh)

	writeJSON(w, http.StatusCreated, map[string]any{
		"access":  access,
		"refresh": refresh,
		"user": map[string]any{
			"username": payload.Username,
			"email":    payload.Email,
		},
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.profileCalls++
	s.mu.Unlock()

	if s.ProfileJSON != "" {
		writeRaw(w, http.StatusOK, s.ProfileJSON)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"username": s.Username})
}

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	s.mu.Lock()
	s.lastListQuery = query
	s.mu.Unlock()

	if idParam := query.Get("id"); idParam != "" {
		id := atoi(idParam)

		s.mu.Lock()
		s.idListCalls[id]++
		fail := s.FailPropertyIDs[id]
		body := s.PropertiesByID[id]
		s.mu.Unlock()

		if fail {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
			return
		}
		if body == "" {
			body = "[]"
		}
		writeRaw(w, http.StatusOK, body)
		return
	}

	s.mu.Lock()
	s.listCalls++
	s.mu.Unlock()

	body := s.PropertiesJSON
	if body == "" {
		body = "[]"
	}
	writeRaw(w, http.StatusOK, body)
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	id := atoi(chi.URLParam(r, "id"))

	s.mu.Lock()
	body := s.PropertyDetails[id]
	s.mu.Unlock()

	if body == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	writeRaw(w, http.StatusOK, body)
}

// handleEchoProperty reflects the submitted draft back as the stored record,
// assigning an ID on create.
func (s *Server) handleEchoProperty(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body == nil {
		body = map[string]any{}
	}

	id := atoi(chi.URLParam(r, "id"))
	if id == 0 {
		id = 1
	}
	body["id"] = id

	status := http.StatusOK
	if r.Method == http.MethodPost {
		status = http.StatusCreated
	}
	writeJSON(w, status, body)
}

func (s *Server) handleImageUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart payload"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":        1,
		"image_url": s.URL + "/media/upload-1.jpg",
	})
}

func (s *Server) handleListFavorites(w http.ResponseWriter, _ *http.Request) {
	body := s.FavoritesJSON
	if body == "" {
		body = "[]"
	}
	writeRaw(w, http.StatusOK, body)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, _ *http.Request) {
	if s.FavoriteAdd != "" {
		writeRaw(w, http.StatusCreated, s.FavoriteAdd)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": 1})
}

func (s *Server) handleUsers(w http.ResponseWriter, _ *http.Request) {
	body := s.UsersJSON
	if body == "" {
		body = "[]"
	}
	writeRaw(w, http.StatusOK, body)
}

func (s *Server) handleReports(w http.ResponseWriter, _ *http.Request) {
	body := s.ReportsJSON
	if body == "" {
		body = "{}"
	}
	writeRaw(w, http.StatusOK, body)
}

func (s *Server) handleContact(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.contactCalls++
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]string{"message": "received"})
}

func (s *Server) handleNoContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// # Plumbing

// requireAuth rejects requests whose bearer token is not currently granted,
// using the backend's wording.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")

		s.mu.Lock()
		valid := ok && s.validAccess[token] && !s.RejectAll
		s.mu.Unlock()

		if !valid {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Given token not valid for any token type",
			})
			return
		}
		next(w, r)
	}
}

// mintJWT signs a real HS256 token so clients that introspect claims see a
// plausible expiry.
func (s *Server) mintJWT(subject string, ttl time.Duration) string {
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeRaw(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
