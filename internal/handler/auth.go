package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/iamEzaz/baribhara/internal/domain"
	"github.com/iamEzaz/baribhara/internal/security/middleware"
	"github.com/iamEzaz/baribhara/internal/service"
)

// AuthHandler handles registration, login and token lifecycle endpoints
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{auth: auth, logger: logger}
}

// Register wires the auth routes onto the mux
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/auth/register", h.RegisterUser)
	mux.HandleFunc("POST /api/v1/auth/login", h.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", h.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/v1/auth/profile", h.Profile)
}

// RegisterUser handles POST /api/v1/auth/register
func (h *AuthHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var input service.CreateUserInput
	if !decodeBody(w, r, &input) {
		return
	}
	pair, err := h.auth.Register(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, "registered", pair)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if !decodeBody(w, r, &input) {
		return
	}
	pair, err := h.auth.Login(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "logged in", pair)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	pair, err := h.auth.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "token refreshed", pair)
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserFromContext(r.Context())
	if userID == "" {
		respondError(w, fmt.Errorf("not logged in: %w", domain.ErrUnauthorized))
		return
	}
	if err := h.auth.Logout(r.Context(), userID); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "logged out", nil)
}

// Profile handles GET /api/v1/auth/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserFromContext(r.Context())
	if userID == "" {
		respondError(w, fmt.Errorf("not logged in: %w", domain.ErrUnauthorized))
		return
	}
	user, err := h.auth.Profile(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "profile retrieved", user)
}
