package handler

import (
	"log/slog"
	"net/http"

	"github.com/iamEzaz/baribhara/internal/domain"
	"github.com/iamEzaz/baribhara/internal/service"
)

// UserHandler handles the user resource endpoints
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{users: users, logger: logger}
}

// Register wires the user routes onto the mux
func (h *UserHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/users", h.Create)
	mux.HandleFunc("GET /api/v1/users", h.Search)
	mux.HandleFunc("GET /api/v1/users/search", h.Search)
	mux.HandleFunc("GET /api/v1/users/{id}", h.Get)
	mux.HandleFunc("PUT /api/v1/users/{id}", h.Update)
	mux.HandleFunc("DELETE /api/v1/users/{id}", h.Delete)
	mux.HandleFunc("POST /api/v1/users/{id}/suspend", h.Suspend)
	mux.HandleFunc("POST /api/v1/users/{id}/activate", h.Activate)
}

// Create handles POST /api/v1/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateUserInput
	if !decodeBody(w, r, &input) {
		return
	}
	user, err := h.users.Create(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, "user created", user)
}

// Get handles GET /api/v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "user retrieved", user)
}

// Update handles PUT /api/v1/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch domain.UserPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	user, err := h.users.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "user updated", user)
}

// Delete handles DELETE /api/v1/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "user deleted", nil)
}

// Suspend handles POST /api/v1/users/{id}/suspend
func (h *UserHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Suspend(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "user suspended", user)
}

// Activate handles POST /api/v1/users/{id}/activate
func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Activate(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "user activated", user)
}

// Search handles GET /api/v1/users
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.UserFilter{
		Query:  q.Get("q"),
		Status: q.Get("status"),
		Page:   queryInt(q, "page"),
		Limit:  queryInt(q, "limit"),
		SortBy: q.Get("sortBy"),
		Order:  q.Get("order"),
	}
	users, total, err := h.users.Search(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, "users retrieved", users, filter.Page, filter.Limit, total)
}
