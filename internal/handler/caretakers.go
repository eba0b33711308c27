package handler

import (
	"log/slog"
	"net/http"

	"github.com/iamEzaz/baribhara/internal/domain"
	"github.com/iamEzaz/baribhara/internal/service"
)

// CaretakerHandler handles the caretaker resource endpoints
type CaretakerHandler struct {
	caretakers *service.CaretakerService
	logger     *slog.Logger
}

// NewCaretakerHandler creates a new caretaker handler
func NewCaretakerHandler(caretakers *service.CaretakerService, logger *slog.Logger) *CaretakerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CaretakerHandler{caretakers: caretakers, logger: logger}
}

// Register wires the caretaker routes onto the mux
func (h *CaretakerHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/caretakers", h.Create)
	mux.HandleFunc("GET /api/v1/caretakers", h.Search)
	mux.HandleFunc("GET /api/v1/caretakers/search", h.Search)
	mux.HandleFunc("GET /api/v1/caretakers/top-rated", h.TopRated)
	mux.HandleFunc("GET /api/v1/caretakers/{id}", h.Get)
	mux.HandleFunc("PUT /api/v1/caretakers/{id}", h.Update)
	mux.HandleFunc("DELETE /api/v1/caretakers/{id}", h.Delete)
	mux.HandleFunc("POST /api/v1/caretakers/{id}/verify", h.Verify)
	mux.HandleFunc("POST /api/v1/caretakers/{id}/suspend", h.Suspend)
	mux.HandleFunc("POST /api/v1/caretakers/{id}/activate", h.Activate)
	mux.HandleFunc("GET /api/v1/users/{id}/caretaker", h.ByUser)
}

// Create handles POST /api/v1/caretakers
func (h *CaretakerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateCaretakerInput
	if !decodeBody(w, r, &input) {
		return
	}
	caretaker, err := h.caretakers.Create(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, "caretaker created", caretaker)
}

// Get handles GET /api/v1/caretakers/{id}
func (h *CaretakerHandler) Get(w http.ResponseWriter, r *http.Request) {
	caretaker, err := h.caretakers.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "caretaker retrieved", caretaker)
}

// Update handles PUT /api/v1/caretakers/{id}
func (h *CaretakerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch domain.CaretakerPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	caretaker, err := h.caretakers.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "caretaker updated", caretaker)
}

// Delete handles DELETE /api/v1/caretakers/{id}
func (h *CaretakerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.caretakers.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "caretaker deleted", nil)
}

// Verify handles POST /api/v1/caretakers/{id}/verify
func (h *CaretakerHandler) Verify(w http.ResponseWriter, r *http.Request) {
	caretaker, err := h.caretakers.Verify(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "caretaker verified", caretaker)
}

// Suspend handles POST /api/v1/caretakers/{id}/suspend
func (h *CaretakerHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	caretaker, err := h.caretakers.Suspend(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "caretaker suspended", caretaker)
}

// Activate handles POST /api/v1/caretakers/{id}/activate
func (h *CaretakerHandler) Activate(w http.ResponseWriter, r *http.Request) {
	caretaker, err := h.caretakers.Activate(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "caretaker activated", caretaker)
}

// ByUser handles GET /api/v1/users/{id}/caretaker
func (h *CaretakerHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	caretaker, err := h.caretakers.GetByUser(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "caretaker retrieved", caretaker)
}

// TopRated handles GET /api/v1/caretakers/top-rated
func (h *CaretakerHandler) TopRated(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r.URL.Query(), "limit")
	if limit < 1 {
		limit = 10
	}
	caretakers, err := h.caretakers.TopRated(r.Context(), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "caretakers retrieved", caretakers)
}

// Search handles GET /api/v1/caretakers
func (h *CaretakerHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.CaretakerFilter{
		Query:        q.Get("q"),
		City:         q.Get("city"),
		District:     q.Get("district"),
		Type:         q.Get("type"),
		Status:       q.Get("status"),
		MinRating:    queryFloatPtr(q, "minRating"),
		OnlyVerified: queryBool(q, "onlyVerified"),
		Page:         queryInt(q, "page"),
		Limit:        queryInt(q, "limit"),
		SortBy:       q.Get("sortBy"),
		Order:        q.Get("order"),
	}
	caretakers, total, err := h.caretakers.Search(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, "caretakers retrieved", caretakers, filter.Page, filter.Limit, total)
}
