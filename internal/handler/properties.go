package handler

import (
	"log/slog"
	"net/http"

	"github.com/iamEzaz/baribhara/internal/domain"
	"github.com/iamEzaz/baribhara/internal/service"
)

// PropertyHandler handles the property resource endpoints
type PropertyHandler struct {
	properties *service.PropertyService
	logger     *slog.Logger
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(properties *service.PropertyService, logger *slog.Logger) *PropertyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PropertyHandler{properties: properties, logger: logger}
}

// Register wires the property routes onto the mux
func (h *PropertyHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/properties", h.Create)
	mux.HandleFunc("GET /api/v1/properties", h.Search)
	mux.HandleFunc("GET /api/v1/properties/search", h.Search)
	mux.HandleFunc("GET /api/v1/properties/{id}", h.Get)
	mux.HandleFunc("PUT /api/v1/properties/{id}", h.Update)
	mux.HandleFunc("DELETE /api/v1/properties/{id}", h.Delete)
	mux.HandleFunc("GET /api/v1/caretakers/{id}/properties", h.ByCaretaker)
}

// Create handles POST /api/v1/properties
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreatePropertyInput
	if !decodeBody(w, r, &input) {
		return
	}
	property, err := h.properties.Create(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, "property created", property)
}

// Get handles GET /api/v1/properties/{id}
func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	property, err := h.properties.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "property retrieved", property)
}

// Update handles PUT /api/v1/properties/{id}
func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch domain.PropertyPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	property, err := h.properties.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "property updated", property)
}

// Delete handles DELETE /api/v1/properties/{id}
func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.properties.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "property deleted", nil)
}

// Search handles GET /api/v1/properties
func (h *PropertyHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.PropertyFilter{
		Query:         q.Get("q"),
		City:          q.Get("city"),
		District:      q.Get("district"),
		Type:          q.Get("type"),
		Status:        q.Get("status"),
		CaretakerID:   q.Get("caretakerId"),
		MinRent:       queryFloatPtr(q, "minRent"),
		MaxRent:       queryFloatPtr(q, "maxRent"),
		MinBedrooms:   queryIntPtr(q, "minBedrooms"),
		MaxBedrooms:   queryIntPtr(q, "maxBedrooms"),
		OnlyAvailable: queryBool(q, "onlyAvailable"),
		Page:          queryInt(q, "page"),
		Limit:         queryInt(q, "limit"),
		SortBy:        q.Get("sortBy"),
		Order:         q.Get("order"),
	}
	properties, total, err := h.properties.Search(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, "properties retrieved", properties, filter.Page, filter.Limit, total)
}

// ByCaretaker handles GET /api/v1/caretakers/{id}/properties
func (h *PropertyHandler) ByCaretaker(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := queryInt(q, "page"), queryInt(q, "limit")
	properties, total, err := h.properties.FindByCaretaker(r.Context(), r.PathValue("id"), page, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, "properties retrieved", properties, page, limit, total)
}
