package handler

import (
	"log/slog"
	"net/http"

	"github.com/iamEzaz/baribhara/internal/domain"
	"github.com/iamEzaz/baribhara/internal/service"
)

// TenantHandler handles the tenant resource endpoints
type TenantHandler struct {
	tenants *service.TenantService
	logger  *slog.Logger
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenants *service.TenantService, logger *slog.Logger) *TenantHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TenantHandler{tenants: tenants, logger: logger}
}

// Register wires the tenant routes onto the mux
func (h *TenantHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/tenants", h.Create)
	mux.HandleFunc("GET /api/v1/tenants", h.Search)
	mux.HandleFunc("GET /api/v1/tenants/search", h.Search)
	mux.HandleFunc("GET /api/v1/tenants/{id}", h.Get)
	mux.HandleFunc("PUT /api/v1/tenants/{id}", h.Update)
	mux.HandleFunc("DELETE /api/v1/tenants/{id}", h.Delete)
	mux.HandleFunc("POST /api/v1/tenants/{id}/verify", h.Verify)
	mux.HandleFunc("POST /api/v1/tenants/{id}/assign-property", h.AssignProperty)
	mux.HandleFunc("POST /api/v1/tenants/{id}/remove-property", h.RemoveProperty)
	mux.HandleFunc("GET /api/v1/users/{id}/tenant", h.ByUser)
	mux.HandleFunc("GET /api/v1/properties/{id}/tenants", h.ByProperty)
	mux.HandleFunc("GET /api/v1/caretakers/{id}/tenants", h.ByCaretaker)
}

// Create handles POST /api/v1/tenants
func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateTenantInput
	if !decodeBody(w, r, &input) {
		return
	}
	tenant, err := h.tenants.Create(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, "tenant created", tenant)
}

// Get handles GET /api/v1/tenants/{id}
func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.tenants.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "tenant retrieved", tenant)
}

// Update handles PUT /api/v1/tenants/{id}
func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch domain.TenantPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	tenant, err := h.tenants.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "tenant updated", tenant)
}

// Delete handles DELETE /api/v1/tenants/{id}
func (h *TenantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.tenants.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "tenant deleted", nil)
}

// Verify handles POST /api/v1/tenants/{id}/verify
func (h *TenantHandler) Verify(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.tenants.Verify(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "tenant verified", tenant)
}

// AssignProperty handles POST /api/v1/tenants/{id}/assign-property
func (h *TenantHandler) AssignProperty(w http.ResponseWriter, r *http.Request) {
	var lease domain.LeaseAssignment
	if !decodeBody(w, r, &lease) {
		return
	}
	tenant, err := h.tenants.AssignProperty(r.Context(), r.PathValue("id"), lease)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "property assigned", tenant)
}

// RemoveProperty handles POST /api/v1/tenants/{id}/remove-property
func (h *TenantHandler) RemoveProperty(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.tenants.RemoveProperty(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "property removed", tenant)
}

// ByUser handles GET /api/v1/users/{id}/tenant
func (h *TenantHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.tenants.GetByUser(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "tenant retrieved", tenant)
}

// ByProperty handles GET /api/v1/properties/{id}/tenants
func (h *TenantHandler) ByProperty(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := queryInt(q, "page"), queryInt(q, "limit")
	tenants, total, err := h.tenants.FindByProperty(r.Context(), r.PathValue("id"), page, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, "tenants retrieved", tenants, page, limit, total)
}

// ByCaretaker handles GET /api/v1/caretakers/{id}/tenants
func (h *TenantHandler) ByCaretaker(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := queryInt(q, "page"), queryInt(q, "limit")
	tenants, total, err := h.tenants.FindByCaretaker(r.Context(), r.PathValue("id"), page, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, "tenants retrieved", tenants, page, limit, total)
}

// Search handles GET /api/v1/tenants
func (h *TenantHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.TenantFilter{
		Query:        q.Get("q"),
		City:         q.Get("city"),
		District:     q.Get("district"),
		Type:         q.Get("type"),
		Status:       q.Get("status"),
		PropertyID:   q.Get("propertyId"),
		CaretakerID:  q.Get("caretakerId"),
		OnlyVerified: queryBool(q, "onlyVerified"),
		Page:         queryInt(q, "page"),
		Limit:        queryInt(q, "limit"),
		SortBy:       q.Get("sortBy"),
		Order:        q.Get("order"),
	}
	tenants, total, err := h.tenants.Search(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, "tenants retrieved", tenants, filter.Page, filter.Limit, total)
}
