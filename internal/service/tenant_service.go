package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iamEzaz/baribhara/internal/domain"
	"github.com/iamEzaz/baribhara/internal/events"
	"github.com/iamEzaz/baribhara/internal/rescache"
)

// TenantResponse is the API and cache shape of a tenant profile.
type TenantResponse struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	PhoneNumber       string         `json:"phoneNumber"`
	Email             string         `json:"email,omitempty"`
	NationalID        string         `json:"nationalId,omitempty"`
	Type              string         `json:"type"`
	Status            string         `json:"status"`
	Address           domain.Address `json:"address"`
	Occupation        string         `json:"occupation,omitempty"`
	MonthlyIncome     float64        `json:"monthlyIncome,omitempty"`
	UserID            string         `json:"userId"`
	CurrentPropertyID string         `json:"currentPropertyId,omitempty"`
	CaretakerID       string         `json:"caretakerId,omitempty"`
	LeaseStartDate    *time.Time     `json:"leaseStartDate,omitempty"`
	LeaseEndDate      *time.Time     `json:"leaseEndDate,omitempty"`
	MonthlyRent       float64        `json:"monthlyRent,omitempty"`
	SecurityDeposit   float64        `json:"securityDeposit,omitempty"`
	LeaseTerms        string         `json:"leaseTerms,omitempty"`
	IsVerified        bool           `json:"isVerified"`
	VerifiedAt        *time.Time     `json:"verifiedAt,omitempty"`
	ActiveLeases      int            `json:"activeLeases"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

func toTenantResponse(t *domain.Tenant) TenantResponse {
	return TenantResponse{
		ID:                t.ID,
		Name:              t.Name,
		PhoneNumber:       t.PhoneNumber,
		Email:             t.Email,
		NationalID:        t.NationalID,
		Type:              string(t.Type),
		Status:            string(t.Status),
		Address:           t.Address,
		Occupation:        t.Occupation,
		MonthlyIncome:     t.MonthlyIncome,
		UserID:            t.UserID,
		CurrentPropertyID: t.CurrentPropertyID,
		CaretakerID:       t.CaretakerID,
		LeaseStartDate:    t.LeaseStartDate,
		LeaseEndDate:      t.LeaseEndDate,
		MonthlyRent:       t.MonthlyRent,
		SecurityDeposit:   t.SecurityDeposit,
		LeaseTerms:        t.LeaseTerms,
		IsVerified:        t.IsVerified,
		VerifiedAt:        t.VerifiedAt,
		ActiveLeases:      t.ActiveLeases,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

// CreateTenantInput carries the fields of a new tenant profile
type CreateTenantInput struct {
	Name          string         `json:"name"`
	PhoneNumber   string         `json:"phoneNumber"`
	Email         string         `json:"email,omitempty"`
	NationalID    string         `json:"nationalId,omitempty"`
	Type          string         `json:"type,omitempty"`
	Address       domain.Address `json:"address,omitempty"`
	Occupation    string         `json:"occupation,omitempty"`
	MonthlyIncome float64        `json:"monthlyIncome,omitempty"`
	UserID        string         `json:"userId"`
}

// TenantService owns the tenant resource: repository writes, the read-through
// cache, change events, and the lease assignment transitions.
type TenantService struct {
	repo   domain.TenantRepository
	cache  *rescache.Cache[TenantResponse]
	events events.Publisher
	logger *slog.Logger
	now    func() time.Time
}

// NewTenantService creates a tenant service
func NewTenantService(repo domain.TenantRepository, cache *rescache.Cache[TenantResponse], publisher events.Publisher, logger *slog.Logger) *TenantService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TenantService{repo: repo, cache: cache, events: publisher, logger: logger, now: time.Now}
}

// Create registers a tenant profile. A user account holds at most one tenant
// profile, and the phone number must be unique among tenants.
func (s *TenantService) Create(ctx context.Context, input CreateTenantInput) (TenantResponse, error) {
	if input.Name == "" || input.PhoneNumber == "" || input.UserID == "" {
		return TenantResponse{}, fmt.Errorf("name, phone number and user are required: %w", domain.ErrValidation)
	}

	if _, err := s.repo.GetByUserID(input.UserID); err == nil {
		return TenantResponse{}, fmt.Errorf("user already has a tenant profile: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return TenantResponse{}, err
	}
	if _, err := s.repo.GetByPhone(input.PhoneNumber); err == nil {
		return TenantResponse{}, fmt.Errorf("phone number already in use: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return TenantResponse{}, err
	}

	tenant := &domain.Tenant{
		ID:            uuid.New().String(),
		Name:          input.Name,
		PhoneNumber:   input.PhoneNumber,
		Email:         input.Email,
		NationalID:    input.NationalID,
		Type:          domain.TenantType(input.Type),
		Status:        domain.TenantStatusPending,
		Address:       input.Address,
		Occupation:    input.Occupation,
		MonthlyIncome: input.MonthlyIncome,
		UserID:        input.UserID,
	}
	if tenant.Type == "" {
		tenant.Type = domain.TenantTypeIndividual
	}

	if err := s.repo.Create(tenant); err != nil {
		return TenantResponse{}, err
	}

	resp := toTenantResponse(tenant)
	if err := s.cache.Put(ctx, tenant.ID, resp); err != nil {
		return TenantResponse{}, err
	}
	s.emit(ctx, events.TopicTenantCreated, events.TenantEvent{
		TenantID: tenant.ID,
		UserID:   tenant.UserID,
		Type:     string(tenant.Type),
	})

	s.logger.Info("tenant created",
		slog.String("tenant_id", tenant.ID),
		slog.String("user_id", tenant.UserID),
	)
	return resp, nil
}

// Get returns a tenant by ID, serving from the cache when possible.
func (s *TenantService) Get(ctx context.Context, id string) (TenantResponse, error) {
	return s.cache.GetOrFetch(ctx, id, func() (TenantResponse, error) {
		tenant, err := s.repo.GetByID(id)
		if err != nil {
			return TenantResponse{}, err
		}
		return toTenantResponse(tenant), nil
	})
}

// GetByUser returns the tenant profile owned by a user account. Secondary-key
// lookups bypass the cache, which is keyed by ID only.
func (s *TenantService) GetByUser(ctx context.Context, userID string) (TenantResponse, error) {
	tenant, err := s.repo.GetByUserID(userID)
	if err != nil {
		return TenantResponse{}, err
	}
	return toTenantResponse(tenant), nil
}

// Update applies a partial update, refreshes the cache entry and emits
// tenant.updated with the applied changes.
func (s *TenantService) Update(ctx context.Context, id string, patch domain.TenantPatch) (TenantResponse, error) {
	tenant, err := s.repo.GetByID(id)
	if err != nil {
		return TenantResponse{}, err
	}

	if patch.PhoneNumber != nil && *patch.PhoneNumber != tenant.PhoneNumber {
		if existing, err := s.repo.GetByPhone(*patch.PhoneNumber); err == nil && existing.ID != id {
			return TenantResponse{}, fmt.Errorf("phone number already in use: %w", domain.ErrConflict)
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return TenantResponse{}, err
		}
	}

	if patch.Name != nil {
		tenant.Name = *patch.Name
	}
	if patch.PhoneNumber != nil {
		tenant.PhoneNumber = *patch.PhoneNumber
	}
	if patch.Email != nil {
		tenant.Email = *patch.Email
	}
	if patch.NationalID != nil {
		tenant.NationalID = *patch.NationalID
	}
	if patch.Type != nil {
		tenant.Type = domain.TenantType(*patch.Type)
	}
	if patch.Status != nil {
		tenant.Status = domain.TenantStatus(*patch.Status)
	}
	if patch.Address != nil {
		tenant.Address = *patch.Address
	}
	if patch.Occupation != nil {
		tenant.Occupation = *patch.Occupation
	}
	if patch.MonthlyIncome != nil {
		tenant.MonthlyIncome = *patch.MonthlyIncome
	}
	if patch.LeaseTerms != nil {
		tenant.LeaseTerms = *patch.LeaseTerms
	}

	if err := s.repo.Update(tenant); err != nil {
		return TenantResponse{}, err
	}

	resp := toTenantResponse(tenant)
	if err := s.cache.Put(ctx, tenant.ID, resp); err != nil {
		return TenantResponse{}, err
	}
	s.emit(ctx, events.TopicTenantUpdated, events.TenantEvent{
		TenantID: tenant.ID,
		UserID:   tenant.UserID,
		Changes:  &patch,
	})
	return resp, nil
}

// Delete removes a tenant, drops the cache entry and emits tenant.deleted.
func (s *TenantService) Delete(ctx context.Context, id string) error {
	tenant, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	if err := s.cache.Drop(ctx, id); err != nil {
		return err
	}
	s.emit(ctx, events.TopicTenantDeleted, events.TenantEvent{
		TenantID: tenant.ID,
		UserID:   tenant.UserID,
	})
	s.logger.Info("tenant deleted", slog.String("tenant_id", id))
	return nil
}

// Verify marks a tenant as verified and activates the profile.
func (s *TenantService) Verify(ctx context.Context, id string) (TenantResponse, error) {
	tenant, err := s.repo.GetByID(id)
	if err != nil {
		return TenantResponse{}, err
	}
	now := s.now().UTC()
	tenant.IsVerified = true
	tenant.VerifiedAt = &now
	tenant.Status = domain.TenantStatusActive

	if err := s.repo.Update(tenant); err != nil {
		return TenantResponse{}, err
	}
	resp := toTenantResponse(tenant)
	if err := s.cache.Put(ctx, tenant.ID, resp); err != nil {
		return TenantResponse{}, err
	}
	s.emit(ctx, events.TopicTenantVerified, events.TenantEvent{
		TenantID: tenant.ID,
		UserID:   tenant.UserID,
	})
	return resp, nil
}

// AssignProperty places a tenant into a property under the given lease terms.
// A tenant already assigned to a property must be removed first.
func (s *TenantService) AssignProperty(ctx context.Context, id string, lease domain.LeaseAssignment) (TenantResponse, error) {
	if lease.PropertyID == "" {
		return TenantResponse{}, fmt.Errorf("property is required: %w", domain.ErrValidation)
	}

	tenant, err := s.repo.GetByID(id)
	if err != nil {
		return TenantResponse{}, err
	}
	if tenant.CurrentPropertyID != "" {
		return TenantResponse{}, fmt.Errorf("tenant already assigned to a property: %w", domain.ErrConflict)
	}

	start := lease.LeaseStartDate
	tenant.CurrentPropertyID = lease.PropertyID
	tenant.CaretakerID = lease.CaretakerID
	tenant.LeaseStartDate = &start
	tenant.LeaseEndDate = lease.LeaseEndDate
	tenant.MonthlyRent = lease.MonthlyRent
	tenant.SecurityDeposit = lease.SecurityDeposit
	tenant.LeaseTerms = lease.LeaseTerms
	tenant.ActiveLeases++

	if err := s.repo.Update(tenant); err != nil {
		return TenantResponse{}, err
	}
	resp := toTenantResponse(tenant)
	if err := s.cache.Put(ctx, tenant.ID, resp); err != nil {
		return TenantResponse{}, err
	}
	s.emit(ctx, events.TopicTenantPropertyAssign, events.TenantEvent{
		TenantID:    tenant.ID,
		UserID:      tenant.UserID,
		PropertyID:  lease.PropertyID,
		CaretakerID: lease.CaretakerID,
	})

	s.logger.Info("tenant assigned to property",
		slog.String("tenant_id", tenant.ID),
		slog.String("property_id", lease.PropertyID),
	)
	return resp, nil
}

// RemoveProperty ends the tenant's current lease and clears the assignment.
func (s *TenantService) RemoveProperty(ctx context.Context, id string) (TenantResponse, error) {
	tenant, err := s.repo.GetByID(id)
	if err != nil {
		return TenantResponse{}, err
	}
	if tenant.CurrentPropertyID == "" {
		return TenantResponse{}, fmt.Errorf("tenant has no assigned property: %w", domain.ErrValidation)
	}

	propertyID := tenant.CurrentPropertyID
	tenant.CurrentPropertyID = ""
	tenant.CaretakerID = ""
	tenant.LeaseStartDate = nil
	tenant.LeaseEndDate = nil
	tenant.MonthlyRent = 0
	tenant.SecurityDeposit = 0
	tenant.LeaseTerms = ""
	if tenant.ActiveLeases > 0 {
		tenant.ActiveLeases--
	}

	if err := s.repo.Update(tenant); err != nil {
		return TenantResponse{}, err
	}
	resp := toTenantResponse(tenant)
	if err := s.cache.Put(ctx, tenant.ID, resp); err != nil {
		return TenantResponse{}, err
	}
	s.emit(ctx, events.TopicTenantPropertyRemoved, events.TenantEvent{
		TenantID:   tenant.ID,
		UserID:     tenant.UserID,
		PropertyID: propertyID,
	})

	s.logger.Info("tenant removed from property",
		slog.String("tenant_id", tenant.ID),
		slog.String("property_id", propertyID),
	)
	return resp, nil
}

// Search returns a filtered page of tenants and the total match count.
func (s *TenantService) Search(ctx context.Context, filter domain.TenantFilter) ([]TenantResponse, int, error) {
	tenants, total, err := s.repo.Search(filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]TenantResponse, len(tenants))
	for i, t := range tenants {
		out[i] = toTenantResponse(t)
	}
	return out, total, nil
}

// FindByProperty returns the tenants assigned to a property.
func (s *TenantService) FindByProperty(ctx context.Context, propertyID string, page, limit int) ([]TenantResponse, int, error) {
	return s.Search(ctx, domain.TenantFilter{PropertyID: propertyID, Page: page, Limit: limit})
}

// FindByCaretaker returns the tenants managed by a caretaker.
func (s *TenantService) FindByCaretaker(ctx context.Context, caretakerID string, page, limit int) ([]TenantResponse, int, error) {
	return s.Search(ctx, domain.TenantFilter{CaretakerID: caretakerID, Page: page, Limit: limit})
}

func (s *TenantService) emit(ctx context.Context, topic events.Topic, payload events.Payload) {
	if err := s.events.Emit(ctx, topic, payload); err != nil {
		s.logger.Warn("failed to emit event",
			slog.String("topic", string(topic)),
			slog.String("error", err.Error()),
		)
	}
}
