package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iamEzaz/baribhara/internal/domain"
	"github.com/iamEzaz/baribhara/internal/events"
	"github.com/iamEzaz/baribhara/internal/rescache"
)

// PropertyResponse is the API and cache shape of a property listing.
type PropertyResponse struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	Type            string         `json:"type"`
	Status          string         `json:"status"`
	Address         domain.Address `json:"address"`
	RentAmount      float64        `json:"rentAmount"`
	SecurityDeposit float64        `json:"securityDeposit"`
	Area            float64        `json:"area"`
	Bedrooms        int            `json:"bedrooms"`
	Bathrooms       int            `json:"bathrooms"`
	Floor           int            `json:"floor"`
	TotalFloors     int            `json:"totalFloors"`
	Amenities       []string       `json:"amenities,omitempty"`
	Images          []string       `json:"images,omitempty"`
	CaretakerID     string         `json:"caretakerId"`
	CurrentTenantID string         `json:"currentTenantId,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

func toPropertyResponse(p *domain.Property) PropertyResponse {
	return PropertyResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Type:            string(p.Type),
		Status:          string(p.Status),
		Address:         p.Address,
		RentAmount:      p.RentAmount,
		SecurityDeposit: p.SecurityDeposit,
		Area:            p.Area,
		Bedrooms:        p.Bedrooms,
		Bathrooms:       p.Bathrooms,
		Floor:           p.Floor,
		TotalFloors:     p.TotalFloors,
		Amenities:       p.Amenities,
		Images:          p.Images,
		CaretakerID:     p.CaretakerID,
		CurrentTenantID: p.CurrentTenantID,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// CreatePropertyInput carries the fields of a new listing
type CreatePropertyInput struct {
	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	Type            string         `json:"type"`
	Address         domain.Address `json:"address"`
	RentAmount      float64        `json:"rentAmount"`
	SecurityDeposit float64        `json:"securityDeposit,omitempty"`
	Area            float64        `json:"area,omitempty"`
	Bedrooms        int            `json:"bedrooms,omitempty"`
	Bathrooms       int            `json:"bathrooms,omitempty"`
	Floor           int            `json:"floor,omitempty"`
	TotalFloors     int            `json:"totalFloors,omitempty"`
	Amenities       []string       `json:"amenities,omitempty"`
	Images          []string       `json:"images,omitempty"`
	CaretakerID     string         `json:"caretakerId"`
}

// PropertyService owns the property resource: repository writes, the
// read-through cache, and change events.
type PropertyService struct {
	repo   domain.PropertyRepository
	cache  *rescache.Cache[PropertyResponse]
	events events.Publisher
	logger *slog.Logger
}

// NewPropertyService creates a property service
func NewPropertyService(repo domain.PropertyRepository, cache *rescache.Cache[PropertyResponse], publisher events.Publisher, logger *slog.Logger) *PropertyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PropertyService{repo: repo, cache: cache, events: publisher, logger: logger}
}

// Create lists a new property. New listings start out available.
func (s *PropertyService) Create(ctx context.Context, input CreatePropertyInput) (PropertyResponse, error) {
	if input.Name == "" || input.CaretakerID == "" {
		return PropertyResponse{}, fmt.Errorf("name and caretaker are required: %w", domain.ErrValidation)
	}
	if input.RentAmount < 0 {
		return PropertyResponse{}, fmt.Errorf("rent amount must not be negative: %w", domain.ErrValidation)
	}

	property := &domain.Property{
		ID:              uuid.New().String(),
		Name:            input.Name,
		Description:     input.Description,
		Type:            domain.PropertyType(input.Type),
		Status:          domain.PropertyStatusAvailable,
		Address:         input.Address,
		RentAmount:      input.RentAmount,
		SecurityDeposit: input.SecurityDeposit,
		Area:            input.Area,
		Bedrooms:        input.Bedrooms,
		Bathrooms:       input.Bathrooms,
		Floor:           input.Floor,
		TotalFloors:     input.TotalFloors,
		Amenities:       input.Amenities,
		Images:          input.Images,
		CaretakerID:     input.CaretakerID,
	}
	if property.Type == "" {
		property.Type = domain.PropertyTypeApartment
	}

	if err := s.repo.Create(property); err != nil {
		return PropertyResponse{}, err
	}

	resp := toPropertyResponse(property)
	if err := s.cache.Put(ctx, property.ID, resp); err != nil {
		return PropertyResponse{}, err
	}
	s.emit(ctx, events.TopicPropertyCreated, events.PropertyEvent{
		PropertyID:  property.ID,
		CaretakerID: property.CaretakerID,
		Type:        string(property.Type),
	})

	s.logger.Info("property created",
		slog.String("property_id", property.ID),
		slog.String("caretaker_id", property.CaretakerID),
	)
	return resp, nil
}

// Get returns a property by ID, serving from the cache when possible.
func (s *PropertyService) Get(ctx context.Context, id string) (PropertyResponse, error) {
	return s.cache.GetOrFetch(ctx, id, func() (PropertyResponse, error) {
		property, err := s.repo.GetByID(id)
		if err != nil {
			return PropertyResponse{}, err
		}
		return toPropertyResponse(property), nil
	})
}

// Update applies a partial update, refreshes the cache entry and emits
// property.updated with the applied changes.
func (s *PropertyService) Update(ctx context.Context, id string, patch domain.PropertyPatch) (PropertyResponse, error) {
	property, err := s.repo.GetByID(id)
	if err != nil {
		return PropertyResponse{}, err
	}

	if patch.Name != nil {
		property.Name = *patch.Name
	}
	if patch.Description != nil {
		property.Description = *patch.Description
	}
	if patch.Type != nil {
		property.Type = domain.PropertyType(*patch.Type)
	}
	if patch.Status != nil {
		property.Status = domain.PropertyStatus(*patch.Status)
	}
	if patch.Address != nil {
		property.Address = *patch.Address
	}
	if patch.RentAmount != nil {
		property.RentAmount = *patch.RentAmount
	}
	if patch.SecurityDeposit != nil {
		property.SecurityDeposit = *patch.SecurityDeposit
	}
	if patch.Area != nil {
		property.Area = *patch.Area
	}
	if patch.Bedrooms != nil {
		property.Bedrooms = *patch.Bedrooms
	}
	if patch.Bathrooms != nil {
		property.Bathrooms = *patch.Bathrooms
	}
	if patch.Floor != nil {
		property.Floor = *patch.Floor
	}
	if patch.TotalFloors != nil {
		property.TotalFloors = *patch.TotalFloors
	}
	if patch.Amenities != nil {
		property.Amenities = *patch.Amenities
	}
	if patch.Images != nil {
		property.Images = *patch.Images
	}
	if patch.CurrentTenantID != nil {
		property.CurrentTenantID = *patch.CurrentTenantID
	}

	if err := s.repo.Update(property); err != nil {
		return PropertyResponse{}, err
	}

	resp := toPropertyResponse(property)
	if err := s.cache.Put(ctx, property.ID, resp); err != nil {
		return PropertyResponse{}, err
	}
	s.emit(ctx, events.TopicPropertyUpdated, events.PropertyEvent{
		PropertyID:  property.ID,
		CaretakerID: property.CaretakerID,
		Type:        string(property.Type),
		Changes:     &patch,
	})
	return resp, nil
}

// Delete removes a property, drops the cache entry and emits property.deleted.
func (s *PropertyService) Delete(ctx context.Context, id string) error {
	property, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	if err := s.cache.Drop(ctx, id); err != nil {
		return err
	}
	s.emit(ctx, events.TopicPropertyDeleted, events.PropertyEvent{
		PropertyID:  property.ID,
		CaretakerID: property.CaretakerID,
	})
	s.logger.Info("property deleted", slog.String("property_id", id))
	return nil
}

// Search returns a filtered page of properties and the total match count.
func (s *PropertyService) Search(ctx context.Context, filter domain.PropertyFilter) ([]PropertyResponse, int, error) {
	properties, total, err := s.repo.Search(filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PropertyResponse, len(properties))
	for i, p := range properties {
		out[i] = toPropertyResponse(p)
	}
	return out, total, nil
}

// FindByCaretaker returns the properties managed by a caretaker.
func (s *PropertyService) FindByCaretaker(ctx context.Context, caretakerID string, page, limit int) ([]PropertyResponse, int, error) {
	return s.Search(ctx, domain.PropertyFilter{CaretakerID: caretakerID, Page: page, Limit: limit})
}

func (s *PropertyService) emit(ctx context.Context, topic events.Topic, payload events.Payload) {
	if err := s.events.Emit(ctx, topic, payload); err != nil {
		s.logger.Warn("failed to emit event",
			slog.String("topic", string(topic)),
			slog.String("error", err.Error()),
		)
	}
}
