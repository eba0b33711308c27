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

// CaretakerResponse is the API and cache shape of a caretaker profile.
type CaretakerResponse struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	PhoneNumber      string         `json:"phoneNumber"`
	Email            string         `json:"email,omitempty"`
	NationalID       string         `json:"nationalId,omitempty"`
	Type             string         `json:"type"`
	Status           string         `json:"status"`
	CompanyName      string         `json:"companyName,omitempty"`
	LicenseNumber    string         `json:"licenseNumber,omitempty"`
	Description      string         `json:"description,omitempty"`
	Address          domain.Address `json:"address"`
	Specialties      []string       `json:"specialties,omitempty"`
	Languages        []string       `json:"languages,omitempty"`
	Rating           float64        `json:"rating"`
	TotalProperties  int            `json:"totalProperties"`
	ActiveProperties int            `json:"activeProperties"`
	TotalTenants     int            `json:"totalTenants"`
	IsVerified       bool           `json:"isVerified"`
	VerifiedAt       *time.Time     `json:"verifiedAt,omitempty"`
	Documents        []string       `json:"documents,omitempty"`
	UserID           string         `json:"userId"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

func toCaretakerResponse(c *domain.Caretaker) CaretakerResponse {
	return CaretakerResponse{
		ID:               c.ID,
		Name:             c.Name,
		PhoneNumber:      c.PhoneNumber,
		Email:            c.Email,
		NationalID:       c.NationalID,
		Type:             string(c.Type),
		Status:           string(c.Status),
		CompanyName:      c.CompanyName,
		LicenseNumber:    c.LicenseNumber,
		Description:      c.Description,
		Address:          c.Address,
		Specialties:      c.Specialties,
		Languages:        c.Languages,
		Rating:           c.Rating,
		TotalProperties:  c.TotalProperties,
		ActiveProperties: c.ActiveProperties,
		TotalTenants:     c.TotalTenants,
		IsVerified:       c.IsVerified,
		VerifiedAt:       c.VerifiedAt,
		Documents:        c.Documents,
		UserID:           c.UserID,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// CreateCaretakerInput carries the fields of a new caretaker profile
type CreateCaretakerInput struct {
	Name          string         `json:"name"`
	PhoneNumber   string         `json:"phoneNumber"`
	Email         string         `json:"email,omitempty"`
	NationalID    string         `json:"nationalId,omitempty"`
	Type          string         `json:"type,omitempty"`
	CompanyName   string         `json:"companyName,omitempty"`
	LicenseNumber string         `json:"licenseNumber,omitempty"`
	Description   string         `json:"description,omitempty"`
	Address       domain.Address `json:"address,omitempty"`
	Specialties   []string       `json:"specialties,omitempty"`
	Languages     []string       `json:"languages,omitempty"`
	UserID        string         `json:"userId"`
}

// CaretakerService owns the caretaker resource: repository writes, the
// read-through cache, change events, and verification transitions.
type CaretakerService struct {
	repo   domain.CaretakerRepository
	cache  *rescache.Cache[CaretakerResponse]
	events events.Publisher
	logger *slog.Logger
	now    func() time.Time
}

// NewCaretakerService creates a caretaker service
func NewCaretakerService(repo domain.CaretakerRepository, cache *rescache.Cache[CaretakerResponse], publisher events.Publisher, logger *slog.Logger) *CaretakerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CaretakerService{repo: repo, cache: cache, events: publisher, logger: logger, now: time.Now}
}

// Create registers a caretaker profile. A user account holds at most one
// caretaker profile, and the phone number must be unique among caretakers.
func (s *CaretakerService) Create(ctx context.Context, input CreateCaretakerInput) (CaretakerResponse, error) {
	if input.Name == "" || input.PhoneNumber == "" || input.UserID == "" {
		return CaretakerResponse{}, fmt.Errorf("name, phone number and user are required: %w", domain.ErrValidation)
	}

	if _, err := s.repo.GetByUserID(input.UserID); err == nil {
		return CaretakerResponse{}, fmt.Errorf("user already has a caretaker profile: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return CaretakerResponse{}, err
	}
	if _, err := s.repo.GetByPhone(input.PhoneNumber); err == nil {
		return CaretakerResponse{}, fmt.Errorf("phone number already in use: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return CaretakerResponse{}, err
	}

	caretaker := &domain.Caretaker{
		ID:            uuid.New().String(),
		Name:          input.Name,
		PhoneNumber:   input.PhoneNumber,
		Email:         input.Email,
		NationalID:    input.NationalID,
		Type:          domain.CaretakerType(input.Type),
		Status:        domain.CaretakerStatusActive,
		CompanyName:   input.CompanyName,
		LicenseNumber: input.LicenseNumber,
		Description:   input.Description,
		Address:       input.Address,
		Specialties:   input.Specialties,
		Languages:     input.Languages,
		UserID:        input.UserID,
	}
	if caretaker.Type == "" {
		caretaker.Type = domain.CaretakerTypeIndividual
	}

	if err := s.repo.Create(caretaker); err != nil {
		return CaretakerResponse{}, err
	}

	resp := toCaretakerResponse(caretaker)
	if err := s.cache.Put(ctx, caretaker.ID, resp); err != nil {
		return CaretakerResponse{}, err
	}
	s.emit(ctx, events.TopicCaretakerCreated, events.CaretakerEvent{
		CaretakerID: caretaker.ID,
		UserID:      caretaker.UserID,
		Type:        string(caretaker.Type),
	})

	s.logger.Info("caretaker created",
		slog.String("caretaker_id", caretaker.ID),
		slog.String("user_id", caretaker.UserID),
	)
	return resp, nil
}

// Get returns a caretaker by ID, serving from the cache when possible.
func (s *CaretakerService) Get(ctx context.Context, id string) (CaretakerResponse, error) {
	return s.cache.GetOrFetch(ctx, id, func() (CaretakerResponse, error) {
		caretaker, err := s.repo.GetByID(id)
		if err != nil {
			return CaretakerResponse{}, err
		}
		return toCaretakerResponse(caretaker), nil
	})
}

// GetByUser returns the caretaker profile owned by a user account.
func (s *CaretakerService) GetByUser(ctx context.Context, userID string) (CaretakerResponse, error) {
	caretaker, err := s.repo.GetByUserID(userID)
	if err != nil {
		return CaretakerResponse{}, err
	}
	return toCaretakerResponse(caretaker), nil
}

// Update applies a partial update, refreshes the cache entry and emits
// caretaker.updated with the applied changes.
func (s *CaretakerService) Update(ctx context.Context, id string, patch domain.CaretakerPatch) (CaretakerResponse, error) {
	caretaker, err := s.repo.GetByID(id)
	if err != nil {
		return CaretakerResponse{}, err
	}

	if patch.Name != nil {
		caretaker.Name = *patch.Name
	}
	if patch.Email != nil {
		caretaker.Email = *patch.Email
	}
	if patch.NationalID != nil {
		caretaker.NationalID = *patch.NationalID
	}
	if patch.Type != nil {
		caretaker.Type = domain.CaretakerType(*patch.Type)
	}
	if patch.CompanyName != nil {
		caretaker.CompanyName = *patch.CompanyName
	}
	if patch.LicenseNumber != nil {
		caretaker.LicenseNumber = *patch.LicenseNumber
	}
	if patch.Description != nil {
		caretaker.Description = *patch.Description
	}
	if patch.Address != nil {
		caretaker.Address = *patch.Address
	}
	if patch.Specialties != nil {
		caretaker.Specialties = *patch.Specialties
	}
	if patch.Languages != nil {
		caretaker.Languages = *patch.Languages
	}
	if patch.Documents != nil {
		caretaker.Documents = *patch.Documents
	}

	if err := s.repo.Update(caretaker); err != nil {
		return CaretakerResponse{}, err
	}

	resp := toCaretakerResponse(caretaker)
	if err := s.cache.Put(ctx, caretaker.ID, resp); err != nil {
		return CaretakerResponse{}, err
	}
	s.emit(ctx, events.TopicCaretakerUpdated, events.CaretakerEvent{
		CaretakerID: caretaker.ID,
		UserID:      caretaker.UserID,
		Changes:     &patch,
	})
	return resp, nil
}

// Delete removes a caretaker, drops the cache entry and emits
// caretaker.deleted.
func (s *CaretakerService) Delete(ctx context.Context, id string) error {
	caretaker, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	if err := s.cache.Drop(ctx, id); err != nil {
		return err
	}
	s.emit(ctx, events.TopicCaretakerDeleted, events.CaretakerEvent{
		CaretakerID: caretaker.ID,
		UserID:      caretaker.UserID,
	})
	s.logger.Info("caretaker deleted", slog.String("caretaker_id", id))
	return nil
}

// Verify marks a caretaker as verified.
func (s *CaretakerService) Verify(ctx context.Context, id string) (CaretakerResponse, error) {
	caretaker, err := s.repo.GetByID(id)
	if err != nil {
		return CaretakerResponse{}, err
	}
	now := s.now().UTC()
	caretaker.IsVerified = true
	caretaker.VerifiedAt = &now

	if err := s.repo.Update(caretaker); err != nil {
		return CaretakerResponse{}, err
	}
	resp := toCaretakerResponse(caretaker)
	if err := s.cache.Put(ctx, caretaker.ID, resp); err != nil {
		return CaretakerResponse{}, err
	}
	s.emit(ctx, events.TopicCaretakerVerified, events.CaretakerEvent{
		CaretakerID: caretaker.ID,
		UserID:      caretaker.UserID,
	})
	return resp, nil
}

// Suspend moves a caretaker to the suspended status.
func (s *CaretakerService) Suspend(ctx context.Context, id string) (CaretakerResponse, error) {
	return s.transition(ctx, id, domain.CaretakerStatusSuspended, events.TopicCaretakerSuspended)
}

// Activate moves a caretaker back to the active status.
func (s *CaretakerService) Activate(ctx context.Context, id string) (CaretakerResponse, error) {
	return s.transition(ctx, id, domain.CaretakerStatusActive, events.TopicCaretakerActivated)
}

func (s *CaretakerService) transition(ctx context.Context, id string, status domain.CaretakerStatus, topic events.Topic) (CaretakerResponse, error) {
	caretaker, err := s.repo.GetByID(id)
	if err != nil {
		return CaretakerResponse{}, err
	}
	caretaker.Status = status
	if err := s.repo.Update(caretaker); err != nil {
		return CaretakerResponse{}, err
	}
	resp := toCaretakerResponse(caretaker)
	if err := s.cache.Put(ctx, caretaker.ID, resp); err != nil {
		return CaretakerResponse{}, err
	}
	s.emit(ctx, topic, events.CaretakerEvent{CaretakerID: caretaker.ID, UserID: caretaker.UserID})
	return resp, nil
}

// Search returns a filtered page of caretakers and the total match count.
func (s *CaretakerService) Search(ctx context.Context, filter domain.CaretakerFilter) ([]CaretakerResponse, int, error) {
	caretakers, total, err := s.repo.Search(filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]CaretakerResponse, len(caretakers))
	for i, c := range caretakers {
		out[i] = toCaretakerResponse(c)
	}
	return out, total, nil
}

// TopRated returns verified, active caretakers ordered by rating.
func (s *CaretakerService) TopRated(ctx context.Context, limit int) ([]CaretakerResponse, error) {
	caretakers, _, err := s.Search(ctx, domain.CaretakerFilter{
		OnlyVerified: true,
		Limit:        limit,
		SortBy:       "rating",
		Order:        "DESC",
	})
	return caretakers, err
}

func (s *CaretakerService) emit(ctx context.Context, topic events.Topic, payload events.Payload) {
	if err := s.events.Emit(ctx, topic, payload); err != nil {
		s.logger.Warn("failed to emit event",
			slog.String("topic", string(topic)),
			slog.String("error", err.Error()),
		)
	}
}
