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

// UserResponse is the API shape of a user account. The password hash never
// leaves the service layer; this is also the exact payload stored in the
// cache, so hits and misses serve identical bytes.
type UserResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	PhoneNumber     string     `json:"phoneNumber"`
	Email           string     `json:"email,omitempty"`
	NationalID      string     `json:"nationalId,omitempty"`
	Status          string     `json:"status"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	IsPhoneVerified bool       `json:"isPhoneVerified"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Name:            u.Name,
		PhoneNumber:     u.PhoneNumber,
		Email:           u.Email,
		NationalID:      u.NationalID,
		Status:          string(u.Status),
		IsEmailVerified: u.IsEmailVerified,
		IsPhoneVerified: u.IsPhoneVerified,
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// CreateUserInput carries the fields of a user registration
type CreateUserInput struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email,omitempty"`
	NationalID  string `json:"nationalId,omitempty"`
	Password    string `json:"password"`
}

// UserService owns the user resource: repository writes, the read-through
// cache, and the change events other services consume.
type UserService struct {
	repo   domain.UserRepository
	cache  *rescache.Cache[UserResponse]
	events events.Publisher
	logger *slog.Logger
}

// NewUserService creates a user service
func NewUserService(repo domain.UserRepository, cache *rescache.Cache[UserResponse], publisher events.Publisher, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{repo: repo, cache: cache, events: publisher, logger: logger}
}

// Create registers a new user account. Phone number must be unique; email and
// national ID must be unique when present.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (UserResponse, error) {
	if input.Name == "" || input.PhoneNumber == "" {
		return UserResponse{}, fmt.Errorf("name and phone number are required: %w", domain.ErrValidation)
	}

	if err := s.checkUnique(input.PhoneNumber, input.Email, input.NationalID, ""); err != nil {
		return UserResponse{}, err
	}

	user := &domain.User{
		ID:          uuid.New().String(),
		Name:        input.Name,
		PhoneNumber: input.PhoneNumber,
		Email:       input.Email,
		NationalID:  input.NationalID,
		Status:      domain.UserStatusActive,
	}
	if input.Password != "" {
		hash, err := hashPassword(input.Password)
		if err != nil {
			return UserResponse{}, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Create(user); err != nil {
		return UserResponse{}, err
	}

	resp := toUserResponse(user)
	if err := s.cache.Put(ctx, user.ID, resp); err != nil {
		return UserResponse{}, err
	}
	s.emit(ctx, events.TopicUserCreated, events.UserEvent{
		UserID:      user.ID,
		PhoneNumber: user.PhoneNumber,
		Email:       user.Email,
	})

	s.logger.Info("user created", slog.String("user_id", user.ID))
	return resp, nil
}

// Get returns a user by ID, serving from the cache when possible.
func (s *UserService) Get(ctx context.Context, id string) (UserResponse, error) {
	return s.cache.GetOrFetch(ctx, id, func() (UserResponse, error) {
		user, err := s.repo.GetByID(id)
		if err != nil {
			return UserResponse{}, err
		}
		return toUserResponse(user), nil
	})
}

// GetByPhone returns a user by phone number. Lookups by secondary key bypass
// the cache, which is keyed by ID only.
func (s *UserService) GetByPhone(ctx context.Context, phone string) (UserResponse, error) {
	user, err := s.repo.GetByPhone(phone)
	if err != nil {
		return UserResponse{}, err
	}
	return toUserResponse(user), nil
}

// Update applies a partial update, refreshes the cache entry and emits
// user.updated with the applied changes.
func (s *UserService) Update(ctx context.Context, id string, patch domain.UserPatch) (UserResponse, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return UserResponse{}, err
	}

	phone, email, nationalID := "", "", ""
	if patch.PhoneNumber != nil && *patch.PhoneNumber != user.PhoneNumber {
		phone = *patch.PhoneNumber
	}
	if patch.Email != nil && *patch.Email != user.Email {
		email = *patch.Email
	}
	if patch.NationalID != nil && *patch.NationalID != user.NationalID {
		nationalID = *patch.NationalID
	}
	if err := s.checkUnique(phone, email, nationalID, id); err != nil {
		return UserResponse{}, err
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.PhoneNumber != nil {
		user.PhoneNumber = *patch.PhoneNumber
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.NationalID != nil {
		user.NationalID = *patch.NationalID
	}

	if err := s.repo.Update(user); err != nil {
		return UserResponse{}, err
	}

	resp := toUserResponse(user)
	if err := s.cache.Put(ctx, user.ID, resp); err != nil {
		return UserResponse{}, err
	}
	s.emit(ctx, events.TopicUserUpdated, events.UserEvent{
		UserID:      user.ID,
		PhoneNumber: user.PhoneNumber,
		Email:       user.Email,
		Changes:     &patch,
	})
	return resp, nil
}

// Delete removes a user, drops the cache entry and emits user.deleted. The
// repository delete comes first so a failed delete leaves the cache usable.
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	if err := s.cache.Drop(ctx, id); err != nil {
		return err
	}
	s.emit(ctx, events.TopicUserDeleted, events.UserEvent{
		UserID:      user.ID,
		PhoneNumber: user.PhoneNumber,
	})
	s.logger.Info("user deleted", slog.String("user_id", id))
	return nil
}

// Suspend moves a user to the suspended status.
func (s *UserService) Suspend(ctx context.Context, id string) (UserResponse, error) {
	return s.transition(ctx, id, domain.UserStatusSuspended, events.TopicUserSuspended)
}

// Activate moves a user back to the active status.
func (s *UserService) Activate(ctx context.Context, id string) (UserResponse, error) {
	return s.transition(ctx, id, domain.UserStatusActive, events.TopicUserActivated)
}

func (s *UserService) transition(ctx context.Context, id string, status domain.UserStatus, topic events.Topic) (UserResponse, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return UserResponse{}, err
	}
	user.Status = status
	if err := s.repo.Update(user); err != nil {
		return UserResponse{}, err
	}
	resp := toUserResponse(user)
	if err := s.cache.Put(ctx, user.ID, resp); err != nil {
		return UserResponse{}, err
	}
	s.emit(ctx, topic, events.UserEvent{UserID: user.ID, PhoneNumber: user.PhoneNumber})
	return resp, nil
}

// Search returns a filtered page of users and the total match count. Search
// results always come from the repository, never the cache.
func (s *UserService) Search(ctx context.Context, filter domain.UserFilter) ([]UserResponse, int, error) {
	users, total, err := s.repo.Search(filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return out, total, nil
}

// checkUnique fails with ErrConflict when another account already holds the
// given phone, email or national ID. Empty values are skipped; selfID excludes
// the record being updated.
func (s *UserService) checkUnique(phone, email, nationalID, selfID string) error {
	type lookup struct {
		value string
		get   func(string) (*domain.User, error)
		field string
	}
	lookups := []lookup{
		{phone, s.repo.GetByPhone, "phone number"},
		{email, s.repo.GetByEmail, "email"},
		{nationalID, s.repo.GetByNationalID, "national ID"},
	}
	for _, l := range lookups {
		if l.value == "" {
			continue
		}
		existing, err := l.get(l.value)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return err
		}
		if existing.ID != selfID {
			return fmt.Errorf("%s already in use: %w", l.field, domain.ErrConflict)
		}
	}
	return nil
}

func (s *UserService) emit(ctx context.Context, topic events.Topic, payload events.Payload) {
	if err := s.events.Emit(ctx, topic, payload); err != nil {
		s.logger.Warn("failed to emit event",
			slog.String("topic", string(topic)),
			slog.String("error", err.Error()),
		)
	}
}
