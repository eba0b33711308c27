package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iamEzaz/baribhara/internal/domain"
	"github.com/iamEzaz/baribhara/internal/security/auth"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

// TokenStore holds issued refresh tokens so they can be revoked. The Redis
// client satisfies it.
type TokenStore interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Fetch(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
}

// TokenPair is the result of a successful login or refresh
type TokenPair struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int          `json:"expiresIn"` // access token lifetime in seconds
	User         UserResponse `json:"user"`
}

// LoginInput identifies an account by phone number or email
type LoginInput struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// AuthService issues and revokes JWT token pairs for user accounts. The
// refresh token for a user lives in the token store under
// "refresh_token:{userId}", so a logout or re-login invalidates older ones.
type AuthService struct {
	users  *UserService
	repo   domain.UserRepository
	tokens *auth.TokenManager
	store  TokenStore
	logger *slog.Logger
	now    func() time.Time
}

// NewAuthService creates an auth service
func NewAuthService(users *UserService, repo domain.UserRepository, tokens *auth.TokenManager, store TokenStore, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{users: users, repo: repo, tokens: tokens, store: store, logger: logger, now: time.Now}
}

func refreshTokenKey(userID string) string {
	return "refresh_token:" + userID
}

// Register creates a user account and logs it in.
func (s *AuthService) Register(ctx context.Context, input CreateUserInput) (TokenPair, error) {
	if input.Password == "" {
		return TokenPair{}, fmt.Errorf("password is required: %w", domain.ErrValidation)
	}
	if _, err := s.users.Create(ctx, input); err != nil {
		return TokenPair{}, err
	}
	return s.Login(ctx, LoginInput{Identifier: input.PhoneNumber, Password: input.Password})
}

// Login verifies credentials and issues a token pair. Suspended and banned
// accounts are rejected.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (TokenPair, error) {
	if input.Identifier == "" || input.Password == "" {
		return TokenPair{}, fmt.Errorf("identifier and password are required: %w", domain.ErrValidation)
	}

	user, err := s.lookup(input.Identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return TokenPair{}, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return TokenPair{}, err
	}
	if !checkPassword(user.PasswordHash, input.Password) {
		return TokenPair{}, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if user.Status == domain.UserStatusSuspended || user.Status == domain.UserStatusBanned {
		return TokenPair{}, fmt.Errorf("account %s: %w", user.Status, domain.ErrUnauthorized)
	}

	now := s.now().UTC()
	user.LastLoginAt = &now
	if err := s.repo.Update(user); err != nil {
		return TokenPair{}, err
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return TokenPair{}, err
	}
	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	return pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The presented
// token must match the one currently stored for the user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil {
		return TokenPair{}, fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
	}

	stored, found, err := s.store.Fetch(ctx, refreshTokenKey(claims.UserID))
	if err != nil {
		return TokenPair{}, err
	}
	if !found || stored != refreshToken {
		return TokenPair{}, fmt.Errorf("refresh token revoked: %w", domain.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return TokenPair{}, fmt.Errorf("account gone: %w", domain.ErrUnauthorized)
		}
		return TokenPair{}, err
	}
	if user.Status == domain.UserStatusSuspended || user.Status == domain.UserStatusBanned {
		return TokenPair{}, fmt.Errorf("account %s: %w", user.Status, domain.ErrUnauthorized)
	}
	return s.issue(ctx, user)
}

// Logout revokes the user's refresh token.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.store.Delete(ctx, refreshTokenKey(userID)); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	s.logger.Info("user logged out", slog.String("user_id", userID))
	return nil
}

// Profile returns the account behind a token's user ID.
func (s *AuthService) Profile(ctx context.Context, userID string) (UserResponse, error) {
	return s.users.Get(ctx, userID)
}

func (s *AuthService) issue(ctx context.Context, user *domain.User) (TokenPair, error) {
	access, err := s.tokens.GenerateToken(user.ID, user.PhoneNumber, accessTokenTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := s.tokens.GenerateToken(user.ID, user.PhoneNumber, refreshTokenTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	if err := s.store.Set(ctx, refreshTokenKey(user.ID), refresh, refreshTokenTTL); err != nil {
		return TokenPair{}, fmt.Errorf("failed to store refresh token: %w", err)
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(accessTokenTTL.Seconds()),
		User:         toUserResponse(user),
	}, nil
}

// lookup resolves an identifier to a user: anything containing "@" is treated
// as an email, everything else as a phone number.
func (s *AuthService) lookup(identifier string) (*domain.User, error) {
	if strings.Contains(identifier, "@") {
		return s.repo.GetByEmail(identifier)
	}
	return s.repo.GetByPhone(identifier)
}
