package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iamEzaz/baribhara/internal/domain"
	"github.com/iamEzaz/baribhara/internal/rescache"
	"github.com/iamEzaz/baribhara/internal/security/auth"
)

func newAuthFixture() (*AuthService, *memUserRepo, *memStore) {
	repo := newMemUserRepo()
	store := newMemStore()
	cache := rescache.New[UserResponse](store, "user", time.Hour)
	users := NewUserService(repo, cache, &recordPublisher{}, nil)
	tokens := auth.NewTokenManager("test-secret", "baribhara-test")
	return NewAuthService(users, repo, tokens, store, nil), repo, store
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newAuthFixture()

	pair, err := svc.Register(ctx, CreateUserInput{
		Name:        "Rahim",
		PhoneNumber: "+8801712345678",
		Email:       "rahim@example.com",
		Password:    "Password123",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens")
	}
	if pair.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Fatalf("unexpected access lifetime: %d", pair.ExpiresIn)
	}
	if pair.User.PhoneNumber != "+8801712345678" {
		t.Fatalf("unexpected user in pair: %+v", pair.User)
	}
	stored, found, _ := store.Fetch(ctx, "refresh_token:"+pair.User.ID)
	if !found || stored != pair.RefreshToken {
		t.Fatalf("refresh token not stored for the user")
	}

	// Login by email works too
	byEmail, err := svc.Login(ctx, LoginInput{Identifier: "rahim@example.com", Password: "Password123"})
	if err != nil {
		t.Fatalf("login by email failed: %v", err)
	}
	if byEmail.User.ID != pair.User.ID {
		t.Fatalf("email login resolved the wrong account")
	}
	if byEmail.User.LastLoginAt == nil {
		t.Fatalf("login must record last_login_at")
	}
}

func TestRegisterRequiresPassword(t *testing.T) {
	svc, _, _ := newAuthFixture()
	_, err := svc.Register(context.Background(), CreateUserInput{Name: "X", PhoneNumber: "+880170000001"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture()

	if _, err := svc.Register(ctx, CreateUserInput{Name: "A", PhoneNumber: "+880170000002", Password: "Right123"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, err := svc.Login(ctx, LoginInput{Identifier: "+880170000002", Password: "Wrong123"})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownIdentifier(t *testing.T) {
	svc, _, _ := newAuthFixture()
	_, err := svc.Login(context.Background(), LoginInput{Identifier: "+880170009999", Password: "Whatever1"})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("unknown accounts must look like bad credentials, got %v", err)
	}
}

func TestLoginSuspendedAccount(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newAuthFixture()

	pair, err := svc.Register(ctx, CreateUserInput{Name: "B", PhoneNumber: "+880170000003", Password: "Password1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	repo.byID[pair.User.ID].Status = domain.UserStatusSuspended

	_, err = svc.Login(ctx, LoginInput{Identifier: "+880170000003", Password: "Password1"})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for suspended account, got %v", err)
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newAuthFixture()

	pair, err := svc.Register(ctx, CreateUserInput{Name: "C", PhoneNumber: "+880170000004", Password: "Password1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if next.AccessToken == "" || next.RefreshToken == "" {
		t.Fatalf("expected a fresh token pair")
	}
	stored, found, _ := store.Fetch(ctx, "refresh_token:"+pair.User.ID)
	if !found || stored != next.RefreshToken {
		t.Fatalf("store must hold the newest refresh token")
	}
}

func TestRefreshRevokedToken(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newAuthFixture()

	pair, err := svc.Register(ctx, CreateUserInput{Name: "D", PhoneNumber: "+880170000005", Password: "Password1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := store.Delete(ctx, "refresh_token:"+pair.User.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for revoked token, got %v", err)
	}
}

func TestRefreshGarbageToken(t *testing.T) {
	svc, _, _ := newAuthFixture()
	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesRefresh(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture()

	pair, err := svc.Register(ctx, CreateUserInput{Name: "E", PhoneNumber: "+880170000006", Password: "Password1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := svc.Logout(ctx, pair.User.ID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("refresh after logout must fail, got %v", err)
	}
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture()

	pair, err := svc.Register(ctx, CreateUserInput{Name: "F", PhoneNumber: "+880170000007", Password: "Password1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	profile, err := svc.Profile(ctx, pair.User.ID)
	if err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	if profile.ID != pair.User.ID || profile.Name != "F" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}
