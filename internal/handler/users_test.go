package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iamEzaz/baribhara/internal/domain"
	"github.com/iamEzaz/baribhara/internal/events"
	"github.com/iamEzaz/baribhara/internal/rescache"
	"github.com/iamEzaz/baribhara/internal/service"
)

type stubStore struct {
	data map[string]string
}

func (s *stubStore) Fetch(ctx context.Context, key string) (string, bool, error) {
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *stubStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.data[key] = value.(string)
	return nil
}

func (s *stubStore) Delete(ctx context.Context, key string) error {
	delete(s.data, key)
	return nil
}

type stubPublisher struct{}

func (stubPublisher) Emit(ctx context.Context, topic events.Topic, payload events.Payload) error {
	return nil
}

type stubUserRepo struct {
	byID map[string]*domain.User
}

func (m *stubUserRepo) Create(u *domain.User) error {
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *stubUserRepo) GetByID(id string) (*domain.User, error) {
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
}

func (m *stubUserRepo) findBy(match func(*domain.User) bool) (*domain.User, error) {
	for _, u := range m.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
}

func (m *stubUserRepo) GetByPhone(phone string) (*domain.User, error) {
	return m.findBy(func(u *domain.User) bool { return u.PhoneNumber == phone })
}

func (m *stubUserRepo) GetByEmail(email string) (*domain.User, error) {
	return m.findBy(func(u *domain.User) bool { return u.Email != "" && u.Email == email })
}

func (m *stubUserRepo) GetByNationalID(nid string) (*domain.User, error) {
	return m.findBy(func(u *domain.User) bool { return u.NationalID != "" && u.NationalID == nid })
}

func (m *stubUserRepo) Update(u *domain.User) error {
	if _, ok := m.byID[u.ID]; !ok {
		return fmt.Errorf("user %s: %w", u.ID, domain.ErrNotFound)
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *stubUserRepo) Delete(id string) error {
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	delete(m.byID, id)
	return nil
}

func (m *stubUserRepo) Search(filter domain.UserFilter) ([]*domain.User, int, error) {
	var out []*domain.User
	for _, u := range m.byID {
		cp := *u
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func newUserMux() *http.ServeMux {
	repo := &stubUserRepo{byID: map[string]*domain.User{}}
	store := &stubStore{data: map[string]string{}}
	cache := rescache.New[service.UserResponse](store, "user", time.Hour)
	users := service.NewUserService(repo, cache, stubPublisher{}, nil)

	mux := http.NewServeMux()
	NewUserHandler(users, nil).Register(mux)
	return mux
}

func TestUserRoutesRoundTrip(t *testing.T) {
	mux := newUserMux()

	body := `{"name":"Rahim","phoneNumber":"+8801712345678","email":"rahim@example.com"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("create failed: %+v", env)
	}
	created, ok := env.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected data shape: %T", env.Data)
	}
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("created user has no id")
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/users/"+id, strings.NewReader(`{"name":"Rahim Uddin"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d, body %s", rec.Code, rec.Body.String())
	}
	env = decodeEnvelope(t, rec)
	updated := env.Data.(map[string]interface{})
	if updated["name"] != "Rahim Uddin" {
		t.Fatalf("update not applied: %v", updated["name"])
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/users/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/"+id, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status %d", rec.Code)
	}
}

func TestUserRouteValidation(t *testing.T) {
	mux := newUserMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(`{"name":"No Phone"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUserSearchRoute(t *testing.T) {
	mux := newUserMux()

	for i := 0; i < 3; i++ {
		body := fmt.Sprintf(`{"name":"User %d","phoneNumber":"+88017000000%d"}`, i, i)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(body)))
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed %d: status %d", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users?page=1&limit=10", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("search: status %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Meta == nil || env.Meta.Total != 3 {
		t.Fatalf("expected total 3, got %+v", env.Meta)
	}
}
