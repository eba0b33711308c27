package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/iamEzaz/baribhara/internal/domain"
	"github.com/iamEzaz/baribhara/internal/events"
	"github.com/iamEzaz/baribhara/internal/rescache"
)

type memCaretakerRepo struct {
	byID map[string]*domain.Caretaker
}

func newMemCaretakerRepo() *memCaretakerRepo {
	return &memCaretakerRepo{byID: map[string]*domain.Caretaker{}}
}

func (m *memCaretakerRepo) Create(c *domain.Caretaker) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *memCaretakerRepo) GetByID(id string) (*domain.Caretaker, error) {
	if c, ok := m.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, fmt.Errorf("caretaker: %w", domain.ErrNotFound)
}

func (m *memCaretakerRepo) findBy(match func(*domain.Caretaker) bool) (*domain.Caretaker, error) {
	for _, c := range m.byID {
		if match(c) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("caretaker: %w", domain.ErrNotFound)
}

func (m *memCaretakerRepo) GetByUserID(userID string) (*domain.Caretaker, error) {
	return m.findBy(func(c *domain.Caretaker) bool { return c.UserID == userID })
}

func (m *memCaretakerRepo) GetByPhone(phone string) (*domain.Caretaker, error) {
	return m.findBy(func(c *domain.Caretaker) bool { return c.PhoneNumber == phone })
}

func (m *memCaretakerRepo) Update(c *domain.Caretaker) error {
	if _, ok := m.byID[c.ID]; !ok {
		return fmt.Errorf("caretaker %s: %w", c.ID, domain.ErrNotFound)
	}
	c.UpdatedAt = time.Now()
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *memCaretakerRepo) Delete(id string) error {
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("caretaker %s: %w", id, domain.ErrNotFound)
	}
	delete(m.byID, id)
	return nil
}

func (m *memCaretakerRepo) Search(filter domain.CaretakerFilter) ([]*domain.Caretaker, int, error) {
	var out []*domain.Caretaker
	for _, c := range m.byID {
		if filter.OnlyVerified && (!c.IsVerified || c.Status != domain.CaretakerStatusActive) {
			continue
		}
		if filter.MinRating != nil && c.Rating < *filter.MinRating {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func newCaretakerFixture() (*CaretakerService, *memCaretakerRepo, *memStore, *recordPublisher) {
	repo := newMemCaretakerRepo()
	store := newMemStore()
	pub := &recordPublisher{}
	cache := rescache.New[CaretakerResponse](store, "caretaker", time.Hour)
	return NewCaretakerService(repo, cache, pub, nil), repo, store, pub
}

func TestCreateCaretaker(t *testing.T) {
	ctx := context.Background()
	svc, _, store, pub := newCaretakerFixture()

	caretaker, err := svc.Create(ctx, CreateCaretakerInput{
		Name: "Salam Property Care", PhoneNumber: "+880190000001", UserID: "u-1", Type: "company",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if caretaker.Status != string(domain.CaretakerStatusActive) {
		t.Fatalf("expected active, got %s", caretaker.Status)
	}
	if pub.last() != events.TopicCaretakerCreated {
		t.Fatalf("expected caretaker.created, got %s", pub.last())
	}
	if _, ok := store.data["caretaker:"+caretaker.ID]; !ok {
		t.Fatalf("expected cache entry after create")
	}
}

func TestCreateCaretakerOneProfilePerUser(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newCaretakerFixture()

	if _, err := svc.Create(ctx, CreateCaretakerInput{Name: "A", PhoneNumber: "+880190000002", UserID: "u-2"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err := svc.Create(ctx, CreateCaretakerInput{Name: "B", PhoneNumber: "+880190000003", UserID: "u-2"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestVerifySuspendActivateCaretaker(t *testing.T) {
	ctx := context.Background()
	svc, _, _, pub := newCaretakerFixture()

	caretaker, err := svc.Create(ctx, CreateCaretakerInput{Name: "C", PhoneNumber: "+880190000004", UserID: "u-3"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	verified, err := svc.Verify(ctx, caretaker.ID)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !verified.IsVerified || verified.VerifiedAt == nil {
		t.Fatalf("expected verification timestamp")
	}
	if pub.last() != events.TopicCaretakerVerified {
		t.Fatalf("expected caretaker.verified, got %s", pub.last())
	}

	suspended, err := svc.Suspend(ctx, caretaker.ID)
	if err != nil {
		t.Fatalf("suspend failed: %v", err)
	}
	if suspended.Status != string(domain.CaretakerStatusSuspended) {
		t.Fatalf("expected suspended, got %s", suspended.Status)
	}

	activated, err := svc.Activate(ctx, caretaker.ID)
	if err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if activated.Status != string(domain.CaretakerStatusActive) {
		t.Fatalf("expected active, got %s", activated.Status)
	}
	if pub.last() != events.TopicCaretakerActivated {
		t.Fatalf("expected caretaker.activated, got %s", pub.last())
	}
}

func TestTopRatedOnlyVerified(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newCaretakerFixture()

	a, err := svc.Create(ctx, CreateCaretakerInput{Name: "Rated", PhoneNumber: "+880190000005", UserID: "u-4"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(ctx, CreateCaretakerInput{Name: "Unrated", PhoneNumber: "+880190000006", UserID: "u-5"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Verify(ctx, a.ID); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	repo.byID[a.ID].Rating = 4.8

	top, err := svc.TopRated(ctx, 5)
	if err != nil {
		t.Fatalf("top rated failed: %v", err)
	}
	if len(top) != 1 || top[0].ID != a.ID {
		t.Fatalf("expected only the verified caretaker, got %d", len(top))
	}
}
