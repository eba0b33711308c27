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

type memPropertyRepo struct {
	byID       map[string]*domain.Property
	getByIDHit int
}

func newMemPropertyRepo() *memPropertyRepo {
	return &memPropertyRepo{byID: map[string]*domain.Property{}}
}

func (m *memPropertyRepo) Create(p *domain.Property) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memPropertyRepo) GetByID(id string) (*domain.Property, error) {
	m.getByIDHit++
	if p, ok := m.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
}

func (m *memPropertyRepo) Update(p *domain.Property) error {
	if _, ok := m.byID[p.ID]; !ok {
		return fmt.Errorf("property %s: %w", p.ID, domain.ErrNotFound)
	}
	p.UpdatedAt = time.Now()
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memPropertyRepo) Delete(id string) error {
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
	}
	delete(m.byID, id)
	return nil
}

func (m *memPropertyRepo) Search(filter domain.PropertyFilter) ([]*domain.Property, int, error) {
	var out []*domain.Property
	for _, p := range m.byID {
		if filter.City != "" && p.Address.City != filter.City {
			continue
		}
		if filter.CaretakerID != "" && p.CaretakerID != filter.CaretakerID {
			continue
		}
		if filter.MinRent != nil && p.RentAmount < *filter.MinRent {
			continue
		}
		if filter.MaxRent != nil && p.RentAmount > *filter.MaxRent {
			continue
		}
		if filter.OnlyAvailable && p.Status != domain.PropertyStatusAvailable {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func newPropertyFixture() (*PropertyService, *memPropertyRepo, *memStore, *recordPublisher) {
	repo := newMemPropertyRepo()
	store := newMemStore()
	pub := &recordPublisher{}
	cache := rescache.New[PropertyResponse](store, "property", time.Hour)
	return NewPropertyService(repo, cache, pub, nil), repo, store, pub
}

func TestCreatePropertyDefaultsToAvailable(t *testing.T) {
	ctx := context.Background()
	svc, _, store, pub := newPropertyFixture()

	property, err := svc.Create(ctx, CreatePropertyInput{
		Name:        "Lake View Apartment",
		Type:        "apartment",
		RentAmount:  50000,
		CaretakerID: "ct-1",
		Address:     domain.Address{City: "Dhaka", District: "Dhaka"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if property.Status != string(domain.PropertyStatusAvailable) {
		t.Fatalf("expected available, got %s", property.Status)
	}
	if pub.last() != events.TopicPropertyCreated {
		t.Fatalf("expected property.created, got %s", pub.last())
	}
	if _, ok := store.data["property:"+property.ID]; !ok {
		t.Fatalf("expected cache entry after create")
	}
}

func TestCreatePropertyValidation(t *testing.T) {
	svc, _, _, _ := newPropertyFixture()
	if _, err := svc.Create(context.Background(), CreatePropertyInput{Name: "No Caretaker"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Create(context.Background(), CreatePropertyInput{
		Name: "Bad Rent", CaretakerID: "ct-1", RentAmount: -1,
	}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for negative rent, got %v", err)
	}
}

func TestUpdateRentThenReadSeesNewValue(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, pub := newPropertyFixture()

	property, err := svc.Create(ctx, CreatePropertyInput{
		Name: "Flat 4B", Type: "apartment", RentAmount: 50000, CaretakerID: "ct-1",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	rent := 55000.0
	if _, err := svc.Update(ctx, property.ID, domain.PropertyPatch{RentAmount: &rent}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if pub.last() != events.TopicPropertyUpdated {
		t.Fatalf("expected property.updated, got %s", pub.last())
	}

	reads := repo.getByIDHit
	got, err := svc.Get(ctx, property.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.RentAmount != 55000 {
		t.Fatalf("stale rent after update: got %v", got.RentAmount)
	}
	if repo.getByIDHit != reads {
		t.Fatalf("read after write must be served from the refreshed cache")
	}
}

func TestDeletePropertyDropsCache(t *testing.T) {
	ctx := context.Background()
	svc, _, store, pub := newPropertyFixture()

	property, err := svc.Create(ctx, CreatePropertyInput{
		Name: "Short Lived", RentAmount: 1, CaretakerID: "ct-1",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(ctx, property.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := store.data["property:"+property.ID]; ok {
		t.Fatalf("delete must drop the cache entry")
	}
	if pub.last() != events.TopicPropertyDeleted {
		t.Fatalf("expected property.deleted, got %s", pub.last())
	}
}

func TestPropertySearchFilters(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newPropertyFixture()

	seeds := []CreatePropertyInput{
		{Name: "Cheap Dhaka", RentAmount: 10000, CaretakerID: "ct-1", Address: domain.Address{City: "Dhaka"}},
		{Name: "Mid Dhaka", RentAmount: 30000, CaretakerID: "ct-1", Address: domain.Address{City: "Dhaka"}},
		{Name: "Expensive CTG", RentAmount: 80000, CaretakerID: "ct-2", Address: domain.Address{City: "Chattogram"}},
	}
	for _, in := range seeds {
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	min, max := 20000.0, 50000.0
	results, total, err := svc.Search(ctx, domain.PropertyFilter{City: "Dhaka", MinRent: &min, MaxRent: &max})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 1 || len(results) != 1 {
		t.Fatalf("expected one match, got %d", total)
	}
	if results[0].Name != "Mid Dhaka" {
		t.Fatalf("wrong match: %s", results[0].Name)
	}

	byCaretaker, total, err := svc.FindByCaretaker(ctx, "ct-1", 1, 10)
	if err != nil {
		t.Fatalf("find by caretaker failed: %v", err)
	}
	if total != 2 || len(byCaretaker) != 2 {
		t.Fatalf("expected two caretaker properties, got %d", total)
	}
}
