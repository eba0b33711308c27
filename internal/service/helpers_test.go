package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iamEzaz/baribhara/internal/domain"
	"github.com/iamEzaz/baribhara/internal/events"
)

// memStore is an in-memory rescache.Store
type memStore struct {
	data map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
}

func (m *memStore) Fetch(ctx context.Context, key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.data[key] = value.(string)
	return nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// recordPublisher captures emitted events for assertions
type recordPublisher struct {
	topics   []events.Topic
	payloads []events.Payload
}

func (p *recordPublisher) Emit(ctx context.Context, topic events.Topic, payload events.Payload) error {
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordPublisher) last() events.Topic {
	if len(p.topics) == 0 {
		return ""
	}
	return p.topics[len(p.topics)-1]
}

// memUserRepo is an in-memory domain.UserRepository that counts reads
type memUserRepo struct {
	byID       map[string]*domain.User
	getByIDHit int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}}
}

func (m *memUserRepo) Create(u *domain.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUserRepo) GetByID(id string) (*domain.User, error) {
	m.getByIDHit++
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
}

func (m *memUserRepo) findBy(match func(*domain.User) bool) (*domain.User, error) {
	for _, u := range m.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
}

func (m *memUserRepo) GetByPhone(phone string) (*domain.User, error) {
	return m.findBy(func(u *domain.User) bool { return u.PhoneNumber == phone })
}

func (m *memUserRepo) GetByEmail(email string) (*domain.User, error) {
	return m.findBy(func(u *domain.User) bool { return u.Email != "" && u.Email == email })
}

func (m *memUserRepo) GetByNationalID(nid string) (*domain.User, error) {
	return m.findBy(func(u *domain.User) bool { return u.NationalID != "" && u.NationalID == nid })
}

func (m *memUserRepo) Update(u *domain.User) error {
	if _, ok := m.byID[u.ID]; !ok {
		return fmt.Errorf("user %s: %w", u.ID, domain.ErrNotFound)
	}
	u.UpdatedAt = time.Now()
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUserRepo) Delete(id string) error {
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	delete(m.byID, id)
	return nil
}

func (m *memUserRepo) Search(filter domain.UserFilter) ([]*domain.User, int, error) {
	var all []*domain.User
	for _, u := range m.byID {
		if filter.Status != "" && string(u.Status) != filter.Status {
			continue
		}
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].PhoneNumber < all[j].PhoneNumber })

	total := len(all)
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}
