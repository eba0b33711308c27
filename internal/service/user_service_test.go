package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iamEzaz/baribhara/internal/domain"
	"github.com/iamEzaz/baribhara/internal/events"
	"github.com/iamEzaz/baribhara/internal/rescache"
)

func newUserFixture() (*UserService, *memUserRepo, *memStore, *recordPublisher) {
	repo := newMemUserRepo()
	store := newMemStore()
	pub := &recordPublisher{}
	cache := rescache.New[UserResponse](store, "user", time.Hour)
	return NewUserService(repo, cache, pub, nil), repo, store, pub
}

func TestCreateUserEmitsAndCaches(t *testing.T) {
	ctx := context.Background()
	svc, _, store, pub := newUserFixture()

	user, err := svc.Create(ctx, CreateUserInput{
		Name:        "Rahim Uddin",
		PhoneNumber: "+8801712345678",
		Email:       "rahim@example.com",
		Password:    "Password123",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected generated id")
	}
	if user.Status != string(domain.UserStatusActive) {
		t.Fatalf("expected active status, got %s", user.Status)
	}
	if pub.last() != events.TopicUserCreated {
		t.Fatalf("expected user.created, got %s", pub.last())
	}
	if _, ok := store.data["user:"+user.ID]; !ok {
		t.Fatalf("expected cache entry after create")
	}
}

func TestCreateUserMissingFields(t *testing.T) {
	svc, _, _, pub := newUserFixture()
	_, err := svc.Create(context.Background(), CreateUserInput{Name: "No Phone"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(pub.topics) != 0 {
		t.Fatalf("failed create must not emit events")
	}
}

func TestCreateUserDuplicatePhone(t *testing.T) {
	ctx := context.Background()
	svc, _, _, pub := newUserFixture()

	if _, err := svc.Create(ctx, CreateUserInput{Name: "A", PhoneNumber: "+880170000001"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	emitted := len(pub.topics)

	_, err := svc.Create(ctx, CreateUserInput{Name: "B", PhoneNumber: "+880170000001"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(pub.topics) != emitted {
		t.Fatalf("failed create must not emit events")
	}
}

func TestGetServesFromCache(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newUserFixture()

	user, err := svc.Create(ctx, CreateUserInput{Name: "C", PhoneNumber: "+880170000002"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	reads := repo.getByIDHit
	first, err := svc.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	second, err := svc.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	if repo.getByIDHit != reads {
		t.Fatalf("create populated the cache, gets must not touch the repository")
	}
	if first != second {
		t.Fatalf("hit and fetch must serve identical payloads")
	}
}

func TestGetMissPopulatesCache(t *testing.T) {
	ctx := context.Background()
	svc, repo, store, _ := newUserFixture()

	user, err := svc.Create(ctx, CreateUserInput{Name: "D", PhoneNumber: "+880170000003"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	delete(store.data, "user:"+user.ID) // simulate TTL expiry

	if _, err := svc.Get(ctx, user.ID); err != nil {
		t.Fatalf("get after expiry failed: %v", err)
	}
	if repo.getByIDHit != 1 {
		t.Fatalf("expected exactly one repository read, got %d", repo.getByIDHit)
	}
	if _, ok := store.data["user:"+user.ID]; !ok {
		t.Fatalf("miss must repopulate the cache")
	}

	if _, err := svc.Get(ctx, user.ID); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if repo.getByIDHit != 1 {
		t.Fatalf("repopulated entry must serve the next read")
	}
}

func TestGetUnknownUser(t *testing.T) {
	svc, _, _, _ := newUserFixture()
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateRefreshesCacheAndEmitsChanges(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, pub := newUserFixture()

	user, err := svc.Create(ctx, CreateUserInput{Name: "Old Name", PhoneNumber: "+880170000004"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	name := "New Name"
	updated, err := svc.Update(ctx, user.ID, domain.UserPatch{Name: &name})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "New Name" {
		t.Fatalf("expected updated name, got %s", updated.Name)
	}
	if pub.last() != events.TopicUserUpdated {
		t.Fatalf("expected user.updated, got %s", pub.last())
	}
	ev := pub.payloads[len(pub.payloads)-1].(events.UserEvent)
	if ev.Changes == nil || ev.Changes.Name == nil || *ev.Changes.Name != "New Name" {
		t.Fatalf("update event must carry the applied changes")
	}

	// Read after write must see the new value without touching the repo
	reads := repo.getByIDHit
	got, err := svc.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Name != "New Name" {
		t.Fatalf("stale read after write: got %s", got.Name)
	}
	if repo.getByIDHit != reads+1 {
		// Update reads the record once; the Get must be served from cache
		t.Fatalf("expected cached read after write")
	}
}

func TestUpdateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newUserFixture()

	if _, err := svc.Create(ctx, CreateUserInput{Name: "A", PhoneNumber: "+880170000005", Email: "a@example.com"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	b, err := svc.Create(ctx, CreateUserInput{Name: "B", PhoneNumber: "+880170000006", Email: "b@example.com"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	email := "a@example.com"
	if _, err := svc.Update(ctx, b.ID, domain.UserPatch{Email: &email}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}
}

func TestDeleteDropsCacheAndEmits(t *testing.T) {
	ctx := context.Background()
	svc, _, store, pub := newUserFixture()

	user, err := svc.Create(ctx, CreateUserInput{Name: "E", PhoneNumber: "+880170000007"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(ctx, user.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := store.data["user:"+user.ID]; ok {
		t.Fatalf("delete must drop the cache entry")
	}
	if pub.last() != events.TopicUserDeleted {
		t.Fatalf("expected user.deleted, got %s", pub.last())
	}
	if _, err := svc.Get(ctx, user.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestDeleteUnknownUser(t *testing.T) {
	svc, _, _, pub := newUserFixture()
	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(pub.topics) != 0 {
		t.Fatalf("failed delete must not emit events")
	}
}

func TestSuspendAndActivate(t *testing.T) {
	ctx := context.Background()
	svc, _, _, pub := newUserFixture()

	user, err := svc.Create(ctx, CreateUserInput{Name: "F", PhoneNumber: "+880170000008"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	suspended, err := svc.Suspend(ctx, user.ID)
	if err != nil {
		t.Fatalf("suspend failed: %v", err)
	}
	if suspended.Status != string(domain.UserStatusSuspended) {
		t.Fatalf("expected suspended, got %s", suspended.Status)
	}
	if pub.last() != events.TopicUserSuspended {
		t.Fatalf("expected user.suspended, got %s", pub.last())
	}

	activated, err := svc.Activate(ctx, user.ID)
	if err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if activated.Status != string(domain.UserStatusActive) {
		t.Fatalf("expected active, got %s", activated.Status)
	}
	if pub.last() != events.TopicUserActivated {
		t.Fatalf("expected user.activated, got %s", pub.last())
	}
}

func TestSearchPagination(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newUserFixture()

	for i := 0; i < 25; i++ {
		if _, err := svc.Create(ctx, CreateUserInput{
			Name:        "User",
			PhoneNumber: "+88017000010" + string(rune('a'+i)),
		}); err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
	}

	page2, total, err := svc.Search(ctx, domain.UserFilter{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 25 {
		t.Fatalf("expected total 25, got %d", total)
	}
	if len(page2) != 10 {
		t.Fatalf("expected 10 results on page 2, got %d", len(page2))
	}

	page3, _, err := svc.Search(ctx, domain.UserFilter{Page: 3, Limit: 10})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(page3) != 5 {
		t.Fatalf("expected 5 results on page 3, got %d", len(page3))
	}
}

func TestResponseNeverCarriesPasswordHash(t *testing.T) {
	ctx := context.Background()
	svc, repo, store, _ := newUserFixture()

	user, err := svc.Create(ctx, CreateUserInput{Name: "G", PhoneNumber: "+880170000009", Password: "Secret123"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if repo.byID[user.ID].PasswordHash == "" {
		t.Fatalf("expected stored password hash")
	}
	cached := store.data["user:"+user.ID]
	for _, needle := range []string{"passwordHash", "password_hash", "Secret123"} {
		if strings.Contains(cached, needle) {
			t.Fatalf("cache payload leaks %s", needle)
		}
	}
}
