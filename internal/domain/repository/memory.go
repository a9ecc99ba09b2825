package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"autohaven/internal/common"
	"autohaven/internal/domain/filter"
	"autohaven/internal/domain/model"
)

// Repositories groups the stores a server needs.
type Repositories struct {
	Listings ListingRepository
	Users    UserRepository
	Contacts ContactRepository
}

func NewPgRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Listings: NewPgListingRepository(db),
		Users:    NewPgUserRepository(db),
		Contacts: NewPgContactRepository(db),
	}
}

// NewMemoryRepositories returns process-local stores for development and tests.
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Listings: NewMemoryListingRepository(),
		Users:    NewMemoryUserRepository(),
		Contacts: NewMemoryContactRepository(),
	}
}

type memoryListingRepository struct {
	mu       sync.RWMutex
	listings []model.Listing // insertion order
}

func NewMemoryListingRepository() ListingRepository {
	return &memoryListingRepository{}
}

func cloneListing(l model.Listing) model.Listing {
	l.Features = append([]string{}, l.Features...)
	return l
}

func (r *memoryListingRepository) indexOf(id string) int {
	for i := range r.listings {
		if r.listings[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *memoryListingRepository) Create(_ context.Context, l *model.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(l.ID) >= 0 {
		return fmt.Errorf("listing %s already exists: %w", l.ID, common.ErrConflict)
	}
	r.listings = append(r.listings, cloneListing(*l))
	return nil
}

func (r *memoryListingRepository) FindByID(_ context.Context, id string) (*model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, common.ErrNotFound
	}
	l := cloneListing(r.listings[i])
	return &l, nil
}

func (r *memoryListingRepository) List(_ context.Context, c filter.Criteria, limit, offset int) ([]model.Listing, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := filter.Apply(r.listings, c)
	total := len(matched)
	page := []model.Listing{}
	if offset < 0 {
		offset = 0
	}
	for i := offset; i < total && len(page) < limit; i++ {
		page = append(page, cloneListing(matched[i]))
	}
	return page, total, nil
}

func (r *memoryListingRepository) Update(_ context.Context, id string, p model.ListingPatch) (*model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, common.ErrNotFound
	}
	if !p.IsEmpty() {
		r.listings[i] = p.ApplyTo(r.listings[i])
		r.listings[i].UpdatedAt = time.Now().UTC()
	}
	l := cloneListing(r.listings[i])
	return &l, nil
}

func (r *memoryListingRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return common.ErrNotFound
	}
	r.listings = append(r.listings[:i], r.listings[i+1:]...)
	return nil
}

type memoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]model.User
	byEmail map[string]string
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{byID: map[string]model.User{}, byEmail: map[string]string{}}
}

func (r *memoryUserRepository) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := strings.ToLower(u.Email)
	if _, ok := r.byEmail[email]; ok {
		return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
	}
	r.byID[u.ID] = *u
	r.byEmail[email] = u.ID
	return nil
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, common.ErrNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *memoryUserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *memoryUserRepository) SetAdmin(_ context.Context, id string, isAdmin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	u.IsAdmin = isAdmin
	r.byID[id] = u
	return nil
}

type memoryContactRepository struct {
	mu       sync.RWMutex
	messages []model.ContactMessage
}

func NewMemoryContactRepository() ContactRepository {
	return &memoryContactRepository{}
}

func (r *memoryContactRepository) Create(_ context.Context, m *model.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.messages {
		if existing.ID == m.ID {
			return nil
		}
	}
	r.messages = append(r.messages, *m)
	return nil
}

func (r *memoryContactRepository) List(_ context.Context, limit, offset int) ([]model.ContactMessage, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := len(r.messages)
	out := []model.ContactMessage{}
	if offset < 0 {
		offset = 0
	}
	for i := total - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.messages[i])
	}
	return out, total, nil
}
