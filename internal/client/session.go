package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"autohaven/internal/domain/filter"
	"autohaven/internal/domain/model"
)

// StorageKey is the single key the session is persisted under.
const StorageKey = "userInfo"

// Phase is the session lifecycle: Uninitialized -> Loading -> Ready.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Identity is a snapshot of the session. Caller is Anonymous until Phase is
// PhaseReady, and that Anonymous is not final.
type Identity struct {
	Phase  Phase
	Caller model.CallerIdentity
	Token  string
}

type storedSession struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Session holds the credential and identity of one client profile.
type Session struct {
	api   *APIClient
	store Store

	mu     sync.RWMutex
	phase  Phase
	caller model.CallerIdentity
	token  string

	ready     chan struct{}
	readyOnce sync.Once
}

func NewSession(api *APIClient, store Store) *Session {
	return &Session{
		api:    api,
		store:  store,
		caller: model.Anonymous(),
		ready:  make(chan struct{}),
	}
}

// Ready is closed once the session has a final identity.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

func (s *Session) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// Restore loads the persisted session. An unreadable entry is discarded and
// the session becomes Ready as Anonymous. Calling Restore again waits for
// the first call to finish.
func (s *Session) Restore(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.phase != PhaseUninitialized {
		s.mu.Unlock()
		select {
		case <-s.ready:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.phase = PhaseLoading
	s.mu.Unlock()

	token, caller := s.load()

	s.mu.Lock()
	// A Login or Logout that finished while loading wins.
	if s.phase == PhaseLoading {
		s.token, s.caller = token, caller
		s.phase = PhaseReady
	}
	s.mu.Unlock()
	s.markReady()
	return nil
}

func (s *Session) load() (string, model.CallerIdentity) {
	raw, err := s.store.Load(StorageKey)
	if errors.Is(err, ErrNoEntry) {
		return "", model.Anonymous()
	}
	if err != nil {
		log.Printf("WARN: Could not read stored session: %v", err)
		return "", model.Anonymous()
	}

	var stored storedSession
	if err := json.Unmarshal(raw, &stored); err != nil || stored.Token == "" || stored.User == nil {
		log.Printf("WARN: Discarding malformed stored session")
		if err := s.store.Remove(StorageKey); err != nil {
			log.Printf("WARN: Could not remove stored session: %v", err)
		}
		return "", model.Anonymous()
	}
	return stored.Token, model.IdentityFor(stored.User)
}

// CurrentIdentity returns the cached identity without blocking.
func (s *Session) CurrentIdentity() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Identity{Phase: s.phase, Caller: s.caller, Token: s.token}
}

func (s *Session) currentToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// adopt persists res and makes it the current identity.
func (s *Session) adopt(res *AuthResult) model.CallerIdentity {
	raw, err := json.Marshal(storedSession{Token: res.Token, User: res.User})
	if err == nil {
		err = s.store.Save(StorageKey, raw)
	}
	if err != nil {
		log.Printf("WARN: Could not persist session for %s: %v", res.User.Email, err)
	}

	caller := model.IdentityFor(res.User)
	s.mu.Lock()
	s.token, s.caller, s.phase = res.Token, caller, PhaseReady
	s.mu.Unlock()
	s.markReady()
	return caller
}

// Login exchanges email and password for a credential. On failure nothing
// is persisted and the server's message is returned as an *APIError.
func (s *Session) Login(ctx context.Context, email, password string) (model.CallerIdentity, error) {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return model.Anonymous(), err
	}
	if res.User == nil || res.Token == "" {
		return model.Anonymous(), fmt.Errorf("client: login response missing user or token")
	}
	return s.adopt(res), nil
}

// Register creates an account and signs in as it. A taken email fails with
// an error matching common.ErrConflict.
func (s *Session) Register(ctx context.Context, name, email, password string) (model.CallerIdentity, error) {
	res, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		return model.Anonymous(), err
	}
	if res.User == nil || res.Token == "" {
		return model.Anonymous(), fmt.Errorf("client: register response missing user or token")
	}
	return s.adopt(res), nil
}

// Logout forgets the credential. It never fails.
func (s *Session) Logout() {
	if err := s.store.Remove(StorageKey); err != nil {
		log.Printf("WARN: Could not remove stored session: %v", err)
	}
	s.mu.Lock()
	s.token, s.caller, s.phase = "", model.Anonymous(), PhaseReady
	s.mu.Unlock()
	s.markReady()
}

func (s *Session) Profile(ctx context.Context) (*model.User, error) {
	return s.api.Profile(ctx, s.currentToken())
}

func (s *Session) ListCars(ctx context.Context, page, limit int, criteria filter.Criteria) (*CarPage, error) {
	return s.api.ListCars(ctx, s.currentToken(), page, limit, criteria)
}

func (s *Session) GetCar(ctx context.Context, id string) (*model.Listing, error) {
	return s.api.GetCar(ctx, s.currentToken(), id)
}

func (s *Session) CreateCar(ctx context.Context, fields model.ListingPatch) (*model.Listing, error) {
	return s.api.CreateCar(ctx, s.currentToken(), fields)
}

func (s *Session) UpdateCar(ctx context.Context, id string, patch model.ListingPatch) (*model.Listing, error) {
	return s.api.UpdateCar(ctx, s.currentToken(), id, patch)
}

func (s *Session) DeleteCar(ctx context.Context, id string) error {
	return s.api.DeleteCar(ctx, s.currentToken(), id)
}

func (s *Session) SendContact(ctx context.Context, form ContactForm) (*model.ContactMessage, error) {
	return s.api.SendContact(ctx, form)
}
