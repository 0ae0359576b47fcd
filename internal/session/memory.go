package session

import (
	"context"
	"sync"
	"time"

	"qr-menu/internal/cart"
)

// MemoryStore keeps sessions in process memory. Everything is lost on restart.
type MemoryStore struct {
	mu          sync.Mutex
	defaultLang cart.Language
	states      map[string]cart.State
	tables      map[string]int
	admins      map[string]AdminSession
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(defaultLang cart.Language) *MemoryStore {
	return &MemoryStore{
		defaultLang: defaultLang,
		states:      make(map[string]cart.State),
		tables:      make(map[string]int),
		admins:      make(map[string]AdminSession),
	}
}

// Load returns the state of sid, or a fresh one seeded from the durable table key.
func (s *MemoryStore) Load(ctx context.Context, sid string) (cart.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(sid), nil
}

func (s *MemoryStore) load(sid string) cart.State {
	if state, ok := s.states[sid]; ok {
		return state
	}
	table, ok := s.tables[sid]
	return restoreTable(cart.NewState(s.defaultLang), table, ok)
}

// Update applies fn to the state of sid under the store lock.
func (s *MemoryStore) Update(ctx context.Context, sid string, fn UpdateFunc) (cart.State, error) {
	if err := ctx.Err(); err != nil {
		return cart.State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.load(sid)
	next, err := fn(current)
	if err != nil {
		return current, err
	}

	s.states[sid] = next
	if next.TableNumber != nil {
		s.tables[sid] = *next.TableNumber
	}
	return next, nil
}

// SetAdmin records a staff login for sid.
func (s *MemoryStore) SetAdmin(ctx context.Context, sid string, loginTime time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[sid] = AdminSession{Authenticated: true, LoginTime: loginTime}
	return nil
}

// Admin returns the staff login keys of sid; the zero value means none.
func (s *MemoryStore) Admin(ctx context.Context, sid string) (AdminSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admins[sid], nil
}

// ClearAdmin removes both staff login keys of sid.
func (s *MemoryStore) ClearAdmin(ctx context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.admins, sid)
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
