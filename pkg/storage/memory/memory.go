// Package memory provides an in-memory implementation of users.Repository
// for testing and lightweight deployments. Users are lost when the
// process restarts.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rhuss/portier/pkg/storage"
	"github.com/rhuss/portier/pkg/users"
)

// entry holds a stored user and its insertion sequence.
type entry struct {
	user *users.User
	seq  uint64
}

// Store is an in-memory user repository. Records are copied on the way
// in and out, so callers never share memory with the store.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	nextSeq uint64
	now     func() time.Time
}

// Ensure Store implements users.Repository at compile time.
var _ users.Repository = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Search returns users matching every filter entry in insertion order.
func (s *Store) Search(_ context.Context, filter users.Filter) ([]*users.User, error) {
	for key := range filter {
		if !knownField(key) {
			return nil, fmt.Errorf("%w: %q", storage.ErrInvalidFilter, key)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*entry
	for _, e := range s.entries {
		if matchesFilter(e.user, filter) {
			matches = append(matches, e)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].seq < matches[j].seq
	})

	result := make([]*users.User, 0, len(matches))
	for _, e := range matches {
		result = append(result, e.user.Clone())
	}
	return result, nil
}

// Get returns the user with the given ID.
func (s *Store) Get(_ context.Context, id string) (*users.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return e.user.Clone(), nil
}

// Create stores a new user. An empty ID is replaced with a fresh UUID.
// The generated ID and timestamps are written back to user.
func (s *Store) Create(_ context.Context, user *users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if _, exists := s.entries[user.ID]; exists {
		return storage.ErrConflict
	}

	now := s.now()
	user.CreatedAt = now
	user.UpdatedAt = now

	s.nextSeq++
	s.entries[user.ID] = &entry{user: user.Clone(), seq: s.nextSeq}
	return nil
}

// Update replaces the mutable fields of an existing user. The ID and
// creation time are kept.
func (s *Store) Update(_ context.Context, user *users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[user.ID]
	if !ok {
		return storage.ErrNotFound
	}

	user.CreatedAt = e.user.CreatedAt
	user.UpdatedAt = s.now()
	e.user = user.Clone()
	return nil
}

// Delete removes a user.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

// Count returns the number of stored users.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// HealthCheck always returns nil for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

func knownField(key string) bool {
	switch key {
	case users.FieldID, users.FieldEmail, users.FieldSessionToken, users.FieldResetToken:
		return true
	}
	return false
}

func matchesFilter(u *users.User, filter users.Filter) bool {
	for key, want := range filter {
		switch key {
		case users.FieldID:
			if u.ID != want {
				return false
			}
		case users.FieldEmail:
			if u.Email != want {
				return false
			}
		case users.FieldSessionToken:
			if u.SessionToken == nil || *u.SessionToken != want {
				return false
			}
		case users.FieldResetToken:
			if u.ResetToken == nil || *u.ResetToken != want {
				return false
			}
		}
	}
	return true
}
