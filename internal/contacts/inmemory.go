package contacts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process store for local/dev use and tests.
type InMemoryStore struct {
	mu           sync.RWMutex
	contacts     map[string]Contact
	interactions map[string][]Interaction
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		contacts:     make(map[string]Contact),
		interactions: make(map[string][]Interaction),
	}
}

func (s *InMemoryStore) CreateContact(_ context.Context, c Contact) (Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.WatchStatus == "" {
		c.WatchStatus = WatchNone
	}
	if c.AlertThreshold <= 0 {
		c.AlertThreshold = DefaultAlertThreshold
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Snapshot == (Snapshot{}) {
		c.Snapshot = NewSnapshot()
	}
	s.contacts[c.ID] = c
	return c, nil
}

func (s *InMemoryStore) GetContact(_ context.Context, id string) (Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[id]
	if !ok {
		return Contact{}, ErrContactNotFound
	}
	return c, nil
}

func (s *InMemoryStore) ListContacts(_ context.Context) ([]Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) AddInteraction(_ context.Context, iv Interaction) (Interaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[iv.ContactID]; !ok {
		return Interaction{}, ErrContactNotFound
	}
	if iv.ID == "" {
		iv.ID = uuid.NewString()
	}
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = time.Now().UTC()
	}
	s.interactions[iv.ContactID] = append(s.interactions[iv.ContactID], iv)
	return iv, nil
}

func (s *InMemoryStore) ListInteractions(_ context.Context, contactID string) ([]Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.contacts[contactID]; !ok {
		return nil, ErrContactNotFound
	}
	arr := s.interactions[contactID]
	out := make([]Interaction, len(arr))
	copy(out, arr)
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

func (s *InMemoryStore) WriteSnapshot(_ context.Context, contactID string, snap Snapshot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[contactID]
	if !ok {
		return false, ErrContactNotFound
	}
	if c.Snapshot.Computed() && !snap.ComputedAt.After(c.Snapshot.ComputedAt) {
		return false, nil
	}
	c.Snapshot = snap
	s.contacts[contactID] = c
	return true, nil
}

func (s *InMemoryStore) MarkAlerted(_ context.Context, contactID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[contactID]
	if !ok {
		return ErrContactNotFound
	}
	t := at
	c.LastAlertAt = &t
	s.contacts[contactID] = c
	return nil
}

func (s *InMemoryStore) Close() error { return nil }
