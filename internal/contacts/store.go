package contacts

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrContactNotFound means the contact id does not resolve in the store.
	ErrContactNotFound = errors.New("contact not found")
	// ErrStoreUnavailable wraps transient backend failures. Recompute is
	// idempotent, so callers may retry on it.
	ErrStoreUnavailable = errors.New("contact store unavailable")
)

// Store persists contacts, their interaction log, and the warmth snapshot.
//
// WriteSnapshot is last-write-wins on ComputedAt: a write whose ComputedAt
// is not strictly newer than the stored one is dropped (returns false) so a
// slow recompute can never clobber a fresher result. That, plus the fact
// that a snapshot is always re-derived from the full log, is the only
// concurrency control the engine needs.
type Store interface {
	CreateContact(ctx context.Context, c Contact) (Contact, error)
	GetContact(ctx context.Context, id string) (Contact, error)
	ListContacts(ctx context.Context) ([]Contact, error)

	AddInteraction(ctx context.Context, iv Interaction) (Interaction, error)
	ListInteractions(ctx context.Context, contactID string) ([]Interaction, error)

	WriteSnapshot(ctx context.Context, contactID string, snap Snapshot) (bool, error)
	MarkAlerted(ctx context.Context, contactID string, at time.Time) error

	Close() error
}
