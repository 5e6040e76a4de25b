package contacts

import (
	"time"

	"github.com/everreach/warmthd/internal/warmth"
)

// WatchStatus marks how closely a user tracks a contact. Watched contacts
// are eligible for cooling alerts.
type WatchStatus string

const (
	WatchNone      WatchStatus = "none"
	WatchWatch     WatchStatus = "watch"
	WatchImportant WatchStatus = "important"
	WatchVIP       WatchStatus = "vip"
)

// Watched reports whether the status opts the contact into warmth alerts.
func (s WatchStatus) Watched() bool {
	switch s {
	case WatchWatch, WatchImportant, WatchVIP:
		return true
	default:
		return false
	}
}

// DefaultAlertThreshold is the warmth score below which a watched contact
// needs attention unless the contact carries its own threshold.
const DefaultAlertThreshold = 30

// DefaultBaseScore seeds the snapshot of a freshly created contact so list
// views have something to sort on before the first recompute.
const DefaultBaseScore = 40

// Snapshot is the persisted warmth state of a contact. It is overwritten
// whole on every recompute and never patched incrementally; a zero
// ComputedAt means no recompute has ever run.
type Snapshot struct {
	Score      int         `json:"score"`
	Band       warmth.Band `json:"band"`
	ComputedAt time.Time   `json:"computed_at"`
}

// Computed reports whether the snapshot has ever been derived from the
// interaction log.
func (s Snapshot) Computed() bool {
	return !s.ComputedAt.IsZero()
}

// Contact is the engine's view of a contact record. CRM fields beyond
// warmth and alerting live in other services and never reach this engine.
type Contact struct {
	ID             string      `json:"id"`
	DisplayName    string      `json:"display_name"`
	WatchStatus    WatchStatus `json:"watch_status"`
	AlertThreshold int         `json:"alert_threshold"`
	LastAlertAt    *time.Time  `json:"last_alert_at,omitempty"`
	Snapshot       Snapshot    `json:"snapshot"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Interaction is a logged touchpoint with a contact. Immutable once
// written; the engine only ever reads them back.
type Interaction struct {
	ID         string    `json:"id"`
	ContactID  string    `json:"contact_id"`
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewSnapshot returns the neutral snapshot a contact starts with.
func NewSnapshot() Snapshot {
	return Snapshot{Score: DefaultBaseScore, Band: warmth.BandUnknown}
}
