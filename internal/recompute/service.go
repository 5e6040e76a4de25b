package recompute

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/everreach/warmthd/internal/contacts"
	"github.com/everreach/warmthd/internal/observability"
	"github.com/everreach/warmthd/internal/warmth"
)

var (
	// ErrInvalidContactID means the caller supplied a malformed contact id.
	// Not retryable.
	ErrInvalidContactID = errors.New("invalid contact id")
	// ErrBulkLimitExceeded means a bulk request named more contacts than one
	// call is allowed to touch.
	ErrBulkLimitExceeded = errors.New("too many contacts in one recompute request")
)

// DefaultBulkLimit caps how many contacts a single bulk recompute may name.
const DefaultBulkLimit = 200

// Service derives and persists warmth snapshots. Every recompute is a full
// re-derivation from the contact's interaction log; the previous snapshot is
// never read, so calls are idempotent and safe to issue concurrently.
type Service struct {
	store     contacts.Store
	scoreCfg  warmth.ScoreConfig
	metrics   *observability.Metrics
	bulkLimit int
	now       func() time.Time

	mu          sync.Mutex
	nextSubID   int
	subscribers map[int]chan Event
}

func New(store contacts.Store, scoreCfg warmth.ScoreConfig, metrics *observability.Metrics) *Service {
	return &Service{
		store:       store,
		scoreCfg:    scoreCfg,
		metrics:     metrics,
		bulkLimit:   DefaultBulkLimit,
		now:         func() time.Time { return time.Now().UTC() },
		subscribers: make(map[int]chan Event),
	}
}

// SetBulkLimit overrides the bulk request cap.
func (s *Service) SetBulkLimit(n int) {
	if n > 0 {
		s.bulkLimit = n
	}
}

// Recompute re-derives the warmth snapshot for one contact and persists it.
// On any error the previously stored snapshot is left untouched.
func (s *Service) Recompute(ctx context.Context, contactID string) (contacts.Snapshot, error) {
	start := time.Now()
	snap, outcome, err := s.recompute(ctx, contactID)
	if s.metrics != nil {
		s.metrics.ObserveRecompute(outcome, time.Since(start))
	}
	return snap, err
}

func (s *Service) recompute(ctx context.Context, contactID string) (contacts.Snapshot, string, error) {
	id := strings.TrimSpace(contactID)
	if _, err := uuid.Parse(id); err != nil {
		return contacts.Snapshot{}, "invalid", fmt.Errorf("%w: %q", ErrInvalidContactID, contactID)
	}

	ivs, err := s.store.ListInteractions(ctx, id)
	if err != nil {
		return contacts.Snapshot{}, outcomeFor(err), err
	}

	now := s.now()
	log := make([]warmth.Interaction, 0, len(ivs))
	for _, iv := range ivs {
		if warmth.AffectsWarmth(iv.Kind) {
			log = append(log, warmth.Interaction{Kind: iv.Kind, OccurredAt: iv.OccurredAt})
		}
	}

	score := warmth.ComputeScore(s.scoreCfg, log, now)
	snap := contacts.Snapshot{Score: score, Band: warmth.ClassifyScore(score), ComputedAt: now}

	applied, err := s.store.WriteSnapshot(ctx, id, snap)
	if err != nil {
		return contacts.Snapshot{}, outcomeFor(err), err
	}
	if !applied {
		// Lost the last-write-wins race: a recompute that observed a fresher
		// log already landed. Surface the stored snapshot instead.
		c, err := s.store.GetContact(ctx, id)
		if err != nil {
			return contacts.Snapshot{}, outcomeFor(err), err
		}
		return c.Snapshot, "stale", nil
	}

	s.publish(Event{
		Type:       EventSnapshotUpdated,
		ContactID:  id,
		Score:      snap.Score,
		Band:       snap.Band,
		ComputedAt: snap.ComputedAt,
	})
	return snap, "ok", nil
}

// Result is one contact's outcome within a bulk recompute.
type Result struct {
	ContactID string
	Snapshot  contacts.Snapshot
	Err       error
}

// RecomputeMany recomputes a batch of contacts independently: one bad id
// never fails the rest of the batch.
func (s *Service) RecomputeMany(ctx context.Context, ids []string) ([]Result, error) {
	if len(ids) > s.bulkLimit {
		return nil, fmt.Errorf("%w: got %d, limit %d", ErrBulkLimitExceeded, len(ids), s.bulkLimit)
	}
	out := make([]Result, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		snap, err := s.Recompute(ctx, id)
		out = append(out, Result{ContactID: id, Snapshot: snap, Err: err})
	}
	return out, nil
}

// Preview scores a hypothetical interaction log without touching any
// contact. Non-qualifying kinds are filtered the same way Recompute filters
// the stored log.
func (s *Service) Preview(log []warmth.Interaction, now time.Time) (int, warmth.Band) {
	if now.IsZero() {
		now = s.now()
	}
	qualifying := make([]warmth.Interaction, 0, len(log))
	for _, iv := range log {
		if warmth.AffectsWarmth(iv.Kind) {
			qualifying = append(qualifying, iv)
		}
	}
	score := warmth.ComputeScore(s.scoreCfg, qualifying, now)
	return score, warmth.ClassifyScore(score)
}

// Summary is the aggregate warmth picture across all contacts.
type Summary struct {
	TotalContacts            int                 `json:"total_contacts"`
	ByBand                   map[warmth.Band]int `json:"by_band"`
	AverageScore             float64             `json:"average_score"`
	ContactsNeedingAttention int                 `json:"contacts_needing_attention"`
	GeneratedAt              time.Time           `json:"generated_at"`
}

// Summarize aggregates stored snapshots. It reads last-known-good values
// only and never triggers recomputes.
func (s *Service) Summarize(ctx context.Context) (Summary, error) {
	cs, err := s.store.ListContacts(ctx)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{
		ByBand: map[warmth.Band]int{
			warmth.BandHot:     0,
			warmth.BandWarm:    0,
			warmth.BandCooling: 0,
			warmth.BandCold:    0,
			warmth.BandUnknown: 0,
		},
		GeneratedAt: s.now(),
	}
	total := 0
	for _, c := range cs {
		sum.TotalContacts++
		sum.ByBand[c.Snapshot.Band]++
		total += c.Snapshot.Score
		if c.Snapshot.Computed() && c.Snapshot.Score < contacts.DefaultAlertThreshold {
			sum.ContactsNeedingAttention++
		}
	}
	if sum.TotalContacts > 0 {
		sum.AverageScore = math.Round(float64(total)/float64(sum.TotalContacts)*10) / 10
	}

	if s.metrics != nil {
		for band, n := range sum.ByBand {
			s.metrics.ContactsByBand.WithLabelValues(string(band)).Set(float64(n))
		}
	}
	return sum, nil
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, contacts.ErrContactNotFound):
		return "not_found"
	case errors.Is(err, contacts.ErrStoreUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
