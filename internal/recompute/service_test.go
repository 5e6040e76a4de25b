package recompute

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/everreach/warmthd/internal/contacts"
	"github.com/everreach/warmthd/internal/warmth"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func newServiceForTest(store contacts.Store) *Service {
	s := New(store, warmth.DefaultScoreConfig(), nil)
	s.now = func() time.Time { return testNow }
	return s
}

func seedContact(t *testing.T, store contacts.Store, interactions ...contacts.Interaction) contacts.Contact {
	t.Helper()
	ctx := context.Background()
	c, err := store.CreateContact(ctx, contacts.Contact{DisplayName: "Ada"})
	if err != nil {
		t.Fatalf("seed contact: %v", err)
	}
	for _, iv := range interactions {
		iv.ContactID = c.ID
		if _, err := store.AddInteraction(ctx, iv); err != nil {
			t.Fatalf("seed interaction: %v", err)
		}
	}
	return c
}

func TestRecomputeWorkedExample(t *testing.T) {
	store := contacts.NewInMemoryStore()
	svc := newServiceForTest(store)
	c := seedContact(t, store,
		contacts.Interaction{Kind: "email", OccurredAt: testNow.Add(-24 * time.Hour)},
		contacts.Interaction{Kind: "call", OccurredAt: testNow.Add(-72 * time.Hour)},
		// Internal note must not count.
		contacts.Interaction{Kind: "note", OccurredAt: testNow.Add(-time.Hour)},
	)

	snap, err := svc.Recompute(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Recompute error = %v", err)
	}
	if snap.Score != 75 {
		t.Fatalf("score = %d, want 75", snap.Score)
	}
	if snap.Band != warmth.BandHot {
		t.Fatalf("band = %q, want hot", snap.Band)
	}
	if !snap.ComputedAt.Equal(testNow) {
		t.Fatalf("computed_at = %v, want %v", snap.ComputedAt, testNow)
	}

	stored, _ := store.GetContact(context.Background(), c.ID)
	if stored.Snapshot != snap {
		t.Fatalf("persisted snapshot %+v differs from returned %+v", stored.Snapshot, snap)
	}
}

func TestRecomputeIdempotent(t *testing.T) {
	store := contacts.NewInMemoryStore()
	svc := newServiceForTest(store)
	c := seedContact(t, store,
		contacts.Interaction{Kind: "email", OccurredAt: testNow.Add(-48 * time.Hour)},
	)

	first, err := svc.Recompute(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("first Recompute error = %v", err)
	}

	svc.now = func() time.Time { return testNow.Add(time.Second) }
	second, err := svc.Recompute(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("second Recompute error = %v", err)
	}

	if first.Score != second.Score || first.Band != second.Band {
		t.Fatalf("back-to-back recomputes diverged: %+v vs %+v", first, second)
	}
	if !second.ComputedAt.After(first.ComputedAt) {
		t.Fatalf("computed_at did not advance: %v then %v", first.ComputedAt, second.ComputedAt)
	}
}

func TestRecomputeIgnoresPriorSnapshot(t *testing.T) {
	// Two stores with identical logs but wildly different pre-existing
	// snapshots must recompute to the same score.
	ctx := context.Background()
	iv := contacts.Interaction{Kind: "email", OccurredAt: testNow.Add(-24 * time.Hour)}

	storeA := contacts.NewInMemoryStore()
	storeB := contacts.NewInMemoryStore()
	a := seedContact(t, storeA, iv)
	b := seedContact(t, storeB, iv)

	if _, err := storeA.WriteSnapshot(ctx, a.ID, contacts.Snapshot{
		Score: 99, Band: warmth.BandHot, ComputedAt: testNow.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("seed prior snapshot: %v", err)
	}
	if _, err := storeB.WriteSnapshot(ctx, b.ID, contacts.Snapshot{
		Score: 3, Band: warmth.BandCold, ComputedAt: testNow.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("seed prior snapshot: %v", err)
	}

	snapA, err := newServiceForTest(storeA).Recompute(ctx, a.ID)
	if err != nil {
		t.Fatalf("Recompute A error = %v", err)
	}
	snapB, err := newServiceForTest(storeB).Recompute(ctx, b.ID)
	if err != nil {
		t.Fatalf("Recompute B error = %v", err)
	}
	if snapA.Score != snapB.Score || snapA.Band != snapB.Band {
		t.Fatalf("prior snapshot leaked into recompute: %+v vs %+v", snapA, snapB)
	}
}

func TestRecomputeInvalidContactID(t *testing.T) {
	svc := newServiceForTest(contacts.NewInMemoryStore())
	for _, id := range []string{"", "  ", "not-a-uuid"} {
		if _, err := svc.Recompute(context.Background(), id); !errors.Is(err, ErrInvalidContactID) {
			t.Fatalf("Recompute(%q) error = %v, want ErrInvalidContactID", id, err)
		}
	}
}

func TestRecomputeNotFound(t *testing.T) {
	svc := newServiceForTest(contacts.NewInMemoryStore())
	_, err := svc.Recompute(context.Background(), "0b28d3b0-81f0-4f48-9e25-91b22ba3a456")
	if !errors.Is(err, contacts.ErrContactNotFound) {
		t.Fatalf("Recompute(unknown) error = %v, want ErrContactNotFound", err)
	}
}

type unavailableStore struct {
	*contacts.InMemoryStore
}

func (s unavailableStore) ListInteractions(context.Context, string) ([]contacts.Interaction, error) {
	return nil, fmt.Errorf("%w: connection refused", contacts.ErrStoreUnavailable)
}

func TestRecomputeUpstreamFailureLeavesSnapshotUntouched(t *testing.T) {
	ctx := context.Background()
	inner := contacts.NewInMemoryStore()
	c := seedContact(t, inner, contacts.Interaction{Kind: "email", OccurredAt: testNow.Add(-24 * time.Hour)})

	prior := contacts.Snapshot{Score: 60, Band: warmth.BandWarm, ComputedAt: testNow.Add(-time.Hour)}
	if _, err := inner.WriteSnapshot(ctx, c.ID, prior); err != nil {
		t.Fatalf("seed prior snapshot: %v", err)
	}

	svc := newServiceForTest(unavailableStore{inner})
	if _, err := svc.Recompute(ctx, c.ID); !errors.Is(err, contacts.ErrStoreUnavailable) {
		t.Fatalf("Recompute error = %v, want ErrStoreUnavailable", err)
	}

	stored, _ := inner.GetContact(ctx, c.ID)
	if stored.Snapshot != prior {
		t.Fatalf("snapshot changed on failed recompute: %+v", stored.Snapshot)
	}
}

func TestRecomputeStaleWriteReturnsFresherSnapshot(t *testing.T) {
	ctx := context.Background()
	store := contacts.NewInMemoryStore()
	svc := newServiceForTest(store)
	c := seedContact(t, store, contacts.Interaction{Kind: "email", OccurredAt: testNow.Add(-24 * time.Hour)})

	svc.now = func() time.Time { return testNow.Add(time.Minute) }
	fresh, err := svc.Recompute(ctx, c.ID)
	if err != nil {
		t.Fatalf("fresh Recompute error = %v", err)
	}

	// A slower call that observed an earlier now must not win, and must
	// report the already-stored fresher snapshot.
	svc.now = func() time.Time { return testNow }
	got, err := svc.Recompute(ctx, c.ID)
	if err != nil {
		t.Fatalf("slow Recompute error = %v", err)
	}
	if !got.ComputedAt.Equal(fresh.ComputedAt) {
		t.Fatalf("slow recompute returned %+v, want the fresher %+v", got, fresh)
	}
}

func TestRecomputeManyIsolatesFailures(t *testing.T) {
	store := contacts.NewInMemoryStore()
	svc := newServiceForTest(store)
	c := seedContact(t, store, contacts.Interaction{Kind: "email", OccurredAt: testNow.Add(-24 * time.Hour)})

	results, err := svc.RecomputeMany(context.Background(), []string{c.ID, "bogus", "91c7c9a5-89cf-4948-9991-62dbb8a1e1b8"})
	if err != nil {
		t.Fatalf("RecomputeMany error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if results[0].Err != nil {
		t.Fatalf("valid contact failed: %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, ErrInvalidContactID) {
		t.Fatalf("results[1].Err = %v, want ErrInvalidContactID", results[1].Err)
	}
	if !errors.Is(results[2].Err, contacts.ErrContactNotFound) {
		t.Fatalf("results[2].Err = %v, want ErrContactNotFound", results[2].Err)
	}
}

func TestRecomputeManyLimit(t *testing.T) {
	svc := newServiceForTest(contacts.NewInMemoryStore())
	svc.SetBulkLimit(2)
	_, err := svc.RecomputeMany(context.Background(), []string{"a", "b", "c"})
	if !errors.Is(err, ErrBulkLimitExceeded) {
		t.Fatalf("RecomputeMany error = %v, want ErrBulkLimitExceeded", err)
	}
}

func TestPreviewFiltersKinds(t *testing.T) {
	svc := newServiceForTest(contacts.NewInMemoryStore())
	score, band := svc.Preview([]warmth.Interaction{
		{Kind: "email", OccurredAt: testNow.Add(-24 * time.Hour)},
		{Kind: "call", OccurredAt: testNow.Add(-72 * time.Hour)},
		{Kind: "pipeline_update", OccurredAt: testNow},
	}, testNow)
	if score != 75 {
		t.Fatalf("preview score = %d, want 75", score)
	}
	if band != warmth.BandHot {
		t.Fatalf("preview band = %q, want hot", band)
	}
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	store := contacts.NewInMemoryStore()
	svc := newServiceForTest(store)

	hot := seedContact(t, store,
		contacts.Interaction{Kind: "email", OccurredAt: testNow.Add(-2 * time.Hour)},
		contacts.Interaction{Kind: "call", OccurredAt: testNow.Add(-4 * time.Hour)},
	)
	cold := seedContact(t, store) // no interactions -> floor 10
	seedContact(t, store)         // never recomputed -> stays unknown

	if _, err := svc.Recompute(ctx, hot.ID); err != nil {
		t.Fatalf("recompute hot: %v", err)
	}
	if _, err := svc.Recompute(ctx, cold.ID); err != nil {
		t.Fatalf("recompute cold: %v", err)
	}

	sum, err := svc.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize error = %v", err)
	}
	if sum.TotalContacts != 3 {
		t.Fatalf("total = %d, want 3", sum.TotalContacts)
	}
	if sum.ByBand[warmth.BandHot] != 1 || sum.ByBand[warmth.BandCold] != 1 || sum.ByBand[warmth.BandUnknown] != 1 {
		t.Fatalf("by_band = %v", sum.ByBand)
	}
	if sum.ContactsNeedingAttention != 1 {
		t.Fatalf("needing attention = %d, want 1 (the floored contact)", sum.ContactsNeedingAttention)
	}
}

func TestSubscribeReceivesSnapshotEvents(t *testing.T) {
	store := contacts.NewInMemoryStore()
	svc := newServiceForTest(store)
	c := seedContact(t, store, contacts.Interaction{Kind: "email", OccurredAt: testNow.Add(-24 * time.Hour)})

	ch, cancel := svc.Subscribe()
	defer cancel()

	snap, err := svc.Recompute(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Recompute error = %v", err)
	}

	select {
	case evt := <-ch:
		if evt.Type != EventSnapshotUpdated || evt.ContactID != c.ID || evt.Score != snap.Score {
			t.Fatalf("event = %+v, want snapshot update for %s", evt, c.ID)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event received")
	}
}

func TestSweepRecomputesStaleSnapshots(t *testing.T) {
	ctx := context.Background()
	store := contacts.NewInMemoryStore()
	svc := newServiceForTest(store)

	stale := seedContact(t, store, contacts.Interaction{Kind: "email", OccurredAt: testNow.Add(-24 * time.Hour)})
	fresh := seedContact(t, store, contacts.Interaction{Kind: "call", OccurredAt: testNow.Add(-24 * time.Hour)})

	if _, err := store.WriteSnapshot(ctx, stale.ID, contacts.Snapshot{
		Score: 50, Band: warmth.BandCooling, ComputedAt: testNow.Add(-48 * time.Hour),
	}); err != nil {
		t.Fatalf("seed stale snapshot: %v", err)
	}
	if _, err := store.WriteSnapshot(ctx, fresh.ID, contacts.Snapshot{
		Score: 50, Band: warmth.BandCooling, ComputedAt: testNow.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("seed fresh snapshot: %v", err)
	}

	svc.sweep(ctx, 24*time.Hour)

	gotStale, _ := store.GetContact(ctx, stale.ID)
	if !gotStale.Snapshot.ComputedAt.Equal(testNow) {
		t.Fatalf("stale snapshot not recomputed: %+v", gotStale.Snapshot)
	}
	gotFresh, _ := store.GetContact(ctx, fresh.ID)
	if !gotFresh.Snapshot.ComputedAt.Equal(testNow.Add(-time.Hour)) {
		t.Fatalf("fresh snapshot should have been skipped: %+v", gotFresh.Snapshot)
	}
}
