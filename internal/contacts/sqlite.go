package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/everreach/warmthd/internal/warmth"
)

// SQLiteStore is the embedded single-file backend for local and
// single-tenant deployments. Timestamps are stored as unix nanoseconds so
// last-write-wins comparisons stay exact.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteMemoryStore opens an in-memory database for tests.
func NewSQLiteMemoryStore() (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS contacts (
			id                 TEXT PRIMARY KEY,
			display_name       TEXT NOT NULL,
			watch_status       TEXT NOT NULL DEFAULT 'none',
			alert_threshold    INTEGER NOT NULL DEFAULT 30,
			last_alert_at      INTEGER,
			warmth_score       INTEGER NOT NULL DEFAULT 40,
			warmth_band        TEXT NOT NULL DEFAULT 'unknown',
			warmth_computed_at INTEGER,
			created_at         INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_band ON contacts(warmth_band);`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id          TEXT PRIMARY KEY,
			contact_id  TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
			kind        TEXT NOT NULL,
			occurred_at INTEGER NOT NULL,
			created_at  INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_contact_occurred ON interactions(contact_id, occurred_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) CreateContact(ctx context.Context, c Contact) (Contact, error) {
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

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contacts (id, display_name, watch_status, alert_threshold, warmth_score, warmth_band, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.DisplayName,
		string(c.WatchStatus),
		c.AlertThreshold,
		c.Snapshot.Score,
		string(c.Snapshot.Band),
		c.CreatedAt.UnixNano(),
	)
	if err != nil {
		return Contact{}, fmt.Errorf("%w: insert contact: %w", ErrStoreUnavailable, err)
	}
	return c, nil
}

func (s *SQLiteStore) GetContact(ctx context.Context, id string) (Contact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, watch_status, alert_threshold, last_alert_at,
		        warmth_score, warmth_band, warmth_computed_at, created_at
		   FROM contacts WHERE id=?`, id)
	c, err := scanSQLiteContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Contact{}, ErrContactNotFound
		}
		return Contact{}, fmt.Errorf("%w: get contact: %w", ErrStoreUnavailable, err)
	}
	return c, nil
}

func (s *SQLiteStore) ListContacts(ctx context.Context) ([]Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, display_name, watch_status, alert_threshold, last_alert_at,
		        warmth_score, warmth_band, warmth_computed_at, created_at
		   FROM contacts ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: list contacts: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	out := make([]Contact, 0, 64)
	for rows.Next() {
		c, err := scanSQLiteContact(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan contact row: %w", ErrStoreUnavailable, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate contact rows: %w", ErrStoreUnavailable, err)
	}
	return out, nil
}

func (s *SQLiteStore) AddInteraction(ctx context.Context, iv Interaction) (Interaction, error) {
	if iv.ID == "" {
		iv.ID = uuid.NewString()
	}
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO interactions (id, contact_id, kind, occurred_at, created_at)
		 SELECT ?, ?, ?, ?, ? WHERE EXISTS (SELECT 1 FROM contacts WHERE id=?)`,
		iv.ID,
		iv.ContactID,
		iv.Kind,
		iv.OccurredAt.UnixNano(),
		iv.CreatedAt.UnixNano(),
		iv.ContactID,
	)
	if err != nil {
		return Interaction{}, fmt.Errorf("%w: insert interaction: %w", ErrStoreUnavailable, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Interaction{}, ErrContactNotFound
	}
	return iv, nil
}

func (s *SQLiteStore) ListInteractions(ctx context.Context, contactID string) ([]Interaction, error) {
	if _, err := s.GetContact(ctx, contactID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, contact_id, kind, occurred_at, created_at
		   FROM interactions WHERE contact_id=? ORDER BY occurred_at ASC`,
		contactID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list interactions: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	out := make([]Interaction, 0, 16)
	for rows.Next() {
		var (
			iv         Interaction
			occurredNS int64
			createdNS  int64
		)
		if err := rows.Scan(&iv.ID, &iv.ContactID, &iv.Kind, &occurredNS, &createdNS); err != nil {
			return nil, fmt.Errorf("%w: scan interaction row: %w", ErrStoreUnavailable, err)
		}
		iv.OccurredAt = time.Unix(0, occurredNS).UTC()
		iv.CreatedAt = time.Unix(0, createdNS).UTC()
		out = append(out, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate interaction rows: %w", ErrStoreUnavailable, err)
	}
	return out, nil
}

func (s *SQLiteStore) WriteSnapshot(ctx context.Context, contactID string, snap Snapshot) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE contacts
		    SET warmth_score=?, warmth_band=?, warmth_computed_at=?
		  WHERE id=? AND (warmth_computed_at IS NULL OR warmth_computed_at < ?)`,
		snap.Score,
		string(snap.Band),
		snap.ComputedAt.UnixNano(),
		contactID,
		snap.ComputedAt.UnixNano(),
	)
	if err != nil {
		return false, fmt.Errorf("%w: write snapshot: %w", ErrStoreUnavailable, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}
	if _, err := s.GetContact(ctx, contactID); err != nil {
		return false, err
	}
	return false, nil
}

func (s *SQLiteStore) MarkAlerted(ctx context.Context, contactID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE contacts SET last_alert_at=? WHERE id=?`, at.UnixNano(), contactID)
	if err != nil {
		return fmt.Errorf("%w: mark alerted: %w", ErrStoreUnavailable, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrContactNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type sqliteRow interface {
	Scan(dest ...any) error
}

func scanSQLiteContact(row sqliteRow) (Contact, error) {
	var (
		c           Contact
		watch       string
		band        string
		lastAlertNS sql.NullInt64
		computedNS  sql.NullInt64
		createdNS   int64
	)
	if err := row.Scan(
		&c.ID,
		&c.DisplayName,
		&watch,
		&c.AlertThreshold,
		&lastAlertNS,
		&c.Snapshot.Score,
		&band,
		&computedNS,
		&createdNS,
	); err != nil {
		return Contact{}, err
	}
	c.WatchStatus = WatchStatus(watch)
	c.Snapshot.Band = warmth.Band(band)
	c.CreatedAt = time.Unix(0, createdNS).UTC()
	if lastAlertNS.Valid {
		t := time.Unix(0, lastAlertNS.Int64).UTC()
		c.LastAlertAt = &t
	}
	if computedNS.Valid {
		c.Snapshot.ComputedAt = time.Unix(0, computedNS.Int64).UTC()
	}
	return c, nil
}
