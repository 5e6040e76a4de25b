package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/everreach/warmthd/internal/warmth"
)

// PostgresStore persists contacts and interactions in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, strings.TrimSpace(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS contacts (
			id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			watch_status TEXT NOT NULL DEFAULT 'none',
			alert_threshold INTEGER NOT NULL DEFAULT 30,
			last_alert_at TIMESTAMPTZ NULL,
			warmth_score INTEGER NOT NULL DEFAULT 40,
			warmth_band TEXT NOT NULL DEFAULT 'unknown',
			warmth_computed_at TIMESTAMPTZ NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_band ON contacts (warmth_band);`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id TEXT PRIMARY KEY,
			contact_id TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_contact_occurred ON interactions (contact_id, occurred_at);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) CreateContact(ctx context.Context, c Contact) (Contact, error) {
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

	_, err := s.pool.Exec(ctx,
		`INSERT INTO contacts (id, display_name, watch_status, alert_threshold, warmth_score, warmth_band, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID,
		c.DisplayName,
		string(c.WatchStatus),
		c.AlertThreshold,
		c.Snapshot.Score,
		string(c.Snapshot.Band),
		c.CreatedAt,
	)
	if err != nil {
		return Contact{}, fmt.Errorf("%w: insert contact: %w", ErrStoreUnavailable, err)
	}
	return c, nil
}

const contactColumns = `id, display_name, watch_status, alert_threshold, last_alert_at,
       warmth_score, warmth_band, warmth_computed_at, created_at`

func (s *PostgresStore) GetContact(ctx context.Context, id string) (Contact, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id=$1`, id)
	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contact{}, ErrContactNotFound
		}
		return Contact{}, fmt.Errorf("%w: get contact: %w", ErrStoreUnavailable, err)
	}
	return c, nil
}

func (s *PostgresStore) ListContacts(ctx context.Context) ([]Contact, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+contactColumns+` FROM contacts ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: list contacts: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	out := make([]Contact, 0, 64)
	for rows.Next() {
		c, err := scanContact(rows)
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

func (s *PostgresStore) AddInteraction(ctx context.Context, iv Interaction) (Interaction, error) {
	if iv.ID == "" {
		iv.ID = uuid.NewString()
	}
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = time.Now().UTC()
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO interactions (id, contact_id, kind, occurred_at, created_at)
		 SELECT $1, $2, $3, $4, $5 WHERE EXISTS (SELECT 1 FROM contacts WHERE id=$2)`,
		iv.ID,
		iv.ContactID,
		iv.Kind,
		iv.OccurredAt,
		iv.CreatedAt,
	)
	if err != nil {
		return Interaction{}, fmt.Errorf("%w: insert interaction: %w", ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return Interaction{}, ErrContactNotFound
	}
	return iv, nil
}

func (s *PostgresStore) ListInteractions(ctx context.Context, contactID string) ([]Interaction, error) {
	if _, err := s.GetContact(ctx, contactID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, contact_id, kind, occurred_at, created_at
		   FROM interactions WHERE contact_id=$1 ORDER BY occurred_at ASC`,
		contactID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list interactions: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	out := make([]Interaction, 0, 16)
	for rows.Next() {
		var iv Interaction
		if err := rows.Scan(&iv.ID, &iv.ContactID, &iv.Kind, &iv.OccurredAt, &iv.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan interaction row: %w", ErrStoreUnavailable, err)
		}
		out = append(out, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate interaction rows: %w", ErrStoreUnavailable, err)
	}
	return out, nil
}

func (s *PostgresStore) WriteSnapshot(ctx context.Context, contactID string, snap Snapshot) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE contacts
		    SET warmth_score=$2, warmth_band=$3, warmth_computed_at=$4
		  WHERE id=$1 AND (warmth_computed_at IS NULL OR warmth_computed_at < $4)`,
		contactID,
		snap.Score,
		string(snap.Band),
		snap.ComputedAt,
	)
	if err != nil {
		return false, fmt.Errorf("%w: write snapshot: %w", ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// Zero rows is either a stale write (fine) or a missing contact.
	if _, err := s.GetContact(ctx, contactID); err != nil {
		return false, err
	}
	return false, nil
}

func (s *PostgresStore) MarkAlerted(ctx context.Context, contactID string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE contacts SET last_alert_at=$2 WHERE id=$1`, contactID, at)
	if err != nil {
		return fmt.Errorf("%w: mark alerted: %w", ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrContactNotFound
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanContact(row pgx.Row) (Contact, error) {
	var (
		c          Contact
		watch      string
		band       string
		lastAlert  *time.Time
		computedAt *time.Time
	)
	if err := row.Scan(
		&c.ID,
		&c.DisplayName,
		&watch,
		&c.AlertThreshold,
		&lastAlert,
		&c.Snapshot.Score,
		&band,
		&computedAt,
		&c.CreatedAt,
	); err != nil {
		return Contact{}, err
	}
	c.WatchStatus = WatchStatus(watch)
	c.Snapshot.Band = warmth.Band(band)
	c.LastAlertAt = lastAlert
	if computedAt != nil {
		c.Snapshot.ComputedAt = *computedAt
	}
	return c, nil
}
