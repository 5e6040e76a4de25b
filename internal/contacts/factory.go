package contacts

import (
	"context"
	"strings"
)

// NewStore picks the backend from configuration: postgres when a database
// URL is set, the embedded sqlite file when a path is set, otherwise
// in-memory. The returned mode string is reported on healthz.
func NewStore(ctx context.Context, databaseURL, sqlitePath string) (Store, string, error) {
	if strings.TrimSpace(databaseURL) != "" {
		st, err := NewPostgresStore(ctx, databaseURL)
		if err != nil {
			return nil, "", err
		}
		return st, "postgres", nil
	}
	if strings.TrimSpace(sqlitePath) != "" {
		st, err := NewSQLiteStore(sqlitePath)
		if err != nil {
			return nil, "", err
		}
		return st, "sqlite", nil
	}
	return NewInMemoryStore(), "in-memory", nil
}
