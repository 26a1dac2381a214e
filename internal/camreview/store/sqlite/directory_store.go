package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// DirectoryStore reads the identity→display-name table.
type DirectoryStore struct {
	db *sql.DB
}

func NewDirectoryStore(db *sql.DB) *DirectoryStore {
	return &DirectoryStore{db: db}
}

func (s *DirectoryStore) Entries(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT identity, display_name FROM directory;`)
	if err != nil {
		return nil, fmt.Errorf("Entries: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]string)
	for rows.Next() {
		var identity, name string
		if err := rows.Scan(&identity, &name); err != nil {
			return nil, fmt.Errorf("Entries scan: %w", err)
		}
		// Lookup keys are always lower-cased trimmed identities.
		entries[strings.ToLower(strings.TrimSpace(identity))] = name
	}
	return entries, rows.Err()
}
