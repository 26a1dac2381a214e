package db

import (
	"context"
	"database/sql"
	"fmt"
)

// SeedDev loads a minimal working data set for local development: one
// identity per role, a couple of directory entries and a small camera
// catalog.  Idempotent.
func SeedDev(ctx context.Context, db *sql.DB) error {
	roster := []struct {
		role     string
		identity string
		position int
	}{
		{"approver1", "alice@example.com", 0},
		{"approver2", "bob@example.com", 0},
		{"activator", "carol@example.com", 0},
	}
	for _, m := range roster {
		if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO role_members(role, identity, position) VALUES (?, ?, ?);`,
			m.role, m.identity, m.position); err != nil {
			return fmt.Errorf("seed role_members %s: %w", m.identity, err)
		}
	}

	directory := map[string]string{
		"alice@example.com": "Alice Chen",
		"bob@example.com":   "Bob Lin",
		"carol@example.com": "Carol Wu",
		"dave@example.com":  "Dave Huang",
	}
	for identity, name := range directory {
		if _, err := db.ExecContext(ctx, `
INSERT INTO directory(identity, display_name) VALUES (?, ?)
ON CONFLICT(identity) DO UPDATE SET display_name = excluded.display_name;`,
			identity, name); err != nil {
			return fmt.Errorf("seed directory %s: %w", identity, err)
		}
	}

	catalog := []struct{ requester, camera string }{
		{"Dave Huang", "Main Gate"},
		{"Dave Huang", "Parking Lot"},
		{"Alice Chen", "Lobby"},
	}
	for _, c := range catalog {
		if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO camera_catalog(requester_name, camera_location) VALUES (?, ?);`,
			c.requester, c.camera); err != nil {
			return fmt.Errorf("seed camera_catalog %s: %w", c.camera, err)
		}
	}

	return nil
}
