package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cwhuang-tw/camreview/internal/camreview/types"
)

// RosterStore reads role membership from the role_members table.  Reads
// only; roster administration happens out of band.
type RosterStore struct {
	db *sql.DB
}

func NewRosterStore(db *sql.DB) *RosterStore {
	return &RosterStore{db: db}
}

func (s *RosterStore) Members(ctx context.Context, role types.Role) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT identity FROM role_members WHERE role = ? ORDER BY position, identity;`,
		string(role))
	if err != nil {
		return nil, fmt.Errorf("Members %s: %w", role, err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var identity string
		if err := rows.Scan(&identity); err != nil {
			return nil, fmt.Errorf("Members scan: %w", err)
		}
		members = append(members, identity)
	}
	return members, rows.Err()
}
