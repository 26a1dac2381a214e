package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// CatalogStore reads the camera catalog.
type CatalogStore struct {
	db *sql.DB
}

func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

func (s *CatalogStore) CamerasByRequester(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT requester_name, camera_location FROM camera_catalog ORDER BY requester_name, camera_location;`)
	if err != nil {
		return nil, fmt.Errorf("CamerasByRequester: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var requester, camera string
		if err := rows.Scan(&requester, &camera); err != nil {
			return nil, fmt.Errorf("CamerasByRequester scan: %w", err)
		}
		out[requester] = append(out[requester], camera)
	}
	return out, rows.Err()
}
