package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	dbpkg "github.com/cwhuang-tw/camreview/internal/db"

	"github.com/cwhuang-tw/camreview/internal/camreview/store"
	"github.com/cwhuang-tw/camreview/internal/camreview/types"
)

const requestColumns = `
id, submitter_identity, submitted_at_ms, declared_requester_name,
system_requester_name, camera_location, reason, activation_days, status,
approver1_identity, approver1_at_ms,
approver2_identity, approver2_at_ms,
activator_identity, activator_at_ms`

type RequestStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewRequestStore(db *sql.DB, writer *dbpkg.Worker) *RequestStore {
	return &RequestStore{db: db, writer: writer}
}

func (s *RequestStore) Get(ctx context.Context, id int64) (types.Request, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = ?;`, id)

	req, err := scanRequest(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Request{}, store.ErrNotFound
	}
	if err != nil {
		return types.Request{}, fmt.Errorf("Get request %d: %w", id, err)
	}
	return req, nil
}

func (s *RequestStore) Append(ctx context.Context, req types.Request) (int64, error) {
	var id int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO requests(
  submitter_identity, submitted_at_ms, declared_requester_name,
  system_requester_name, camera_location, reason, activation_days, status
) VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
			req.SubmitterIdentity, req.SubmittedAt.UTC().UnixMilli(),
			req.DeclaredRequesterName, req.SystemRequesterName,
			req.CameraLocation, req.Reason, req.ActivationDays, string(req.Status),
		)
		if err != nil {
			return fmt.Errorf("Append insert: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("Append id: %w", err)
		}
		return nil
	})
	return id, err
}

func (s *RequestStore) List(ctx context.Context) ([]types.Request, error) {
	return s.query(ctx, `SELECT `+requestColumns+` FROM requests ORDER BY id;`)
}

func (s *RequestStore) ScanByStatus(ctx context.Context, status types.Status) ([]types.Request, error) {
	return s.query(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE status = ? ORDER BY id;`,
		string(status))
}

// ApplyTransition stamps the approval slot and advances the status in one
// UPDATE guarded by the expected status.  RowsAffected==0 means the record
// changed (or vanished) since the caller read it.
func (s *RequestStore) ApplyTransition(ctx context.Context, id int64, expect types.Status, stamp store.Stamp) (bool, error) {
	var col string
	switch stamp.Role {
	case types.RoleApprover1:
		col = "approver1"
	case types.RoleApprover2:
		col = "approver2"
	case types.RoleActivator:
		col = "activator"
	default:
		return false, fmt.Errorf("ApplyTransition: unknown role %q", stamp.Role)
	}

	applied := false
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, fmt.Sprintf(`
UPDATE requests
SET %s_identity = ?, %s_at_ms = ?, status = ?
WHERE id = ? AND status = ?;`, col, col),
			stamp.Identity, stamp.At.UTC().UnixMilli(), string(stamp.NewStatus),
			id, string(expect),
		)
		if err != nil {
			return fmt.Errorf("ApplyTransition update %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("ApplyTransition rows %d: %w", id, err)
		}
		applied = n == 1
		return nil
	})
	return applied, err
}

func (s *RequestStore) MarkLegacyReviewed(ctx context.Context, id int64) (bool, error) {
	updated := false
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE requests SET status = ? WHERE id = ? AND status = ?;`,
			string(types.StatusLegacyReviewed), id, string(types.StatusLegacyPending),
		)
		if err != nil {
			return fmt.Errorf("MarkLegacyReviewed %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("MarkLegacyReviewed rows %d: %w", id, err)
		}
		updated = n == 1
		return nil
	})
	return updated, err
}

func (s *RequestStore) query(ctx context.Context, q string, args ...any) ([]types.Request, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	var out []types.Request
	for rows.Next() {
		req, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanRequest(scan func(...any) error) (types.Request, error) {
	var (
		req         types.Request
		submittedMs int64
		status      string
		a1ID, a2ID  sql.NullString
		actID       sql.NullString
		a1Ms, a2Ms  sql.NullInt64
		actMs       sql.NullInt64
	)

	err := scan(
		&req.ID, &req.SubmitterIdentity, &submittedMs, &req.DeclaredRequesterName,
		&req.SystemRequesterName, &req.CameraLocation, &req.Reason,
		&req.ActivationDays, &status,
		&a1ID, &a1Ms, &a2ID, &a2Ms, &actID, &actMs,
	)
	if err != nil {
		return types.Request{}, err
	}

	req.SubmittedAt = time.UnixMilli(submittedMs).UTC()
	req.Status = types.Status(status)
	req.Approver1Identity = a1ID.String
	req.Approver1At = msToTime(a1Ms)
	req.Approver2Identity = a2ID.String
	req.Approver2At = msToTime(a2Ms)
	req.ActivatorIdentity = actID.String
	req.ActivatorAt = msToTime(actMs)
	return req, nil
}

func msToTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}
