package store

import (
	"context"
	"errors"
	"time"

	"github.com/cwhuang-tw/camreview/internal/camreview/types"
)

// ErrNotFound is returned by Get when no record exists for the id.
var ErrNotFound = errors.New("request not found")

// Stamp is the write a successful transition applies: the approval slot for
// Role receives (Identity, At), and the record moves to NewStatus.
type Stamp struct {
	Role      types.Role
	Identity  string
	At        time.Time
	NewStatus types.Status
}

// RequestStore persists request records.
//
// ApplyTransition is a compare-and-swap: the stamp is applied only if the
// record's status still equals expect at write time.  It returns false (and
// no error) when the precondition no longer holds, so racing reviewers get a
// conflict instead of a lost update.
type RequestStore interface {
	Get(ctx context.Context, id int64) (types.Request, error)
	Append(ctx context.Context, req types.Request) (int64, error)
	List(ctx context.Context) ([]types.Request, error)
	ScanByStatus(ctx context.Context, status types.Status) ([]types.Request, error)
	ApplyTransition(ctx context.Context, id int64, expect types.Status, stamp Stamp) (bool, error)

	// MarkLegacyReviewed moves a legacy_pending record to legacy_reviewed.
	// Returns false when the record is absent or not legacy_pending.
	MarkLegacyReviewed(ctx context.Context, id int64) (bool, error)
}

// RosterStore reads the external role roster.
type RosterStore interface {
	Members(ctx context.Context, role types.Role) ([]string, error)
}

// DirectoryStore reads the external user table mapping login identities to
// display names.  Keys are lower-cased, trimmed identities.
type DirectoryStore interface {
	Entries(ctx context.Context) (map[string]string, error)
}

// CatalogStore reads the camera catalog: which camera locations each
// requester is associated with.
type CatalogStore interface {
	CamerasByRequester(ctx context.Context) (map[string][]string, error)
}
