package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwhuang-tw/camreview/internal/camreview/store"
	"github.com/cwhuang-tw/camreview/internal/camreview/types"
)

// legacyHeader is the full projection used by the legacy admin panel.
var legacyHeader = []string{
	"Submitter",
	"Submitted at",
	"Requester",
	"Camera location",
	"Reason",
	"Status",
	"Activation days",
}

// LegacyService is the administrative override path for records using the
// old one-shot status pair (legacy_pending -> legacy_reviewed).  It bypasses
// the main approval chain entirely and is kept isolated from it on purpose:
// whether this path is a deprecated remnant or an intentional parallel track
// is unresolved, so it must not be folded into the transition table.
type LegacyService struct {
	requests store.RequestStore
	roles    *RoleResolver
	logger   *logrus.Logger
	loc      *time.Location
}

func NewLegacyService(requests store.RequestStore, roles *RoleResolver, logger *logrus.Logger, loc *time.Location) *LegacyService {
	if loc == nil {
		loc = time.UTC
	}
	return &LegacyService{requests: requests, roles: roles, logger: logger, loc: loc}
}

// Pending lists every legacy_pending record.  Non-reviewers get an empty
// table (fail closed).
func (s *LegacyService) Pending(ctx context.Context, actor string) (types.Table, error) {
	if !s.roles.IsAnyReviewer(ctx, actor) {
		s.logger.WithField("actor", actor).Warn("non-reviewer called legacy pending listing")
		return types.Table{}, nil
	}

	pending, err := s.requests.ScanByStatus(ctx, types.StatusLegacyPending)
	if err != nil {
		return types.Table{}, err
	}

	var rows []types.Row
	for _, req := range pending {
		t := ""
		if !req.SubmittedAt.IsZero() {
			t = req.SubmittedAt.In(s.loc).Format(displayTimeLayout)
		}
		rows = append(rows, types.Row{
			RecordID: req.ID,
			Cells: []string{
				req.SubmitterIdentity,
				t,
				req.DeclaredRequesterName,
				req.CameraLocation,
				req.Reason,
				req.Status.String(),
				strconv.Itoa(req.ActivationDays),
			},
		})
	}
	return types.Table{Header: legacyHeader, Rows: rows}, nil
}

// MarkReviewed sets each selected legacy_pending record directly to
// legacy_reviewed.  Records that are absent or not legacy_pending are
// skipped, never touched; the main chain's statuses are out of reach here.
func (s *LegacyService) MarkReviewed(ctx context.Context, ids []int64, actor string) types.Outcome {
	if !s.roles.IsAnyReviewer(ctx, actor) {
		s.logger.WithField("actor", actor).Warn("non-reviewer called legacy mark-reviewed")
		return types.Failure(types.OutcomePermissionDenied, "reviewer membership required")
	}
	if len(ids) == 0 {
		return types.Failure(types.OutcomeInvalidInput, "no records selected")
	}

	updated := 0
	for _, id := range ids {
		ok, err := s.requests.MarkLegacyReviewed(ctx, id)
		if err != nil {
			s.logger.WithError(err).WithField("request_id", id).Error("legacy mark-reviewed failed")
			return types.Failure(types.OutcomeStoreFailure, "could not update record status")
		}
		if ok {
			updated++
		}
	}

	return types.Okf(fmt.Sprintf("marked %d of %d record(s) as reviewed", updated, len(ids)))
}
