package service

import (
	"context"
	"strconv"
	"time"

	"github.com/cwhuang-tw/camreview/internal/camreview/store"
	"github.com/cwhuang-tw/camreview/internal/camreview/types"
)

// displayTimeLayout matches what the existing front-end consumers expect.
const displayTimeLayout = "2006/01/02 15:04:05"

// taskHeader is the fixed projection for the review dashboard.  Order and
// content are load-bearing for existing consumers; do not reorder.
var taskHeader = []string{
	"Submitted at",
	"Requester",
	"Camera location",
	"Reason",
	"Status",
	"First approval at",
	"Second approval at",
	"Activation days",
}

// myRequestsHeader is the fixed projection for a caller's own history.
var myRequestsHeader = []string{
	"Requester (directory)",
	"Submitted at",
	"Requester (declared)",
	"Camera location",
	"Reason",
	"Status",
	"Activated at",
	"Activation days",
}

// QueryService produces the read-side tables: pending work scoped to the
// caller's roles, and the caller's own request history.
type QueryService struct {
	requests  store.RequestStore
	roles     *RoleResolver
	directory *DirectoryResolver
	loc       *time.Location
}

func NewQueryService(requests store.RequestStore, roles *RoleResolver, directory *DirectoryResolver, loc *time.Location) *QueryService {
	if loc == nil {
		loc = time.UTC
	}
	return &QueryService{requests: requests, roles: roles, directory: directory, loc: loc}
}

// TasksFor lists the records the actor can currently act on: for each role
// the actor holds, every record sitting in that role's pending status.
// Non-reviewers get an empty table (fail closed).
func (q *QueryService) TasksFor(ctx context.Context, actor string) (types.Table, error) {
	if !q.roles.IsAnyReviewer(ctx, actor) {
		return types.Table{}, nil
	}

	var rows []types.Row
	for _, role := range types.Roles {
		if !q.roles.HasRole(ctx, actor, role) {
			continue
		}
		pending, err := q.requests.ScanByStatus(ctx, role.PendingStatus())
		if err != nil {
			return types.Table{}, err
		}
		for _, req := range pending {
			rows = append(rows, q.taskRow(req))
		}
	}

	return types.Table{Header: taskHeader, Rows: rows}, nil
}

func (q *QueryService) taskRow(req types.Request) types.Row {
	return types.Row{
		RecordID: req.ID,
		Cells: []string{
			q.fmtTime(req.SubmittedAt),
			req.DeclaredRequesterName,
			req.CameraLocation,
			req.Reason,
			req.Status.String(),
			q.fmtTimePtr(req.Approver1At),
			q.fmtTimePtr(req.Approver2At),
			strconv.Itoa(req.ActivationDays),
		},
	}
}

// MyRequests returns every record the caller submitted, plus records someone
// else filed on the caller's behalf (matched by the caller's directory
// display name against the declared requester name).
func (q *QueryService) MyRequests(ctx context.Context, actor string) (types.Table, error) {
	displayName := q.directory.DisplayName(ctx, actor)

	all, err := q.requests.List(ctx)
	if err != nil {
		return types.Table{}, err
	}

	var rows []types.Row
	for _, req := range all {
		if req.SubmitterIdentity != actor && req.DeclaredRequesterName != displayName {
			continue
		}
		rows = append(rows, types.Row{
			RecordID: req.ID,
			Cells: []string{
				req.SystemRequesterName,
				q.fmtTime(req.SubmittedAt),
				req.DeclaredRequesterName,
				req.CameraLocation,
				req.Reason,
				req.Status.String(),
				q.fmtTimePtr(req.ActivatorAt),
				strconv.Itoa(req.ActivationDays),
			},
		})
	}

	return types.Table{Header: myRequestsHeader, Rows: rows}, nil
}

func (q *QueryService) fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(q.loc).Format(displayTimeLayout)
}

func (q *QueryService) fmtTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return q.fmtTime(*t)
}
