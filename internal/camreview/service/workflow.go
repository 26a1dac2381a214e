package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cwhuang-tw/camreview/internal/camreview/notify"
	"github.com/cwhuang-tw/camreview/internal/camreview/store"
	"github.com/cwhuang-tw/camreview/internal/camreview/types"
)

// stage is one row of the main-chain transition table: the role allowed to
// act on a status and the status the record moves to.
type stage struct {
	role types.Role
	next types.Status
}

// transitions drives the whole main chain.  Adding a stage is a table edit.
// The legacy status pair is deliberately absent; it is handled by the
// LegacyService and must never join this table.
var transitions = map[types.Status]stage{
	types.StatusAwaitingApproval1:  {role: types.RoleApprover1, next: types.StatusAwaitingApproval2},
	types.StatusAwaitingApproval2:  {role: types.RoleApprover2, next: types.StatusAwaitingActivation},
	types.StatusAwaitingActivation: {role: types.RoleActivator, next: types.StatusActivated},
}

// Deep-link targets in the hosting UI.
const (
	linkPageReview     = "review"
	linkPageMyRequests = "myapply"
)

// Workflow is the approval state machine: it validates the caller's role
// against the record's current status, stamps the approval fields, advances
// the status, and notifies the next responsible party.
type Workflow struct {
	requests  store.RequestStore
	roles     *RoleResolver
	directory *DirectoryResolver
	notifier  notify.Notifier
	logger    *logrus.Logger
	now       func() time.Time
}

func NewWorkflow(
	requests store.RequestStore,
	roles *RoleResolver,
	directory *DirectoryResolver,
	notifier notify.Notifier,
	logger *logrus.Logger,
) *Workflow {
	return &Workflow{
		requests:  requests,
		roles:     roles,
		directory: directory,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// Transition applies one reviewer action to the record.
//
// The status-match compare-and-swap in the store is the only write: two
// reviewers racing on the same record both load the same status, but only
// one CAS succeeds; the loser gets a conflict outcome instead of silently
// overwriting the first stamp.
func (w *Workflow) Transition(ctx context.Context, id int64, actor string) types.Outcome {
	req, err := w.requests.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Failure(types.OutcomeNotFound, fmt.Sprintf("request %d does not exist", id))
		}
		w.logger.WithError(err).WithField("request_id", id).Error("transition: load failed")
		return types.Failure(types.OutcomeStoreFailure, "could not read the request record")
	}

	st, ok := transitions[req.Status]
	if !ok {
		// Default branch: terminal, legacy, or unknown status.  This is
		// also how reapplying an already-performed transition is caught.
		return types.Failure(types.OutcomeInvalidState, "record already processed or not in an actionable state")
	}

	if !w.roles.HasRole(ctx, actor, st.role) {
		return types.Failure(types.OutcomePermissionDenied, fmt.Sprintf("%s role required for this stage", st.role))
	}

	stamp := store.Stamp{
		Role:      st.role,
		Identity:  actor,
		At:        w.now().UTC(),
		NewStatus: st.next,
	}
	applied, err := w.requests.ApplyTransition(ctx, id, req.Status, stamp)
	if err != nil {
		w.logger.WithError(err).WithField("request_id", id).Error("transition: write failed")
		return types.Failure(types.OutcomeStoreFailure, "could not update the request record")
	}
	if !applied {
		return types.Failure(types.OutcomeConflict, "record was changed by another reviewer, reload and retry")
	}

	outcome := types.Okf("operation completed")
	if warn := w.notifyStage(ctx, req, st.next); warn != "" {
		outcome.Warning = warn
	}
	return outcome
}

// notifyStage composes and dispatches the notification for a record that
// just entered newStatus.  Returns a warning string on dispatch failure;
// the transition itself has already succeeded.
func (w *Workflow) notifyStage(ctx context.Context, req types.Request, newStatus types.Status) string {
	var msg notify.Message

	switch newStatus {
	case types.StatusAwaitingApproval2:
		msg = notify.Message{
			Recipients: w.roles.Members(ctx, types.RoleApprover2),
			Subject:    "[Pending review] Footage access request awaits second-stage review",
			Body: fmt.Sprintf(
				"The footage access request by %s (location: %s) passed first-stage review and now needs your second-stage review.",
				req.DeclaredRequesterName, req.CameraLocation),
			LinkPage: linkPageReview,
			LinkText: "Open the review dashboard",
		}
	case types.StatusAwaitingActivation:
		msg = notify.Message{
			Recipients: w.roles.Members(ctx, types.RoleActivator),
			Subject:    "[Pending activation] Footage access request passed review",
			Body: fmt.Sprintf(
				"The footage access request by %s (location: %s) passed both review stages. Requested activation period: %d day(s). Please perform the activation.",
				req.DeclaredRequesterName, req.CameraLocation, req.ActivationDays),
			LinkPage: linkPageReview,
			LinkText: "Open the review dashboard",
		}
	case types.StatusActivated:
		// Submitter only.
		msg = notify.Message{
			Recipients: []string{req.SubmitterIdentity},
			Subject:    "[Notice] Your footage access request has been activated",
			Body: fmt.Sprintf(
				"Your footage access request (location: %s) has been processed and activated for %d day(s).",
				req.CameraLocation, req.ActivationDays),
			LinkPage: linkPageMyRequests,
			LinkText: "View my requests",
		}
	default:
		return ""
	}

	return w.dispatch(ctx, msg)
}

func (w *Workflow) dispatch(ctx context.Context, msg notify.Message) string {
	if len(msg.Recipients) == 0 {
		return ""
	}
	msg.ID = uuid.NewString()
	if err := w.notifier.Send(ctx, msg); err != nil {
		w.logger.WithError(err).WithField("message_id", msg.ID).Warn("notification dispatch failed")
		return fmt.Sprintf("notification dispatch failed: %v", err)
	}
	return ""
}

// SubmitInput is the form payload for a new request.
type SubmitInput struct {
	RequesterName  string
	CameraLocation string
	Reason         string
	ActivationDays int
}

// Submit appends a new request in the first pending state and notifies all
// first-stage approvers.  The write is a single append; there is no partial
// record on failure.
func (w *Workflow) Submit(ctx context.Context, submitter string, in SubmitInput) (int64, types.Outcome) {
	in.RequesterName = strings.TrimSpace(in.RequesterName)
	in.CameraLocation = strings.TrimSpace(in.CameraLocation)
	in.Reason = strings.TrimSpace(in.Reason)

	switch {
	case submitter == "":
		return 0, types.Failure(types.OutcomeInvalidInput, "submitter identity is required")
	case in.RequesterName == "" || in.CameraLocation == "" || in.Reason == "":
		return 0, types.Failure(types.OutcomeInvalidInput, "requester, camera location and reason are required")
	case in.ActivationDays <= 0:
		return 0, types.Failure(types.OutcomeInvalidInput, "activation days must be a positive integer")
	}

	req := types.Request{
		SubmitterIdentity:     submitter,
		SubmittedAt:           w.now().UTC(),
		DeclaredRequesterName: in.RequesterName,
		SystemRequesterName:   w.directory.DisplayName(ctx, submitter),
		CameraLocation:        in.CameraLocation,
		Reason:                in.Reason,
		ActivationDays:        in.ActivationDays,
		Status:                types.StatusAwaitingApproval1,
	}

	id, err := w.requests.Append(ctx, req)
	if err != nil {
		w.logger.WithError(err).Error("submit: append failed")
		return 0, types.Failure(types.OutcomeStoreFailure, "could not save the request")
	}

	outcome := types.Okf("request submitted")
	warn := w.dispatch(ctx, notify.Message{
		Recipients: w.roles.Members(ctx, types.RoleApprover1),
		Subject:    "[New request] Footage access request awaits first-stage review",
		Body: fmt.Sprintf(
			"%s filed a new footage access request (location: %s). First-stage review is required.",
			in.RequesterName, in.CameraLocation),
		LinkPage: linkPageReview,
		LinkText: "Open the review dashboard",
	})
	if warn != "" {
		outcome.Warning = warn
	}
	return id, outcome
}
