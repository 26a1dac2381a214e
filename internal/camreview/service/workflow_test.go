package service_test

import (
	"context"
	"testing"

	"github.com/cwhuang-tw/camreview/internal/camreview/service"
	"github.com/cwhuang-tw/camreview/internal/camreview/store"
	"github.com/cwhuang-tw/camreview/internal/camreview/types"
)

func submitInput() service.SubmitInput {
	return service.SubmitInput{
		RequesterName:  "陳小明",
		CameraLocation: "大門",
		Reason:         "跌倒事件",
		ActivationDays: 3,
	}
}

func TestSubmit_CreatesPendingRecordAndNotifiesApprover1(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()

	id, outcome := e.workflow.Submit(ctx, submitter, submitInput())
	if !outcome.OK() {
		t.Fatalf("Submit: %+v", outcome)
	}

	req, err := e.requests.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if req.Status != types.StatusAwaitingApproval1 {
		t.Errorf("expected awaiting_approval1, got %s", req.Status)
	}
	if req.SubmitterIdentity != submitter {
		t.Errorf("expected submitter %q, got %q", submitter, req.SubmitterIdentity)
	}
	if req.Approver1Identity != "" || req.Approver1At != nil {
		t.Error("fresh record must have no approval stamps")
	}

	msgs := e.notifier.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(msgs))
	}
	if msgs[0].Recipients[0] != approver1 {
		t.Errorf("expected notification to approver1, got %v", msgs[0].Recipients)
	}
}

func TestSubmit_RejectsBadInput(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()

	in := submitInput()
	in.ActivationDays = 0
	if _, outcome := e.workflow.Submit(ctx, submitter, in); outcome.Code != types.OutcomeInvalidInput {
		t.Errorf("zero activation days: expected invalid_input, got %s", outcome.Code)
	}

	in = submitInput()
	in.Reason = "   "
	if _, outcome := e.workflow.Submit(ctx, submitter, in); outcome.Code != types.OutcomeInvalidInput {
		t.Errorf("blank reason: expected invalid_input, got %s", outcome.Code)
	}
}

// TestFullChain walks a request through all three stages and checks every
// stamp, status, and notification along the way.  activation days must echo
// unchanged through every read.
func TestFullChain(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()

	id, outcome := e.workflow.Submit(ctx, submitter, submitInput())
	if !outcome.OK() {
		t.Fatalf("Submit: %+v", outcome)
	}

	// Stage 1
	if outcome := e.workflow.Transition(ctx, id, approver1); !outcome.OK() {
		t.Fatalf("stage 1: %+v", outcome)
	}
	req, _ := e.requests.Get(ctx, id)
	if req.Status != types.StatusAwaitingApproval2 {
		t.Fatalf("after stage 1: expected awaiting_approval2, got %s", req.Status)
	}
	if req.Approver1Identity != approver1 || req.Approver1At == nil {
		t.Errorf("stage 1 stamp missing: %+v", req)
	}
	if req.ActivationDays != 3 {
		t.Errorf("activation days changed after stage 1: %d", req.ActivationDays)
	}

	// Stage 2
	if outcome := e.workflow.Transition(ctx, id, approver2); !outcome.OK() {
		t.Fatalf("stage 2: %+v", outcome)
	}
	req, _ = e.requests.Get(ctx, id)
	if req.Status != types.StatusAwaitingActivation {
		t.Fatalf("after stage 2: expected awaiting_activation, got %s", req.Status)
	}
	if req.Approver2Identity != approver2 || req.Approver2At == nil {
		t.Errorf("stage 2 stamp missing: %+v", req)
	}

	// Stage 3
	if outcome := e.workflow.Transition(ctx, id, activator); !outcome.OK() {
		t.Fatalf("stage 3: %+v", outcome)
	}
	req, _ = e.requests.Get(ctx, id)
	if req.Status != types.StatusActivated {
		t.Fatalf("after stage 3: expected activated, got %s", req.Status)
	}
	if req.ActivatorIdentity != activator || req.ActivatorAt == nil {
		t.Errorf("stage 3 stamp missing: %+v", req)
	}
	if req.ActivationDays != 3 {
		t.Errorf("activation days changed after stage 3: %d", req.ActivationDays)
	}

	// Notifications: submit→approver1, stage1→approver2, stage2→activator,
	// stage3→submitter only.
	msgs := e.notifier.Messages()
	if len(msgs) != 4 {
		t.Fatalf("expected 4 notifications, got %d", len(msgs))
	}
	if msgs[1].Recipients[0] != approver2 {
		t.Errorf("stage 1 notification: expected %s, got %v", approver2, msgs[1].Recipients)
	}
	if msgs[2].Recipients[0] != activator {
		t.Errorf("stage 2 notification: expected %s, got %v", activator, msgs[2].Recipients)
	}
	final := msgs[3]
	if len(final.Recipients) != 1 || final.Recipients[0] != submitter {
		t.Errorf("final notification must go to the submitter only, got %v", final.Recipients)
	}
	if final.LinkPage != "myapply" {
		t.Errorf("final notification should deep-link to my requests, got %q", final.LinkPage)
	}
}

func TestTransition_WrongRoleIsDenied(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()

	id, _ := e.workflow.Submit(ctx, submitter, submitInput())
	before, _ := e.requests.Get(ctx, id)

	// approver2 cannot act on a record awaiting first-stage review, and an
	// outsider cannot act on anything.
	for _, actor := range []string{approver2, activator, outsider, submitter} {
		outcome := e.workflow.Transition(ctx, id, actor)
		if outcome.Code != types.OutcomePermissionDenied {
			t.Errorf("actor %s: expected permission_denied, got %s", actor, outcome.Code)
		}
	}

	after, _ := e.requests.Get(ctx, id)
	if after != before {
		t.Errorf("denied transitions must not mutate the record: %+v vs %+v", before, after)
	}
}

func TestTransition_TerminalRecordIsInvalidState(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()

	id, _ := e.workflow.Submit(ctx, submitter, submitInput())
	e.workflow.Transition(ctx, id, approver1)
	e.workflow.Transition(ctx, id, approver2)
	e.workflow.Transition(ctx, id, activator)

	before, _ := e.requests.Get(ctx, id)
	outcome := e.workflow.Transition(ctx, id, activator)
	if outcome.Code != types.OutcomeInvalidState {
		t.Fatalf("expected invalid_state on an activated record, got %s", outcome.Code)
	}

	after, _ := e.requests.Get(ctx, id)
	if after != before {
		t.Error("terminal record was mutated")
	}
}

func TestTransition_LegacyStatusIsInvalidState(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()

	req := types.Request{
		SubmitterIdentity:     submitter,
		DeclaredRequesterName: "陳小明",
		CameraLocation:        "大門",
		Reason:                "archive",
		ActivationDays:        1,
		Status:                types.StatusLegacyPending,
	}
	id, _ := e.requests.Append(ctx, req)

	if outcome := e.workflow.Transition(ctx, id, approver1); outcome.Code != types.OutcomeInvalidState {
		t.Fatalf("legacy record must not enter the main chain, got %s", outcome.Code)
	}
}

func TestTransition_MissingRecord(t *testing.T) {
	e := newTestEnv()

	outcome := e.workflow.Transition(context.Background(), 99, approver1)
	if outcome.Code != types.OutcomeNotFound {
		t.Fatalf("expected not_found, got %s", outcome.Code)
	}
}

// staleStore forces the compare-and-swap to fail, simulating a reviewer
// racing another writer between the read and the write.
type staleStore struct {
	store.RequestStore
}

func (s staleStore) ApplyTransition(ctx context.Context, id int64, expect types.Status, stamp store.Stamp) (bool, error) {
	return false, nil
}

func TestTransition_ConcurrentWriterGetsConflict(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()

	id, _ := e.workflow.Submit(ctx, submitter, submitInput())

	logger := testLogger()
	racy := service.NewWorkflow(staleStore{e.requests}, e.roles, e.names, e.notifier, logger)

	outcome := racy.Transition(ctx, id, approver1)
	if outcome.Code != types.OutcomeConflict {
		t.Fatalf("expected conflict, got %s", outcome.Code)
	}
}

func TestTransition_NotifyFailureIsWarningNotFailure(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()

	id, _ := e.workflow.Submit(ctx, submitter, submitInput())

	e.notifier.SetFail(true)
	outcome := e.workflow.Transition(ctx, id, approver1)
	if !outcome.OK() {
		t.Fatalf("transition must succeed despite dispatch failure: %+v", outcome)
	}
	if outcome.Warning == "" {
		t.Error("expected a dispatch warning")
	}

	req, _ := e.requests.Get(ctx, id)
	if req.Status != types.StatusAwaitingApproval2 {
		t.Errorf("record should still have advanced, got %s", req.Status)
	}
}
