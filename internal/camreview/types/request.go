package types

import "time"

// Status is the workflow state of a request record.
//
// The main chain is strictly linear:
//
//	awaiting_approval1 -> awaiting_approval2 -> awaiting_activation -> activated
//
// The legacy pair (legacy_pending -> legacy_reviewed) is a separate
// administrative override path and is never part of the main chain.
type Status string

const (
	StatusAwaitingApproval1  Status = "awaiting_approval1"
	StatusAwaitingApproval2  Status = "awaiting_approval2"
	StatusAwaitingActivation Status = "awaiting_activation"
	StatusActivated          Status = "activated"

	StatusLegacyPending  Status = "legacy_pending"
	StatusLegacyReviewed Status = "legacy_reviewed"
)

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	return s == StatusActivated || s == StatusLegacyReviewed
}

func (s Status) String() string { return string(s) }

// Role names one of the three approval roles.  Each role is authorized to
// perform exactly one main-chain transition.
type Role string

const (
	RoleApprover1 Role = "approver1"
	RoleApprover2 Role = "approver2"
	RoleActivator Role = "activator"
)

// Roles lists all approval roles in chain order.
var Roles = []Role{RoleApprover1, RoleApprover2, RoleActivator}

// PendingStatus returns the status a member of this role is expected to act
// on.
func (r Role) PendingStatus() Status {
	switch r {
	case RoleApprover1:
		return StatusAwaitingApproval1
	case RoleApprover2:
		return StatusAwaitingApproval2
	case RoleActivator:
		return StatusAwaitingActivation
	}
	return ""
}

// Request is one camera-footage access request record.
//
// Everything except Status and the per-stage approval stamps is immutable
// after creation.  Each approval stamp (identity + timestamp) is written
// exactly once, by the transition its role gates, and never overwritten.
type Request struct {
	ID                    int64
	SubmitterIdentity     string
	SubmittedAt           time.Time
	DeclaredRequesterName string
	SystemRequesterName   string
	CameraLocation        string
	Reason                string
	ActivationDays        int
	Status                Status

	Approver1Identity string
	Approver1At       *time.Time
	Approver2Identity string
	Approver2At       *time.Time
	ActivatorIdentity string
	ActivatorAt       *time.Time
}
