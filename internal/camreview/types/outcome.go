package types

// OutcomeCode classifies the result of a workflow operation.  Domain
// failures are reported as outcomes rather than errors so callers always get
// a human-readable result they can surface directly.
type OutcomeCode string

const (
	OutcomeOK               OutcomeCode = "ok"
	OutcomePermissionDenied OutcomeCode = "permission_denied"
	OutcomeInvalidState     OutcomeCode = "invalid_state"
	OutcomeNotFound         OutcomeCode = "not_found"
	OutcomeInvalidInput     OutcomeCode = "invalid_input"
	OutcomeConflict         OutcomeCode = "conflict"
	OutcomeStoreFailure     OutcomeCode = "store_failure"
)

// Outcome is the caller-visible result of a workflow operation.
//
// Warning carries a non-fatal problem that occurred after the operation
// already succeeded (today: notification dispatch failure).  A non-empty
// Warning never changes Code.
type Outcome struct {
	Code    OutcomeCode `json:"code"`
	Message string      `json:"message"`
	Warning string      `json:"warning,omitempty"`
}

// OK reports whether the operation succeeded.
func (o Outcome) OK() bool { return o.Code == OutcomeOK }

func Okf(msg string) Outcome {
	return Outcome{Code: OutcomeOK, Message: msg}
}

func Failure(code OutcomeCode, msg string) Outcome {
	return Outcome{Code: code, Message: msg}
}
