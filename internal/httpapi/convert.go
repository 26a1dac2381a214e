package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/cwhuang-tw/camreview/internal/camreview/service"
	"github.com/cwhuang-tw/camreview/internal/camreview/types"
)

type submitResponse struct {
	types.Outcome
	ID int64 `json:"id,omitempty"`
}

type batchResponse struct {
	types.Outcome
	Result service.BatchResult `json:"result"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// outcomeStatus maps a workflow outcome to an HTTP status.  A warning on a
// successful outcome does not change the status; the warning rides in the
// body.
func outcomeStatus(o types.Outcome) int {
	switch o.Code {
	case types.OutcomeOK:
		return http.StatusOK
	case types.OutcomeInvalidInput:
		return http.StatusBadRequest
	case types.OutcomePermissionDenied:
		return http.StatusForbidden
	case types.OutcomeNotFound:
		return http.StatusNotFound
	case types.OutcomeConflict:
		return http.StatusConflict
	case types.OutcomeInvalidState:
		return http.StatusUnprocessableEntity
	case types.OutcomeStoreFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}
