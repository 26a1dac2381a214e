package service

import (
	"context"
	"fmt"

	"github.com/cwhuang-tw/camreview/internal/camreview/types"
)

// BatchFailure names one record that did not advance and why.
type BatchFailure struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// BatchResult summarizes a batch transition.  There are no all-or-nothing
// semantics: Succeeded records stay advanced regardless of later failures.
type BatchResult struct {
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Failures  []BatchFailure `json:"failures,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// BatchTransition applies the single-record transition to each id in input
// order, sequentially, isolating failures per record.
//
// The whole batch is rejected up front when the actor is not a reviewer of
// any role or the input is empty; afterwards nothing aborts the loop.
func (w *Workflow) BatchTransition(ctx context.Context, ids []int64, actor string) (BatchResult, types.Outcome) {
	if !w.roles.IsAnyReviewer(ctx, actor) {
		return BatchResult{}, types.Failure(types.OutcomePermissionDenied, "reviewer membership required")
	}
	if len(ids) == 0 {
		return BatchResult{}, types.Failure(types.OutcomeInvalidInput, "no records selected")
	}

	var res BatchResult
	for _, id := range ids {
		outcome := w.Transition(ctx, id, actor)
		if outcome.OK() {
			res.Succeeded++
			if outcome.Warning != "" {
				res.Warnings = append(res.Warnings, fmt.Sprintf("record %d: %s", id, outcome.Warning))
			}
			continue
		}
		res.Failed++
		res.Failures = append(res.Failures, BatchFailure{ID: id, Reason: outcome.Message})
	}

	return res, types.Okf(fmt.Sprintf("batch completed: %d succeeded, %d failed or skipped", res.Succeeded, res.Failed))
}
