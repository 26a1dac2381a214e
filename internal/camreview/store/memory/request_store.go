package memory

import (
	"context"
	"sync"

	"github.com/cwhuang-tw/camreview/internal/camreview/store"
	"github.com/cwhuang-tw/camreview/internal/camreview/types"
)

// RequestStore is an in-memory RequestStore for tests and dev environments.
// Ids are 1-based append positions, so they are stable and strictly ordered
// like the sqlite rowids in production.
type RequestStore struct {
	mu       sync.Mutex
	requests []types.Request
}

func NewRequestStore() *RequestStore {
	return &RequestStore{}
}

func (s *RequestStore) Get(_ context.Context, id int64) (types.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 1 || id > int64(len(s.requests)) {
		return types.Request{}, store.ErrNotFound
	}
	return s.requests[id-1], nil
}

func (s *RequestStore) Append(_ context.Context, req types.Request) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req.ID = int64(len(s.requests) + 1)
	s.requests = append(s.requests, req)
	return req.ID, nil
}

func (s *RequestStore) List(_ context.Context) ([]types.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Request, len(s.requests))
	copy(out, s.requests)
	return out, nil
}

func (s *RequestStore) ScanByStatus(_ context.Context, status types.Status) ([]types.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Request
	for _, r := range s.requests {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *RequestStore) ApplyTransition(_ context.Context, id int64, expect types.Status, stamp store.Stamp) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 1 || id > int64(len(s.requests)) {
		return false, store.ErrNotFound
	}
	r := &s.requests[id-1]
	if r.Status != expect {
		return false, nil
	}

	at := stamp.At
	switch stamp.Role {
	case types.RoleApprover1:
		r.Approver1Identity = stamp.Identity
		r.Approver1At = &at
	case types.RoleApprover2:
		r.Approver2Identity = stamp.Identity
		r.Approver2At = &at
	case types.RoleActivator:
		r.ActivatorIdentity = stamp.Identity
		r.ActivatorAt = &at
	}
	r.Status = stamp.NewStatus
	return true, nil
}

func (s *RequestStore) MarkLegacyReviewed(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 1 || id > int64(len(s.requests)) {
		return false, nil
	}
	r := &s.requests[id-1]
	if r.Status != types.StatusLegacyPending {
		return false, nil
	}
	r.Status = types.StatusLegacyReviewed
	return true, nil
}
