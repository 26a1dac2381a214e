package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/cwhuang-tw/camreview/internal/camreview/types"
)

// RosterStore is an in-memory role roster.  Tests can flip Fail to simulate
// a roster outage and ReadCount to assert on cache behaviour.
type RosterStore struct {
	mu      sync.Mutex
	members map[types.Role][]string
	fail    bool
	reads   int
}

func NewRosterStore() *RosterStore {
	return &RosterStore{members: make(map[types.Role][]string)}
}

func (s *RosterStore) SetMembers(role types.Role, identities ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[role] = append([]string(nil), identities...)
}

// SetFail makes every subsequent read fail when v is true.
func (s *RosterStore) SetFail(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = v
}

// ReadCount returns how many Members calls reached the store.
func (s *RosterStore) ReadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func (s *RosterStore) Members(_ context.Context, role types.Role) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.fail {
		return nil, errors.New("roster unavailable")
	}
	return append([]string(nil), s.members[role]...), nil
}
