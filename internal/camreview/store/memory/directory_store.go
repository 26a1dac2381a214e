package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// DirectoryStore is an in-memory identity→display-name table.
type DirectoryStore struct {
	mu      sync.Mutex
	entries map[string]string
	fail    bool
}

func NewDirectoryStore() *DirectoryStore {
	return &DirectoryStore{entries: make(map[string]string)}
}

func (s *DirectoryStore) SetName(identity, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[strings.ToLower(strings.TrimSpace(identity))] = name
}

func (s *DirectoryStore) SetFail(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = v
}

func (s *DirectoryStore) Entries(_ context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errors.New("directory unavailable")
	}
	out := make(map[string]string, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out, nil
}
