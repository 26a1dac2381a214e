package memory

import (
	"context"
	"sync"
)

// CatalogStore is an in-memory camera catalog.
type CatalogStore struct {
	mu      sync.Mutex
	cameras map[string][]string
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{cameras: make(map[string][]string)}
}

func (s *CatalogStore) AddCamera(requester, camera string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cameras[requester] = append(s.cameras[requester], camera)
}

func (s *CatalogStore) CamerasByRequester(_ context.Context) (map[string][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]string, len(s.cameras))
	for k, v := range s.cameras {
		out[k] = append([]string(nil), v...)
	}
	return out, nil
}
