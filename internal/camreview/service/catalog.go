package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/cwhuang-tw/camreview/internal/camreview/store"
)

// CatalogService exposes the requester→cameras map the submission form uses
// to populate its choices.  Read-only; a catalog read failure degrades to an
// empty map so the form still renders.
type CatalogService struct {
	catalog store.CatalogStore
	logger  *logrus.Logger
}

func NewCatalogService(catalog store.CatalogStore, logger *logrus.Logger) *CatalogService {
	return &CatalogService{catalog: catalog, logger: logger}
}

func (s *CatalogService) CamerasByRequester(ctx context.Context) map[string][]string {
	m, err := s.catalog.CamerasByRequester(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("catalog read failed, returning empty map")
		return map[string][]string{}
	}
	if m == nil {
		m = map[string][]string{}
	}
	return m
}
