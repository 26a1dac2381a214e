package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwhuang-tw/camreview/internal/camreview/cache"
	"github.com/cwhuang-tw/camreview/internal/camreview/store"
)

// DirectoryTTL is how long the identity→name map stays cached.  The user
// table changes rarely, so this is much longer than the roster TTL.
const DirectoryTTL = 6 * time.Hour

const directoryCacheKey = "directory"

// DirectoryResolver maps a caller identity to a display name via a cached
// read of the external user table.  The mapping is display-only and a
// back-reference for matching historical records; it is never authoritative
// identity.
type DirectoryResolver struct {
	directory store.DirectoryStore
	cache     *cache.Cache[map[string]string]
	ttl       time.Duration
	logger    *logrus.Logger
}

func NewDirectoryResolver(ds store.DirectoryStore, c *cache.Cache[map[string]string], logger *logrus.Logger) *DirectoryResolver {
	return &DirectoryResolver{directory: ds, cache: c, ttl: DirectoryTTL, logger: logger}
}

// DisplayName resolves identity to its directory name, falling back to the
// raw identity on a map miss or a directory read failure.
func (d *DirectoryResolver) DisplayName(ctx context.Context, identity string) string {
	key := strings.ToLower(strings.TrimSpace(identity))
	if key == "" {
		return identity
	}

	entries, ok := d.cache.Get(directoryCacheKey)
	if !ok {
		var err error
		entries, err = d.directory.Entries(ctx)
		if err != nil {
			d.logger.WithError(err).Warn("directory read failed, using raw identity")
			return identity
		}
		d.cache.Put(directoryCacheKey, entries, d.ttl)
	}

	if name, found := entries[key]; found && name != "" {
		return name
	}
	return identity
}

// Invalidate drops the cached map.
func (d *DirectoryResolver) Invalidate() {
	d.cache.Invalidate()
}
