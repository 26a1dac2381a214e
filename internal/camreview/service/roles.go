package service

import (
	"context"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwhuang-tw/camreview/internal/camreview/cache"
	"github.com/cwhuang-tw/camreview/internal/camreview/store"
	"github.com/cwhuang-tw/camreview/internal/camreview/types"
)

// RosterTTL is how long a role roster read stays cached.
const RosterTTL = 10 * time.Minute

// RoleResolver answers role-membership questions from a cached read of the
// external roster.
//
// Roster reads fail soft: on a store error the resolver logs a warning and
// returns an empty roster.  An empty roster denies every approval for that
// role until the store recovers, which is the safe direction.
type RoleResolver struct {
	roster store.RosterStore
	cache  *cache.Cache[[]string]
	ttl    time.Duration
	logger *logrus.Logger
}

func NewRoleResolver(rs store.RosterStore, c *cache.Cache[[]string], logger *logrus.Logger) *RoleResolver {
	return &RoleResolver{roster: rs, cache: c, ttl: RosterTTL, logger: logger}
}

// Members returns the current roster for role, cached for RosterTTL.
// Failures are never cached, so the next call retries the store.
func (r *RoleResolver) Members(ctx context.Context, role types.Role) []string {
	key := "roster:" + string(role)
	if members, ok := r.cache.Get(key); ok {
		return members
	}

	members, err := r.roster.Members(ctx, role)
	if err != nil {
		r.logger.WithError(err).WithField("role", role).Warn("roster read failed, treating as empty")
		return nil
	}
	r.cache.Put(key, members, r.ttl)
	return members
}

// HasRole reports whether identity belongs to role's roster.
func (r *RoleResolver) HasRole(ctx context.Context, identity string, role types.Role) bool {
	return slices.Contains(r.Members(ctx, role), identity)
}

// IsAnyReviewer reports whether identity belongs to at least one of the
// three approval roles.
func (r *RoleResolver) IsAnyReviewer(ctx context.Context, identity string) bool {
	if identity == "" {
		return false
	}
	for _, role := range types.Roles {
		if r.HasRole(ctx, identity, role) {
			return true
		}
	}
	return false
}

// Invalidate drops every cached roster.
func (r *RoleResolver) Invalidate() {
	r.cache.Invalidate()
}
