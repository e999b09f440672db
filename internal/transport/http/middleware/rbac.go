package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"hrms/internal/platform/requestctx"
	"hrms/internal/transport/http/api"
)

type PermissionStore interface {
	HasPermission(ctx context.Context, roleID, permission string) (bool, error)
}

// RequirePermission rejects anonymous callers with 401 and callers whose role
// lacks permission with 403.
func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
				return
			}

			allowed, err := store.HasPermission(r.Context(), user.RoleID, permission)
			if err != nil {
				requestctx.Logger(r.Context()).Error("permission check failed", "permission", permission, "role", user.RoleName, "err", err)
				api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", requestID)
				return
			}
			if !allowed {
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type permissionKey struct {
	roleID     string
	permission string
}

type permissionEntry struct {
	allowed bool
	expires time.Time
}

// PermissionCache remembers role grants for ttl. Lookup errors are not cached.
type PermissionCache struct {
	store PermissionStore
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	entries map[permissionKey]permissionEntry
}

func NewPermissionCache(store PermissionStore, ttl time.Duration) *PermissionCache {
	return &PermissionCache{
		store:   store,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[permissionKey]permissionEntry),
	}
}

func (c *PermissionCache) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	if c.ttl <= 0 {
		return c.store.HasPermission(ctx, roleID, permission)
	}
	key := permissionKey{roleID: roleID, permission: permission}
	now := c.now()

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok && now.Before(entry.expires) {
		return entry.allowed, nil
	}

	allowed, err := c.store.HasPermission(ctx, roleID, permission)
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	c.entries[key] = permissionEntry{allowed: allowed, expires: now.Add(c.ttl)}
	c.mu.Unlock()
	return allowed, nil
}
