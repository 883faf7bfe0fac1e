package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Guard bundles the per-route middleware chains used by feature routes.
type Guard struct {
	RBAC      RBACService
	Redis     *redis.Client
	RateLimit gin.HandlerFunc
}

// Allow gates a read route.
func (g Guard) Allow(resource, action string) gin.HandlerFunc {
	return RBACAuthorize(g.RBAC, resource, action)
}

// Mutate returns the chain for a money moving route followed by handler:
// rate limit, permission check, then idempotency when redis is configured.
func (g Guard) Mutate(resource, action string, handler gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, 4)
	if g.RateLimit != nil {
		chain = append(chain, g.RateLimit)
	}
	chain = append(chain, RBACAuthorize(g.RBAC, resource, action))
	if g.Redis != nil {
		chain = append(chain, Idempotency(g.Redis))
	}
	return append(chain, handler)
}
