package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/bloodlink/bloodlink-api/internal/domain/entity"
	"github.com/bloodlink/bloodlink-api/internal/domain/repository"
	"github.com/bloodlink/bloodlink-api/pkg/helpers"
	"github.com/bloodlink/bloodlink-api/pkg/response"
)

// Gin context keys set by the auth middlewares.
const (
	CtxActorKey  = "actor"
	CtxClaimsKey = "claims"
)

// IdentityResolver turns a verified token email into the acting identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, email string) (entity.Identity, error)
}

// CachedResolver resolves identities from the user store through a short
// Redis cache. Role and account status always come from the store, never
// from the token, so admin changes and blocks propagate within TTL.
type CachedResolver struct {
	Repo repository.UserRepository
	RDB  *redis.Client
	TTL  time.Duration
}

func identityKey(email string) string { return "identity:" + email }

func (r *CachedResolver) Resolve(ctx context.Context, email string) (entity.Identity, error) {
	if r.RDB != nil {
		var cached entity.Identity
		if ok, err := helpers.RedisGetJSON(ctx, r.RDB, identityKey(email), &cached); err == nil && ok {
			return cached, nil
		}
	}
	u, err := r.Repo.GetByEmail(ctx, email)
	if err != nil {
		return entity.Identity{}, err
	}
	id := u.Identity()
	if r.RDB != nil {
		_ = helpers.RedisSetJSON(ctx, r.RDB, identityKey(email), id, r.TTL)
	}
	return id, nil
}

// Invalidate drops a cached identity, called after role/status changes.
func (r *CachedResolver) Invalidate(ctx context.Context, email string) {
	if r.RDB != nil {
		_ = helpers.RedisDel(ctx, r.RDB, identityKey(email))
	}
}

// Identity authenticates the request: it verifies the bearer token minted by
// the external identity provider and resolves the caller's stored profile
// into an entity.Identity on the context.
func Identity(verifier *helpers.TokenVerifier, resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing bearer token", nil)
			c.Abort()
			return
		}
		claims, err := verifier.Verify(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid bearer token", err.Error())
			c.Abort()
			return
		}
		actor, err := resolver.Resolve(c.Request.Context(), claims.Email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				response.Error[any](c, http.StatusUnauthorized, "unknown user", nil)
			} else {
				response.Error[any](c, http.StatusInternalServerError, "identity resolution failed", nil)
			}
			c.Abort()
			return
		}
		c.Set(CtxActorKey, actor)
		c.Next()
	}
}

// OptionalIdentity resolves the identity when a valid bearer token is
// present and otherwise lets the request through anonymously. Used on public
// routes whose results vary with authentication, like blog listing.
func OptionalIdentity(verifier *helpers.TokenVerifier, resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		claims, err := verifier.Verify(token)
		if err != nil {
			c.Next()
			return
		}
		if actor, err := resolver.Resolve(c.Request.Context(), claims.Email); err == nil {
			c.Set(CtxActorKey, actor)
		}
		c.Next()
	}
}

// TokenOnly verifies the bearer token without resolving a stored profile.
// Registration runs behind this: the caller has a valid token from the
// identity provider but no profile row yet.
func TokenOnly(verifier *helpers.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing bearer token", nil)
			c.Abort()
			return
		}
		claims, err := verifier.Verify(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid bearer token", err.Error())
			c.Abort()
			return
		}
		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the verified token claims set by TokenOnly.
func ClaimsFrom(c *gin.Context) (*helpers.IdentityClaims, bool) {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*helpers.IdentityClaims)
	return claims, ok
}

// ActorFrom returns the authenticated identity set by Identity.
func ActorFrom(c *gin.Context) (entity.Identity, bool) {
	v, ok := c.Get(CtxActorKey)
	if !ok {
		return entity.Identity{}, false
	}
	actor, ok := v.(entity.Identity)
	return actor, ok
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
