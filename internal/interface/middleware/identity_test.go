package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloodlink/bloodlink-api/internal/domain/entity"
	"github.com/bloodlink/bloodlink-api/internal/domain/repository"
	"github.com/bloodlink/bloodlink-api/internal/interface/middleware"
	"github.com/bloodlink/bloodlink-api/pkg/helpers"
)

type stubUserRepo struct {
	users map[string]*entity.User
	calls int
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	s.calls++
	u, ok := s.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *stubUserRepo) Create(context.Context, *entity.User) error { return nil }
func (s *stubUserRepo) GetByID(context.Context, string) (*entity.User, error) {
	return nil, repository.ErrNotFound
}
func (s *stubUserRepo) List(context.Context, repository.UserFilter) ([]*entity.User, int, error) {
	return nil, 0, nil
}
func (s *stubUserRepo) UpdateProfile(context.Context, *entity.User) error     { return nil }
func (s *stubUserRepo) UpdateRole(context.Context, string, entity.Role) error { return nil }
func (s *stubUserRepo) UpdateStatus(context.Context, string, entity.AccountStatus) error {
	return nil
}
func (s *stubUserRepo) SearchDonors(context.Context, repository.DonorSearch) ([]*entity.User, error) {
	return nil, nil
}
func (s *stubUserRepo) CountDonors(context.Context) (int, error) { return 0, nil }

func testStack(t *testing.T) (*helpers.TokenVerifier, *stubUserRepo, *middleware.CachedResolver) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := &stubUserRepo{users: map[string]*entity.User{
		"known@x.test": {
			ID: "u1", Email: "known@x.test", Name: "Known",
			Role: entity.RoleVolunteer, Status: entity.AccountActive,
		},
	}}
	resolver := &middleware.CachedResolver{Repo: repo, RDB: rdb, TTL: time.Minute}
	return helpers.NewTokenVerifier("test-secret"), repo, resolver
}

func protectedRouter(verifier *helpers.TokenVerifier, resolver *middleware.CachedResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", middleware.Identity(verifier, resolver), func(c *gin.Context) {
		actor, _ := middleware.ActorFrom(c)
		c.JSON(http.StatusOK, gin.H{"email": actor.Email, "role": actor.Role})
	})
	return r
}

func TestIdentityResolvesKnownUser(t *testing.T) {
	verifier, _, resolver := testStack(t)
	r := protectedRouter(verifier, resolver)

	token, err := verifier.Mint("known@x.test", "Known", time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "known@x.test")
	assert.Contains(t, w.Body.String(), "volunteer")
}

func TestIdentityRejectsMissingAndBadTokens(t *testing.T) {
	verifier, _, resolver := testStack(t)
	r := protectedRouter(verifier, resolver)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	otherVerifier := helpers.NewTokenVerifier("different-secret")
	forged, err := otherVerifier.Mint("known@x.test", "Known", time.Minute)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIdentityRejectsExpiredToken(t *testing.T) {
	verifier, _, resolver := testStack(t)
	r := protectedRouter(verifier, resolver)

	token, err := verifier.Mint("known@x.test", "Known", -time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIdentityUnknownUser(t *testing.T) {
	verifier, _, resolver := testStack(t)
	r := protectedRouter(verifier, resolver)

	token, err := verifier.Mint("stranger@x.test", "Stranger", time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResolverCachesAndInvalidates(t *testing.T) {
	verifier, repo, resolver := testStack(t)
	r := protectedRouter(verifier, resolver)

	token, err := verifier.Mint("known@x.test", "Known", time.Minute)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 1, repo.calls, "identity should be served from cache after the first hit")

	// Role change invalidates: the next request re-reads the store.
	repo.users["known@x.test"].Role = entity.RoleAdmin
	resolver.Invalidate(context.Background(), "known@x.test")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin")
	assert.Equal(t, 2, repo.calls)
}

func TestTokenOnlySetsClaims(t *testing.T) {
	verifier, _, _ := testStack(t)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/register", middleware.TokenOnly(verifier), func(c *gin.Context) {
		claims, ok := middleware.ClaimsFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"email": claims.Email})
	})

	token, err := verifier.Mint("new@x.test", "New", time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "new@x.test")
}
