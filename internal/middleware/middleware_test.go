package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/auth"
	"github.com/societyhub/community-server/internal/models"
)

func okHandler(t *testing.T, want *models.Actor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if want != nil {
			s, ok := SessionFrom(r.Context())
			require.True(t, ok)
			assert.Equal(t, *want, s.Actor)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestRequireAuth(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	revocations := auth.NewMemoryRevocationStore()
	user := &models.User{ID: uuid.New(), Role: models.RoleResident}
	want := models.Actor{UserID: user.ID, Role: user.Role}

	token, expires, err := issuer.Issue(user)
	require.NoError(t, err)

	h := RequireAuth(issuer, revocations, zap.NewNop().Sugar())(okHandler(t, &want))

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"bearer prefix", "Bearer " + token, http.StatusNoContent, ""},
		{"bare token", token, http.StatusNoContent, ""},
		{"missing", "", http.StatusUnauthorized, "Authorization required"},
		{"garbage", "Bearer nope", http.StatusUnauthorized, "Invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, errorBody(t, rec))
			}
		})
	}

	t.Run("revoked", func(t *testing.T) {
		claims, err := issuer.Parse(token)
		require.NoError(t, err)
		require.NoError(t, revocations.Revoke(context.Background(), claims.ID, expires))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Token has been revoked", errorBody(t, rec))
	})
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(models.RoleAdmin, models.RoleGuard)(okHandler(t, nil))

	for role, status := range map[models.Role]int{
		models.RoleAdmin:           http.StatusNoContent,
		models.RoleGuard:           http.StatusNoContent,
		models.RoleResident:        http.StatusForbidden,
		models.RoleServiceProvider: http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithSession(req.Context(), Session{Actor: models.Actor{UserID: uuid.New(), Role: role}}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, status, rec.Code, role)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMemoryLimiter(t *testing.T) {
	l := NewMemoryLimiter(3)
	clock := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}
	ok, _ := l.Allow(ctx, "10.0.0.1")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "10.0.0.2")
	assert.True(t, ok, "keys are independent")

	clock = clock.Add(time.Minute)
	ok, _ = l.Allow(ctx, "10.0.0.1")
	assert.True(t, ok, "tokens refill over time")
}

func TestMemoryLimiterSweepsIdleKeysAtMostOncePerInterval(t *testing.T) {
	l := NewMemoryLimiter(10)
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	clock := start
	l.now = func() time.Time { return clock }
	ctx := context.Background()

	allowAt := func(offset time.Duration, key string) {
		clock = start.Add(offset)
		_, err := l.Allow(ctx, key)
		require.NoError(t, err)
	}

	allowAt(0, "a")
	allowAt(50*time.Second, "b")
	assert.Len(t, l.limiters, 2)

	// a has been idle past the limit; b has not
	allowAt(3*time.Minute+5*time.Second, "c")
	assert.Len(t, l.limiters, 2)
	assert.NotContains(t, l.limiters, "a")

	// b is now idle too, but the last sweep was under a minute ago
	allowAt(3*time.Minute+55*time.Second, "c")
	assert.Contains(t, l.limiters, "b")

	allowAt(4*time.Minute+10*time.Second, "c")
	assert.NotContains(t, l.limiters, "b")
	assert.Len(t, l.limiters, 1)
}

func TestRateLimitMiddleware(t *testing.T) {
	h := RateLimit(NewMemoryLimiter(1), zap.NewNop().Sugar())(okHandler(t, nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc"))
	assert.Equal(t, "abc", bearerToken("abc"))
	assert.Equal(t, "", bearerToken("  "))
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders()(okHandler(t, nil)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
