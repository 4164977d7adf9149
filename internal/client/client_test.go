package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/models"
)

type fakeAPI struct {
	mu       sync.Mutex
	alerts   []models.SOSAlert
	signouts atomic.Int32
}

func (f *fakeAPI) addAlert(a models.SOSAlert) {
	f.mu.Lock()
	f.alerts = append(f.alerts, a)
	f.mu.Unlock()
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		var req models.SigninRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		if req.Password != "password123" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"message":   "Login successful",
			"token":     "tok-1",
			"expiresAt": time.Now().Add(time.Hour),
			"user":      models.User{ID: uuid.New(), Name: req.NameOrEmail, Role: req.Role},
		})
	})
	mux.HandleFunc("/api/v1/auth/signout", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		f.signouts.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Signed out"})
	})
	mux.HandleFunc("/api/v1/sos/all", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Authorization required"})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"alerts": f.alerts})
	})
	return mux
}

func setup(t *testing.T, api *fakeAPI) *Client {
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/v1/", srv.Client())
}

func TestSignInAndOut(t *testing.T) {
	api := &fakeAPI{}
	c := setup(t, api)
	ctx := context.Background()

	_, err := c.SignIn(ctx, "gate-guard", "nope", models.RoleGuard)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)

	s, err := c.SignIn(ctx, "gate-guard", "password123", models.RoleGuard)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", s.Token)
	assert.Equal(t, "gate-guard", s.User.Name)
	assert.True(t, s.Valid(time.Now()))

	require.NoError(t, c.SignOut(ctx, s))
	assert.False(t, s.Valid(time.Now()))
	assert.Equal(t, int32(1), api.signouts.Load())

	// A second sign-out is a no-op
	require.NoError(t, c.SignOut(ctx, s))
	assert.Equal(t, int32(1), api.signouts.Load())

	_, err = c.ListSOS(ctx, s)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestSessionExpiry(t *testing.T) {
	s := &Session{Token: "t", ExpiresAt: time.Now().Add(time.Minute)}
	assert.True(t, s.Valid(time.Now()))
	assert.False(t, s.Valid(time.Now().Add(2*time.Minute)))

	var nilSession *Session
	assert.False(t, nilSession.Valid(time.Now()))
}

func TestSOSWatcherReportsEachAlertOnce(t *testing.T) {
	first, second := uuid.New(), uuid.New()
	api := &fakeAPI{alerts: []models.SOSAlert{
		{ID: first, Type: models.SOSFire, Reporter: &models.UserRef{Name: "Ana", HouseNumber: "B-12"}},
		{ID: uuid.New(), Type: models.SOSFire, IsResolved: true},
	}}
	c := setup(t, api)
	ctx := context.Background()

	s, err := c.SignIn(ctx, "gate-guard", "password123", models.RoleGuard)
	require.NoError(t, err)
	w := NewSOSWatcher(c, s, zap.NewNop().Sugar())

	fresh, err := w.Check(ctx)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, first, fresh[0].ID)

	fresh, err = w.Check(ctx)
	require.NoError(t, err)
	assert.Empty(t, fresh)

	api.addAlert(models.SOSAlert{ID: second, Type: models.SOSFire})
	require.NoError(t, w.Poll(ctx))
	fresh, err = w.Check(ctx)
	require.NoError(t, err)
	assert.Empty(t, fresh, "Poll already marked the new alert seen")
}
