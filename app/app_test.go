package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inkpost/app/logger"
	"inkpost/app/repositories/mock"
	"inkpost/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() config.Config {
	return config.Config{
		Env: "test",
		Server: config.ServerConfig{
			Addr:        ":0",
			ReadTimeout: time.Second,
		},
		Auth: config.AuthConfig{
			SecretKey:  "app-test-secret",
			SessionTTL: time.Hour,
			BcryptCost: bcrypt.MinCost,
		},
		Store: config.StoreConfig{
			Driver:         config.DriverBadger,
			BadgerInMemory: true,
		},
	}
}

func TestNewWithBadger(t *testing.T) {
	a, err := New(context.Background(), testConfig(), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	srv := a.Server()
	assert.Equal(t, ":0", srv.Addr)
	assert.Equal(t, time.Second, srv.ReadTimeout)
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.SecretKey = ""
	_, err := New(context.Background(), cfg, logger.Discard())
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Store.Driver = "sqlite"
	_, err = New(context.Background(), cfg, logger.Discard())
	assert.Error(t, err)
}

func TestNewWithStoreServesRequests(t *testing.T) {
	store := mock.NewStore()
	a, err := NewWithStore(testConfig(), logger.Discard(), store)
	require.NoError(t, err)

	_, err = a.Users.Register(context.Background(), "admin@example.com", "pw", "Admin")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/new-post", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, a.Close())
}
