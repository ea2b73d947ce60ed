package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inkpost/app/logger"
	"inkpost/app/metrics"
	"inkpost/app/models"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("test", &buf)

	handler := chimw.RequestID(Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rw := httptest.NewRecorder()
	handler.ServeHTTP(rw, req)

	out := buf.String()
	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "path=/test")
	assert.Contains(t, out, "status=418")
	assert.Contains(t, out, "request_id=")
	assert.Contains(t, out, "duration=")
}

func TestRecoverer(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("test", &buf)

	handler := Recoverer(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rw := httptest.NewRecorder()
	handler.ServeHTTP(rw, req)

	assert.Equal(t, http.StatusInternalServerError, rw.Code)
	assert.Contains(t, rw.Body.String(), "Internal Server Error")
	assert.Contains(t, buf.String(), "test panic")
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.Use(Metrics)
	router.HandleFunc("/post/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/post/{id}", "200")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{"/post/1", "/post/2"} {
		rw := httptest.NewRecorder()
		router.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rw.Code)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

type stubResolver struct {
	actors map[string]models.Actor
	err    error
}

func (s stubResolver) ResolveCurrentActor(_ context.Context, token string) (models.Actor, error) {
	if s.err != nil {
		return models.Anonymous, s.err
	}
	return s.actors[token], nil
}

func TestCurrentActor(t *testing.T) {
	alice := models.Actor{User: &models.User{ID: 2, Name: "Alice"}}
	resolver := stubResolver{actors: map[string]models.Actor{"alice-token": alice}}

	var seen models.Actor
	handler := CurrentActor(resolver, func(w http.ResponseWriter, r *http.Request, err error) {
		t.Fatalf("unexpected error: %v", err)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ActorFrom(r.Context())
	}))

	t.Run("with cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "alice-token"})
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, 2, seen.ID())
	})

	t.Run("without cookie", func(t *testing.T) {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.False(t, seen.IsAuthenticated())
	})
}

func TestCurrentActorError(t *testing.T) {
	boom := errors.New("boom")
	var gotErr error
	handler := CurrentActor(stubResolver{err: boom}, func(w http.ResponseWriter, r *http.Request, err error) {
		gotErr = err
		w.WriteHeader(http.StatusNotFound)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rw := httptest.NewRecorder()
	handler.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rw.Code)
	assert.ErrorIs(t, gotErr, boom)
}

func TestActorFromEmptyContext(t *testing.T) {
	assert.Equal(t, models.Anonymous, ActorFrom(context.Background()))
}

func TestRequireAdmin(t *testing.T) {
	isAdmin := func(a models.Actor) bool { return a.ID() == 1 }
	forbidden := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	handler := RequireAdmin(isAdmin, forbidden)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name  string
		actor models.Actor
		want  int
	}{
		{name: "anonymous", actor: models.Anonymous, want: http.StatusForbidden},
		{name: "user", actor: models.Actor{User: &models.User{ID: 2}}, want: http.StatusForbidden},
		{name: "admin", actor: models.Actor{User: &models.User{ID: 1}}, want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithActor(req.Context(), tt.actor))
			rw := httptest.NewRecorder()
			handler.ServeHTTP(rw, req)
			assert.Equal(t, tt.want, rw.Code)
		})
	}
}

func TestSessionCookies(t *testing.T) {
	rw := httptest.NewRecorder()
	SetSessionCookie(rw, "tok", time.Now().Add(time.Hour), true)

	cookies := rw.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, SessionCookieName, c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.InDelta(t, 3600, c.MaxAge, 5)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	assert.Equal(t, "tok", SessionToken(req))

	rw = httptest.NewRecorder()
	ClearSessionCookie(rw, false)
	cleared := rw.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)
	assert.Empty(t, cleared[0].Value)
}
