package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/jrsteele09/hisabi-admin/gateway"
	apperrors "github.com/jrsteele09/hisabi-admin/internal/errors"
	"github.com/jrsteele09/hisabi-admin/session"
	fakesessionrepo "github.com/jrsteele09/hisabi-admin/session/repofake"
	"github.com/stretchr/testify/require"
)

type recordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNavigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *recordingNavigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

type testFixture struct {
	server    *httptest.Server
	repo      *fakesessionrepo.FakeSessionRepo
	store     *session.Store
	navigator *recordingNavigator
	client    *gateway.Client

	mu          sync.Mutex
	authHeaders []string
}

func setupTestFixture(t *testing.T, handler http.HandlerFunc) *testFixture {
	t.Helper()

	f := &testFixture{
		repo:      fakesessionrepo.NewFakeSessionRepo(),
		navigator: &recordingNavigator{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.authHeaders = append(f.authHeaders, r.Header.Get("Authorization"))
		f.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(f.server.Close)

	store, err := session.Initialize(f.repo)
	require.NoError(t, err)
	f.store = store

	client, err := gateway.New(f.server.URL+"/api",
		gateway.WithRequestInterceptor(gateway.BearerInterceptor(store)),
		gateway.WithResponseInterceptor(gateway.EvictOnUnauthorized(store, f.navigator)),
	)
	require.NoError(t, err)
	f.client = client
	return f
}

func (f *testFixture) lastAuthHeader() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authHeaders[len(f.authHeaders)-1]
}

func TestClient_AttachesCredential(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/admin/stats" || r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"total_users": 3}`))
	})

	var out struct {
		TotalUsers int `json:"total_users"`
	}

	t.Run("unauthenticated", func(t *testing.T) {
		require.NoError(t, f.client.Get(context.Background(), "/admin/stats", nil, &out))
		require.Empty(t, f.lastAuthHeader())
	})

	t.Run("after login", func(t *testing.T) {
		require.NoError(t, f.store.Login("secret-token"))
		require.NoError(t, f.client.Get(context.Background(), "/admin/stats", nil, &out))
		require.Equal(t, "Bearer secret-token", f.lastAuthHeader())
		require.Equal(t, 3, out.TotalUsers)
	})
}

func TestClient_UnauthorizedEvictsSession(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/admin/users" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"token expired"}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	})
	require.NoError(t, f.store.Login("stale"))

	err := f.client.Get(context.Background(), "/admin/users", nil, nil)
	require.Error(t, err)
	require.True(t, gateway.IsUnauthorized(err))
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	require.Equal(t, "token expired", err.Error())

	require.False(t, f.store.Authenticated())
	require.Empty(t, f.repo.Stored())
	require.Equal(t, []string{gateway.RouteLogin}, f.navigator.Routes())

	require.NoError(t, f.client.Get(context.Background(), "/admin/groups", nil, nil))
	require.Empty(t, f.lastAuthHeader())
}

func TestClient_StaleUnauthorizedKeepsNewLogin(t *testing.T) {
	var f *testFixture
	f = setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		// The admin signs in again while the old request is still in flight.
		if err := f.store.Login("fresh"); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"token expired"}`))
	})
	require.NoError(t, f.store.Login("stale"))

	err := f.client.Get(context.Background(), "/admin/users", nil, nil)
	require.True(t, gateway.IsUnauthorized(err))
	require.Equal(t, "Bearer stale", f.lastAuthHeader())

	require.True(t, f.store.Authenticated())
	require.Equal(t, "fresh", f.store.Credential())
	require.Equal(t, "fresh", f.repo.Stored())
	require.Empty(t, f.navigator.Routes())
}

func TestClient_ErrorsPassThrough(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/admin/users/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"User not found"}`))
		case "/api/admin/duas":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"title is required"}`))
		case "/api/admin/broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			_, _ = w.Write([]byte(`not json`))
		}
	})
	require.NoError(t, f.store.Login("tok"))
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		err := f.client.Get(ctx, "/admin/users/missing", nil, nil)
		require.True(t, gateway.IsNotFound(err))
		require.Equal(t, http.StatusNotFound, gateway.StatusOf(err))
		require.False(t, gateway.Retryable(err))
	})

	t.Run("validation message is verbatim", func(t *testing.T) {
		err := f.client.Post(ctx, "/admin/duas", map[string]string{"title": ""}, nil)
		require.Equal(t, "title is required", gateway.Message(err, "Failed to create dua"))
		require.True(t, f.store.Authenticated())
	})

	t.Run("server error without body", func(t *testing.T) {
		err := f.client.Get(ctx, "/admin/broken", nil, nil)
		require.Equal(t, "Delete failed", gateway.Message(err, "Delete failed"))
		require.True(t, gateway.Retryable(err))
	})

	t.Run("unexpected shape", func(t *testing.T) {
		var out map[string]any
		err := f.client.Get(ctx, "/admin/other", nil, &out)
		require.ErrorIs(t, err, apperrors.ErrUnexpectedShape)
		require.False(t, gateway.Retryable(err))
	})

	require.Empty(t, f.navigator.Routes())
}

func TestClient_QueryParameters(t *testing.T) {
	var got url.Values
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_, _ = w.Write([]byte(`{}`))
	})

	q := url.Values{"page": {"2"}, "limit": {"20"}}
	require.NoError(t, f.client.Get(context.Background(), "/admin/users", q, nil))
	require.Equal(t, "2", got.Get("page"))
	require.Equal(t, "20", got.Get("limit"))
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := gateway.New("/api")
	require.Error(t, err)
}
