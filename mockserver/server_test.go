package mockserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/hisabi-admin/internal/config"
	"github.com/jrsteele09/hisabi-admin/mockserver"
	"github.com/jrsteele09/hisabi-admin/models"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	srv   *httptest.Server
	store *mockserver.Store
	token string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := mockserver.NewSeededStore()
	s, err := mockserver.New("TEST", config.Mock{}, store)
	require.NoError(t, err)
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)

	f := &fixture{srv: srv, store: store}
	status, body := f.do(t, http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": "admin123"})
	require.Equal(t, http.StatusOK, status)
	f.token = body["token"].(string)
	require.NotEmpty(t, f.token)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.token = ""

	t.Run("wrong password", func(t *testing.T) {
		status, body := f.do(t, http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": "nope"})
		require.Equal(t, http.StatusUnauthorized, status)
		require.Equal(t, "Invalid credentials", body["error"])
	})

	t.Run("missing fields", func(t *testing.T) {
		status, body := f.do(t, http.MethodPost, "/api/admin/login", map[string]string{"username": "admin"})
		require.Equal(t, http.StatusBadRequest, status)
		require.NotEmpty(t, body["error"])
	})
}

func TestRequireAuth(t *testing.T) {
	f := newFixture(t)

	t.Run("no credential", func(t *testing.T) {
		f := *f
		f.token = ""
		status, body := f.do(t, http.MethodGet, "/api/admin/stats", nil)
		require.Equal(t, http.StatusUnauthorized, status)
		require.Equal(t, "Missing Authorization header", body["error"])
	})

	t.Run("forged credential", func(t *testing.T) {
		f := *f
		f.token = "not-a-jwt"
		status, _ := f.do(t, http.MethodGet, "/api/admin/stats", nil)
		require.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("valid credential", func(t *testing.T) {
		status, body := f.do(t, http.MethodGet, "/api/admin/stats", nil)
		require.Equal(t, http.StatusOK, status)
		require.EqualValues(t, 12, body["total_users"])
		require.EqualValues(t, 5, body["total_groups"])
	})
}

func TestTokenIssuer(t *testing.T) {
	issuer := mockserver.NewTokenIssuer("secret", time.Minute)
	tok, err := issuer.Issue("admin")
	require.NoError(t, err)

	sub, err := issuer.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "admin", sub)

	_, err = mockserver.NewTokenIssuer("other", time.Minute).Verify(tok)
	require.Error(t, err)

	expired, err := mockserver.NewTokenIssuer("secret", -time.Minute).Issue("admin")
	require.NoError(t, err)
	_, err = issuer.Verify(expired)
	require.Error(t, err)
}

func TestUsersPagination(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/api/admin/users?page=3&limit=5", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["users"], 2)
	require.EqualValues(t, 3, body["page"])
	require.EqualValues(t, 3, body["total_pages"])
	require.EqualValues(t, 12, body["total"])

	status, body = f.do(t, http.MethodGet, "/api/admin/users?search=KHAN", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["users"], 1)
	require.EqualValues(t, 1, body["total"])

	status, body = f.do(t, http.MethodGet, "/api/admin/users?search=nobody", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []any{}, body["users"])
	require.EqualValues(t, 0, body["total_pages"])

	status, _ = f.do(t, http.MethodGet, "/api/admin/users?page=0", nil)
	require.Equal(t, http.StatusBadRequest, status)

	for _, page := range []string{"4", "9223372036854775807"} {
		status, body = f.do(t, http.MethodGet, "/api/admin/users?limit=5&page="+page, nil)
		require.Equal(t, http.StatusOK, status, "page %s", page)
		require.Equal(t, []any{}, body["users"], "pages past the end are empty")
		require.EqualValues(t, 3, body["total_pages"])
	}
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	victim := f.store.ListUsers("amina")[0]

	status, body := f.do(t, http.MethodGet, "/api/admin/users/"+victim.ID, nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "recent_activity")
	require.NotEmpty(t, body["streaks"])

	status, _ = f.do(t, http.MethodDelete, "/api/admin/users/"+victim.ID, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = f.do(t, http.MethodGet, "/api/admin/users/"+victim.ID, nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "User not found", body["error"])

	status, _ = f.do(t, http.MethodDelete, "/api/admin/users/"+victim.ID, nil)
	require.Equal(t, http.StatusNotFound, status)

	for _, l := range f.store.ListLogs(mockserver.LogQuery{UserID: victim.ID}) {
		t.Fatalf("log %s of deleted user survived", l.ID)
	}

	rows := f.store.Leaderboard(models.MetricFasting, "")
	var nulls int
	for _, row := range rows {
		if row["user"].(*models.UserRef) == nil {
			nulls++
		}
	}
	require.Equal(t, 2, nulls, "the seeded deleted user plus the one just removed")
}

func TestActivityLogsFilters(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/api/admin/activity-logs?activity_type=fasting&page=1&limit=25", nil)
	require.Equal(t, http.StatusOK, status)
	logs := body["logs"].([]any)
	require.NotEmpty(t, logs)
	for _, l := range logs {
		require.Equal(t, "fasting", l.(map[string]any)["activity_type"])
	}

	status, _ = f.do(t, http.MethodGet, "/api/admin/activity-logs?start_date=yesterday", nil)
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(t, http.MethodGet, "/api/admin/activity-logs?activity_type=karma", nil)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestContentCRUD(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodPost, "/api/admin/duas", map[string]string{"title": "Travel"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body["error"], "arabic_text")

	status, body = f.do(t, http.MethodPost, "/api/admin/duas", map[string]string{"title": "Travel", "arabic_text": "سُبْحَانَ الَّذِي سَخَّرَ لَنَا هَذَا"})
	require.Equal(t, http.StatusCreated, status)
	id := body["id"].(string)
	require.NotEmpty(t, id)

	status, body = f.do(t, http.MethodGet, "/api/admin/duas", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["duas"], 3)
	require.NotContains(t, body, "total_pages", "duas are served unpaginated")

	status, _ = f.do(t, http.MethodPut, "/api/admin/duas/"+id, map[string]string{"title": "Journey", "arabic_text": "..."})
	require.Equal(t, http.StatusOK, status)

	status, _ = f.do(t, http.MethodDelete, "/api/admin/duas/"+id, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = f.do(t, http.MethodPut, "/api/admin/duas/"+id, map[string]string{"title": "Journey", "arabic_text": "..."})
	require.Equal(t, http.StatusNotFound, status)

	status, body = f.do(t, http.MethodGet, "/api/admin/quran-reading-content?page=1&limit=15", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["contents"], 8)
	require.EqualValues(t, 1, body["total_pages"])
}

func TestLeaderboardsAndRecords(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/api/admin/models/prayer-tracking", nil)
	require.Equal(t, http.StatusOK, status)
	rows := body["leaderboard"].([]any)
	require.Len(t, rows, 13)
	first := rows[0].(map[string]any)
	require.Contains(t, first, "total_prayers")
	require.Nil(t, rows[len(rows)-1].(map[string]any)["user"])

	status, body = f.do(t, http.MethodGet, "/api/admin/models/streaks?type=dhikr", nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body["leaderboard"].([]any)[0], "longest_streak")

	status, _ = f.do(t, http.MethodGet, "/api/admin/models/streaks?type=weekly", nil)
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(t, http.MethodGet, "/api/admin/models/karma", nil)
	require.Equal(t, http.StatusNotFound, status)

	status, body = f.do(t, http.MethodGet, "/api/admin/models/quran-reading/records", nil)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 5, body["total"])

	status, _ = f.do(t, http.MethodGet, "/api/admin/models/fasting/records", nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestCors(t *testing.T) {
	f := newFixture(t)
	req, err := http.NewRequest(http.MethodOptions, f.srv.URL+"/api/admin/users", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")
}
