package resource_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/hisabi-admin/admin"
	"github.com/jrsteele09/hisabi-admin/gateway"
	"github.com/jrsteele09/hisabi-admin/internal/config"
	apperrors "github.com/jrsteele09/hisabi-admin/internal/errors"
	"github.com/jrsteele09/hisabi-admin/mockserver"
	"github.com/jrsteele09/hisabi-admin/models"
	"github.com/jrsteele09/hisabi-admin/resource"
	"github.com/jrsteele09/hisabi-admin/session"
	fakesessionrepo "github.com/jrsteele09/hisabi-admin/session/repofake"
	"github.com/stretchr/testify/require"
)

type clientConfig struct {
	url string
}

func (c clientConfig) GetAPIURL() string                { return c.url + "/api" }
func (c clientConfig) GetRequestTimeout() time.Duration { return 5 * time.Second }
func (c clientConfig) GetQueryRetries() int             { return 1 }
func (c clientConfig) GetStaleTime() time.Duration      { return 30 * time.Second }

type request struct {
	method, path, query, auth string
}

type notifications struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *notifications) Success(m string) { n.mu.Lock(); n.successes = append(n.successes, m); n.mu.Unlock() }
func (n *notifications) Error(m string)   { n.mu.Lock(); n.errors = append(n.errors, m); n.mu.Unlock() }

type confirmer struct {
	answer  bool
	err     error
	prompts []string
}

func (c *confirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	c.prompts = append(c.prompts, prompt)
	return c.answer, c.err
}

type navigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *navigator) Navigate(route string) { n.mu.Lock(); n.routes = append(n.routes, route); n.mu.Unlock() }

type fixture struct {
	mock      *mockserver.Server
	store     *session.Store
	repo      *fakesessionrepo.FakeSessionRepo
	api       *admin.API
	svc       *resource.Service
	notes     *notifications
	confirmer *confirmer
	nav       *navigator

	mu       sync.Mutex
	requests []request
	// failNext answers the next n requests matching the path with 502.
	failPath string
	failNext int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mock, err := mockserver.New("TEST", config.Mock{}, mockserver.NewSeededStore())
	require.NoError(t, err)

	f := &fixture{
		mock:      mock,
		repo:      fakesessionrepo.NewFakeSessionRepo(),
		notes:     &notifications{},
		confirmer: &confirmer{answer: true},
		nav:       &navigator{},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, request{r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("Authorization")})
		fail := f.failNext > 0 && strings.HasSuffix(r.URL.Path, f.failPath)
		if fail {
			f.failNext--
		}
		f.mu.Unlock()
		if fail {
			http.Error(w, `{"error":"upstream unavailable"}`, http.StatusBadGateway)
			return
		}
		mock.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	f.store, err = session.Initialize(f.repo)
	require.NoError(t, err)

	gw, err := gateway.NewAdmin(clientConfig{url: srv.URL}, f.store, f.nav)
	require.NoError(t, err)
	f.api = admin.New(gw, config.Paging{})
	f.svc = resource.NewService(f.api, resource.NewCache(clientConfig{}), f.notes, f.confirmer)
	return f
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	token, err := f.api.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	require.NoError(t, f.store.Login(token))
}

func (f *fixture) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = nil
}

func (f *fixture) seen(method, path string) []request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []request
	for _, r := range f.requests {
		if r.method == method && r.path == path {
			out = append(out, r)
		}
	}
	return out
}

func TestLoginAttachesCredential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.login(t)
	require.True(t, f.store.Authenticated())
	require.Equal(t, f.store.Credential(), f.repo.Stored())

	view, err := f.svc.Stats().Load(ctx)
	require.NoError(t, err)
	require.Equal(t, resource.StatePopulated, view.State)
	require.Equal(t, 12, view.Data.TotalUsers)

	stats := f.seen(http.MethodGet, "/api/admin/stats")
	require.Len(t, stats, 1)
	require.Equal(t, "Bearer "+f.store.Credential(), stats[0].auth)
}

func TestUnauthorizedEvictsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Login("expired-or-forged"))

	view, err := f.svc.Stats().Load(ctx)
	require.Error(t, err)
	require.True(t, gateway.IsUnauthorized(err))
	require.Equal(t, resource.StateErrored, view.State)
	require.Len(t, f.seen(http.MethodGet, "/api/admin/stats"), 1, "authentication failures are not retried")

	require.False(t, f.store.Authenticated())
	require.Empty(t, f.repo.Stored())
	require.Equal(t, []string{gateway.RouteLogin}, f.nav.routes)

	f.reset()
	_, err = f.svc.Groups().Load(ctx)
	require.Error(t, err)
	groups := f.seen(http.MethodGet, "/api/admin/groups")
	require.Len(t, groups, 1)
	require.Empty(t, groups[0].auth, "requests after eviction carry no credential")
}

func TestPaginationResetsOnFilterChange(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	users := f.svc.Users()
	require.Equal(t, 1, users.Page())

	users.SetPage(2)
	view, err := users.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, view.Data.Page)
	require.Equal(t, 12, view.Data.Total)
	require.Equal(t, 1, view.Data.TotalPages)
	require.Empty(t, view.Data.Items, "page 2 of a single page list is empty")

	users.SetFilter(resource.FilterSearch, "ma")
	require.Equal(t, 1, users.Page())
	view, err = users.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, resource.StatePopulated, view.State)
	require.NotEmpty(t, view.Data.Items)

	reqs := f.seen(http.MethodGet, "/api/admin/users")
	require.Len(t, reqs, 2)
	require.Equal(t, "limit=20&page=2", reqs[0].query)
	require.Equal(t, "limit=20&page=1&search=ma", reqs[1].query)

	users.SetFilter(resource.FilterSearch, "")
	require.Equal(t, "admin-users?limit=20&page=1", users.Key().String())
}

func TestListIsServedFromCacheUntilInvalidated(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	duas := f.svc.Duas()
	require.False(t, duas.Paginated())

	view, err := duas.Load(ctx)
	require.NoError(t, err)
	require.Len(t, view.Data.Items, 2)

	_, err = duas.Load(ctx)
	require.NoError(t, err)
	require.Len(t, f.seen(http.MethodGet, "/api/admin/duas"), 1, "fresh entry is not refetched")

	err = duas.Create(ctx, models.Dua{Title: "Leaving home", ArabicText: "بِسْمِ اللَّهِ تَوَكَّلْتُ عَلَى اللَّهِ"})
	require.NoError(t, err)
	require.Equal(t, []string{"Dua created successfully"}, f.notes.successes)

	view, err = duas.Load(ctx)
	require.NoError(t, err)
	require.Len(t, view.Data.Items, 3)
	require.Len(t, f.seen(http.MethodGet, "/api/admin/duas"), 2)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	err := f.svc.Duas().Create(context.Background(), models.Dua{Title: "No text"})
	require.ErrorIs(t, err, apperrors.ErrRequiredField)
	require.Len(t, f.notes.errors, 1)
	require.Contains(t, f.notes.errors[0], "arabic_text")
	require.Empty(t, f.seen(http.MethodPost, "/api/admin/duas"))
}

func TestMutationSurfacesServerMessage(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	err := f.svc.DhikrTypes().Update(context.Background(), "missing", models.DhikrType{Name: "Takbir"})
	require.Error(t, err)
	require.True(t, gateway.IsNotFound(err))
	require.Equal(t, []string{"Item not found"}, f.notes.errors)
	require.Empty(t, f.notes.successes)
	require.Len(t, f.seen(http.MethodPut, "/api/admin/dhikr-types/missing"), 1, "mutations are not retried")
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	groups := f.svc.Groups()
	view, err := groups.Load(ctx)
	require.NoError(t, err)
	require.Len(t, view.Data.Items, 5)
	target := view.Data.Items[0]

	t.Run("declined", func(t *testing.T) {
		f.confirmer.answer = false
		err := f.svc.DeleteGroup(ctx, target.ID, target.Name)
		require.ErrorIs(t, err, apperrors.ErrConfirmationDeclined)
		require.Contains(t, f.confirmer.prompts[0], target.Name)
		require.Empty(t, f.seen(http.MethodDelete, "/api/admin/groups/"+target.ID))
	})

	t.Run("confirmation read fails", func(t *testing.T) {
		f.confirmer.answer, f.confirmer.err = false, errors.New("read /dev/stdin: input/output error")
		defer func() { f.confirmer.err = nil }()
		err := f.svc.DeleteGroup(ctx, target.ID, target.Name)
		require.Error(t, err)
		require.NotErrorIs(t, err, apperrors.ErrConfirmationDeclined)
		require.Equal(t, []string{"Delete failed"}, f.notes.errors, "a failed confirmation is reported to the user")
		require.Empty(t, f.seen(http.MethodDelete, "/api/admin/groups/"+target.ID))
	})

	t.Run("confirmed", func(t *testing.T) {
		f.confirmer.answer = true
		require.NoError(t, f.svc.DeleteGroup(ctx, target.ID, target.Name))
		require.Len(t, f.seen(http.MethodDelete, "/api/admin/groups/"+target.ID), 1)
		require.Contains(t, f.notes.successes, "Group deleted successfully")

		view, err := groups.Load(ctx)
		require.NoError(t, err)
		require.Len(t, view.Data.Items, 4)
		for _, g := range view.Data.Items {
			require.NotEqual(t, target.ID, g.ID)
		}
	})

	t.Run("detail of deleted record", func(t *testing.T) {
		view, err := f.svc.Group(target.ID).Load(ctx)
		require.Error(t, err)
		require.True(t, view.NotFound)
		require.Equal(t, resource.StateErrored, view.State)
		require.Len(t, f.seen(http.MethodGet, "/api/admin/groups/"+target.ID), 1, "not found is not retried")
	})
}

func TestReadRetriesOnce(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	f.mu.Lock()
	f.failPath, f.failNext = "/api/admin/fasting-types", 1
	f.mu.Unlock()
	view, err := f.svc.FastingTypes().Load(ctx)
	require.NoError(t, err)
	require.Len(t, view.Data.Items, 2)
	require.Len(t, f.seen(http.MethodGet, "/api/admin/fasting-types"), 2)

	f.reset()
	f.mu.Lock()
	f.failPath, f.failNext = "/api/admin/stats", 5
	f.mu.Unlock()
	view2, err := f.svc.Stats().Load(ctx)
	require.Error(t, err)
	require.Equal(t, "upstream unavailable", gateway.Message(err, "fallback"))
	require.Equal(t, resource.StateErrored, view2.State)
	require.False(t, view2.NotFound)
	require.Len(t, f.seen(http.MethodGet, "/api/admin/stats"), 2)
}

func TestLeaderboardRanks(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	view, err := f.svc.Leaderboard(models.MetricQuranProgress, "").Load(context.Background())
	require.NoError(t, err)
	rows := view.Data
	require.Len(t, rows, 13)
	for i, row := range rows {
		require.Equal(t, i+1, row.Rank)
		require.Equal(t, i < 3, row.Podium())
	}
	require.Equal(t, models.DeletedUser, rows[len(rows)-1].User.DisplayName())

	streaks := f.svc.Leaderboard(models.MetricStreaks, models.StreakPrayer)
	require.Equal(t, "model-streaks?type=prayer", streaks.Key().String())
	view, err = streaks.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, view.Data[0].Longest)
	reqs := f.seen(http.MethodGet, "/api/admin/models/streaks")
	require.Equal(t, "type=prayer", reqs[0].query)
}

func TestMountedViewRefetchesAfterMutation(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	types := f.svc.FastingTypes()
	_, err := types.Load(ctx)
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		views []resource.View[models.Page[models.FastingType]]
	)
	types.Mount(ctx, func(v resource.View[models.Page[models.FastingType]]) {
		mu.Lock()
		views = append(views, v)
		mu.Unlock()
	})

	require.NoError(t, types.Create(ctx, models.FastingType{Name: "arafah", DisplayName: "Day of Arafah"}))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		last := len(views) - 1
		return last >= 0 && views[last].State == resource.StatePopulated && !views[last].Stale && len(views[last].Data.Items) == 3
	}, 2*time.Second, 10*time.Millisecond)

	types.Unmount()
	require.False(t, types.Mounted())
	mu.Lock()
	count := len(views)
	mu.Unlock()

	require.NoError(t, types.Delete(ctx, views[count-1].Data.Items[2].ID, "Day of Arafah"))
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, count, len(views), "an unmounted view receives no updates")
}

func TestMountedViewStopsAfterFailedRefetch(t *testing.T) {
	for _, tc := range []struct {
		name     string
		fail     func(f *fixture)
		requests int
	}{
		{
			name: "server error",
			fail: func(f *fixture) {
				f.mu.Lock()
				f.failPath, f.failNext = "/api/admin/stats", 1000
				f.mu.Unlock()
			},
			requests: 2,
		},
		{
			name:     "unauthorized",
			fail:     func(f *fixture) { require.NoError(t, f.store.Logout()) },
			requests: 1,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.login(t)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			stats := f.svc.Stats()
			_, err := stats.Load(ctx)
			require.NoError(t, err)

			var (
				mu   sync.Mutex
				last resource.View[models.Stats]
			)
			stats.Mount(ctx, func(v resource.View[models.Stats]) {
				mu.Lock()
				last = v
				mu.Unlock()
			})
			defer stats.Unmount()

			tc.fail(f)
			f.reset()
			f.svc.Cache().Invalidate(resource.KeyStats)

			require.Eventually(t, func() bool {
				mu.Lock()
				defer mu.Unlock()
				return last.State == resource.StateErrored
			}, 2*time.Second, 10*time.Millisecond)
			time.Sleep(200 * time.Millisecond)

			require.Len(t, f.seen(http.MethodGet, "/api/admin/stats"), tc.requests, "a failed refetch is not repeated automatically")
			f.nav.mu.Lock()
			defer f.nav.mu.Unlock()
			require.LessOrEqual(t, len(f.nav.routes), 1)
		})
	}
}

func TestRecordsRenderDeletedUsers(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	view, err := f.svc.PrayerRecords().Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, view.Data.Total)
	var deleted int
	for _, r := range view.Data.Items {
		if r.User.DisplayName() == models.DeletedUser {
			deleted++
		}
	}
	require.Equal(t, 1, deleted)
}
