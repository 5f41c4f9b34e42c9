package resource

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jrsteele09/hisabi-admin/admin"
	"github.com/jrsteele09/hisabi-admin/gateway"
	"github.com/jrsteele09/hisabi-admin/internal/config"
	"github.com/jrsteele09/hisabi-admin/models"
	"github.com/jrsteele09/hisabi-admin/query"
)

// Cache key resource names. Lists and details use different names so a
// list invalidation leaves details alone unless asked for.
const (
	KeyStats        = "admin-stats"
	KeyUsers        = "admin-users"
	KeyUser         = "admin-user"
	KeyGroups       = "admin-groups"
	KeyGroup        = "admin-group"
	KeyActivityLogs = "admin-activity-logs"
)

// Filter names used by list controllers.
const (
	FilterSearch       = "search"
	FilterActivityType = "activity_type"
	FilterStartDate    = "start_date"
	FilterEndDate      = "end_date"
	FilterUserID       = "user_id"
)

// ContentKey is the cache resource of a content collection.
func ContentKey(kind admin.ContentKind) string {
	return "admin-" + string(kind)
}

// LeaderboardKey is the cache resource of a leaderboard.
func LeaderboardKey(m models.Metric) string {
	return "model-" + string(m)
}

// RecordsKey is the cache resource of a tracking records table.
func RecordsKey(m models.Metric) string {
	return "admin-" + string(m) + "-records"
}

// NewCache creates the read cache with the configured retry budget and
// staleness window. Only transport failures and 5xx are retried.
func NewCache(cfg config.ClientConfig) *query.Cache {
	return query.New(query.Options{
		Retries:     cfg.GetQueryRetries(),
		StaleTime:   cfg.GetStaleTime(),
		ShouldRetry: gateway.Retryable,
	})
}

// Service builds the controllers for every admin page.
type Service struct {
	api      *admin.API
	cache    *query.Cache
	mutation *Mutation
}

func NewService(api *admin.API, cache *query.Cache, notifier Notifier, confirmer Confirmer) *Service {
	return &Service{api: api, cache: cache, mutation: NewMutation(cache, notifier, confirmer)}
}

func (s *Service) Cache() *query.Cache {
	return s.cache
}

func (s *Service) Stats() *ItemController[models.Stats] {
	return NewItemController(s.cache, query.NewKey(KeyStats, nil), s.api.Stats)
}

func (s *Service) Users() *ListController[models.User] {
	return NewListController(s.cache, KeyUsers, s.api.PageSize(admin.SizeUsers),
		func(ctx context.Context, page int, f url.Values) (models.Page[models.User], error) {
			return s.api.Users(ctx, admin.ListFilter{Page: page, Search: f.Get(FilterSearch)})
		})
}

func (s *Service) User(id string) *ItemController[models.UserDetail] {
	return NewItemController(s.cache, detailKey(KeyUser, id), func(ctx context.Context) (models.UserDetail, error) {
		return s.api.User(ctx, id)
	})
}

// DeleteUser confirms and deletes the user, then invalidates every user
// list, the user's detail and the dashboard.
func (s *Service) DeleteUser(ctx context.Context, id, name string) error {
	if name == "" {
		name = "this user"
	}
	prompt := fmt.Sprintf("Are you absolutely sure you want to delete %s's account? All data, streaks, and tracking history will be permanently erased.", name)
	return s.mutation.Delete(ctx, prompt,
		func(ctx context.Context) error { return s.api.DeleteUser(ctx, id) },
		Messages{Success: "User deleted successfully", Failure: "Delete failed"},
		KeyUsers, KeyUser, KeyStats)
}

func (s *Service) Groups() *ListController[models.Group] {
	return NewListController(s.cache, KeyGroups, s.api.PageSize(admin.SizeGroups),
		func(ctx context.Context, page int, f url.Values) (models.Page[models.Group], error) {
			return s.api.Groups(ctx, admin.ListFilter{Page: page, Search: f.Get(FilterSearch)})
		})
}

func (s *Service) Group(id string) *ItemController[models.GroupDetail] {
	return NewItemController(s.cache, detailKey(KeyGroup, id), func(ctx context.Context) (models.GroupDetail, error) {
		return s.api.Group(ctx, id)
	})
}

func (s *Service) DeleteGroup(ctx context.Context, id, name string) error {
	if name == "" {
		name = "this group"
	}
	prompt := fmt.Sprintf("Are you sure you want to delete %s? Members will lose access to its activities.", name)
	return s.mutation.Delete(ctx, prompt,
		func(ctx context.Context) error { return s.api.DeleteGroup(ctx, id) },
		Messages{Success: "Group deleted successfully", Failure: "Delete failed"},
		KeyGroups, KeyGroup, KeyStats)
}

func (s *Service) ActivityLogs() *ListController[models.ActivityLog] {
	return NewListController(s.cache, KeyActivityLogs, s.api.PageSize(admin.SizeActivityLogs),
		func(ctx context.Context, page int, f url.Values) (models.Page[models.ActivityLog], error) {
			return s.api.ActivityLogs(ctx, admin.LogFilter{
				Page:         page,
				ActivityType: models.ActivityType(f.Get(FilterActivityType)),
				StartDate:    f.Get(FilterStartDate),
				EndDate:      f.Get(FilterEndDate),
				UserID:       f.Get(FilterUserID),
			})
		})
}

// Leaderboard binds the ranked rows of metric. streak only applies to the
// streaks metric.
func (s *Service) Leaderboard(metric models.Metric, streak models.StreakType) *ItemController[[]RankedRow] {
	params := url.Values{}
	if metric == models.MetricStreaks {
		params.Set("type", string(streak))
	}
	return NewItemController(s.cache, query.NewKey(LeaderboardKey(metric), params), func(ctx context.Context) ([]RankedRow, error) {
		rows, err := s.api.Leaderboard(ctx, metric, streak)
		if err != nil {
			return nil, err
		}
		return Rank(rows), nil
	})
}

func (s *Service) PrayerRecords() *ItemController[models.Records[models.PrayerRecord]] {
	return NewItemController(s.cache, query.NewKey(RecordsKey(models.MetricPrayerTracking), nil), s.api.PrayerRecords)
}

func (s *Service) QuranReadingRecords() *ItemController[models.Records[models.QuranReadingRecord]] {
	return NewItemController(s.cache, query.NewKey(RecordsKey(models.MetricQuranReading), nil), s.api.QuranReadingRecords)
}

func (s *Service) QuranMemorizationRecords() *ItemController[models.Records[models.QuranMemorizationRecord]] {
	return NewItemController(s.cache, query.NewKey(RecordsKey(models.MetricQuranMemorization), nil), s.api.QuranMemorizationRecords)
}

func detailKey(resource, id string) query.Key {
	return query.NewKey(resource, url.Values{"id": {id}})
}
