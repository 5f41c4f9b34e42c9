package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strconv"

	"github.com/jrsteele09/hisabi-admin/gateway"
	"github.com/jrsteele09/hisabi-admin/internal/config"
	apperrors "github.com/jrsteele09/hisabi-admin/internal/errors"
	"github.com/jrsteele09/hisabi-admin/models"
)

// Backend resource paths, relative to the API base URL.
const (
	pathLogin        = "/admin/login"
	pathStats        = "/admin/stats"
	pathUsers        = "/admin/users"
	pathGroups       = "/admin/groups"
	pathActivityLogs = "/admin/activity-logs"
	pathModels       = "/admin/models"
)

// Page size keys, see config.PagingConfig.
const (
	SizeUsers        = "users"
	SizeGroups       = "groups"
	SizeActivityLogs = "activity-logs"
)

// API is the typed admin surface of the backend. Every method performs
// exactly one request through the gateway.
type API struct {
	gw     *gateway.Client
	paging config.PagingConfig
}

func New(gw *gateway.Client, paging config.PagingConfig) *API {
	return &API{gw: gw, paging: paging}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// Login exchanges admin credentials for a bearer credential. It does not
// touch the session; the caller decides whether to persist the result.
func (a *API) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", apperrors.Wrapf(apperrors.ErrRequiredField, "[API Login] username and password")
	}
	var resp LoginResponse
	if err := a.gw.Post(ctx, pathLogin, LoginRequest{Username: username, Password: password}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", apperrors.Wrapf(apperrors.ErrUnexpectedShape, "[API Login] response has no token")
	}
	return resp.Token, nil
}

func (a *API) Stats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	err := a.gw.Get(ctx, pathStats, nil, &stats)
	return stats, err
}

// ListFilter is the paging and search state of the users and groups lists.
type ListFilter struct {
	Page   int
	Search string
}

func (f ListFilter) query(limit int) url.Values {
	q := pageQuery(f.Page, limit)
	setIf(q, "search", f.Search)
	return q
}

func (a *API) Users(ctx context.Context, f ListFilter) (models.Page[models.User], error) {
	return getPage[models.User](ctx, a.gw, pathUsers, f.query(a.paging.GetPageSize(SizeUsers)), models.FieldUsers)
}

// User returns the user with their streaks and recent activity. A missing
// user answers with an error matching apperrors.ErrNotFound.
func (a *API) User(ctx context.Context, id string) (models.UserDetail, error) {
	var detail models.UserDetail
	if err := a.gw.Get(ctx, itemPath(pathUsers, id), nil, &detail); err != nil {
		return detail, err
	}
	if detail.User == nil {
		return detail, apperrors.Wrapf(apperrors.ErrUnexpectedShape, "[API User] %s: response has no user", id)
	}
	return detail, nil
}

func (a *API) DeleteUser(ctx context.Context, id string) error {
	return a.gw.Delete(ctx, itemPath(pathUsers, id), nil)
}

func (a *API) Groups(ctx context.Context, f ListFilter) (models.Page[models.Group], error) {
	return getPage[models.Group](ctx, a.gw, pathGroups, f.query(a.paging.GetPageSize(SizeGroups)), models.FieldGroups)
}

func (a *API) Group(ctx context.Context, id string) (models.GroupDetail, error) {
	var detail models.GroupDetail
	if err := a.gw.Get(ctx, itemPath(pathGroups, id), nil, &detail); err != nil {
		return detail, err
	}
	if detail.Group == nil {
		return detail, apperrors.Wrapf(apperrors.ErrUnexpectedShape, "[API Group] %s: response has no group", id)
	}
	return detail, nil
}

func (a *API) DeleteGroup(ctx context.Context, id string) error {
	return a.gw.Delete(ctx, itemPath(pathGroups, id), nil)
}

// LogFilter narrows the activity log. Dates are YYYY-MM-DD.
type LogFilter struct {
	Page         int
	ActivityType models.ActivityType
	StartDate    string
	EndDate      string
	UserID       string
}

// Query returns the request parameters for f with empty filters omitted.
func (f LogFilter) Query(limit int) url.Values {
	q := pageQuery(f.Page, limit)
	setIf(q, "activity_type", string(f.ActivityType))
	setIf(q, "start_date", f.StartDate)
	setIf(q, "end_date", f.EndDate)
	setIf(q, "user_id", f.UserID)
	return q
}

func (a *API) ActivityLogs(ctx context.Context, f LogFilter) (models.Page[models.ActivityLog], error) {
	if f.ActivityType != "" && !f.ActivityType.Valid() {
		return models.Page[models.ActivityLog]{}, apperrors.Wrapf(apperrors.ErrUnsupported, "[API ActivityLogs] activity type %q", f.ActivityType)
	}
	return getPage[models.ActivityLog](ctx, a.gw, pathActivityLogs, f.Query(a.paging.GetPageSize(SizeActivityLogs)), models.FieldLogs)
}

// PageSize exposes the configured page size for resource.
func (a *API) PageSize(resource string) int {
	return a.paging.GetPageSize(resource)
}

func getPage[T any](ctx context.Context, gw *gateway.Client, p string, q url.Values, field string) (models.Page[T], error) {
	var raw json.RawMessage
	if err := gw.Get(ctx, p, q, &raw); err != nil {
		return models.Page[T]{}, err
	}
	page, err := models.DecodePage[T](raw, field)
	if err != nil {
		return page, fmt.Errorf("[API List] %s: %w", p, err)
	}
	return page, nil
}

func getItems[T any](ctx context.Context, gw *gateway.Client, p string, q url.Values, field string) ([]T, error) {
	var raw json.RawMessage
	if err := gw.Get(ctx, p, q, &raw); err != nil {
		return nil, err
	}
	items, err := models.DecodeItems[T](raw, field)
	if err != nil {
		return nil, fmt.Errorf("[API List] %s: %w", p, err)
	}
	return items, nil
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if limit <= 0 {
		return q
	}
	if page < 1 {
		page = 1
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return q
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func itemPath(collection, id string) string {
	return path.Join(collection, url.PathEscape(id))
}
