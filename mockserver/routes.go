package mockserver

import (
	"github.com/jrsteele09/hisabi-admin/models"
)

const (
	RouteLogin        = "/api/admin/login"
	RouteStats        = "/api/admin/stats"
	RouteUsers        = "/api/admin/users"
	RouteUser         = "/api/admin/users/{id}"
	RouteGroups       = "/api/admin/groups"
	RouteGroup        = "/api/admin/groups/{id}"
	RouteActivityLogs = "/api/admin/activity-logs"
	RouteLeaderboard  = "/api/admin/models/{metric}"
	RouteRecords      = "/api/admin/models/{metric}/records"

	routeAdmin = "/api/admin/"
)

func (s *Server) initRoutes() {
	auth := s.APIMiddleware(s.RequireAuth())

	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS /api/", ChainMiddleware(s.notFound(), s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteStats, ChainMiddleware(s.StatsHandler(), auth...))

	s.RegisterRouteHandler("GET "+RouteUsers, ChainMiddleware(s.UsersListHandler(), auth...))
	s.RegisterRouteHandler("GET "+RouteUser, ChainMiddleware(s.UserDetailHandler(), auth...))
	s.RegisterRouteHandler("DELETE "+RouteUser, ChainMiddleware(s.UserDeleteHandler(), auth...))

	s.RegisterRouteHandler("GET "+RouteGroups, ChainMiddleware(s.GroupsListHandler(), auth...))
	s.RegisterRouteHandler("GET "+RouteGroup, ChainMiddleware(s.GroupDetailHandler(), auth...))
	s.RegisterRouteHandler("DELETE "+RouteGroup, ChainMiddleware(s.GroupDeleteHandler(), auth...))

	s.RegisterRouteHandler("GET "+RouteActivityLogs, ChainMiddleware(s.ActivityLogsHandler(), auth...))

	registerContent(s, "duas", models.FieldDuas, 0, s.store.Duas)
	registerContent(s, "dhikr-types", models.FieldDhikrTypes, 15, s.store.DhikrTypes)
	registerContent(s, "fasting-types", models.FieldFastingTypes, 0, s.store.FastingTypes)
	registerContent(s, "quran-reading-content", models.FieldContents, 15, s.store.QuranReading)
	registerContent(s, "quran-memorization-content", models.FieldContents, 15, s.store.QuranMemorization)

	s.RegisterRouteHandler("GET "+RouteLeaderboard, ChainMiddleware(s.LeaderboardHandler(), auth...))
	s.RegisterRouteHandler("GET "+RouteRecords, ChainMiddleware(s.RecordsHandler(), auth...))

	s.RegisterRouteHandler("/", ChainMiddleware(s.notFound(), s.APIMiddleware()...))
}

// registerContent wires the CRUD routes of one content collection.
// defaultLimit 0 serves the collection unpaginated unless the caller asks
// for a page.
func registerContent[T models.Validator](s *Server, kind, field string, defaultLimit int, table *ContentTable[T]) {
	auth := s.APIMiddleware(s.RequireAuth())
	collection := routeAdmin + kind
	item := collection + "/{id}"

	s.RegisterRouteHandler("GET "+collection, ChainMiddleware(contentListHandler(field, defaultLimit, table), auth...))
	s.RegisterRouteHandler("POST "+collection, ChainMiddleware(contentCreateHandler(table), auth...))
	s.RegisterRouteHandler("PUT "+item, ChainMiddleware(contentUpdateHandler(table), auth...))
	s.RegisterRouteHandler("DELETE "+item, ChainMiddleware(contentDeleteHandler(kind, table), auth...))
}
