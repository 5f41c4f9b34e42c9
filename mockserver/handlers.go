package mockserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/jrsteele09/hisabi-admin/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const dateLayout = "2006-01-02"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginHandler checks the admin credentials and issues a bearer token.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Username == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Username and password are required")
			return
		}
		if req.Username != s.adminUser || bcrypt.CompareHashAndPassword(s.adminHash, []byte(req.Password)) != nil {
			log.Info().Str("username", req.Username).Msg("Rejected admin login")
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, err := s.tokens.Issue(req.Username)
		if err != nil {
			log.Err(err).Msg("Failed to issue admin token")
			writeError(w, http.StatusInternalServerError, "Failed to issue token")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.store.Stats())
	}
}

func (s *Server) UsersListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := parsePage(r, 20)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		users := s.store.ListUsers(r.URL.Query().Get("search"))
		writeJSON(w, http.StatusOK, pageEnvelope(models.FieldUsers, users, p))
	}
}

func (s *Server) UserDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := s.store.UserDetail(r.PathValue("id"))
		if err != nil {
			writeStoreError(w, err, "User not found")
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func (s *Server) UserDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.DeleteUser(r.PathValue("id")); err != nil {
			writeStoreError(w, err, "User not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
	}
}

func (s *Server) GroupsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := parsePage(r, 20)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		groups := s.store.ListGroups(r.URL.Query().Get("search"))
		writeJSON(w, http.StatusOK, pageEnvelope(models.FieldGroups, groups, p))
	}
}

func (s *Server) GroupDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := s.store.GroupDetail(r.PathValue("id"))
		if err != nil {
			writeStoreError(w, err, "Group not found")
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func (s *Server) GroupDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.DeleteGroup(r.PathValue("id")); err != nil {
			writeStoreError(w, err, "Group not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Group deleted"})
	}
}

func (s *Server) ActivityLogsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := parsePage(r, 25)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		q := r.URL.Query()
		query := LogQuery{
			ActivityType: models.ActivityType(q.Get("activity_type")),
			UserID:       q.Get("user_id"),
		}
		if query.ActivityType != "" && !query.ActivityType.Valid() {
			writeError(w, http.StatusBadRequest, "Unknown activity_type")
			return
		}
		if query.From, err = parseDate(q.Get("start_date")); err != nil {
			writeError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
			return
		}
		if query.To, err = parseDate(q.Get("end_date")); err != nil {
			writeError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
			return
		}

		writeJSON(w, http.StatusOK, pageEnvelope(models.FieldLogs, s.store.ListLogs(query), p))
	}
}

func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metric := models.Metric(r.PathValue("metric"))
		if !metric.Valid() {
			writeError(w, http.StatusNotFound, "Unknown model")
			return
		}
		streak := models.StreakType(r.URL.Query().Get("type"))
		if streak != "" && !streak.Valid() {
			writeError(w, http.StatusBadRequest, "Unknown streak type")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			models.FieldLeaderboard: s.store.Leaderboard(metric, streak),
		})
	}
}

func (s *Server) RecordsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, ok := s.store.Records(models.Metric(r.PathValue("metric")))
		if !ok {
			writeError(w, http.StatusNotFound, "Unknown model")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			models.FieldRecords: records,
			"total":             len(records),
		})
	}
}

func (s *Server) notFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	}
}

func contentListHandler[T any](field string, defaultLimit int, table *ContentTable[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := parsePage(r, defaultLimit)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, pageEnvelope(field, table.List(), p))
	}
}

func contentCreateHandler[T models.Validator](table *ContentTable[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item T
		if err := decodeBody(w, r, &item); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := item.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, table.Create(item))
	}
}

func contentUpdateHandler[T models.Validator](table *ContentTable[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item T
		if err := decodeBody(w, r, &item); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := item.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		updated, err := table.Update(r.PathValue("id"), item)
		if err != nil {
			writeStoreError(w, err, "Item not found")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func contentDeleteHandler[T any](kind string, table *ContentTable[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := table.Delete(r.PathValue("id")); err != nil {
			writeStoreError(w, err, "Item not found")
			return
		}
		log.Debug().Str("kind", kind).Str("id", r.PathValue("id")).Msg("content deleted")
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeStoreError(w http.ResponseWriter, err error, notFound string) {
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, notFound)
		return
	}
	log.Err(err).Msg("Store failure")
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func parseDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, v)
}
