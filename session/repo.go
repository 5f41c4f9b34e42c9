package session

import (
	"errors"
	"time"
)

// ErrSessionNotFound is returned by a Repo when no credential has been persisted.
var ErrSessionNotFound = errors.New("session not found")

// Session is the persisted form of an admin login.
type Session struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// Repo persists the session across process restarts.
type Repo interface {
	Load() (Session, error)
	Save(session Session) error
	Clear() error
}
