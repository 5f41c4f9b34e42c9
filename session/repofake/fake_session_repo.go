package fakesessionrepo

import (
	"sync"

	"github.com/jrsteele09/hisabi-admin/session"
)

var _ session.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory session.Repo that also counts writes,
// so tests can assert on persistence side effects.
type FakeSessionRepo struct {
	lock    sync.RWMutex
	stored  *session.Session
	Saves   int
	Clears  int
	LoadErr error
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{}
}

// NewFakeSessionRepoWith returns a repo that already holds token
func NewFakeSessionRepoWith(token string) *FakeSessionRepo {
	return &FakeSessionRepo{stored: &session.Session{Token: token}}
}

func (r *FakeSessionRepo) Load() (session.Session, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.LoadErr != nil {
		return session.Session{}, r.LoadErr
	}
	if r.stored == nil {
		return session.Session{}, session.ErrSessionNotFound
	}
	return *r.stored, nil
}

func (r *FakeSessionRepo) Save(s session.Session) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.stored = &s
	r.Saves++
	return nil
}

func (r *FakeSessionRepo) Clear() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.stored = nil
	r.Clears++
	return nil
}

// Stored returns the persisted token, or "" when nothing is stored
func (r *FakeSessionRepo) Stored() string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.stored == nil {
		return ""
	}
	return r.stored.Token
}
