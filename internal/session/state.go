// Package session owns the process-wide session: the in-memory state that
// navigation and services read, and the coordinator that decides before each
// outbound call whether to reuse, refresh, or invalidate the credentials.
package session

import (
	"context"
	"sync"

	"github.com/DotmanL/sporty-go/internal/log"
	"github.com/DotmanL/sporty-go/internal/store"
)

// OnboardingStatus gates which setup step an authenticated user resumes into.
// The order matters: each value unlocks the next step.
type OnboardingStatus int

const (
	OnboardingNone OnboardingStatus = iota
	OnboardingRegisteredLeagues
	OnboardingRegisteredClubs
)

// User is the profile attached to an authenticated session.
type User struct {
	ID               string           `json:"id"`
	UserName         string           `json:"userName"`
	Email            string           `json:"email"`
	OnboardingStatus OnboardingStatus `json:"onboardingStatus"`
}

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	Token           string
	IsAuthenticated bool
	User            *User
}

// State is the single source of truth for the current session. It is mutated
// only through Authenticate, SetUser, and Logout; everything else reads.
//
// The in-memory record is authoritative for the process lifetime. Persistence
// is asynchronous and best-effort: a failed write is logged and swallowed, it
// never blocks or fails the transition that triggered it.
type State struct {
	mu      sync.RWMutex
	token   string
	authed  bool
	user    *User
	session *store.Session

	store   store.Store
	persist sync.WaitGroup
}

// NewState creates an empty session state backed by st.
func NewState(st store.Store) *State {
	return &State{store: st}
}

// Authenticate applies the authenticate transition: the session becomes the
// current one and persistence is kicked off in the background. Re-asserting an
// unchanged session is a no-op for storage.
func (s *State) Authenticate(sess *store.Session) {
	if sess == nil || sess.AccessToken == "" || sess.RefreshToken == "" {
		return
	}

	s.mu.Lock()
	unchanged := s.session != nil &&
		s.session.AccessToken == sess.AccessToken &&
		s.session.RefreshToken == sess.RefreshToken &&
		s.session.UserID == sess.UserID &&
		s.session.ExpirationDate == sess.ExpirationDate
	s.token = sess.AccessToken
	s.authed = true
	s.session = sess
	s.mu.Unlock()

	if unchanged {
		return
	}

	s.persist.Add(1)
	go func() {
		defer s.persist.Done()
		if err := store.WriteSession(context.Background(), s.store, sess); err != nil {
			log.LogWarnWithFields("session", "Failed to persist session", map[string]any{
				"error": err.Error(),
			})
		}
	}()
}

// SetUser replaces the profile.
func (s *State) SetUser(user *User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

// Logout clears the session and deletes the persisted record in the
// background.
func (s *State) Logout() {
	s.mu.Lock()
	s.token = ""
	s.authed = false
	s.user = nil
	s.session = nil
	s.mu.Unlock()

	s.persist.Add(1)
	go func() {
		defer s.persist.Done()
		store.ClearSession(context.Background(), s.store)
	}()
}

// restore installs a record read back from storage as the in-memory baseline
// without re-persisting it. It never displaces a record set by Authenticate.
func (s *State) restore(sess *store.Session) {
	s.mu.Lock()
	if s.session == nil {
		s.session = sess
	}
	s.mu.Unlock()
}

// Session returns the current in-memory session record, or nil.
func (s *State) Session() *store.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Token:           s.token,
		IsAuthenticated: s.authed,
		User:            s.user,
	}
}

// Flush blocks until in-flight persistence settles. Call before process exit
// so a just-issued session is not lost.
func (s *State) Flush() {
	s.persist.Wait()
}
