// Package store persists the session record and related app-scoped values.
//
// Error handling strategy, matching how the rest of the SDK treats storage:
// reads that fail are treated as "no value" by callers, and writes/deletes are
// best-effort. The in-memory session state stays authoritative for the process
// lifetime even when persistence lags or fails.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DotmanL/sporty-go/internal/log"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("value not found")

// Keys used by older clients that persisted each session field separately.
// ReadSession falls back to them so an upgrade does not log the user out.
const (
	KeySession        = "session"
	KeyAccessToken    = "accessToken"
	KeyRefreshToken   = "refreshToken"
	KeyUserID         = "userId"
	KeyExpirationDate = "expirationDate"
	KeyTheme          = "theme"
)

// Store is an app-scoped string key/value store. All implementations must be
// safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Session is the persisted session record. It is written as a single versioned
// document so a concurrent reader never observes a partially written tuple.
type Session struct {
	AccessToken    string    `json:"accessToken"`
	RefreshToken   string    `json:"refreshToken"`
	UserID         string    `json:"userId,omitempty"`
	ExpirationDate string    `json:"expirationDate,omitempty"`
	Version        int64     `json:"version"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Complete reports whether the record carries the full credential triple.
// Partial tuples are treated as no session at all.
func (s *Session) Complete() bool {
	return s != nil && s.AccessToken != "" && s.RefreshToken != "" && s.UserID != ""
}

// ReadSession loads the persisted session record. A missing or unreadable
// record returns (nil, nil): storage faults demote to "no session" rather than
// propagating to the request path.
func ReadSession(ctx context.Context, s Store) (*Session, error) {
	raw, err := s.Get(ctx, KeySession)
	if err == nil {
		var sess Session
		if jsonErr := json.Unmarshal([]byte(raw), &sess); jsonErr != nil {
			log.LogWarnWithFields("store", "Discarding corrupt session record", map[string]any{
				"error": jsonErr.Error(),
			})
			return nil, nil
		}
		return &sess, nil
	}
	if !errors.Is(err, ErrNotFound) {
		log.LogWarnWithFields("store", "Session read failed, treating as absent", map[string]any{
			"error": err.Error(),
		})
		return nil, nil
	}

	return readLegacySession(ctx, s), nil
}

// readLegacySession assembles a record from the per-field keys written by
// older clients. Any read fault or missing token yields nil.
func readLegacySession(ctx context.Context, s Store) *Session {
	get := func(key string) string {
		v, err := s.Get(ctx, key)
		if err != nil {
			return ""
		}
		return v
	}

	sess := &Session{
		AccessToken:    get(KeyAccessToken),
		RefreshToken:   get(KeyRefreshToken),
		UserID:         get(KeyUserID),
		ExpirationDate: get(KeyExpirationDate),
	}
	if sess.AccessToken == "" || sess.RefreshToken == "" {
		return nil
	}
	return sess
}

// WriteSession persists the record as one document, stamped with a write
// version so last-writer-wins is observable.
func WriteSession(ctx context.Context, s Store, sess *Session) error {
	if sess == nil {
		return fmt.Errorf("session cannot be nil")
	}

	sess.Version = time.Now().UnixNano()
	sess.UpdatedAt = time.Now()

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	return s.Set(ctx, KeySession, string(raw))
}

// ClearSession removes the session record and any legacy per-field keys.
// Individual delete failures are logged and do not abort the sweep.
func ClearSession(ctx context.Context, s Store) {
	for _, key := range []string{KeySession, KeyAccessToken, KeyRefreshToken, KeyUserID, KeyExpirationDate} {
		if err := s.Delete(ctx, key); err != nil {
			log.LogWarnWithFields("store", "Failed to delete session key", map[string]any{
				"key":   key,
				"error": err.Error(),
			})
		}
	}
}
