package session

import (
	"context"
	"errors"
	"time"

	"github.com/DotmanL/sporty-go/internal/expiry"
	"github.com/DotmanL/sporty-go/internal/idp"
	"github.com/DotmanL/sporty-go/internal/log"
	"github.com/DotmanL/sporty-go/internal/store"
	"golang.org/x/sync/singleflight"
)

// errNoSession marks a refresh attempt that found no usable credentials.
var errNoSession = errors.New("no session")

// Coordinator decides, before every outbound request, whether the current
// session is reusable, needs a refresh, or is gone. It is the only caller of
// the identity provider's refresh endpoint.
//
// Concurrent invocations share one in-flight refresh through singleflight:
// refresh tokens are single-use at the provider, so two racing refreshes would
// consume the token twice and spuriously log the user out.
type Coordinator struct {
	store     store.Store
	refresher idp.TokenRefresher
	state     *State
	group     singleflight.Group
	now       func() time.Time
	loc       *time.Location
}

// CoordinatorOption configures the coordinator.
type CoordinatorOption func(*Coordinator)

// WithClock overrides the time source (for tests).
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		c.now = now
	}
}

// WithLocation sets the timezone used to interpret legacy localized
// expiration strings. Defaults to the process-local zone.
func WithLocation(loc *time.Location) CoordinatorOption {
	return func(c *Coordinator) {
		c.loc = loc
	}
}

// NewCoordinator creates a coordinator over the given store, refresher, and
// state.
func NewCoordinator(st store.Store, refresher idp.TokenRefresher, state *State, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:     st,
		refresher: refresher,
		state:     state,
		now:       time.Now,
		loc:       time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token resolves the access token to attach to an outgoing request. It
// returns ("", false) when there is no session; any failure along the way
// resolves silently to the logged-out state rather than an error.
func (c *Coordinator) Token(ctx context.Context) (string, bool) {
	sess := c.currentSession(ctx)
	if !sess.Complete() {
		c.state.Logout()
		return "", false
	}

	if !c.expired(sess) {
		// Idempotent re-assertion: unchanged sessions skip persistence.
		c.state.Authenticate(sess)
		return sess.AccessToken, true
	}

	// All concurrent callers wait for the same refresh. The refresh itself is
	// detached from the caller's context: once issued it is not cancellable,
	// and sibling waiters must not fail because the first caller went away.
	v, err, _ := c.group.Do("refresh", func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		if !errors.Is(err, errNoSession) {
			log.LogWarnWithFields("session", "Token refresh failed, logging out", map[string]any{
				"error": err.Error(),
			})
		}
		c.state.Logout()
		return "", false
	}
	return v.(string), true
}

// currentSession prefers the in-memory record (authoritative for this
// process) and falls back to the persisted one.
func (c *Coordinator) currentSession(ctx context.Context) *store.Session {
	if sess := c.state.Session(); sess != nil {
		return sess
	}
	sess, _ := store.ReadSession(ctx, c.store)
	if sess != nil {
		c.state.restore(sess)
	}
	return sess
}

// expired reports whether the session's expiration instant has passed. An
// instant exactly at expiration counts as expired, and a missing or
// unparseable instant does too: refreshing early is cheaper than sending a
// stale token.
func (c *Coordinator) expired(sess *store.Session) bool {
	if sess.ExpirationDate == "" {
		return true
	}
	exp, err := expiry.ParseStored(sess.ExpirationDate, c.loc)
	if err != nil {
		log.LogWarnWithFields("session", "Unreadable expiration instant, treating as expired", map[string]any{
			"value": sess.ExpirationDate,
		})
		return true
	}
	return !c.now().Before(exp)
}

// refresh runs inside the singleflight group. It re-reads the session first:
// a waiter that entered just after a completed refresh must reuse the fresh
// token instead of consuming the new refresh token again.
func (c *Coordinator) refresh(ctx context.Context) (string, error) {
	sess := c.currentSession(ctx)
	if !sess.Complete() {
		return "", errNoSession
	}
	if !c.expired(sess) {
		return sess.AccessToken, nil
	}

	result, err := c.refresher.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		return "", err
	}

	expiresAt := expiry.ExpiresAt(c.now(), result.ExpiresInSeconds())
	next := &store.Session{
		AccessToken:    result.AccessToken,
		RefreshToken:   result.RefreshToken,
		UserID:         sess.UserID,
		ExpirationDate: expiry.FormatInstant(expiresAt),
	}
	c.state.Authenticate(next)

	log.LogDebugWithFields("session", "Session refreshed", map[string]any{
		"expiresAt": next.ExpirationDate,
	})
	return next.AccessToken, nil
}
