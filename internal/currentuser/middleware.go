// Package currentuser is the backend-side collaborator of the session
// coordinator: an HTTP middleware that decodes the signed token issued at
// login and exposes the caller's identity to downstream handlers.
//
// Verification failures are swallowed. A request with a missing, expired, or
// forged token proceeds anonymously; route handlers decide whether an
// identity is required.
package currentuser

import (
	"context"
	"net/http"
	"strings"

	"github.com/DotmanL/sporty-go/internal/log"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the cookie consulted when no Authorization header is
// present.
const SessionCookie = "sporty_session"

type contextKey struct{}

// Identity is the decoded caller attached to the request context.
type Identity struct {
	ID    string
	Email string
}

// claims is the token payload written by the auth routes at login.
type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Middleware verifies bearer or cookie session tokens signed with the given
// HMAC secret.
type Middleware struct {
	secret []byte
}

// NewMiddleware creates a current-user middleware around an HMAC secret.
func NewMiddleware(secret []byte) *Middleware {
	return &Middleware{secret: secret}
}

// Handler wraps next, attaching an Identity to the context when the request
// carries a verifiable token. The request is never rejected here.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := tokenFromRequest(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := m.verify(raw)
		if err != nil {
			log.LogDebugWithFields("currentuser", "Session token rejected", map[string]any{
				"error": err.Error(),
				"path":  r.URL.Path,
			})
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func (m *Middleware) verify(raw string) (*Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return &Identity{ID: c.Subject, Email: c.Email}, nil
}

func tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return token
		}
		return ""
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity attached by Handler, or nil for an
// anonymous request.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(contextKey{}).(*Identity)
	return id
}

// Sign issues a session token for the given identity, the counterpart of
// verify. Used by the auth routes and by tests.
func (m *Middleware) Sign(identity Identity, opts ...func(*jwt.RegisteredClaims)) (string, error) {
	c := claims{
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: identity.ID,
		},
	}
	for _, opt := range opts {
		opt(&c.RegisteredClaims)
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}
