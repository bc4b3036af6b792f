package idp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestAuthURLContainsState(t *testing.T) {
	g := NewGoogleSignIn("client-id", "client-secret", "http://localhost:9999/callback")

	url := g.AuthURL("random-state")
	assert.Contains(t, url, "state=random-state")
	assert.Contains(t, url, "client_id=client-id")
	assert.Contains(t, url, "access_type=offline")
}

func TestIDToken(t *testing.T) {
	token := (&oauth2.Token{AccessToken: "a"}).WithExtra(map[string]any{"id_token": "jwt-here"})

	idToken, err := IDToken(token)
	require.NoError(t, err)
	assert.Equal(t, "jwt-here", idToken)

	_, err = IDToken(&oauth2.Token{AccessToken: "a"})
	assert.Error(t, err)
}

func TestUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"id":      "g-123",
			"email":   "fan@example.com",
			"name":    "Football Fan",
			"picture": "https://example.com/p.png",
		})
	}))
	defer srv.Close()

	g := NewGoogleSignIn("id", "secret", "http://localhost/callback")
	g.userInfoURL = srv.URL

	profile, err := g.UserInfo(context.Background(), &oauth2.Token{AccessToken: "access"})
	require.NoError(t, err)
	assert.Equal(t, "fan@example.com", profile.Email)
	assert.Equal(t, "Football Fan", profile.Name)
}

func TestUserInfoMissingEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "g-123"})
	}))
	defer srv.Close()

	g := NewGoogleSignIn("id", "secret", "http://localhost/callback")
	g.userInfoURL = srv.URL

	_, err := g.UserInfo(context.Background(), &oauth2.Token{AccessToken: "access"})
	assert.Error(t, err)
}

func TestUserInfoErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	g := NewGoogleSignIn("id", "secret", "http://localhost/callback")
	g.userInfoURL = srv.URL

	_, err := g.UserInfo(context.Background(), &oauth2.Token{AccessToken: "access"})
	assert.Error(t, err)
}
