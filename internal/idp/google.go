package idp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ProviderID identifies Google as the identity provider on backend calls.
const ProviderID = "google.com"

// GoogleSignIn drives the Google OAuth sign-in used by the loginWithIdp and
// signupWithIdp flows.
type GoogleSignIn struct {
	config      oauth2.Config
	userInfoURL string
}

// Profile is the subset of the Google userinfo response the backend needs.
type Profile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// NewGoogleSignIn creates a Google sign-in helper.
func NewGoogleSignIn(clientID, clientSecret, redirectURI string) *GoogleSignIn {
	return &GoogleSignIn{
		config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: "https://www.googleapis.com/userinfo/v2/me",
	}
}

// AuthURL generates the authorization URL the user opens in a browser.
func (g *GoogleSignIn) AuthURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeCode exchanges an authorization code for tokens.
func (g *GoogleSignIn) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return g.config.Exchange(ctx, code)
}

// IDToken extracts the OpenID Connect id_token carried alongside the OAuth
// token. The backend verifies this when logging in via an identity provider.
func IDToken(token *oauth2.Token) (string, error) {
	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return "", fmt.Errorf("token response carried no id_token")
	}
	return idToken, nil
}

// UserInfo fetches the Google profile for the signed-in user.
func (g *GoogleSignIn) UserInfo(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	client := g.config.Client(ctx, token)

	resp, err := client.Get(g.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get user info: status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("user info carried no email")
	}

	return &profile, nil
}
