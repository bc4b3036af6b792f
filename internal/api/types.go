package api

import "github.com/DotmanL/sporty-go/internal/session"

// AuthResponse is the backend's reply to signup, login, and password reset.
// ExpirationDate is an absolute instant, not a relative lifetime.
type AuthResponse struct {
	UserID         string       `json:"userId"`
	AccessToken    string       `json:"accessToken"`
	RefreshToken   string       `json:"refreshToken"`
	ExpirationDate string       `json:"expirationDate"`
	User           session.User `json:"user"`
}

// CreateUserRequest is the signup payload. Password is set for email signup,
// IDToken and ProviderID for identity-provider signup.
type CreateUserRequest struct {
	UserName         string                   `json:"userName"`
	Email            string                   `json:"email"`
	Password         string                   `json:"password,omitempty"`
	OnboardingStatus session.OnboardingStatus `json:"onboardingStatus,omitempty"`
	IDToken          string                   `json:"idToken,omitempty"`
	ProviderID       string                   `json:"providerId,omitempty"`
}

// LoginRequest is the email/password login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginWithIdpRequest is the identity-provider login payload.
type LoginWithIdpRequest struct {
	Email      string `json:"email"`
	IDToken    string `json:"idToken"`
	ProviderID string `json:"providerId"`
}

// League is a followable competition.
type League struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Logo    string `json:"logo,omitempty"`
}

// Club is a followable team.
type Club struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Logo    string `json:"logo,omitempty"`
}

// Status is the generic acknowledgement body.
type Status struct {
	Status string `json:"status"`
}
