package api

import (
	"context"

	"github.com/DotmanL/sporty-go/internal/session"
)

// UserService wraps the api/user routes.
type UserService struct {
	client *Client
}

// NewUserService creates the user route wrapper.
func NewUserService(client *Client) *UserService {
	return &UserService{client: client}
}

func (s *UserService) Get(ctx context.Context) (*session.User, error) {
	var user session.User
	if err := s.client.Get(ctx, "api/user/getUser", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) DeleteAccount(ctx context.Context) (*Status, error) {
	var status Status
	if err := s.client.Delete(ctx, "api/user/deleteAccount", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// TokenService wraps the api/token routes used for email OTP verification.
type TokenService struct {
	client *Client
}

// NewTokenService creates the token route wrapper.
func NewTokenService(client *Client) *TokenService {
	return &TokenService{client: client}
}

func (s *TokenService) Create(ctx context.Context, email string) (*Status, error) {
	body := map[string]string{"email": email}
	var status Status
	if err := s.client.Post(ctx, "api/token/createToken", body, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (s *TokenService) Verify(ctx context.Context, email, token string) (*Status, error) {
	body := map[string]string{"email": email, "token": token}
	var status Status
	if err := s.client.Post(ctx, "api/token/verifyToken", body, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
