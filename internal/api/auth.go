package api

import "context"

// AuthService wraps the api/auth routes. These are the only unauthenticated
// calls; the gateway still consults the coordinator, which simply finds no
// session.
type AuthService struct {
	client *Client
}

// NewAuthService creates the auth route wrapper.
func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

func (s *AuthService) SignUp(ctx context.Context, req CreateUserRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := s.client.Post(ctx, "api/auth/signup", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AuthService) SignUpWithIdp(ctx context.Context, req CreateUserRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := s.client.Post(ctx, "api/auth/signupWithIdp", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := s.client.Post(ctx, "api/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AuthService) LoginWithIdp(ctx context.Context, req LoginWithIdpRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := s.client.Post(ctx, "api/auth/loginWithIdp", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp AuthResponse
	if err := s.client.Post(ctx, "api/auth/resetPassword", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
