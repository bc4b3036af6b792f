package api

import (
	"context"

	"github.com/DotmanL/sporty-go/internal/session"
)

// OnboardingService wraps the api/onboarding routes. Each call returns the
// updated profile so the caller can advance the onboarding status it holds.
type OnboardingService struct {
	client *Client
}

// NewOnboardingService creates the onboarding route wrapper.
func NewOnboardingService(client *Client) *OnboardingService {
	return &OnboardingService{client: client}
}

func (s *OnboardingService) CreateLeagueInterests(ctx context.Context, leagueIDs []string) (*session.User, error) {
	body := map[string][]string{"leagueIds": leagueIDs}
	var user session.User
	if err := s.client.Post(ctx, "api/onboarding/createLeagueInterests", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *OnboardingService) CreateClubInterests(ctx context.Context, clubIDs []string) (*session.User, error) {
	body := map[string][]string{"clubIds": clubIDs}
	var user session.User
	if err := s.client.Post(ctx, "api/onboarding/createClubInterests", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *OnboardingService) UpdateOnboardingStatus(ctx context.Context, status session.OnboardingStatus) (*session.User, error) {
	body := map[string]session.OnboardingStatus{"onboardingStatus": status}
	var user session.User
	if err := s.client.Put(ctx, "api/onboarding/updateOnboardingStatus", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
