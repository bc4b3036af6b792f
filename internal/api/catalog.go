package api

import "context"

// LeagueService wraps the api/league routes.
type LeagueService struct {
	client *Client
}

// NewLeagueService creates the league route wrapper.
func NewLeagueService(client *Client) *LeagueService {
	return &LeagueService{client: client}
}

func (s *LeagueService) List(ctx context.Context) ([]League, error) {
	var leagues []League
	if err := s.client.Get(ctx, "api/league/listLeagues", &leagues); err != nil {
		return nil, err
	}
	return leagues, nil
}

// ClubService wraps the api/club routes.
type ClubService struct {
	client *Client
}

// NewClubService creates the club route wrapper.
func NewClubService(client *Client) *ClubService {
	return &ClubService{client: client}
}

func (s *ClubService) List(ctx context.Context) ([]Club, error) {
	var clubs []Club
	if err := s.client.Get(ctx, "api/club/listClubs", &clubs); err != nil {
		return nil, err
	}
	return clubs, nil
}
