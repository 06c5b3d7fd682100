package client

import (
	"context"
	"net/url"
	"strconv"
)

// ProfileService lists batchmate profiles.
type ProfileService struct {
	c *Client
}

// List returns up to limit profiles in file order. Zero uses the server default.
func (s *ProfileService) List(ctx context.Context, limit int) ([]Profile, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var profiles []Profile
	if err := s.c.getData(ctx, "/api/v1/profiles", params, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}
