package client

import (
	"context"
	"net/url"
)

// ExploreService manages server-side exploration sessions.
type ExploreService struct {
	c *Client
}

func sessionPath(id string) string {
	return "/api/v1/explore/sessions/" + url.PathEscape(id)
}

// Create starts a session. A nil seed yields an empty graph.
func (s *ExploreService) Create(ctx context.Context, seed *SeedRequest) (*Session, error) {
	var body any
	if seed != nil {
		body = seed
	}
	var sess Session
	if err := s.c.post(ctx, "/api/v1/explore/sessions", body, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Get returns a session's current graph.
func (s *ExploreService) Get(ctx context.Context, id string) (*Session, error) {
	var sess Session
	if err := s.c.get(ctx, sessionPath(id), nil, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Expand expands one node of the session's graph.
func (s *ExploreService) Expand(ctx context.Context, id string, req *ExpandRequest) (*ExpandResult, error) {
	var res ExpandResult
	if err := s.c.post(ctx, sessionPath(id)+"/expand", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Reset empties a session's graph.
func (s *ExploreService) Reset(ctx context.Context, id string) (*Session, error) {
	var sess Session
	if err := s.c.post(ctx, sessionPath(id)+"/reset", nil, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Delete ends a session.
func (s *ExploreService) Delete(ctx context.Context, id string) error {
	return s.c.del(ctx, sessionPath(id), nil)
}
