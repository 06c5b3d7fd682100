package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// InterestService queries the interest catalogue.
type InterestService struct {
	c *Client
}

// List returns interests ordered by popularity, filtered by query when set.
func (s *InterestService) List(ctx context.Context, query string, limit int) ([]Interest, error) {
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var interests []Interest
	if err := s.c.getData(ctx, "/api/v1/interests", params, &interests); err != nil {
		return nil, err
	}
	return interests, nil
}

// NeighborService answers person and interest lookups. It can drive a local
// exploration graph.
type NeighborService struct {
	c *Client
}

// InterestsForPerson returns the normalised interests of a person.
func (s *NeighborService) InterestsForPerson(ctx context.Context, person string) ([]string, error) {
	return s.lookup(ctx, "/api/v1/person/"+url.PathEscape(person)+"/interests", "interests")
}

// PeopleForInterest returns everyone who shares an interest.
func (s *NeighborService) PeopleForInterest(ctx context.Context, interest string) ([]string, error) {
	return s.lookup(ctx, "/api/v1/interest/"+url.PathEscape(interest)+"/people", "people")
}

// lookup fetches a neighbor list and insists on the {"data":{field:[...]}}
// shape. A missing or null data object or list is ErrMalformedResponse.
func (s *NeighborService) lookup(ctx context.Context, path, field string) ([]string, error) {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := s.c.get(ctx, path, nil, &env); err != nil {
		return nil, err
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(env.Data, &data); err != nil || data == nil {
		return nil, fmt.Errorf("%w: %s: no data object", ErrMalformedResponse, path)
	}

	raw, ok := data[field]
	if !ok || string(raw) == "null" {
		return nil, fmt.Errorf("%w: %s: missing %q", ErrMalformedResponse, path, field)
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("%w: %s: %q: %v", ErrMalformedResponse, path, field, err)
	}

	return ids, nil
}
