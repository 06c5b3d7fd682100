package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/batchmates/batchmates/client"
	"github.com/batchmates/batchmates/internal/explore"
	"github.com/batchmates/batchmates/internal/models"
)

// stubSource answers lookups from fixed maps and counts calls.
type stubSource struct {
	interests map[string][]string
	people    map[string][]string
	calls     atomic.Int32
}

func (s *stubSource) InterestsForPerson(_ context.Context, person string) ([]string, error) {
	s.calls.Add(1)
	v, ok := s.interests[person]
	if !ok {
		return nil, &client.APIError{StatusCode: 404, Code: "not_found", Message: "person not found"}
	}
	return v, nil
}

func (s *stubSource) PeopleForInterest(_ context.Context, interest string) ([]string, error) {
	s.calls.Add(1)
	v, ok := s.people[interest]
	if !ok {
		return nil, &client.APIError{StatusCode: 404, Code: "not_found", Message: "interest not found"}
	}
	return v, nil
}

func newStubSource() *stubSource {
	return &stubSource{
		interests: map[string][]string{
			"Alice": {"go", "music"},
			"Bob":   {"go"},
			"Carol": {"music", "chess"},
		},
		people: map[string][]string{
			"go":    {"Alice", "Bob"},
			"music": {"Alice", "Carol"},
			"chess": {"Carol"},
		},
	}
}

func nodeIDs(g models.Graph) map[string]models.NodeKind {
	ids := make(map[string]models.NodeKind, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = n.Kind
	}
	return ids
}

func TestExploreGraph_Depths(t *testing.T) {
	tests := []struct {
		depth     int
		wantNodes []string
		wantLinks int
	}{
		{depth: 0, wantNodes: []string{"Alice"}, wantLinks: 0},
		{depth: 1, wantNodes: []string{"Alice", "go", "music"}, wantLinks: 2},
		{depth: 2, wantNodes: []string{"Alice", "go", "music", "Bob", "Carol"}, wantLinks: 4},
		{depth: 3, wantNodes: []string{"Alice", "go", "music", "Bob", "Carol", "chess"}, wantLinks: 5},
	}

	for _, tc := range tests {
		g, err := exploreGraph(context.Background(), newStubSource(), models.KindPerson, "Alice", tc.depth, 2)
		if err != nil {
			t.Fatalf("depth %d: %v", tc.depth, err)
		}

		ids := nodeIDs(g)
		if len(ids) != len(tc.wantNodes) {
			t.Errorf("depth %d: nodes = %v, want %v", tc.depth, ids, tc.wantNodes)
		}
		for _, id := range tc.wantNodes {
			if _, ok := ids[id]; !ok {
				t.Errorf("depth %d: missing node %q", tc.depth, id)
			}
		}
		if len(g.Links) != tc.wantLinks {
			t.Errorf("depth %d: links = %d, want %d", tc.depth, len(g.Links), tc.wantLinks)
		}
	}
}

func TestExploreGraph_InterestSeedIsLowerCased(t *testing.T) {
	g, err := exploreGraph(context.Background(), newStubSource(), models.KindInterest, "  Go ", 1, 1)
	if err != nil {
		t.Fatal(err)
	}

	ids := nodeIDs(g)
	if ids["go"] != models.KindInterest || ids["Alice"] != models.KindPerson || ids["Bob"] != models.KindPerson {
		t.Errorf("unexpected nodes %v", ids)
	}
}

func TestExploreGraph_UnknownSeedFails(t *testing.T) {
	_, err := exploreGraph(context.Background(), newStubSource(), models.KindPerson, "Mallory", 1, 1)
	if !errors.Is(err, explore.ErrFetchFailure) || !client.IsNotFound(err) {
		t.Errorf("expected not-found fetch failure, got %v", err)
	}
}

func TestExploreGraph_SkipsMissingNeighbors(t *testing.T) {
	src := newStubSource()
	src.people["go"] = []string{"Alice", "Ghost"}

	g, err := exploreGraph(context.Background(), src, models.KindInterest, "go", 2, 4)
	if err != nil {
		t.Fatalf("expected missing neighbor to be skipped, got %v", err)
	}
	if _, ok := nodeIDs(g)["Ghost"]; !ok {
		t.Error("neighbor should stay in the graph even when its own lookup fails")
	}
}

func TestExploreGraph_TransportErrorAborts(t *testing.T) {
	boom := errors.New("connection refused")
	src := &failingSource{err: boom}

	if _, err := exploreGraph(context.Background(), src, models.KindPerson, "Alice", 1, 1); !errors.Is(err, boom) {
		t.Errorf("expected transport error, got %v", err)
	}
}

type failingSource struct{ err error }

func (f *failingSource) InterestsForPerson(context.Context, string) ([]string, error) {
	return nil, f.err
}

func (f *failingSource) PeopleForInterest(context.Context, string) ([]string, error) {
	return nil, f.err
}

func TestExploreGraph_SeedTakesStoredSpelling(t *testing.T) {
	src := &stubSource{
		interests: map[string][]string{"alice": {"music"}, "Alice": {"music"}},
		people:    map[string][]string{"music": {"Alice"}},
	}

	g, err := exploreGraph(context.Background(), src, models.KindPerson, "alice", 2, 2)
	if err != nil {
		t.Fatalf("exploreGraph: %v", err)
	}

	ids := nodeIDs(g)
	if len(g.Nodes) != 2 || ids["Alice"] != models.KindPerson || ids["music"] != models.KindInterest {
		t.Errorf("nodes = %v, want Alice and music only", g.Nodes)
	}

	if len(g.Links) != 1 {
		t.Errorf("links = %v, want one", g.Links)
	}
}
