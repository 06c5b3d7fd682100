package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/batchmates/batchmates/internal/explore"
	"github.com/batchmates/batchmates/internal/models"
)

// fakeNeighbors is a NeighborSource backed by fixed maps.
type fakeNeighbors struct {
	interests map[string][]string
	people    map[string][]string
	err       error
}

func (f *fakeNeighbors) InterestsForPerson(_ context.Context, id string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.interests[id], nil
}

func (f *fakeNeighbors) PeopleForInterest(_ context.Context, id string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.people[id], nil
}

func newTestExploreService(n *fakeNeighbors, pub *mockPublisher, maxSessions int) *ExploreService {
	people := &mockProfileSource{profiles: []models.Profile{{Name: "Alice"}, {Name: "Bob"}}}

	return NewExploreService(n, people, pub, testLogger(), maxSessions, time.Minute)
}

func aliceNeighbors() *fakeNeighbors {
	return &fakeNeighbors{
		interests: map[string][]string{"Alice": {"music", "poetry"}},
		people:    map[string][]string{"music": {"Alice", "Bob"}},
	}
}

func TestExploreService_CreateSession(t *testing.T) {
	tests := []struct {
		name      string
		req       models.SeedRequest
		wantNodes int
		wantLinks int
		wantErr   error
	}{
		{name: "empty", req: models.SeedRequest{}, wantNodes: 0},
		{name: "all people", req: models.SeedRequest{All: true}, wantNodes: 2},
		{name: "seed person expands", req: models.SeedRequest{ID: "alice", Kind: models.KindPerson}, wantNodes: 3, wantLinks: 2},
		{name: "seed interest expands", req: models.SeedRequest{ID: "Music", Kind: models.KindInterest}, wantNodes: 3, wantLinks: 2},
		{name: "kind without id", req: models.SeedRequest{Kind: models.KindPerson}, wantErr: models.ErrMissingID},
		{name: "conflict", req: models.SeedRequest{ID: "Alice", Kind: models.KindPerson, All: true}, wantErr: models.ErrSeedConflict},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestExploreService(aliceNeighbors(), newMockPublisher(), 10)

			sess, err := svc.CreateSession(context.Background(), tc.req)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				if svc.Len() != 0 {
					t.Errorf("rejected request left %d sessions", svc.Len())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if sess.ID == "" {
				t.Error("expected session id")
			}
			if len(sess.Graph.Nodes) != tc.wantNodes || len(sess.Graph.Links) != tc.wantLinks {
				t.Errorf("graph = %d nodes, %d links; want %d, %d",
					len(sess.Graph.Nodes), len(sess.Graph.Links), tc.wantNodes, tc.wantLinks)
			}
		})
	}
}

func TestExploreService_SeedUsesProfileSpelling(t *testing.T) {
	svc := newTestExploreService(aliceNeighbors(), newMockPublisher(), 10)

	sess, err := svc.CreateSession(context.Background(), models.SeedRequest{ID: "ALICE", Kind: models.KindPerson})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	res, err := svc.Expand(context.Background(), sess.ID, models.ExpandRequest{ID: "music", Kind: models.KindInterest})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	// Alice must be reused rather than duplicated by the music expansion.
	if len(res.Added.Nodes) != 1 || res.Added.Nodes[0].ID != "Bob" {
		t.Errorf("added = %+v, want only Bob", res.Added.Nodes)
	}
}

func TestExploreService_SeedFetchFailureKeepsNoSession(t *testing.T) {
	n := &fakeNeighbors{err: errors.New("db down")}
	svc := newTestExploreService(n, newMockPublisher(), 10)

	_, err := svc.CreateSession(context.Background(), models.SeedRequest{ID: "Alice", Kind: models.KindPerson})
	if !errors.Is(err, explore.ErrFetchFailure) {
		t.Fatalf("expected ErrFetchFailure, got %v", err)
	}

	if svc.Len() != 0 {
		t.Errorf("sessions = %d, want 0", svc.Len())
	}
}

func TestExploreService_ExpandPublishes(t *testing.T) {
	pub := newMockPublisher()
	svc := newTestExploreService(aliceNeighbors(), pub, 10)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, models.SeedRequest{All: true})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	before := pub.publishedCount(sess.ID)

	res, err := svc.Expand(ctx, sess.ID, models.ExpandRequest{ID: "Alice", Kind: models.KindPerson})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	if len(res.Added.Nodes) != 2 {
		t.Errorf("added %d nodes, want 2", len(res.Added.Nodes))
	}

	if pub.publishedCount(sess.ID) != before+1 {
		t.Errorf("expected one publish for the expansion, got %d", pub.publishedCount(sess.ID)-before)
	}

	got, err := svc.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}

	if len(got.Graph.Nodes) != 4 {
		t.Errorf("session graph has %d nodes, want 4", len(got.Graph.Nodes))
	}
}

func TestExploreService_ExpandErrors(t *testing.T) {
	svc := newTestExploreService(aliceNeighbors(), newMockPublisher(), 10)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, models.SeedRequest{All: true})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	tests := []struct {
		name      string
		sessionID string
		req       models.ExpandRequest
		want      error
	}{
		{name: "unknown session", sessionID: "00000000-0000-0000-0000-000000000000", req: models.ExpandRequest{ID: "Alice", Kind: models.KindPerson}, want: models.ErrSessionNotFound},
		{name: "malformed session id", sessionID: "nope", req: models.ExpandRequest{ID: "Alice", Kind: models.KindPerson}, want: models.ErrSessionNotFound},
		{name: "missing id", sessionID: sess.ID, req: models.ExpandRequest{Kind: models.KindPerson}, want: models.ErrMissingID},
		{name: "unknown node", sessionID: sess.ID, req: models.ExpandRequest{ID: "Zed", Kind: models.KindPerson}, want: models.ErrNodeNotFound},
		{name: "kind mismatch", sessionID: sess.ID, req: models.ExpandRequest{ID: "Alice", Kind: models.KindInterest}, want: models.ErrKindMismatch},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Expand(ctx, tc.sessionID, tc.req); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestExploreService_ResetAndDelete(t *testing.T) {
	pub := newMockPublisher()
	svc := newTestExploreService(aliceNeighbors(), pub, 10)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, models.SeedRequest{All: true})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	reset, err := svc.Reset(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if len(reset.Graph.Nodes) != 0 || reset.ID != sess.ID {
		t.Errorf("reset session = %+v", reset)
	}

	if err := svc.DeleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}

	if _, err := svc.GetSession(ctx, sess.ID); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("expected deleted session to be gone, got %v", err)
	}

	if err := svc.DeleteSession(ctx, sess.ID); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("second delete: expected ErrSessionNotFound, got %v", err)
	}

	if closed := pub.closedSessions(); len(closed) != 1 || closed[0] != sess.ID {
		t.Errorf("closed sessions = %v", closed)
	}
}

func TestExploreService_EvictsLeastRecentlyUsed(t *testing.T) {
	pub := newMockPublisher()
	svc := newTestExploreService(aliceNeighbors(), pub, 2)
	ctx := context.Background()

	first, _ := svc.CreateSession(ctx, models.SeedRequest{})
	second, _ := svc.CreateSession(ctx, models.SeedRequest{})

	// Touch first so second becomes the oldest.
	if _, err := svc.GetSession(ctx, first.ID); err != nil {
		t.Fatalf("GetSession: %v", err)
	}

	if _, err := svc.CreateSession(ctx, models.SeedRequest{}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if _, err := svc.GetSession(ctx, second.ID); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("expected second session evicted, got %v", err)
	}

	if _, err := svc.GetSession(ctx, first.ID); err != nil {
		t.Errorf("expected first session kept, got %v", err)
	}

	if svc.Len() != 2 {
		t.Errorf("sessions = %d, want 2", svc.Len())
	}
}
