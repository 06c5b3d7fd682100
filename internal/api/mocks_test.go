package api_test

import (
	"context"

	"github.com/batchmates/batchmates/internal/models"
)

// mockProfileService implements api.ProfileService for testing.
type mockProfileService struct {
	listFn func(ctx context.Context, limit int) ([]models.Profile, error)
	count  int
}

func (m *mockProfileService) ListProfiles(ctx context.Context, limit int) ([]models.Profile, error) {
	return m.listFn(ctx, limit)
}

func (m *mockProfileService) Count() int {
	return m.count
}

// mockNeighborService implements api.NeighborService for testing.
type mockNeighborService struct {
	interestsFn func(ctx context.Context, person string) ([]string, error)
	peopleFn    func(ctx context.Context, interest string) ([]string, error)
	listFn      func(ctx context.Context, query string, limit int) ([]models.Interest, error)
}

func (m *mockNeighborService) InterestsForPerson(ctx context.Context, person string) ([]string, error) {
	return m.interestsFn(ctx, person)
}

func (m *mockNeighborService) PeopleForInterest(ctx context.Context, interest string) ([]string, error) {
	return m.peopleFn(ctx, interest)
}

func (m *mockNeighborService) ListInterests(ctx context.Context, query string, limit int) ([]models.Interest, error) {
	return m.listFn(ctx, query, limit)
}

// mockExploreService implements api.ExploreService for testing.
type mockExploreService struct {
	createFn func(ctx context.Context, req models.SeedRequest) (*models.Session, error)
	getFn    func(ctx context.Context, sessionID string) (*models.Session, error)
	expandFn func(ctx context.Context, sessionID string, req models.ExpandRequest) (*models.ExpandResult, error)
	resetFn  func(ctx context.Context, sessionID string) (*models.Session, error)
	deleteFn func(ctx context.Context, sessionID string) error
}

func (m *mockExploreService) CreateSession(ctx context.Context, req models.SeedRequest) (*models.Session, error) {
	return m.createFn(ctx, req)
}

func (m *mockExploreService) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	return m.getFn(ctx, sessionID)
}

func (m *mockExploreService) Expand(ctx context.Context, sessionID string, req models.ExpandRequest) (*models.ExpandResult, error) {
	return m.expandFn(ctx, sessionID, req)
}

func (m *mockExploreService) Reset(ctx context.Context, sessionID string) (*models.Session, error) {
	return m.resetFn(ctx, sessionID)
}

func (m *mockExploreService) DeleteSession(ctx context.Context, sessionID string) error {
	return m.deleteFn(ctx, sessionID)
}

// mockHealthChecker implements api.HealthChecker for testing.
type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) HealthCheck(context.Context) error {
	return m.err
}
