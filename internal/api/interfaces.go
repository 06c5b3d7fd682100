package api

import (
	"context"

	"github.com/batchmates/batchmates/internal/models"
)

// ProfileService defines profile operations used by ProfileHandler.
type ProfileService interface {
	ListProfiles(ctx context.Context, limit int) ([]models.Profile, error)
	Count() int
}

// NeighborService defines lookup operations used by InterestHandler.
type NeighborService interface {
	InterestsForPerson(ctx context.Context, person string) ([]string, error)
	PeopleForInterest(ctx context.Context, interest string) ([]string, error)
	ListInterests(ctx context.Context, query string, limit int) ([]models.Interest, error)
}

// ExploreService defines exploration session operations used by ExploreHandler.
type ExploreService interface {
	CreateSession(ctx context.Context, req models.SeedRequest) (*models.Session, error)
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	Expand(ctx context.Context, sessionID string, req models.ExpandRequest) (*models.ExpandResult, error)
	Reset(ctx context.Context, sessionID string) (*models.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// HealthChecker reports database connectivity.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
