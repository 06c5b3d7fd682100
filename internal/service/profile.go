// Package service provides business logic between API handlers and data stores.
package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/batchmates/batchmates/internal/models"
)

// defaultProfileLimit is the page size when the caller gives none.
const defaultProfileLimit = 50

// ProfileSource is the data-access interface ProfileService depends on.
type ProfileSource interface {
	Profiles(ctx context.Context, limit int) ([]models.Profile, error)
	Names(ctx context.Context) ([]string, error)
	Count() int
}

// ProfileService serves batchmate profiles.
type ProfileService struct {
	source ProfileSource
	log    *logrus.Logger
}

// NewProfileService creates a ProfileService.
func NewProfileService(source ProfileSource, log *logrus.Logger) *ProfileService {
	return &ProfileService{source: source, log: log}
}

// ListProfiles returns up to limit profiles in file order. A zero limit means
// the default of 50; anything outside 1..100 is rejected.
func (s *ProfileService) ListProfiles(ctx context.Context, limit int) ([]models.Profile, error) {
	limit, err := models.ValidateLimit(limit, defaultProfileLimit)
	if err != nil {
		return nil, err
	}

	s.log.WithField("limit", limit).Debug("profiles.list")

	return s.source.Profiles(ctx, limit)
}

// Names returns every profile name.
func (s *ProfileService) Names(ctx context.Context) ([]string, error) {
	return s.source.Names(ctx)
}

// Count returns the number of loaded profiles.
func (s *ProfileService) Count() int {
	return s.source.Count()
}
