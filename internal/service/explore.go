package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/batchmates/batchmates/internal/explore"
	"github.com/batchmates/batchmates/internal/metrics"
	"github.com/batchmates/batchmates/internal/models"
)

// GraphPublisher pushes session graph changes to connected renderers.
// Both methods are called with internal locks held and must not block.
type GraphPublisher interface {
	PublishGraph(sessionID string, g models.Graph)
	CloseSession(sessionID string)
}

// PeopleLister lists every known person name, for seeding the full graph.
type PeopleLister interface {
	Names(ctx context.Context) ([]string, error)
}

// session pairs an accumulator with its metadata.
type session struct {
	id        string
	acc       *explore.Accumulator
	createdAt time.Time
}

func (s *session) view() *models.Session {
	return &models.Session{
		ID:        s.id,
		Graph:     s.acc.Snapshot(),
		CreatedAt: s.createdAt,
	}
}

// ExploreService manages server-side exploration sessions. Sessions expire
// after ttl without access; the least recently used is dropped when the store
// is full.
type ExploreService struct {
	neighbors explore.NeighborSource
	people    PeopleLister
	publisher GraphPublisher
	log       *logrus.Logger

	// mu orders lookups against deletes so a deleted session is never
	// refreshed back into the cache.
	mu       sync.Mutex
	sessions *expirable.LRU[string, *session]
}

// NewExploreService creates an ExploreService. publisher may be nil.
func NewExploreService(
	neighbors explore.NeighborSource,
	people PeopleLister,
	publisher GraphPublisher,
	log *logrus.Logger,
	maxSessions int,
	ttl time.Duration,
) *ExploreService {
	if maxSessions <= 0 {
		maxSessions = 1000
	}

	s := &ExploreService{
		neighbors: neighbors,
		people:    people,
		publisher: publisher,
		log:       log,
	}

	s.sessions = expirable.NewLRU[string, *session](maxSessions, s.onEvict, ttl)

	return s
}

// CreateSession starts a session. An empty request yields an empty graph,
// All seeds every known person, and ID/Kind seeds one node and expands it.
// If that first expansion fails no session is kept.
func (s *ExploreService) CreateSession(ctx context.Context, req models.SeedRequest) (*models.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sess := &session{id: uuid.NewString(), createdAt: time.Now().UTC()}
	sess.acc = explore.New(s.neighbors,
		explore.WithLogger(s.log),
		explore.WithOnChange(func(g models.Graph) { s.publish(sess.id, g) }),
	)

	switch {
	case req.All:
		names, err := s.people.Names(ctx)
		if err != nil {
			return nil, err
		}

		sess.acc.SeedPeople(names)

	case req.ID != "":
		id, err := s.seedID(ctx, req.Kind, req.ID)
		if err != nil {
			return nil, err
		}

		if err := sess.acc.Seed(req.Kind, id); err != nil {
			return nil, err
		}

		_, err = sess.acc.Expand(ctx, id, req.Kind)
		recordExpansion(req.Kind, err)

		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.sessions.Add(sess.id, sess)
	s.mu.Unlock()

	metrics.SessionsActive.Inc()

	s.log.WithFields(logrus.Fields{
		"session_id": sess.id,
		"all":        req.All,
		"seed_id":    req.ID,
		"seed_kind":  req.Kind,
	}).Debug("explore.create_session")

	return sess.view(), nil
}

// GetSession returns the session's current graph.
func (s *ExploreService) GetSession(_ context.Context, sessionID string) (*models.Session, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	return sess.view(), nil
}

// Expand expands one node of the session's graph.
func (s *ExploreService) Expand(ctx context.Context, sessionID string, req models.ExpandRequest) (*models.ExpandResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	res, err := sess.acc.Expand(ctx, req.ID, req.Kind)
	recordExpansion(req.Kind, err)

	s.log.WithFields(logrus.Fields{
		"session_id": sessionID,
		"node_id":    req.ID,
		"kind":       req.Kind,
	}).Debug("explore.expand")

	return res, err
}

// Reset empties the session's graph.
func (s *ExploreService) Reset(_ context.Context, sessionID string) (*models.Session, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.acc.Reset()

	s.log.WithField("session_id", sessionID).Debug("explore.reset")

	return sess.view(), nil
}

// DeleteSession ends a session and disconnects its renderers.
func (s *ExploreService) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	removed := s.sessions.Remove(sessionID)
	s.mu.Unlock()

	if !removed {
		return models.ErrSessionNotFound
	}

	s.log.WithField("session_id", sessionID).Debug("explore.delete_session")

	return nil
}

// Len returns the number of live sessions.
func (s *ExploreService) Len() int {
	return s.sessions.Len()
}

// get returns a live session and refreshes its expiry.
func (s *ExploreService) get(sessionID string) (*session, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, models.ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, models.ErrSessionNotFound
	}

	s.sessions.Add(sessionID, sess)

	return sess, nil
}

func (s *ExploreService) onEvict(id string, _ *session) {
	metrics.SessionsActive.Dec()

	if s.publisher != nil {
		s.publisher.CloseSession(id)
	}
}

func (s *ExploreService) publish(sessionID string, g models.Graph) {
	if s.publisher != nil {
		s.publisher.PublishGraph(sessionID, g)
	}
}

// seedID normalises a seed identifier to the form lookups return, so later
// expansions link back to the seed instead of duplicating it. Person names take
// the spelling of the matching profile when one exists.
func (s *ExploreService) seedID(ctx context.Context, kind models.NodeKind, id string) (string, error) {
	if kind == models.KindInterest {
		return models.NormalizeInterestName(id)
	}

	name, err := models.NormalizePersonName(id)
	if err != nil {
		return "", err
	}

	names, err := s.people.Names(ctx)
	if err != nil {
		return name, nil //nolint:nilerr // fall back to the name as given.
	}

	for _, n := range names {
		if strings.EqualFold(n, name) {
			return n, nil
		}
	}

	return name, nil
}

func recordExpansion(kind models.NodeKind, err error) {
	result := "ok"

	switch {
	case err == nil:
	case errors.Is(err, explore.ErrFetchFailure):
		result = "fetch_failed"
	case errors.Is(err, models.ErrStaleSession):
		result = "stale"
	default:
		result = "rejected"
	}

	metrics.ExpansionsTotal.WithLabelValues(string(kind), result).Inc()
}
