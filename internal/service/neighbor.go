package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/batchmates/batchmates/internal/explore"
	"github.com/batchmates/batchmates/internal/metrics"
	"github.com/batchmates/batchmates/internal/models"
)

// defaultInterestLimit is the catalogue page size when the caller gives none.
const defaultInterestLimit = 50

// InterestStore is the data-access interface NeighborService depends on.
type InterestStore interface {
	InterestsForPerson(ctx context.Context, name string) ([]string, error)
	PeopleForInterest(ctx context.Context, interest string) ([]string, error)
	ListInterests(ctx context.Context, query string, limit int) ([]models.Interest, error)
}

// Compile-time check: *NeighborService drives the explore accumulator.
var _ explore.NeighborSource = (*NeighborService)(nil)

// NeighborService answers person/interest neighbor lookups. Results are cached
// for a bounded time and concurrent identical lookups share one query.
type NeighborService struct {
	store InterestStore
	log   *logrus.Logger
	cache *expirable.LRU[string, []string]
	group singleflight.Group

	// mu orders Purge against cache fills; gen counts purges so a lookup
	// that started before one never fills the cache afterwards.
	mu  sync.Mutex
	gen uint64
}

// NewNeighborService creates a NeighborService caching up to cacheSize
// results for ttl each.
func NewNeighborService(store InterestStore, log *logrus.Logger, cacheSize int, ttl time.Duration) *NeighborService {
	if cacheSize <= 0 {
		cacheSize = 1024
	}

	return &NeighborService{
		store: store,
		log:   log,
		cache: expirable.NewLRU[string, []string](cacheSize, nil, ttl),
	}
}

// InterestsForPerson returns the normalised interests of a person.
func (s *NeighborService) InterestsForPerson(ctx context.Context, person string) ([]string, error) {
	name, err := models.NormalizePersonName(person)
	if err != nil {
		return nil, err
	}

	// Person names match case-insensitively, so the cache key folds case.
	key := string(models.KindPerson) + ":" + strings.ToLower(name)

	return s.lookup(ctx, models.KindPerson, key, name, s.store.InterestsForPerson)
}

// PeopleForInterest returns the names of everyone sharing an interest.
// The interest is matched lower-cased.
func (s *NeighborService) PeopleForInterest(ctx context.Context, interest string) ([]string, error) {
	name, err := models.NormalizeInterestName(interest)
	if err != nil {
		return nil, err
	}

	key := string(models.KindInterest) + ":" + name

	return s.lookup(ctx, models.KindInterest, key, name, s.store.PeopleForInterest)
}

// ListInterests returns the interest catalogue, optionally filtered by query.
func (s *NeighborService) ListInterests(ctx context.Context, query string, limit int) ([]models.Interest, error) {
	limit, err := models.ValidateLimit(limit, defaultInterestLimit)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"query": query,
		"limit": limit,
	}).Debug("interests.list")

	return s.store.ListInterests(ctx, query, limit)
}

// Purge drops every cached lookup. Lookups in flight when it runs still
// answer their callers but leave the cache empty.
func (s *NeighborService) Purge() {
	s.mu.Lock()
	s.gen++
	s.cache.Purge()
	s.mu.Unlock()

	s.log.Debug("neighbors.purge")
}

func (s *NeighborService) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.gen
}

// fill caches ids unless a purge happened since gen was read.
func (s *NeighborService) fill(gen uint64, key string, ids []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		return false
	}

	s.cache.Add(key, ids)

	return true
}

func (s *NeighborService) lookup(
	ctx context.Context,
	kind models.NodeKind,
	key, id string,
	fetch func(context.Context, string) ([]string, error),
) ([]string, error) {
	if ids, ok := s.cache.Get(key); ok {
		metrics.NeighborCacheHits.Inc()

		return cloneStrings(ids), nil
	}

	metrics.NeighborCacheMisses.Inc()

	// Callers arriving after a purge must not join a lookup started before it.
	gen := s.generation()
	flightKey := key + "@" + strconv.FormatUint(gen, 10)

	v, err, shared := s.group.Do(flightKey, func() (any, error) {
		start := time.Now()
		ids, err := fetch(ctx, id)
		metrics.NeighborLookupDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

		if err != nil {
			return nil, err
		}

		if ids == nil {
			ids = []string{}
		}

		if !s.fill(gen, key, ids) {
			s.log.WithField("key", key).Debug("neighbors.lookup outlived a purge, not cached")
		}

		return ids, nil
	})
	if err != nil {
		return nil, err
	}

	ids, _ := v.([]string)

	s.log.WithFields(logrus.Fields{
		"kind":   kind,
		"id":     id,
		"count":  len(ids),
		"shared": shared,
	}).Debug("neighbors.lookup")

	return cloneStrings(ids), nil
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)

	return out
}
