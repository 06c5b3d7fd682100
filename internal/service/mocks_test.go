package service

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/batchmates/batchmates/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	return log
}

// mockInterestStore records calls and returns configured responses.
type mockInterestStore struct {
	mu    sync.Mutex
	calls []string

	interestsForPerson func(ctx context.Context, name string) ([]string, error)
	peopleForInterest  func(ctx context.Context, interest string) ([]string, error)
	listInterests      func(ctx context.Context, query string, limit int) ([]models.Interest, error)
}

func (m *mockInterestStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockInterestStore) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.calls)
}

func (m *mockInterestStore) InterestsForPerson(ctx context.Context, name string) ([]string, error) {
	m.record("InterestsForPerson:" + name)
	return m.interestsForPerson(ctx, name)
}

func (m *mockInterestStore) PeopleForInterest(ctx context.Context, interest string) ([]string, error) {
	m.record("PeopleForInterest:" + interest)
	return m.peopleForInterest(ctx, interest)
}

func (m *mockInterestStore) ListInterests(ctx context.Context, query string, limit int) ([]models.Interest, error) {
	m.record("ListInterests")
	return m.listInterests(ctx, query, limit)
}

// mockProfileSource serves a fixed profile list.
type mockProfileSource struct {
	profiles []models.Profile
	err      error
}

func (m *mockProfileSource) Profiles(_ context.Context, limit int) ([]models.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}

	return m.profiles[:min(limit, len(m.profiles))], nil
}

func (m *mockProfileSource) Names(_ context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}

	names := make([]string, len(m.profiles))
	for i, p := range m.profiles {
		names[i] = p.Name
	}

	return names, nil
}

func (m *mockProfileSource) Count() int { return len(m.profiles) }

// mockPublisher records published graphs and closed sessions.
type mockPublisher struct {
	mu        sync.Mutex
	published map[string][]models.Graph
	closed    []string
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{published: make(map[string][]models.Graph)}
}

func (m *mockPublisher) PublishGraph(sessionID string, g models.Graph) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published[sessionID] = append(m.published[sessionID], g)
}

func (m *mockPublisher) CloseSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = append(m.closed, sessionID)
}

func (m *mockPublisher) publishedCount(sessionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.published[sessionID])
}

func (m *mockPublisher) closedSessions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.closed...)
}
