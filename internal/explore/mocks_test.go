package explore

import (
	"context"
	"sync"
)

// mockSource implements NeighborSource with configurable responses.
type mockSource struct {
	mu    sync.Mutex
	calls []string

	interests func(ctx context.Context, personID string) ([]string, error)
	people    func(ctx context.Context, interestID string) ([]string, error)
}

func (m *mockSource) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockSource) InterestsForPerson(ctx context.Context, personID string) ([]string, error) {
	m.record("InterestsForPerson:" + personID)
	return m.interests(ctx, personID)
}

func (m *mockSource) PeopleForInterest(ctx context.Context, interestID string) ([]string, error) {
	m.record("PeopleForInterest:" + interestID)
	return m.people(ctx, interestID)
}

// staticSource answers from fixed maps; unknown ids yield no neighbors.
func staticSource(interests, people map[string][]string) *mockSource {
	return &mockSource{
		interests: func(_ context.Context, id string) ([]string, error) { return interests[id], nil },
		people:    func(_ context.Context, id string) ([]string, error) { return people[id], nil },
	}
}
