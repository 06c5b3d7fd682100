package explore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/batchmates/batchmates/internal/models"
)

// NeighborSource answers neighbor lookups for expansion. Implementations
// include the database-backed service and the REST client.
type NeighborSource interface {
	InterestsForPerson(ctx context.Context, personID string) ([]string, error)
	PeopleForInterest(ctx context.Context, interestID string) ([]string, error)
}

// ErrFetchFailure matches any *FetchFailure via errors.Is.
var ErrFetchFailure = errors.New("neighbor fetch failed")

// FetchFailure reports that the neighbor lookup for a node failed or returned
// data that could not be merged.
type FetchFailure struct {
	NodeID string
	Kind   models.NodeKind
	Err    error
}

// Error implements the error interface.
func (f *FetchFailure) Error() string {
	return fmt.Sprintf("fetching neighbors of %s %q: %v", f.Kind, f.NodeID, f.Err)
}

// Unwrap returns the underlying cause.
func (f *FetchFailure) Unwrap() error { return f.Err }

// Is lets errors.Is(err, ErrFetchFailure) match.
func (f *FetchFailure) Is(target error) bool { return target == ErrFetchFailure }

var errBlankNeighbor = errors.New("neighbor list contains a blank identifier")

// fetchNeighbors dispatches to the lookup matching kind and rejects malformed lists.
func fetchNeighbors(ctx context.Context, src NeighborSource, id string, kind models.NodeKind) ([]string, error) {
	var (
		ids []string
		err error
	)

	if kind == models.KindPerson {
		ids, err = src.InterestsForPerson(ctx, id)
	} else {
		ids, err = src.PeopleForInterest(ctx, id)
	}

	if err != nil {
		return nil, &FetchFailure{NodeID: id, Kind: kind, Err: err}
	}

	for _, n := range ids {
		if strings.TrimSpace(n) == "" {
			return nil, &FetchFailure{NodeID: id, Kind: kind, Err: errBlankNeighbor}
		}
	}

	return ids, nil
}

// CanonicalPerson returns the stored spelling of a person name. Person
// lookups match case-insensitively but list people as stored, so a seed typed
// in another case would otherwise reappear as a second node. The spelling is
// read back through the person's first interest; when that is impossible the
// name is returned as given and the seed expansion reports any error.
func CanonicalPerson(ctx context.Context, src NeighborSource, name string) string {
	interests, err := src.InterestsForPerson(ctx, name)
	if err != nil || len(interests) == 0 {
		return name
	}

	people, err := src.PeopleForInterest(ctx, interests[0])
	if err != nil {
		return name
	}

	for _, p := range people {
		if p == name {
			return name
		}
	}

	for _, p := range people {
		if strings.EqualFold(p, name) {
			return p
		}
	}

	return name
}
