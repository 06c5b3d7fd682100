// Package explore accumulates the person/interest graph built up while a user
// explores batchmates by expanding one node at a time.
package explore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/batchmates/batchmates/internal/models"
)

// Accumulator owns one session's Graph and merges neighbor lookups into it.
// Lookups may run concurrently; merges are applied one at a time, in the order
// their lookups complete.
type Accumulator struct {
	source         NeighborSource
	log            *logrus.Logger
	interestWeight float64
	onChange       func(models.Graph)

	mu      sync.Mutex
	graph   *Graph
	session uint64
}

// Option configures an Accumulator.
type Option func(*Accumulator)

// WithLogger sets the logger used for expansion diagnostics.
func WithLogger(log *logrus.Logger) Option {
	return func(a *Accumulator) { a.log = log }
}

// WithInterestWeight overrides the display weight given to new interest nodes.
func WithInterestWeight(w float64) Option {
	return func(a *Accumulator) { a.interestWeight = w }
}

// WithOnChange registers a callback that receives a snapshot after every
// change. It runs with the merge lock held and must not call back into the
// Accumulator.
func WithOnChange(fn func(models.Graph)) Option {
	return func(a *Accumulator) { a.onChange = fn }
}

// New creates an Accumulator with an empty graph.
func New(source NeighborSource, opts ...Option) *Accumulator {
	a := &Accumulator{
		source:         source,
		interestWeight: models.InterestNodeWeight,
		graph:          NewGraph(),
	}
	for _, o := range opts {
		o(a)
	}

	if a.log == nil {
		a.log = logrus.StandardLogger()
	}

	return a
}

// Session returns the current session token. It changes on every reset.
func (a *Accumulator) Session() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.session
}

// Snapshot returns a copy of the current graph.
func (a *Accumulator) Snapshot() models.Graph {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.graph.Snapshot()
}

// Reset discards the graph and starts a new session. Lookups still in flight
// for the old session are dropped when they complete.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.resetLocked()
	a.notifyLocked()
}

func (a *Accumulator) resetLocked() {
	a.graph = NewGraph()
	a.session++
}

// Seed starts a new session whose graph holds the single given node.
func (a *Accumulator) Seed(kind models.NodeKind, id string) error {
	req := models.ExpandRequest{ID: id, Kind: kind}
	if err := req.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.resetLocked()
	a.graph.addNode(a.newNode(kind, id))
	a.notifyLocked()

	return nil
}

// SeedPeople starts a new session whose graph holds one person node per id.
// Blank and repeated ids are skipped.
func (a *Accumulator) SeedPeople(ids []string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.resetLocked()
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		a.graph.addNode(a.newNode(models.KindPerson, id))
	}
	a.notifyLocked()
}

// Expand fetches the neighbors of an existing node and merges them: interests
// for a person, people for an interest. New neighbors become nodes of the
// opposite kind, and every returned neighbor is linked to the expanded node.
// A failed lookup returns a *FetchFailure and leaves the graph unchanged.
func (a *Accumulator) Expand(ctx context.Context, id string, kind models.NodeKind) (*models.ExpandResult, error) {
	if !kind.Valid() {
		return nil, models.ErrInvalidKind
	}

	a.mu.Lock()
	existing, ok := a.graph.Kind(id)
	session := a.session
	a.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("expanding %q: %w", id, models.ErrNodeNotFound)
	}

	if existing != kind {
		return nil, fmt.Errorf("expanding %q as %s: %w", id, kind, models.ErrKindMismatch)
	}

	neighbors, err := fetchNeighbors(ctx, a.source, id, kind)
	if err != nil {
		a.log.WithError(err).WithFields(logrus.Fields{
			"node_id": id,
			"kind":    kind,
		}).Warn("explore.expand fetch failed")

		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != session {
		a.log.WithField("node_id", id).Debug("explore.expand discarded stale result")

		return nil, models.ErrStaleSession
	}

	added := a.mergeLocked(id, kind, neighbors)
	if len(added.Nodes) > 0 || len(added.Links) > 0 {
		a.notifyLocked()
	}

	a.log.WithFields(logrus.Fields{
		"node_id":     id,
		"kind":        kind,
		"neighbors":   len(neighbors),
		"added_nodes": len(added.Nodes),
		"added_links": len(added.Links),
		"nodes":       a.graph.Len(),
		"links":       a.graph.LinkCount(),
	}).Debug("explore.expand")

	return &models.ExpandResult{Graph: a.graph.Snapshot(), Added: added}, nil
}

// mergeLocked adds unseen neighbors as nodes, then links id to every neighbor.
func (a *Accumulator) mergeLocked(id string, kind models.NodeKind, neighbors []string) models.Graph {
	added := models.EmptyGraph()
	neighborKind := kind.Opposite()

	unique := make([]string, 0, len(neighbors))
	dedup := make(map[string]struct{}, len(neighbors))
	for _, n := range neighbors {
		if _, dup := dedup[n]; dup {
			continue
		}
		dedup[n] = struct{}{}
		unique = append(unique, n)
	}

	for _, n := range unique {
		if a.graph.Seen(neighborKind, n) {
			continue
		}

		node := a.newNode(neighborKind, n)
		if a.graph.addNode(node) {
			added.Nodes = append(added.Nodes, node)
		}
	}

	for _, n := range unique {
		if a.graph.addLink(id, n) {
			added.Links = append(added.Links, models.Link{Source: id, Target: n})
		}
	}

	return added
}

func (a *Accumulator) newNode(kind models.NodeKind, id string) models.Node {
	n := models.Node{ID: id, Kind: kind}
	if kind == models.KindInterest {
		n.Val = a.interestWeight
	}

	return n
}

func (a *Accumulator) notifyLocked() {
	if a.onChange != nil {
		a.onChange(a.graph.Snapshot())
	}
}
