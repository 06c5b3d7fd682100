package explore

import "github.com/batchmates/batchmates/internal/models"

// Graph is the append-only node/link collection owned by one Accumulator.
// Nodes are unique by id, links unique by unordered pair, and every link's
// endpoints exist as nodes. The per-kind seen sets are updated only by addNode
// so they always match the node set.
type Graph struct {
	nodes     []models.Node
	nodeIndex map[string]int
	links     []models.Link
	linkIndex map[models.LinkKey]struct{}
	seen      map[models.NodeKind]map[string]struct{}
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodeIndex: make(map[string]int),
		linkIndex: make(map[models.LinkKey]struct{}),
		seen: map[models.NodeKind]map[string]struct{}{
			models.KindPerson:   {},
			models.KindInterest: {},
		},
	}
}

// Has reports whether a node with the given id exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodeIndex[id]
	return ok
}

// Kind returns the kind of the node with the given id.
func (g *Graph) Kind(id string) (models.NodeKind, bool) {
	i, ok := g.nodeIndex[id]
	if !ok {
		return "", false
	}

	return g.nodes[i].Kind, true
}

// Seen reports whether id has been added as a node of the given kind.
func (g *Graph) Seen(kind models.NodeKind, id string) bool {
	_, ok := g.seen[kind][id]
	return ok
}

// hasLink reports whether a link between a and b exists in either orientation.
func (g *Graph) hasLink(a, b string) bool {
	_, ok := g.linkIndex[models.PairKey(a, b)]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// LinkCount returns the number of links.
func (g *Graph) LinkCount() int { return len(g.links) }

// addNode appends n unless a node with the same id exists.
func (g *Graph) addNode(n models.Node) bool {
	if g.Has(n.ID) {
		return false
	}

	g.nodeIndex[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.seen[n.Kind][n.ID] = struct{}{}

	return true
}

// addLink appends a link between a and b unless the pair exists or a == b.
// Both endpoints must already be nodes.
func (g *Graph) addLink(a, b string) bool {
	if a == b {
		return false
	}

	if !g.Has(a) || !g.Has(b) {
		panic("explore: link endpoint missing from graph: " + a + " <-> " + b)
	}

	if g.hasLink(a, b) {
		return false
	}

	g.linkIndex[models.PairKey(a, b)] = struct{}{}
	g.links = append(g.links, models.Link{Source: a, Target: b})

	return true
}

// Snapshot returns a deep copy of the graph for rendering.
func (g *Graph) Snapshot() models.Graph {
	out := models.Graph{
		Nodes: make([]models.Node, len(g.nodes)),
		Links: make([]models.Link, len(g.links)),
	}
	copy(out.Nodes, g.nodes)
	copy(out.Links, g.links)

	return out
}
