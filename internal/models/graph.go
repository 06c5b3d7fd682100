package models

import "time"

// Graph is a read-only snapshot of an exploration graph, shaped for
// force-directed renderers.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// EmptyGraph returns a graph whose slices encode as [] rather than null.
func EmptyGraph() Graph {
	return Graph{Nodes: []Node{}, Links: []Link{}}
}

// ExpandResult holds the graph after an expansion plus what the expansion added.
type ExpandResult struct {
	Graph Graph `json:"graph"`
	Added Graph `json:"added"`
}

// Session is a server-side exploration session.
type Session struct {
	ID        string    `json:"session_id"`
	Graph     Graph     `json:"graph"`
	CreatedAt time.Time `json:"created_at"`
}
