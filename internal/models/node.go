// Package models defines data types for the batchmates graph and profiles.
package models

import "strings"

// NodeKind distinguishes the two kinds of vertex in the exploration graph.
type NodeKind string

// Node kinds.
const (
	KindPerson   NodeKind = "person"
	KindInterest NodeKind = "interest"
)

// InterestNodeWeight is the display weight given to every interest node so
// interests render at comparable size.
const InterestNodeWeight = 10

// maxIDLength caps person and interest identifiers.
const maxIDLength = 100

// Valid reports whether k is a known node kind.
func (k NodeKind) Valid() bool {
	return k == KindPerson || k == KindInterest
}

// Opposite returns the kind on the other side of a person/interest link.
func (k NodeKind) Opposite() NodeKind {
	if k == KindPerson {
		return KindInterest
	}

	return KindPerson
}

// ParseNodeKind converts a string to a NodeKind, rejecting unknown values.
func ParseNodeKind(s string) (NodeKind, error) {
	k := NodeKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", ErrInvalidKind
	}

	return k, nil
}

// Node represents a person or interest in the exploration graph.
type Node struct {
	ID   string   `json:"id"`
	Kind NodeKind `json:"type"`
	Val  float64  `json:"val,omitempty"`
}

// ExpandRequest is the payload for expanding a node's neighbors.
type ExpandRequest struct {
	ID   string   `json:"id"`
	Kind NodeKind `json:"kind"`
}

// Validate checks that the node identifier and kind are usable.
func (r *ExpandRequest) Validate() error {
	if r.ID == "" {
		return ErrMissingID
	}

	if len(r.ID) > maxIDLength {
		return ErrFieldTooLong("id", maxIDLength)
	}

	if !r.Kind.Valid() {
		return ErrInvalidKind
	}

	return nil
}

// SeedRequest starts an exploration session. An empty request yields an empty
// graph, All seeds every known person, and ID/Kind seeds a single node.
type SeedRequest struct {
	ID   string   `json:"id,omitempty"`
	Kind NodeKind `json:"kind,omitempty"`
	All  bool     `json:"all,omitempty"`
}

// Validate checks SeedRequest fields.
func (r *SeedRequest) Validate() error {
	if r.ID == "" {
		if r.Kind != "" {
			return ErrMissingID
		}

		return nil
	}

	if r.All {
		return ErrSeedConflict
	}

	if len(r.ID) > maxIDLength {
		return ErrFieldTooLong("id", maxIDLength)
	}

	if !r.Kind.Valid() {
		return ErrInvalidKind
	}

	return nil
}
