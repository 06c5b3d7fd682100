package models

// Link is an undirected "has interest" association between two nodes.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// LinkKey identifies a link regardless of orientation.
type LinkKey struct {
	A, B string
}

// Key returns the orientation-free key, so (a,b) and (b,a) compare equal.
func (l Link) Key() LinkKey {
	return PairKey(l.Source, l.Target)
}

// PairKey returns the orientation-free key for two node identifiers.
func PairKey(a, b string) LinkKey {
	if b < a {
		a, b = b, a
	}

	return LinkKey{A: a, B: b}
}
