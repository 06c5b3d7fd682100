package client

import "time"

// Node kinds.
const (
	KindPerson   = "person"
	KindInterest = "interest"
)

// Profile is a batchmate's self-introduction.
type Profile struct {
	Name                           string   `json:"name"`
	RoleAndInstitution             string   `json:"role_and_institution,omitempty"`
	Location                       string   `json:"location,omitempty"`
	TechnicalSkillsAndInterests    []string `json:"technical_skills_and_interests"`
	Goals                          []string `json:"goals"`
	NonTechnicalHobbiesAndInterest []string `json:"non_technical_hobbies_and_interest"`
	Other                          []string `json:"other"`
}

// Interest is a normalised interest with the number of people who share it.
type Interest struct {
	Name        string `json:"name"`
	PeopleCount int    `json:"people_count"`
}

// PersonInterests is the lookup result for one person.
type PersonInterests struct {
	ID        string   `json:"id"`
	Interests []string `json:"interests"`
}

// InterestPeople is the lookup result for one interest.
type InterestPeople struct {
	ID     string   `json:"id"`
	People []string `json:"people"`
}

// Node is a person or interest in an exploration graph.
type Node struct {
	ID   string  `json:"id"`
	Type string  `json:"type"`
	Val  float64 `json:"val,omitempty"`
}

// Link is an undirected association between two nodes.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is an exploration graph snapshot.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Session is a server-side exploration session.
type Session struct {
	ID        string    `json:"session_id"`
	Graph     Graph     `json:"graph"`
	CreatedAt time.Time `json:"created_at"`
}

// SeedRequest starts a session. Leave it zero for an empty graph.
type SeedRequest struct {
	ID   string `json:"id,omitempty"`
	Kind string `json:"kind,omitempty"`
	All  bool   `json:"all,omitempty"`
}

// ExpandRequest names the node to expand.
type ExpandRequest struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// ExpandResult is the graph after an expansion plus what it added.
type ExpandResult struct {
	Graph Graph `json:"graph"`
	Added Graph `json:"added"`
}

// HealthResponse is the liveness check payload.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	Profiles      int     `json:"profiles"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// envelope is the {"status","data"} wrapper of lookup endpoints.
type envelope struct {
	Status int `json:"status"`
	Data   any `json:"data"`
}
