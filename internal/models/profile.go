package models

import "strings"

// Interest types recorded for each person. Goals are shown on profiles but are
// not linked into the interest graph.
const (
	InterestTypeTechnical    = "technical_skills_and_interests"
	InterestTypeNonTechnical = "non_technical_hobbies_and_interest"
)

// InterestTypes lists the interest types that feed the graph, in import order.
var InterestTypes = []string{InterestTypeTechnical, InterestTypeNonTechnical}

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

// Normalize trims the name, falling back to key and then "Unknown" when empty,
// and replaces nil lists with empty ones.
func (p *Profile) Normalize(key string) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		p.Name = strings.TrimSpace(key)
	}

	if p.Name == "" {
		p.Name = "Unknown"
	}

	p.RoleAndInstitution = strings.TrimSpace(p.RoleAndInstitution)
	p.Location = strings.TrimSpace(p.Location)
	p.TechnicalSkillsAndInterests = nonNil(p.TechnicalSkillsAndInterests)
	p.Goals = nonNil(p.Goals)
	p.NonTechnicalHobbiesAndInterest = nonNil(p.NonTechnicalHobbiesAndInterest)
	p.Other = nonNil(p.Other)
}

// Interests returns the profile entries of the given interest type.
func (p *Profile) Interests(interestType string) []string {
	switch interestType {
	case InterestTypeTechnical:
		return p.TechnicalSkillsAndInterests
	case InterestTypeNonTechnical:
		return p.NonTechnicalHobbiesAndInterest
	default:
		return nil
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
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

// NormalizePersonName trims a person name and checks its length.
func NormalizePersonName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}

	if len(name) > maxIDLength {
		return "", ErrFieldTooLong("person", maxIDLength)
	}

	return name, nil
}

// NormalizeInterestName trims and lower-cases an interest name and checks its length.
func NormalizeInterestName(interest string) (string, error) {
	interest = strings.ToLower(strings.TrimSpace(interest))
	if interest == "" {
		return "", ErrEmptyName
	}

	if len(interest) > maxIDLength {
		return "", ErrFieldTooLong("interest", maxIDLength)
	}

	return interest, nil
}

// ValidateLimit checks a page size against the 1..100 window, substituting
// fallback when limit is zero.
func ValidateLimit(limit, fallback int) (int, error) {
	if limit == 0 {
		return fallback, nil
	}

	if limit < 1 || limit > 100 {
		return 0, ErrInvalidLimit
	}

	return limit, nil
}
