package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// interestMappingFile is the on-disk shape of the normalisation mapping.
type interestMappingFile struct {
	Mapping map[string]string `json:"mapping"`
}

// LoadInterestMappings reads a {"mapping": {raw: normalised}} file.
// A missing file yields an empty mapping, so every interest lands in "misc".
func LoadInterestMappings(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config.
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading interest mappings: %w", err)
	}

	var f interestMappingFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing interest mappings: %w", err)
	}

	if f.Mapping == nil {
		return map[string]string{}, nil
	}

	return f.Mapping, nil
}

// NormalizeInterest maps a raw interest to its normalised name: an exact
// mapping key wins, then the lower-cased key, then "misc".
func NormalizeInterest(raw string, mapping map[string]string) string {
	raw = strings.TrimSpace(raw)

	if v, ok := mapping[raw]; ok && strings.TrimSpace(v) != "" {
		return strings.ToLower(strings.TrimSpace(v))
	}

	if v, ok := mapping[strings.ToLower(raw)]; ok && strings.TrimSpace(v) != "" {
		return strings.ToLower(strings.TrimSpace(v))
	}

	return unmappedInterest
}
