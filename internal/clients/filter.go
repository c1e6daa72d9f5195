package clients

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/legalhub/internal/registry"
)

// maxNameDistance is the edit distance tolerated between the query and a
// word of the client's name.
const maxNameDistance = 2

// Filter returns the records matching query, preserving order. A record
// matches when its name, email or phone contains the query (case-insensitive)
// or when a word of its name is within a small edit distance of it. An empty
// query returns every record.
func Filter(records []registry.ClientRecord, query string) []registry.ClientRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records
	}
	out := make([]registry.ClientRecord, 0, len(records))
	for _, r := range records {
		if matches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r registry.ClientRecord, q string) bool {
	name := strings.ToLower(r.FullName)
	if strings.Contains(name, q) ||
		strings.Contains(strings.ToLower(r.Email), q) ||
		strings.Contains(r.Phone, q) {
		return true
	}
	// short queries match too much by distance alone
	if len([]rune(q)) <= maxNameDistance+1 {
		return false
	}
	for _, word := range strings.Fields(name) {
		if levenshtein.ComputeDistance(word, q) <= maxNameDistance {
			return true
		}
	}
	return false
}
