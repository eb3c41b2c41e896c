package engine

import (
	"strings"

	"github.com/gmalla/backend/internal/models"
)

// Strictness controls how loosely two identifiers are considered the same
// entity. The upstream sources emit the same agent identifier with
// inconsistent padding and prefixes, so the default accepts substring
// containment; MatchExact is available where false positives on short
// identifiers matter more than recall.
type Strictness int

const (
	MatchContains Strictness = iota
	MatchExact
)

// ParseStrictness reads the config token for the match policy.
func ParseStrictness(v string) Strictness {
	if strings.EqualFold(strings.TrimSpace(v), "exact") {
		return MatchExact
	}
	return MatchContains
}

// SameIdentifier reports whether two identifier-like values denote the same
// entity. Blank values never match anything.
func SameIdentifier(a, b string, s Strictness) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	if s == MatchExact {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

const fallbackNameLen = 8

// DisplayName resolves an agent reference to a roster display name. An
// unmatched or nameless reference degrades to the raw identifier, truncated
// so stray GUIDs stay readable.
func DisplayName(roster []models.Agent, ref string, s Strictness) string {
	for _, a := range roster {
		if SameIdentifier(a.ID, ref, s) {
			if a.Name != "" {
				return a.Name
			}
			break
		}
	}
	return TruncateIdentifier(ref)
}

// TruncateIdentifier is the display fallback for references with no roster
// match.
func TruncateIdentifier(ref string) string {
	ref = strings.TrimSpace(ref)
	if len(ref) > fallbackNameLen {
		return ref[:fallbackNameLen]
	}
	return ref
}

// ResolveAgentID maps a raw agent reference to its canonical roster
// identifier, or returns the trimmed reference itself when no roster entry
// matches.
func ResolveAgentID(roster []models.Agent, ref string, s Strictness) string {
	for _, a := range roster {
		if SameIdentifier(a.ID, ref, s) {
			return a.ID
		}
	}
	return strings.TrimSpace(ref)
}
