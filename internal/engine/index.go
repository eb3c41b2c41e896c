package engine

import (
	"strings"
	"time"

	"github.com/gmalla/backend/internal/models"
)

// Index is the agent×date→incidences lookup structure the calendar renders
// from. Buckets are keyed by the incidence's literal (trimmed) agent
// reference and ISO date; incidences with a blank reference are kept aside
// as the unassigned pool. The index is always rebuilt wholesale from the
// flat incidence list, never patched, so it cannot drift from the source of
// truth.
type Index struct {
	strictness Strictness

	buckets    map[string]map[string][]models.Incidence
	unassigned []models.Incidence
	items      []models.Incidence
}

func NewIndex(s Strictness) *Index {
	return &Index{strictness: s, buckets: map[string]map[string][]models.Incidence{}}
}

// Rebuild clears and repopulates the full mapping. Deterministic and
// idempotent: the same input always yields an identical structure.
func (x *Index) Rebuild(items []models.Incidence) {
	buckets := map[string]map[string][]models.Incidence{}
	var unassigned []models.Incidence

	for _, it := range items {
		agent := strings.TrimSpace(it.Usuario)
		if agent == "" {
			unassigned = append(unassigned, it)
			continue
		}
		date := it.Fecha
		if date == "" {
			date = time.Now().Format(time.DateOnly)
		}
		days, ok := buckets[agent]
		if !ok {
			days = map[string][]models.Incidence{}
			buckets[agent] = days
		}
		days[date] = append(days[date], it)
	}

	x.buckets = buckets
	x.unassigned = unassigned
	x.items = append([]models.Incidence(nil), items...)
}

// Lookup returns the incidences bucketed under an agent identifier on a
// given ISO date. The primary path is an exact key hit; when that misses,
// every bucket key is compared through the identifier normalizer, because
// buckets are keyed by the incidence's literal agent string while callers
// query by the roster's canonical identifier.
func (x *Index) Lookup(agentID, date string) []models.Incidence {
	if days, ok := x.buckets[strings.TrimSpace(agentID)]; ok {
		if items := days[date]; len(items) > 0 {
			return items
		}
	}
	var out []models.Incidence
	for key, days := range x.buckets {
		if key == strings.TrimSpace(agentID) {
			continue
		}
		if SameIdentifier(key, agentID, x.strictness) {
			out = append(out, days[date]...)
		}
	}
	return out
}

// Unassigned returns the incidences with a blank agent reference plus, when
// a filter is active, those whose resolved agent is filtered out. Items of
// a hidden agent must still be visible somewhere, so they reappear in the
// unassigned pool instead of disappearing.
func (x *Index) Unassigned(roster []models.Agent, filter *ViewFilter) []models.Incidence {
	out := append([]models.Incidence(nil), x.unassigned...)
	if filter == nil || !filter.Active() {
		return out
	}
	for _, it := range x.items {
		if strings.TrimSpace(it.Usuario) == "" {
			continue
		}
		resolved := ResolveAgentID(roster, it.Usuario, x.strictness)
		if !filter.IsVisible(resolved) {
			out = append(out, it)
		}
	}
	return out
}

// Items returns the flat incidence list the index was built from.
func (x *Index) Items() []models.Incidence {
	return append([]models.Incidence(nil), x.items...)
}

// Has reports whether an incidence number exists in the indexed collection.
func (x *Index) Has(no string) bool {
	for _, it := range x.items {
		if it.No == no {
			return true
		}
	}
	return false
}
