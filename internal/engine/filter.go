package engine

import (
	"context"
	"sort"

	"github.com/gmalla/backend/internal/models"
)

// FilterStore persists the view filter across sessions. SaveFilter(nil)
// clears the stored value; LoadFilter reports absence through its second
// return so a missing value is not an error.
type FilterStore interface {
	SaveFilter(ctx context.Context, ids []string) error
	LoadFilter(ctx context.Context) ([]string, bool, error)
}

// ViewFilter is the persisted subset of agents the calendar shows. A nil
// selection is the "no filter" sentinel: every agent is visible, including
// ones that join the roster later.
type ViewFilter struct {
	selected map[string]struct{}
}

// SetSelectedAgents replaces the selection. A nil slice, or a selection
// covering the entire roster, collapses to the sentinel; an always-true but
// non-nil filter would otherwise survive roster edits indefinitely.
func (f *ViewFilter) SetSelectedAgents(ids []string, roster []models.Agent) {
	if ids == nil {
		f.selected = nil
		return
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	if len(roster) > 0 {
		all := true
		for _, a := range roster {
			if _, ok := set[a.ID]; !ok {
				all = false
				break
			}
		}
		if all {
			f.selected = nil
			return
		}
	}
	f.selected = set
}

// Active reports whether a finite selection is in force.
func (f *ViewFilter) Active() bool {
	return f.selected != nil
}

// IsVisible is true when no filter is active or the identifier is selected.
func (f *ViewFilter) IsVisible(agentID string) bool {
	if f.selected == nil {
		return true
	}
	_, ok := f.selected[agentID]
	return ok
}

// Selected returns the selection sorted for stable serialization, or nil
// when no filter is active.
func (f *ViewFilter) Selected() []string {
	if f.selected == nil {
		return nil
	}
	out := make([]string, 0, len(f.selected))
	for id := range f.selected {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Persist writes the current selection to durable storage.
func (f *ViewFilter) Persist(ctx context.Context, store FilterStore) error {
	return store.SaveFilter(ctx, f.Selected())
}

// Restore loads the persisted selection. A missing or corrupt value
// degrades to "no filter"; restore never raises a user-visible error.
func (f *ViewFilter) Restore(ctx context.Context, store FilterStore, roster []models.Agent) {
	ids, ok, err := store.LoadFilter(ctx)
	if err != nil || !ok {
		f.selected = nil
		return
	}
	f.SetSelectedAgents(ids, roster)
}
