// Package engine is the assignment reconciliation core: it builds the
// authoritative agent×date→incidences mapping from the remote record sets,
// resolves identifier mismatches between them, and coordinates single moves
// and batch assignment runs against the external services.
package engine

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/gmalla/backend/internal/autoassign"
	"github.com/gmalla/backend/internal/metrics"
	"github.com/gmalla/backend/internal/models"
	"github.com/gmalla/backend/internal/records"
	"github.com/gmalla/backend/internal/roster"
)

// ErrUnknownIncidence is returned by Move when the incidence number does
// not exist in the last loaded collection.
var ErrUnknownIncidence = errors.New("unknown incidence")

// Engine owns the reconciliation state explicitly: no package globals, one
// instance per server. State is replaced wholesale under the mutex after
// every reload, never mutated in place, so readers can only ever observe a
// complete snapshot.
type Engine struct {
	records    records.Client
	roster     roster.Client
	assigner   autoassign.Client
	state      FilterStore
	logger     zerolog.Logger
	strictness Strictness
	collator   *collate.Collator

	mu     sync.Mutex
	agents []models.Agent
	index  *Index
	filter ViewFilter
}

func New(rec records.Client, ros roster.Client, asg autoassign.Client, state FilterStore, strictness Strictness, logger zerolog.Logger) *Engine {
	return &Engine{
		records:    rec,
		roster:     ros,
		assigner:   asg,
		state:      state,
		logger:     logger,
		strictness: strictness,
		collator:   collate.New(language.Spanish, collate.IgnoreCase),
		index:      NewIndex(strictness),
	}
}

// RestoreFilter loads the persisted view filter. Missing or corrupt state
// silently degrades to "no filter".
func (e *Engine) RestoreFilter(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filter.Restore(ctx, e.state, e.agents)
}

// Reload fetches the incidence collection and the roster, then rebuilds
// the index from scratch. When the roster service is unavailable a minimal
// agent set is synthesized from the identifiers the incidences reference,
// so the calendar still renders rows.
func (e *Engine) Reload(ctx context.Context) error {
	start := time.Now()

	items, err := e.records.ListIncidences(ctx)
	if err != nil {
		metrics.ReloadsTotal.WithLabelValues("error").Inc()
		return err
	}

	agents, err := e.roster.ListUsers(ctx)
	if err != nil {
		e.logger.Warn().Err(err).Msg("roster unavailable, synthesizing agents from incidences")
		agents = e.deriveAgents(items)
	}
	e.sortAgents(agents)

	e.mu.Lock()
	e.agents = agents
	e.index = NewIndex(e.strictness)
	e.index.Rebuild(items)
	e.mu.Unlock()

	metrics.ReloadsTotal.WithLabelValues("ok").Inc()
	metrics.ReloadDurationSeconds.Observe(time.Since(start).Seconds())
	metrics.IncidencesLoaded.Set(float64(len(items)))
	metrics.AgentsLoaded.Set(float64(len(agents)))

	e.logger.Info().Int("incidences", len(items)).Int("agents", len(agents)).Msg("state reloaded")
	return nil
}

// Move relocates one incidence to a new agent and/or date. The contract is
// two-phase: issue the remote mutation, await the result, then reload the
// whole collection so the index reflects the authoritative state instead
// of an optimistic local guess. A move whose target equals its origin is
// still sent and succeeds silently. On failure nothing was touched locally,
// so there is nothing to roll back.
func (e *Engine) Move(ctx context.Context, no, toAgent, toDate string) error {
	e.mu.Lock()
	known := e.index.Has(no)
	e.mu.Unlock()
	if !known {
		metrics.MovesTotal.WithLabelValues("unknown").Inc()
		return ErrUnknownIncidence
	}

	if err := e.records.MoveIncidence(ctx, no, toAgent, toDate); err != nil {
		metrics.MovesTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.MovesTotal.WithLabelValues("ok").Inc()

	return e.Reload(ctx)
}

// RunBatchAssignment asks the external assignment service to fill the
// given week for the currently visible agents. reassign=true also touches
// already-assigned incidences; callers gate that behind an explicit
// operator confirmation. A reload happens only after the service reported
// success, even with per-item errors present; transport and semantic
// failures leave local state untouched.
func (e *Engine) RunBatchAssignment(ctx context.Context, w WeekWindow, reassign bool) (models.BatchResult, error) {
	mode := "assign"
	if reassign {
		mode = "reassign"
	}

	e.mu.Lock()
	selected := e.filter.Selected()
	e.mu.Unlock()

	req := models.BatchRequest{
		FechaInicio:       w.Start(),
		FechaFin:          w.End(),
		UsuariosFiltrados: selected,
		AplicarCambios:    true,
		SoloSinAsignar:    !reassign,
		Reasignar:         reassign,
	}

	result, err := e.assigner.Run(ctx, req)
	if err != nil {
		metrics.BatchRunsTotal.WithLabelValues(mode, "error").Inc()
		return models.BatchResult{}, err
	}
	metrics.BatchRunsTotal.WithLabelValues(mode, "ok").Inc()
	metrics.BatchAssignmentsApplied.Add(float64(len(result.Applied)))
	metrics.BatchItemErrors.Add(float64(len(result.Errors)))

	e.logger.Info().
		Str("mode", mode).
		Int("proposed", len(result.Proposed)).
		Int("applied", len(result.Applied)).
		Int("errors", len(result.Errors)).
		Msg("batch assignment completed")

	if err := e.Reload(ctx); err != nil {
		// The assignments went through; the caller still gets them even
		// though the local view is stale until the next reload.
		e.logger.Error().Err(err).Msg("reload after batch assignment failed")
		return result, err
	}
	return result, nil
}

// AgentSchedule is one visible calendar row: an agent and their incidences
// per ISO date within the window.
type AgentSchedule struct {
	Agent models.Agent                  `json:"agent"`
	Days  map[string][]models.Incidence `json:"days"`
}

// Grid assembles the calendar view for a week window: one row per visible
// agent plus the unassigned pool (blank references and filtered-out
// agents' incidences).
func (e *Engine) Grid(w WeekWindow) ([]AgentSchedule, []models.Incidence) {
	e.mu.Lock()
	defer e.mu.Unlock()

	days := w.Days()
	var rows []AgentSchedule
	for _, a := range e.agents {
		if !e.filter.IsVisible(a.ID) {
			continue
		}
		row := AgentSchedule{Agent: a, Days: map[string][]models.Incidence{}}
		for _, d := range days {
			if items := e.index.Lookup(a.ID, d); len(items) > 0 {
				row.Days[d] = items
			}
		}
		rows = append(rows, row)
	}
	return rows, e.index.Unassigned(e.agents, &e.filter)
}

// Agents returns the sorted roster of the last reload.
func (e *Engine) Agents() []models.Agent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.Agent(nil), e.agents...)
}

// Incidences returns the flat collection of the last reload.
func (e *Engine) Incidences() []models.Incidence {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.Items()
}

// Unassigned returns the current unassigned pool.
func (e *Engine) Unassigned() []models.Incidence {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.Unassigned(e.agents, &e.filter)
}

// SetFilter replaces the view filter and persists it. A nil slice clears
// the filter; a selection covering the whole roster collapses to no filter
// before being stored.
func (e *Engine) SetFilter(ctx context.Context, ids []string) error {
	e.mu.Lock()
	e.filter.SetSelectedAgents(ids, e.agents)
	e.mu.Unlock()
	return e.persistFilter(ctx)
}

func (e *Engine) persistFilter(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter.Persist(ctx, e.state)
}

// FilterSelection returns the selected agent identifiers, or nil when no
// filter is active.
func (e *Engine) FilterSelection() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter.Selected()
}

// AgentDisplayName resolves an agent reference to a display name, degrading
// to the truncated raw reference for unmatched identifiers.
func (e *Engine) AgentDisplayName(ref string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return DisplayName(e.agents, ref, e.strictness)
}

func (e *Engine) deriveAgents(items []models.Incidence) []models.Agent {
	seen := map[string]struct{}{}
	var out []models.Agent
	for _, it := range items {
		ref := strings.TrimSpace(it.Usuario)
		if ref == "" {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, models.Agent{ID: ref, Name: TruncateIdentifier(ref)})
	}
	return out
}

func (e *Engine) sortAgents(agents []models.Agent) {
	sort.SliceStable(agents, func(i, j int) bool {
		if c := e.collator.CompareString(agents[i].Name, agents[j].Name); c != 0 {
			return c < 0
		}
		return agents[i].ID < agents[j].ID
	})
}
