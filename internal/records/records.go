// Package records talks to the external system of record that owns the
// incidence collection. The engine only reads incidences and proposes
// agent/date moves; creation and deletion stay upstream.
package records

import (
	"context"

	"github.com/gmalla/backend/internal/models"
)

type Client interface {
	// ListIncidences fetches the full flat incidence collection.
	ListIncidences(ctx context.Context) ([]models.Incidence, error)
	// MoveIncidence relocates one incidence to a new agent and/or date.
	MoveIncidence(ctx context.Context, no, nuevoUsuarioID, nuevaFecha string) error
	// IncidenceDetail returns the raw detail document for one incidence.
	IncidenceDetail(ctx context.Context, idGtask string) (map[string]any, error)
}
