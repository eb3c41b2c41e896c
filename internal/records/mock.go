package records

import (
	"context"
	"sync"

	"github.com/gmalla/backend/internal/models"
	"github.com/gmalla/backend/internal/upstream"
)

// MoveCall records one MoveIncidence invocation on the mock.
type MoveCall struct {
	No             string
	NuevoUsuarioID string
	NuevaFecha     string
}

// Mock is an in-memory system of record for tests and for running the
// server without upstream connectivity. Moves are applied to the held
// items so a follow-up ListIncidences observes them, mirroring the real
// store's read-your-own-write behavior.
type Mock struct {
	mu      sync.Mutex
	Items   []models.Incidence
	ListErr error
	MoveErr error
	Moves   []MoveCall
}

func (m *Mock) ListIncidences(ctx context.Context) ([]models.Incidence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return append([]models.Incidence(nil), m.Items...), nil
}

func (m *Mock) MoveIncidence(ctx context.Context, no, nuevoUsuarioID, nuevaFecha string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MoveErr != nil {
		return m.MoveErr
	}
	m.Moves = append(m.Moves, MoveCall{No: no, NuevoUsuarioID: nuevoUsuarioID, NuevaFecha: nuevaFecha})
	for i := range m.Items {
		if m.Items[i].No == no {
			if nuevoUsuarioID != "" {
				m.Items[i].Usuario = nuevoUsuarioID
			}
			if nuevaFecha != "" {
				m.Items[i].Fecha = nuevaFecha
			}
		}
	}
	return nil
}

func (m *Mock) IncidenceDetail(ctx context.Context, idGtask string) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.Items {
		if it.IDGtask == idGtask {
			return map[string]any{
				"no":          it.No,
				"descripcion": it.Descripcion,
				"estado":      string(it.Estado),
				"usuario":     it.Usuario,
				"fecha":       it.Fecha,
			}, nil
		}
	}
	return nil, &upstream.RejectedError{Message: "incidencia " + idGtask + " no encontrada"}
}
