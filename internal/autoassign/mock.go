package autoassign

import (
	"context"

	"github.com/gmalla/backend/internal/models"
)

type Mock struct {
	Result  models.BatchResult
	Err     error
	LastReq models.BatchRequest
	Calls   int
}

func (m *Mock) Run(ctx context.Context, req models.BatchRequest) (models.BatchResult, error) {
	m.Calls++
	m.LastReq = req
	if m.Err != nil {
		return models.BatchResult{}, m.Err
	}
	return m.Result, nil
}
