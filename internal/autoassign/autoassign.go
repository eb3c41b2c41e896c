// Package autoassign talks to the external automatic-assignment service.
// The decision algorithm runs entirely on the remote side; this client only
// carries the batch request/response contract.
package autoassign

import (
	"context"

	"github.com/gmalla/backend/internal/models"
)

type Client interface {
	Run(ctx context.Context, req models.BatchRequest) (models.BatchResult, error)
}
