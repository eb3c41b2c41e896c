package autoassign

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gmalla/backend/internal/models"
	"github.com/gmalla/backend/internal/upstream"
)

type HTTPClient struct {
	BaseURL string
	Client  *http.Client
}

type runResponse struct {
	Success  bool                     `json:"success"`
	Proposed []models.BatchAssignment `json:"asignaciones_propuestas"`
	Applied  []models.BatchAssignment `json:"asignaciones_aplicadas"`
	Errors   []string                 `json:"errores"`
	Error    string                   `json:"error"`
}

func (h *HTTPClient) Run(ctx context.Context, request models.BatchRequest) (models.BatchResult, error) {
	if h.Client == nil {
		// Batch runs cover a whole week of incidences; give the
		// assignment service more room than an interactive call.
		h.Client = &http.Client{Timeout: 120 * time.Second}
	}

	b, _ := json.Marshal(request)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/api/asignacion-automatica", bytes.NewBuffer(b))
	if err != nil {
		return models.BatchResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return models.BatchResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.BatchResult{}, fmt.Errorf("assignment service http error: %s", resp.Status)
	}

	var body runResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.BatchResult{}, err
	}
	if !body.Success {
		return models.BatchResult{}, &upstream.RejectedError{Message: body.Error}
	}
	return models.BatchResult{Proposed: body.Proposed, Applied: body.Applied, Errors: body.Errors}, nil
}
