package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gmalla/backend/internal/models"
	"github.com/gmalla/backend/internal/upstream"
)

type HTTPClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

type incidencePayload struct {
	No             string        `json:"no"`
	Descripcion    string        `json:"descripcion"`
	Fecha          *string       `json:"fecha"`
	Estado         models.Status `json:"estado"`
	Usuario        *string       `json:"usuario"`
	Recurso        string        `json:"recurso"`
	TipoIncidencia string        `json:"tipo_incidencia"`
	IDGtask        string        `json:"id_gtask"`
	FechaHora      *string       `json:"fecha_hora"`
	ThumbnailURL   *string       `json:"url_primera_imagen"`
}

type listResponse struct {
	Success     bool               `json:"success"`
	Incidencias []incidencePayload `json:"incidencias"`
	Error       string             `json:"error"`
}

type moveRequest struct {
	No             string `json:"no"`
	NuevaFecha     string `json:"nueva_fecha"`
	NuevoUsuarioID string `json:"nuevo_usuario_id"`
}

type moveResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (h *HTTPClient) ListIncidences(ctx context.Context) ([]models.Incidence, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.BaseURL+"/api/incidencias", nil)
	if err != nil {
		return nil, err
	}
	var body listResponse
	if err := h.do(req, &body); err != nil {
		return nil, err
	}
	if !body.Success {
		return nil, &upstream.RejectedError{Message: body.Error}
	}

	out := make([]models.Incidence, 0, len(body.Incidencias))
	for _, p := range body.Incidencias {
		out = append(out, p.toIncidence())
	}
	return out, nil
}

func (h *HTTPClient) MoveIncidence(ctx context.Context, no, nuevoUsuarioID, nuevaFecha string) error {
	payload := moveRequest{No: no, NuevaFecha: nuevaFecha, NuevoUsuarioID: nuevoUsuarioID}
	b, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/api/mover-incidencia", bytes.NewBuffer(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	var body moveResponse
	if err := h.do(req, &body); err != nil {
		return err
	}
	if !body.Success {
		return &upstream.RejectedError{Message: body.Error}
	}
	return nil
}

func (h *HTTPClient) IncidenceDetail(ctx context.Context, idGtask string) (map[string]any, error) {
	endpoint := h.BaseURL + "/api/detalle-incidencia/" + url.PathEscape(idGtask)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var body struct {
		Success bool           `json:"success"`
		Detalle map[string]any `json:"detalle"`
		Error   string         `json:"error"`
	}
	if err := h.do(req, &body); err != nil {
		return nil, err
	}
	if !body.Success {
		return nil, &upstream.RejectedError{Message: body.Error}
	}
	return body.Detalle, nil
}

func (h *HTTPClient) do(req *http.Request, out any) error {
	if h.Client == nil {
		h.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if h.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.APIKey)
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("record store http error: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (p incidencePayload) toIncidence() models.Incidence {
	inc := models.Incidence{
		No:             strings.TrimSpace(p.No),
		Descripcion:    p.Descripcion,
		Estado:         p.Estado,
		Recurso:        p.Recurso,
		TipoIncidencia: p.TipoIncidencia,
		IDGtask:        p.IDGtask,
	}
	if p.Usuario != nil {
		inc.Usuario = *p.Usuario
	}
	if p.Fecha != nil && strings.TrimSpace(*p.Fecha) != "" {
		inc.Fecha = strings.TrimSpace(*p.Fecha)
	} else {
		inc.Fecha = time.Now().Format(time.DateOnly)
	}
	if p.FechaHora != nil {
		inc.FechaHora = *p.FechaHora
	}
	if p.ThumbnailURL != nil {
		inc.ThumbnailURL = *p.ThumbnailURL
	}
	if inc.Estado == "" {
		inc.Estado = models.StatusOpen
	}
	return inc
}
