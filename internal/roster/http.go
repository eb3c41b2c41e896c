package roster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gmalla/backend/internal/models"
	"github.com/gmalla/backend/internal/upstream"
)

type HTTPClient struct {
	BaseURL string
	Client  *http.Client

	mu    sync.Mutex
	token string
}

type listResponse struct {
	Success  bool             `json:"success"`
	Usuarios []map[string]any `json:"usuarios"`
	Error    string           `json:"error"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Error   string `json:"error"`
}

func (h *HTTPClient) ListUsers(ctx context.Context) ([]models.Agent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.BaseURL+"/api/usuarios", nil)
	if err != nil {
		return nil, err
	}
	if token := h.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	var body listResponse
	if err := h.do(req, &body); err != nil {
		return nil, err
	}
	if !body.Success {
		return nil, &upstream.RejectedError{Message: body.Error}
	}
	return ResolveAgents(body.Usuarios), nil
}

func (h *HTTPClient) Login(ctx context.Context, username, password string) error {
	b, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/api/login", bytes.NewBuffer(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	var body loginResponse
	if err := h.do(req, &body); err != nil {
		return err
	}
	if !body.Success {
		return &upstream.RejectedError{Message: body.Error}
	}

	h.mu.Lock()
	h.token = body.Token
	h.mu.Unlock()
	return nil
}

func (h *HTTPClient) Logout() {
	h.mu.Lock()
	h.token = ""
	h.mu.Unlock()
}

func (h *HTTPClient) Authenticated() bool {
	return h.currentToken() != ""
}

func (h *HTTPClient) currentToken() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token
}

func (h *HTTPClient) do(req *http.Request, out any) error {
	if h.Client == nil {
		h.Client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("roster http error: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ResolveAgents converts raw roster entries into canonical agents via the
// ordered field fallbacks. Entries with no resolvable identifier are
// dropped; a missing display name falls back to the truncated identifier.
func ResolveAgents(raw []map[string]any) []models.Agent {
	out := make([]models.Agent, 0, len(raw))
	for _, entry := range raw {
		id := firstField(entry, idFields)
		if id == "" {
			continue
		}
		name := firstField(entry, nameFields)
		if name == "" {
			name = truncate(id)
		}
		out = append(out, models.Agent{ID: id, Name: name})
	}
	return out
}

func firstField(entry map[string]any, fields []string) string {
	for _, f := range fields {
		v, ok := entry[f]
		if !ok || v == nil {
			continue
		}
		if s := stringify(v); strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func truncate(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
