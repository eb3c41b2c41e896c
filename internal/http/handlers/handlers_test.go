package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/gmalla/backend/internal/autoassign"
	"github.com/gmalla/backend/internal/engine"
	httpapi "github.com/gmalla/backend/internal/http"
	"github.com/gmalla/backend/internal/http/handlers"
	"github.com/gmalla/backend/internal/models"
	"github.com/gmalla/backend/internal/records"
	"github.com/gmalla/backend/internal/roster"
	"github.com/gmalla/backend/internal/store"
	"github.com/gmalla/backend/internal/upstream"
)

const testAdminKey = "test-admin-key"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	rec    *records.Mock
	ros    *roster.Mock
	asg    *autoassign.Mock
	eng    *engine.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	rec := &records.Mock{Items: []models.Incidence{
		{No: "I1", Descripcion: "fuga de agua", Usuario: "A1", Fecha: "2026-08-24", Estado: models.StatusOpen, IDGtask: "G-1"},
		{No: "I2", Descripcion: "corte de luz", Usuario: "B2", Fecha: "2026-08-25", Estado: models.StatusInProgress, IDGtask: "G-2"},
		{No: "I3", Descripcion: "sin asignar", Usuario: "", Fecha: "2026-08-26", Estado: models.StatusOpen, IDGtask: "G-3"},
	}}
	ros := &roster.Mock{Agents: []models.Agent{
		{ID: "A1", Name: "Ana"},
		{ID: "B2", Name: "Blas"},
	}}
	asg := &autoassign.Mock{}

	state, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open state store: %v", err)
	}
	t.Cleanup(func() { _ = state.Close() })

	eng := engine.New(rec, ros, asg, state, engine.MatchContains, zerolog.Nop())
	if err := eng.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}

	h := &handlers.Handler{
		Engine:    eng,
		Records:   rec,
		Roster:    ros,
		State:     state,
		Validator: validator.New(),
		Logger:    zerolog.Nop(),
		AdminKey:  testAdminKey,
	}
	return &testServer{
		router: httpapi.Router(h, zerolog.Nop(), "test", "*"),
		rec:    rec,
		ros:    ros,
		asg:    asg,
		eng:    eng,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	body := decodeBody(t, w)
	e, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error envelope in %s", w.Body.String())
	}
	code, _ := e["code"].(string)
	msg, _ := e["message"].(string)
	return code, msg
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestIncidencesList(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/incidencias", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["count"].(float64) != 3 {
		t.Fatalf("unexpected count %v", body["count"])
	}
	if len(body["sin_asignar"].([]any)) != 1 {
		t.Fatalf("expected one unassigned incidence: %v", body["sin_asignar"])
	}
}

func TestCalendar(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/calendario?fecha=2026-08-26", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	semana := body["semana"].(map[string]any)
	if semana["inicio"] != "2026-08-24" || semana["fin"] != "2026-08-30" {
		t.Fatalf("unexpected window %v", semana)
	}
	rows := body["calendario"].([]any)
	if len(rows) != 2 {
		t.Fatalf("expected 2 agent rows, got %d", len(rows))
	}
	first := rows[0].(map[string]any)
	if first["nombre"] != "Ana" {
		t.Fatalf("rows must be sorted by name, got %v", first)
	}
}

func TestCalendarRejectsBadDate(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/calendario?fecha=ayer", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestMove(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/mover-incidencia",
		`{"no": "I1", "nuevo_usuario_id": "B2", "nueva_fecha": "2026-08-27"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if len(s.rec.Moves) != 1 || s.rec.Moves[0].No != "I1" {
		t.Fatalf("unexpected remote calls %v", s.rec.Moves)
	}
}

func TestMoveUnknownIncidence(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/mover-incidencia", `{"no": "nope"}`, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if code, _ := errorCode(t, w); code != "NOT_FOUND" {
		t.Fatalf("code = %s", code)
	}
}

func TestMoveRemoteRejection(t *testing.T) {
	s := newTestServer(t)
	s.rec.MoveErr = &upstream.RejectedError{Message: "la incidencia está cerrada"}

	w := s.do(t, http.MethodPost, "/api/mover-incidencia", `{"no": "I1"}`, nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	code, msg := errorCode(t, w)
	if code != "REMOTE_REJECTED" {
		t.Fatalf("code = %s", code)
	}
	if msg != "la incidencia está cerrada" {
		t.Fatalf("server message must survive verbatim, got %q", msg)
	}
}

func TestMoveTransportFailure(t *testing.T) {
	s := newTestServer(t)
	s.rec.MoveErr = context.DeadlineExceeded

	w := s.do(t, http.MethodPost, "/api/mover-incidencia", `{"no": "I1"}`, nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if code, _ := errorCode(t, w); code != "UPSTREAM_UNAVAILABLE" {
		t.Fatalf("code = %s", code)
	}
}

func TestMoveValidation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/mover-incidencia", `{"nuevo_usuario_id": "B2"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing no: status = %d", w.Code)
	}

	w = s.do(t, http.MethodPost, "/api/mover-incidencia", `{"no": "I1", "nueva_fecha": "27/08/2026"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad date format: status = %d", w.Code)
	}
}

func TestFilterRoundtrip(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPut, "/api/filtro-usuarios", `{"usuarios": ["A1"]}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("put: status = %d: %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/api/filtro-usuarios", "", nil)
	body := decodeBody(t, w)
	got := body["usuarios"].([]any)
	if len(got) != 1 || got[0] != "A1" {
		t.Fatalf("unexpected selection %v", got)
	}

	// Filtered calendar shows one row; hidden agent's items join the pool.
	w = s.do(t, http.MethodGet, "/api/calendario?fecha=2026-08-26", "", nil)
	cal := decodeBody(t, w)
	if rows := cal["calendario"].([]any); len(rows) != 1 {
		t.Fatalf("expected 1 visible row, got %d", len(rows))
	}
	if pool := cal["sin_asignar"].([]any); len(pool) != 2 {
		t.Fatalf("expected 2 pooled incidences, got %d", len(pool))
	}

	// null clears the filter.
	w = s.do(t, http.MethodPut, "/api/filtro-usuarios", `{"usuarios": null}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clear: status = %d", w.Code)
	}
	body = decodeBody(t, w)
	if body["usuarios"] != nil {
		t.Fatalf("expected cleared filter, got %v", body["usuarios"])
	}
}

func TestBatchRunRequiresAdminKey(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/asignacion-automatica", `{}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("without key: status = %d", w.Code)
	}

	s.asg.Result = models.BatchResult{
		Applied: []models.BatchAssignment{{IncidenciaID: "I3", UsuarioID: "A1", Fecha: "2026-08-27"}},
		Errors:  []string{"incidencia I2: agenda completa"},
	}
	w = s.do(t, http.MethodPost, "/api/asignacion-automatica",
		`{"fecha": "2026-08-26"}`, map[string]string{"X-Admin-Key": testAdminKey})
	if w.Code != http.StatusOK {
		t.Fatalf("with key: status = %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["aplicadas"].(float64) != 1 || body["errores"].(float64) != 1 {
		t.Fatalf("unexpected counts %v", body)
	}
	if s.asg.LastReq.FechaInicio != "2026-08-24" {
		t.Fatalf("window not normalized to Monday: %+v", s.asg.LastReq)
	}
}

func TestBatchRunRejected(t *testing.T) {
	s := newTestServer(t)
	s.asg.Err = &upstream.RejectedError{Message: "sin agentes disponibles"}

	w := s.do(t, http.MethodPost, "/api/asignacion-automatica", `{}`,
		map[string]string{"X-Admin-Key": testAdminKey})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if _, msg := errorCode(t, w); msg != "sin agentes disponibles" {
		t.Fatalf("message = %q", msg)
	}
}

func TestLoginAndAuthStatus(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/login", `{"username": "admin"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing password: status = %d", w.Code)
	}

	w = s.do(t, http.MethodPost, "/api/login", `{"username": "admin", "password": "secret"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login: status = %d: %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/api/auth-status", "", nil)
	if body := decodeBody(t, w); body["authenticated"] != true {
		t.Fatalf("expected authenticated, got %v", body)
	}

	w = s.do(t, http.MethodPost, "/api/logout", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: status = %d", w.Code)
	}
	w = s.do(t, http.MethodGet, "/api/auth-status", "", nil)
	if body := decodeBody(t, w); body["authenticated"] != false {
		t.Fatalf("expected unauthenticated, got %v", body)
	}
}

func TestIncidenceDetail(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/detalle-incidencia/G-1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if detalle := body["detalle"].(map[string]any); detalle["no"] != "I1" {
		t.Fatalf("unexpected detail %v", detalle)
	}

	w = s.do(t, http.MethodGet, "/api/detalle-incidencia/G-99", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing detail: status = %d", w.Code)
	}
}

func TestReloadEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.rec.Items = append(s.rec.Items, models.Incidence{No: "I4", Usuario: "A1", Fecha: "2026-08-28"})

	w := s.do(t, http.MethodPost, "/api/recargar", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["count"].(float64) != 4 {
		t.Fatalf("unexpected count %v", body["count"])
	}
}
