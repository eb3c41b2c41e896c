package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/gmalla/backend/internal/engine"
	"github.com/gmalla/backend/internal/models"
	"github.com/gmalla/backend/internal/records"
	"github.com/gmalla/backend/internal/roster"
	"github.com/gmalla/backend/internal/store"
	"github.com/gmalla/backend/internal/upstream"
)

type Handler struct {
	Engine    *engine.Engine
	Records   records.Client
	Roster    roster.Client
	State     *store.StateStore
	Validator *validator.Validate
	Logger    zerolog.Logger
	AdminKey  string
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.State.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "STATE_UNAVAILABLE", "Local state store unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary List incidences
// @Description Flat incidence collection from the last reload, plus the unassigned pool
// @Tags incidences
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/incidencias [get]
func (h *Handler) IncidencesList(c *gin.Context) {
	items := h.Engine.Incidences()
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"incidencias": items,
		"sin_asignar": h.Engine.Unassigned(),
		"count":       len(items),
	})
}

func (h *Handler) AgentsList(c *gin.Context) {
	agents := h.Engine.Agents()
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"usuarios": agents,
		"count":    len(agents),
	})
}

type calendarRow struct {
	UsuarioID string                        `json:"usuario_id"`
	Nombre    string                        `json:"nombre"`
	Dias      map[string][]models.Incidence `json:"dias"`
}

// @Summary Week calendar grid
// @Description Agent rows for the week containing the given date, filter applied
// @Tags calendar
// @Produce json
// @Param fecha query string false "Any date inside the wanted week (YYYY-MM-DD), defaults to today"
// @Success 200 {object} map[string]any
// @Router /api/calendario [get]
func (h *Handler) Calendar(c *gin.Context) {
	window, err := weekFromQuery(c.Query("fecha"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "fecha must be YYYY-MM-DD", err.Error())
		return
	}

	rows, unassigned := h.Engine.Grid(window)
	out := make([]calendarRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, calendarRow{UsuarioID: r.Agent.ID, Nombre: r.Agent.Name, Dias: r.Days})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"semana": gin.H{
			"inicio": window.Start(),
			"fin":    window.End(),
			"dias":   window.Days(),
		},
		"calendario":  out,
		"sin_asignar": unassigned,
	})
}

type MoveRequest struct {
	No             string `json:"no" validate:"required"`
	NuevoUsuarioID string `json:"nuevo_usuario_id"`
	NuevaFecha     string `json:"nueva_fecha" validate:"omitempty,datetime=2006-01-02"`
}

// @Summary Move an incidence
// @Description Relocate one incidence to a new agent and/or date, then reload
// @Tags incidences
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/mover-incidencia [post]
func (h *Handler) Move(c *gin.Context) {
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	if err := h.Engine.Move(c.Request.Context(), req.No, req.NuevoUsuarioID, req.NuevaFecha); err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type BatchRunRequest struct {
	Fecha     string `json:"fecha" validate:"omitempty,datetime=2006-01-02"`
	Reasignar bool   `json:"reasignar"`
}

// @Summary Run automatic assignment
// @Description Ask the assignment service to fill the week; reasignar=true also reshuffles already-assigned incidences
// @Tags assignment
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/asignacion-automatica [post]
func (h *Handler) BatchRun(c *gin.Context) {
	var req BatchRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	window, err := weekFromQuery(req.Fecha)
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "fecha must be YYYY-MM-DD", err.Error())
		return
	}

	result, err := h.Engine.RunBatchAssignment(c.Request.Context(), window, req.Reasignar)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"propuestas": len(result.Proposed),
		"aplicadas":  len(result.Applied),
		"errores":    len(result.Errors),
		"detalle":    result,
	})
}

func (h *Handler) FilterGet(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"usuarios": h.Engine.FilterSelection(),
	})
}

type FilterRequest struct {
	Usuarios []string `json:"usuarios"`
}

func (h *Handler) FilterPut(c *gin.Context) {
	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Engine.SetFilter(c.Request.Context(), req.Usuarios); err != nil {
		writeError(c, http.StatusInternalServerError, "STATE_ERROR", "Failed to persist filter", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"usuarios": h.Engine.FilterSelection(),
	})
}

func (h *Handler) Reload(c *gin.Context) {
	if err := h.Engine.Reload(c.Request.Context()); err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(h.Engine.Incidences()),
	})
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "username and password are required", err.Error())
		return
	}

	if err := h.Roster.Login(c.Request.Context(), req.Username, req.Password); err != nil {
		var rejected *upstream.RejectedError
		if errors.As(err, &rejected) {
			writeError(c, http.StatusUnauthorized, "LOGIN_FAILED", rejected.Message, nil)
			return
		}
		writeError(c, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Roster service unreachable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) Logout(c *gin.Context) {
	h.Roster.Logout()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) AuthStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"authenticated": h.Roster.Authenticated(),
	})
}

func (h *Handler) IncidenceDetail(c *gin.Context) {
	detail, err := h.Records.IncidenceDetail(c.Request.Context(), c.Param("id_gtask"))
	if err != nil {
		var rejected *upstream.RejectedError
		if errors.As(err, &rejected) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", rejected.Message, nil)
			return
		}
		writeError(c, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Record store unreachable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "detalle": detail})
}

// writeEngineError maps the engine's error taxonomy onto the HTTP surface.
// A remote rejection keeps the server's own message verbatim; transport
// failures are reported as 502.
func (h *Handler) writeEngineError(c *gin.Context, err error) {
	if errors.Is(err, engine.ErrUnknownIncidence) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Incidence not found", nil)
		return
	}
	var rejected *upstream.RejectedError
	if errors.As(err, &rejected) {
		writeError(c, http.StatusUnprocessableEntity, "REMOTE_REJECTED", rejected.Message, nil)
		return
	}
	h.Logger.Error().Err(err).Msg("upstream call failed")
	writeError(c, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Remote service unreachable", err.Error())
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

func weekFromQuery(raw string) (engine.WeekWindow, error) {
	if raw == "" {
		return engine.WeekOf(time.Now()), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return engine.WeekWindow{}, err
	}
	return engine.WeekOf(t), nil
}
