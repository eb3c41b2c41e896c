package models

// Incidence is a unit of work owned by the external system of record. The
// engine reads it and proposes agent/date changes; it never creates or
// deletes incidences.
type Incidence struct {
	No             string `json:"no"`
	Descripcion    string `json:"descripcion"`
	Fecha          string `json:"fecha"` // ISO date (YYYY-MM-DD), defaulted to today at ingestion
	Estado         Status `json:"estado"`
	Usuario        string `json:"usuario"` // raw agent reference, may be blank
	Recurso        string `json:"recurso,omitempty"`
	TipoIncidencia string `json:"tipo_incidencia,omitempty"`
	IDGtask        string `json:"id_gtask,omitempty"`
	FechaHora      string `json:"fecha_hora,omitempty"`
	ThumbnailURL   string `json:"url_primera_imagen,omitempty"`
}

// Agent is a person that can receive assigned incidences. ID and Name are
// already resolved from the roster service's multi-field payloads at
// ingestion, so downstream code never sees the raw field soup.
type Agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BatchRequest is the wire contract of the automatic-assignment service.
// UsuariosFiltrados nil means every agent is a candidate.
type BatchRequest struct {
	FechaInicio       string   `json:"fecha_inicio"`
	FechaFin          string   `json:"fecha_fin"`
	UsuariosFiltrados []string `json:"usuarios_filtrados"`
	AplicarCambios    bool     `json:"aplicar_cambios"`
	SoloSinAsignar    bool     `json:"solo_sin_asignar"`
	Reasignar         bool     `json:"reasignar,omitempty"`
}

// BatchAssignment is one proposed or applied assignment returned by the
// automatic-assignment service.
type BatchAssignment struct {
	IncidenciaID string `json:"incidencia_id"`
	UsuarioID    string `json:"usuario_id"`
	Fecha        string `json:"fecha"`
	HoraInicio   string `json:"hora_inicio,omitempty"`
}

// BatchResult carries the three outcome lists of a successful batch run.
// Errors are per-item failure messages; the run as a whole still succeeded.
type BatchResult struct {
	Proposed []BatchAssignment `json:"asignaciones_propuestas"`
	Applied  []BatchAssignment `json:"asignaciones_aplicadas"`
	Errors   []string          `json:"errores"`
}
