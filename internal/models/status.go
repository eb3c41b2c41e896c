package models

import (
	"encoding/json"
	"strings"
)

// Status is the closed set of incidence states. The system of record emits
// it either as an option index (0/1/2) or as a text token, in Spanish or
// English; ingestion normalizes everything to one of the three constants.
type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "InProgress"
	StatusClosed     Status = "Closed"
)

func (s *Status) UnmarshalJSON(data []byte) error {
	var code int
	if err := json.Unmarshal(data, &code); err == nil {
		switch code {
		case 1:
			*s = StatusInProgress
		case 2:
			*s = StatusClosed
		default:
			*s = StatusOpen
		}
		return nil
	}

	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return err
	}
	*s = ParseStatus(token)
	return nil
}

// ParseStatus maps a source token onto the closed set. Unknown or blank
// tokens degrade to Open rather than failing the whole ingest.
func ParseStatus(token string) Status {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "enprogreso", "en progreso", "inprogress", "in progress":
		return StatusInProgress
	case "cerrada", "closed":
		return StatusClosed
	default:
		return StatusOpen
	}
}
