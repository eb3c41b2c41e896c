// Package roster talks to the user roster service. Its payloads name the
// identifier and display name under several historical fields; resolution
// happens here, once, so the rest of the codebase only ever sees a single
// canonical Agent shape.
package roster

import (
	"context"

	"github.com/gmalla/backend/internal/models"
)

type Client interface {
	// ListUsers fetches the roster as canonical agents.
	ListUsers(ctx context.Context) ([]models.Agent, error)
	// Login opens a session; subsequent calls carry the returned token.
	Login(ctx context.Context, username, password string) error
	// Logout drops the session token.
	Logout()
	// Authenticated reports whether a session token is held.
	Authenticated() bool
}

// Ordered field fallbacks for the roster's loosely-specified schema. First
// present and non-blank wins.
var (
	idFields   = []string{"id", "user_id", "userId", "_id"}
	nameFields = []string{"name", "username", "nombre"}
)
