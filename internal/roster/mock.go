package roster

import (
	"context"

	"github.com/gmalla/backend/internal/models"
)

type Mock struct {
	Agents   []models.Agent
	Err      error
	LoginErr error

	loggedIn bool
}

func (m *Mock) ListUsers(ctx context.Context) ([]models.Agent, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Agent(nil), m.Agents...), nil
}

func (m *Mock) Login(ctx context.Context, username, password string) error {
	if m.LoginErr != nil {
		return m.LoginErr
	}
	m.loggedIn = true
	return nil
}

func (m *Mock) Logout() {
	m.loggedIn = false
}

func (m *Mock) Authenticated() bool {
	return m.loggedIn
}
