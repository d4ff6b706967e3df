package repositories

import (
	"database/sql"
	"errors"
	"strings"

	intconfig "backend/internal/config"
	"backend/internal/domain"
)

// Agent is a delegated reseller account that can book agent-reserved seats.
type Agent struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Status       string `json:"status"`
}

type AgentRepository struct {
	DB *sql.DB
}

func (r AgentRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// GetByUsername fetches an active agent account for login.
func (r AgentRepository) GetByUsername(username string) (Agent, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Agent{}, domain.ValidationError{Field: "username", Msg: "username kosong"}
	}
	var a Agent
	err := r.db().QueryRow(`
		SELECT id, name, username, password_hash, status
		FROM agents WHERE username = ? LIMIT 1`, username,
	).Scan(&a.ID, &a.Name, &a.Username, &a.PasswordHash, &a.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Agent{}, domain.NotFoundError{Resource: "agent"}
		}
		return Agent{}, err
	}
	return a, nil
}
