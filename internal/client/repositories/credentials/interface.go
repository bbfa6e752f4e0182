// Package credentials persists the single client-side auth record:
// {token, isAuthenticated, user, rememberMe}. The record is advisory for
// session-only logins; the session marker decides whether it is honored
// after a restart.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/eduterm/internal/client/models"
)

// Record is the persisted auth state. A zero Record means anonymous.
type Record struct {
	Token           string       `json:"token"`
	IsAuthenticated bool         `json:"is_authenticated"`
	User            *models.User `json:"user"`
	RememberMe      bool         `json:"remember_me"`
}

// Repository stores at most one Record.
//
// Contract:
//   - Load returns (nil, nil) when no record exists or the stored record
//     cannot be read back (a corrupt record degrades to anonymous, it is
//     never surfaced as an error).
//   - Save replaces the record atomically.
//   - Clear removes it; clearing an empty store is not an error.
type Repository interface {
	Load(ctx context.Context) (*Record, error)
	Save(ctx context.Context, rec *Record) error
	Clear(ctx context.Context) error
}
