// Package api implements the HTTP client for the education platform backend:
// plain JSON request/response for the auth endpoints, and an incrementally
// consumed text stream for the AI chat endpoint.
package api

import (
	"context"

	"github.com/dmitrijs2005/eduterm/internal/client/models"
)

// Chat message roles in the wire format of POST /ai/chat.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is the neutral {role, content} form a transcript entry is mapped
// to before being sent to the chat endpoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Stats is the publicly visible platform counters, fetched best-effort.
type Stats struct {
	Students int `json:"students"`
	Teachers int `json:"teachers"`
	Classes  int `json:"classes"`
}

// Client defines all backend operations the application uses.
//
// Contract:
//   - Login/Register: authenticate and return the bearer token plus profile.
//   - SendCode/ResetPassword: the password-reset flow.
//   - Models/Profile: authenticated lookups.
//   - Chat: open a streaming completion; the returned Stream must be closed.
//   - PublicStats/SubmitFeedback: best-effort operations that never return
//     an error, only an ok flag.
//
// All methods must honor context cancellation/timeouts. Authorization
// failures are reported as ErrUnauthorized regardless of the operation.
type Client interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Register(ctx context.Context, email, password, name string) (string, *models.User, error)
	SendCode(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	Models(ctx context.Context, token string) ([]string, error)
	Profile(ctx context.Context, token string) (*models.User, error)
	Chat(ctx context.Context, token, model string, history []Message) (*Stream, error)
	PublicStats(ctx context.Context) (*Stats, bool)
	SubmitFeedback(ctx context.Context, token, text string) bool
}
