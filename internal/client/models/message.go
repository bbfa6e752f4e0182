package models

import "time"

// ChatMessage is one entry of the conversation transcript. The ID is fixed
// at creation and never reused; once a message is finalized its content is
// immutable. Only the single in-flight assistant message grows, and it grows
// append-only.
type ChatMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	IsAI      bool      `json:"is_ai"`
	CreatedAt time.Time `json:"created_at"`
}
