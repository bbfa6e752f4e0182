// Package chat owns the AI conversation transcript and the streaming send
// pipeline: it issues the authenticated chat request, consumes the
// incrementally delivered response and materializes it into the transcript
// as it arrives.
package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/eduterm/internal/client/api"
	"github.com/dmitrijs2005/eduterm/internal/client/models"
	"github.com/dmitrijs2005/eduterm/internal/client/repositories/transcripts"
	"github.com/dmitrijs2005/eduterm/internal/logging"
	"github.com/google/uuid"
)

var (
	// ErrEmptyMessage: the content is empty after trimming; nothing is sent
	// and nothing is appended.
	ErrEmptyMessage = errors.New("empty message")

	// ErrNotAuthenticated: no token present. The user message still lands in
	// the transcript, followed by an explanation instead of an answer.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNoModelSelected: same handling as ErrNotAuthenticated.
	ErrNoModelSelected = errors.New("no model selected")

	// ErrBusy: a send is already in flight. Overlapping sends are rejected
	// outright rather than queued.
	ErrBusy = errors.New("another message is already in flight")
)

// Fallback texts shown in place of an answer when a send cannot start.
const (
	msgPleaseLogIn     = "Please log in to use the AI assistant."
	msgNoModelSelected = "Please select a model first."
	msgSessionExpired  = "Your session has expired. Please log in again."
)

// Session is the slice of the session store the chat client needs: it reads
// the token and escalates authorization failures; it never mutates session
// state directly.
type Session interface {
	Token() string
	ForceLogout(ctx context.Context)
}

// Store holds the conversation state exposed to the UI layer: the message
// list, the streaming flag, the model list and the selected model.
//
// The transcript is mutated by whole-slice replacement (copy-on-write), so
// a snapshot taken via Messages is never modified afterwards. Fragments are
// applied to the in-flight message by id, never by index.
type Store struct {
	api         api.Client
	session     Session
	transcripts transcripts.Repository // may be nil
	log         logging.Logger

	mu            sync.Mutex
	messages      []models.ChatMessage
	modelList     []string
	selectedModel string
	streaming     bool

	// onDelta, when set, observes each applied content fragment. Called
	// outside the lock, in fragment order.
	onDelta func(id, delta string)
}

func NewStore(apiClient api.Client, sess Session, repo transcripts.Repository, log logging.Logger) *Store {
	return &Store{
		api:         apiClient,
		session:     sess,
		transcripts: repo,
		log:         log.With("component", "chat"),
	}
}

// SetOnDelta registers the incremental-render sink. Not safe to change
// while a send is in flight.
func (s *Store) SetOnDelta(fn func(id, delta string)) {
	s.mu.Lock()
	s.onDelta = fn
	s.mu.Unlock()
}

// Messages returns the current transcript snapshot.
func (s *Store) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages
}

func (s *Store) IsStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streaming
}

func (s *Store) Models() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelList
}

func (s *Store) SelectedModel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedModel
}

// SetSelectedModel picks the model used for subsequent sends. Unknown ids
// are accepted; the server validates on send.
func (s *Store) SetSelectedModel(id string) {
	s.mu.Lock()
	s.selectedModel = id
	s.mu.Unlock()
}

// FetchModels loads the available model list. An authorization failure
// escalates to the shared forced-logout path.
func (s *Store) FetchModels(ctx context.Context) error {
	list, err := s.api.Models(ctx, s.session.Token())
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.session.ForceLogout(ctx)
		}
		return err
	}

	s.mu.Lock()
	s.modelList = list
	if s.selectedModel == "" && len(list) > 0 {
		s.selectedModel = list[0]
	}
	s.mu.Unlock()
	return nil
}

// SendMessage appends the user message, opens the streaming request and
// grows the assistant reply fragment by fragment until the stream ends.
//
// Ordering: the user message append happens before the assistant
// placeholder append, which happens before any fragment; fragments are
// applied in arrival order. At most one send is in flight; a second
// concurrent call is rejected with ErrBusy before touching the transcript.
//
// Failure handling: precondition failures (no token, no model) append an
// explanatory assistant message and make no network call. An authorization
// failure triggers the shared forced logout exactly once and nothing of the
// response is parsed. Any other failure becomes the assistant message's
// fallback text only if no content was streamed yet; once any fragment was
// displayed, the partial content is preserved as final and the error is
// dropped.
func (s *Store) SendMessage(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	if s.streaming {
		s.mu.Unlock()
		return ErrBusy
	}
	s.streaming = true
	token := s.session.Token()
	model := s.selectedModel

	// the user message lands in the transcript no matter what happens next
	userMsg := newMessage(content, false)
	s.messages = appendMessage(s.messages, userMsg)

	assistantMsg := newMessage("", true)
	s.messages = appendMessage(s.messages, assistantMsg)
	s.mu.Unlock()

	// the streaming flag must drop on every exit path
	defer func() {
		s.mu.Lock()
		s.streaming = false
		s.mu.Unlock()
	}()

	if token == "" {
		s.setContent(assistantMsg.ID, msgPleaseLogIn)
		s.finalize(ctx, userMsg.ID, assistantMsg.ID)
		return ErrNotAuthenticated
	}
	if model == "" {
		s.setContent(assistantMsg.ID, msgNoModelSelected)
		s.finalize(ctx, userMsg.ID, assistantMsg.ID)
		return ErrNoModelSelected
	}

	history := s.history(assistantMsg.ID)

	stream, err := s.api.Chat(ctx, token, model, history)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.setContent(assistantMsg.ID, msgSessionExpired)
			s.session.ForceLogout(ctx)
			return err
		}
		s.log.Warn(ctx, "chat request failed", "error", err)
		s.setContent(assistantMsg.ID, err.Error())
		s.finalize(ctx, userMsg.ID, assistantMsg.ID)
		return err
	}
	defer stream.Close()

	streamErr := s.consume(ctx, stream, assistantMsg.ID)

	if streamErr != nil && s.contentOf(assistantMsg.ID) == "" {
		// nothing was shown yet, so the error text takes the message's place
		s.setContent(assistantMsg.ID, streamErr.Error())
	}
	s.finalize(ctx, userMsg.ID, assistantMsg.ID)
	return streamErr
}

// consume drains the stream into the in-flight message. It returns the
// terminal error, or nil on natural completion.
func (s *Store) consume(ctx context.Context, stream *api.Stream, msgID string) error {
	for {
		ev, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if ev.Content == "" {
			continue
		}
		s.appendFragment(msgID, ev.Content)
	}
}

// history maps the transcript (minus the empty placeholder) to the neutral
// wire form.
func (s *Store) history(placeholderID string) []api.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]api.Message, 0, len(s.messages))
	for _, m := range s.messages {
		if m.ID == placeholderID {
			continue
		}
		role := api.RoleUser
		if m.IsAI {
			role = api.RoleAssistant
		}
		history = append(history, api.Message{Role: role, Content: m.Content})
	}
	return history
}

// appendFragment grows the in-flight message's content. The transcript is
// replaced wholesale so concurrent readers never observe a half-applied
// update.
func (s *Store) appendFragment(id, delta string) {
	s.mu.Lock()
	s.messages = updateMessage(s.messages, id, func(m *models.ChatMessage) {
		m.Content += delta
	})
	sink := s.onDelta
	s.mu.Unlock()

	if sink != nil {
		sink(id, delta)
	}
}

func (s *Store) setContent(id, content string) {
	s.mu.Lock()
	s.messages = updateMessage(s.messages, id, func(m *models.ChatMessage) {
		m.Content = content
	})
	s.mu.Unlock()
}

func (s *Store) contentOf(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			return m.Content
		}
	}
	return ""
}

// finalize writes the finalized pair to the local transcript history.
// Best-effort: storage failures are logged, never surfaced.
func (s *Store) finalize(ctx context.Context, ids ...string) {
	if s.transcripts == nil {
		return
	}

	s.mu.Lock()
	var final []models.ChatMessage
	for _, m := range s.messages {
		for _, id := range ids {
			if m.ID == id {
				final = append(final, m)
			}
		}
	}
	s.mu.Unlock()

	for _, m := range final {
		if err := s.transcripts.Append(ctx, m); err != nil {
			s.log.Warn(ctx, "failed to store transcript message", "error", err, "id", m.ID)
		}
	}
}

func newMessage(content string, isAI bool) models.ChatMessage {
	return models.ChatMessage{
		ID:        uuid.NewString(),
		Content:   content,
		IsAI:      isAI,
		CreatedAt: time.Now(),
	}
}

// appendMessage and updateMessage implement copy-on-write mutation of the
// transcript slice.
func appendMessage(messages []models.ChatMessage, msg models.ChatMessage) []models.ChatMessage {
	next := make([]models.ChatMessage, len(messages), len(messages)+1)
	copy(next, messages)
	return append(next, msg)
}

func updateMessage(messages []models.ChatMessage, id string, fn func(*models.ChatMessage)) []models.ChatMessage {
	next := make([]models.ChatMessage, len(messages))
	copy(next, messages)
	for i := range next {
		if next[i].ID == id {
			fn(&next[i])
			break
		}
	}
	return next
}
