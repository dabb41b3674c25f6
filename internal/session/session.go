// Package session holds the working copy of the conversation being edited.
package session

import (
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/diogo/gatewaychat/internal/history"
	"github.com/diogo/gatewaychat/internal/models"
)

// Title rules
const (
	PlaceholderTitle = "New conversation"
	MaxTitleRunes    = 50
)

// Params are the send parameters recorded on a conversation
type Params struct {
	Model        string
	Temperature  float64
	SystemPrompt string
	PresetID     string
}

// Saver persists conversations. *history.Store satisfies it.
type Saver interface {
	SaveConversation(c history.Conversation)
}

// Session is the in-memory working copy of one conversation. It is the
// source of truth for the UI until flushed to the store.
type Session struct {
	mu    sync.Mutex
	conv  history.Conversation
	store Saver
	now   func() time.Time
	newID func() string
}

// Option configures a Session
type Option func(*Session)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator overrides the id source
func WithIDGenerator(gen func() string) Option {
	return func(s *Session) { s.newID = gen }
}

func newSession(store Saver, opts []Option) *Session {
	s := &Session{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins a fresh conversation with no messages
func Start(store Saver, p Params, opts ...Option) *Session {
	s := newSession(store, opts)
	ts := s.now().UnixMilli()
	s.conv = history.Conversation{
		ID:           s.newID(),
		Title:        PlaceholderTitle,
		Messages:     []history.Message{},
		Model:        p.Model,
		Temperature:  p.Temperature,
		SystemPrompt: p.SystemPrompt,
		PresetID:     p.PresetID,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	return s
}

// Resume adopts a stored conversation verbatim
func Resume(store Saver, existing history.Conversation, opts ...Option) *Session {
	s := newSession(store, opts)
	s.conv = existing.Clone()
	return s
}

// ID returns the conversation id
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.ID
}

// Conversation returns a copy of the working conversation
func (s *Session) Conversation() history.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Clone()
}

// Messages returns a copy of the working message log
func (s *Session) Messages() []history.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]history.Message, len(s.conv.Messages))
	copy(out, s.conv.Messages)
	return out
}

// IsEmpty reports whether the log has no messages
func (s *Session) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conv.Messages) == 0
}

// AppendUserMessage adds a user turn to the working log
func (s *Session) AppendUserMessage(content string) history.Message {
	return s.append(models.RoleUser, content, "")
}

// AppendAssistantMessage adds an assistant turn labelled with the model that
// produced it. Empty content is dropped and ok is false.
func (s *Session) AppendAssistantMessage(content, modelLabel string) (msg history.Message, ok bool) {
	if content == "" {
		return history.Message{}, false
	}
	return s.append(models.RoleAssistant, content, modelLabel), true
}

func (s *Session) append(role, content, label string) history.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := history.Message{
		ID:        s.newID(),
		Role:      role,
		Content:   content,
		Timestamp: s.now().UnixMilli(),
		Model:     label,
	}
	s.conv.Messages = append(s.conv.Messages, msg)
	return msg
}

// Configure records the parameters used for the latest send
func (s *Session) Configure(p Params) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conv.Model = p.Model
	s.conv.Temperature = p.Temperature
	s.conv.SystemPrompt = p.SystemPrompt
	s.conv.PresetID = p.PresetID
}

// Flush recomputes the title, stamps updatedAt and saves the conversation.
// A conversation without messages is never saved.
func (s *Session) Flush() {
	s.mu.Lock()
	if len(s.conv.Messages) == 0 {
		s.mu.Unlock()
		return
	}

	s.conv.Title = DeriveTitle(s.conv.Messages)
	updated := s.now().UnixMilli()
	if updated < s.conv.CreatedAt {
		updated = s.conv.CreatedAt
	}
	s.conv.UpdatedAt = updated
	snapshot := s.conv.Clone()
	s.mu.Unlock()

	s.store.SaveConversation(snapshot)
}

// DeriveTitle returns the first 50 runes of the first message, with "..."
// appended when truncated, or the placeholder title when there are none.
func DeriveTitle(messages []history.Message) string {
	if len(messages) == 0 {
		return PlaceholderTitle
	}

	content := messages[0].Content
	if utf8.RuneCountInString(content) <= MaxTitleRunes {
		return content
	}
	runes := []rune(content)
	return string(runes[:MaxTitleRunes]) + "..."
}
