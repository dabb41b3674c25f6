// Package history provides local conversation history storage.
package history

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	apierrors "github.com/diogo/gatewaychat/internal/errors"
	"github.com/diogo/gatewaychat/internal/metrics"
)

// Message represents a single message in a conversation
type Message struct {
	ID        string `json:"id"`
	Role      string `json:"role"` // "user", "assistant" or "system"
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // epoch millis
	Model     string `json:"model,omitempty"`
}

// Conversation represents a complete chat conversation
type Conversation struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Messages     []Message `json:"messages"`
	Model        string    `json:"model"`
	Temperature  float64   `json:"temperature"`
	SystemPrompt string    `json:"systemPrompt,omitempty"`
	PresetID     string    `json:"presetId,omitempty"`
	CreatedAt    int64     `json:"createdAt"` // epoch millis
	UpdatedAt    int64     `json:"updatedAt"` // epoch millis
}

// Clone returns a deep copy so callers never share the message slice
func (c Conversation) Clone() Conversation {
	out := c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}

// Created returns CreatedAt as a time.Time
func (c Conversation) Created() time.Time { return time.UnixMilli(c.CreatedAt) }

// Updated returns UpdatedAt as a time.Time
func (c Conversation) Updated() time.Time { return time.UnixMilli(c.UpdatedAt) }

// Settings is the persisted selection of the user
type Settings struct {
	SelectedModel string  `json:"selectedModel"`
	Temperature   float64 `json:"temperature"`
	SystemPrompt  string  `json:"systemPrompt"`
	PresetID      string  `json:"presetId"`
}

// Store manages conversation history persistence. Every operation is
// fail-soft: backend and decoding failures are logged and counted, and the
// caller sees an empty result or a no-op.
type Store struct {
	backend Backend
	log     *zap.Logger
	mu      sync.Mutex
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithLogger sets the logger used for swallowed failures
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStore creates a store over the given backend
func NewStore(backend Backend, opts ...StoreOption) *Store {
	s := &Store{
		backend: backend,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend kinds accepted by OpenBackend
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// OpenBackend opens a backend of the given kind rooted at dir
func OpenBackend(kind, dir string) (Backend, error) {
	switch kind {
	case "", BackendFile:
		return NewFileBackend(filepath.Join(dir, "data"))
	case BackendSQLite:
		return NewSQLiteBackend(filepath.Join(dir, "gatewaychat.db"))
	case BackendMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", kind)
	}
}

// Close releases the backend
func (s *Store) Close() error {
	return s.backend.Close()
}

// ListConversations returns every stored conversation in storage order
func (s *Store) ListConversations() []Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadConversations()
}

// GetConversation retrieves a conversation by ID
func (s *Store) GetConversation(id string) (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.loadConversations() {
		if c.ID == id {
			return c, true
		}
	}
	return Conversation{}, false
}

// SaveConversation inserts c, or replaces the stored record with the same ID
// in place.
func (s *Store) SaveConversation(c Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversations := s.loadConversations()
	replaced := false
	for i := range conversations {
		if conversations[i].ID == c.ID {
			conversations[i] = c.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		conversations = append(conversations, c.Clone())
	}

	s.writeJSON("save_conversation", KeyConversations, conversations)
}

// DeleteConversation removes a conversation. Unknown IDs are ignored.
func (s *Store) DeleteConversation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversations := s.loadConversations()
	kept := conversations[:0]
	for _, c := range conversations {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(conversations) {
		return
	}

	s.writeJSON("delete_conversation", KeyConversations, kept)
}

// SaveSettings replaces the settings record
func (s *Store) SaveSettings(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writeJSON("save_settings", KeySettings, settings)
}

// GetSettings returns the stored settings, if any
func (s *Store) GetSettings() (Settings, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var settings Settings
	if !s.readJSON("get_settings", KeySettings, &settings) {
		return Settings{}, false
	}
	return settings, true
}

// ClearAll deletes all conversations and the settings record
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{KeyConversations, KeySettings} {
		if err := s.backend.Remove(key); err != nil {
			s.fail("clear_all", apierrors.NewStorageError("remove", key, err))
		}
	}
}

// Recent returns up to limit conversations, most recently updated first.
// A limit <= 0 returns all of them.
func (s *Store) Recent(limit int) []Conversation {
	conversations := s.ListConversations()
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt > conversations[j].UpdatedAt
	})
	if limit > 0 && len(conversations) > limit {
		conversations = conversations[:limit]
	}
	return conversations
}

// Internal methods

func (s *Store) loadConversations() []Conversation {
	var conversations []Conversation
	if !s.readJSON("list_conversations", KeyConversations, &conversations) {
		return []Conversation{}
	}
	if conversations == nil {
		conversations = []Conversation{}
	}
	return conversations
}

func (s *Store) readJSON(op, key string, v any) bool {
	raw, ok, err := s.backend.Get(key)
	if err != nil {
		s.fail(op, apierrors.NewStorageError("get", key, err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.fail(op, apierrors.NewStorageError("decode", key, err))
		return false
	}
	return true
}

func (s *Store) writeJSON(op, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.fail(op, apierrors.NewStorageError("encode", key, err))
		return
	}
	if err := s.backend.Set(key, string(data)); err != nil {
		s.fail(op, apierrors.NewStorageError("set", key, err))
	}
}

func (s *Store) fail(op string, err error) {
	metrics.StoreErrors.WithLabelValues(op).Inc()
	s.log.Error("storage operation failed", zap.String("op", op), zap.Error(err))
}
