// Package shell holds the live selection and the open conversation, and maps
// user actions onto the session, orchestrator and store.
package shell

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/diogo/gatewaychat/internal/chat"
	apierrors "github.com/diogo/gatewaychat/internal/errors"
	"github.com/diogo/gatewaychat/internal/gateway"
	"github.com/diogo/gatewaychat/internal/history"
	"github.com/diogo/gatewaychat/internal/models"
	"github.com/diogo/gatewaychat/internal/session"
)

// RecentLimit is how many conversations the sidebar lists
const RecentLimit = 10

// Suggestion is a canned prompt offered on an empty conversation
type Suggestion struct {
	Text   string
	Prompt string
}

var suggestions = []Suggestion{
	{
		Text:   "Explain quantum computing simply",
		Prompt: "Explain quantum computing in a simple way that a 10-year-old can understand",
	},
	{
		Text:   "Write a Python function...",
		Prompt: "Write a Python function that computes the Fibonacci sequence",
	},
	{
		Text:   "Compare GPT-5 vs Claude 4",
		Prompt: "What are the differences between GPT-5 and Claude 4? Which is best for different tasks?",
	},
	{
		Text:   "Help me debug my code",
		Prompt: "Can you help me debug my code and explain what is wrong with it?",
	},
}

// Suggestions returns the canned prompts
func Suggestions() []Suggestion {
	out := make([]Suggestion, len(suggestions))
	copy(out, suggestions)
	return out
}

// Shell is the top-level state holder
type Shell struct {
	store   *history.Store
	client  gateway.Client
	presets []models.Preset

	log         *zap.Logger
	chatOpts    []chat.Option
	sessionOpts []session.Option

	// ephemeral selections are never written back to settings
	ephemeral bool

	mu   sync.Mutex
	sel  models.Selection
	orch *chat.Orchestrator
}

// Option configures a Shell
type Option func(*Shell)

// WithPresets sets the preset list (built-ins merged with user presets)
func WithPresets(p []models.Preset) Option {
	return func(s *Shell) { s.presets = p }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.log = l
		}
	}
}

// WithDefaultSelection sets the selection used when no settings are stored
func WithDefaultSelection(sel models.Selection) Option {
	return func(s *Shell) { s.sel = sel }
}

// WithChatOptions passes options to every orchestrator the shell creates
func WithChatOptions(opts ...chat.Option) Option {
	return func(s *Shell) { s.chatOpts = append(s.chatOpts, opts...) }
}

// WithSessionOptions passes options to every session the shell creates
func WithSessionOptions(opts ...session.Option) Option {
	return func(s *Shell) { s.sessionOpts = append(s.sessionOpts, opts...) }
}

// WithEphemeralSelection keeps selection changes out of the stored settings.
// One-shot sends use it so their flags do not leak into the next chat.
func WithEphemeralSelection() Option {
	return func(s *Shell) { s.ephemeral = true }
}

// New reads the stored settings once and opens an empty conversation
func New(store *history.Store, client gateway.Client, opts ...Option) *Shell {
	s := &Shell{
		store:   store,
		client:  client,
		presets: models.DefaultPresets(),
		log:     zap.NewNop(),
		sel:     models.DefaultSelection(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if settings, ok := store.GetSettings(); ok {
		s.sel = selectionFromSettings(settings, s.sel)
	}
	s.orch = s.newOrchestrator(session.Start(store, s.params(), s.sessionOpts...))
	return s
}

func selectionFromSettings(st history.Settings, fallback models.Selection) models.Selection {
	sel := models.Selection{
		Model:        st.SelectedModel,
		Temperature:  st.Temperature,
		SystemPrompt: st.SystemPrompt,
		PresetID:     st.PresetID,
	}
	if sel.Model == "" {
		sel.Model = fallback.Model
	}
	if !models.ValidTemperature(sel.Temperature) {
		sel.Temperature = fallback.Temperature
	}
	return sel
}

func (s *Shell) params() session.Params {
	return session.Params{
		Model:        s.sel.Model,
		Temperature:  s.sel.Temperature,
		SystemPrompt: s.sel.SystemPrompt,
		PresetID:     s.sel.PresetID,
	}
}

func (s *Shell) newOrchestrator(sess *session.Session) *chat.Orchestrator {
	opts := append([]chat.Option{chat.WithLogger(s.log.Named("chat"))}, s.chatOpts...)
	return chat.New(s.client, sess, opts...)
}

// saveSettings must be called with s.mu held
func (s *Shell) saveSettings() {
	if s.ephemeral {
		return
	}
	s.store.SaveSettings(history.Settings{
		SelectedModel: s.sel.Model,
		Temperature:   s.sel.Temperature,
		SystemPrompt:  s.sel.SystemPrompt,
		PresetID:      s.sel.PresetID,
	})
}

// Selection returns the current selection
func (s *Shell) Selection() models.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// Presets returns the available presets
func (s *Shell) Presets() []models.Preset {
	out := make([]models.Preset, len(s.presets))
	copy(out, s.presets)
	return out
}

// Orchestrator returns the orchestrator of the open conversation
func (s *Shell) Orchestrator() *chat.Orchestrator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orch
}

// Session returns the open conversation
func (s *Shell) Session() *session.Session {
	return s.Orchestrator().Session()
}

// Busy reports whether a send is in flight
func (s *Shell) Busy() bool {
	return s.Orchestrator().State() != chat.Idle
}

// NewChat stops any in-flight send and opens an empty conversation
func (s *Shell) NewChat() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orch.Stop()
	s.orch = s.newOrchestrator(session.Start(s.store, s.params(), s.sessionOpts...))
	s.log.Debug("new chat", zap.String("conversation", s.orch.Session().ID()))
}

// LoadConversation opens a stored conversation and adopts its model,
// temperature, system prompt and preset as the live selection.
func (s *Shell) LoadConversation(id string) (history.Conversation, error) {
	conv, ok := s.store.GetConversation(id)
	if !ok {
		return history.Conversation{}, fmt.Errorf("%w: %s", apierrors.ErrConversationMissing, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.orch.Stop()
	s.orch = s.newOrchestrator(session.Resume(s.store, conv, s.sessionOpts...))

	if conv.Model != "" {
		s.sel.Model = conv.Model
	}
	if models.ValidTemperature(conv.Temperature) {
		s.sel.Temperature = conv.Temperature
	}
	s.sel.SystemPrompt = conv.SystemPrompt
	s.sel.PresetID = conv.PresetID
	s.saveSettings()

	s.log.Debug("conversation loaded", zap.String("conversation", id), zap.Int("messages", len(conv.Messages)))
	return conv, nil
}

// DeleteConversation removes a stored conversation. Deleting the open one
// starts a new chat.
func (s *Shell) DeleteConversation(id string) {
	s.store.DeleteConversation(id)

	s.mu.Lock()
	open := s.orch.Session().ID() == id
	s.mu.Unlock()

	if open {
		s.NewChat()
	}
}

// SelectModel changes the model used for the next send
func (s *Shell) SelectModel(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("model id is empty")
	}
	if _, ok := models.ModelByID(id); !ok {
		s.log.Warn("model not in catalog", zap.String("model", id))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Model = id
	s.saveSettings()
	return nil
}

// SetTemperature changes the sampling temperature
func (s *Shell) SetTemperature(t float64) error {
	if !models.ValidTemperature(t) {
		return fmt.Errorf("%w: %v", apierrors.ErrInvalidTemperature, t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Temperature = t
	s.saveSettings()
	return nil
}

// SetSystemPrompt replaces the system prompt
func (s *Shell) SetSystemPrompt(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.SystemPrompt = prompt
	s.saveSettings()
}

// SelectPreset applies a preset. An empty id only detaches the selection
// from its preset.
func (s *Shell) SelectPreset(id string) error {
	var p models.Preset
	if id != "" {
		var ok bool
		if p, ok = models.PresetByID(s.presets, id); !ok {
			return fmt.Errorf("%w: %s", apierrors.ErrUnknownPreset, id)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		s.sel = models.ClearPreset(s.sel)
	} else {
		s.sel = models.ApplyPreset(s.sel, p)
	}
	s.saveSettings()
	return nil
}

// Send sends text in the open conversation with the current selection
func (s *Shell) Send(ctx context.Context, text string) (chat.Result, error) {
	s.mu.Lock()
	orch := s.orch
	sel := s.sel
	s.mu.Unlock()

	return orch.Send(ctx, text, sel)
}

// Stop aborts the in-flight send
func (s *Shell) Stop() {
	s.Orchestrator().Stop()
}

// SuggestionClick sends the prompt of suggestion n (0-based)
func (s *Shell) SuggestionClick(ctx context.Context, n int) (chat.Result, error) {
	if n < 0 || n >= len(suggestions) {
		return chat.Result{}, fmt.Errorf("suggestion %d out of range (1-%d)", n+1, len(suggestions))
	}
	return s.Send(ctx, suggestions[n].Prompt)
}

// Recent returns the most recently updated conversations
func (s *Shell) Recent(limit int) []history.Conversation {
	return s.store.Recent(limit)
}
