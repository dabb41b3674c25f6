package gateway

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/diogo/gatewaychat/internal/models"
)

// Script describes how one Chat call behaves
type Script struct {
	// OpenErr is returned by Chat instead of a stream.
	OpenErr error
	// Fragments are yielded in order by Recv.
	Fragments []Fragment
	// RecvErr is returned after the fragments instead of io.EOF.
	RecvErr error
	// Hang makes Recv block after the fragments until the context ends.
	Hang bool
}

// TextFragments builds gateway-style {"text": ...} fragments
func TextFragments(parts ...string) []Fragment {
	out := make([]Fragment, len(parts))
	for i, p := range parts {
		b, _ := json.Marshal(map[string]string{"text": p})
		out[i] = b
	}
	return out
}

// Call records one Chat invocation
type Call struct {
	Messages []models.ChatMessage
	Options  ChatOptions
}

// ScriptedClient replays scripts in order. When the scripts run out the
// last one is reused.
type ScriptedClient struct {
	mu      sync.Mutex
	scripts []Script
	calls   []Call
}

// NewScriptedClient creates a client that plays the given scripts
func NewScriptedClient(scripts ...Script) *ScriptedClient {
	return &ScriptedClient{scripts: scripts}
}

// Name returns the provider name
func (c *ScriptedClient) Name() string { return "scripted" }

// Calls returns the recorded invocations
func (c *ScriptedClient) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// Chat records the call and plays the next script
func (c *ScriptedClient) Chat(ctx context.Context, messages []models.ChatMessage, opts ChatOptions) (Stream, error) {
	c.mu.Lock()
	msgs := make([]models.ChatMessage, len(messages))
	copy(msgs, messages)
	if opts.Temperature != nil {
		t := *opts.Temperature
		opts.Temperature = &t
	}
	c.calls = append(c.calls, Call{Messages: msgs, Options: opts})

	var script Script
	if n := len(c.calls); n <= len(c.scripts) {
		script = c.scripts[n-1]
	} else if len(c.scripts) > 0 {
		script = c.scripts[len(c.scripts)-1]
	}
	c.mu.Unlock()

	if script.OpenErr != nil {
		return nil, script.OpenErr
	}
	return &scriptedStream{ctx: ctx, script: script}, nil
}

type scriptedStream struct {
	ctx    context.Context
	script Script
	pos    int
}

func (s *scriptedStream) Recv() (Fragment, error) {
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos < len(s.script.Fragments) {
		f := s.script.Fragments[s.pos]
		s.pos++
		return f, nil
	}
	if s.script.Hang {
		<-s.ctx.Done()
		return nil, s.ctx.Err()
	}
	if s.script.RecvErr != nil {
		return nil, s.script.RecvErr
	}
	return nil, io.EOF
}

func (s *scriptedStream) Close() error { return nil }
