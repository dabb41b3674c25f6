package tui

import (
	"context"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/gatewaychat/internal/chat"
)

// Messages delivered from the orchestrator callbacks
type (
	// streamUpdateMsg carries the running buffer of send gen
	streamUpdateMsg struct {
		gen     uint64
		content string
	}
	// notifyMsg carries a failure notification
	notifyMsg struct {
		n chat.Notification
	}
)

const eventBuffer = 64

// Events bridges orchestrator callbacks, which run on the send goroutine,
// into the bubbletea message loop.
type Events struct {
	ch  chan tea.Msg
	gen atomic.Uint64
}

// NewEvents creates an event bridge
func NewEvents() *Events {
	return &Events{ch: make(chan tea.Msg, eventBuffer)}
}

// ChatOptions returns the orchestrator options that feed this bridge. Pass
// them to the shell so every new conversation reports here. Running-buffer
// updates are bound per send through track.
func (e *Events) ChatOptions() []chat.Option {
	return []chat.Option{
		chat.WithNotifier(chat.NotifierFunc(e.notify)),
	}
}

// begin starts a new send generation; updates from older sends are dropped
func (e *Events) begin() uint64 {
	return e.gen.Add(1)
}

func (e *Events) current() uint64 {
	return e.gen.Load()
}

// track returns ctx carrying an update handler bound to send gen
func (e *Events) track(ctx context.Context, gen uint64) context.Context {
	return chat.WithUpdates(ctx, e.updater(gen))
}

func (e *Events) updater(gen uint64) func(content string) {
	return func(content string) {
		msg := streamUpdateMsg{gen: gen, content: content}
		// dropped when the loop is behind; the finished send carries the full text
		select {
		case e.ch <- msg:
		default:
		}
	}
}

func (e *Events) notify(n chat.Notification) {
	select {
	case e.ch <- notifyMsg{n: n}:
	default:
	}
}

// wait returns a command that blocks for the next event
func (e *Events) wait() tea.Cmd {
	return func() tea.Msg {
		return <-e.ch
	}
}
