// Package gateway talks to the AI gateway and the providers behind it.
//
// Every driver returns a Stream of raw JSON fragments. Drivers do not agree
// on the fragment shape, so the chat layer reads them through FragmentText
// only.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/diogo/gatewaychat/internal/models"
)

// Provider names accepted by New
const (
	ProviderPuter     = "puter"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// ChatOptions are the per-call parameters. A nil Temperature means the field
// is left out of the request entirely.
type ChatOptions struct {
	Model       string
	Temperature *float64
	Stream      bool
}

// Fragment is one raw JSON element of a streamed answer
type Fragment []byte

// Stream yields fragments until Recv returns io.EOF
type Stream interface {
	Recv() (Fragment, error)
	Close() error
}

// Client opens chat streams against a provider
type Client interface {
	Name() string
	Chat(ctx context.Context, messages []models.ChatMessage, opts ChatOptions) (Stream, error)
}

// fragmentPaths are the shapes a fragment may take, checked in order.
var fragmentPaths = []string{
	"text",                    // gateway text chunk
	"message.content.0.text",  // non-streamed content-block answer
	"message.content",         // non-streamed string answer
	"choices.0.delta.content", // OpenAI-style chunk
	"delta.text",              // Anthropic-style delta
}

// FragmentText extracts the text carried by a fragment. Unknown shapes and
// non-string values yield "".
func FragmentText(f Fragment) string {
	if len(f) == 0 || !gjson.ValidBytes(f) {
		return ""
	}
	results := gjson.GetManyBytes(f, fragmentPaths...)
	for _, r := range results {
		if r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}

// Config selects and configures a driver
type Config struct {
	Provider string
	BaseURL  string
	// Driver overrides the gateway driver chosen from the model category.
	Driver  string
	Token   string
	Timeout time.Duration
}

// New builds the client for cfg.Provider
func New(cfg Config) (Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}

	switch cfg.Provider {
	case "", ProviderPuter:
		return NewPuterClient(cfg.Token,
			WithBaseURL(cfg.BaseURL),
			WithDriver(cfg.Driver),
			WithTimeout(cfg.Timeout),
		)
	case ProviderOpenAI:
		return NewOpenAIClient(cfg.Token, cfg.BaseURL)
	case ProviderAnthropic:
		return NewAnthropicClient(cfg.Token, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown gateway provider: %s", cfg.Provider)
	}
}
