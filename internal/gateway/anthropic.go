package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/gatewaychat/internal/errors"
	"github.com/diogo/gatewaychat/internal/models"
)

const anthropicMaxTokens = 4096

// anthropicModelIDs maps catalog ids to API model names
var anthropicModelIDs = map[string]string{
	"claude":            "claude-sonnet-4-20250514",
	"claude-sonnet-4":   "claude-sonnet-4-20250514",
	"claude-3.7-sonnet": "claude-3-7-sonnet-latest",
}

// AnthropicClient talks to the Anthropic Messages API directly
type AnthropicClient struct {
	client *anthropic.Client
}

// NewAnthropicClient creates a client for apiKey
func NewAnthropicClient(apiKey, baseURL string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, apierrors.ErrNoToken
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &AnthropicClient{client: anthropic.NewClient(opts...)}, nil
}

// Name returns the provider name
func (c *AnthropicClient) Name() string { return ProviderAnthropic }

func buildAnthropicParams(messages []models.ChatMessage, opts ChatOptions) anthropic.MessageNewParams {
	model := opts.Model
	if id, ok := anthropicModelIDs[model]; ok {
		model = id
	}

	var system []anthropic.TextBlockParam
	var turns []anthropic.MessageParam
	for _, m := range messages {
		block := anthropic.TextBlockParam{
			Type: anthropic.F(anthropic.TextBlockParamTypeText),
			Text: anthropic.F(m.Content),
		}
		if m.Role == models.RoleSystem {
			system = append(system, block)
			continue
		}
		turns = append(turns, anthropic.MessageParam{
			Role:    anthropic.F(anthropic.MessageParamRole(m.Role)),
			Content: anthropic.F([]anthropic.ContentBlockParamUnion{block}),
		})
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.F(model),
		MaxTokens: anthropic.F(int64(anthropicMaxTokens)),
		Messages:  anthropic.F(turns),
	}
	if len(system) > 0 {
		params.System = anthropic.F(system)
	}
	if opts.Temperature != nil {
		params.Temperature = anthropic.F(*opts.Temperature)
	}
	return params
}

// Chat opens a message stream. The first event is read eagerly so request
// rejections surface here rather than from Recv.
func (c *AnthropicClient) Chat(ctx context.Context, messages []models.ChatMessage, opts ChatOptions) (Stream, error) {
	params := buildAnthropicParams(messages, opts)
	stream := c.client.Messages.NewStreaming(ctx, params)

	s := &anthropicStream{ctx: ctx, stream: stream}
	if !stream.Next() {
		if err := stream.Err(); err != nil {
			stream.Close()
			return nil, mapAnthropicError(ctx, err)
		}
		s.done = true
	} else {
		s.primed = true
	}
	return s, nil
}

type anthropicStream struct {
	ctx    context.Context
	stream interface {
		Next() bool
		Current() anthropic.MessageStreamEvent
		Err() error
		Close() error
	}
	primed bool
	done   bool
}

func (s *anthropicStream) Recv() (Fragment, error) {
	for !s.done {
		if s.primed {
			s.primed = false
		} else if !s.stream.Next() {
			s.done = true
			break
		}

		event := s.stream.Current()
		if event.Type != anthropic.MessageStreamEventTypeContentBlockDelta || event.Delta.Type != "text_delta" {
			continue
		}
		return json.Marshal(map[string]any{"delta": map[string]string{"text": event.Delta.Text}})
	}

	if err := s.stream.Err(); err != nil {
		return nil, mapAnthropicError(s.ctx, err)
	}
	return nil, io.EOF
}

func (s *anthropicStream) Close() error {
	return s.stream.Close()
}

// mapAnthropicError turns SDK errors into the shared error types. The API
// reports invalid fields as "<param>: <reason>" in the message.
func mapAnthropicError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return apierrors.NewNetworkError("open stream", err)
	}

	text := apiErr.Error()
	var code, message string
	if i := strings.Index(text, "{"); i >= 0 {
		body := text[i:]
		code = gjson.Get(body, "error.type").String()
		message = gjson.Get(body, "error.message").String()
	}
	if message == "" {
		message = text
	}

	var param string
	if field, _, ok := strings.Cut(message, ":"); ok && !strings.Contains(field, " ") {
		param = field
	}

	return apierrors.NewProviderError(ProviderAnthropic, apiErr.StatusCode, code, param, message)
}
