package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/sashabaranov/go-openai"

	apierrors "github.com/diogo/gatewaychat/internal/errors"
	"github.com/diogo/gatewaychat/internal/models"
)

// OpenAIClient talks to any OpenAI-compatible endpoint
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a client for apiKey. An empty baseURL uses the
// public OpenAI API.
func NewOpenAIClient(apiKey, baseURL string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, apierrors.ErrNoToken
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIClient{client: openai.NewClientWithConfig(cfg)}, nil
}

// Name returns the provider name
func (c *OpenAIClient) Name() string { return ProviderOpenAI }

func buildOpenAIRequest(messages []models.ChatMessage, opts ChatOptions) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	req := openai.ChatCompletionRequest{
		Model:    opts.Model,
		Messages: msgs,
		Stream:   opts.Stream,
	}
	if opts.Temperature != nil {
		req.Temperature = float32(*opts.Temperature)
		// the request field is omitempty; this keeps an explicit zero on the wire
		if req.Temperature == 0 {
			req.Temperature = math.SmallestNonzeroFloat32
		}
	}
	return req
}

// Chat opens a chat completion
func (c *OpenAIClient) Chat(ctx context.Context, messages []models.ChatMessage, opts ChatOptions) (Stream, error) {
	req := buildOpenAIRequest(messages, opts)

	if !opts.Stream {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return nil, mapOpenAIError(ctx, err)
		}
		var content string
		if len(resp.Choices) > 0 {
			content = resp.Choices[0].Message.Content
		}
		frag, err := json.Marshal(map[string]any{"message": map[string]string{"content": content}})
		if err != nil {
			return nil, err
		}
		return &singleStream{frag: frag}, nil
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, mapOpenAIError(ctx, err)
	}
	return &openAIStream{ctx: ctx, stream: stream}, nil
}

type openAIStream struct {
	ctx    context.Context
	stream *openai.ChatCompletionStream
}

func (s *openAIStream) Recv() (Fragment, error) {
	resp, err := s.stream.Recv()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, mapOpenAIError(s.ctx, err)
	}
	return json.Marshal(resp)
}

func (s *openAIStream) Close() error {
	return s.stream.Close()
}

// mapOpenAIError turns SDK errors into the shared error types
func mapOpenAIError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		var code string
		switch v := apiErr.Code.(type) {
		case string:
			code = v
		case nil:
			code = apiErr.Type
		default:
			code = fmt.Sprint(v)
		}
		var param string
		if apiErr.Param != nil {
			param = *apiErr.Param
		}
		return apierrors.NewProviderError(ProviderOpenAI, apiErr.HTTPStatusCode, code, param, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return apierrors.NewProviderError(ProviderOpenAI, reqErr.HTTPStatusCode, "", "", reqErr.Error())
	}

	return apierrors.NewNetworkError("open stream", err)
}
