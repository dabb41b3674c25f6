package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/gatewaychat/internal/errors"
	"github.com/diogo/gatewaychat/internal/models"
)

// DefaultPuterBaseURL is the managed gateway endpoint
const DefaultPuterBaseURL = "https://api.puter.com"

const puterInterface = "puter-chat-completion"

// drivers maps catalog categories to gateway drivers
var drivers = map[string]string{
	"OpenAI":    "openai-completion",
	"Anthropic": "claude",
	"Google":    "openrouter",
	"xAI":       "xai",
	"Meta":      "openrouter",
	"DeepSeek":  "deepseek",
	"Cohere":    "openrouter",
}

// PuterClient calls the managed gateway's driver endpoint
type PuterClient struct {
	httpClient tls_client.HttpClient
	token      string
	baseURL    string
	driver     string
	timeout    time.Duration
}

// PuterOption configures a PuterClient
type PuterOption func(*PuterClient)

// WithBaseURL overrides the gateway endpoint
func WithBaseURL(url string) PuterOption {
	return func(c *PuterClient) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithDriver pins every request to one gateway driver
func WithDriver(driver string) PuterOption {
	return func(c *PuterClient) {
		c.driver = driver
	}
}

// WithTimeout sets the request timeout
func WithTimeout(d time.Duration) PuterOption {
	return func(c *PuterClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the transport, mainly for tests
func WithHTTPClient(hc tls_client.HttpClient) PuterOption {
	return func(c *PuterClient) {
		c.httpClient = hc
	}
}

// NewPuterClient creates a gateway client authenticated with token
func NewPuterClient(token string, opts ...PuterOption) (*PuterClient, error) {
	if token == "" {
		return nil, apierrors.ErrNoToken
	}

	c := &PuterClient{
		token:   token,
		baseURL: DefaultPuterBaseURL,
		timeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(c.timeout.Seconds())),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}
		hc, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		c.httpClient = hc
	}

	return c, nil
}

// Name returns the provider name
func (c *PuterClient) Name() string { return ProviderPuter }

// DriverFor returns the gateway driver used for a model
func (c *PuterClient) DriverFor(model string) string {
	if c.driver != "" {
		return c.driver
	}
	if m, ok := models.ModelByID(model); ok {
		if d, ok := drivers[m.Category]; ok {
			return d
		}
	}
	return "openai-completion"
}

type puterArgs struct {
	Messages    []models.ChatMessage `json:"messages"`
	Model       string               `json:"model"`
	Stream      bool                 `json:"stream"`
	Temperature *float64             `json:"temperature,omitempty"`
}

type puterRequest struct {
	Interface string    `json:"interface"`
	Driver    string    `json:"driver"`
	Method    string    `json:"method"`
	Args      puterArgs `json:"args"`
}

func (c *PuterClient) buildBody(messages []models.ChatMessage, opts ChatOptions) ([]byte, error) {
	return json.Marshal(puterRequest{
		Interface: puterInterface,
		Driver:    c.DriverFor(opts.Model),
		Method:    "complete",
		Args: puterArgs{
			Messages:    messages,
			Model:       opts.Model,
			Stream:      opts.Stream,
			Temperature: opts.Temperature,
		},
	})
}

// Chat opens a completion on the gateway
func (c *PuterClient) Chat(ctx context.Context, messages []models.ChatMessage, opts ChatOptions) (Stream, error) {
	body, err := c.buildBody(messages, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/drivers/call", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Origin", "https://puter.com")
	req.Header.Set("Referer", "https://puter.com/")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apierrors.NewNetworkError("open stream", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		if perr := parseErrorBody(ProviderPuter, resp.StatusCode, data); perr != nil {
			return nil, perr
		}
		return nil, apierrors.NewProviderError(ProviderPuter, resp.StatusCode, "", "", strings.TrimSpace(string(data)))
	}

	if !opts.Stream {
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, apierrors.NewNetworkError("read response", err)
		}
		if gjson.GetBytes(data, "error").Exists() {
			if perr := parseErrorBody(ProviderPuter, 0, data); perr != nil {
				return nil, perr
			}
		}
		// non-streamed answers come wrapped as {"success":true,"result":{...}}
		if result := gjson.GetBytes(data, "result"); result.Exists() {
			data = []byte(result.Raw)
		}
		return &singleStream{frag: data}, nil
	}

	return newLineStream(resp.Body, ProviderPuter), nil
}

// parseErrorBody extracts a structured error from a gateway error payload.
// It returns nil when data carries no error.
func parseErrorBody(provider string, status int, data []byte) *apierrors.ProviderError {
	if !gjson.ValidBytes(data) {
		return nil
	}

	errNode := gjson.GetBytes(data, "error")
	if !errNode.Exists() {
		if gjson.GetBytes(data, "success").Exists() && !gjson.GetBytes(data, "success").Bool() {
			errNode = gjson.ParseBytes(data)
		} else {
			return nil
		}
	}

	if errNode.Type == gjson.String {
		return apierrors.NewProviderError(provider, status, "", "", errNode.Str)
	}

	code := firstString(errNode, "code", "type", "delegate.code")
	param := firstString(errNode, "param", "details.param", "delegate.param", "error.param")
	message := firstString(errNode, "message", "delegate.message", "error.message")
	if status == 0 {
		status = int(errNode.Get("status").Int())
	}

	return apierrors.NewProviderError(provider, status, code, param, message)
}

func firstString(node gjson.Result, paths ...string) string {
	for _, p := range paths {
		if r := node.Get(p); r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}
