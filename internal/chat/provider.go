package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultBaseURL     = "https://api.groq.com/openai/v1"
	DefaultModel       = "llama-3.1-8b-instant"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
	DefaultTimeout     = 60 * time.Second

	// ProviderName is reported back to callers in every reply
	ProviderName = "Groq Llama 3.1"
)

// ErrMissingAPIKey is returned when the provider has no credentials
var ErrMissingAPIKey = errors.New("provider API key not set")

// ProviderError carries a non-2xx provider response. Details is the parsed
// provider body, or the raw text wrapped as a JSON string.
type ProviderError struct {
	StatusCode int
	Details    json.RawMessage
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, string(e.Details))
}

// Completion is the provider's answer to one conversation
type Completion struct {
	Content string
	Model   string
	Usage   json.RawMessage
}

// Completer produces a completion for a conversation
type Completer interface {
	Complete(ctx context.Context, messages []Message) (*Completion, error)
}

// Provider calls an OpenAI-compatible chat completions endpoint
type Provider struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
}

// ProviderConfig configures a Provider. Zero values take the defaults.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewProvider creates a provider client. A missing API key is reported on
// each call rather than here, so the proxy can answer with a setup hint.
func NewProvider(cfg ProviderConfig) *Provider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Provider{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		model:       model,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
		client:      &http.Client{Timeout: timeout},
	}
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

type completionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage json.RawMessage `json:"usage"`
}

// Complete prepends the system prompt and requests a completion
func (p *Provider) Complete(ctx context.Context, messages []Message) (*Completion, error) {
	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	// Build messages
	all := make([]Message, 0, len(messages)+1)
	all = append(all, Message{Role: "system", Content: SystemPrompt})
	all = append(all, messages...)

	reqBody, err := json.Marshal(completionRequest{
		Model:       p.model,
		Messages:    all,
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		Stream:      false,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		details := json.RawMessage(respBody)
		if !json.Valid(respBody) {
			details, _ = json.Marshal(string(respBody))
		}
		return nil, &ProviderError{StatusCode: httpResp.StatusCode, Details: details}
	}

	var resp completionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("provider returned no choices")
	}

	return &Completion{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage:   resp.Usage,
	}, nil
}
