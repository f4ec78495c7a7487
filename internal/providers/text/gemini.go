// Package text wraps the external chat-completion provider behind a uniform
// generate contract.
package text

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/quickai/server/internal/domain"
)

// MaxGenerateTokens bounds caller-supplied verbosity to keep provider spend
// sane.
const MaxGenerateTokens = 2000

const (
	generateTemperature = 0.7
	defaultTimeout      = 60 * time.Second
	defaultModel        = "gemini-2.0-flash"
	defaultBaseURL      = "https://generativelanguage.googleapis.com/v1beta/openai"
)

// Generator produces completion text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// GeminiOptions configures a GeminiGenerator.
type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiGenerator calls Gemini through its OpenAI-compatible
// chat-completions endpoint.
type GeminiGenerator struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGeminiGenerator(opts GeminiOptions) (*GeminiGenerator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &GeminiGenerator{
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   model,
		baseURL: baseURL,
		client:  client,
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate runs one completion at the fixed temperature and returns the
// first choice's content. Input bounds are checked before any network call.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt is required: %w", domain.ErrInvalidInput)
	}
	if maxTokens <= 0 || maxTokens > MaxGenerateTokens {
		return "", fmt.Errorf("max tokens must be between 1 and %d: %w", MaxGenerateTokens, domain.ErrInvalidInput)
	}

	payload := chatRequest{
		Model:       g.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: generateTemperature,
		MaxTokens:   maxTokens,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", &buf)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("completion endpoint returned %d: %w", resp.StatusCode, domain.ErrProviderUnavailable)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("completion endpoint returned %d: %w", resp.StatusCode, domain.ErrProviderRejected)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", domain.ErrProviderRejected)
	}
	if out.Error != nil {
		return "", fmt.Errorf("completion error %q: %w", out.Error.Message, domain.ErrProviderRejected)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("completion returned no choices: %w", domain.ErrProviderRejected)
	}
	return out.Choices[0].Message.Content, nil
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("completion request timed out: %w", domain.ErrTimeout)
	}
	return fmt.Errorf("completion request failed: %w", domain.ErrProviderUnavailable)
}

var _ Generator = (*GeminiGenerator)(nil)
