// Package client provides transcription client implementations.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrAuth indicates a missing or rejected API credential.
var ErrAuth = errors.New("transcription credential missing or rejected")

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 2 * time.Minute

// DefaultAPIModel is the cloud transcription model.
const DefaultAPIModel = "whisper-1"

// Transcriber sends captured audio and receives raw text. The text carries
// no punctuation or formatting guarantees; cleanup handles that.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// OpenAIClient implements Transcriber against the OpenAI audio
// transcription endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// OpenAIOption configures the OpenAIClient.
type OpenAIOption func(*openAIConfig)

type openAIConfig struct {
	baseURL string
	model   string
	timeout time.Duration
}

// WithBaseURL points the client at a different API endpoint, e.g. a
// compatible local server or a test server.
func WithBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) {
		c.baseURL = url
	}
}

// WithModel overrides the transcription model.
func WithModel(model string) OpenAIOption {
	return func(c *openAIConfig) {
		c.model = model
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) OpenAIOption {
	return func(c *openAIConfig) {
		c.timeout = d
	}
}

// NewOpenAIClient creates a transcription client for the OpenAI API.
// Returns ErrAuth if apiKey is empty.
func NewOpenAIClient(apiKey string, opts ...OpenAIOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY not set", ErrAuth)
	}

	cfg := &openAIConfig{
		model:   DefaultAPIModel,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.baseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.baseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.timeout}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.model,
	}, nil
}

// Transcribe uploads the audio file and returns the transcribed text.
func (c *OpenAIClient) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		if isAuthError(err) {
			return "", fmt.Errorf("%w: %v", ErrAuth, err)
		}
		return "", fmt.Errorf("transcription request: %w", err)
	}

	return strings.TrimSpace(resp.Text), nil
}

// isAuthError reports whether the API rejected the credential.
func isAuthError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusUnauthorized ||
			apiErr.HTTPStatusCode == http.StatusForbidden
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusUnauthorized ||
			reqErr.HTTPStatusCode == http.StatusForbidden
	}

	return false
}
