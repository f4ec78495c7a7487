// Package image wraps the external text-to-image provider. Generated bytes
// are handed straight to durable object storage; the stored URI is the
// result callers see.
package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/quickai/server/internal/domain"
	"github.com/quickai/server/internal/storage"
)

const (
	defaultBaseURL = "https://clipdrop-api.co"
	defaultTimeout = 90 * time.Second

	// maxImageBytes caps how much of the provider response is read.
	maxImageBytes = 32 << 20
)

// Synthesizer turns a prompt into a stored image asset.
type Synthesizer interface {
	Synthesize(ctx context.Context, prompt string) (string, error)
}

// ClipDropOptions configures a ClipDropSynthesizer.
type ClipDropOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Store      storage.ObjectStore
}

// ClipDropSynthesizer calls the ClipDrop text-to-image endpoint, which
// answers with raw image bytes.
type ClipDropSynthesizer struct {
	apiKey  string
	baseURL string
	client  *http.Client
	store   storage.ObjectStore
}

func NewClipDropSynthesizer(opts ClipDropOptions) (*ClipDropSynthesizer, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("clipdrop api key is required")
	}
	if opts.Store == nil {
		return nil, errors.New("object store is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &ClipDropSynthesizer{
		apiKey:  strings.TrimSpace(opts.APIKey),
		baseURL: baseURL,
		client:  client,
		store:   opts.Store,
	}, nil
}

// Synthesize generates an image for the prompt and returns the durable URI
// of the stored asset.
func (c *ClipDropSynthesizer) Synthesize(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt is required: %w", domain.ErrInvalidInput)
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("prompt", prompt); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/text-to-image/v1", &body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return "", fmt.Errorf("text-to-image request timed out: %w", domain.ErrTimeout)
		}
		return "", fmt.Errorf("text-to-image request failed: %w", domain.ErrProviderUnavailable)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("text-to-image endpoint returned %d: %w", resp.StatusCode, domain.ErrProviderUnavailable)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("text-to-image endpoint returned %d: %w", resp.StatusCode, domain.ErrProviderRejected)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", fmt.Errorf("read image bytes: %w", domain.ErrProviderUnavailable)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("text-to-image returned no bytes: %w", domain.ErrProviderRejected)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	uri, err := c.store.Put(ctx, contentType, data)
	if err != nil {
		return "", fmt.Errorf("store generated image: %w", domain.ErrStorage)
	}
	return uri, nil
}

var _ Synthesizer = (*ClipDropSynthesizer)(nil)
