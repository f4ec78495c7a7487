// Package media wraps the external media-transform service used for
// background and object removal.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/quickai/server/internal/domain"
)

const (
	defaultTimeout = 90 * time.Second

	effectBackgroundRemoval = "background_removal"
	effectObjectRemoval     = "gen_remove"
)

// Editor applies generative transforms to uploaded images.
type Editor interface {
	RemoveBackground(ctx context.Context, image []byte, mimeType string) (string, error)
	RemoveObject(ctx context.Context, image []byte, objectLabel string) (string, error)
}

// TransformerOptions configures a Transformer.
type TransformerOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Transformer uploads image bytes with a transform effect applied and
// returns the resulting asset URI.
type Transformer struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewTransformer(opts TransformerOptions) (*Transformer, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("media api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("media base url is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Transformer{
		apiKey:  strings.TrimSpace(opts.APIKey),
		baseURL: baseURL,
		client:  client,
	}, nil
}

// RemoveBackground uploads the image with the background-removal effect.
func (t *Transformer) RemoveBackground(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("image is required: %w", domain.ErrInvalidInput)
	}
	if mimeType == "" {
		mimeType = "image/png"
	}
	return t.upload(ctx, image, mimeType, effectBackgroundRemoval)
}

// RemoveObject uploads the image with a generative removal transform for the
// given label. Labels must be a single token; anything containing whitespace
// is rejected before a request is made.
func (t *Transformer) RemoveObject(ctx context.Context, image []byte, objectLabel string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("image is required: %w", domain.ErrInvalidInput)
	}
	if !SingleToken(objectLabel) {
		return "", fmt.Errorf("object label must be a single word: %w", domain.ErrInvalidInput)
	}
	return t.upload(ctx, image, "image/png", effectObjectRemoval+":"+objectLabel)
}

// SingleToken reports whether label is one non-empty whitespace-free token.
func SingleToken(label string) bool {
	if label == "" {
		return false
	}
	return !strings.ContainsFunc(label, unicode.IsSpace)
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (t *Transformer) upload(ctx context.Context, image []byte, mimeType, effect string) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "upload"+extensionForMIME(mimeType))
	if err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if err := form.WriteField("transformation", "e_"+effect); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/image/upload", &body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return "", fmt.Errorf("media upload timed out: %w", domain.ErrTimeout)
		}
		return "", fmt.Errorf("media upload failed: %w", domain.ErrProviderUnavailable)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("media endpoint returned %d: %w", resp.StatusCode, domain.ErrProviderUnavailable)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("media endpoint returned %d: %w", resp.StatusCode, domain.ErrProviderRejected)
	}

	var out uploadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", domain.ErrProviderRejected)
	}
	if out.Error != nil {
		return "", fmt.Errorf("media transform error %q: %w", out.Error.Message, domain.ErrProviderRejected)
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("media transform returned no url: %w", domain.ErrProviderRejected)
	}
	return out.SecureURL, nil
}

func extensionForMIME(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

var _ Editor = (*Transformer)(nil)
