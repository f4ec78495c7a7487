// Package resume extracts text from an uploaded PDF and asks the text
// provider for a structured critique.
package resume

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/quickai/server/internal/domain"
	"github.com/quickai/server/internal/providers/text"
)

// MaxResumeBytes is the document size ceiling, checked before extraction.
const MaxResumeBytes = 5 << 20

const critiqueMaxTokens = 1000

const critiquePrompt = "Review the current resume and provide constructive feedback on its strengths, weaknesses, and areas for improvement. Resume Content:\n\n%s"

// Reviewer turns resume PDFs into critique text.
type Reviewer struct {
	generator text.Generator
	extract   func([]byte) (string, error)
}

func NewReviewer(generator text.Generator) (*Reviewer, error) {
	if generator == nil {
		return nil, fmt.Errorf("text generator is required")
	}
	return &Reviewer{generator: generator, extract: extractPDFText}, nil
}

// Review validates the document, extracts its text and returns the
// generated critique.
func (r *Reviewer) Review(ctx context.Context, pdfBytes []byte) (string, error) {
	if len(pdfBytes) == 0 {
		return "", fmt.Errorf("resume file is required: %w", domain.ErrInvalidInput)
	}
	if len(pdfBytes) > MaxResumeBytes {
		return "", fmt.Errorf("resume exceeds %d bytes: %w", MaxResumeBytes, domain.ErrInvalidInput)
	}

	content, err := r.extract(pdfBytes)
	if err != nil {
		return "", fmt.Errorf("parse resume: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("resume contains no extractable text: %w", domain.ErrInvalidInput)
	}

	return r.generator.Generate(ctx, fmt.Sprintf(critiquePrompt, content), critiqueMaxTokens)
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return string(b), nil
}
