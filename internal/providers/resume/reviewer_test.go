package resume

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/quickai/server/internal/domain"
)

type fakeGenerator struct {
	calls    int
	prompt   string
	maxToken int
	out      string
	err      error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	f.calls++
	f.prompt = prompt
	f.maxToken = maxTokens
	return f.out, f.err
}

func TestReviewRejectsOversizedResumeBeforeExtraction(t *testing.T) {
	gen := &fakeGenerator{}
	reviewer, err := NewReviewer(gen)
	if err != nil {
		t.Fatalf("NewReviewer returned error: %v", err)
	}
	extracted := false
	reviewer.extract = func([]byte) (string, error) {
		extracted = true
		return "", nil
	}

	big := bytes.Repeat([]byte("a"), MaxResumeBytes+1)
	_, err = reviewer.Review(context.Background(), big)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if extracted {
		t.Fatal("extraction ran for oversized document")
	}
	if gen.calls != 0 {
		t.Fatalf("generator calls = %d, want 0", gen.calls)
	}
}

func TestReviewRejectsEmptyFile(t *testing.T) {
	reviewer, _ := NewReviewer(&fakeGenerator{})
	if _, err := reviewer.Review(context.Background(), nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestReviewRejectsUnparseableDocument(t *testing.T) {
	gen := &fakeGenerator{}
	reviewer, _ := NewReviewer(gen)

	// Not a PDF; the real extractor must fail before the generator runs.
	_, err := reviewer.Review(context.Background(), []byte("plain text, not a pdf"))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if gen.calls != 0 {
		t.Fatalf("generator calls = %d, want 0", gen.calls)
	}
}

func TestReviewBuildsCritiquePrompt(t *testing.T) {
	gen := &fakeGenerator{out: "Strong resume overall."}
	reviewer, _ := NewReviewer(gen)
	reviewer.extract = func([]byte) (string, error) {
		return "Jane Doe\nSoftware Engineer", nil
	}

	critique, err := reviewer.Review(context.Background(), []byte("%PDF-fake"))
	if err != nil {
		t.Fatalf("Review returned error: %v", err)
	}
	if critique != "Strong resume overall." {
		t.Fatalf("critique = %q", critique)
	}
	if gen.maxToken != critiqueMaxTokens {
		t.Fatalf("maxTokens = %d, want %d", gen.maxToken, critiqueMaxTokens)
	}
	if !strings.Contains(gen.prompt, "constructive feedback") || !strings.Contains(gen.prompt, "Jane Doe") {
		t.Fatalf("prompt = %q", gen.prompt)
	}
}

func TestReviewRejectsEmptyExtractedText(t *testing.T) {
	gen := &fakeGenerator{}
	reviewer, _ := NewReviewer(gen)
	reviewer.extract = func([]byte) (string, error) {
		return "   \n ", nil
	}
	if _, err := reviewer.Review(context.Background(), []byte("%PDF-fake")); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if gen.calls != 0 {
		t.Fatalf("generator calls = %d, want 0", gen.calls)
	}
}
