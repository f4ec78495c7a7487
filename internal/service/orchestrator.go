// Package service coordinates the request pipeline: quota gate, provider
// dispatch, persistence and usage metering.
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quickai/server/internal/domain"
	"github.com/quickai/server/internal/providers/media"
	"github.com/quickai/server/internal/quota"
)

// TextGenerator produces completion text for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// ImageSynthesizer turns a prompt into a stored image asset URI.
type ImageSynthesizer interface {
	Synthesize(ctx context.Context, prompt string) (string, error)
}

// MediaEditor applies background and object removal transforms.
type MediaEditor interface {
	RemoveBackground(ctx context.Context, image []byte, mimeType string) (string, error)
	RemoveObject(ctx context.Context, image []byte, objectLabel string) (string, error)
}

// ResumeReviewer critiques an uploaded PDF resume.
type ResumeReviewer interface {
	Review(ctx context.Context, pdfBytes []byte) (string, error)
}

// UsageLedger gates and meters per-user usage.
type UsageLedger interface {
	Usage(ctx context.Context, userID string) (int, error)
	Record(ctx context.Context, userID string, plan domain.Plan) error
}

// CreationStore appends completed creations.
type CreationStore interface {
	Append(ctx context.Context, c *domain.Creation) (string, error)
}

// Request is one normalized creation request entering the pipeline.
type Request struct {
	UserID string
	Plan   domain.Plan
	Kind   domain.CreationKind

	// Text kinds.
	Prompt    string
	MaxTokens int

	// Image synthesis.
	Publish bool

	// Image transforms.
	Image       []byte
	ImageMIME   string
	ObjectLabel string

	// Resume review.
	Resume []byte
}

// Result is the successful outcome returned to the caller.
type Result struct {
	CreationID string
	Content    string
}

// Orchestrator runs each request through the pipeline. Requests are
// independent; the only shared state lives behind the ledger and store.
type Orchestrator struct {
	ledger UsageLedger
	store  CreationStore
	texts  TextGenerator
	images ImageSynthesizer
	media  MediaEditor
	resume ResumeReviewer
	log    zerolog.Logger
}

// Deps carries the orchestrator's collaborators, constructed once at
// process start and injected rather than looked up as globals.
type Deps struct {
	Ledger UsageLedger
	Store  CreationStore
	Texts  TextGenerator
	Images ImageSynthesizer
	Media  MediaEditor
	Resume ResumeReviewer
	Logger zerolog.Logger
}

func NewOrchestrator(deps Deps) (*Orchestrator, error) {
	if deps.Ledger == nil || deps.Store == nil {
		return nil, fmt.Errorf("ledger and store are required")
	}
	if deps.Texts == nil || deps.Images == nil || deps.Media == nil || deps.Resume == nil {
		return nil, fmt.Errorf("all provider adapters are required")
	}
	return &Orchestrator{
		ledger: deps.Ledger,
		store:  deps.Store,
		texts:  deps.Texts,
		images: deps.Images,
		media:  deps.Media,
		resume: deps.Resume,
		log:    deps.Logger,
	}, nil
}

// Run executes the pipeline: quota check, input validation, provider
// dispatch, persistence, metering. Usage is recorded only after the row is
// durably stored; a metering write failure is logged and does not fail the
// request, since the result already exists.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("user id is required: %w", domain.ErrUnauthorized)
	}
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("unsupported request kind %q: %w", req.Kind, domain.ErrInvalidInput)
	}

	used, err := o.ledger.Usage(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if err := quota.CheckQuota(req.Plan, used); err != nil {
		return nil, err
	}

	if err := validate(req); err != nil {
		return nil, err
	}

	content, prompt, err := o.invoke(ctx, req)
	if err != nil {
		return nil, err
	}

	creation := &domain.Creation{
		UserID:  req.UserID,
		Kind:    req.Kind,
		Prompt:  prompt,
		Content: content,
		Publish: req.Kind == domain.KindImage && req.Publish,
	}
	id, err := o.store.Append(ctx, creation)
	if err != nil {
		// The provider already produced output, but without a durable row
		// the result is withheld so "row exists iff delivered" holds.
		return nil, err
	}

	if req.Plan.Metered() {
		if err := o.ledger.Record(ctx, req.UserID, req.Plan); err != nil {
			o.log.Warn().Err(err).
				Str("user_id", req.UserID).
				Str("kind", string(req.Kind)).
				Msg("usage record failed after successful creation")
		}
	}

	return &Result{CreationID: id, Content: content}, nil
}

// validate enforces kind-specific input constraints before any provider
// spend.
func validate(req Request) error {
	switch req.Kind {
	case domain.KindArticle, domain.KindBlogTitle:
		if req.Prompt == "" {
			return fmt.Errorf("prompt is required: %w", domain.ErrInvalidInput)
		}
	case domain.KindImage:
		if req.Prompt == "" {
			return fmt.Errorf("prompt is required: %w", domain.ErrInvalidInput)
		}
	case domain.KindBackgroundRemoval:
		if len(req.Image) == 0 {
			return fmt.Errorf("no image file provided: %w", domain.ErrInvalidInput)
		}
	case domain.KindObjectRemoval:
		if len(req.Image) == 0 {
			return fmt.Errorf("no image file provided: %w", domain.ErrInvalidInput)
		}
		if !media.SingleToken(req.ObjectLabel) {
			return fmt.Errorf("object must be a single word: %w", domain.ErrInvalidInput)
		}
	case domain.KindResumeReview:
		if len(req.Resume) == 0 {
			return fmt.Errorf("no file uploaded: %w", domain.ErrInvalidInput)
		}
	}
	return nil
}

// invoke dispatches to the matching provider adapter and returns the result
// content plus the prompt text recorded on the creation row.
func (o *Orchestrator) invoke(ctx context.Context, req Request) (content, prompt string, err error) {
	switch req.Kind {
	case domain.KindArticle, domain.KindBlogTitle:
		content, err = o.texts.Generate(ctx, req.Prompt, req.MaxTokens)
		return content, req.Prompt, err
	case domain.KindImage:
		content, err = o.images.Synthesize(ctx, req.Prompt)
		return content, req.Prompt, err
	case domain.KindBackgroundRemoval:
		content, err = o.media.RemoveBackground(ctx, req.Image, req.ImageMIME)
		return content, "Removed background from image", err
	case domain.KindObjectRemoval:
		content, err = o.media.RemoveObject(ctx, req.Image, req.ObjectLabel)
		return content, fmt.Sprintf("Removed %s from image", req.ObjectLabel), err
	case domain.KindResumeReview:
		content, err = o.resume.Review(ctx, req.Resume)
		return content, "Review the uploaded resume", err
	}
	return "", "", fmt.Errorf("unsupported request kind %q: %w", req.Kind, domain.ErrInvalidInput)
}
