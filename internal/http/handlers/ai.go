package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/quickai/server/internal/domain"
	"github.com/quickai/server/internal/middleware"
	"github.com/quickai/server/internal/service"
)

// maxUploadBytes caps multipart request bodies. Kind-specific ceilings (the
// resume 5 MiB limit) are enforced further down the pipeline.
const maxUploadBytes = 32 << 20

// blogTitleMaxTokens is the fixed completion budget for title generation.
const blogTitleMaxTokens = 100

type generateArticleRequest struct {
	Prompt string `json:"prompt"`
	Length int    `json:"length"`
}

type generateBlogTitleRequest struct {
	Prompt string `json:"prompt"`
}

type generateImageRequest struct {
	Prompt  string `json:"prompt"`
	Publish bool   `json:"publish"`
}

// GenerateArticle handles POST /api/ai/generate-article.
func (a *App) GenerateArticle(w http.ResponseWriter, r *http.Request) {
	var req generateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.failure(w, "Invalid request payload.")
		return
	}
	a.run(w, r, service.Request{
		Kind:      domain.KindArticle,
		Prompt:    req.Prompt,
		MaxTokens: req.Length,
	})
}

// GenerateBlogTitle handles POST /api/ai/generate-blog-title.
func (a *App) GenerateBlogTitle(w http.ResponseWriter, r *http.Request) {
	var req generateBlogTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.failure(w, "Invalid request payload.")
		return
	}
	a.run(w, r, service.Request{
		Kind:      domain.KindBlogTitle,
		Prompt:    req.Prompt,
		MaxTokens: blogTitleMaxTokens,
	})
}

// GenerateImage handles POST /api/ai/generate-image.
func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req generateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.failure(w, "Invalid request payload.")
		return
	}
	a.run(w, r, service.Request{
		Kind:    domain.KindImage,
		Prompt:  req.Prompt,
		Publish: req.Publish,
	})
}

// RemoveBackground handles POST /api/ai/remove-image-background with a
// multipart "file" field.
func (a *App) RemoveBackground(w http.ResponseWriter, r *http.Request) {
	data, header, ok := a.readUpload(w, r, "file", "No image file provided")
	if !ok {
		return
	}
	a.run(w, r, service.Request{
		Kind:      domain.KindBackgroundRemoval,
		Image:     data,
		ImageMIME: header.Header.Get("Content-Type"),
	})
}

// RemoveObject handles POST /api/ai/remove-image-object with a multipart
// "image" field and an "object" form value.
func (a *App) RemoveObject(w http.ResponseWriter, r *http.Request) {
	data, _, ok := a.readUpload(w, r, "image", "No image file provided")
	if !ok {
		return
	}
	object := r.FormValue("object")
	if object == "" {
		a.failure(w, "Object description is required")
		return
	}
	a.run(w, r, service.Request{
		Kind:        domain.KindObjectRemoval,
		Image:       data,
		ObjectLabel: object,
	})
}

// ResumeReview handles POST /api/ai/resume-review with a multipart "resume"
// field.
func (a *App) ResumeReview(w http.ResponseWriter, r *http.Request) {
	data, _, ok := a.readUpload(w, r, "resume", "No file uploaded")
	if !ok {
		return
	}
	a.run(w, r, service.Request{
		Kind:   domain.KindResumeReview,
		Resume: data,
	})
}

// run fills in the caller identity, executes the pipeline and writes the
// uniform envelope.
func (a *App) run(w http.ResponseWriter, r *http.Request, req service.Request) {
	req.UserID = middleware.UserIDFromContext(r.Context())
	req.Plan = middleware.PlanFromContext(r.Context())
	if req.UserID == "" {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	res, err := a.Pipeline.Run(r.Context(), req)
	if err != nil {
		a.failureFromError(w, r, err)
		return
	}
	a.success(w, res.Content)
}

// readUpload parses the multipart form and reads one file field. A missing
// file is a business failure, answered in the envelope.
func (a *App) readUpload(w http.ResponseWriter, r *http.Request, field, missingMsg string) ([]byte, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.failure(w, missingMsg)
		return nil, nil, false
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		a.failure(w, missingMsg)
		return nil, nil, false
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		a.failure(w, "Could not read uploaded file")
		return nil, nil, false
	}
	return data, header, true
}
