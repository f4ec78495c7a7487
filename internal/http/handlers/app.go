package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/quickai/server/internal/domain"
	"github.com/quickai/server/internal/service"
)

// CreationDirectory is the read/like side of the creation store consumed by
// the user-facing listing endpoints.
type CreationDirectory interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Creation, error)
	ListPublished(ctx context.Context) ([]domain.Creation, error)
	ToggleLike(ctx context.Context, creationID, userID string) (bool, error)
}

// App bundles the handler dependencies.
type App struct {
	Log       zerolog.Logger
	Pipeline  *service.Orchestrator
	Creations CreationDirectory
}

func NewApp(log zerolog.Logger, pipeline *service.Orchestrator, creations CreationDirectory) *App {
	return &App{Log: log, Pipeline: pipeline, Creations: creations}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// success writes the uniform success envelope.
func (a *App) success(w http.ResponseWriter, content string) {
	a.json(w, http.StatusOK, map[string]any{"success": true, "content": content})
}

// failure writes the uniform business-failure envelope. Business failures
// ride on HTTP 200 by contract; only transport faults use other codes.
func (a *App) failure(w http.ResponseWriter, message string) {
	a.json(w, http.StatusOK, map[string]any{"success": false, "message": message})
}

// failureFromError classifies a pipeline error into a user-facing message
// and logs the original. Internal detail never crosses the boundary.
func (a *App) failureFromError(w http.ResponseWriter, r *http.Request, err error) {
	a.Log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")

	switch {
	case errors.Is(err, domain.ErrLimitExceeded):
		a.failure(w, "Free usage limit exceeded. Please upgrade to premium plan.")
	case errors.Is(err, domain.ErrInvalidInput):
		a.failure(w, err.Error())
	case errors.Is(err, domain.ErrTimeout):
		a.failure(w, "The provider timed out. Please try again.")
	case errors.Is(err, domain.ErrProviderUnavailable):
		a.failure(w, "The provider is temporarily unavailable. Please try again.")
	case errors.Is(err, domain.ErrProviderRejected):
		a.failure(w, "The provider rejected the request.")
	case errors.Is(err, domain.ErrNotFound):
		a.failure(w, "Not found.")
	case errors.Is(err, domain.ErrStorage):
		a.failure(w, "StorageError")
	case errors.Is(err, domain.ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	default:
		a.failure(w, "Something went wrong. Please try again.")
	}
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
