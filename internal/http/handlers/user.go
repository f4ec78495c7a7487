package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/quickai/server/internal/domain"
	"github.com/quickai/server/internal/middleware"
)

type creationDTO struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Prompt    string    `json:"prompt"`
	Content   string    `json:"content"`
	Publish   bool      `json:"publish"`
	Likes     []string  `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
}

func toCreationDTO(c domain.Creation) creationDTO {
	likes := c.Likes
	if likes == nil {
		likes = []string{}
	}
	return creationDTO{
		ID:        c.ID,
		UserID:    c.UserID,
		Type:      string(c.Kind),
		Prompt:    c.Prompt,
		Content:   c.Content,
		Publish:   c.Publish,
		Likes:     likes,
		CreatedAt: c.CreatedAt,
	}
}

// GetUserCreations handles GET /api/user/get-user-creations.
func (a *App) GetUserCreations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}
	creations, err := a.Creations.ListByUser(r.Context(), userID)
	if err != nil {
		a.failureFromError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "creations": toCreationDTOs(creations)})
}

// GetPublishedCreations handles GET /api/user/get-published-creations.
func (a *App) GetPublishedCreations(w http.ResponseWriter, r *http.Request) {
	creations, err := a.Creations.ListPublished(r.Context())
	if err != nil {
		a.failureFromError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "creations": toCreationDTOs(creations)})
}

type toggleLikeRequest struct {
	ID string `json:"id"`
}

// ToggleLikeCreation handles POST /api/user/toggle-like-creation.
func (a *App) ToggleLikeCreation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}
	var req toggleLikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		a.failure(w, "Creation id is required")
		return
	}
	liked, err := a.Creations.ToggleLike(r.Context(), req.ID, userID)
	if err != nil {
		a.failureFromError(w, r, err)
		return
	}
	message := "Like removed"
	if liked {
		message = "Creation liked"
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "message": message})
}

func toCreationDTOs(creations []domain.Creation) []creationDTO {
	out := make([]creationDTO, 0, len(creations))
	for _, c := range creations {
		out = append(out, toCreationDTO(c))
	}
	return out
}
