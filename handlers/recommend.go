package handlers

import (
	"net/http"

	"streamwave/models"
	recommendsvc "streamwave/services/recommend"
)

type recommender interface {
	Recommend(ownerID int) (models.Media, error)
}

// RecommendHandler serves the genre-affinity recommendation route.
type RecommendHandler struct {
	Service recommender
	Auth    activeGuard
}

var _ recommender = (*recommendsvc.Service)(nil)

func NewRecommendHandler(s recommender, guard activeGuard) *RecommendHandler {
	return &RecommendHandler{Service: s, Auth: guard}
}

// Recommend picks one media item for the caller. An empty catalog yields an
// empty object rather than an error.
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	user, ok := requirePrincipal(w, r, h.Auth.ActiveUser)
	if !ok {
		return
	}
	item, err := h.Service.Recommend(user.Account().ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if item == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, item)
}
