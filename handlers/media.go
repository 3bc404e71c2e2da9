package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"streamwave/models"
	authsvc "streamwave/services/auth"
	mediasvc "streamwave/services/media"
)

type mediaService interface {
	Get(id int) (models.Media, error)
	All() ([]models.Media, error)
	Songs() ([]models.Media, error)
	Podcasts() ([]models.Media, error)
	Search(query string) ([]models.Media, error)
	Add(item models.Media) (models.Media, error)
}

type roleGuard interface {
	ActiveUser(token string) (models.Principal, error)
	RequireRole(token string, types ...string) (models.Principal, error)
}

type historyRecorder interface {
	RecordAccess(ownerID, mediaID int) error
}

// MediaHandler serves catalog lookup, search and upload routes.
type MediaHandler struct {
	Service mediaService
	Auth    roleGuard
	History historyRecorder
}

var _ mediaService = (*mediasvc.Service)(nil)

func NewMediaHandler(s mediaService, guard roleGuard, history historyRecorder) *MediaHandler {
	return &MediaHandler{Service: s, Auth: guard, History: history}
}

// Stream returns the playable location of one media item and records the
// access in the caller's listening history.
func (h *MediaHandler) Stream(w http.ResponseWriter, r *http.Request) {
	user, ok := requirePrincipal(w, r, h.Auth.ActiveUser)
	if !ok {
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid media id")
		return
	}

	item, err := h.Service.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// History is best-effort: a failed append must not break playback.
	if err := h.History.RecordAccess(user.Account().ID, id); err != nil {
		slog.Warn("failed to record listening history", "user", user.Account().Username, "media", id, "err", err)
	}

	it := item.Item()
	writeJSON(w, http.StatusOK, map[string]any{
		"id":    it.ID,
		"title": it.Title,
		"url":   it.URL,
	})
}

// Search matches media by title or artist, case-insensitively.
func (h *MediaHandler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.Service.Search(mux.Vars(r)["query"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Songs lists the catalog filtered to songs.
func (h *MediaHandler) Songs(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Songs()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": items})
}

// Podcasts lists the catalog filtered to podcasts.
func (h *MediaHandler) Podcasts(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Podcasts()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": items})
}

// OwnItems returns the caller together with the full catalog.
func (h *MediaHandler) OwnItems(w http.ResponseWriter, r *http.Request) {
	user, ok := requirePrincipal(w, r, h.Auth.ActiveUser)
	if !ok {
		return
	}
	items, err := h.Service.All()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":        newUserResponse(user),
		"media_items": items,
	})
}

// AddItem stores a new song or podcast. Requires artist or admin capability.
func (h *MediaHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user, ok := requirePrincipal(w, r, func(token string) (models.Principal, error) {
		return h.Auth.RequireRole(token, authsvc.ArtistOrAdmin...)
	})
	if !ok {
		return
	}

	var rec models.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	item, err := models.ResolveMedia(rec)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if item.Item().Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	added, err := h.Service.Add(item)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Media item added successfully",
		"media_type": added.MediaType(),
		"added_by":   user.Account().Username,
		"item":       added,
	})
}
