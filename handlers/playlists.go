package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"streamwave/models"
	playlistsvc "streamwave/services/playlists"
)

type playlistService interface {
	ByOwner(ownerID int) ([]*models.Playlist, error)
	GetOwned(id, ownerID int) (*models.Playlist, error)
	SearchByName(query string) ([]*models.Playlist, error)
	Create(name string, ownerID int) (*models.Playlist, error)
	AddSong(playlistID, mediaID int) (*models.Playlist, error)
	RemoveSong(playlistID, mediaID int) (*models.Playlist, error)
}

type activeGuard interface {
	ActiveUser(token string) (models.Principal, error)
}

// PlaylistHandler serves the caller's playlist routes. All of them require
// an active account; ownership is checked per playlist.
type PlaylistHandler struct {
	Service playlistService
	Auth    activeGuard
}

var _ playlistService = (*playlistsvc.Service)(nil)

func NewPlaylistHandler(s playlistService, guard activeGuard) *PlaylistHandler {
	return &PlaylistHandler{Service: s, Auth: guard}
}

// ListOwn returns the caller and every playlist they own.
func (h *PlaylistHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	user, ok := requirePrincipal(w, r, h.Auth.ActiveUser)
	if !ok {
		return
	}
	lists, err := h.Service.ByOwner(user.Account().ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if lists == nil {
		lists = []*models.Playlist{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":      newUserResponse(user),
		"playlists": lists,
	})
}

// Get returns one of the caller's playlists by id.
func (h *PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := requirePrincipal(w, r, h.Auth.ActiveUser)
	if !ok {
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid playlist id")
		return
	}
	pl, err := h.Service.GetOwned(id, user.Account().ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pl)
}

// Search matches playlists by name, case-insensitively.
func (h *PlaylistHandler) Search(w http.ResponseWriter, r *http.Request) {
	if _, ok := requirePrincipal(w, r, h.Auth.ActiveUser); !ok {
		return
	}
	lists, err := h.Service.SearchByName(mux.Vars(r)["query"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if lists == nil {
		lists = []*models.Playlist{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": lists})
}

// Create stores a new empty playlist for the caller.
func (h *PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := requirePrincipal(w, r, h.Auth.ActiveUser)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Name == models.ReservedHistoryName {
		writeError(w, http.StatusBadRequest, "playlist name is reserved")
		return
	}

	pl, err := h.Service.Create(req.Name, user.Account().ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pl)
}

// AddSong appends a media id to one of the caller's playlists.
func (h *PlaylistHandler) AddSong(w http.ResponseWriter, r *http.Request) {
	h.mutateSongs(w, r, h.Service.AddSong)
}

// RemoveSong removes a media id from one of the caller's playlists.
func (h *PlaylistHandler) RemoveSong(w http.ResponseWriter, r *http.Request) {
	h.mutateSongs(w, r, h.Service.RemoveSong)
}

func (h *PlaylistHandler) mutateSongs(w http.ResponseWriter, r *http.Request, op func(playlistID, mediaID int) (*models.Playlist, error)) {
	user, ok := requirePrincipal(w, r, h.Auth.ActiveUser)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid playlist id")
		return
	}
	songID, err := strconv.Atoi(vars["songID"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid media id")
		return
	}

	// Ownership first so callers cannot probe other users' playlists.
	if _, err := h.Service.GetOwned(id, user.Account().ID); err != nil {
		writeServiceError(w, err)
		return
	}
	pl, err := op(id, songID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pl)
}
