package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"streamwave/models"
	authsvc "streamwave/services/auth"
)

type adminUserService interface {
	CreateUser(p models.Principal, password string) (models.Principal, error)
	UpdateUser(id int, fields map[string]any) (models.Principal, error)
	DeleteUser(id int) (bool, error)
	SetDisabled(id int, disabled bool) (models.Principal, error)
	SetPremium(id int, premium bool) (models.Principal, error)
	RequireRole(token string, types ...string) (models.Principal, error)
}

type mediaDeleter interface {
	Delete(id int) (bool, error)
}

// AdminHandler serves the administrative user and content management routes.
// Every route requires admin capability.
type AdminHandler struct {
	users adminUserService
	media mediaDeleter
}

var _ adminUserService = (*authsvc.Service)(nil)

func NewAdminHandler(users adminUserService, media mediaDeleter) *AdminHandler {
	return &AdminHandler{users: users, media: media}
}

func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	return requirePrincipal(w, r, func(token string) (models.Principal, error) {
		return h.users.RequireRole(token, authsvc.AdminOnly...)
	})
}

// CreateUser stores a principal of any variant with the supplied password.
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	var req struct {
		User     models.Record `json:"user"`
		Password string        `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}
	user, err := models.ResolveUser(req.User)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if user.Account().Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	created, err := h.users.CreateUser(user, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":   "User created successfully",
		"username":  created.Account().Username,
		"user_type": created.UserType(),
	})
}

// UpdateUser shallow-merges fields into a stored principal. The username and
// password hash are immutable through this route.
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	delete(fields, "id")
	delete(fields, "username")
	delete(fields, "hashed_password")

	updated, err := h.users.UpdateUser(id, fields)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(updated))
}

// DeleteUser removes a principal.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	removed, err := h.users.DeleteUser(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

// SetDisabled enables or disables an account.
func (h *AdminHandler) SetDisabled(disabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := h.requireAdmin(w, r); !ok {
			return
		}
		id, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}
		updated, err := h.users.SetDisabled(id, disabled)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newUserResponse(updated))
	}
}

// SetPremium sets the premium flag on an account.
func (h *AdminHandler) SetPremium(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req struct {
		IsPremium bool `json:"is_premium"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	updated, err := h.users.SetPremium(id, req.IsPremium)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(updated))
}

// DeleteMedia removes a content item from the catalog.
func (h *AdminHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid media id")
		return
	}
	removed, err := h.media.Delete(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "media not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Media deleted"})
}
