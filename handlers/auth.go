package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"streamwave/models"
	authsvc "streamwave/services/auth"
)

type authService interface {
	Register(username, password, fullName, email string) (models.Principal, error)
	Login(username, password string) (authsvc.Token, error)
	ActiveUser(token string) (models.Principal, error)
	SetPremium(id int, premium bool) (models.Principal, error)
}

// AuthHandler serves registration, login and the current-user routes.
type AuthHandler struct {
	Service authService
}

var _ authService = (*authsvc.Service)(nil)

func NewAuthHandler(s authService) *AuthHandler {
	return &AuthHandler{Service: s}
}

// Register creates a new registered user account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.Service.Register(req.Username, req.Password, req.FullName, req.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newUserResponse(user))
}

// Token exchanges form-encoded credentials for a bearer token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	token, err := h.Service.Login(username, password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

// Me returns the calling principal.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := requirePrincipal(w, r, h.Service.ActiveUser)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

// UpgradePremium flips the premium flag on the calling account.
func (h *AuthHandler) UpgradePremium(w http.ResponseWriter, r *http.Request) {
	user, ok := requirePrincipal(w, r, h.Service.ActiveUser)
	if !ok {
		return
	}
	updated, err := h.Service.SetPremium(user.Account().ID, true)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(updated))
}
