package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"streamwave/internal/store"
	"streamwave/models"
	"streamwave/services/auth"
	mediasvc "streamwave/services/media"
	playlistsvc "streamwave/services/playlists"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Credential failures stay indistinguishable; authorization failures keep
// their distinct kinds for operator clarity.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, auth.ErrInvalidToken):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
	case errors.Is(err, auth.ErrInactiveAccount):
		writeError(w, http.StatusBadRequest, auth.ErrInactiveAccount.Error())
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, http.StatusForbidden, auth.ErrForbidden.Error())
	case errors.Is(err, auth.ErrDuplicateUsername):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, mediasvc.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, playlistsvc.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, playlistsvc.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrUnknownVariant), errors.Is(err, store.ErrStorageIO):
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// guardFunc is one step of the authorization chain.
type guardFunc func(token string) (models.Principal, error)

// requirePrincipal extracts the bearer token and runs it through the given
// guard, writing the rejection response itself on failure.
func requirePrincipal(w http.ResponseWriter, r *http.Request, guard guardFunc) (models.Principal, bool) {
	token, ok := bearerToken(r)
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return nil, false
	}
	user, err := guard(token)
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return user, true
}

// userResponse is the wire shape of a principal: identity fields plus the
// variant tag, never the password hash.
type userResponse struct {
	models.User
	IsPremium bool   `json:"is_premium"`
	UserType  string `json:"user_type"`
}

func newUserResponse(p models.Principal) userResponse {
	account := p.Account()
	return userResponse{
		User:      account.User,
		IsPremium: account.IsPremium,
		UserType:  p.UserType(),
	}
}
