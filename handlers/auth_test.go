package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"golang.org/x/crypto/bcrypt"

	"streamwave/handlers"
	"streamwave/internal/store"
	"streamwave/models"
	authsvc "streamwave/services/auth"
	mediasvc "streamwave/services/media"
	playlistsvc "streamwave/services/playlists"
	recommendsvc "streamwave/services/recommend"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// env wires the full handler stack against in-memory stores.
type env struct {
	router    *mux.Router
	auth      *authsvc.Service
	media     *mediasvc.Service
	playlists *playlistsvc.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	fs := afero.NewMemMapFs()
	users, err := store.New(fs, store.Config{Path: "users.json"})
	if err != nil {
		t.Fatalf("open users store: %v", err)
	}
	media, err := store.New(fs, store.Config{Path: "media.json"})
	if err != nil {
		t.Fatalf("open media store: %v", err)
	}
	lists, err := store.New(fs, store.Config{Path: "playlists.json"})
	if err != nil {
		t.Fatalf("open playlists store: %v", err)
	}

	tokens, err := authsvc.NewTokenManager(testSecret, "HS256", 30*time.Minute)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	e := &env{
		auth:      authsvc.NewService(users, tokens, bcrypt.MinCost),
		media:     mediasvc.NewService(media),
		playlists: playlistsvc.NewService(lists),
	}
	rec := recommendsvc.NewService(e.media, e.playlists, 1)

	authHandler := handlers.NewAuthHandler(e.auth)
	mediaHandler := handlers.NewMediaHandler(e.media, e.auth, e.playlists)
	playlistHandler := handlers.NewPlaylistHandler(e.playlists, e.auth)
	recHandler := handlers.NewRecommendHandler(rec, e.auth)

	r := mux.NewRouter()
	r.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/token", authHandler.Token).Methods(http.MethodPost)
	r.HandleFunc("/users/me", authHandler.Me).Methods(http.MethodGet)
	r.HandleFunc("/users/me/premium", authHandler.UpgradePremium).Methods(http.MethodPost)
	r.HandleFunc("/media/search/{query}", mediaHandler.Search).Methods(http.MethodGet)
	r.HandleFunc("/media/add_item", mediaHandler.AddItem).Methods(http.MethodPost)
	r.HandleFunc("/media/{id:[0-9]+}", mediaHandler.Stream).Methods(http.MethodGet)
	r.HandleFunc("/users/me/playlists", playlistHandler.ListOwn).Methods(http.MethodGet)
	r.HandleFunc("/users/me/playlists", playlistHandler.Create).Methods(http.MethodPost)
	r.HandleFunc("/users/me/playlists/{id:[0-9]+}", playlistHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/users/me/playlists/{id:[0-9]+}/songs/{songID:[0-9]+}", playlistHandler.AddSong).Methods(http.MethodPost)
	r.HandleFunc("/users/me/playlists/{id:[0-9]+}/songs/{songID:[0-9]+}", playlistHandler.RemoveSong).Methods(http.MethodDelete)
	r.HandleFunc("/recommendations", recHandler.Recommend).Methods(http.MethodGet)

	adminHandler := handlers.NewAdminHandler(e.auth, e.media)
	r.HandleFunc("/admin/users", adminHandler.CreateUser).Methods(http.MethodPost)
	r.HandleFunc("/admin/users/{id:[0-9]+}", adminHandler.UpdateUser).Methods(http.MethodPatch)
	r.HandleFunc("/admin/users/{id:[0-9]+}", adminHandler.DeleteUser).Methods(http.MethodDelete)
	r.HandleFunc("/admin/users/{id:[0-9]+}/disable", adminHandler.SetDisabled(true)).Methods(http.MethodPost)
	r.HandleFunc("/admin/users/{id:[0-9]+}/enable", adminHandler.SetDisabled(false)).Methods(http.MethodPost)
	r.HandleFunc("/admin/media/{id:[0-9]+}", adminHandler.DeleteMedia).Methods(http.MethodDelete)
	e.router = r
	return e
}

// loginAs creates an account of the given variant directly through the
// service and returns a bearer token for it.
func (e *env) loginAs(t *testing.T, userType, username string) string {
	t.Helper()
	base := models.RegisteredUser{
		User: models.User{Username: username, Email: username + "@example.com"},
	}
	var p models.Principal
	switch userType {
	case models.TypeArtist:
		p = &models.Artist{RegisteredUser: base}
	case models.TypeAdmin:
		p = &models.Admin{RegisteredUser: base}
	default:
		p = &base
	}
	if _, err := e.auth.CreateUser(p, "s3cret"); err != nil {
		t.Fatalf("create %s: %v", username, err)
	}
	return e.login(t, username, "s3cret")
}

func (e *env) do(t *testing.T, method, path, token string, body string, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *env) register(t *testing.T, username, password string) {
	t.Helper()
	body := `{"username":"` + username + `","password":"` + password + `","full_name":"Test User","email":"t@example.com"}`
	rr := e.do(t, http.MethodPost, "/register", "", body, "application/json")
	if rr.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", username, rr.Code, rr.Body.String())
	}
}

func (e *env) login(t *testing.T, username, password string) string {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	rr := e.do(t, http.MethodPost, "/token", "", form.Encode(), "application/x-www-form-urlencoded")
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", username, rr.Code, rr.Body.String())
	}
	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &tok); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if tok.TokenType != "bearer" || tok.AccessToken == "" {
		t.Fatalf("bad token response: %+v", tok)
	}
	return tok.AccessToken
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestRegisterLoginMe(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "s3cret")
	token := e.login(t, "alice", "s3cret")

	rr := e.do(t, http.MethodGet, "/users/me", token, "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("me: status %d body %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["username"] != "alice" {
		t.Fatalf("wrong user: %v", body)
	}
	if body["user_type"] != "RegisteredUser" {
		t.Fatalf("wrong user_type: %v", body["user_type"])
	}
	if _, leaked := body["hashed_password"]; leaked {
		t.Fatalf("password hash leaked in response")
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "s3cret")

	body := `{"username":"alice","password":"other"}`
	rr := e.do(t, http.MethodPost, "/register", "", body, "application/json")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestTokenRejectsBadCredentials(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "s3cret")

	for _, form := range []url.Values{
		{"username": {"alice"}, "password": {"wrong"}},
		{"username": {"nobody"}, "password": {"s3cret"}},
	} {
		rr := e.do(t, http.MethodPost, "/token", "", form.Encode(), "application/x-www-form-urlencoded")
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d body %s", rr.Code, rr.Body.String())
		}
		body := decodeBody(t, rr)
		if body["detail"] != "incorrect username or password" {
			t.Fatalf("unexpected detail: %v", body["detail"])
		}
	}
}

func TestMeRequiresToken(t *testing.T) {
	e := newEnv(t)

	rr := e.do(t, http.MethodGet, "/users/me", "", "", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if rr.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Fatalf("missing WWW-Authenticate header")
	}

	rr = e.do(t, http.MethodGet, "/users/me", "not-a-token", "", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", rr.Code)
	}
}

func TestDisabledAccountCannotUseToken(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "s3cret")
	token := e.login(t, "alice", "s3cret")

	user, err := e.auth.GetUser("alice")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if _, err := e.auth.SetDisabled(user.Account().ID, true); err != nil {
		t.Fatalf("disable: %v", err)
	}

	rr := e.do(t, http.MethodGet, "/users/me", token, "", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for disabled account, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["detail"] != "inactive user" {
		t.Fatalf("unexpected detail: %v", body["detail"])
	}
}

func TestUpgradePremium(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "s3cret")
	token := e.login(t, "alice", "s3cret")

	rr := e.do(t, http.MethodPost, "/users/me/premium", token, "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("upgrade: status %d body %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["is_premium"] != true {
		t.Fatalf("expected is_premium true: %v", body)
	}
}
