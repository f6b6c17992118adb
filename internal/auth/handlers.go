package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
)

// Handler serves the signup/signin endpoints in front of the session core.
type Handler struct {
	store  UserStore
	tokens *TokenService

	// OnSignup lets the server ensure a social-graph account exists the
	// moment a user registers. Optional.
	OnSignup func(user *User)
}

// NewHandler creates the auth HTTP handler.
func NewHandler(store UserStore, tokens *TokenService) *Handler {
	return &Handler{store: store, tokens: tokens}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// SignUp handles POST /signup: username and password policy checks, then
// insertion with a bcrypt hash. Policy violations and taken usernames are
// conflicts, not server faults.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	request, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	username := NormalizeUsername(request.Username)
	if err := ValidateUsername(username); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err := ValidatePassword(request.Password); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if _, err := h.store.ByUsername(username); err == nil {
		http.Error(w, ErrUsernameTaken.Error(), http.StatusConflict)
		return
	}

	hashed, err := HashPassword(request.Password)
	if err != nil {
		log.Printf("Password hashing failed: %v", err)
		http.Error(w, "unknown error occurred", http.StatusConflict)
		return
	}

	user := &User{Username: username, Password: hashed}
	if err := h.store.Insert(user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		log.Printf("User insert failed: %v", err)
		http.Error(w, "unknown error occurred", http.StatusConflict)
		return
	}

	if h.OnSignup != nil {
		h.OnSignup(user)
	}

	w.WriteHeader(http.StatusOK)
}

// SignIn handles POST /signin: credential verification and token issuance.
// Wrong username and wrong password are indistinguishable to the caller.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	request, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	user, err := h.store.ByUsername(NormalizeUsername(request.Username))
	if err != nil || !VerifyPassword(user.Password, request.Password) {
		http.Error(w, "incorrect username or password", http.StatusConflict)
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		log.Printf("Token generation failed: %v", err)
		http.Error(w, "unknown error occurred", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(tokenResponse{Token: token}); err != nil {
		log.Printf("Token response write failed: %v", err)
	}
}

// Authenticate handles GET /authenticate: a valid-token probe.
func (h *Handler) Authenticate(w http.ResponseWriter, r *http.Request) {
	if _, err := h.tokens.Parse(BearerToken(r)); err != nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// BearerToken extracts a token from the Authorization header or, as a
// fallback for websocket clients that cannot set headers, the token query
// parameter.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var request credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return credentialsRequest{}, false
	}
	return request, true
}
