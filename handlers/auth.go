package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"reelist/models"
	"reelist/services/accounts"
)

type accountsService interface {
	Signup(ctx context.Context, input models.SignupInput) (models.User, error)
	Authenticate(ctx context.Context, input models.LoginInput) (models.User, error)
	Get(ctx context.Context, id string) (models.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type sessionsService interface {
	Create(ctx context.Context, userID string) (models.Session, error)
	Lookup(ctx context.Context, token string) (models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID string) error
}

var _ accountsService = (*accounts.Service)(nil)

// AuthHandler serves the session lifecycle: signup, login, logout and the
// current-user probe.
type AuthHandler struct {
	Accounts   accountsService
	Sessions   sessionsService
	CookieName string
	Secure     bool
}

func NewAuthHandler(accountsSvc accountsService, sessionsSvc sessionsService, cookieName string, secure bool) *AuthHandler {
	return &AuthHandler{Accounts: accountsSvc, Sessions: sessionsSvc, CookieName: cookieName, Secure: secure}
}

// Signup registers an account and opens a session for it. The SPA expects
// signup failures as 401, the contract the original login middleware set.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var body models.SignupInput
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.Accounts.Signup(r.Context(), body)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, accounts.ErrEmailTaken):
			status = http.StatusUnauthorized
		case errors.Is(err, accounts.ErrEmailRequired),
			errors.Is(err, accounts.ErrPasswordRequired),
			errors.Is(err, accounts.ErrPasswordTooShort):
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	h.openSession(w, r, user)
}

// Login authenticates credentials and opens a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body models.LoginInput
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.Accounts.Authenticate(r.Context(), body)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			status = http.StatusUnauthorized
		}
		http.Error(w, err.Error(), status)
		return
	}

	h.openSession(w, r, user)
}

// Logout destroys the current session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.CookieName); err == nil {
		_ = h.Sessions.Delete(r.Context(), cookie.Value)
	}
	h.clearCookie(w)
	w.WriteHeader(http.StatusOK)
}

// SessionUser resolves the session cookie to the current user record, or a
// JSON null when nobody is logged in.
func (h *AuthHandler) SessionUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := h.currentUser(r)
	if !ok {
		json.NewEncoder(w).Encode(nil)
		return
	}
	json.NewEncoder(w).Encode(user)
}

// DeleteAccount removes the logged-in account together with its watchlists
// and sessions.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	if err := h.Accounts.Delete(r.Context(), user.ID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, accounts.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	_ = h.Sessions.DeleteForUser(r.Context(), user.ID)
	h.clearCookie(w)
	w.WriteHeader(http.StatusOK)
}

// EmailExists answers the availability probe: 200 when the email is taken,
// 404 when it is free. The SPA maps the status straight to a boolean.
func (h *AuthHandler) EmailExists(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	taken, err := h.Accounts.EmailTaken(r.Context(), email)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !taken {
		http.Error(w, "email is available", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *AuthHandler) openSession(w http.ResponseWriter, r *http.Request, user models.User) {
	session, err := h.Sessions.Create(r.Context(), user.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) currentUser(r *http.Request) (models.User, bool) {
	cookie, err := r.Cookie(h.CookieName)
	if err != nil {
		return models.User{}, false
	}
	session, err := h.Sessions.Lookup(r.Context(), cookie.Value)
	if err != nil {
		return models.User{}, false
	}
	user, err := h.Accounts.Get(r.Context(), session.UserID)
	if err != nil {
		return models.User{}, false
	}
	return user, true
}
