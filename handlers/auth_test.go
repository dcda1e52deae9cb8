package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"reelist/handlers"
	"reelist/internal/database"
	"reelist/models"
	"reelist/services/accounts"
	"reelist/services/sessions"
)

const testCookieName = "reelist_session"

func newAuthHandler(t *testing.T) *handlers.AuthHandler {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "reelist.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sessionsSvc := sessions.NewService(db, time.Hour)
	return handlers.NewAuthHandler(accounts.NewService(db), sessionsSvc, testCookieName, false)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == testCookieName && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("expected a session cookie to be set")
	return nil
}

func signup(t *testing.T, h *handlers.AuthHandler, email string) *http.Cookie {
	t.Helper()

	payload, _ := json.Marshal(models.SignupInput{
		Email:     email,
		Password:  "hunter2hunter2",
		FirstName: "Test",
		LastName:  "User",
	})
	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Signup(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected signup status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	return sessionCookie(t, rec)
}

func TestSignupOpensSession(t *testing.T) {
	h := newAuthHandler(t)

	cookie := signup(t, h, "a@b.com")

	req := httptest.NewRequest(http.MethodGet, "/users/sessionUser", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.SessionUser(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var user models.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("failed to decode session user: %v", err)
	}
	if user.Email != "a@b.com" {
		t.Fatalf("unexpected session user: %+v", user)
	}
}

func TestSignupDuplicateEmailRejected(t *testing.T) {
	h := newAuthHandler(t)
	signup(t, h, "a@b.com")

	payload, _ := json.Marshal(models.SignupInput{Email: "a@b.com", Password: "hunter2hunter2"})
	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Signup(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for duplicate email, got %d", rec.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h := newAuthHandler(t)
	signup(t, h, "a@b.com")

	payload, _ := json.Marshal(models.LoginInput{Email: "a@b.com", Password: "wrong-password"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	h := newAuthHandler(t)
	cookie := signup(t, h, "a@b.com")

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected logout status 200, got %d", rec.Code)
	}

	// The old cookie no longer resolves to a user.
	req = httptest.NewRequest(http.MethodGet, "/users/sessionUser", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.SessionUser(rec, req)

	if body := bytes.TrimSpace(rec.Body.Bytes()); !bytes.Equal(body, []byte("null")) {
		t.Fatalf("expected null session user after logout, got %s", body)
	}
}

func TestSessionUserWithoutCookie(t *testing.T) {
	h := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/users/sessionUser", nil)
	rec := httptest.NewRecorder()
	h.SessionUser(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if body := bytes.TrimSpace(rec.Body.Bytes()); !bytes.Equal(body, []byte("null")) {
		t.Fatalf("expected null body, got %s", body)
	}
}

func TestEmailExistsProbe(t *testing.T) {
	h := newAuthHandler(t)
	signup(t, h, "a@b.com")

	req := httptest.NewRequest(http.MethodGet, "/users/exists/by?email=a@b.com", nil)
	rec := httptest.NewRecorder()
	h.EmailExists(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for taken email, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/users/exists/by?email=free@b.com", nil)
	rec = httptest.NewRecorder()
	h.EmailExists(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for free email, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/users/exists/by", nil)
	rec = httptest.NewRecorder()
	h.EmailExists(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 without email, got %d", rec.Code)
	}
}

func TestDeleteAccount(t *testing.T) {
	h := newAuthHandler(t)
	cookie := signup(t, h, "a@b.com")

	req := httptest.NewRequest(http.MethodDelete, "/users/sessionUser", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.DeleteAccount(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	// Logging in again must fail, the account is gone.
	payload, _ := json.Marshal(models.LoginInput{Email: "a@b.com", Password: "hunter2hunter2"})
	req = httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(payload))
	rec = httptest.NewRecorder()
	h.Login(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 after account deletion, got %d", rec.Code)
	}
}

func TestDeleteAccountRequiresSession(t *testing.T) {
	h := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodDelete, "/users/sessionUser", nil)
	rec := httptest.NewRecorder()
	h.DeleteAccount(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}
