package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/go-resty/resty/v2"

	"reelist/models"
)

// Session manages the actor's authentication state against the reelist API.
// It owns the resty client and its cookie jar; RemoteStore shares the same
// client so watchlist requests carry the session cookie. A 401 on any
// request fires the OnUnauthorized hook, which is where consumers force the
// actor back to guest mode (the sync layer itself never reacts to 401s).
type Session struct {
	c *resty.Client

	// OnUnauthorized, when set, runs once per 401 response.
	OnUnauthorized func()
}

// NewSession builds a session client for the given API base URL.
func NewSession(baseURL string) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	s := &Session{}
	s.c = resty.New().
		SetBaseURL(baseURL).
		SetCookieJar(jar).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second).
		OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			if resp.StatusCode() == http.StatusUnauthorized && s.OnUnauthorized != nil {
				s.OnUnauthorized()
			}
			return nil
		})

	return s, nil
}

// Client exposes the underlying resty client for collaborators that need to
// share the session cookie, RemoteStore in particular.
func (s *Session) Client() *resty.Client {
	return s.c
}

// Signup registers a new account. The server opens a session on success, so
// no separate login is needed.
func (s *Session) Signup(ctx context.Context, input models.SignupInput) (models.User, error) {
	return s.postCredentials(ctx, "/signup", &input)
}

// Login authenticates with email and password.
func (s *Session) Login(ctx context.Context, email, password string) (models.User, error) {
	return s.postCredentials(ctx, "/login", &models.LoginInput{Email: email, Password: password})
}

// Logout ends the server session and drops the cookie.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.c.R().SetContext(ctx).Get("/logout")
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return checkStatus(resp, nil, nil)
}

// CurrentUser resolves the session cookie to a user record. Returns nil when
// no session is active.
func (s *Session) CurrentUser(ctx context.Context) (*models.User, error) {
	resp, err := s.c.R().SetContext(ctx).Get("/users/sessionUser")
	if err != nil {
		return nil, fmt.Errorf("fetch session user: %w", err)
	}
	if err := checkStatus(resp, nil, nil); err != nil {
		return nil, err
	}

	var user *models.User
	if err := json.Unmarshal(resp.Body(), &user); err != nil {
		return nil, fmt.Errorf("parse session user: %w", err)
	}
	return user, nil
}

// EmailTaken probes whether an email is already registered. The server
// answers 200 for taken and 404 for available.
func (s *Session) EmailTaken(ctx context.Context, email string) (bool, error) {
	resp, err := s.c.R().
		SetContext(ctx).
		SetQueryParam("email", email).
		Get("/users/exists/by")
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, checkStatus(resp, nil, nil)
	}
}

// DeleteAccount removes the authenticated account and everything it owns.
func (s *Session) DeleteAccount(ctx context.Context) error {
	resp, err := s.c.R().SetContext(ctx).Delete("/users/sessionUser")
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return checkStatus(resp, nil, nil)
}

func (s *Session) postCredentials(ctx context.Context, path string, body any) (models.User, error) {
	resp, err := s.c.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	if err != nil {
		return models.User{}, fmt.Errorf("post %s: %w", path, err)
	}
	if err := checkStatus(resp, nil, nil); err != nil {
		return models.User{}, err
	}

	var user models.User
	if err := json.Unmarshal(resp.Body(), &user); err != nil {
		return models.User{}, fmt.Errorf("parse user response: %w", err)
	}
	return user, nil
}
