// Package sessions stores login sessions in the relational store so they
// survive restarts and stay revocable.
package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"reelist/internal/database"
	"reelist/models"
	"reelist/utils"
)

var (
	ErrUserIDRequired  = errors.New("user id is required")
	ErrSessionNotFound = errors.New("session not found")
)

// Service manages session records.
type Service struct {
	db   *database.DB
	ttl  time.Duration
	stop chan struct{}
}

// NewService creates a sessions service with the given time-to-live.
func NewService(db *database.DB, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Service{db: db, ttl: ttl, stop: make(chan struct{})}
}

// Create opens a new session for the user and returns it.
func (s *Service) Create(ctx context.Context, userID string) (models.Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Session{}, ErrUserIDRequired
	}

	token, err := utils.GenerateSessionToken()
	if err != nil {
		return models.Session{}, err
	}

	now := time.Now().UTC()
	session := models.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		session.Token, session.UserID, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return models.Session{}, fmt.Errorf("insert session: %w", err)
	}

	return session, nil
}

// Lookup resolves a token to its session. Expired sessions are treated as
// missing and removed opportunistically.
func (s *Service) Lookup(ctx context.Context, token string) (models.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Session{}, ErrSessionNotFound
	}

	var session models.Session
	err := s.db.QueryRowContext(ctx,
		`SELECT token, user_id, created_at, expires_at FROM session WHERE token = ?`, token).
		Scan(&session.Token, &session.UserID, &session.CreatedAt, &session.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("query session: %w", err)
	}

	if session.Expired(time.Now().UTC()) {
		_ = s.Delete(ctx, token)
		return models.Session{}, ErrSessionNotFound
	}

	return session, nil
}

// Delete removes a session by token. Missing tokens are not an error.
func (s *Service) Delete(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteForUser revokes every session belonging to the user.
func (s *Service) DeleteForUser(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

// PurgeExpired removes all sessions past their expiry and reports how many
// were removed.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// StartPurgeLoop purges expired sessions on the given interval until Stop is
// called.
func (s *Service) StartPurgeLoop(interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := s.PurgeExpired(context.Background()); err != nil {
					log.Printf("[sessions] purge failed: %v", err)
				} else if n > 0 {
					log.Printf("[sessions] purged %d expired session(s)", n)
				}
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the purge loop.
func (s *Service) Stop() {
	close(s.stop)
}
