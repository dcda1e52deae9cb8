// Package accounts manages registration and credential checks for user
// accounts.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"reelist/internal/database"
	"reelist/models"
)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// Service manages user accounts backed by the relational store.
type Service struct {
	db *database.DB
}

// NewService creates an accounts service on top of the given database.
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// Signup registers a new account and returns it.
func (s *Service) Signup(ctx context.Context, input models.SignupInput) (models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return models.User{}, ErrEmailRequired
	}
	if input.Password == "" {
		return models.User{}, ErrPasswordRequired
	}
	if len(input.Password) < 8 {
		return models.User{}, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO user_account (id, email, first_name, last_name, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.FirstName, user.LastName, user.PasswordHash, user.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the credentials and returns the matching account.
func (s *Service) Authenticate(ctx context.Context, input models.LoginInput) (models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return models.User{}, ErrInvalidCredentials
	}

	user, err := s.byEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// Get returns the account with the given ID.
func (s *Service) Get(ctx context.Context, id string) (models.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.User{}, ErrUserNotFound
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name, password_hash, created_at
		 FROM user_account WHERE id = ?`, id)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

// EmailTaken reports whether an account already uses the given email.
func (s *Service) EmailTaken(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, ErrEmailRequired
	}

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_account WHERE email = ?`, email).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query email: %w", err)
	}
	return n > 0, nil
}

// Delete removes the account. Sessions and watchlists cascade away with it.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrUserNotFound
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM user_account WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Service) byEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name, password_hash, created_at
		 FROM user_account WHERE email = ?`, email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.PasswordHash, &user.CreatedAt)
	return user, err
}
