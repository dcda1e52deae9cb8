package accounts_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"reelist/internal/database"
	"reelist/models"
	"reelist/services/accounts"
)

func newDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "reelist.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSignupAndAuthenticate(t *testing.T) {
	svc := accounts.NewService(newDB(t))
	ctx := context.Background()

	user, err := svc.Signup(ctx, models.SignupInput{
		Email:     "  Jamie@Example.COM ",
		Password:  "hunter2hunter2",
		FirstName: "Jamie",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "jamie@example.com", user.Email, "email should be normalized")

	got, err := svc.Authenticate(ctx, models.LoginInput{
		Email:    "jamie@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

func TestSignupValidation(t *testing.T) {
	svc := accounts.NewService(newDB(t))
	ctx := context.Background()

	_, err := svc.Signup(ctx, models.SignupInput{Password: "hunter2hunter2"})
	require.ErrorIs(t, err, accounts.ErrEmailRequired)

	_, err = svc.Signup(ctx, models.SignupInput{Email: "a@b.com"})
	require.ErrorIs(t, err, accounts.ErrPasswordRequired)

	_, err = svc.Signup(ctx, models.SignupInput{Email: "a@b.com", Password: "short"})
	require.ErrorIs(t, err, accounts.ErrPasswordTooShort)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := accounts.NewService(newDB(t))
	ctx := context.Background()

	_, err := svc.Signup(ctx, models.SignupInput{Email: "a@b.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, models.SignupInput{Email: "A@B.COM", Password: "hunter2hunter2"})
	require.ErrorIs(t, err, accounts.ErrEmailTaken, "emails differing only in case collide")
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	svc := accounts.NewService(newDB(t))
	ctx := context.Background()

	_, err := svc.Signup(ctx, models.SignupInput{Email: "a@b.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, models.LoginInput{Email: "a@b.com", Password: "wrong-password"})
	require.ErrorIs(t, err, accounts.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, models.LoginInput{Email: "nobody@b.com", Password: "hunter2hunter2"})
	require.ErrorIs(t, err, accounts.ErrInvalidCredentials)
}

func TestEmailTaken(t *testing.T) {
	svc := accounts.NewService(newDB(t))
	ctx := context.Background()

	taken, err := svc.EmailTaken(ctx, "a@b.com")
	require.NoError(t, err)
	require.False(t, taken)

	_, err = svc.Signup(ctx, models.SignupInput{Email: "a@b.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	taken, err = svc.EmailTaken(ctx, "A@b.com")
	require.NoError(t, err)
	require.True(t, taken)
}

func TestDelete(t *testing.T) {
	svc := accounts.NewService(newDB(t))
	ctx := context.Background()

	user, err := svc.Signup(ctx, models.SignupInput{Email: "a@b.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, user.ID))

	_, err = svc.Get(ctx, user.ID)
	require.ErrorIs(t, err, accounts.ErrUserNotFound)

	require.ErrorIs(t, svc.Delete(ctx, user.ID), accounts.ErrUserNotFound)
}
