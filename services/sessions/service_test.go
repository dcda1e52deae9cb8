package sessions_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"reelist/internal/database"
	"reelist/models"
	"reelist/services/accounts"
	"reelist/services/sessions"
)

func newUser(t *testing.T) (*database.DB, string) {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "reelist.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	user, err := accounts.NewService(db).Signup(context.Background(), models.SignupInput{
		Email:    "owner@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	return db, user.ID
}

func TestCreateAndLookup(t *testing.T) {
	db, userID := newUser(t)
	svc := sessions.NewService(db, time.Hour)
	ctx := context.Background()

	created, err := svc.Create(ctx, userID)
	require.NoError(t, err)
	require.NotEmpty(t, created.Token)
	require.Equal(t, userID, created.UserID)

	got, err := svc.Lookup(ctx, created.Token)
	require.NoError(t, err)
	require.Equal(t, created.Token, got.Token)

	_, err = svc.Lookup(ctx, "no-such-token")
	require.ErrorIs(t, err, sessions.ErrSessionNotFound)

	_, err = svc.Create(ctx, "")
	require.ErrorIs(t, err, sessions.ErrUserIDRequired)
}

// expire backdates a session so it reads as already expired.
func expire(t *testing.T, db *database.DB, token string) {
	t.Helper()
	_, err := db.ExecContext(context.Background(),
		`UPDATE session SET expires_at = ? WHERE token = ?`,
		time.Now().UTC().Add(-time.Minute), token)
	require.NoError(t, err)
}

func TestLookupRejectsExpired(t *testing.T) {
	db, userID := newUser(t)
	svc := sessions.NewService(db, time.Hour)
	ctx := context.Background()

	created, err := svc.Create(ctx, userID)
	require.NoError(t, err)
	expire(t, db, created.Token)

	_, err = svc.Lookup(ctx, created.Token)
	require.ErrorIs(t, err, sessions.ErrSessionNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	db, userID := newUser(t)
	svc := sessions.NewService(db, time.Hour)
	ctx := context.Background()

	created, err := svc.Create(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.Token))
	require.NoError(t, svc.Delete(ctx, created.Token))

	_, err = svc.Lookup(ctx, created.Token)
	require.ErrorIs(t, err, sessions.ErrSessionNotFound)
}

func TestDeleteForUser(t *testing.T) {
	db, userID := newUser(t)
	svc := sessions.NewService(db, time.Hour)
	ctx := context.Background()

	first, err := svc.Create(ctx, userID)
	require.NoError(t, err)
	second, err := svc.Create(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteForUser(ctx, userID))

	_, err = svc.Lookup(ctx, first.Token)
	require.ErrorIs(t, err, sessions.ErrSessionNotFound)
	_, err = svc.Lookup(ctx, second.Token)
	require.ErrorIs(t, err, sessions.ErrSessionNotFound)
}

func TestPurgeExpired(t *testing.T) {
	db, userID := newUser(t)
	ctx := context.Background()

	svc := sessions.NewService(db, time.Hour)

	stale, err := svc.Create(ctx, userID)
	require.NoError(t, err)
	expire(t, db, stale.Token)
	keep, err := svc.Create(ctx, userID)
	require.NoError(t, err)

	purged, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, purged)

	_, err = svc.Lookup(ctx, keep.Token)
	require.NoError(t, err)
}
