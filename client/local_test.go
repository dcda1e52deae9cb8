package client_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"reelist/client"
	"reelist/models"
)

func TestLocalStoreCreateAndList(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := client.NewLocalStoreFs(fs, "data")
	ctx := context.Background()

	created, err := store.Create(ctx, "Movies", false)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, models.LocalOwnerID, created.OwnerID)

	unnamed, err := store.Create(ctx, "", false)
	require.NoError(t, err)
	require.Equal(t, models.DefaultWatchlistName, unnamed.Name)

	lists, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 2)
}

func TestLocalStorePersistsAcrossInstances(t *testing.T) {
	fs := afero.NewMemMapFs()
	ctx := context.Background()

	first := client.NewLocalStoreFs(fs, "data")
	created, err := first.Create(ctx, "Movies", true)
	require.NoError(t, err)

	second := client.NewLocalStoreFs(fs, "data")
	got, err := second.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Movies", got.Name)
	require.True(t, got.IsDefault)
}

func TestLocalStoreSingleDefault(t *testing.T) {
	store := client.NewLocalStoreFs(afero.NewMemMapFs(), "data")
	ctx := context.Background()

	first, err := store.Create(ctx, "First", true)
	require.NoError(t, err)

	_, err = store.Create(ctx, "Second", true)
	require.NoError(t, err)

	got, err := store.Get(ctx, first.ID)
	require.NoError(t, err)
	require.False(t, got.IsDefault, "creating a second default clears the first")

	third, err := store.SetDefault(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, third.IsDefault)

	lists, err := store.List(ctx)
	require.NoError(t, err)
	defaults := 0
	for _, l := range lists {
		if l.IsDefault {
			defaults++
		}
	}
	require.Equal(t, 1, defaults)
}

func TestLocalStoreDeleteRefusesDefault(t *testing.T) {
	store := client.NewLocalStoreFs(afero.NewMemMapFs(), "data")
	ctx := context.Background()

	def, err := store.Create(ctx, "Watch later", true)
	require.NoError(t, err)
	other, err := store.Create(ctx, "Movies", false)
	require.NoError(t, err)

	require.ErrorIs(t, store.Delete(ctx, def.ID), client.ErrDefaultWatchlist)
	require.NoError(t, store.Delete(ctx, other.ID))

	lists, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	require.True(t, lists[0].IsDefault)
}

func TestLocalStoreItems(t *testing.T) {
	store := client.NewLocalStoreFs(afero.NewMemMapFs(), "data")
	ctx := context.Background()

	watchlist, err := store.Create(ctx, "Movies", false)
	require.NoError(t, err)

	_, err = store.AddItem(ctx, watchlist.ID, models.ItemInput{ID: "a", Title: "First"})
	require.NoError(t, err)
	_, err = store.AddItem(ctx, watchlist.ID, models.ItemInput{ID: "b", Title: "Second"})
	require.NoError(t, err)

	_, err = store.AddItem(ctx, watchlist.ID, models.ItemInput{ID: "a", Title: "First again"})
	require.ErrorIs(t, err, client.ErrItemExists)

	got, err := store.Get(ctx, watchlist.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	require.Equal(t, "b", got.Items[0].ID, "newest insertion at the head")

	item, err := store.SetItemWatched(ctx, watchlist.ID, "a", true)
	require.NoError(t, err)
	require.True(t, item.Watched)

	require.NoError(t, store.DeleteItem(ctx, watchlist.ID, "a"))
	require.ErrorIs(t, store.DeleteItem(ctx, watchlist.ID, "a"), client.ErrItemNotFound)
}

func TestLocalStoreMissingIDs(t *testing.T) {
	store := client.NewLocalStoreFs(afero.NewMemMapFs(), "data")
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, client.ErrWatchlistNotFound)

	_, err = store.Rename(ctx, "missing", "New name")
	require.ErrorIs(t, err, client.ErrWatchlistNotFound)

	require.ErrorIs(t, store.Delete(ctx, "missing"), client.ErrWatchlistNotFound)

	_, err = store.AddItem(ctx, "missing", models.ItemInput{ID: "a", Title: "X"})
	require.ErrorIs(t, err, client.ErrWatchlistNotFound)
}

func TestLocalStoreClear(t *testing.T) {
	store := client.NewLocalStoreFs(afero.NewMemMapFs(), "data")
	ctx := context.Background()

	_, err := store.Create(ctx, "Movies", false)
	require.NoError(t, err)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear(), "clearing an empty store is fine")

	lists, err := store.List(ctx)
	require.NoError(t, err)
	require.Empty(t, lists)
}
