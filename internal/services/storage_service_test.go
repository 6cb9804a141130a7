package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stowagehq/stowage/internal/database/testutil"
	apperrors "github.com/stowagehq/stowage/pkg/errors"
)

func TestStorageCRUD(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	ctx := context.Background()

	svc, err := NewStorageService(db, nil)
	require.NoError(t, err)

	desc := "Under the stairs"
	created, err := svc.Create(ctx, StorageInput{Name: "Closet", Description: &desc})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.NotZero(t, created.CreatedAt)
	require.Equal(t, "Under the stairs", created.Description)

	loaded, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Closet", loaded.Name)

	updated, err := svc.Update(ctx, created.ID, StorageInput{Name: "Hall Closet"})
	require.NoError(t, err)
	require.Equal(t, "Hall Closet", updated.Name)
	require.Equal(t, "Under the stairs", updated.Description)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStorageCreateRequiresName(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewStorageService(db, nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), StorageInput{Name: "   "})
	require.Error(t, err)
}

func TestStorageListSortsByName(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	ctx := context.Background()

	svc, err := NewStorageService(db, nil)
	require.NoError(t, err)

	for _, name := range []string{"Cellar", "Attic", "Barn"} {
		_, err := svc.Create(ctx, StorageInput{Name: name})
		require.NoError(t, err)
	}

	storages, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, storages, 3)
	require.Equal(t, "Attic", storages[0].Name)
	require.Equal(t, "Barn", storages[1].Name)
	require.Equal(t, "Cellar", storages[2].Name)
}

func TestStorageDeleteMissing(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewStorageService(db, nil)
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(context.Background(), 42), apperrors.ErrNotFound)
}
