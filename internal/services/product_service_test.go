package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stowagehq/stowage/internal/database/testutil"
	"github.com/stowagehq/stowage/internal/models"
	apperrors "github.com/stowagehq/stowage/pkg/errors"
)

func newProductFixture(t *testing.T) (*gorm.DB, *ProductService, *models.Folder) {
	t.Helper()
	db := testutil.MustOpenTestDB(t)

	storages, err := NewStorageService(db, nil)
	require.NoError(t, err)
	folders, err := NewFolderService(db, nil)
	require.NoError(t, err)
	products, err := NewProductService(db, nil)
	require.NoError(t, err)

	storage := mustCreateStorage(t, storages, "Garage")
	folder := mustCreateFolder(t, folders, FolderInput{Name: "Shelf", StorageID: storage.ID})

	return db, products, folder
}

func TestProductCreateAndGet(t *testing.T) {
	_, products, folder := newProductFixture(t)
	ctx := context.Background()

	desc := "spare fuses"
	created, err := products.Create(ctx, ProductInput{Name: " Fuses ", Description: &desc, FolderID: folder.ID})
	require.NoError(t, err)
	require.Equal(t, "Fuses", created.Name)
	require.Equal(t, "spare fuses", created.Description)
	require.NotZero(t, created.CreatedAt)
	require.False(t, created.IsMarked)

	loaded, err := products.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, loaded.ID)
}

func TestProductCreateRejectsMissingFolder(t *testing.T) {
	_, products, _ := newProductFixture(t)

	_, err := products.Create(context.Background(), ProductInput{Name: "Lost", FolderID: 404})
	require.Error(t, err)

	_, err = products.Create(context.Background(), ProductInput{Name: "  ", FolderID: 1})
	require.Error(t, err)
}

func TestProductListByFolderNewestFirstWithPagination(t *testing.T) {
	db, products, folder := newProductFixture(t)
	ctx := context.Background()

	base := int64(1_700_000_000_000)
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, db.Create(&models.Product{
			ID:        i,
			Name:      "Item",
			FolderID:  folder.ID,
			CreatedAt: base + i,
		}).Error)
	}

	page, total, err := products.ListByFolder(ctx, folder.ID, 1, 2)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	require.Equal(t, int64(3), page[0].ID)
	require.Equal(t, int64(2), page[1].ID)

	page, _, err = products.ListByFolder(ctx, folder.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, int64(1), page[0].ID)
}

func TestProductSearchInFolderScopedByFolder(t *testing.T) {
	db, products, folder := newProductFixture(t)
	ctx := context.Background()

	folders, err := NewFolderService(db, nil)
	require.NoError(t, err)
	other := mustCreateFolder(t, folders, FolderInput{Name: "Other", StorageID: folder.StorageID})

	_, err = products.Create(ctx, ProductInput{Name: "Hammer", FolderID: folder.ID})
	require.NoError(t, err)
	_, err = products.Create(ctx, ProductInput{Name: "Hammer drill", FolderID: other.ID})
	require.NoError(t, err)

	found, err := products.SearchInFolder(ctx, folder.ID, "ham")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "Hammer", found[0].Name)

	found, err = products.SearchInFolder(ctx, folder.ID, "   ")
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestProductUpdateAndMarked(t *testing.T) {
	_, products, folder := newProductFixture(t)
	ctx := context.Background()

	b := mustCreateProduct(t, products, ProductInput{Name: "Bolts", FolderID: folder.ID})
	a := mustCreateProduct(t, products, ProductInput{Name: "Anchors", FolderID: folder.ID})

	marked := true
	_, err := products.Update(ctx, b.ID, ProductInput{IsMarked: &marked})
	require.NoError(t, err)

	require.NoError(t, products.SetMarked(ctx, []int64{a.ID}, true))

	favorites, err := products.Marked(ctx)
	require.NoError(t, err)
	require.Len(t, favorites, 2)
	require.Equal(t, "Anchors", favorites[0].Name)
	require.Equal(t, "Bolts", favorites[1].Name)

	count, err := products.MarkedCount(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func TestProductDelete(t *testing.T) {
	_, products, folder := newProductFixture(t)
	ctx := context.Background()

	p := mustCreateProduct(t, products, ProductInput{Name: "Tape", FolderID: folder.ID})

	require.NoError(t, products.Delete(ctx, p.ID))
	_, err := products.Get(ctx, p.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.ErrorIs(t, products.Delete(ctx, p.ID), apperrors.ErrNotFound)
}

func TestProductFolderDeleteCascades(t *testing.T) {
	db, products, folder := newProductFixture(t)
	ctx := context.Background()

	mustCreateProduct(t, products, ProductInput{Name: "Glue", FolderID: folder.ID})

	folders, err := NewFolderService(db, nil)
	require.NoError(t, err)
	require.NoError(t, folders.Delete(ctx, folder.ID))

	count, err := products.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

func mustCreateProduct(t *testing.T, svc *ProductService, input ProductInput) *models.Product {
	t.Helper()
	product, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	return product
}
