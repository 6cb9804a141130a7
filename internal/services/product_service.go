package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/stowagehq/stowage/internal/models"
	apperrors "github.com/stowagehq/stowage/pkg/errors"
)

// ProductService manages the items stored inside folders.
type ProductService struct {
	db       *gorm.DB
	notifier ChangeNotifier
}

// ProductInput describes product create/update payloads.
type ProductInput struct {
	Name        string
	Description *string
	FolderID    int64
	IsMarked    *bool
}

// NewProductService constructs a product service.
func NewProductService(db *gorm.DB, notifier ChangeNotifier) (*ProductService, error) {
	if db == nil {
		return nil, errors.New("product service: db is required")
	}
	return &ProductService{db: db, notifier: notifier}, nil
}

// ListByFolder returns one page of a folder's products, newest first, along
// with the total count for pagination metadata.
func (s *ProductService) ListByFolder(ctx context.Context, folderID int64, page, perPage int) ([]models.Product, int64, error) {
	ctx = ensureContext(ctx)
	page, perPage = normalisePage(page, perPage)

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("folder_id = ?", folderID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("product service: count by folder: %w", err)
	}

	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("folder_id = ?", folderID).
		Order("created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("product service: list by folder: %w", err)
	}
	return products, total, nil
}

// SearchInFolder matches products of one folder whose name contains the query.
func (s *ProductService) SearchInFolder(ctx context.Context, folderID int64, query string) ([]models.Product, error) {
	ctx = ensureContext(ctx)

	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Product{}, nil
	}

	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("folder_id = ? AND name LIKE ?", folderID, "%"+query+"%").
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("product service: search: %w", err)
	}
	return products, nil
}

// Marked returns every favorite product ordered by name.
func (s *ProductService) Marked(ctx context.Context) ([]models.Product, error) {
	ctx = ensureContext(ctx)

	var products []models.Product
	err := s.db.WithContext(ctx).Where("is_marked = ?", true).Order("name ASC").Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("product service: list marked: %w", err)
	}
	return products, nil
}

// Get loads a single product by identifier.
func (s *ProductService) Get(ctx context.Context, id int64) (*models.Product, error) {
	ctx = ensureContext(ctx)

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("product service: load product: %w", err)
	}
	return &product, nil
}

// Create registers a new product inside a folder.
func (s *ProductService) Create(ctx context.Context, input ProductInput) (*models.Product, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("product name is required")
	}

	var folder models.Folder
	if err := s.db.WithContext(ctx).First(&folder, "id = ?", input.FolderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewBadRequest("folder does not exist")
		}
		return nil, fmt.Errorf("product service: check folder: %w", err)
	}

	product := models.Product{
		Name:      name,
		FolderID:  input.FolderID,
		CreatedAt: nowMilli(),
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.IsMarked != nil {
		product.IsMarked = *input.IsMarked
	}

	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("product service: create: %w", err)
	}

	notify(s.notifier, "product", "created", product.ID)
	return &product, nil
}

// Update modifies product name, description, and favorite flag.
func (s *ProductService) Update(ctx context.Context, id int64, input ProductInput) (*models.Product, error) {
	ctx = ensureContext(ctx)

	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" && name != product.Name {
		updates["name"] = name
	}
	if input.Description != nil {
		if desc := strings.TrimSpace(*input.Description); desc != product.Description {
			updates["description"] = desc
		}
	}
	if input.IsMarked != nil && *input.IsMarked != product.IsMarked {
		updates["is_marked"] = *input.IsMarked
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("product service: update: %w", err)
		}
		if err := s.db.WithContext(ctx).First(product, "id = ?", id).Error; err != nil {
			return nil, fmt.Errorf("product service: reload product: %w", err)
		}
		notify(s.notifier, "product", "updated", id)
	}

	return product, nil
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	ctx = ensureContext(ctx)

	res := s.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("product service: delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	notify(s.notifier, "product", "deleted", id)
	return nil
}

// SetMarked flips the favorite flag on a batch of products.
func (s *ProductService) SetMarked(ctx context.Context, ids []int64, marked bool) error {
	ctx = ensureContext(ctx)
	if len(ids) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id IN ?", ids).
		Update("is_marked", marked).Error
	if err != nil {
		return fmt.Errorf("product service: set marked: %w", err)
	}

	for _, id := range ids {
		notify(s.notifier, "product", "updated", id)
	}
	return nil
}

// Count returns the total number of products.
func (s *ProductService) Count(ctx context.Context) (int64, error) {
	return s.countWhere(ctx, "", nil)
}

// MarkedCount returns the number of favorite products.
func (s *ProductService) MarkedCount(ctx context.Context) (int64, error) {
	return s.countWhere(ctx, "is_marked = ?", true)
}

// CountByFolder returns the number of products inside one folder.
func (s *ProductService) CountByFolder(ctx context.Context, folderID int64) (int64, error) {
	return s.countWhere(ctx, "folder_id = ?", folderID)
}

func (s *ProductService) countWhere(ctx context.Context, cond string, arg any) (int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Product{})
	if cond != "" {
		query = query.Where(cond, arg)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("product service: count: %w", err)
	}
	return count, nil
}
