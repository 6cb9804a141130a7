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

// StorageService manages top-level storage containers.
type StorageService struct {
	db       *gorm.DB
	notifier ChangeNotifier
}

// StorageInput describes storage create/update payloads.
type StorageInput struct {
	Name        string
	Description *string
}

// NewStorageService constructs a storage service.
func NewStorageService(db *gorm.DB, notifier ChangeNotifier) (*StorageService, error) {
	if db == nil {
		return nil, errors.New("storage service: db is required")
	}
	return &StorageService{db: db, notifier: notifier}, nil
}

// List returns every storage ordered by name.
func (s *StorageService) List(ctx context.Context) ([]models.Storage, error) {
	ctx = ensureContext(ctx)

	var storages []models.Storage
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&storages).Error; err != nil {
		return nil, fmt.Errorf("storage service: list: %w", err)
	}
	return storages, nil
}

// Get loads a single storage by identifier.
func (s *StorageService) Get(ctx context.Context, id int64) (*models.Storage, error) {
	ctx = ensureContext(ctx)

	var storage models.Storage
	if err := s.db.WithContext(ctx).First(&storage, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("storage service: load storage: %w", err)
	}
	return &storage, nil
}

// Create registers a new storage.
func (s *StorageService) Create(ctx context.Context, input StorageInput) (*models.Storage, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("storage name is required")
	}

	storage := models.Storage{
		Name:      name,
		CreatedAt: nowMilli(),
	}
	if input.Description != nil {
		storage.Description = strings.TrimSpace(*input.Description)
	}

	if err := s.db.WithContext(ctx).Create(&storage).Error; err != nil {
		return nil, fmt.Errorf("storage service: create: %w", err)
	}

	notify(s.notifier, "storage", "created", storage.ID)
	return &storage, nil
}

// Update modifies storage name and description.
func (s *StorageService) Update(ctx context.Context, id int64, input StorageInput) (*models.Storage, error) {
	ctx = ensureContext(ctx)

	storage, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" && name != storage.Name {
		updates["name"] = name
	}
	if input.Description != nil {
		if desc := strings.TrimSpace(*input.Description); desc != storage.Description {
			updates["description"] = desc
		}
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(storage).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("storage service: update: %w", err)
		}
		if err := s.db.WithContext(ctx).First(storage, "id = ?", id).Error; err != nil {
			return nil, fmt.Errorf("storage service: reload storage: %w", err)
		}
		notify(s.notifier, "storage", "updated", id)
	}

	return storage, nil
}

// Delete removes a storage. Folder rows cascade at the store level.
func (s *StorageService) Delete(ctx context.Context, id int64) error {
	ctx = ensureContext(ctx)

	res := s.db.WithContext(ctx).Delete(&models.Storage{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("storage service: delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	notify(s.notifier, "storage", "deleted", id)
	return nil
}

// Count returns the number of storages.
func (s *StorageService) Count(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Storage{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("storage service: count: %w", err)
	}
	return count, nil
}
