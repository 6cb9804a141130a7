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

// DefaultPerPage bounds paginated folder listings.
const DefaultPerPage = 25

// FolderService manages the nested folder hierarchy inside storages.
//
// UpdatedAt advances on every mutation, favorite toggles included; lists
// sorted by recency will reorder after marking, which is accepted in
// exchange for a uniform mutation rule.
type FolderService struct {
	db       *gorm.DB
	notifier ChangeNotifier
}

// FolderInput describes folder create/update payloads.
type FolderInput struct {
	Name           string
	Description    *string
	StorageID      int64
	ParentFolderID *int64
	IsMarked       *bool
}

// NewFolderService constructs a folder service.
func NewFolderService(db *gorm.DB, notifier ChangeNotifier) (*FolderService, error) {
	if db == nil {
		return nil, errors.New("folder service: db is required")
	}
	return &FolderService{db: db, notifier: notifier}, nil
}

// RootFolders returns the top-level folders of a storage, newest first.
func (s *FolderService) RootFolders(ctx context.Context, storageID int64) ([]models.Folder, error) {
	ctx = ensureContext(ctx)

	var folders []models.Folder
	err := s.db.WithContext(ctx).
		Where("storage_id = ? AND parent_folder_id IS NULL", storageID).
		Order("created_at DESC").
		Find(&folders).Error
	if err != nil {
		return nil, fmt.Errorf("folder service: list root folders: %w", err)
	}
	return folders, nil
}

// SubFolders returns the direct children of a folder, newest first.
func (s *FolderService) SubFolders(ctx context.Context, parentID int64) ([]models.Folder, error) {
	ctx = ensureContext(ctx)

	var folders []models.Folder
	err := s.db.WithContext(ctx).
		Where("parent_folder_id = ?", parentID).
		Order("created_at DESC").
		Find(&folders).Error
	if err != nil {
		return nil, fmt.Errorf("folder service: list sub folders: %w", err)
	}
	return folders, nil
}

// Recent returns the most recently created folders across all storages.
func (s *FolderService) Recent(ctx context.Context, limit int) ([]models.Folder, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 10
	}

	var folders []models.Folder
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&folders).Error
	if err != nil {
		return nil, fmt.Errorf("folder service: list recent: %w", err)
	}
	return folders, nil
}

// ListByStorage returns one page of a storage's folders, newest first,
// along with the total count for pagination metadata.
func (s *FolderService) ListByStorage(ctx context.Context, storageID int64, page, perPage int) ([]models.Folder, int64, error) {
	ctx = ensureContext(ctx)
	page, perPage = normalisePage(page, perPage)

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Folder{}).Where("storage_id = ?", storageID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("folder service: count by storage: %w", err)
	}

	var folders []models.Folder
	err := s.db.WithContext(ctx).
		Where("storage_id = ?", storageID).
		Order("created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&folders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("folder service: list by storage: %w", err)
	}
	return folders, total, nil
}

// ListAll returns one page over every folder, newest first.
func (s *FolderService) ListAll(ctx context.Context, page, perPage int) ([]models.Folder, int64, error) {
	ctx = ensureContext(ctx)
	page, perPage = normalisePage(page, perPage)

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Folder{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("folder service: count: %w", err)
	}

	var folders []models.Folder
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&folders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("folder service: list all: %w", err)
	}
	return folders, total, nil
}

// Marked returns every favorite folder ordered by name.
func (s *FolderService) Marked(ctx context.Context) ([]models.Folder, error) {
	ctx = ensureContext(ctx)

	var folders []models.Folder
	err := s.db.WithContext(ctx).Where("is_marked = ?", true).Order("name ASC").Find(&folders).Error
	if err != nil {
		return nil, fmt.Errorf("folder service: list marked: %w", err)
	}
	return folders, nil
}

// Search matches folders whose name or description contains the query.
func (s *FolderService) Search(ctx context.Context, query string) ([]models.Folder, error) {
	ctx = ensureContext(ctx)

	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Folder{}, nil
	}
	pattern := "%" + query + "%"

	var folders []models.Folder
	err := s.db.WithContext(ctx).
		Where("name LIKE ? OR description LIKE ?", pattern, pattern).
		Order("name ASC").
		Find(&folders).Error
	if err != nil {
		return nil, fmt.Errorf("folder service: search: %w", err)
	}
	return folders, nil
}

// Get loads a single folder by identifier.
func (s *FolderService) Get(ctx context.Context, id int64) (*models.Folder, error) {
	ctx = ensureContext(ctx)

	var folder models.Folder
	if err := s.db.WithContext(ctx).First(&folder, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("folder service: load folder: %w", err)
	}
	return &folder, nil
}

// Create registers a new folder inside a storage, optionally nested under a
// parent folder of the same storage.
func (s *FolderService) Create(ctx context.Context, input FolderInput) (*models.Folder, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("folder name is required")
	}

	var storage models.Storage
	if err := s.db.WithContext(ctx).First(&storage, "id = ?", input.StorageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewBadRequest("storage does not exist")
		}
		return nil, fmt.Errorf("folder service: check storage: %w", err)
	}

	if input.ParentFolderID != nil {
		parent, err := s.Get(ctx, *input.ParentFolderID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewBadRequest("parent folder does not exist")
			}
			return nil, err
		}
		if parent.StorageID != input.StorageID {
			return nil, apperrors.NewBadRequest("parent folder belongs to a different storage")
		}
	}

	now := nowMilli()
	folder := models.Folder{
		Name:           name,
		StorageID:      input.StorageID,
		ParentFolderID: input.ParentFolderID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if input.Description != nil {
		folder.Description = strings.TrimSpace(*input.Description)
	}
	if input.IsMarked != nil {
		folder.IsMarked = *input.IsMarked
	}

	if err := s.db.WithContext(ctx).Create(&folder).Error; err != nil {
		return nil, fmt.Errorf("folder service: create: %w", err)
	}

	notify(s.notifier, "folder", "created", folder.ID)
	return &folder, nil
}

// Update modifies folder name, description, and favorite flag.
func (s *FolderService) Update(ctx context.Context, id int64, input FolderInput) (*models.Folder, error) {
	ctx = ensureContext(ctx)

	folder, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" && name != folder.Name {
		updates["name"] = name
	}
	if input.Description != nil {
		if desc := strings.TrimSpace(*input.Description); desc != folder.Description {
			updates["description"] = desc
		}
	}
	if input.IsMarked != nil && *input.IsMarked != folder.IsMarked {
		updates["is_marked"] = *input.IsMarked
	}

	if len(updates) > 0 {
		updates["updated_at"] = nowMilli()
		if err := s.db.WithContext(ctx).Model(folder).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("folder service: update: %w", err)
		}
		if err := s.db.WithContext(ctx).First(folder, "id = ?", id).Error; err != nil {
			return nil, fmt.Errorf("folder service: reload folder: %w", err)
		}
		notify(s.notifier, "folder", "updated", id)
	}

	return folder, nil
}

// Delete removes a folder. Sub-folders cascade at the store level.
func (s *FolderService) Delete(ctx context.Context, id int64) error {
	ctx = ensureContext(ctx)

	res := s.db.WithContext(ctx).Delete(&models.Folder{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("folder service: delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	notify(s.notifier, "folder", "deleted", id)
	return nil
}

// Move re-parents a folder within its storage. The new parent must belong
// to the same storage and must not be the folder itself or one of its
// descendants.
func (s *FolderService) Move(ctx context.Context, id int64, newParentID *int64) (*models.Folder, error) {
	ctx = ensureContext(ctx)

	folder, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if newParentID != nil {
		if *newParentID == id {
			return nil, apperrors.NewBadRequest("folder cannot be its own parent")
		}
		parent, err := s.Get(ctx, *newParentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewBadRequest("target parent folder does not exist")
			}
			return nil, err
		}
		if parent.StorageID != folder.StorageID {
			return nil, apperrors.NewBadRequest("target parent belongs to a different storage")
		}
		cycle, err := s.isDescendant(ctx, id, *newParentID)
		if err != nil {
			return nil, err
		}
		if cycle {
			return nil, apperrors.NewBadRequest("cannot move a folder into its own subtree")
		}
	}

	updates := map[string]any{
		"parent_folder_id": newParentID,
		"updated_at":       nowMilli(),
	}
	if err := s.db.WithContext(ctx).Model(folder).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("folder service: move: %w", err)
	}
	if err := s.db.WithContext(ctx).First(folder, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("folder service: reload folder: %w", err)
	}

	notify(s.notifier, "folder", "moved", id)
	return folder, nil
}

// MoveToStorage re-homes folders (and their entire subtrees) into another
// storage. Moved folders whose parent is not part of the move become root
// folders of the target storage, keeping every ancestor chain consistent.
func (s *FolderService) MoveToStorage(ctx context.Context, ids []int64, storageID int64) error {
	ctx = ensureContext(ctx)
	if len(ids) == 0 {
		return nil
	}

	var storage models.Storage
	if err := s.db.WithContext(ctx).First(&storage, "id = ?", storageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewBadRequest("target storage does not exist")
		}
		return fmt.Errorf("folder service: check storage: %w", err)
	}

	now := nowMilli()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		moved := map[int64]bool{}
		for _, id := range ids {
			moved[id] = true
		}

		for _, id := range ids {
			subtree, err := collectSubtree(tx, id)
			if err != nil {
				return err
			}
			if len(subtree) == 0 {
				return apperrors.ErrNotFound
			}

			if err := tx.Model(&models.Folder{}).
				Where("id IN ?", subtree).
				Updates(map[string]any{"storage_id": storageID, "updated_at": now}).Error; err != nil {
				return fmt.Errorf("folder service: move subtree to storage: %w", err)
			}
		}

		// Detach moved roots whose parent stayed behind.
		var roots []models.Folder
		if err := tx.Where("id IN ?", ids).Find(&roots).Error; err != nil {
			return fmt.Errorf("folder service: load moved folders: %w", err)
		}
		for _, root := range roots {
			if root.ParentFolderID != nil && !moved[*root.ParentFolderID] {
				if err := tx.Model(&models.Folder{}).
					Where("id = ?", root.ID).
					Updates(map[string]any{"parent_folder_id": nil, "updated_at": now}).Error; err != nil {
					return fmt.Errorf("folder service: detach moved folder: %w", err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	for _, id := range ids {
		notify(s.notifier, "folder", "moved", id)
	}
	return nil
}

// Copy duplicates a single folder (not its subtree) under the target
// parent, assigning a fresh identifier and timestamps.
func (s *FolderService) Copy(ctx context.Context, sourceID int64, targetParentID *int64) (*models.Folder, error) {
	ctx = ensureContext(ctx)

	source, err := s.Get(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	if targetParentID != nil {
		parent, err := s.Get(ctx, *targetParentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewBadRequest("target parent folder does not exist")
			}
			return nil, err
		}
		if parent.StorageID != source.StorageID {
			return nil, apperrors.NewBadRequest("target parent belongs to a different storage")
		}
	}

	now := nowMilli()
	copied := models.Folder{
		Name:           source.Name,
		Description:    source.Description,
		StorageID:      source.StorageID,
		ParentFolderID: targetParentID,
		IsMarked:       source.IsMarked,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.db.WithContext(ctx).Create(&copied).Error; err != nil {
		return nil, fmt.Errorf("folder service: copy: %w", err)
	}

	notify(s.notifier, "folder", "created", copied.ID)
	return &copied, nil
}

// SetMarked flips the favorite flag on a batch of folders.
func (s *FolderService) SetMarked(ctx context.Context, ids []int64, marked bool) error {
	ctx = ensureContext(ctx)
	if len(ids) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Model(&models.Folder{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"is_marked": marked, "updated_at": nowMilli()}).Error
	if err != nil {
		return fmt.Errorf("folder service: set marked: %w", err)
	}

	for _, id := range ids {
		notify(s.notifier, "folder", "updated", id)
	}
	return nil
}

// Count returns the total number of folders.
func (s *FolderService) Count(ctx context.Context) (int64, error) {
	return s.countWhere(ctx, "", nil)
}

// MarkedCount returns the number of favorite folders.
func (s *FolderService) MarkedCount(ctx context.Context) (int64, error) {
	return s.countWhere(ctx, "is_marked = ?", true)
}

// CountByStorage returns the number of folders inside one storage.
func (s *FolderService) CountByStorage(ctx context.Context, storageID int64) (int64, error) {
	return s.countWhere(ctx, "storage_id = ?", storageID)
}

// CreatedAfter returns the number of folders created at or after the given
// epoch-millisecond timestamp.
func (s *FolderService) CreatedAfter(ctx context.Context, ts int64) (int64, error) {
	return s.countWhere(ctx, "created_at >= ?", ts)
}

func (s *FolderService) countWhere(ctx context.Context, cond string, arg any) (int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Folder{})
	if cond != "" {
		query = query.Where(cond, arg)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("folder service: count: %w", err)
	}
	return count, nil
}

// isDescendant reports whether candidate sits inside the subtree rooted at
// rootID, walking parent links upward from the candidate.
func (s *FolderService) isDescendant(ctx context.Context, rootID, candidate int64) (bool, error) {
	current := candidate
	for {
		var folder models.Folder
		if err := s.db.WithContext(ctx).Select("id", "parent_folder_id").First(&folder, "id = ?", current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("folder service: walk ancestors: %w", err)
		}
		if folder.ID == rootID {
			return true, nil
		}
		if folder.ParentFolderID == nil {
			return false, nil
		}
		current = *folder.ParentFolderID
	}
}

// collectSubtree returns the ids of a folder and all of its descendants.
func collectSubtree(tx *gorm.DB, rootID int64) ([]int64, error) {
	var exists int64
	if err := tx.Model(&models.Folder{}).Where("id = ?", rootID).Count(&exists).Error; err != nil {
		return nil, fmt.Errorf("folder service: check folder: %w", err)
	}
	if exists == 0 {
		return nil, nil
	}

	ids := []int64{rootID}
	frontier := []int64{rootID}
	for len(frontier) > 0 {
		var children []int64
		if err := tx.Model(&models.Folder{}).
			Where("parent_folder_id IN ?", frontier).
			Pluck("id", &children).Error; err != nil {
			return nil, fmt.Errorf("folder service: collect subtree: %w", err)
		}
		ids = append(ids, children...)
		frontier = children
	}
	return ids, nil
}

func normalisePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = DefaultPerPage
	}
	return page, perPage
}
