package exchange

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/stowagehq/stowage/internal/models"
)

// Loader atomically replaces the entire persisted dataset with the supplied
// records, preserving original identifiers. It is the only component allowed
// to delete all rows in one step.
type Loader struct {
	db *gorm.DB
}

// NewLoader constructs a bulk loader.
func NewLoader(db *gorm.DB) (*Loader, error) {
	if db == nil {
		return nil, errors.New("bulk loader: db is required")
	}
	return &Loader{db: db}, nil
}

// Replace wipes both tables and re-inserts every record inside a single
// transaction. Records keep their original identifiers; the normal
// auto-assignment path would silently corrupt every folder's storage
// reference. Any failure rolls the whole transaction back, wipe included,
// leaving the store exactly as it was before the call.
func (l *Loader) Replace(ctx context.Context, storages []models.Storage, folders []models.Folder) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Children first so the storage FK never blocks the wipe.
		if err := tx.Exec("DELETE FROM folders").Error; err != nil {
			return fmt.Errorf("bulk loader: wipe folders: %w", err)
		}
		if err := tx.Exec("DELETE FROM storages").Error; err != nil {
			return fmt.Errorf("bulk loader: wipe storages: %w", err)
		}

		// Storages must exist before any folder referencing them.
		for i := range storages {
			if err := tx.Create(&storages[i]).Error; err != nil {
				return fmt.Errorf("bulk loader: insert storage %d (%q): %w", storages[i].ID, storages[i].Name, err)
			}
		}

		// SQLite checks foreign keys eagerly (PRAGMA foreign_keys=ON is set
		// at open), so folders are inserted parent-before-child rather than
		// relying on deferred constraint checking.
		for _, folder := range orderParentsFirst(folders) {
			f := folder
			if err := tx.Create(&f).Error; err != nil {
				return fmt.Errorf("bulk loader: insert folder %d (%q): %w", f.ID, f.Name, err)
			}
		}

		return nil
	})
}

// orderParentsFirst sorts folders so every parent precedes its children.
// Folders whose parent is absent from the batch are emitted as-is; their
// insert fails with a constraint violation, which is the signal the caller
// wants.
func orderParentsFirst(folders []models.Folder) []models.Folder {
	byID := make(map[int64]bool, len(folders))
	for _, f := range folders {
		byID[f.ID] = true
	}

	placed := make(map[int64]bool, len(folders))
	ordered := make([]models.Folder, 0, len(folders))
	remaining := folders

	for len(remaining) > 0 {
		var deferred []models.Folder
		progressed := false

		for _, f := range remaining {
			ready := f.ParentFolderID == nil || placed[*f.ParentFolderID] || !byID[*f.ParentFolderID]
			if ready {
				ordered = append(ordered, f)
				placed[f.ID] = true
				progressed = true
			} else {
				deferred = append(deferred, f)
			}
		}

		if !progressed {
			// Parent cycle; emit the rest as-is and let the database reject it.
			ordered = append(ordered, deferred...)
			break
		}
		remaining = deferred
	}

	return ordered
}
