package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stowagehq/stowage/internal/models"
	"github.com/stowagehq/stowage/pkg/crypto"
	apperrors "github.com/stowagehq/stowage/pkg/errors"
)

// lockSettingKey holds the bcrypt hash guarding the API when a lock is set.
const lockSettingKey = "access_lock"

type lockSetting struct {
	Hash string `json:"hash"`
}

// SettingsService stores keyed JSON preferences (theme, language, sort
// order) and manages the optional access lock.
type SettingsService struct {
	db *gorm.DB
}

// NewSettingsService constructs a settings service.
func NewSettingsService(db *gorm.DB) (*SettingsService, error) {
	if db == nil {
		return nil, errors.New("settings service: db is required")
	}
	return &SettingsService{db: db}, nil
}

// Get loads a single setting by key.
func (s *SettingsService) Get(ctx context.Context, key string) (*models.AppSetting, error) {
	ctx = ensureContext(ctx)

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperrors.NewBadRequest("setting key is required")
	}

	var setting models.AppSetting
	if err := s.db.WithContext(ctx).First(&setting, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("settings service: load setting: %w", err)
	}
	return &setting, nil
}

// Put upserts a setting. The value must be a valid JSON document.
func (s *SettingsService) Put(ctx context.Context, key string, value json.RawMessage) (*models.AppSetting, error) {
	ctx = ensureContext(ctx)

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperrors.NewBadRequest("setting key is required")
	}
	if !json.Valid(value) {
		return nil, apperrors.NewBadRequest("setting value must be valid JSON")
	}

	setting := models.AppSetting{
		Key:   key,
		Value: datatypes.JSON(value),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&setting).Error
	if err != nil {
		return nil, fmt.Errorf("settings service: save setting: %w", err)
	}
	return &setting, nil
}

// Delete removes a setting by key.
func (s *SettingsService) Delete(ctx context.Context, key string) error {
	ctx = ensureContext(ctx)

	res := s.db.WithContext(ctx).Delete(&models.AppSetting{}, "key = ?", strings.TrimSpace(key))
	if res.Error != nil {
		return fmt.Errorf("settings service: delete setting: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetLockPassword enables the access lock with the given password.
func (s *SettingsService) SetLockPassword(ctx context.Context, password string) error {
	if strings.TrimSpace(password) == "" {
		return apperrors.NewBadRequest("lock password is required")
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("settings service: hash password: %w", err)
	}

	value, err := json.Marshal(lockSetting{Hash: hash})
	if err != nil {
		return fmt.Errorf("settings service: encode lock: %w", err)
	}

	_, err = s.Put(ctx, lockSettingKey, value)
	return err
}

// ClearLock disables the access lock.
func (s *SettingsService) ClearLock(ctx context.Context) error {
	err := s.Delete(ctx, lockSettingKey)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	return err
}

// LockEnabled reports whether an access lock password is configured.
func (s *SettingsService) LockEnabled(ctx context.Context) (bool, error) {
	_, err := s.Get(ctx, lockSettingKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// VerifyLockPassword checks a candidate password against the stored hash.
func (s *SettingsService) VerifyLockPassword(ctx context.Context, password string) (bool, error) {
	setting, err := s.Get(ctx, lockSettingKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	var lock lockSetting
	if err := json.Unmarshal(setting.Value, &lock); err != nil {
		return false, fmt.Errorf("settings service: decode lock: %w", err)
	}

	return crypto.VerifyPassword(lock.Hash, password), nil
}
