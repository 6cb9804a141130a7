package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/stowagehq/stowage/internal/models"
)

// StatsService aggregates inventory counts for the statistics view.
type StatsService struct {
	db *gorm.DB
}

// Overview summarises the whole dataset.
type Overview struct {
	TotalStorages    int64          `json:"totalStorages"`
	TotalFolders     int64          `json:"totalFolders"`
	TotalProducts    int64          `json:"totalProducts"`
	MarkedFolders    int64          `json:"markedFolders"`
	MarkedProducts   int64          `json:"markedProducts"`
	CreatedLast7Days int64          `json:"createdLast7Days"`
	CreatedLast30    int64          `json:"createdLast30Days"`
	Storages         []StorageStats `json:"storages"`
}

// StorageStats carries per-storage folder counts.
type StorageStats struct {
	StorageID   int64  `json:"storageId"`
	Name        string `json:"name"`
	FolderCount int64  `json:"folderCount"`
}

// NewStatsService constructs a statistics service.
func NewStatsService(db *gorm.DB) (*StatsService, error) {
	if db == nil {
		return nil, errors.New("stats service: db is required")
	}
	return &StatsService{db: db}, nil
}

// Overview computes the dataset summary in a handful of count queries.
func (s *StatsService) Overview(ctx context.Context) (*Overview, error) {
	ctx = ensureContext(ctx)

	var out Overview
	if err := s.db.WithContext(ctx).Model(&models.Storage{}).Count(&out.TotalStorages).Error; err != nil {
		return nil, fmt.Errorf("stats service: count storages: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Folder{}).Count(&out.TotalFolders).Error; err != nil {
		return nil, fmt.Errorf("stats service: count folders: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Count(&out.TotalProducts).Error; err != nil {
		return nil, fmt.Errorf("stats service: count products: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Folder{}).Where("is_marked = ?", true).Count(&out.MarkedFolders).Error; err != nil {
		return nil, fmt.Errorf("stats service: count marked: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("is_marked = ?", true).Count(&out.MarkedProducts).Error; err != nil {
		return nil, fmt.Errorf("stats service: count marked products: %w", err)
	}

	now := time.Now()
	week := now.AddDate(0, 0, -7).UnixMilli()
	month := now.AddDate(0, 0, -30).UnixMilli()
	if err := s.db.WithContext(ctx).Model(&models.Folder{}).Where("created_at >= ?", week).Count(&out.CreatedLast7Days).Error; err != nil {
		return nil, fmt.Errorf("stats service: count recent: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Folder{}).Where("created_at >= ?", month).Count(&out.CreatedLast30).Error; err != nil {
		return nil, fmt.Errorf("stats service: count recent: %w", err)
	}

	rows, err := s.perStorage(ctx)
	if err != nil {
		return nil, err
	}
	out.Storages = rows

	return &out, nil
}

func (s *StatsService) perStorage(ctx context.Context) ([]StorageStats, error) {
	var rows []StorageStats
	err := s.db.WithContext(ctx).
		Model(&models.Storage{}).
		Select("storages.id AS storage_id, storages.name AS name, COUNT(folders.id) AS folder_count").
		Joins("LEFT JOIN folders ON folders.storage_id = storages.id").
		Group("storages.id, storages.name").
		Order("storages.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("stats service: per-storage counts: %w", err)
	}
	if rows == nil {
		rows = []StorageStats{}
	}
	return rows, nil
}
