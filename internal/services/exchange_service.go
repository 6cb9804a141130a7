package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stowagehq/stowage/internal/exchange"
	"github.com/stowagehq/stowage/internal/models"
	apperrors "github.com/stowagehq/stowage/pkg/errors"
	"github.com/stowagehq/stowage/pkg/logger"
	"github.com/stowagehq/stowage/pkg/metrics"
)

// ImportSummary reports how many records a successful import applied.
type ImportSummary struct {
	Storages int `json:"storages"`
	Folders  int `json:"folders"`
}

// ExchangeService coordinates bulk export and import of the whole dataset.
//
// It owns no persistent state. All component failures (codec, parser,
// loader, I/O) are converted to AppError values here; nothing below this
// boundary reaches the HTTP layer raw. A mutex serialises bulk operations:
// the wipe-then-reload sequence is not safe under concurrent mutation, so a
// second exchange request is rejected outright instead of queued.
type ExchangeService struct {
	db       *gorm.DB
	loader   *exchange.Loader
	parser   exchange.Parser
	notifier ChangeNotifier
	log      *zap.Logger

	mu sync.Mutex
}

// NewExchangeService constructs the exchange orchestrator.
func NewExchangeService(db *gorm.DB, notifier ChangeNotifier) (*ExchangeService, error) {
	if db == nil {
		return nil, errors.New("exchange service: db is required")
	}

	loader, err := exchange.NewLoader(db)
	if err != nil {
		return nil, err
	}

	return &ExchangeService{
		db:       db,
		loader:   loader,
		parser:   exchange.NewSQLDumpParser(),
		notifier: notifier,
		log:      logger.WithModule("exchange"),
	}, nil
}

// Export writes the full current dataset as a JSON document.
func (s *ExchangeService) Export(ctx context.Context, w io.Writer) error {
	if !s.mu.TryLock() {
		metrics.ExchangeOperations.WithLabelValues("export", "rejected").Inc()
		return apperrors.ErrExchangeBusy
	}
	defer s.mu.Unlock()

	if err := s.export(ctx, w); err != nil {
		metrics.ExchangeOperations.WithLabelValues("export", "failure").Inc()
		s.log.Error("export failed", zap.Error(err))
		return apperrors.FromError(err)
	}

	metrics.ExchangeOperations.WithLabelValues("export", "success").Inc()
	return nil
}

// ExportToFile writes the dataset to path through a staging file, renaming
// only on full success so a failed export never leaves a truncated document
// that could be mistaken for a complete one.
func (s *ExchangeService) ExportToFile(ctx context.Context, path string) (err error) {
	if !s.mu.TryLock() {
		metrics.ExchangeOperations.WithLabelValues("export", "rejected").Inc()
		return apperrors.ErrExchangeBusy
	}
	defer s.mu.Unlock()

	defer func() {
		if err != nil {
			metrics.ExchangeOperations.WithLabelValues("export", "failure").Inc()
			s.log.Error("export to file failed", zap.String("path", path), zap.Error(err))
			err = apperrors.FromError(err)
		} else {
			metrics.ExchangeOperations.WithLabelValues("export", "success").Inc()
		}
	}()

	if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
		return fmt.Errorf("exchange service: create export directory: %w", mkErr)
	}

	staging, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("exchange service: create staging file: %w", err)
	}

	if err = s.export(ctx, staging); err != nil {
		err = multierr.Append(err, staging.Close())
		err = multierr.Append(err, os.Remove(staging.Name()))
		return err
	}

	if err = staging.Close(); err != nil {
		err = multierr.Append(fmt.Errorf("exchange service: close staging file: %w", err), os.Remove(staging.Name()))
		return err
	}

	if err = os.Rename(staging.Name(), path); err != nil {
		err = multierr.Append(fmt.Errorf("exchange service: finalise export: %w", err), os.Remove(staging.Name()))
		return err
	}

	s.log.Info("dataset exported", zap.String("path", path))
	return nil
}

func (s *ExchangeService) export(ctx context.Context, w io.Writer) error {
	ctx = ensureContext(ctx)

	var storages []models.Storage
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&storages).Error; err != nil {
		return fmt.Errorf("exchange service: list storages: %w", err)
	}

	var folders []models.Folder
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&folders).Error; err != nil {
		return fmt.Errorf("exchange service: list folders: %w", err)
	}

	doc := exchange.NewDocument(storages, folders, time.Now())
	if err := exchange.Encode(w, doc); err != nil {
		return fmt.Errorf("exchange service: %w", err)
	}

	s.log.Info("dataset encoded",
		zap.Int("storages", len(storages)),
		zap.Int("folders", len(folders)),
	)
	return nil
}

// ImportJSON decodes an export document and atomically replaces the dataset
// with its contents. The store is untouched unless decoding fully succeeds.
func (s *ExchangeService) ImportJSON(ctx context.Context, r io.Reader) (*ImportSummary, error) {
	if !s.mu.TryLock() {
		metrics.ExchangeOperations.WithLabelValues("import_json", "rejected").Inc()
		return nil, apperrors.ErrExchangeBusy
	}
	defer s.mu.Unlock()

	doc, err := exchange.Decode(r)
	if err != nil {
		metrics.ExchangeOperations.WithLabelValues("import_json", "failure").Inc()
		s.log.Error("import decode failed", zap.Error(err))
		return nil, apperrors.FromError(err)
	}

	summary, err := s.load(ctx, "import_json", doc.Storages, doc.Folders)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// ImportDump scrapes a legacy SQL dump and atomically replaces the dataset
// with the scraped records.
func (s *ExchangeService) ImportDump(ctx context.Context, r io.Reader) (*ImportSummary, error) {
	if !s.mu.TryLock() {
		metrics.ExchangeOperations.WithLabelValues("import_dump", "rejected").Inc()
		return nil, apperrors.ErrExchangeBusy
	}
	defer s.mu.Unlock()

	result := s.parser.Parse(r)
	if !result.Success {
		metrics.ExchangeOperations.WithLabelValues("import_dump", "failure").Inc()
		s.log.Error("dump parse failed", zap.String("reason", result.ErrorMessage))
		if result.ErrorMessage != "" {
			return nil, apperrors.ErrParseIncomplete.WithMessage(result.ErrorMessage)
		}
		return nil, apperrors.ErrParseIncomplete
	}

	summary, err := s.load(ctx, "import_dump", result.Storages, result.Folders)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// load runs the bulk loader and records metrics. Callers hold s.mu.
func (s *ExchangeService) load(ctx context.Context, operation string, storages []models.Storage, folders []models.Folder) (*ImportSummary, error) {
	ctx = ensureContext(ctx)

	if err := s.loader.Replace(ctx, storages, folders); err != nil {
		metrics.ExchangeOperations.WithLabelValues(operation, "failure").Inc()
		s.log.Error("bulk load failed", zap.Error(err))
		return nil, apperrors.ErrConstraintViolation.WithInternal(err)
	}

	metrics.ExchangeOperations.WithLabelValues(operation, "success").Inc()
	metrics.ExchangeRecords.WithLabelValues("storages").Set(float64(len(storages)))
	metrics.ExchangeRecords.WithLabelValues("folders").Set(float64(len(folders)))

	s.log.Info("dataset replaced",
		zap.String("operation", operation),
		zap.Int("storages", len(storages)),
		zap.Int("folders", len(folders)),
	)

	notify(s.notifier, "dataset", "replaced", 0)
	return &ImportSummary{Storages: len(storages), Folders: len(folders)}, nil
}
