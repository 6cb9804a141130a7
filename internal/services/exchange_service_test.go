package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stowagehq/stowage/internal/database/testutil"
	"github.com/stowagehq/stowage/internal/exchange"
	"github.com/stowagehq/stowage/internal/models"
	apperrors "github.com/stowagehq/stowage/pkg/errors"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) NotifyChange(resource, action string, id int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, resource+"/"+action)
}

func seedExchangeData(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&models.Storage{ID: 1, Name: "Garage", CreatedAt: 10}).Error)
	require.NoError(t, db.Create(&models.Folder{ID: 2, Name: "Shelf", StorageID: 1, CreatedAt: 11, UpdatedAt: 12}).Error)
}

func TestExchangeExportThenImportRoundTrip(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	seedExchangeData(t, db)

	svc, err := NewExchangeService(db, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), &buf))

	// Wipe and restore from the export.
	require.NoError(t, db.Exec("DELETE FROM folders").Error)
	require.NoError(t, db.Exec("DELETE FROM storages").Error)

	summary, err := svc.ImportJSON(context.Background(), &buf)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Storages)
	require.Equal(t, 1, summary.Folders)

	var folder models.Folder
	require.NoError(t, db.First(&folder).Error)
	require.Equal(t, int64(2), folder.ID)
	require.Equal(t, int64(11), folder.CreatedAt)
	require.Equal(t, int64(12), folder.UpdatedAt)
}

func TestExchangeExportDocumentShape(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	seedExchangeData(t, db)

	svc, err := NewExchangeService(db, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), &buf))

	var wire map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &wire))
	require.Contains(t, wire, "storages")
	require.Contains(t, wire, "folders")
	require.Contains(t, wire, "exportDate")
}

func TestExchangeImportMalformedDocumentLeavesStoreUntouched(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	seedExchangeData(t, db)

	svc, err := NewExchangeService(db, nil)
	require.NoError(t, err)

	_, err = svc.ImportJSON(context.Background(), strings.NewReader(`{"storages":[]}`))
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, apperrors.ErrMalformedDocument.Code, appErr.Code)

	var count int64
	require.NoError(t, db.Model(&models.Storage{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestExchangeImportConstraintViolationRollsBack(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	seedExchangeData(t, db)

	svc, err := NewExchangeService(db, nil)
	require.NoError(t, err)

	payload := `{"storages":[{"id":9,"name":"S","description":"","createdAt":1}],
		"folders":[{"id":8,"name":"F","description":"","storageId":404,"createdAt":1,"updatedAt":1}],
		"exportDate":1}`

	_, err = svc.ImportJSON(context.Background(), strings.NewReader(payload))
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, apperrors.ErrConstraintViolation.Code, appErr.Code)

	var storage models.Storage
	require.NoError(t, db.First(&storage).Error)
	require.Equal(t, int64(1), storage.ID)
}

func TestExchangeImportDump(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	notifier := &recordingNotifier{}
	svc, err := NewExchangeService(db, notifier)
	require.NoError(t, err)

	dump := strings.Join([]string{
		"INSERT INTO `storages` VALUES (5, 'Main St', '123 Main', 'HQ', 1, '2020-01-01 10:00:00', '2020-01-01 10:00:00');",
		"INSERT INTO `folders` VALUES (6, 5, 'Shelf', '', 1, NULL, '2020-01-01 10:00:00', '2020-01-01 10:00:00');",
	}, "\n")

	summary, err := svc.ImportDump(context.Background(), strings.NewReader(dump))
	require.NoError(t, err)
	require.Equal(t, 1, summary.Storages)
	require.Equal(t, 1, summary.Folders)

	var storage models.Storage
	require.NoError(t, db.First(&storage).Error)
	require.Equal(t, int64(5), storage.ID)
	require.Equal(t, "123 Main\n\nHQ", storage.Description)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Contains(t, notifier.events, "dataset/replaced")
}

func TestExchangeRejectsConcurrentOperations(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewExchangeService(db, nil)
	require.NoError(t, err)

	// Simulate an in-flight bulk operation holding the exchange lock.
	svc.mu.Lock()
	defer svc.mu.Unlock()

	var buf bytes.Buffer
	err = svc.Export(context.Background(), &buf)
	require.ErrorIs(t, err, apperrors.ErrExchangeBusy)

	_, err = svc.ImportJSON(context.Background(), strings.NewReader("{}"))
	require.ErrorIs(t, err, apperrors.ErrExchangeBusy)

	_, err = svc.ImportDump(context.Background(), strings.NewReader(""))
	require.ErrorIs(t, err, apperrors.ErrExchangeBusy)
}

func TestExportToFileWritesAtomically(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	seedExchangeData(t, db)

	svc, err := NewExchangeService(db, nil)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "export.json")

	require.NoError(t, svc.ExportToFile(context.Background(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	doc, err := exchange.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, doc.Storages, 1)
	require.Len(t, doc.Folders, 1)

	// No staging leftovers.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
