package exchange

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedClockParser(t *testing.T) (*SQLDumpParser, int64) {
	t.Helper()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &SQLDumpParser{now: func() time.Time { return now }}, now.UnixMilli()
}

func TestParseStorageRow(t *testing.T) {
	parser, nowMs := fixedClockParser(t)

	dump := "INSERT INTO `storages` VALUES (5, 'Main St', '123 Main', 'HQ', 1, '2020-01-01 10:00:00', '2020-01-02 10:00:00');"

	result := parser.Parse(strings.NewReader(dump))
	require.True(t, result.Success)
	require.Len(t, result.Storages, 1)
	require.Empty(t, result.Folders)

	storage := result.Storages[0]
	require.Equal(t, int64(5), storage.ID)
	require.Equal(t, "Main St", storage.Name)
	require.Equal(t, "123 Main\n\nHQ", storage.Description)
	require.Equal(t, nowMs, storage.CreatedAt)
}

func TestParseStorageEmptyDescriptionKeepsAddressOnly(t *testing.T) {
	parser, _ := fixedClockParser(t)

	dump := "INSERT INTO `storages` VALUES (1, 'Depot', '9 Dock Rd', '', 1, '2020-01-01 10:00:00', '2020-01-01 10:00:00');"

	result := parser.Parse(strings.NewReader(dump))
	require.True(t, result.Success)
	require.Len(t, result.Storages, 1)
	require.Equal(t, "9 Dock Rd", result.Storages[0].Description)
}

func TestParseSkipsInactiveRows(t *testing.T) {
	parser, _ := fixedClockParser(t)

	dump := strings.Join([]string{
		"INSERT INTO `storages` VALUES (1, 'Active', 'a', 'b', 1, '2020-01-01 10:00:00', '2020-01-01 10:00:00');",
		"INSERT INTO `storages` VALUES (2, 'Retired', 'a', 'b', 0, '2020-01-01 10:00:00', '2020-01-01 10:00:00');",
		"INSERT INTO `folders` VALUES (10, 1, 'Keep', '', 1, NULL, '2020-01-01 10:00:00', '2020-01-01 10:00:00');",
		"INSERT INTO `folders` VALUES (11, 1, 'Drop', '', 0, NULL, '2020-01-01 10:00:00', '2020-01-01 10:00:00');",
	}, "\n")

	result := parser.Parse(strings.NewReader(dump))
	require.True(t, result.Success)
	require.Len(t, result.Storages, 1)
	require.Equal(t, int64(1), result.Storages[0].ID)
	require.Len(t, result.Folders, 1)
	require.Equal(t, int64(10), result.Folders[0].ID)
}

func TestParseBatchedInsertYieldsAllTuples(t *testing.T) {
	parser, _ := fixedClockParser(t)

	dump := "INSERT INTO `folders` VALUES (1, 1, 'A', '', 1, NULL, '2020-01-01 10:00:00', '2020-01-01 10:00:00'),(2, 1, 'B', '', 1, 7, '2020-01-02 10:00:00', '2020-01-02 10:00:00'),(3, NULL, 'C', '', 1, NULL, '2020-01-03 10:00:00', '2020-01-03 10:00:00');"

	result := parser.Parse(strings.NewReader(dump))
	require.True(t, result.Success)
	require.Len(t, result.Folders, 3)
	require.Equal(t, "A", result.Folders[0].Name)
	require.Equal(t, "B", result.Folders[1].Name)
	// NULL storage references fall back to the first storage.
	require.Equal(t, int64(1), result.Folders[2].StorageID)
}

func TestParseFolderTimestamps(t *testing.T) {
	parser, nowMs := fixedClockParser(t)

	dump := "INSERT INTO `folders` VALUES (4, 2, 'Shelf', 'desc', 1, NULL, '2020-06-15 08:30:00', '2021-01-01 00:00:00');"

	result := parser.Parse(strings.NewReader(dump))
	require.True(t, result.Success)
	require.Len(t, result.Folders, 1)

	folder := result.Folders[0]
	created, err := time.Parse(legacyTimeLayout, "2020-06-15 08:30:00")
	require.NoError(t, err)
	require.Equal(t, created.UnixMilli(), folder.CreatedAt)
	// The legacy updated_at is discarded in favour of the import time.
	require.Equal(t, nowMs, folder.UpdatedAt)
}

func TestParseUnparseableTimestampFallsBackToNow(t *testing.T) {
	parser, nowMs := fixedClockParser(t)

	dump := "INSERT INTO `folders` VALUES (4, 2, 'Shelf', '', 1, NULL, 'not-a-date', '2021-01-01 00:00:00');"

	result := parser.Parse(strings.NewReader(dump))
	require.True(t, result.Success)
	require.Len(t, result.Folders, 1)
	require.Equal(t, nowMs, result.Folders[0].CreatedAt)
}

func TestParseTracksCurrentTableAcrossLines(t *testing.T) {
	parser, _ := fixedClockParser(t)

	dump := strings.Join([]string{
		"-- legacy dump",
		"INSERT INTO `users` VALUES (1, 'ignored', 'row', 'x', 1, 'a', 'b');",
		"INSERT INTO `storages` VALUES (1, 'Cellar', '', '', 1, '2020-01-01 10:00:00', '2020-01-01 10:00:00');",
		"INSERT INTO `folders` VALUES",
		"(1, 1, 'Wine', '', 1, NULL, '2020-01-01 10:00:00', '2020-01-01 10:00:00');",
	}, "\n")

	result := parser.Parse(strings.NewReader(dump))
	require.True(t, result.Success)
	require.Len(t, result.Storages, 1)
	require.Len(t, result.Folders, 1)
	require.Equal(t, "Wine", result.Folders[0].Name)
}

func TestParseEmptyDumpSucceedsWithNoRecords(t *testing.T) {
	parser, _ := fixedClockParser(t)

	result := parser.Parse(strings.NewReader("-- nothing here\n"))
	require.True(t, result.Success)
	require.Empty(t, result.Storages)
	require.Empty(t, result.Folders)
}

func TestUnescapeSQL(t *testing.T) {
	require.Equal(t, `it's "fine"`, unescapeSQL(`it\'s \"fine\"`))
	require.Equal(t, "line1\nline2", unescapeSQL(`line1\r\nline2`))
	require.Equal(t, "a\tb", unescapeSQL(`a\tb`))
	require.Equal(t, `10\20`, unescapeSQL(`10\\20`))
}
