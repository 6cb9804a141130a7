package exchange

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/stowagehq/stowage/internal/models"
)

// ImportResult carries the outcome of a legacy dump scan. On failure the
// collections are empty; partially scanned rows are never returned.
type ImportResult struct {
	Storages     []models.Storage
	Folders      []models.Folder
	Success      bool
	ErrorMessage string
}

// Parser converts a legacy dump stream into storage and folder records.
// The SQL scraper below is deliberately replaceable; a future tokenizer can
// implement this interface without touching the loader or the orchestrator.
type Parser interface {
	Parse(r io.Reader) ImportResult
}

// SQLDumpParser scrapes INSERT statements out of a MySQL text dump produced
// by the legacy system. It is a best-effort line scanner, not a
// validating SQL parser: tuples that do not match the expected legacy column
// layout are silently skipped.
type SQLDumpParser struct {
	now func() time.Time
}

// NewSQLDumpParser constructs a parser using the wall clock.
func NewSQLDumpParser() *SQLDumpParser {
	return &SQLDumpParser{now: time.Now}
}

const legacyTimeLayout = "2006-01-02 15:04:05"

// Maximum line length accepted from a dump. mysqldump emits batched inserts
// as one very long physical line.
const maxDumpLine = 4 * 1024 * 1024

var (
	insertIntoRe = regexp.MustCompile("INSERT INTO `(\\w+)`.*?VALUES")

	// Legacy columns: (id, name, address, description, is_active, created_at, updated_at)
	storageRowRe = regexp.MustCompile(`\((\d+),\s*'([^']*)',\s*'([^']*)',\s*'([^']*)',\s*(\d+),\s*'([^']*)',\s*'([^']*)'\)`)

	// Legacy columns: (id, storage_id, name, description, is_active, created_by, created_at, updated_at)
	folderRowRe = regexp.MustCompile(`\((\d+),\s*(NULL|\d+),\s*'([^']*)',\s*'([^']*)',\s*(\d+),\s*(?:NULL|\d+),\s*'([^']*)',\s*'([^']*)'\)`)
)

// Parse runs a single pass over the stream, tracking which table the current
// INSERT targets and extracting every matching tuple. Batched
// `VALUES (...),(...)` lines yield one record per tuple.
func (p *SQLDumpParser) Parse(r io.Reader) ImportResult {
	var (
		storages     []models.Storage
		folders      []models.Folder
		currentTable string
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxDumpLine)

	for scanner.Scan() {
		line := scanner.Text()

		if m := insertIntoRe.FindStringSubmatch(line); m != nil {
			currentTable = m[1]
		}

		switch currentTable {
		case "storages":
			storages = append(storages, p.parseStorageRows(line)...)
		case "folders":
			folders = append(folders, p.parseFolderRows(line)...)
		default:
			// Other tables in the dump are ignored.
		}
	}

	if err := scanner.Err(); err != nil {
		return ImportResult{Success: false, ErrorMessage: err.Error()}
	}

	return ImportResult{Storages: storages, Folders: folders, Success: true}
}

func (p *SQLDumpParser) parseStorageRows(line string) []models.Storage {
	var out []models.Storage
	for _, m := range storageRowRe.FindAllStringSubmatch(line, -1) {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}

		// Only active rows survive the migration.
		if m[5] != "1" {
			continue
		}

		name := unescapeSQL(m[2])
		address := unescapeSQL(m[3])
		description := unescapeSQL(m[4])

		// The legacy address column has no equivalent field; it is folded
		// into the description with a blank line separator.
		combined := address
		if description != "" {
			combined += "\n\n" + description
		}

		out = append(out, models.Storage{
			ID:          id,
			Name:        name,
			Description: combined,
			CreatedAt:   p.now().UnixMilli(),
		})
	}
	return out
}

func (p *SQLDumpParser) parseFolderRows(line string) []models.Folder {
	var out []models.Folder
	for _, m := range folderRowRe.FindAllStringSubmatch(line, -1) {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}

		if m[5] != "1" {
			continue
		}

		// Orphaned legacy folders fall back to the first storage.
		storageID := int64(1)
		if m[2] != "NULL" {
			if parsed, err := strconv.ParseInt(m[2], 10, 64); err == nil {
				storageID = parsed
			}
		}

		out = append(out, models.Folder{
			ID:          id,
			StorageID:   storageID,
			Name:        unescapeSQL(m[3]),
			Description: unescapeSQL(m[4]),
			CreatedAt:   p.parseLegacyTimestamp(m[6]),
			// The legacy updated_at value is discarded; the import itself
			// is the most recent modification.
			UpdatedAt: p.now().UnixMilli(),
		})
	}
	return out
}

// unescapeSQL reverses the escape sequences the legacy dumper emitted.
// Replacement order matters: backslash pairs must resolve before the
// single-character sequences.
func unescapeSQL(s string) string {
	s = strings.ReplaceAll(s, `\'`, `'`)
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\\`, `\`)
	s = strings.ReplaceAll(s, `\r\n`, "\n")
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\r`, "\r")
	s = strings.ReplaceAll(s, `\t`, "\t")
	return s
}

func (p *SQLDumpParser) parseLegacyTimestamp(value string) int64 {
	ts, err := time.Parse(legacyTimeLayout, value)
	if err != nil {
		return p.now().UnixMilli()
	}
	return ts.UnixMilli()
}
