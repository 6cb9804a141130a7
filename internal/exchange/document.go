package exchange

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/stowagehq/stowage/internal/models"
	apperrors "github.com/stowagehq/stowage/pkg/errors"
)

// Document is the wire format for a full dataset export. Field names are
// contractual: exports written by earlier releases must keep decoding.
type Document struct {
	Storages   []models.Storage `json:"storages"`
	Folders    []models.Folder  `json:"folders"`
	ExportDate int64            `json:"exportDate"`
}

// documentWire mirrors Document with pointer slices so a missing or null
// collection can be told apart from a legitimately empty one.
type documentWire struct {
	Storages   *[]models.Storage `json:"storages"`
	Folders    *[]models.Folder  `json:"folders"`
	ExportDate int64             `json:"exportDate"`
}

// NewDocument assembles an export document stamped with the given time.
func NewDocument(storages []models.Storage, folders []models.Folder, exportedAt time.Time) Document {
	if storages == nil {
		storages = []models.Storage{}
	}
	if folders == nil {
		folders = []models.Folder{}
	}
	return Document{
		Storages:   storages,
		Folders:    folders,
		ExportDate: exportedAt.UnixMilli(),
	}
}

// Encode writes the document as JSON. Input order is preserved; no sorting
// or deduplication happens here.
func Encode(w io.Writer, doc Document) error {
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}

// Decode parses an export document.
//
// A document without a storages or folders key fails hard instead of
// defaulting to empty collections: silently importing zero records would be
// indistinguishable from an empty dataset and would mask a parsing bug.
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.ErrSourceUnavailable.WithInternal(err)
	}

	var wire documentWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, apperrors.ErrMalformedDocument.WithInternal(err)
	}

	if wire.Storages == nil {
		return nil, apperrors.ErrMalformedDocument.WithMessage("export document is missing the storages collection")
	}
	if wire.Folders == nil {
		return nil, apperrors.ErrMalformedDocument.WithMessage("export document is missing the folders collection")
	}

	return &Document{
		Storages:   *wire.Storages,
		Folders:    *wire.Folders,
		ExportDate: wire.ExportDate,
	}, nil
}
