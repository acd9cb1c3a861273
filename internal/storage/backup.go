package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// BackupVersion is the format version written by ExportBackup.
const BackupVersion = 1

// Backup is the JSON document holding a full copy of the book.
type Backup struct {
	ExportedAt time.Time `json:"exportedAt"`
	model.Book
	Version int `json:"version"`
}

// ExportBackup writes book as an indented JSON backup.
func ExportBackup(w io.Writer, book model.Book, exportedAt time.Time) error {
	b := Backup{
		Version:    BackupVersion,
		ExportedAt: exportedAt.UTC(),
		Book:       normalize(book),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return nil
}

// ImportBackup reads a backup produced by ExportBackup.
func ImportBackup(r io.Reader) (model.Book, error) {
	var b Backup
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		return model.Book{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if b.Version < 1 || b.Version > BackupVersion {
		return model.Book{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidBackup, b.Version)
	}

	book := normalize(b.Book)
	if err := validateBook(book); err != nil {
		return model.Book{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	return book, nil
}

// normalize replaces nil collections with empty ones so they encode as [].
func normalize(book model.Book) model.Book {
	if book.Accounts == nil {
		book.Accounts = []model.Account{}
	}
	if book.Envelopes == nil {
		book.Envelopes = []model.Envelope{}
	}
	if book.Loans == nil {
		book.Loans = []model.Loan{}
	}
	if book.Transactions == nil {
		book.Transactions = []model.Transaction{}
	}
	return book
}
