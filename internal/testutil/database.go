// Package testutil provides shared helpers for tests that need a database or a populated book.
package testutil

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/storage"
)

// TestDB represents a test database with the book it was seeded with.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
	Book    model.Book
}

// SetupTestDB creates a new in-memory test database seeded with book.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.NewBookBuilder().WithStandardBook().Build())
func SetupTestDB(t *testing.T, book model.Book) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	if err := store.SaveBook(ctx, book); err != nil {
		_ = store.Close()
		t.Fatalf("failed to seed book: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		Book:    book,
		t:       t,
	}
}

// MustLoad reads the current book back from the database or fails the test.
func (db *TestDB) MustLoad() model.Book {
	db.t.Helper()
	book, err := db.Storage.LoadBook(context.Background())
	if err != nil {
		db.t.Fatalf("failed to load book: %v", err)
	}
	return book
}

// AssertBooksEqual fails the test when two books differ. Decimals compare by
// value, so 10.5 and 10.50 are equal.
func AssertBooksEqual(t *testing.T, want, got model.Book) {
	t.Helper()
	w, g := canonical(t, want), canonical(t, got)
	if w != g {
		t.Errorf("books differ\n got: %s\nwant: %s", g, w)
	}
}

func canonical(t *testing.T, book model.Book) string {
	t.Helper()
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
	data, err := json.Marshal(book)
	if err != nil {
		t.Fatalf("failed to marshal book: %v", err)
	}
	return string(data)
}
