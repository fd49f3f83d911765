// Package bookstore provides access to the book collection. The engine
// consumes the Store contract only; ids are assigned by the backend.
package bookstore

import (
	"context"

	"github.com/sant0-9/bookpal/internal/book"
)

// Store is the collection persistence contract. All methods may fail with a
// transport-level error whose message is surfaced to the user verbatim.
type Store interface {
	// List returns every book in the collection.
	List(ctx context.Context) ([]book.Book, error)

	// Create stores a new book (the id field is ignored) and returns the
	// record with its assigned id.
	Create(ctx context.Context, b book.Book) (book.Book, error)

	// Update replaces the book with the given id and returns the stored
	// record.
	Update(ctx context.Context, id string, b book.Book) (book.Book, error)

	// Delete removes the book with the given id.
	Delete(ctx context.Context, id string) error
}
