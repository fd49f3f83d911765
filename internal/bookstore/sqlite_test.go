package bookstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sant0-9/bookpal/internal/book"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	books, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)

	created, err := store.Create(ctx, book.Book{
		Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction", Year: 1965,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	books, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, created, books[0])

	created.Year = 1966
	updated, err := store.Update(ctx, created.ID, created)
	require.NoError(t, err)
	assert.Equal(t, 1966, updated.Year)

	books, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, 1966, books[0].Year)

	require.NoError(t, store.Delete(ctx, created.ID))

	books, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestSQLiteStoreListOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"First", "Second", "Third"} {
		_, err := store.Create(ctx, book.Book{Title: title, Author: "A"})
		require.NoError(t, err)
	}

	books, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "First", books[0].Title)
	assert.Equal(t, "Third", books[2].Title)
}

func TestSQLiteStoreUnknownID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Update(ctx, "nope", book.Book{Title: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = store.Delete(ctx, "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStoreIDsAreUnique(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		b, err := store.Create(ctx, book.Book{Title: "T", Author: "A"})
		require.NoError(t, err)
		_, dup := seen[b.ID]
		require.False(t, dup, "duplicate id %s", b.ID)
		seen[b.ID] = struct{}{}
	}
}
