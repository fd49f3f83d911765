package bookstore

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/sant0-9/bookpal/internal/book"
)

// SQLiteStore is a local Store backend so the app works standalone, without
// a remote books API.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS books (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		author      TEXT NOT NULL,
		genre       TEXT NOT NULL DEFAULT '',
		year        INTEGER NOT NULL DEFAULT 0,
		cover_url   TEXT NOT NULL DEFAULT '',
		external_id TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_books_author ON books(author);
	CREATE INDEX IF NOT EXISTS idx_books_year ON books(year);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) List(ctx context.Context) ([]book.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, author, genre, year, cover_url, external_id
		 FROM books ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []book.Book
	for rows.Next() {
		var b book.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.Year, &b.CoverURL, &b.ExternalID); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (s *SQLiteStore) Create(ctx context.Context, b book.Book) (book.Book, error) {
	b.ID = s.newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO books (id, title, author, genre, year, cover_url, external_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Title, b.Author, b.Genre, b.Year, b.CoverURL, b.ExternalID,
		// Fixed-width fraction so the TEXT column sorts chronologically.
		time.Now().UTC().Format("2006-01-02T15:04:05.000000000Z07:00"))
	if err != nil {
		return book.Book{}, fmt.Errorf("create book: %w", err)
	}
	return b, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id string, b book.Book) (book.Book, error) {
	b.ID = id
	res, err := s.db.ExecContext(ctx,
		`UPDATE books SET title = ?, author = ?, genre = ?, year = ?, cover_url = ?, external_id = ?
		 WHERE id = ?`,
		b.Title, b.Author, b.Genre, b.Year, b.CoverURL, b.ExternalID, id)
	if err != nil {
		return book.Book{}, fmt.Errorf("update book: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return book.Book{}, err
	}
	if n == 0 {
		return book.Book{}, fmt.Errorf("book %s not found", id)
	}
	return b, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("book %s not found", id)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
