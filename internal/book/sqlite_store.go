package book

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS books (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	author TEXT NOT NULL DEFAULT '',
	published_date TEXT,
	image_url TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

const sqliteDateLayout = "2006-01-02"

// SQLiteStore implements Store on an embedded SQLite database. It is the
// zero-dependency backend for local development and single-node deployments.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at dbPath and ensures the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// modernc.org/sqlite serializes writes; a single connection avoids
	// table-lock errors under concurrent use.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, b *Book) error {
	if err := b.Validate(); err != nil {
		return err
	}
	b.NormalizeDate()

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO books (title, author, published_date, image_url, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.Title, b.Author, sqliteDate(b.PublishedDate), b.ImageURL, b.Description,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	b.ID = id
	b.CreatedAt = now
	b.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) Read(ctx context.Context, id int64) (Book, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, author, published_date, image_url, description, created_at, updated_at
		FROM books WHERE id = ?`, id)
	b, err := scanSQLiteBook(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("read book: %w", err)
	}
	return b, nil
}

func (s *SQLiteStore) Update(ctx context.Context, b *Book) error {
	if err := b.Validate(); err != nil {
		return err
	}
	b.NormalizeDate()

	res, err := s.db.ExecContext(ctx, `
		UPDATE books
		SET title = ?, author = ?, published_date = ?, image_url = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		b.Title, b.Author, sqliteDate(b.PublishedDate), b.ImageURL, b.Description,
		time.Now().UTC().Format(time.RFC3339), b.ID,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, pageSize int, pageToken string) (List, error) {
	afterID, err := decodeListRequest(pageSize, pageToken)
	if err != nil {
		return List{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, author, published_date, image_url, description, created_at, updated_at
		FROM books
		WHERE id > ?
		ORDER BY id
		LIMIT ?`, afterID, pageSize+1)
	if err != nil {
		return List{}, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		b, err := scanSQLiteBook(rows.Scan)
		if err != nil {
			return List{}, fmt.Errorf("list books: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return List{}, fmt.Errorf("list books: %w", err)
	}

	out := List{Books: books}
	if len(books) > pageSize {
		out.Books = books[:pageSize]
		out.NextPageToken = EncodeCursor(CursorData{AfterID: out.Books[pageSize-1].ID})
	}
	return out, nil
}

func sqliteDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(sqliteDateLayout)
}

func scanSQLiteBook(scan func(dest ...any) error) (Book, error) {
	var (
		b         Book
		published sql.NullString
		created   string
		updated   string
	)
	if err := scan(&b.ID, &b.Title, &b.Author, &published, &b.ImageURL, &b.Description, &created, &updated); err != nil {
		return Book{}, err
	}
	if published.Valid {
		d, err := time.ParseInLocation(sqliteDateLayout, published.String, time.UTC)
		if err != nil {
			return Book{}, fmt.Errorf("bad published_date %q: %w", published.String, err)
		}
		b.PublishedDate = &d
	}
	var err error
	if b.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return Book{}, fmt.Errorf("bad created_at %q: %w", created, err)
	}
	if b.UpdatedAt, err = time.Parse(time.RFC3339, updated); err != nil {
		return Book{}, fmt.Errorf("bad updated_at %q: %w", updated, err)
	}
	return b, nil
}
