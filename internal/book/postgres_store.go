package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresStore(db *pgxpool.Pool, timeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, timeout: timeout}
}

func (s *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *PostgresStore) Create(ctx context.Context, b *Book) error {
	if err := b.Validate(); err != nil {
		return err
	}
	b.NormalizeDate()

	const query = `
		INSERT INTO books (title, author, published_date, image_url, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	err := s.db.QueryRow(timeoutCtx, query,
		b.Title, b.Author, b.PublishedDate, b.ImageURL, b.Description,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

func (s *PostgresStore) Read(ctx context.Context, id int64) (Book, error) {
	const query = `
		SELECT id, title, author, published_date, image_url, description, created_at, updated_at
		FROM books
		WHERE id = $1`

	var b Book
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	err := s.db.QueryRow(timeoutCtx, query, id).Scan(
		&b.ID, &b.Title, &b.Author, &b.PublishedDate, &b.ImageURL, &b.Description,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("read book: %w", err)
	}
	return b, nil
}

func (s *PostgresStore) Update(ctx context.Context, b *Book) error {
	if err := b.Validate(); err != nil {
		return err
	}
	b.NormalizeDate()

	const query = `
		UPDATE books
		SET title = $1, author = $2, published_date = $3, image_url = $4,
		    description = $5, updated_at = NOW()
		WHERE id = $6`

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	tag, err := s.db.Exec(timeoutCtx, query,
		b.Title, b.Author, b.PublishedDate, b.ImageURL, b.Description, b.ID,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	if _, err := s.db.Exec(timeoutCtx, `DELETE FROM books WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, pageSize int, pageToken string) (List, error) {
	afterID, err := decodeListRequest(pageSize, pageToken)
	if err != nil {
		return List{}, err
	}

	const query = `
		SELECT id, title, author, published_date, image_url, description, created_at, updated_at
		FROM books
		WHERE id > $1
		ORDER BY id
		LIMIT $2`

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.db.Query(timeoutCtx, query, afterID, pageSize+1)
	if err != nil {
		return List{}, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Author, &b.PublishedDate, &b.ImageURL, &b.Description,
			&b.CreatedAt, &b.UpdatedAt,
		); err != nil {
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
