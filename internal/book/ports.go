package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_store_test.go -package=book

// Store defines the contract for book storage. Implementations must keep the
// pagination contract of List: enumerate every record existing at query time
// exactly once, in ascending ID order, across successive pages.
type Store interface {
	// Create persists a new book and fills in its ID.
	Create(ctx context.Context, b *Book) error
	// Read returns the book with the given ID, or ErrNotFound.
	Read(ctx context.Context, id int64) (Book, error)
	// Update overwrites all fields of an existing book. It never upserts:
	// updating a missing ID returns ErrNotFound.
	Update(ctx context.Context, b *Book) error
	// Delete removes a book. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id int64) error
	// List returns up to pageSize books after the position encoded in
	// pageToken ("" for the first page). NextPageToken is set if and only
	// if more books exist beyond the returned page.
	List(ctx context.Context, pageSize int, pageToken string) (List, error)
}
