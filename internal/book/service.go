package book

import (
	"context"
	"errors"
	"fmt"
)

// ErrEnqueue reports that a book was created but its enrichment request
// could not be published. The create itself succeeded; enrichment is
// best-effort and may be retried out of band.
var ErrEnqueue = errors.New("enrichment enqueue failed")

// Enqueuer publishes a request to enrich the book with the given ID.
type Enqueuer interface {
	Enqueue(ctx context.Context, bookID int64) error
}

// Service provides book-related business logic on top of a Store.
type Service struct {
	store    Store
	enqueuer Enqueuer
}

// NewService creates a new book service. enqueuer may be nil when the
// enrichment pipeline is not wired in.
func NewService(store Store, enqueuer Enqueuer) *Service {
	return &Service{store: store, enqueuer: enqueuer}
}

// Create persists a new book and asks the enrichment pipeline to fill in
// missing metadata. If publishing the request fails the returned error
// wraps ErrEnqueue and the book is still persisted with its ID set.
func (s *Service) Create(ctx context.Context, b *Book) error {
	if err := s.store.Create(ctx, b); err != nil {
		return err
	}
	if s.enqueuer == nil {
		return nil
	}
	if err := s.enqueuer.Enqueue(ctx, b.ID); err != nil {
		return fmt.Errorf("%w: book %d: %v", ErrEnqueue, b.ID, err)
	}
	return nil
}

// Read returns the book with the given ID.
func (s *Service) Read(ctx context.Context, id int64) (Book, error) {
	return s.store.Read(ctx, id)
}

// Update overwrites an existing book.
func (s *Service) Update(ctx context.Context, b *Book) error {
	return s.store.Update(ctx, b)
}

// Delete removes a book. Deleting a missing ID is not an error.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// List returns one page of books.
func (s *Service) List(ctx context.Context, pageSize int, pageToken string) (List, error) {
	return s.store.List(ctx, pageSize, pageToken)
}
