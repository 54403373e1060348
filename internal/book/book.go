package book

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

// ErrInvalidBook is returned when a book or list request fails validation.
var ErrInvalidBook = errors.New("invalid book")

// Book represents a book entity. The ID is assigned by the store on Create
// and never changes afterwards.
type Book struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Author        string     `json:"author,omitempty"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	Description   string     `json:"description,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Validate checks the fields a store requires before writing.
func (b *Book) Validate() error {
	if b.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidBook)
	}
	return nil
}

// NormalizeDate truncates the published date to UTC midnight so every
// backend stores the same value regardless of the zone it arrived in.
func (b *Book) NormalizeDate() {
	if b.PublishedDate == nil {
		return
	}
	d := b.PublishedDate.UTC()
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	b.PublishedDate = &d
}

// List is one page of books. An empty NextPageToken is the only signal that
// no more pages exist; a short page alone does not mean the listing is done.
type List struct {
	Books         []Book `json:"books"`
	NextPageToken string `json:"next_page_token,omitempty"`
}
