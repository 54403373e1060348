package book

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps books in a process-local map. It backs tests and demos
// and implements the same pagination contract as the durable stores.
type MemoryStore struct {
	mu     sync.Mutex
	books  map[int64]Book
	nextID int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{books: make(map[int64]Book)}
}

func (s *MemoryStore) Create(_ context.Context, b *Book) error {
	if err := b.Validate(); err != nil {
		return err
	}
	b.NormalizeDate()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := time.Now().UTC()
	b.ID = s.nextID
	b.CreatedAt = now
	b.UpdatedAt = now
	s.books[b.ID] = *b
	return nil
}

func (s *MemoryStore) Read(_ context.Context, id int64) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return b, nil
}

func (s *MemoryStore) Update(_ context.Context, b *Book) error {
	if err := b.Validate(); err != nil {
		return err
	}
	b.NormalizeDate()

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.books[b.ID]
	if !ok {
		return ErrNotFound
	}
	b.CreatedAt = prev.CreatedAt
	b.UpdatedAt = time.Now().UTC()
	s.books[b.ID] = *b
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.books, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context, pageSize int, pageToken string) (List, error) {
	afterID, err := decodeListRequest(pageSize, pageToken)
	if err != nil {
		return List{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.books))
	for id := range s.books {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// Probe one row beyond the page; its presence, not the page length,
	// decides whether a next page token is issued.
	probe := ids
	if len(probe) > pageSize+1 {
		probe = probe[:pageSize+1]
	}

	page := probe
	hasMore := false
	if len(probe) > pageSize {
		page = probe[:pageSize]
		hasMore = true
	}

	out := List{Books: make([]Book, 0, len(page))}
	for _, id := range page {
		out.Books = append(out.Books, s.books[id])
	}
	if hasMore {
		out.NextPageToken = EncodeCursor(CursorData{AfterID: page[len(page)-1]})
	}
	return out, nil
}
