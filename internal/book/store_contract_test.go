package book

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract exercises the behavior every Store implementation must
// share. Backend test files call it with their own constructor.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("create assigns id and round-trips", func(t *testing.T) {
		store := newStore(t)

		published := time.Date(1979, time.October, 12, 17, 30, 0, 0, time.FixedZone("CEST", 2*60*60))
		b := Book{
			Title:         "The Hitchhiker's Guide to the Galaxy",
			Author:        "Douglas Adams",
			PublishedDate: &published,
			ImageURL:      "https://example.com/hhgttg.jpg",
			Description:   "Don't panic.",
		}
		require.NoError(t, store.Create(ctx, &b))
		assert.Greater(t, b.ID, int64(0))

		got, err := store.Read(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.Title, got.Title)
		assert.Equal(t, b.Author, got.Author)
		assert.Equal(t, b.ImageURL, got.ImageURL)
		assert.Equal(t, b.Description, got.Description)
		require.NotNil(t, got.PublishedDate)
		// Normalized to UTC midnight regardless of the zone it arrived in.
		assert.Equal(t, time.Date(1979, time.October, 12, 0, 0, 0, 0, time.UTC), got.PublishedDate.UTC())
		assert.False(t, got.CreatedAt.IsZero())
		assert.False(t, got.UpdatedAt.IsZero())
	})

	t.Run("create rejects empty title", func(t *testing.T) {
		store := newStore(t)

		err := store.Create(ctx, &Book{Author: "Anonymous"})
		assert.ErrorIs(t, err, ErrInvalidBook)
	})

	t.Run("read missing id", func(t *testing.T) {
		store := newStore(t)

		_, err := store.Read(ctx, 12345)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update overwrites all fields", func(t *testing.T) {
		store := newStore(t)

		b := Book{Title: "Draft"}
		require.NoError(t, store.Create(ctx, &b))

		b.Title = "Final"
		b.Author = "Someone"
		b.Description = "Revised"
		require.NoError(t, store.Update(ctx, &b))

		got, err := store.Read(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "Final", got.Title)
		assert.Equal(t, "Someone", got.Author)
		assert.Equal(t, "Revised", got.Description)
	})

	t.Run("update missing id does not upsert", func(t *testing.T) {
		store := newStore(t)

		err := store.Update(ctx, &Book{ID: 999, Title: "Ghost"})
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = store.Read(ctx, 999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		store := newStore(t)

		b := Book{Title: "Ephemeral"}
		require.NoError(t, store.Create(ctx, &b))

		require.NoError(t, store.Delete(ctx, b.ID))
		_, err := store.Read(ctx, b.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		// Deleting again, or deleting an id that never existed, is fine.
		assert.NoError(t, store.Delete(ctx, b.ID))
		assert.NoError(t, store.Delete(ctx, 424242))
	})

	t.Run("pagination enumerates everything exactly once", func(t *testing.T) {
		store := newStore(t)
		const n = 5
		created := seedBooks(t, store, n)

		for _, pageSize := range []int{1, 2, 3, n, n + 3} {
			t.Run(fmt.Sprintf("pageSize=%d", pageSize), func(t *testing.T) {
				seen := make(map[int64]int)
				token := ""
				for page := 0; ; page++ {
					require.Less(t, page, n+1, "listing must terminate")

					list, err := store.List(ctx, pageSize, token)
					require.NoError(t, err)
					assert.LessOrEqual(t, len(list.Books), pageSize)
					for _, b := range list.Books {
						seen[b.ID]++
					}
					if list.NextPageToken == "" {
						break
					}
					token = list.NextPageToken
				}

				assert.Len(t, seen, n, "every book seen")
				for id, count := range seen {
					assert.Equal(t, 1, count, "book %d seen once", id)
				}
				for _, id := range created {
					assert.Contains(t, seen, id)
				}
			})
		}
	})

	t.Run("next page token present iff more rows exist", func(t *testing.T) {
		store := newStore(t)
		const pageSize = 3
		seedBooks(t, store, pageSize)

		// Exactly pageSize rows: one full page and no token. The backend
		// must not conflate a full page with a next page.
		list, err := store.List(ctx, pageSize, "")
		require.NoError(t, err)
		assert.Len(t, list.Books, pageSize)
		assert.Empty(t, list.NextPageToken)

		// One more row: same first page, now with a token, and the token
		// resumes after the last returned row, not after the probe row.
		extra := Book{Title: "Book extra"}
		require.NoError(t, store.Create(ctx, &extra))

		list, err = store.List(ctx, pageSize, "")
		require.NoError(t, err)
		require.Len(t, list.Books, pageSize)
		require.NotEmpty(t, list.NextPageToken)

		rest, err := store.List(ctx, pageSize, list.NextPageToken)
		require.NoError(t, err)
		require.Len(t, rest.Books, 1)
		assert.Equal(t, extra.ID, rest.Books[0].ID)
		assert.Empty(t, rest.NextPageToken)
	})

	t.Run("list order is stable ascending id", func(t *testing.T) {
		store := newStore(t)
		seedBooks(t, store, 4)

		list, err := store.List(ctx, 10, "")
		require.NoError(t, err)
		require.Len(t, list.Books, 4)
		for i := 1; i < len(list.Books); i++ {
			assert.Greater(t, list.Books[i].ID, list.Books[i-1].ID)
		}
	})

	t.Run("list rejects bad arguments", func(t *testing.T) {
		store := newStore(t)

		_, err := store.List(ctx, 0, "")
		assert.ErrorIs(t, err, ErrInvalidBook)

		_, err = store.List(ctx, 10, "not-base64!!!")
		assert.ErrorIs(t, err, ErrInvalidBook)
	})
}

func seedBooks(t *testing.T, store Store, n int) []int64 {
	t.Helper()
	ctx := context.Background()
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		b := Book{Title: fmt.Sprintf("Book %02d", i)}
		require.NoError(t, store.Create(ctx, &b))
		ids = append(ids, b.ID)
	}
	return ids
}
