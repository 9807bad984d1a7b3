package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes-api/errs"
	"notes-api/models"
)

// runStoreTests runs the behaviour every NoteStore backend must share.
// missingID must be a well-formed id that is never assigned.
func runStoreTests(t *testing.T, store NoteStore, missingID string) {
	ctx := context.Background()

	t.Run("Create assigns unique ids", func(t *testing.T) {
		a, err := store.Create(ctx, models.NoteInput{Title: models.StringPtr("T"), Content: models.StringPtr("C")})
		require.NoError(t, err)
		b, err := store.Create(ctx, models.NoteInput{Title: models.StringPtr("T"), Content: models.StringPtr("C")})
		require.NoError(t, err)

		assert.NotEmpty(t, a.ID)
		assert.NotEqual(t, a.ID, b.ID)
		require.NotNil(t, a.Title)
		require.NotNil(t, a.Content)
		assert.Equal(t, "T", *a.Title)
		assert.Equal(t, "C", *a.Content)
	})

	t.Run("Create keeps absent fields absent", func(t *testing.T) {
		created, err := store.Create(ctx, models.NoteInput{Content: models.StringPtr("only content")})
		require.NoError(t, err)
		assert.Nil(t, created.Title)

		got, err := store.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Title)
		assert.Equal(t, "only content", *got.Content)
	})

	t.Run("Get round-trips Create", func(t *testing.T) {
		created, err := store.Create(ctx, models.NoteInput{Title: models.StringPtr("Shopping"), Content: models.StringPtr("Milk")})
		require.NoError(t, err)

		got, err := store.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("List cardinality follows creates and deletes", func(t *testing.T) {
		before, err := store.List(ctx)
		require.NoError(t, err)

		var ids []string
		for i := 0; i < 3; i++ {
			n, err := store.Create(ctx, models.NoteInput{Title: models.StringPtr("n")})
			require.NoError(t, err)
			ids = append(ids, n.ID)
		}
		after, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, after, len(before)+3)

		_, err = store.Delete(ctx, ids[1])
		require.NoError(t, err)
		final, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, final, len(before)+2)
		for _, n := range final {
			assert.NotEqual(t, ids[1], n.ID)
		}
	})

	t.Run("Update replaces fields and keeps id", func(t *testing.T) {
		created, err := store.Create(ctx, models.NoteInput{Title: models.StringPtr("Shopping"), Content: models.StringPtr("Milk")})
		require.NoError(t, err)

		updated, err := store.Update(ctx, created.ID, models.NoteInput{Title: models.StringPtr("Shopping"), Content: models.StringPtr("Eggs")})
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "Eggs", *updated.Content)

		got, err := store.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, got)
	})

	t.Run("Update with absent field clears it", func(t *testing.T) {
		created, err := store.Create(ctx, models.NoteInput{Title: models.StringPtr("a"), Content: models.StringPtr("b")})
		require.NoError(t, err)

		updated, err := store.Update(ctx, created.ID, models.NoteInput{Title: models.StringPtr("a2")})
		require.NoError(t, err)
		assert.Equal(t, "a2", *updated.Title)
		assert.Nil(t, updated.Content)
	})

	t.Run("Delete returns last state then Get is NotFound", func(t *testing.T) {
		created, err := store.Create(ctx, models.NoteInput{Title: models.StringPtr("bye")})
		require.NoError(t, err)

		deleted, err := store.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, deleted)

		_, err = store.Get(ctx, created.ID)
		assert.True(t, errs.Is(err, errs.NotFound), "got %v", err)
	})

	t.Run("Missing id is NotFound without side effects", func(t *testing.T) {
		before, err := store.List(ctx)
		require.NoError(t, err)

		_, err = store.Get(ctx, missingID)
		assert.True(t, errs.Is(err, errs.NotFound), "get: %v", err)
		_, err = store.Update(ctx, missingID, models.NoteInput{Title: models.StringPtr("x")})
		assert.True(t, errs.Is(err, errs.NotFound), "update: %v", err)
		_, err = store.Delete(ctx, missingID)
		assert.True(t, errs.Is(err, errs.NotFound), "delete: %v", err)

		after, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("Malformed id is InvalidArgument", func(t *testing.T) {
		for _, id := range []string{"not-an-id", "", "123"} {
			_, err := store.Get(ctx, id)
			assert.True(t, errs.Is(err, errs.InvalidArgument), "get %q: %v", id, err)
			_, err = store.Update(ctx, id, models.NoteInput{})
			assert.True(t, errs.Is(err, errs.InvalidArgument), "update %q: %v", id, err)
			_, err = store.Delete(ctx, id)
			assert.True(t, errs.Is(err, errs.InvalidArgument), "delete %q: %v", id, err)
		}
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}
