package db

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"notes-api/errs"
	"notes-api/models"
)

const unusedObjectID = "000000000000000000000000"

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, NewMemoryStore(), unusedObjectID)
}

func TestMemoryStore_ListEmptyIsNotNil(t *testing.T) {
	notes, err := NewMemoryStore().List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, notes)
	assert.Empty(t, notes)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	title := "original"
	created, err := store.Create(ctx, models.NoteInput{Title: &title})
	require.NoError(t, err)

	title = "changed by caller"
	*created.Title = "changed via result"

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", *got.Title)
}

func TestMemoryStore_ConcurrentCreates(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Create(ctx, models.NoteInput{Title: models.StringPtr("concurrent")})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	notes, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 50)
}

func optionalText() *rapid.Generator[*string] {
	return rapid.Ptr(rapid.StringMatching(`[A-Za-z0-9 .,!?]{0,40}`), true)
}

func testMemoryStore_Operations(t *rapid.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	live := map[string]models.Note{}

	steps := rapid.IntRange(1, 30).Draw(t, "steps")
	for i := 0; i < steps; i++ {
		ids := make([]string, 0, len(live))
		for id := range live {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		switch op := rapid.IntRange(0, 2).Draw(t, "op"); {
		case op == 0 || len(ids) == 0:
			in := models.NoteInput{Title: optionalText().Draw(t, "title"), Content: optionalText().Draw(t, "content")}
			n, err := store.Create(ctx, in)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if _, dup := live[n.ID]; dup {
				t.Fatalf("duplicate id %s", n.ID)
			}
			live[n.ID] = n
		case op == 1:
			id := rapid.SampledFrom(ids).Draw(t, "updateID")
			in := models.NoteInput{Title: optionalText().Draw(t, "title"), Content: optionalText().Draw(t, "content")}
			n, err := store.Update(ctx, id, in)
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			if n.ID != id {
				t.Fatalf("update changed id %s -> %s", id, n.ID)
			}
			live[id] = n
		default:
			id := rapid.SampledFrom(ids).Draw(t, "deleteID")
			if _, err := store.Delete(ctx, id); err != nil {
				t.Fatalf("delete: %v", err)
			}
			delete(live, id)
			if _, err := store.Get(ctx, id); !errs.Is(err, errs.NotFound) {
				t.Fatalf("get after delete: %v", err)
			}
		}

		all, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(all) != len(live) {
			t.Fatalf("list has %d notes, want %d", len(all), len(live))
		}
		for _, n := range all {
			want, ok := live[n.ID]
			if !ok {
				t.Fatalf("unexpected note %s in list", n.ID)
			}
			if !assert.ObjectsAreEqual(want, n) {
				t.Fatalf("note %s: got %+v want %+v", n.ID, n, want)
			}
		}
	}
}

func TestMemoryStore_Operations(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testMemoryStore_Operations)
}
