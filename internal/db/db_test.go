package db

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sukalov/lyricforge/internal/lyrics"
)

var memCounter atomic.Int64

// newTestStore opens a private in-memory database with a controllable clock
func newTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()

	dsn := fmt.Sprintf("file:lib%d?mode=memory&cache=shared", memCounter.Add(1))
	store, err := Open(context.Background(), dsn, "")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	return store, &clock
}

func TestDriverFor(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"libsql://songs.turso.io":      "libsql",
		"https://songs.turso.io":       "libsql",
		"file:lyricforge.db":           "sqlite",
		":memory:":                     "sqlite",
		"/var/lib/lyricforge/songs.db": "sqlite",
	}
	for dsn, want := range tests {
		assert.Equal(t, want, driverFor(dsn), dsn)
	}
}

func TestStore_SaveGetList(t *testing.T) {
	t.Parallel()

	store, clock := newTestStore(t)
	ctx := context.Background()

	first, created, err := store.Save(ctx, Entry{
		OwnerID: 1,
		Title:   "  Night Drive ",
		Lyrics:  "[Verse 1]\nAm F\nheadlights on the rain",
		Details: lyrics.Details{Genre: "Synthwave", Key: "Am", Tags: []string{"night", "cars"}},
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "Night Drive", first.Title)
	assert.Len(t, first.ContentHash, 64)

	*clock = clock.Add(time.Hour)
	second, _, err := store.Save(ctx, Entry{OwnerID: 1, Title: "Morning", Lyrics: "sun"})
	require.NoError(t, err)

	_, _, err = store.Save(ctx, Entry{OwnerID: 2, Title: "Someone else", Lyrics: "x"})
	require.NoError(t, err)

	got, err := store.Get(ctx, 1, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Lyrics, got.Lyrics)
	assert.Equal(t, []string{"night", "cars"}, got.Details.Tags)
	assert.Equal(t, "Am", got.Details.Key)
	assert.True(t, got.CreatedAt.Equal(first.CreatedAt))

	list, err := store.List(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	limited, err := store.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = store.Get(ctx, 2, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SaveUnchanged(t *testing.T) {
	t.Parallel()

	store, clock := newTestStore(t)
	ctx := context.Background()

	e := Entry{OwnerID: 1, Title: "Same", Lyrics: "words"}
	saved, created, err := store.Save(ctx, e)
	require.NoError(t, err)
	require.True(t, created)

	// identical content without an id resolves to the existing entry
	again, created, err := store.Save(ctx, e)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, saved.ID, again.ID)

	*clock = clock.Add(time.Minute)
	unchanged, changed, err := store.Save(ctx, saved)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.True(t, unchanged.UpdatedAt.Equal(saved.UpdatedAt))

	saved.Lyrics = "new words"
	updated, changed, err := store.Save(ctx, saved)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, updated.UpdatedAt.After(saved.UpdatedAt))
	assert.NotEqual(t, saved.ContentHash, updated.ContentHash)
}

func TestStore_SaveUnknownID(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	_, _, err := store.Save(context.Background(), Entry{ID: "missing", OwnerID: 1, Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	e, _, err := store.Save(ctx, Entry{OwnerID: 1, Title: "Gone", Lyrics: "soon"})
	require.NoError(t, err)

	assert.ErrorIs(t, store.Delete(ctx, 2, e.ID), ErrNotFound)
	require.NoError(t, store.Delete(ctx, 1, e.ID))
	assert.ErrorIs(t, store.Delete(ctx, 1, e.ID), ErrNotFound)
}

func TestStore_Search(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, e := range []Entry{
		{OwnerID: 1, Title: "Yesterday", Lyrics: "all my troubles"},
		{OwnerID: 1, Title: "Harbour Lights", Lyrics: "ships at night", Details: lyrics.Details{Tags: []string{"sea"}}},
		{OwnerID: 1, Title: "Dust", Lyrics: "dry roads"},
	} {
		_, _, err := store.Save(ctx, e)
		require.NoError(t, err)
	}

	titles := func(entries []Entry) []string {
		out := []string{}
		for _, e := range entries {
			out = append(out, e.Title)
		}
		return out
	}

	tests := []struct {
		query string
		want  []string
	}{
		{query: "harbour", want: []string{"Harbour Lights"}},
		{query: "TROUBLES", want: []string{"Yesterday"}},
		{query: "sea", want: []string{"Harbour Lights"}},
		{query: "yesterdy", want: []string{"Yesterday"}},
		{query: "zzz", want: []string{}},
		{query: "  ", want: []string{}},
	}
	for _, tt := range tests {
		got, err := store.Search(ctx, 1, tt.query)
		require.NoError(t, err, tt.query)
		assert.ElementsMatch(t, tt.want, titles(got), tt.query)
	}
}

func TestStore_RegisterUser(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	created, err := store.RegisterUser(ctx, 10, "writer", "Sam Writer")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.RegisterUser(ctx, 10, "writer", "Sam Writer")
	require.NoError(t, err)
	assert.False(t, created)

	_, _, err = store.Save(ctx, Entry{OwnerID: 10, Title: "First", Lyrics: "la"})
	require.NoError(t, err)

	u, err := store.GetUser(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "writer", u.Username.String)
	assert.Equal(t, 1, u.SongsSaved)

	_, err = store.GetUser(ctx, 11)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntry_HashSeparatesTags(t *testing.T) {
	t.Parallel()

	joined := Entry{Title: "t", Details: lyrics.Details{Tags: []string{"a,b"}}}
	split := Entry{Title: "t", Details: lyrics.Details{Tags: []string{"a", "b"}}}
	assert.NotEqual(t, joined.Hash(), split.Hash())

	tagged := Entry{Title: "t", Details: lyrics.Details{Tags: []string{"x"}}}
	noted := Entry{Title: "t", Details: lyrics.Details{Notes: "x"}}
	assert.NotEqual(t, tagged.Hash(), noted.Hash())

	store, _ := newTestStore(t)
	ctx := context.Background()
	_, created, err := store.Save(ctx, Entry{OwnerID: 1, Title: "Tags", Details: joined.Details})
	require.NoError(t, err)
	require.True(t, created)
	_, created, err = store.Save(ctx, Entry{OwnerID: 1, Title: "Tags", Details: split.Details})
	require.NoError(t, err)
	assert.True(t, created)
}

func TestStore_SaveRollsBackOnCounterFailure(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.db.ExecContext(ctx, `DROP TABLE users`)
	require.NoError(t, err)

	_, _, err = store.Save(ctx, Entry{OwnerID: 4, Title: "Lost", Lyrics: "gone"})
	require.ErrorContains(t, err, "saved songs")

	list, err := store.List(ctx, 4, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}
