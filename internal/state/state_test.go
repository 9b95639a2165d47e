package state

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sukalov/lyricforge/internal/editor"
	"github.com/sukalov/lyricforge/internal/lyrics"
)

type memoryStore struct {
	mu       sync.Mutex
	sessions map[int64]editor.Snapshot
	saves    int
	loadErr  error
	saveErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: make(map[int64]editor.Snapshot)}
}

func (m *memoryStore) SaveSession(_ context.Context, chatID int64, snap editor.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sessions[chatID] = snap
	m.saves++
	return nil
}

func (m *memoryStore) LoadSession(_ context.Context, chatID int64) (*editor.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	snap, ok := m.sessions[chatID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (m *memoryStore) DeleteSession(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
	return nil
}

func TestStateManager_NewChatGetsDefaultDocument(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	sm := NewStateManager(store)

	var labels []string
	err := sm.View(context.Background(), 1, func(doc *editor.Document) error {
		for _, s := range doc.Sections {
			labels = append(labels, s.Label)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"[Verse 1]", "[Chorus]"}, labels)
	assert.Equal(t, 0, store.saves)
}

func TestStateManager_WithDocumentPersists(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	sm := NewStateManager(store)
	ctx := context.Background()

	err := sm.WithDocument(ctx, 7, func(doc *editor.Document) error {
		doc.ReplaceText("[Bridge]\nAm\nfalling down")
		return nil
	})
	require.NoError(t, err)
	require.Contains(t, store.sessions, int64(7))

	// a second manager over the same store sees the saved document
	other := NewStateManager(store)
	var text string
	require.NoError(t, other.View(ctx, 7, func(doc *editor.Document) error {
		text = doc.Text()
		assert.Equal(t, 1, doc.History().UndoDepth())
		return nil
	}))
	assert.Equal(t, "[Bridge]\nAm\nfalling down", text)
}

func TestStateManager_FailedMutationIsDropped(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	sm := NewStateManager(store)
	ctx := context.Background()

	require.NoError(t, sm.WithDocument(ctx, 3, func(doc *editor.Document) error {
		doc.Title = "kept"
		return nil
	}))

	boom := errors.New("boom")
	err := sm.WithDocument(ctx, 3, func(doc *editor.Document) error {
		doc.Title = "lost"
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, sm.View(ctx, 3, func(doc *editor.Document) error {
		assert.Equal(t, "kept", doc.Title)
		return nil
	}))
}

func TestStateManager_FailedSaveIsDropped(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	sm := NewStateManager(store)
	ctx := context.Background()

	down := errors.New("redis down")
	store.mu.Lock()
	store.saveErr = down
	store.mu.Unlock()

	err := sm.WithDocument(ctx, 1, func(doc *editor.Document) error {
		doc.AddSection("[Bridge]")
		return nil
	})
	require.ErrorIs(t, err, down)
	assert.Equal(t, 0, sm.Active())

	require.NoError(t, sm.View(ctx, 1, func(doc *editor.Document) error {
		assert.Len(t, doc.Sections, 2)
		return nil
	}))

	store.mu.Lock()
	store.saveErr = nil
	store.mu.Unlock()

	require.NoError(t, sm.WithDocument(ctx, 1, func(doc *editor.Document) error {
		doc.Title = "after recovery"
		return nil
	}))
	assert.Len(t, store.sessions[1].Sections, 2)
	assert.Equal(t, "after recovery", store.sessions[1].Title)
}

func TestStateManager_LoadError(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.loadErr = errors.New("connection refused")
	sm := NewStateManager(store)

	err := sm.WithDocument(context.Background(), 1, func(*editor.Document) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load session")
}

func TestStateManager_ResetAndClear(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	sm := NewStateManager(store)
	ctx := context.Background()

	require.NoError(t, sm.Reset(ctx, 5, editor.FromText("Imported", "[Outro]\nbye")))
	assert.Equal(t, 1, sm.Active())
	assert.Equal(t, "Imported", store.sessions[5].Title)

	require.NoError(t, sm.Clear(ctx, 5))
	assert.Equal(t, 0, sm.Active())
	assert.NotContains(t, store.sessions, int64(5))

	require.NoError(t, sm.Reset(ctx, 5, nil))
	assert.Len(t, store.sessions[5].Sections, 2)
}

func TestStateManager_ConcurrentChatUpdates(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	sm := NewStateManager(store)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := sm.WithDocument(ctx, 9, func(doc *editor.Document) error {
				return doc.AddLine(doc.Sections[0].ID, 1000, lyrics.LineItem{Lyric: "line"})
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.NoError(t, sm.View(ctx, 9, func(doc *editor.Document) error {
		// the default verse starts with one empty line
		assert.Len(t, doc.Sections[0].Lines, workers+1)
		return nil
	}))

	sm.mu.Lock()
	defer sm.mu.Unlock()
	assert.Empty(t, sm.locks)
}
