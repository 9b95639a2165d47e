package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/sukalov/lyricforge/internal/editor"
	"github.com/sukalov/lyricforge/internal/logger"
)

// Store persists document snapshots per chat. *redis.DBManager implements it.
type Store interface {
	SaveSession(ctx context.Context, chatID int64, snap editor.Snapshot) error
	LoadSession(ctx context.Context, chatID int64) (*editor.Snapshot, error)
	DeleteSession(ctx context.Context, chatID int64) error
}

// StateManager keeps one editor document per chat. Work on a chat is
// serialized behind that chat's lock; different chats proceed in parallel.
type StateManager struct {
	mu    sync.Mutex
	store Store
	docs  map[int64]*editor.Document
	locks map[int64]*chatLock
}

// chatLock is dropped from the map once nobody holds or waits for it
type chatLock struct {
	mu   sync.Mutex
	refs int
}

func NewStateManager(store Store) *StateManager {
	return &StateManager{
		store: store,
		docs:  make(map[int64]*editor.Document),
		locks: make(map[int64]*chatLock),
	}
}

// lockChat takes the chat's lock and returns the matching unlock
func (sm *StateManager) lockChat(chatID int64) func() {
	sm.mu.Lock()
	lock, ok := sm.locks[chatID]
	if !ok {
		lock = &chatLock{}
		sm.locks[chatID] = lock
	}
	lock.refs++
	sm.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		sm.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(sm.locks, chatID)
		}
		sm.mu.Unlock()
	}
}

func (sm *StateManager) cached(chatID int64) (*editor.Document, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	doc, ok := sm.docs[chatID]
	return doc, ok
}

func (sm *StateManager) cache(chatID int64, doc *editor.Document) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if doc == nil {
		delete(sm.docs, chatID)
		return
	}
	sm.docs[chatID] = doc
}

// load must be called with the chat lock held
func (sm *StateManager) load(ctx context.Context, chatID int64) (*editor.Document, error) {
	if doc, ok := sm.cached(chatID); ok {
		return doc, nil
	}
	snap, err := sm.store.LoadSession(ctx, chatID)
	if err != nil {
		return nil, err
	}
	var doc *editor.Document
	if snap == nil {
		logger.Debug(fmt.Sprintf("no stored session for chat %d, starting a new document", chatID))
		doc = editor.New()
	} else {
		doc = editor.Restore(*snap)
	}
	sm.cache(chatID, doc)
	return doc, nil
}

// WithDocument runs fn on the chat's document and persists the result when
// fn succeeds. When fn or the save fails, the stored session is untouched and
// the cached copy is dropped so the next call reloads it.
func (sm *StateManager) WithDocument(ctx context.Context, chatID int64, fn func(doc *editor.Document) error) error {
	defer sm.lockChat(chatID)()

	doc, err := sm.load(ctx, chatID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if err := fn(doc); err != nil {
		sm.cache(chatID, nil)
		return err
	}
	if err := sm.store.SaveSession(ctx, chatID, doc.Snapshot()); err != nil {
		logger.Error(fmt.Sprintf("error happened while saving session for chat %d: %s", chatID, err))
		sm.cache(chatID, nil)
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// View runs fn on the chat's document without saving it. fn must not mutate
// the document.
func (sm *StateManager) View(ctx context.Context, chatID int64, fn func(doc *editor.Document) error) error {
	defer sm.lockChat(chatID)()

	doc, err := sm.load(ctx, chatID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	return fn(doc)
}

// Reset replaces the chat's document with doc, or a fresh default document
// when doc is nil.
func (sm *StateManager) Reset(ctx context.Context, chatID int64, doc *editor.Document) error {
	defer sm.lockChat(chatID)()

	if doc == nil {
		doc = editor.New()
	}
	if err := sm.store.SaveSession(ctx, chatID, doc.Snapshot()); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	sm.cache(chatID, doc)
	return nil
}

// Clear forgets the chat's document everywhere
func (sm *StateManager) Clear(ctx context.Context, chatID int64) error {
	defer sm.lockChat(chatID)()

	sm.cache(chatID, nil)
	if err := sm.store.DeleteSession(ctx, chatID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Active returns the number of documents held in memory
func (sm *StateManager) Active() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.docs)
}
