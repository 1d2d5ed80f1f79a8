package progress

import (
	"context"
	"sync"
)

// memoryRepository implements Repository using in-memory storage
type memoryRepository struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemoryRepository creates a new in-memory repository
func NewMemoryRepository() Repository {
	return &memoryRepository{
		docs: make(map[string]Document),
	}
}

func (r *memoryRepository) GetDocument(ctx context.Context, userID string) (Document, error) {
	if userID == "" {
		return Document{}, ErrMissingUserID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, exists := r.docs[userID]
	if !exists {
		return Document{}, ErrNotFound
	}
	return cloneDocument(doc), nil
}

func (r *memoryRepository) SetDocument(ctx context.Context, userID string, doc Document) error {
	if userID == "" {
		return ErrMissingUserID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.docs[userID] = cloneDocument(doc)
	return nil
}

func (r *memoryRepository) UpdateDocument(ctx context.Context, userID string, doc Document) error {
	if userID == "" {
		return ErrMissingUserID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.docs[userID]; !exists {
		return ErrNotFound
	}
	r.docs[userID] = cloneDocument(doc)
	return nil
}

func cloneDocument(d Document) Document {
	d.CompletedLevels = append([]int(nil), d.CompletedLevels...)
	return d
}
