package meta

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sir_venger/download_lite/internal/models"
)

// MemoryStore хранит дескрипторы только в оперативной памяти; удобно для тестов.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[uuid.UUID]models.Descriptor
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore создаёт пустое in-memory хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: map[uuid.UUID]models.Descriptor{}}
}

// Get возвращает дескриптор по id или models.ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (models.Descriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.files[id]
	if !ok {
		return models.Descriptor{}, models.ErrNotFound
	}
	return d, nil
}

// Save добавляет дескриптор. Повторная запись того же id запрещена.
func (s *MemoryStore) Save(_ context.Context, d models.Descriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.files[d.ID]; exists {
		return models.ErrAlreadyExists
	}
	s.files[d.ID] = d
	return nil
}

// List возвращает дескрипторы от новых к старым.
func (s *MemoryStore) List(_ context.Context) ([]models.Descriptor, error) {
	s.mu.RLock()
	out := make([]models.Descriptor, 0, len(s.files))
	for _, d := range s.files {
		out = append(out, d)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastModified.Equal(out[j].LastModified) {
			return out[i].LastModified.After(out[j].LastModified)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
