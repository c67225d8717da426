package meta

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coocood/freecache"
	"github.com/google/uuid"
	"github.com/sir_venger/download_lite/internal/models"
)

// CachedStore держит дескрипторы в freecache поверх основного каталога.
// Дескрипторы неизменяемы, поэтому инвалидация не нужна; промахи не кешируются.
type CachedStore struct {
	Store
	cache      *freecache.Cache
	ttlSeconds int
}

var _ Store = (*CachedStore)(nil)

// NewCachedStore оборачивает next кешем размером sizeMB. ttl <= 0: без истечения.
func NewCachedStore(next Store, sizeMB int, ttl time.Duration) *CachedStore {
	return &CachedStore{
		Store:      next,
		cache:      freecache.NewCache(max(sizeMB, 1) * 1024 * 1024),
		ttlSeconds: max(int(ttl.Seconds()), 0),
	}
}

// Get сначала смотрит в кеш, затем в каталог.
func (s *CachedStore) Get(ctx context.Context, id uuid.UUID) (models.Descriptor, error) {
	key := id[:]
	if raw, err := s.cache.Get(key); err == nil {
		var d models.Descriptor
		if err = json.Unmarshal(raw, &d); err == nil {
			return d, nil
		}
		s.cache.Del(key)
	}

	d, err := s.Store.Get(ctx, id)
	if err != nil {
		return models.Descriptor{}, err
	}
	s.remember(d)
	return d, nil
}

// Save пишет в каталог и прогревает кеш.
func (s *CachedStore) Save(ctx context.Context, d models.Descriptor) error {
	if err := s.Store.Save(ctx, d); err != nil {
		return err
	}
	s.remember(d)
	return nil
}

// Stats возвращает число попаданий и промахов кеша.
func (s *CachedStore) Stats() (hits, misses int64) {
	return s.cache.HitCount(), s.cache.MissCount()
}

func (s *CachedStore) remember(d models.Descriptor) {
	raw, err := json.Marshal(d)
	if err != nil {
		return
	}
	// переполнение кеша не ошибка каталога
	_ = s.cache.Set(d.ID[:], raw, s.ttlSeconds)
}
