package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Ключи ресурсов query-кэша
const (
	KeyLessons    = "lessons"
	KeyMyLessons  = "lessons:my"
	KeyMyBookings = "bookings:my"
	KeyCredits    = "credits"
	KeyBroadcasts = "broadcasts"
)

// Snapshot копия значений кэша для отката оптимистичного обновления.
// Хранит и факт отсутствия ключа: откат возвращает кэш ровно в то
// состояние, в котором он был на момент снимка.
type Snapshot map[string]snapshotEntry

type snapshotEntry struct {
	value   interface{}
	present bool
}

// Store query-кэш клиента. Единственное разделяемое состояние приложения:
// все конфликтующие записи проходят через пер-ключевые блокировки,
// произвольных конкурентных писателей быть не должно.
type Store struct {
	entries *gocache.Cache
	logger  *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore создаёт кэш с заданным TTL записей
func NewStore(ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{
		entries: gocache.New(ttl, 2*ttl),
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Get возвращает закэшированное значение
func (s *Store) Get(key string) (interface{}, bool) {
	return s.entries.Get(key)
}

// Set кладёт значение с TTL кэша
func (s *Store) Set(key string, value interface{}) {
	s.entries.Set(key, value, gocache.DefaultExpiration)
}

// Invalidate помечает записи устаревшими: следующее чтение уйдёт в сеть
func (s *Store) Invalidate(keys ...string) {
	for _, key := range keys {
		s.entries.Delete(key)
	}
	s.logger.Debug("Cache invalidated", zap.Strings("keys", keys))
}

// TakeSnapshot снимает копию значений перед оптимистичным обновлением
func (s *Store) TakeSnapshot(keys ...string) Snapshot {
	snap := make(Snapshot, len(keys))
	for _, key := range keys {
		value, present := s.entries.Get(key)
		snap[key] = snapshotEntry{value: value, present: present}
	}
	return snap
}

// Restore откатывает кэш к снимку
func (s *Store) Restore(snap Snapshot) {
	for key, entry := range snap {
		if entry.present {
			s.entries.Set(key, entry.value, gocache.DefaultExpiration)
		} else {
			s.entries.Delete(key)
		}
	}
	s.logger.Debug("Cache restored from snapshot", zap.Int("keys", len(snap)))
}

// LockKey берёт блокировку ресурса и возвращает функцию освобождения.
// Так сериализуются конфликтующие мутации: не больше одной незавершённой
// операции на ключ. Мьютексы не удаляются — множество ключей ограничено
// ресурсами приложения.
func (s *Store) LockKey(key string) func() {
	s.mu.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
