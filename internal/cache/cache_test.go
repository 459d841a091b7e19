package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStore() *Store {
	return NewStore(time.Minute, zap.NewNop())
}

func TestStore_SnapshotRestoreRoundTrip(t *testing.T) {
	s := newStore()
	s.Set(KeyMyBookings, []int64{1, 2, 3})
	// KeyLessons намеренно не заполняем

	snap := s.TakeSnapshot(KeyMyBookings, KeyLessons)

	// Оптимистичное обновление
	s.Set(KeyMyBookings, []int64{1, 3})
	s.Set(KeyLessons, "surprise")

	s.Restore(snap)

	got, ok := s.Get(KeyMyBookings)
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2, 3}, got)

	_, ok = s.Get(KeyLessons)
	assert.False(t, ok, "отсутствовавший ключ должен снова отсутствовать после отката")
}

func TestStore_InvalidateMarksStale(t *testing.T) {
	s := newStore()
	s.Set(KeyCredits, 5)
	s.Set(KeyLessons, "x")

	s.Invalidate(KeyCredits, KeyLessons)

	_, ok := s.Get(KeyCredits)
	assert.False(t, ok)
	_, ok = s.Get(KeyLessons)
	assert.False(t, ok)
}

func TestStore_LockKeySerializesSameKey(t *testing.T) {
	s := newStore()

	var order []int
	var mu sync.Mutex
	record := func(n int) {
		mu.Lock()
		order = append(order, n)
		mu.Unlock()
	}

	unlock := s.LockKey("booking:7")
	done := make(chan struct{})
	go func() {
		u := s.LockKey("booking:7")
		record(2)
		u()
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	record(1)
	unlock()
	<-done

	assert.Equal(t, []int{1, 2}, order, "вторая мутация того же ключа должна ждать первую")
}

func TestStore_LockKeyIndependentKeysDoNotBlock(t *testing.T) {
	s := newStore()

	unlockA := s.LockKey("booking:1")
	defer unlockA()

	acquired := make(chan struct{})
	go func() {
		u := s.LockKey("booking:2")
		u()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("блокировка другого ключа не должна ждать")
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	s := NewStore(10*time.Millisecond, zap.NewNop())
	s.Set(KeyCredits, 1)

	time.Sleep(30 * time.Millisecond)

	_, ok := s.Get(KeyCredits)
	assert.False(t, ok)
}
