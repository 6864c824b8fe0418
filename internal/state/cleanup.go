package state

import (
	"log"
	"runtime"
	"time"

	"github.com/ivanoskov/staff_bot/internal/model"
)

const (
	// memoryExpiryThreshold — смягченный порог обычного вытеснения
	// при нехватке памяти.
	memoryExpiryThreshold = time.Hour
	// idleEvictAge — возраст, после которого idle-состояния
	// вытесняются агрессивно: незавершенных данных в них нет.
	idleEvictAge = 10 * time.Minute
)

// maybeCleanup запускает пассивное вытеснение, если с прошлого
// прохода прошло не меньше CleanupInterval. Вытеснение убирает
// состояние только из памяти; строка зеркала остается до явного
// ClearState и отсеивается окном свежести при загрузке.
func (s *Store) maybeCleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastCleanup) < s.cfg.CleanupInterval {
		return
	}
	s.lastCleanup = now

	if evicted := s.expireLocked(now, s.cfg.ExpiryThreshold); evicted > 0 {
		log.Printf("state: evicted %d expired states", evicted)
	}
}

// expireLocked вытесняет из памяти состояния старше threshold.
// Вызывается под mu.
func (s *Store) expireLocked(now time.Time, threshold time.Duration) int {
	evicted := 0
	for id, st := range s.cache {
		if now.Sub(st.LastUpdated) > threshold {
			delete(s.cache, id)
			evicted++
		}
	}
	return evicted
}

// ReclaimMemory освобождает память в два прохода: сначала обычное
// вытеснение со смягченным часовым порогом, затем агрессивное
// вытеснение idle-состояний старше десяти минут. Состояния
// незавершенных сценариев агрессивно не вытесняются никогда.
func (s *Store) ReclaimMemory() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	evicted := s.expireLocked(now, memoryExpiryThreshold)
	for id, st := range s.cache {
		if st.CurrentStep == model.StepIdle && now.Sub(st.LastUpdated) > idleEvictAge {
			delete(s.cache, id)
			evicted++
		}
	}

	if evicted > 0 {
		log.Printf("state: reclaimed %d states under memory pressure", evicted)
	}
	return evicted
}

// MemoryPressure сообщает, превысила ли куча заданный лимит.
// Это эксплуатационная проверка для точки входа, не часть
// контракта хранилища.
func MemoryPressure(limitMB uint64) bool {
	if limitMB == 0 {
		return false
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc > limitMB<<20
}
