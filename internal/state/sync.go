package state

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/ivanoskov/staff_bot/internal/model"
)

// loadAll поднимает все свежие строки зеркала в память. Вызывается
// один раз при создании хранилища, до начала обслуживания запросов.
func (s *Store) loadAll(ctx context.Context) {
	rows, err := s.tables.GetRange(ctx, s.cfg.Table, stateRange)
	if err != nil {
		log.Printf("state: failed to load states from %s: %v", s.cfg.Table, err)
		return
	}

	now := s.now()
	loaded, skipped := 0, 0
	s.mu.Lock()
	for i, row := range rows {
		st, err := decodeRow(row)
		if err != nil {
			log.Printf("state: skipping malformed row %d: %v", i+1, err)
			skipped++
			continue
		}
		if now.Sub(st.LastUpdated) > s.cfg.FreshnessWindow {
			continue
		}
		s.cache[st.UserID] = st
		loaded++
	}
	s.mu.Unlock()

	if loaded > 0 || skipped > 0 {
		log.Printf("state: restored %d states from %s (%d malformed rows skipped)",
			loaded, s.cfg.Table, skipped)
	}
}

// loadUser ищет строку пользователя в зеркале. Устаревшая, испорченная
// или отсутствующая строка дает nil: хранилище открывается в idle,
// а не падает.
func (s *Store) loadUser(ctx context.Context, userID int64) *model.ConversationState {
	row, _, err := s.findRow(ctx, userID)
	if err != nil {
		log.Printf("state: failed to look up user %d in %s: %v", userID, s.cfg.Table, err)
		return nil
	}
	if row == nil {
		return nil
	}

	st, err := decodeRow(row)
	if err != nil {
		log.Printf("state: skipping malformed row for user %d: %v", userID, err)
		return nil
	}
	if s.now().Sub(st.LastUpdated) > s.cfg.FreshnessWindow {
		return nil
	}
	return st
}

// findRow ищет строку пользователя линейным проходом по колонке A.
// Возвращает строку и ее единичный индекс; (nil, 0) — строки нет.
func (s *Store) findRow(ctx context.Context, userID int64) ([]string, int, error) {
	rows, err := s.tables.GetRange(ctx, s.cfg.Table, stateRange)
	if err != nil {
		return nil, 0, err
	}
	id := strconv.FormatInt(userID, 10)
	for i, row := range rows {
		if len(row) > 0 && row[0] == id {
			return row, i + 1, nil
		}
	}
	return nil, 0, nil
}

// pushUser записывает состояние в зеркало: обновляет существующую
// строку пользователя, иначе добавляет новую. Дубликаты строк не
// создаются — строка ищется перед каждой записью. Ошибки зеркала
// только логируются. Вызывается под мьютексом пользователя.
func (s *Store) pushUser(ctx context.Context, st *model.ConversationState) {
	row, err := encodeRow(st)
	if err != nil {
		log.Printf("state: failed to encode state for user %d: %v", st.UserID, err)
		return
	}

	_, idx, err := s.findRow(ctx, st.UserID)
	if err != nil {
		log.Printf("state: sync lookup failed for user %d: %v", st.UserID, err)
		return
	}
	if idx > 0 {
		err = s.tables.UpdateRow(ctx, s.cfg.Table, idx, stateRange, row)
	} else {
		err = s.tables.AppendRow(ctx, s.cfg.Table, stateRange, row)
	}
	if err != nil {
		log.Printf("state: failed to sync state for user %d: %v", st.UserID, err)
	}
}

// deleteRemote удаляет строку пользователя из зеркала, если она есть.
func (s *Store) deleteRemote(ctx context.Context, userID int64) {
	_, idx, err := s.findRow(ctx, userID)
	if err != nil {
		log.Printf("state: delete lookup failed for user %d: %v", userID, err)
		return
	}
	if idx == 0 {
		return
	}
	if err := s.tables.DeleteRow(ctx, s.cfg.Table, idx); err != nil {
		log.Printf("state: failed to delete remote state for user %d: %v", userID, err)
	}
}

// SyncAll зеркалирует все закэшированные состояния. Идемпотентна:
// повторный прогон без изменений обновляет те же строки, не плодя
// новых. Страхует от пропущенных или неудавшихся синхронных записей.
func (s *Store) SyncAll(ctx context.Context) {
	if !s.cfg.SyncEnabled {
		return
	}

	s.mu.Lock()
	ids := make([]int64, 0, len(s.cache))
	for id := range s.cache {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	pushed := 0
	for _, id := range ids {
		lk := s.userLock(id)
		lk.Lock()
		s.mu.Lock()
		st, ok := s.cache[id]
		s.mu.Unlock()
		if ok {
			s.pushUser(ctx, st)
			pushed++
		}
		lk.Unlock()
	}

	s.mu.Lock()
	s.lastSync = s.now()
	s.mu.Unlock()

	if pushed > 0 {
		log.Printf("state: background sync pushed %d states", pushed)
	}
}

// Start запускает фоновое зеркалирование с периодом SyncInterval.
func (s *Store) Start() {
	if !s.cfg.SyncEnabled || s.stopCh != nil {
		return
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go func() {
		defer close(s.doneCh)
		ticker := time.NewTicker(s.cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.SyncAll(context.Background())
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Stop останавливает фоновое зеркалирование и делает прощальный
// прогон синхронизации, чтобы не потерять последние изменения.
func (s *Store) Stop() {
	if s.stopCh == nil {
		return
	}
	close(s.stopCh)
	<-s.doneCh
	s.stopCh = nil
	s.doneCh = nil
	s.SyncAll(context.Background())
}
