// Package state реализует хранилище состояний диалогов: где находится
// пользователь в многошаговом сценарии и что он уже ввел. Состояния
// живут в памяти процесса и зеркалируются в табличный сервис, чтобы
// переживать рестарты.
package state

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ivanoskov/staff_bot/internal/model"
	"github.com/ivanoskov/staff_bot/internal/sheets"
)

// Config — параметры хранилища состояний.
type Config struct {
	// SyncEnabled включает зеркалирование в табличный сервис.
	SyncEnabled bool
	// Table — имя листа с зеркалом состояний.
	Table string
	// SyncInterval — период фоновой синхронизации.
	SyncInterval time.Duration
	// ExpiryThreshold — возраст неактивности, после которого
	// состояние вытесняется из памяти.
	ExpiryThreshold time.Duration
	// FreshnessWindow — максимальный возраст строки зеркала,
	// которую можно принять при загрузке.
	FreshnessWindow time.Duration
	// CleanupInterval — минимальный интервал между проходами
	// пассивного вытеснения.
	CleanupInterval time.Duration
}

// DefaultConfig возвращает параметры по умолчанию.
func DefaultConfig() Config {
	return Config{
		SyncEnabled:     true,
		Table:           "user_states",
		SyncInterval:    5 * time.Minute,
		ExpiryThreshold: 30 * time.Minute,
		FreshnessWindow: 24 * time.Hour,
		CleanupInterval: 5 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Table == "" {
		c.Table = def.Table
	}
	if c.SyncInterval <= 0 {
		c.SyncInterval = def.SyncInterval
	}
	if c.ExpiryThreshold <= 0 {
		c.ExpiryThreshold = def.ExpiryThreshold
	}
	if c.FreshnessWindow <= 0 {
		c.FreshnessWindow = def.FreshnessWindow
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = def.CleanupInterval
	}
	return c
}

// Store — хранилище состояний диалогов.
//
// Дисциплина блокировок: mu защищает карты cache и userMu, все
// обходы всей коллекции и любое изменение полей состояния; мьютекс
// из userMu сериализует чтение-изменение-запись одного пользователя,
// включая сетевые вызовы к зеркалу. Сетевые вызовы никогда не
// делаются под mu.
type Store struct {
	tables sheets.TableService
	cfg    Config
	now    func() time.Time

	mu          sync.Mutex
	cache       map[int64]*model.ConversationState
	userMu      map[int64]*sync.Mutex
	lastCleanup time.Time
	lastSync    time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// Option настраивает хранилище при создании.
type Option func(*Store)

// WithClock подменяет источник времени (нужно тестам).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New создает хранилище и, если зеркалирование включено, сразу
// поднимает состояния из табличного сервиса: после рестарта процесса
// пользователи продолжают сценарии с того же шага.
func New(tables sheets.TableService, cfg Config, opts ...Option) *Store {
	s := &Store{
		tables: tables,
		cfg:    cfg.withDefaults(),
		now:    time.Now,
		cache:  make(map[int64]*model.ConversationState),
		userMu: make(map[int64]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.cfg.SyncEnabled {
		ctx := context.Background()
		if _, err := s.tables.EnsureTable(ctx, s.cfg.Table); err != nil {
			log.Printf("state: failed to ensure table %s: %v", s.cfg.Table, err)
		}
		s.loadAll(ctx)
	}
	return s
}

// userLock возвращает мьютекс пользователя, создавая его при
// первом обращении. Мьютексы не удаляются: сохранение их
// идентичности и есть гарантия сериализации по пользователю.
func (s *Store) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lk, ok := s.userMu[userID]
	if !ok {
		lk = &sync.Mutex{}
		s.userMu[userID] = lk
	}
	return lk
}

// GetState возвращает текущий шаг и копию накопленных данных.
// При промахе кэша пробует зеркало (не старше окна свежести);
// для неизвестного пользователя это (idle, {}), а не ошибка.
func (s *Store) GetState(ctx context.Context, userID int64) (model.Step, model.TempData) {
	lk := s.userLock(userID)
	lk.Lock()
	defer lk.Unlock()

	s.mu.Lock()
	st, ok := s.cache[userID]
	s.mu.Unlock()

	if !ok && s.cfg.SyncEnabled {
		if loaded := s.loadUser(ctx, userID); loaded != nil {
			s.mu.Lock()
			s.cache[userID] = loaded
			s.mu.Unlock()
			st, ok = loaded, true
		}
	}
	if !ok {
		return model.StepIdle, model.TempData{}
	}
	return st.CurrentStep, st.TempData.Clone()
}

// SetState переводит пользователя на шаг step и доливает data в
// накопленные данные (слияние по ключам, не замена). Запись в зеркало
// делается сразу, но ее неудача не ошибка: память остается
// авторитетной для работающего процесса.
//
// Неизвестный шаг — единственная ошибка, которую хранилище
// возвращает наружу: это рассинхронизация словаря шагов.
func (s *Store) SetState(ctx context.Context, userID int64, step model.Step, data model.TempData) error {
	if !model.ValidStep(step) {
		return fmt.Errorf("unknown step %q", step)
	}

	lk := s.userLock(userID)
	lk.Lock()

	// поля меняются под mu: фоновые проходы читают их, держа только mu
	s.mu.Lock()
	st, ok := s.cache[userID]
	if !ok {
		st = &model.ConversationState{
			UserID:   userID,
			TempData: model.TempData{},
		}
		s.cache[userID] = st
	}
	st.CurrentStep = step
	for k, v := range data {
		st.TempData[k] = v
	}
	st.LastUpdated = s.now()
	s.mu.Unlock()

	if s.cfg.SyncEnabled {
		s.pushUser(ctx, st)
	}
	lk.Unlock()

	s.maybeCleanup()
	return nil
}

// UpdateField доливает один ключ в данные пользователя. Если
// состояния нет, создает его на шаге idle.
func (s *Store) UpdateField(ctx context.Context, userID int64, key string, value any) error {
	lk := s.userLock(userID)
	lk.Lock()
	defer lk.Unlock()

	s.mu.Lock()
	st, ok := s.cache[userID]
	if !ok {
		st = &model.ConversationState{
			UserID:      userID,
			CurrentStep: model.StepIdle,
			TempData:    model.TempData{},
		}
		s.cache[userID] = st
	}
	st.TempData[key] = value
	st.LastUpdated = s.now()
	s.mu.Unlock()

	if s.cfg.SyncEnabled {
		s.pushUser(ctx, st)
	}
	return nil
}

// ClearState удаляет состояние пользователя из памяти и, по
// возможности, из зеркала. Отсутствующее состояние — не ошибка.
func (s *Store) ClearState(ctx context.Context, userID int64) {
	lk := s.userLock(userID)
	lk.Lock()
	defer lk.Unlock()

	s.mu.Lock()
	delete(s.cache, userID)
	s.mu.Unlock()

	if s.cfg.SyncEnabled {
		s.deleteRemote(ctx, userID)
	}
}

// InPhase сообщает, находится ли пользователь в указанной фазе.
// Для неизвестного пользователя фаза — idle.
func (s *Store) InPhase(ctx context.Context, userID int64, phase model.Phase) bool {
	step, _ := s.GetState(ctx, userID)
	return phase.Contains(step)
}

// IsIdle сообщает, что у пользователя нет незавершенного сценария.
func (s *Store) IsIdle(ctx context.Context, userID int64) bool {
	return s.InPhase(ctx, userID, model.PhaseIdle)
}

// IsRegistering сообщает, что пользователь проходит регистрацию.
func (s *Store) IsRegistering(ctx context.Context, userID int64) bool {
	return s.InPhase(ctx, userID, model.PhaseRegistering)
}

// IsClaiming сообщает, что пользователь оформляет заявку на расходы.
func (s *Store) IsClaiming(ctx context.Context, userID int64) bool {
	return s.InPhase(ctx, userID, model.PhaseClaiming)
}

// IsRequestingDayOff сообщает, что пользователь запрашивает отгул.
func (s *Store) IsRequestingDayOff(ctx context.Context, userID int64) bool {
	return s.InPhase(ctx, userID, model.PhaseDayOff)
}

// ActiveUserCount возвращает число пользователей, активных в
// пределах порога вытеснения.
func (s *Store) ActiveUserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	count := 0
	for _, st := range s.cache {
		if now.Sub(st.LastUpdated) <= s.cfg.ExpiryThreshold {
			count++
		}
	}
	return count
}

// TotalUserCount возвращает общее число состояний в памяти.
func (s *Store) TotalUserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}

// SyncStatus — сводка для мониторинга состояния синхронизации.
type SyncStatus struct {
	Enabled      bool
	CachedCount  int
	LastSyncTime time.Time
	Interval     time.Duration
}

// SyncStatus возвращает текущую сводку синхронизации.
func (s *Store) SyncStatus() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SyncStatus{
		Enabled:      s.cfg.SyncEnabled,
		CachedCount:  len(s.cache),
		LastSyncTime: s.lastSync,
		Interval:     s.cfg.SyncInterval,
	}
}
