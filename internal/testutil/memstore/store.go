// Package memstore хранилище в памяти с теми же контрактами и ограничениями,
// что и репозитории PostgreSQL. Используется в тестах сервисов и сценариев
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
)

// Store общее состояние всех репозиториев
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	resources map[int64]domain.Resource
	bookings  map[int64]domain.Booking
	pauses    map[int64]domain.Pause
	tasks     map[int64]domain.Task
	history   []domain.TaskHistoryEntry
	requests  map[int64]domain.EntryRequest
	gate      map[int64]domain.GateEntry
	nextID    int64

	// Clock отметка created_at/updated_at
	Clock func() time.Time
}

// New создает пустое хранилище
func New() *Store {
	return &Store{
		resources: map[int64]domain.Resource{},
		bookings:  map[int64]domain.Booking{},
		pauses:    map[int64]domain.Pause{},
		tasks:     map[int64]domain.Task{},
		requests:  map[int64]domain.EntryRequest{},
		gate:      map[int64]domain.GateEntry{},
		Clock:     time.Now,
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

type snapshot struct {
	resources map[int64]domain.Resource
	bookings  map[int64]domain.Booking
	pauses    map[int64]domain.Pause
	tasks     map[int64]domain.Task
	history   []domain.TaskHistoryEntry
	requests  map[int64]domain.EntryRequest
	gate      map[int64]domain.GateEntry
	nextID    int64
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		resources: copyMap(s.resources),
		bookings:  copyMap(s.bookings),
		pauses:    copyMap(s.pauses),
		tasks:     copyMap(s.tasks),
		history:   append([]domain.TaskHistoryEntry(nil), s.history...),
		requests:  copyMap(s.requests),
		gate:      copyMap(s.gate),
		nextID:    s.nextID,
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources = snap.resources
	s.bookings = snap.bookings
	s.pauses = snap.pauses
	s.tasks = snap.tasks
	s.history = snap.history
	s.requests = snap.requests
	s.gate = snap.gate
	s.nextID = snap.nextID
}

type txKey struct{}

// TxManager транзакции поверх Store: операции выполняются по очереди,
// при ошибке состояние откатывается. Вложенный вызов переиспользует внешнюю транзакцию
type TxManager struct {
	store *Store
}

// TxManager возвращает менеджер транзакций хранилища
func (s *Store) TxManager() *TxManager {
	return &TxManager{store: s}
}

// Do выполняет fn в транзакции
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	snap := m.store.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// DoSerializable то же, что Do
func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}

// DoReadOnly то же, что Do
func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}

// SeedLifts добавляет четыре подъёмника из начальной миграции
func (s *Store) SeedLifts() []*domain.Resource {
	repo := s.Resources()
	out := make([]*domain.Resource, 0, 4)
	for _, r := range []domain.Resource{
		{Category: domain.ResourceLift3D, Number: 1, Name: "Elevador 3D 1", Active: true},
		{Category: domain.ResourceLift3D, Number: 2, Name: "Elevador 3D 2", Active: true},
		{Category: domain.ResourceScissorLift, Number: 1, Name: "Elevador Tijera 1", Active: true},
		{Category: domain.ResourceScissorLift, Number: 2, Name: "Elevador Tijera 2", Active: true},
	} {
		r := r
		created, _ := repo.Create(context.Background(), &r)
		out = append(out, created)
	}
	return out
}
