package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/booking"
	gateRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/gate"
	pauseRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/pause"
	requestRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/request"
	resourceRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/resource"
	taskRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/task"
)

// ResourceRepo реестр подъёмников в памяти
type ResourceRepo struct{ s *Store }

// Resources репозиторий подъёмников
func (s *Store) Resources() *ResourceRepo { return &ResourceRepo{s: s} }

func (r *ResourceRepo) Create(_ context.Context, res *domain.Resource) (*domain.Resource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.resources {
		if existing.Category == res.Category && existing.Number == res.Number {
			return nil, resourceRepo.ErrResourceExists
		}
	}

	res.ID = r.s.id()
	res.CreatedAt = r.s.Clock()
	res.UpdatedAt = res.CreatedAt
	r.s.resources[res.ID] = *res

	out := *res
	return &out, nil
}

func (r *ResourceRepo) List(_ context.Context, category *domain.ResourceCategory, activeOnly bool) ([]*domain.Resource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*domain.Resource, 0)
	for _, res := range r.s.resources {
		if activeOnly && !res.Active {
			continue
		}
		if category != nil && res.Category != *category {
			continue
		}
		res := res
		out = append(out, &res)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Number < out[j].Number
	})
	return out, nil
}

func (r *ResourceRepo) GetByID(_ context.Context, id int64) (*domain.Resource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, ok := r.s.resources[id]
	if !ok {
		return nil, resourceRepo.ErrResourceNotFound
	}
	return &res, nil
}

func (r *ResourceRepo) SetActive(_ context.Context, id int64, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, ok := r.s.resources[id]
	if !ok {
		return resourceRepo.ErrResourceNotFound
	}
	res.Active = active
	r.s.resources[id] = res
	return nil
}

// BookingRepo ингресо в памяти; проверяет те же ограничения, что и схема БД
type BookingRepo struct{ s *Store }

// Bookings репозиторий ингресо
func (s *Store) Bookings() *BookingRepo { return &BookingRepo{s: s} }

func (r *BookingRepo) checkConstraints(b *domain.Booking) error {
	for _, other := range r.s.bookings {
		if other.ID == b.ID {
			continue
		}
		if b.IsActive() && other.IsActive() && other.VehicleID == b.VehicleID {
			return bookingRepo.ErrVehicleBusy
		}
		if b.OccupiesResource() && other.OccupiesResource() && *other.ResourceID == *b.ResourceID &&
			other.Overlaps(b.ScheduledAt, b.ScheduledEnd()) {
			return bookingRepo.ErrSlotTaken
		}
	}
	return nil
}

func (r *BookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if b.ResourceID != nil {
		if _, ok := r.s.resources[*b.ResourceID]; !ok {
			return nil, bookingRepo.ErrResourceNotFound
		}
	}
	if err := r.checkConstraints(b); err != nil {
		return nil, err
	}

	b.ID = r.s.id()
	b.CreatedAt = r.s.Clock()
	b.UpdatedAt = b.CreatedAt
	r.s.bookings[b.ID] = *b

	out := *b
	return &out, nil
}

func (r *BookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return &b, nil
}

func (r *BookingRepo) GetActiveByVehicle(_ context.Context, vehicleID int64) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, b := range r.s.bookings {
		if b.VehicleID == vehicleID && b.IsActive() {
			return &b, nil
		}
	}
	return nil, bookingRepo.ErrBookingNotFound
}

func (r *BookingRepo) ListOccupying(_ context.Context, resourceIDs []int64, from, to time.Time) ([]*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	wanted := map[int64]bool{}
	for _, id := range resourceIDs {
		wanted[id] = true
	}

	out := make([]*domain.Booking, 0)
	for _, b := range r.s.bookings {
		if b.OccupiesResource() && wanted[*b.ResourceID] && b.Overlaps(from, to) {
			b := b
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (r *BookingRepo) FindScheduledForGateLink(_ context.Context, vehicleID int64, from time.Time) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var best *domain.Booking
	for _, b := range r.s.bookings {
		if b.VehicleID != vehicleID || b.Status != domain.BookingScheduled || b.GateEntryID != nil || b.ScheduledAt.Before(from) {
			continue
		}
		if best == nil || b.ScheduledAt.Before(best.ScheduledAt) {
			b := b
			best = &b
		}
	}
	if best == nil {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return best, nil
}

func (r *BookingRepo) Update(_ context.Context, b *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.bookings[b.ID]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}

	stored.Status = b.Status
	stored.ArrivedAt = b.ArrivedAt
	stored.StartedAt = b.StartedAt
	stored.FinishedAt = b.FinishedAt
	stored.Notes = b.Notes
	stored.OdometerKm = b.OdometerKm
	stored.SupervisorID = b.SupervisorID
	stored.GateEntryID = b.GateEntryID
	stored.UpdatedAt = r.s.Clock()

	if err := r.checkConstraints(&stored); err != nil {
		return err
	}
	r.s.bookings[b.ID] = stored
	return nil
}

func (r *BookingRepo) LinkGateEntry(_ context.Context, bookingID, gateEntryID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[bookingID]
	if !ok || b.GateEntryID != nil {
		return bookingRepo.ErrBookingNotFound
	}
	b.GateEntryID = &gateEntryID
	r.s.bookings[bookingID] = b
	return nil
}

// PauseRepo паузы в памяти
type PauseRepo struct{ s *Store }

// Pauses репозиторий пауз
func (s *Store) Pauses() *PauseRepo { return &PauseRepo{s: s} }

func (r *PauseRepo) Create(_ context.Context, p *domain.Pause) (*domain.Pause, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, other := range r.s.pauses {
		if other.BookingID == p.BookingID && other.IsOpen() {
			return nil, pauseRepo.ErrPauseAlreadyOpen
		}
	}

	p.ID = r.s.id()
	r.s.pauses[p.ID] = *p

	out := *p
	return &out, nil
}

func (r *PauseRepo) GetOpen(_ context.Context, bookingID int64) (*domain.Pause, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.pauses {
		if p.BookingID == bookingID && p.IsOpen() {
			return &p, nil
		}
	}
	return nil, pauseRepo.ErrPauseNotFound
}

func (r *PauseRepo) Close(_ context.Context, id int64, endedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.pauses[id]
	if !ok || !p.IsOpen() {
		return pauseRepo.ErrPauseNotFound
	}
	p.EndedAt = &endedAt
	r.s.pauses[id] = p
	return nil
}

func (r *PauseRepo) ListByBooking(_ context.Context, bookingID int64) ([]*domain.Pause, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*domain.Pause, 0)
	for _, p := range r.s.pauses {
		if p.BookingID == bookingID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// TaskRepo задачи и журнал изменений в памяти
type TaskRepo struct{ s *Store }

// Tasks репозиторий задач
func (s *Store) Tasks() *TaskRepo { return &TaskRepo{s: s} }

func (r *TaskRepo) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.bookings[t.BookingID]; !ok {
		return nil, taskRepo.ErrBookingNotFound
	}

	t.ID = r.s.id()
	t.CreatedAt = r.s.Clock()
	t.UpdatedAt = t.CreatedAt
	r.s.tasks[t.ID] = *t.Clone()

	return t.Clone(), nil
}

func (r *TaskRepo) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return nil, taskRepo.ErrTaskNotFound
	}
	return t.Clone(), nil
}

func (r *TaskRepo) Update(_ context.Context, t *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[t.ID]; !ok {
		return taskRepo.ErrTaskNotFound
	}
	stored := *t.Clone()
	stored.UpdatedAt = r.s.Clock()
	r.s.tasks[t.ID] = stored
	return nil
}

func (r *TaskRepo) ListByBooking(_ context.Context, bookingID int64) ([]*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*domain.Task, 0)
	for _, t := range r.s.tasks {
		if t.BookingID == bookingID {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TaskRepo) CountUnfinished(_ context.Context, bookingID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, t := range r.s.tasks {
		if t.BookingID == bookingID && !t.IsFinished() {
			count++
		}
	}
	return count, nil
}

func (r *TaskRepo) AppendHistory(_ context.Context, entries []*domain.TaskHistoryEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, e := range entries {
		e.ID = r.s.id()
		r.s.history = append(r.s.history, *e)
	}
	return nil
}

func (r *TaskRepo) ListHistory(_ context.Context, taskID int64) ([]*domain.TaskHistoryEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*domain.TaskHistoryEntry, 0)
	for _, e := range r.s.history {
		if e.TaskID == taskID {
			e := e
			out = append(out, &e)
		}
	}
	return out, nil
}

// RequestRepo заявки в памяти
type RequestRepo struct{ s *Store }

// Requests репозиторий заявок
func (s *Store) Requests() *RequestRepo { return &RequestRepo{s: s} }

func (r *RequestRepo) Create(_ context.Context, req *domain.EntryRequest) (*domain.EntryRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, other := range r.s.requests {
		if other.VehicleID == req.VehicleID && other.IsActive() {
			return nil, requestRepo.ErrActiveRequestExists
		}
	}

	req.ID = r.s.id()
	req.CreatedAt = r.s.Clock()
	req.UpdatedAt = req.CreatedAt
	r.s.requests[req.ID] = *req

	out := *req
	return &out, nil
}

func (r *RequestRepo) GetByID(_ context.Context, id int64) (*domain.EntryRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.requests[id]
	if !ok {
		return nil, requestRepo.ErrRequestNotFound
	}
	return &req, nil
}

func (r *RequestRepo) GetByBookingID(_ context.Context, bookingID int64) (*domain.EntryRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, req := range r.s.requests {
		if req.BookingID != nil && *req.BookingID == bookingID {
			return &req, nil
		}
	}
	return nil, requestRepo.ErrRequestNotFound
}

func (r *RequestRepo) GetActiveByVehicle(_ context.Context, vehicleID int64) (*domain.EntryRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, req := range r.s.requests {
		if req.VehicleID == vehicleID && req.IsActive() {
			return &req, nil
		}
	}
	return nil, requestRepo.ErrRequestNotFound
}

func (r *RequestRepo) ListPending(_ context.Context) ([]*domain.EntryRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*domain.EntryRequest, 0)
	for _, req := range r.s.requests {
		if req.Status == domain.RequestPending {
			req := req
			out = append(out, &req)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *RequestRepo) ListApprovedUnbooked(_ context.Context, from, to time.Time) ([]*domain.EntryRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*domain.EntryRequest, 0)
	for _, req := range r.s.requests {
		if req.Status != domain.RequestApproved || req.BookingID != nil || req.EstimatedAt == nil {
			continue
		}
		if !req.EstimatedAt.Before(from) && req.EstimatedAt.Before(to) {
			req := req
			out = append(out, &req)
		}
	}
	return out, nil
}

func (r *RequestRepo) Update(_ context.Context, req *domain.EntryRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.requests[req.ID]
	if !ok {
		return requestRepo.ErrRequestNotFound
	}

	stored.Status = req.Status
	stored.EstimatedAt = req.EstimatedAt
	stored.BookingID = req.BookingID
	stored.ResponderID = req.ResponderID
	stored.RespondedAt = req.RespondedAt
	stored.ResponderNotes = req.ResponderNotes
	stored.UpdatedAt = r.s.Clock()
	r.s.requests[req.ID] = stored
	return nil
}

// GateRepo записи КПП в памяти
type GateRepo struct{ s *Store }

// Gate репозиторий записей КПП
func (s *Store) Gate() *GateRepo { return &GateRepo{s: s} }

func (r *GateRepo) Create(_ context.Context, e *domain.GateEntry) (*domain.GateEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e.ID = r.s.id()
	e.CreatedAt = r.s.Clock()
	r.s.gate[e.ID] = *e

	out := *e
	return &out, nil
}

func (r *GateRepo) GetByID(_ context.Context, id int64) (*domain.GateEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.gate[id]
	if !ok {
		return nil, gateRepo.ErrEntryNotFound
	}
	for _, b := range r.s.bookings {
		if b.GateEntryID != nil && *b.GateEntryID == id {
			bookingID := b.ID
			e.BookingID = &bookingID
			break
		}
	}
	return &e, nil
}

func (r *GateRepo) SetExit(_ context.Context, id int64, exitedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.gate[id]
	if !ok || !e.IsInside() {
		return gateRepo.ErrAlreadyExited
	}
	e.ExitedAt = &exitedAt
	r.s.gate[id] = e
	return nil
}
