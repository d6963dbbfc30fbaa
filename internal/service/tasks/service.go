package tasks

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/booking"
	taskRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/task"
	"github.com/m04kA/SMC-WorkshopService/internal/integrations/notificationservice"
	"github.com/m04kA/SMC-WorkshopService/internal/service/tasks/models"
)

// Service задачи ремонта и журнал их изменений
//
// Каждая запись читает снимок задачи в той же транзакции, сравнивает его с новой версией
// и сохраняет задачу вместе с записями журнала атомарно
type Service struct {
	taskRepo     TaskRepository
	bookingRepo  BookingRepository
	notifier     Notifier
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса
func NewService(
	taskRepo TaskRepository,
	bookingRepo BookingRepository,
	notifier Notifier,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		taskRepo:     taskRepo,
		bookingRepo:  bookingRepo,
		notifier:     notifier,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// Create добавляет задачу к ингресо в статусе PENDIENTE
// Журнал: CREACION и, если сразу назначен механик, ASIGNACION
func (s *Service) Create(ctx context.Context, bookingID int64, req *models.CreateTaskRequest, actor domain.Actor) (*models.TaskResponse, error) {
	s.logger.Info("Create: task for booking id=%d, actor=%d", bookingID, actor.ID)

	title, priority, err := validateCreate(req)
	if err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	now := s.timeProvider.Now()
	var (
		created *domain.Task
		booking *domain.Booking
	)

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		b, err := s.workableBooking(txCtx, bookingID, "create_task")
		if err != nil {
			return err
		}

		task, err := s.taskRepo.Create(txCtx, &domain.Task{
			BookingID:        bookingID,
			Title:            title,
			Description:      trimmed(req.Description),
			MechanicID:       req.MechanicID,
			Status:           domain.TaskPending,
			Priority:         priority,
			EstimatedMinutes: req.EstimatedMinutes,
			PartsUsed:        trimmed(req.PartsUsed),
			Notes:            trimmed(req.Notes),
		})
		if err != nil {
			if errors.Is(err, taskRepo.ErrBookingNotFound) {
				return &domain.NotFoundError{Entity: "booking", ID: bookingID}
			}
			return fmt.Errorf("%w: failed to create task: %w", ErrInternal, err)
		}

		if err := s.taskRepo.AppendHistory(txCtx, domain.CreationEntries(task, actor.ID, now)); err != nil {
			return fmt.Errorf("%w: failed to append history: %w", ErrInternal, err)
		}

		created, booking = task, b
		return nil
	})
	if err != nil {
		s.logFailure("Create", bookingID, err)
		return nil, err
	}

	if created.MechanicID != nil {
		s.notifyAssigned(created, booking)
	}

	s.logger.Info("Create: created task id=%d for booking id=%d", created.ID, bookingID)
	return models.FromDomainTask(created, now), nil
}

// Start PENDIENTE -> EN_PROCESO (или PAUSADA -> EN_PROCESO)
func (s *Service) Start(ctx context.Context, id int64, actor domain.Actor) (*models.TaskResponse, error) {
	return s.transition(ctx, "Start", id, domain.TaskInProgress, nil, actor)
}

// Pause EN_PROCESO -> PAUSADA
func (s *Service) Pause(ctx context.Context, id int64, actor domain.Actor) (*models.TaskResponse, error) {
	return s.transition(ctx, "Pause", id, domain.TaskPaused, nil, actor)
}

// Resume PAUSADA -> EN_PROCESO
func (s *Service) Resume(ctx context.Context, id int64, actor domain.Actor) (*models.TaskResponse, error) {
	return s.transition(ctx, "Resume", id, domain.TaskInProgress, nil, actor)
}

// Complete EN_PROCESO -> COMPLETADA
// Без явного значения затраченное время считается от первого старта
func (s *Service) Complete(ctx context.Context, id int64, req *models.CompleteTaskRequest, actor domain.Actor) (*models.TaskResponse, error) {
	var spent *int
	if req != nil {
		spent = req.SpentMinutes
	}
	if err := validateMinutes("spent_minutes", spent); err != nil {
		return nil, err
	}
	return s.transition(ctx, "Complete", id, domain.TaskCompleted, spent, actor)
}

// Cancel отменяет незавершённую задачу
func (s *Service) Cancel(ctx context.Context, id int64, actor domain.Actor) (*models.TaskResponse, error) {
	return s.transition(ctx, "Cancel", id, domain.TaskCancelled, nil, actor)
}

// EditFields меняет поля задачи; журнал получает записи по изменившимся
// статусу, приоритету, механику и названию/описанию
func (s *Service) EditFields(ctx context.Context, id int64, req *models.EditTaskRequest, actor domain.Actor) (*models.TaskResponse, error) {
	s.logger.Info("EditFields: task id=%d, actor=%d", id, actor.ID)

	if err := validateEdit(req); err != nil {
		s.logger.Warn("EditFields: validation failed: %v", err)
		return nil, err
	}

	return s.mutate(ctx, "EditFields", id, actor, func(t *domain.Task, _ time.Time) error {
		if req.Title != nil {
			t.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			t.Description = trimmed(req.Description)
		}
		if req.Priority != nil && strings.TrimSpace(*req.Priority) != "" {
			t.Priority, _ = parsePriority(req.Priority)
		}
		if req.MechanicID != nil {
			mechanic := *req.MechanicID
			t.MechanicID = &mechanic
		}
		if req.UnassignMechanic {
			t.MechanicID = nil
		}
		if req.EstimatedMinutes != nil {
			t.EstimatedMinutes = req.EstimatedMinutes
		}
		if req.PartsUsed != nil {
			t.PartsUsed = trimmed(req.PartsUsed)
		}
		if req.Notes != nil {
			t.Notes = trimmed(req.Notes)
		}
		return nil
	})
}

// AddComment добавляет запись COMENTARIO; сама задача не меняется
func (s *Service) AddComment(ctx context.Context, id int64, req *models.CommentRequest, actor domain.Actor) (*models.HistoryEntryResponse, error) {
	s.logger.Info("AddComment: task id=%d, actor=%d", id, actor.ID)

	text, err := validateComment(req.Text)
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	var entry *domain.TaskHistoryEntry

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		task, err := s.load(txCtx, id)
		if err != nil {
			return err
		}

		entry = domain.CommentEntry(task.ID, text, actor.ID, now)
		if err := s.taskRepo.AppendHistory(txCtx, []*domain.TaskHistoryEntry{entry}); err != nil {
			return fmt.Errorf("%w: failed to append comment: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("AddComment", id, err)
		return nil, err
	}

	return models.FromDomainHistoryEntry(entry), nil
}

// ListByBooking задачи ингресо
func (s *Service) ListByBooking(ctx context.Context, bookingID int64) (*models.TaskListResponse, error) {
	var items []*domain.Task

	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := s.loadBooking(txCtx, bookingID); err != nil {
			return err
		}

		var err error
		items, err = s.taskRepo.ListByBooking(txCtx, bookingID)
		if err != nil {
			return fmt.Errorf("%w: failed to list tasks: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("ListByBooking", bookingID, err)
		return nil, err
	}

	return models.FromDomainTaskList(items, s.timeProvider.Now()), nil
}

// History журнал задачи в хронологическом порядке
func (s *Service) History(ctx context.Context, taskID int64) (*models.HistoryResponse, error) {
	var items []*domain.TaskHistoryEntry

	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := s.load(txCtx, taskID); err != nil {
			return err
		}

		var err error
		items, err = s.taskRepo.ListHistory(txCtx, taskID)
		if err != nil {
			return fmt.Errorf("%w: failed to list history: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("History", taskID, err)
		return nil, err
	}

	return models.FromDomainHistory(items), nil
}

func (s *Service) transition(
	ctx context.Context,
	op string,
	id int64,
	to domain.TaskStatus,
	spentOverride *int,
	actor domain.Actor,
) (*models.TaskResponse, error) {
	s.logger.Info("%s: task id=%d -> %s, actor=%d", op, id, to, actor.ID)

	return s.mutate(ctx, op, id, actor, func(t *domain.Task, now time.Time) error {
		return t.TransitionTo(to, now, spentOverride)
	})
}

// mutate общий путь сохранения: снимок, изменение, сравнение, запись задачи и журнала
func (s *Service) mutate(
	ctx context.Context,
	op string,
	id int64,
	actor domain.Actor,
	change func(t *domain.Task, now time.Time) error,
) (*models.TaskResponse, error) {
	now := s.timeProvider.Now()

	var (
		prev, next *domain.Task
		booking    *domain.Booking
	)

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		task, err := s.load(txCtx, id)
		if err != nil {
			return err
		}

		b, err := s.workableBooking(txCtx, task.BookingID, "update_task")
		if err != nil {
			return err
		}

		snapshot := task.Clone()
		if err := change(task, now); err != nil {
			return err
		}

		if err := s.save(txCtx, snapshot, task, actor.ID, now); err != nil {
			return err
		}

		prev, next, booking = snapshot, task, b
		return nil
	})
	if err != nil {
		s.logFailure(op, id, err)
		return nil, err
	}

	if next.MechanicID != nil && (prev.MechanicID == nil || *prev.MechanicID != *next.MechanicID) {
		s.notifyAssigned(next, booking)
	}
	if prev.Status != domain.TaskCompleted && next.Status == domain.TaskCompleted {
		s.notifyCompleted(next, booking)
	}

	return models.FromDomainTask(next, now), nil
}

// save записывает задачу и журнал изменений относительно снимка prev
func (s *Service) save(ctx context.Context, prev, next *domain.Task, actorID int64, now time.Time) error {
	entries := domain.DiffTask(prev, next, actorID, now)

	if err := s.taskRepo.Update(ctx, next); err != nil {
		if errors.Is(err, taskRepo.ErrTaskNotFound) {
			return &domain.NotFoundError{Entity: "task", ID: next.ID}
		}
		return fmt.Errorf("%w: failed to update task: %w", ErrInternal, err)
	}

	if len(entries) == 0 {
		return nil
	}
	if err := s.taskRepo.AppendHistory(ctx, entries); err != nil {
		return fmt.Errorf("%w: failed to append history: %w", ErrInternal, err)
	}
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, taskRepo.ErrTaskNotFound) {
			return nil, &domain.NotFoundError{Entity: "task", ID: id}
		}
		return nil, fmt.Errorf("%w: failed to get task: %w", ErrInternal, err)
	}
	return task, nil
}

func (s *Service) loadBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, &domain.NotFoundError{Entity: "booking", ID: id}
		}
		return nil, fmt.Errorf("%w: failed to get booking: %w", ErrInternal, err)
	}
	return b, nil
}

// workableBooking ингресо, по которому сейчас идут работы (EN_PROCESO или EN_PAUSA)
func (s *Service) workableBooking(ctx context.Context, id int64, action string) (*domain.Booking, error) {
	b, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingInProgress && b.Status != domain.BookingPaused {
		return nil, &domain.IllegalTransitionError{
			Entity: "booking",
			ID:     b.ID,
			From:   string(b.Status),
			Action: action,
			Reason: "tasks can only change while the vehicle is being worked on",
		}
	}
	return b, nil
}

func (s *Service) notifyAssigned(t *domain.Task, b *domain.Booking) {
	s.dispatch(*t.MechanicID, notificationservice.TypeTaskAssigned, t, b,
		b.VehiclePlate+" - Tarea Asignada",
		fmt.Sprintf("Se le asignó la tarea \"%s\" del vehículo %s", t.Title, b.VehiclePlate))
}

func (s *Service) notifyCompleted(t *domain.Task, b *domain.Booking) {
	if b.SupervisorID == nil {
		return
	}
	s.dispatch(*b.SupervisorID, notificationservice.TypeTaskCompleted, t, b,
		b.VehiclePlate+" - Tarea Completada",
		fmt.Sprintf("La tarea \"%s\" del vehículo %s fue completada", t.Title, b.VehiclePlate))
}

func (s *Service) dispatch(userID int64, kind notificationservice.Type, t *domain.Task, b *domain.Booking, title, message string) {
	queued := s.notifier.Dispatch(notificationservice.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
		Metadata: map[string]string{
			"booking_id": strconv.FormatInt(b.ID, 10),
			"task_id":    strconv.FormatInt(t.ID, 10),
			"plate":      b.VehiclePlate,
		},
	})
	if !queued {
		s.logger.Warn("dispatch: %s for task id=%d was dropped", kind, t.ID)
	}
}

func (s *Service) logFailure(op string, id int64, err error) {
	if errors.Is(err, ErrInternal) {
		s.logger.Error("%s: id=%d: %v", op, id, err)
		return
	}
	s.logger.Warn("%s: id=%d rejected: %v", op, id, err)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
