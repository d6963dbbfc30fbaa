package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	"github.com/m04kA/SMC-WorkshopService/internal/integrations/notificationservice"
	"github.com/m04kA/SMC-WorkshopService/internal/service/tasks/models"
	"github.com/m04kA/SMC-WorkshopService/internal/testutil/memstore"
	"github.com/m04kA/SMC-WorkshopService/pkg/ptr"
)

var mechanic = domain.Actor{ID: 21, Role: domain.RoleMechanic}

type env struct {
	store    *memstore.Store
	clock    *memstore.Clock
	notifier *memstore.Notifier
	svc      *Service
	booking  *domain.Booking
}

func newEnv(t *testing.T, status domain.BookingStatus) *env {
	t.Helper()

	clock := memstore.NewClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	store := memstore.New()
	store.Clock = clock.Now
	notifier := &memstore.Notifier{}

	booking, err := store.Bookings().Create(context.Background(), &domain.Booking{
		VehicleID:       100,
		VehiclePlate:    "ABC123",
		ScheduledAt:     clock.Now(),
		DurationMinutes: 60,
		Status:          status,
		SupervisorID:    ptr.Ptr[int64](7),
	})
	require.NoError(t, err)

	svc := NewService(store.Tasks(), store.Bookings(), notifier, store.TxManager(), memstore.NopLogger{}).
		WithTimeProvider(clock)

	return &env{store: store, clock: clock, notifier: notifier, svc: svc, booking: booking}
}

func (e *env) create(t *testing.T, req *models.CreateTaskRequest) *models.TaskResponse {
	t.Helper()
	task, err := e.svc.Create(context.Background(), e.booking.ID, req, mechanic)
	require.NoError(t, err)
	return task
}

func (e *env) history(t *testing.T, taskID int64) []models.HistoryEntryResponse {
	t.Helper()
	h, err := e.svc.History(context.Background(), taskID)
	require.NoError(t, err)
	return h.Entries
}

func TestCreate_WithMechanic(t *testing.T) {
	e := newEnv(t, domain.BookingInProgress)

	task := e.create(t, &models.CreateTaskRequest{Title: " Cambio de pastillas ", MechanicID: ptr.Ptr[int64](33)})
	assert.Equal(t, string(domain.TaskPending), task.Status)
	assert.Equal(t, string(domain.PriorityMedium), task.Priority)
	assert.Equal(t, "Cambio de pastillas", task.Title)

	entries := e.history(t, task.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, string(domain.ChangeCreation), entries[0].Kind)
	assert.Equal(t, "Tarea creada: Cambio de pastillas", entries[0].Description)
	assert.Equal(t, string(domain.ChangeAssignment), entries[1].Kind)
	assert.Equal(t, "Asignada a mecánico 33", entries[1].Description)
	assert.Equal(t, mechanic.ID, entries[1].ActorID)

	sent := e.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notificationservice.TypeTaskAssigned, sent[0].Type)
	assert.Equal(t, int64(33), sent[0].UserID)
}

func TestCreate_WithoutMechanic(t *testing.T) {
	e := newEnv(t, domain.BookingPaused)

	task := e.create(t, &models.CreateTaskRequest{Title: "Diagnóstico", Priority: ptr.Ptr("alta")})
	assert.Equal(t, string(domain.PriorityHigh), task.Priority)
	assert.Len(t, e.history(t, task.ID), 1)
	assert.Empty(t, e.notifier.Sent())
}

func TestCreate_Rejections(t *testing.T) {
	e := newEnv(t, domain.BookingScheduled)
	ctx := context.Background()

	_, err := e.svc.Create(ctx, e.booking.ID, &models.CreateTaskRequest{Title: "x"}, mechanic)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	_, err = e.svc.Create(ctx, 999, &models.CreateTaskRequest{Title: "x"}, mechanic)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.svc.Create(ctx, e.booking.ID, &models.CreateTaskRequest{Title: " "}, mechanic)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.svc.Create(ctx, e.booking.ID, &models.CreateTaskRequest{Title: "x", Priority: ptr.Ptr("CRITICA")}, mechanic)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTransitions_StatusHistoryAndSpentTime(t *testing.T) {
	e := newEnv(t, domain.BookingInProgress)
	ctx := context.Background()
	task := e.create(t, &models.CreateTaskRequest{Title: "Frenos"})

	started, err := e.svc.Start(ctx, task.ID, mechanic)
	require.NoError(t, err)
	assert.Equal(t, string(domain.TaskInProgress), started.Status)
	require.NotNil(t, started.StartedAt)

	e.clock.Advance(20 * time.Minute)
	_, err = e.svc.Pause(ctx, task.ID, mechanic)
	require.NoError(t, err)
	e.clock.Advance(10 * time.Minute)
	resumed, err := e.svc.Resume(ctx, task.ID, mechanic)
	require.NoError(t, err)
	assert.True(t, resumed.StartedAt.Equal(*started.StartedAt))

	e.clock.Advance(15 * time.Minute)
	done, err := e.svc.Complete(ctx, task.ID, &models.CompleteTaskRequest{}, mechanic)
	require.NoError(t, err)
	assert.Equal(t, string(domain.TaskCompleted), done.Status)
	assert.Equal(t, 45, *done.SpentMinutes)
	assert.NotNil(t, done.CompletedAt)

	entries := e.history(t, task.ID)
	require.Len(t, entries, 5)
	expected := [][2]string{
		{"PENDIENTE", "EN_PROCESO"},
		{"EN_PROCESO", "PAUSADA"},
		{"PAUSADA", "EN_PROCESO"},
		{"EN_PROCESO", "COMPLETADA"},
	}
	for i, pair := range expected {
		entry := entries[i+1]
		assert.Equal(t, string(domain.ChangeStatus), entry.Kind)
		assert.Equal(t, pair[0], *entry.OldValue)
		assert.Equal(t, pair[1], *entry.NewValue)
	}
	assert.Equal(t, "Estado cambiado de EN_PROCESO a COMPLETADA", entries[4].Description)

	sent := e.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notificationservice.TypeTaskCompleted, sent[0].Type)
	assert.Equal(t, int64(7), sent[0].UserID)
}

func TestComplete_ExplicitSpentMinutes(t *testing.T) {
	e := newEnv(t, domain.BookingInProgress)
	ctx := context.Background()
	task := e.create(t, &models.CreateTaskRequest{Title: "Aceite"})

	_, err := e.svc.Start(ctx, task.ID, mechanic)
	require.NoError(t, err)

	done, err := e.svc.Complete(ctx, task.ID, &models.CompleteTaskRequest{SpentMinutes: ptr.Ptr(90)}, mechanic)
	require.NoError(t, err)
	assert.Equal(t, 90, *done.SpentMinutes)

	_, err = e.svc.Complete(ctx, task.ID, &models.CompleteTaskRequest{SpentMinutes: ptr.Ptr(-1)}, mechanic)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestIllegalTransition_LeavesTaskAndHistoryUnchanged(t *testing.T) {
	e := newEnv(t, domain.BookingInProgress)
	ctx := context.Background()
	task := e.create(t, &models.CreateTaskRequest{Title: "Luces"})

	_, err := e.svc.Complete(ctx, task.ID, nil, mechanic)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	_, err = e.svc.Pause(ctx, task.ID, mechanic)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	stored, err := e.store.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskPending, stored.Status)
	assert.Len(t, e.history(t, task.ID), 1)
}

func TestCancel_FromAnyOpenState(t *testing.T) {
	e := newEnv(t, domain.BookingInProgress)
	ctx := context.Background()
	task := e.create(t, &models.CreateTaskRequest{Title: "Motor"})

	cancelled, err := e.svc.Cancel(ctx, task.ID, mechanic)
	require.NoError(t, err)
	assert.Equal(t, string(domain.TaskCancelled), cancelled.Status)

	_, err = e.svc.Start(ctx, task.ID, mechanic)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestEditFields_HistoryOrder(t *testing.T) {
	e := newEnv(t, domain.BookingInProgress)
	ctx := context.Background()
	task := e.create(t, &models.CreateTaskRequest{Title: "Frenos"})

	edited, err := e.svc.EditFields(ctx, task.ID, &models.EditTaskRequest{
		Title:      ptr.Ptr("Frenos delanteros"),
		Priority:   ptr.Ptr("URGENTE"),
		MechanicID: ptr.Ptr[int64](33),
		Notes:      ptr.Ptr("pedir pastillas"),
	}, mechanic)
	require.NoError(t, err)
	assert.Equal(t, "Frenos delanteros", edited.Title)
	assert.Equal(t, "pedir pastillas", *edited.Notes)

	entries := e.history(t, task.ID)
	require.Len(t, entries, 4)
	assert.Equal(t, string(domain.ChangePriority), entries[1].Kind)
	assert.Equal(t, "Prioridad cambiada de MEDIA a URGENTE", entries[1].Description)
	assert.Equal(t, string(domain.ChangeAssignment), entries[2].Kind)
	assert.Equal(t, string(domain.ChangeModification), entries[3].Kind)
	assert.Equal(t, "Título o descripción modificados", entries[3].Description)

	// только заметки: журнал не растёт
	_, err = e.svc.EditFields(ctx, task.ID, &models.EditTaskRequest{Notes: ptr.Ptr("otra nota")}, mechanic)
	require.NoError(t, err)
	assert.Len(t, e.history(t, task.ID), 4)

	unassigned, err := e.svc.EditFields(ctx, task.ID, &models.EditTaskRequest{UnassignMechanic: true}, mechanic)
	require.NoError(t, err)
	assert.Nil(t, unassigned.MechanicID)
	assert.Len(t, e.history(t, task.ID), 5)

	_, err = e.svc.EditFields(ctx, task.ID, &models.EditTaskRequest{MechanicID: ptr.Ptr[int64](1), UnassignMechanic: true}, mechanic)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEditFields_BlankPriorityKeepsCurrent(t *testing.T) {
	e := newEnv(t, domain.BookingInProgress)
	ctx := context.Background()
	task := e.create(t, &models.CreateTaskRequest{Title: "Frenos", Priority: ptr.Ptr("BAJA")})

	for _, blank := range []string{"", "   "} {
		edited, err := e.svc.EditFields(ctx, task.ID, &models.EditTaskRequest{Priority: ptr.Ptr(blank)}, mechanic)
		require.NoError(t, err)
		assert.Equal(t, string(domain.PriorityLow), edited.Priority)
	}

	stored, err := e.store.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityLow, stored.Priority)
	for _, entry := range e.history(t, task.ID) {
		assert.NotEqual(t, string(domain.ChangePriority), entry.Kind)
	}
}

func TestTaskResponse_ElapsedAndPercentTime(t *testing.T) {
	e := newEnv(t, domain.BookingInProgress)
	ctx := context.Background()
	task := e.create(t, &models.CreateTaskRequest{Title: "Frenos", EstimatedMinutes: ptr.Ptr(60)})
	assert.Zero(t, task.ElapsedMinutes)
	assert.Zero(t, task.PercentTime)

	_, err := e.svc.Start(ctx, task.ID, mechanic)
	require.NoError(t, err)

	// незавершённая задача считается до текущего момента
	e.clock.Advance(30*time.Minute + 40*time.Second)
	list, err := e.svc.ListByBooking(ctx, e.booking.ID)
	require.NoError(t, err)
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, 30, list.Tasks[0].ElapsedMinutes)
	assert.Equal(t, 50, list.Tasks[0].PercentTime)

	e.clock.Advance(60 * time.Minute)
	done, err := e.svc.Complete(ctx, task.ID, &models.CompleteTaskRequest{}, mechanic)
	require.NoError(t, err)
	assert.Equal(t, 90, done.ElapsedMinutes)
	assert.Equal(t, 150, done.PercentTime)

	// после завершения время больше не растёт
	e.clock.Advance(2 * time.Hour)
	list, err = e.svc.ListByBooking(ctx, e.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, list.Tasks[0].ElapsedMinutes)

	noEstimate := e.create(t, &models.CreateTaskRequest{Title: "Luces"})
	_, err = e.svc.Start(ctx, noEstimate.ID, mechanic)
	require.NoError(t, err)
	e.clock.Advance(10 * time.Minute)
	list, err = e.svc.ListByBooking(ctx, e.booking.ID)
	require.NoError(t, err)
	require.Len(t, list.Tasks, 2)
	assert.Equal(t, 10, list.Tasks[1].ElapsedMinutes)
	assert.Zero(t, list.Tasks[1].PercentTime)
}

func TestAddComment(t *testing.T) {
	e := newEnv(t, domain.BookingInProgress)
	ctx := context.Background()
	task := e.create(t, &models.CreateTaskRequest{Title: "Frenos"})

	entry, err := e.svc.AddComment(ctx, task.ID, &models.CommentRequest{Text: " revisar disco "}, mechanic)
	require.NoError(t, err)
	assert.Equal(t, string(domain.ChangeComment), entry.Kind)
	assert.Equal(t, "revisar disco", entry.Description)
	assert.NotZero(t, entry.ID)

	_, err = e.svc.AddComment(ctx, task.ID, &models.CommentRequest{Text: "  "}, mechanic)
	assert.ErrorIs(t, err, domain.ErrValidation)

	stored, err := e.store.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskPending, stored.Status)
}

func TestChangesBlockedOutsideWork(t *testing.T) {
	e := newEnv(t, domain.BookingInProgress)
	ctx := context.Background()
	task := e.create(t, &models.CreateTaskRequest{Title: "Frenos"})

	b, err := e.store.Bookings().GetByID(ctx, e.booking.ID)
	require.NoError(t, err)
	b.Status = domain.BookingFinished
	require.NoError(t, e.store.Bookings().Update(ctx, b))

	_, err = e.svc.Start(ctx, task.ID, mechanic)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestReadsNotFound(t *testing.T) {
	e := newEnv(t, domain.BookingInProgress)

	_, err := e.svc.ListByBooking(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.svc.History(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := e.svc.ListByBooking(context.Background(), e.booking.ID)
	require.NoError(t, err)
	assert.Empty(t, list.Tasks)
}
