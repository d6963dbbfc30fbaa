package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WorkshopService/internal/api/handlers"
	approveRequestHandler "github.com/m04kA/SMC-WorkshopService/internal/api/handlers/approve_request"
	bookingsHandler "github.com/m04kA/SMC-WorkshopService/internal/api/handlers/bookings"
	gateHandler "github.com/m04kA/SMC-WorkshopService/internal/api/handlers/gate"
	getAvailableSlotsHandler "github.com/m04kA/SMC-WorkshopService/internal/api/handlers/get_available_slots"
	requestsHandler "github.com/m04kA/SMC-WorkshopService/internal/api/handlers/requests"
	resourcesHandler "github.com/m04kA/SMC-WorkshopService/internal/api/handlers/resources"
	scheduleBookingHandler "github.com/m04kA/SMC-WorkshopService/internal/api/handlers/schedule_booking"
	submitRequestHandler "github.com/m04kA/SMC-WorkshopService/internal/api/handlers/submit_request"
	tasksHandler "github.com/m04kA/SMC-WorkshopService/internal/api/handlers/tasks"
	"github.com/m04kA/SMC-WorkshopService/internal/api/middleware"
	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	"github.com/m04kA/SMC-WorkshopService/internal/integrations/notificationservice"
	gateService "github.com/m04kA/SMC-WorkshopService/internal/service/gate"
	gateModels "github.com/m04kA/SMC-WorkshopService/internal/service/gate/models"
	intakeService "github.com/m04kA/SMC-WorkshopService/internal/service/intake"
	intakeModels "github.com/m04kA/SMC-WorkshopService/internal/service/intake/models"
	requestsService "github.com/m04kA/SMC-WorkshopService/internal/service/requests"
	requestModels "github.com/m04kA/SMC-WorkshopService/internal/service/requests/models"
	resourcesService "github.com/m04kA/SMC-WorkshopService/internal/service/resources"
	tasksService "github.com/m04kA/SMC-WorkshopService/internal/service/tasks"
	taskModels "github.com/m04kA/SMC-WorkshopService/internal/service/tasks/models"
	"github.com/m04kA/SMC-WorkshopService/internal/testutil/memstore"
	"github.com/m04kA/SMC-WorkshopService/internal/usecase/approve_request"
	"github.com/m04kA/SMC-WorkshopService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-WorkshopService/internal/usecase/schedule_booking"
	"github.com/m04kA/SMC-WorkshopService/internal/usecase/submit_request"
)

var clt = time.FixedZone("CLT", -3*3600)

var (
	admin      = domain.Actor{ID: 1, Role: domain.RoleAdmin}
	supervisor = domain.Actor{ID: 7, Role: domain.RoleSupervisor}
	mechanic   = domain.Actor{ID: 20, Role: domain.RoleMechanic}
	guard      = domain.Actor{ID: 30, Role: domain.RoleGuard}
	driverA    = domain.Actor{ID: 55, Role: domain.RoleDriver}
	driverB    = domain.Actor{ID: 56, Role: domain.RoleDriver}
)

type harness struct {
	t        *testing.T
	router   http.Handler
	store    *memstore.Store
	clock    *memstore.Clock
	notifier *memstore.Notifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	clock := memstore.NewClock(time.Date(2025, 11, 3, 7, 30, 0, 0, clt))
	store := memstore.New()
	store.Clock = clock.Now
	store.SeedLifts()
	notifier := &memstore.Notifier{}
	fleet := memstore.NewFleet(
		&domain.Vehicle{ID: 100, Plate: "ABC123", Active: true},
		&domain.Vehicle{ID: 101, Plate: "DEF456", Active: true},
		&domain.Vehicle{ID: 102, Plate: "XYZ789", Active: true},
	)
	tx := store.TxManager()
	log := memstore.NopLogger{}

	schedule := domain.DefaultWorkshopSchedule()
	schedule.Location = clt

	slotsUC := get_available_slots.NewUseCase(store.Resources(), store.Bookings(), store.Requests(), schedule, log).
		WithTimeProvider(clock)
	scheduleUC := schedule_booking.NewUseCase(store.Bookings(), store.Resources(), store.Requests(), fleet, tx, schedule, log).
		WithTimeProvider(clock)
	submitUC := submit_request.NewUseCase(store.Requests(), store.Bookings(), fleet, tx, log)
	approveUC := approve_request.NewUseCase(store.Requests(), scheduleUC, notifier, tx, schedule, log).
		WithTimeProvider(clock)

	intakeSvc := intakeService.NewService(store.Bookings(), store.Pauses(), store.Tasks(), store.Requests(), notifier, tx, schedule, log).
		WithTimeProvider(clock)
	tasksSvc := tasksService.NewService(store.Tasks(), store.Bookings(), notifier, tx, log).WithTimeProvider(clock)
	requestsSvc := requestsService.NewService(store.Requests(), tx, schedule.OverdueRequestDays, log).WithTimeProvider(clock)
	gateSvc := gateService.NewService(store.Gate(), store.Bookings(), fleet, tx, schedule, log).WithTimeProvider(clock)
	resourcesSvc := resourcesService.NewService(store.Resources(), log)

	router := NewRouter(Handlers{
		Slots:           getAvailableSlotsHandler.NewHandler(slotsUC, log),
		ScheduleBooking: scheduleBookingHandler.NewHandler(scheduleUC, log),
		SubmitRequest:   submitRequestHandler.NewHandler(submitUC, log),
		ApproveRequest:  approveRequestHandler.NewHandler(approveUC, log),
		Resources:       resourcesHandler.NewHandler(resourcesSvc, log),
		Bookings:        bookingsHandler.NewHandler(intakeSvc, log),
		Requests:        requestsHandler.NewHandler(requestsSvc, log),
		Tasks:           tasksHandler.NewHandler(tasksSvc, log),
		Gate:            gateHandler.NewHandler(gateSvc, log),
	}, Options{})

	return &harness{t: t, router: router, store: store, clock: clock, notifier: notifier}
}

func (h *harness) do(method, path string, actor domain.Actor, body interface{}) *httptest.ResponseRecorder {
	h.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderUserID, strconv.FormatInt(actor.ID, 10))
	req.Header.Set(middleware.HeaderUserRole, string(actor.Role))

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (h *harness) expectStatus(rec *httptest.ResponseRecorder, status int) {
	h.t.Helper()
	require.Equal(h.t, status, rec.Code, rec.Body.String())
}

func (h *harness) submit(actor domain.Actor, plate string) requestModels.EntryRequestResponse {
	rec := h.do(http.MethodPost, "/api/v1/requests", actor, map[string]string{"plate": plate, "reason": "ruido en frenos"})
	h.expectStatus(rec, http.StatusCreated)
	return decode[requestModels.EntryRequestResponse](h.t, rec)
}

func (h *harness) checkInReady(bookingID int64, plate string) {
	rec := h.do(http.MethodPost, "/api/v1/gate/entries", guard, map[string]string{"plate": plate})
	h.expectStatus(rec, http.StatusCreated)
	entry := decode[gateModels.GateEntryResponse](h.t, rec)
	require.NotNil(h.t, entry.BookingID)
	require.Equal(h.t, bookingID, *entry.BookingID)

	rec = h.do(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/check-in", bookingID), supervisor, nil)
	h.expectStatus(rec, http.StatusOK)
	require.Equal(h.t, string(domain.BookingInProgress), decode[intakeModels.BookingResponse](h.t, rec).Status)
}

func (h *harness) createTask(bookingID int64, title string) taskModels.TaskResponse {
	rec := h.do(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/tasks", bookingID), supervisor,
		map[string]interface{}{"title": title, "mechanicId": mechanic.ID})
	h.expectStatus(rec, http.StatusCreated)
	return decode[taskModels.TaskResponse](h.t, rec)
}

func (h *harness) finishTask(taskID int64) {
	h.expectStatus(h.do(http.MethodPost, fmt.Sprintf("/api/v1/tasks/%d/start", taskID), mechanic, nil), http.StatusOK)
	h.clock.Advance(30 * time.Minute)
	rec := h.do(http.MethodPost, fmt.Sprintf("/api/v1/tasks/%d/complete", taskID), mechanic, nil)
	h.expectStatus(rec, http.StatusOK)
	require.Equal(h.t, string(domain.TaskCompleted), decode[taskModels.TaskResponse](h.t, rec).Status)
}

func TestIntakeLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t)

	// A: заявка водителя
	first := h.submit(driverA, "abc123")
	assert.Equal(t, "ABC123", first.Plate)
	assert.Equal(t, string(domain.RequestPending), first.Status)

	rec := h.do(http.MethodGet, "/api/v1/requests/pending", supervisor, nil)
	h.expectStatus(rec, http.StatusOK)
	assert.Len(t, decode[requestModels.EntryRequestListResponse](t, rec).Requests, 1)

	// B: одобрение на свободный слот
	token := "2025-11-03T09:00|1"
	rec = h.do(http.MethodPost, fmt.Sprintf("/api/v1/requests/%d/approve", first.ID), supervisor, map[string]string{"slotToken": token})
	h.expectStatus(rec, http.StatusOK)
	approved := decode[approveRequestHandler.ApproveResponse](t, rec)
	assert.Equal(t, string(domain.RequestApproved), approved.Request.Status)
	assert.Equal(t, string(domain.BookingScheduled), approved.Booking.Status)
	require.NotNil(t, approved.Booking.ResourceID)
	assert.Equal(t, int64(1), *approved.Booking.ResourceID)
	assert.True(t, approved.Booking.ScheduledAt.Equal(time.Date(2025, 11, 3, 9, 0, 0, 0, clt)))
	bookingID := approved.Booking.ID

	rec = h.do(http.MethodGet, "/api/v1/slots?days=1&resourceId=1", mechanic, nil)
	h.expectStatus(rec, http.StatusOK)
	grid := decode[getAvailableSlotsHandler.SlotsResponse](t, rec)
	require.Len(t, grid.Days, 1)
	occupied := map[string]bool{}
	for _, slot := range grid.Days[0].Resources[0].Slots {
		occupied[slot.Token] = slot.Occupied
	}
	assert.True(t, occupied[token])
	assert.False(t, occupied["2025-11-03T10:00|1"])

	// C: второй автомобиль на тот же слот
	second := h.submit(driverB, "DEF456")
	rec = h.do(http.MethodPost, fmt.Sprintf("/api/v1/requests/%d/approve", second.ID), supervisor, map[string]string{"slotToken": token})
	h.expectStatus(rec, http.StatusConflict)
	conflict := decode[handlers.ErrorResponse](t, rec)
	assert.Equal(t, handlers.CodeSlotConflict, conflict.Code)
	assert.True(t, conflict.Retryable)
	assert.EqualValues(t, 1, conflict.Details["resourceId"])

	rec = h.do(http.MethodGet, fmt.Sprintf("/api/v1/requests/%d", second.ID), driverB, nil)
	h.expectStatus(rec, http.StatusOK)
	assert.Equal(t, string(domain.RequestPending), decode[requestModels.EntryRequestResponse](t, rec).Status)

	// D: приём без отметки КПП
	rec = h.do(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/check-in", bookingID), supervisor, nil)
	h.expectStatus(rec, http.StatusConflict)
	assert.Equal(t, handlers.CodeIllegalTransition, decode[handlers.ErrorResponse](t, rec).Code)

	// E: одна задача, выполнена, завершение
	h.clock.Advance(90 * time.Minute)
	h.checkInReady(bookingID, "ABC123")
	task := h.createTask(bookingID, "Cambio de pastillas")
	h.finishTask(task.ID)
	h.clock.Advance(15 * time.Minute)

	rec = h.do(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/terminate", bookingID), supervisor, nil)
	h.expectStatus(rec, http.StatusOK)
	done := decode[intakeModels.BookingResponse](t, rec)
	assert.Equal(t, string(domain.BookingFinished), done.Status)
	require.NotNil(t, done.Metrics.TotalDurationMinutes)
	require.NotNil(t, done.Metrics.EffectiveMinutes)
	assert.Equal(t, 45, *done.Metrics.TotalDurationMinutes)
	assert.Equal(t, *done.Metrics.TotalDurationMinutes, *done.Metrics.EffectiveMinutes)

	rec = h.do(http.MethodGet, fmt.Sprintf("/api/v1/requests/%d", first.ID), driverA, nil)
	h.expectStatus(rec, http.StatusOK)
	assert.Equal(t, string(domain.RequestCompleted), decode[requestModels.EntryRequestResponse](t, rec).Status)

	var ready []notificationservice.Notification
	for _, n := range h.notifier.Sent() {
		if n.Type == notificationservice.TypeReadyForPickup {
			ready = append(ready, n)
		}
	}
	require.Len(t, ready, 1)
	assert.Equal(t, driverA.ID, ready[0].UserID)
	assert.Equal(t, "ABC123 - Listo para Retiro", ready[0].Title)

	rec = h.do(http.MethodGet, fmt.Sprintf("/api/v1/tasks/%d/history", task.ID), mechanic, nil)
	h.expectStatus(rec, http.StatusOK)
	assert.NotEmpty(t, decode[taskModels.HistoryResponse](t, rec).Entries)

	rec = h.do(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/withdraw", bookingID), guard, nil)
	h.expectStatus(rec, http.StatusOK)
	assert.Equal(t, string(domain.BookingWithdrawn), decode[intakeModels.BookingResponse](t, rec).Status)
}

func TestTerminateBlockedByPendingTask(t *testing.T) {
	h := newHarness(t)

	// F: две задачи, выполнена одна
	rec := h.do(http.MethodPost, "/api/v1/bookings", supervisor, map[string]interface{}{
		"plate":     "XYZ789",
		"slotToken": "2025-11-03T11:00|2",
		"reason":    "mantención preventiva",
	})
	h.expectStatus(rec, http.StatusCreated)
	scheduled := decode[scheduleBookingHandler.ScheduleBookingResponse](t, rec)
	assert.Equal(t, "2025-11-03T11:00|2", scheduled.Token)
	bookingID := scheduled.Booking.ID

	h.checkInReady(bookingID, "XYZ789")
	done := h.createTask(bookingID, "Revisión de luces")
	h.createTask(bookingID, "Cambio de aceite")
	h.finishTask(done.ID)

	rec = h.do(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/terminate", bookingID), supervisor, nil)
	h.expectStatus(rec, http.StatusConflict)
	body := decode[handlers.ErrorResponse](t, rec)
	assert.Equal(t, handlers.CodePendingTasks, body.Code)
	assert.EqualValues(t, 1, body.Details["count"])

	rec = h.do(http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d", bookingID), mechanic, nil)
	h.expectStatus(rec, http.StatusOK)
	assert.Equal(t, string(domain.BookingInProgress), decode[intakeModels.BookingResponse](t, rec).Status)
}

func TestPauseResumeOverHTTP(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/api/v1/bookings", admin, map[string]interface{}{
		"plate":     "ABC123",
		"slotToken": "2025-11-03T08:00|3",
		"reason":    "neumáticos",
	})
	h.expectStatus(rec, http.StatusCreated)
	bookingID := decode[scheduleBookingHandler.ScheduleBookingResponse](t, rec).Booking.ID
	h.checkInReady(bookingID, "ABC123")

	rec = h.do(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/pause", bookingID), mechanic, map[string]string{"reason": "falta repuesto"})
	h.expectStatus(rec, http.StatusOK)
	assert.Equal(t, string(domain.BookingPaused), decode[intakeModels.BookingResponse](t, rec).Status)

	h.clock.Advance(20 * time.Minute)
	rec = h.do(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/resume", bookingID), mechanic, nil)
	h.expectStatus(rec, http.StatusOK)
	resumed := decode[intakeModels.BookingResponse](t, rec)
	assert.Equal(t, string(domain.BookingInProgress), resumed.Status)
	require.Len(t, resumed.Pauses, 1)
	require.NotNil(t, resumed.Pauses[0].DurationMinutes)
	assert.Equal(t, 20, *resumed.Pauses[0].DurationMinutes)
	assert.Equal(t, 20, resumed.Metrics.PauseMinutes)
}

func TestRoleGating(t *testing.T) {
	h := newHarness(t)
	pending := h.submit(driverA, "ABC123")

	tests := []struct {
		name   string
		method string
		path   string
		actor  domain.Actor
		body   interface{}
		want   int
	}{
		{"driver cannot approve", http.MethodPost, fmt.Sprintf("/api/v1/requests/%d/approve", pending.ID), driverA,
			map[string]string{"slotToken": "2025-11-03T09:00|1"}, http.StatusForbidden},
		{"mechanic cannot list pending", http.MethodGet, "/api/v1/requests/pending", mechanic, nil, http.StatusForbidden},
		{"guard cannot schedule", http.MethodPost, "/api/v1/bookings", guard,
			map[string]string{"plate": "DEF456", "reason": "x"}, http.StatusForbidden},
		{"supervisor cannot toggle lifts", http.MethodPatch, "/api/v1/resources/1/active", supervisor,
			map[string]bool{"active": false}, http.StatusForbidden},
		{"mechanic cannot record gate entry", http.MethodPost, "/api/v1/gate/entries", mechanic,
			map[string]string{"plate": "ABC123"}, http.StatusForbidden},
		{"other driver cannot cancel", http.MethodPost, fmt.Sprintf("/api/v1/requests/%d/cancel", pending.ID), driverB, nil, http.StatusForbidden},
		{"any role reads resources", http.MethodGet, "/api/v1/resources", guard, nil, http.StatusOK},
		{"admin toggles lift", http.MethodPatch, "/api/v1/resources/4/active", admin,
			map[string]bool{"active": false}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(tt.method, tt.path, tt.actor, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	rec := h.do(http.MethodGet, "/api/v1/resources", guard, nil)
	h.expectStatus(rec, http.StatusOK)
	assert.Len(t, decode[struct {
		Resources []json.RawMessage `json:"resources"`
	}](t, rec).Resources, 3)

	rec = h.do(http.MethodPost, fmt.Sprintf("/api/v1/requests/%d/cancel", pending.ID), driverA, nil)
	h.expectStatus(rec, http.StatusOK)
	assert.Equal(t, string(domain.RequestCancelled), decode[requestModels.EntryRequestResponse](t, rec).Status)
}

func TestUnauthenticatedAndMalformed(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resources", nil)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderRequestID))

	rec = h.do(http.MethodPost, "/api/v1/requests", driverA, map[string]string{"plate": "ZZZ999", "reason": "x"})
	h.expectStatus(rec, http.StatusNotFound)
	assert.Equal(t, handlers.CodeVehicleUnknown, decode[handlers.ErrorResponse](t, rec).Code)

	rec = h.do(http.MethodPost, "/api/v1/requests", driverA, map[string]string{"plate": "ABC123"})
	h.expectStatus(rec, http.StatusBadRequest)
	assert.Equal(t, handlers.CodeValidation, decode[handlers.ErrorResponse](t, rec).Code)

	rec = h.do(http.MethodPost, "/api/v1/requests", driverA, map[string]string{"plate": "ABC123", "reason": "x", "colour": "red"})
	h.expectStatus(rec, http.StatusBadRequest)

	rec = h.do(http.MethodGet, "/api/v1/bookings/999", supervisor, nil)
	h.expectStatus(rec, http.StatusNotFound)
	assert.Equal(t, handlers.CodeNotFound, decode[handlers.ErrorResponse](t, rec).Code)

	rec = h.do(http.MethodGet, "/api/v1/slots?days=99", supervisor, nil)
	h.expectStatus(rec, http.StatusBadRequest)

	h.submit(driverA, "ABC123")
	rec = h.do(http.MethodPost, "/api/v1/requests", driverA, map[string]string{"plate": "ABC123", "reason": "otra vez"})
	h.expectStatus(rec, http.StatusConflict)
	assert.Equal(t, handlers.CodeDuplicateRequest, decode[handlers.ErrorResponse](t, rec).Code)
}
