// Package api маршруты HTTP API мастерской
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

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
	"github.com/m04kA/SMC-WorkshopService/pkg/metrics"
)

// Handlers все обработчики API
type Handlers struct {
	Slots           *getAvailableSlotsHandler.Handler
	ScheduleBooking *scheduleBookingHandler.Handler
	SubmitRequest   *submitRequestHandler.Handler
	ApproveRequest  *approveRequestHandler.Handler
	Resources       *resourcesHandler.Handler
	Bookings        *bookingsHandler.Handler
	Requests        *requestsHandler.Handler
	Tasks           *tasksHandler.Handler
	Gate            *gateHandler.Handler
}

// Options необязательные части роутера
type Options struct {
	Metrics     *metrics.Metrics // nil отключает метрики
	MetricsPath string
	RateLimiter *middleware.IPRateLimiter // nil отключает ограничение
}

// Группы ролей
var (
	rolesManagers  = []domain.Role{domain.RoleAdmin, domain.RoleSupervisor}
	rolesWorkshop  = []domain.Role{domain.RoleAdmin, domain.RoleSupervisor, domain.RoleMechanic}
	rolesWithdraw  = []domain.Role{domain.RoleAdmin, domain.RoleSupervisor, domain.RoleGuard}
	rolesSubmitter = []domain.Role{domain.RoleDriver, domain.RoleAdmin}
	rolesGate      = []domain.Role{domain.RoleGuard, domain.RoleAdmin}
)

// NewRouter собирает роутер со всеми маршрутами /api/v1
func NewRouter(h Handlers, opts Options) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	if opts.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(opts.Metrics))
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	if opts.RateLimiter != nil {
		api.Use(middleware.RateLimit(opts.RateLimiter))
	}
	api.Use(middleware.Auth)

	// ============================================================
	// Любой аутентифицированный пользователь
	// ============================================================

	api.HandleFunc("/resources", h.Resources.List).Methods(http.MethodGet)
	api.HandleFunc("/slots", h.Slots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId:[0-9]+}", h.Bookings.Get).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId:[0-9]+}/tasks", h.Tasks.ListByBooking).Methods(http.MethodGet)
	api.HandleFunc("/requests/{requestId:[0-9]+}", h.Requests.Get).Methods(http.MethodGet)
	api.HandleFunc("/gate/entries/{entryId:[0-9]+}", h.Gate.Get).Methods(http.MethodGet)

	// ============================================================
	// Маршруты с ограничением по ролям
	// ============================================================

	// --- Реестр подъёмников ---
	admin := gated(api, domain.RoleAdmin)
	admin.HandleFunc("/resources/{resourceId:[0-9]+}/active", h.Resources.SetActive).Methods(http.MethodPatch)

	// --- Планирование и ответы на заявки ---
	managers := gated(api, rolesManagers...)
	managers.HandleFunc("/bookings", h.ScheduleBooking.Handle).Methods(http.MethodPost)
	managers.HandleFunc("/bookings/{bookingId:[0-9]+}/cancel", h.Bookings.Cancel).Methods(http.MethodPost)
	managers.HandleFunc("/requests/pending", h.Requests.ListPending).Methods(http.MethodGet)
	managers.HandleFunc("/requests/{requestId:[0-9]+}/approve", h.ApproveRequest.Handle).Methods(http.MethodPost)
	managers.HandleFunc("/requests/{requestId:[0-9]+}/reject", h.Requests.Reject).Methods(http.MethodPost)

	// --- Работа в мастерской ---
	workshop := gated(api, rolesWorkshop...)
	workshop.HandleFunc("/bookings/{bookingId:[0-9]+}/check-in", h.Bookings.CheckIn).Methods(http.MethodPost)
	workshop.HandleFunc("/bookings/{bookingId:[0-9]+}/pause", h.Bookings.Pause).Methods(http.MethodPost)
	workshop.HandleFunc("/bookings/{bookingId:[0-9]+}/resume", h.Bookings.Resume).Methods(http.MethodPost)
	workshop.HandleFunc("/bookings/{bookingId:[0-9]+}/terminate", h.Bookings.Terminate).Methods(http.MethodPost)
	workshop.HandleFunc("/bookings/{bookingId:[0-9]+}/tasks", h.Tasks.Create).Methods(http.MethodPost)
	workshop.HandleFunc("/tasks/{taskId:[0-9]+}", h.Tasks.Edit).Methods(http.MethodPatch)
	workshop.HandleFunc("/tasks/{taskId:[0-9]+}/start", h.Tasks.Start).Methods(http.MethodPost)
	workshop.HandleFunc("/tasks/{taskId:[0-9]+}/pause", h.Tasks.Pause).Methods(http.MethodPost)
	workshop.HandleFunc("/tasks/{taskId:[0-9]+}/resume", h.Tasks.Resume).Methods(http.MethodPost)
	workshop.HandleFunc("/tasks/{taskId:[0-9]+}/complete", h.Tasks.Complete).Methods(http.MethodPost)
	workshop.HandleFunc("/tasks/{taskId:[0-9]+}/cancel", h.Tasks.Cancel).Methods(http.MethodPost)
	workshop.HandleFunc("/tasks/{taskId:[0-9]+}/comments", h.Tasks.Comment).Methods(http.MethodPost)
	workshop.HandleFunc("/tasks/{taskId:[0-9]+}/history", h.Tasks.History).Methods(http.MethodGet)

	// --- Выдача автомобиля ---
	withdraw := gated(api, rolesWithdraw...)
	withdraw.HandleFunc("/bookings/{bookingId:[0-9]+}/withdraw", h.Bookings.Withdraw).Methods(http.MethodPost)

	// --- Заявки водителей ---
	submitters := gated(api, rolesSubmitter...)
	submitters.HandleFunc("/requests", h.SubmitRequest.Handle).Methods(http.MethodPost)

	drivers := gated(api, domain.RoleDriver)
	drivers.HandleFunc("/requests/{requestId:[0-9]+}/cancel", h.Requests.Cancel).Methods(http.MethodPost)

	// --- КПП ---
	gate := gated(api, rolesGate...)
	gate.HandleFunc("/gate/entries", h.Gate.RecordEntry).Methods(http.MethodPost)
	gate.HandleFunc("/gate/entries/{entryId:[0-9]+}/exit", h.Gate.RecordExit).Methods(http.MethodPost)

	return r
}

// gated подроутер, пропускающий только перечисленные роли
func gated(parent *mux.Router, roles ...domain.Role) *mux.Router {
	sub := parent.PathPrefix("").Subrouter()
	sub.Use(middleware.RequireRoles(roles...))
	return sub
}
