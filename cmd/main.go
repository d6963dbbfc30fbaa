package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-WorkshopService/internal/api"
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
	"github.com/m04kA/SMC-WorkshopService/internal/config"
	bookingRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/booking"
	gateRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/gate"
	"github.com/m04kA/SMC-WorkshopService/internal/infra/storage/migrations"
	pauseRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/pause"
	requestRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/request"
	resourceRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/resource"
	taskRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/task"
	fleetServiceClient "github.com/m04kA/SMC-WorkshopService/internal/integrations/fleetservice"
	notificationServiceClient "github.com/m04kA/SMC-WorkshopService/internal/integrations/notificationservice"
	gateService "github.com/m04kA/SMC-WorkshopService/internal/service/gate"
	intakeService "github.com/m04kA/SMC-WorkshopService/internal/service/intake"
	requestsService "github.com/m04kA/SMC-WorkshopService/internal/service/requests"
	resourcesService "github.com/m04kA/SMC-WorkshopService/internal/service/resources"
	tasksService "github.com/m04kA/SMC-WorkshopService/internal/service/tasks"
	approveRequestUC "github.com/m04kA/SMC-WorkshopService/internal/usecase/approve_request"
	getAvailableSlotsUC "github.com/m04kA/SMC-WorkshopService/internal/usecase/get_available_slots"
	scheduleBookingUC "github.com/m04kA/SMC-WorkshopService/internal/usecase/schedule_booking"
	submitRequestUC "github.com/m04kA/SMC-WorkshopService/internal/usecase/submit_request"
	"github.com/m04kA/SMC-WorkshopService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WorkshopService/pkg/logger"
	"github.com/m04kA/SMC-WorkshopService/pkg/metrics"
	"github.com/m04kA/SMC-WorkshopService/pkg/txmanager"
)

func main() {
	configPath := os.Getenv("WORKSHOP_CONFIG")
	if configPath == "" {
		configPath = "config.toml"
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	schedule, err := cfg.Schedule()
	if err != nil {
		fmt.Printf("Failed to build workshop schedule: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-WorkshopService...")
	log.Info("Configuration loaded from %s", configPath)

	// Инициализируем метрики (если включены)
	var (
		metricsCollector    *metrics.Metrics
		notificationMetrics notificationServiceClient.MetricsRecorder
	)
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		notificationMetrics = metricsCollector
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.MigrateOnStart {
		if err := migrations.Up(db); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
		log.Info("Database migrations applied")
	}

	// Без метрик обёртка работает как обычный *sql.DB
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Инициализируем репозитории
	resourceRepository := resourceRepo.NewRepository(wrappedDB)
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	pauseRepository := pauseRepo.NewRepository(wrappedDB)
	taskRepository := taskRepo.NewRepository(wrappedDB)
	requestRepository := requestRepo.NewRepository(wrappedDB)
	gateRepository := gateRepo.NewRepository(wrappedDB)

	// Инициализируем интеграционных клиентов
	fleetClient := fleetServiceClient.NewClient(
		cfg.FleetService.URL,
		time.Duration(cfg.FleetService.Timeout)*time.Second,
		time.Duration(cfg.FleetService.CacheTTL)*time.Second,
		log,
	)
	notificationTimeout := time.Duration(cfg.NotificationService.Timeout) * time.Second
	dispatcher := notificationServiceClient.NewDispatcher(
		notificationServiceClient.NewClient(cfg.NotificationService.URL, notificationTimeout),
		cfg.NotificationService.Workers,
		cfg.NotificationService.QueueSize,
		notificationTimeout,
		log,
		notificationMetrics,
	)
	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	defer stopDispatcher()
	dispatcher.Start(dispatcherCtx)
	log.Info("Integration clients initialized (FleetService=%s timeout=%ds, NotificationService=%s workers=%d)",
		cfg.FleetService.URL, cfg.FleetService.Timeout, cfg.NotificationService.URL, cfg.NotificationService.Workers)

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		resourceRepository,
		bookingRepository,
		requestRepository,
		schedule,
		log,
	)
	scheduleBookingUseCase := scheduleBookingUC.NewUseCase(
		bookingRepository,
		resourceRepository,
		requestRepository,
		fleetClient,
		txMgr,
		schedule,
		log,
	)
	submitRequestUseCase := submitRequestUC.NewUseCase(
		requestRepository,
		bookingRepository,
		fleetClient,
		txMgr,
		log,
	)
	approveRequestUseCase := approveRequestUC.NewUseCase(
		requestRepository,
		scheduleBookingUseCase,
		dispatcher,
		txMgr,
		schedule,
		log,
	)

	// Инициализируем сервисы
	resourcesSvc := resourcesService.NewService(resourceRepository, log)
	intakeSvc := intakeService.NewService(
		bookingRepository,
		pauseRepository,
		taskRepository,
		requestRepository,
		dispatcher,
		txMgr,
		schedule,
		log,
	)
	tasksSvc := tasksService.NewService(taskRepository, bookingRepository, dispatcher, txMgr, log)
	requestsSvc := requestsService.NewService(requestRepository, txMgr, schedule.OverdueRequestDays, log)
	gateSvc := gateService.NewService(gateRepository, bookingRepository, fleetClient, txMgr, schedule, log)

	// Инициализируем handlers
	handlers := api.Handlers{
		Slots:           getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log),
		ScheduleBooking: scheduleBookingHandler.NewHandler(scheduleBookingUseCase, log),
		SubmitRequest:   submitRequestHandler.NewHandler(submitRequestUseCase, log),
		ApproveRequest:  approveRequestHandler.NewHandler(approveRequestUseCase, log),
		Resources:       resourcesHandler.NewHandler(resourcesSvc, log),
		Bookings:        bookingsHandler.NewHandler(intakeSvc, log),
		Requests:        requestsHandler.NewHandler(requestsSvc, log),
		Tasks:           tasksHandler.NewHandler(tasksSvc, log),
		Gate:            gateHandler.NewHandler(gateSvc, log),
	}

	opts := api.Options{
		Metrics:     metricsCollector,
		MetricsPath: cfg.Metrics.Path,
	}
	if cfg.RateLimit.Enabled {
		opts.RateLimiter = middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
		log.Info("Rate limit enabled: rps=%.1f, burst=%d", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	// Настраиваем роутер
	r := api.NewRouter(handlers, opts)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Отправляем уведомления, оставшиеся в очереди
	dispatcher.Stop()
	log.Info("Notification dispatcher stopped")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
