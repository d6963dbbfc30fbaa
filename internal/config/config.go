// Package config конфигурация сервиса: config.toml, .env и переменные окружения WORKSHOP_*
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
)

// Префикс переменных окружения, переопределяющих значения из файла
const envPrefix = "WORKSHOP_"

// ErrInvalidConfig возвращается, если конфигурация не прошла проверку
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server              ServerConfig              `toml:"server"`
	Database            DatabaseConfig            `toml:"database"`
	Logs                LogsConfig                `toml:"logs"`
	Metrics             MetricsConfig             `toml:"metrics"`
	Scheduling          SchedulingConfig          `toml:"scheduling"`
	FleetService        FleetServiceConfig        `toml:"fleet_service"`
	NotificationService NotificationServiceConfig `toml:"notification_service"`
	RateLimit           RateLimitConfig           `toml:"rate_limit"`
}

// ServerConfig параметры HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig параметры подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	MigrateOnStart  bool   `toml:"migrate_on_start"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig параметры логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig параметры prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// SchedulingConfig рабочий день мастерской и сетка слотов
type SchedulingConfig struct {
	Timezone           string `toml:"timezone"`
	DayStartHour       int    `toml:"day_start_hour"`
	DayEndHour         int    `toml:"day_end_hour"`
	SlotMinutes        int    `toml:"slot_minutes"`
	DefaultDays        int    `toml:"default_days"`
	OverdueRequestDays int    `toml:"overdue_request_days"`
}

// FleetServiceConfig клиент реестра автопарка
type FleetServiceConfig struct {
	URL      string `toml:"url"`
	Timeout  int    `toml:"timeout"`   // секунды
	CacheTTL int    `toml:"cache_ttl"` // секунды
}

// NotificationServiceConfig клиент сервиса уведомлений
type NotificationServiceConfig struct {
	URL       string `toml:"url"`
	Timeout   int    `toml:"timeout"` // секунды
	Workers   int    `toml:"workers"`
	QueueSize int    `toml:"queue_size"`
}

// RateLimitConfig ограничение частоты запросов на один IP
type RateLimitConfig struct {
	Enabled bool    `toml:"enabled"`
	RPS     float64 `toml:"rps"`
	Burst   int     `toml:"burst"`
}

// Load читает конфигурацию из TOML файла, затем применяет .env и переменные окружения WORKSHOP_*
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	// .env необязателен
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default значения по умолчанию для полей, отсутствующих в файле
func Default() *Config {
	schedule := domain.DefaultWorkshopSchedule()

	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			MigrateOnStart:  true,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "smc-workshopservice",
		},
		Scheduling: SchedulingConfig{
			Timezone:           domain.DefaultTimezone,
			DayStartHour:       schedule.DayStartHour,
			DayEndHour:         schedule.DayEndHour,
			SlotMinutes:        schedule.SlotMinutes,
			DefaultDays:        schedule.DefaultDays,
			OverdueRequestDays: schedule.OverdueRequestDays,
		},
		FleetService: FleetServiceConfig{
			Timeout:  5,
			CacheTTL: 300,
		},
		NotificationService: NotificationServiceConfig{
			Timeout:   5,
			Workers:   2,
			QueueSize: 100,
		},
		RateLimit: RateLimitConfig{
			RPS:   20,
			Burst: 40,
		},
	}
}

// Validate проверяет значения, без которых сервис работать не может
func (c *Config) Validate() error {
	schedule, err := c.Schedule()
	if err != nil {
		return err
	}
	if err := schedule.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port=%d", ErrInvalidConfig, c.Server.HTTPPort)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("%w: rate_limit.rps and rate_limit.burst must be positive", ErrInvalidConfig)
	}
	if c.NotificationService.Workers <= 0 || c.NotificationService.QueueSize <= 0 {
		return fmt.Errorf("%w: notification_service.workers and queue_size must be positive", ErrInvalidConfig)
	}

	return nil
}

// Schedule переводит секцию [scheduling] в параметры предметной области
func (c *Config) Schedule() (domain.WorkshopSchedule, error) {
	loc, err := time.LoadLocation(c.Scheduling.Timezone)
	if err != nil {
		return domain.WorkshopSchedule{}, fmt.Errorf("%w: scheduling.timezone: %v", ErrInvalidConfig, err)
	}

	return domain.WorkshopSchedule{
		Location:           loc,
		DayStartHour:       c.Scheduling.DayStartHour,
		DayEndHour:         c.Scheduling.DayEndHour,
		SlotMinutes:        c.Scheduling.SlotMinutes,
		DefaultDays:        c.Scheduling.DefaultDays,
		OverdueRequestDays: c.Scheduling.OverdueRequestDays,
	}, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.DBName, "DB_NAME")
	setString(&c.Logs.Level, "LOG_LEVEL")
	setString(&c.FleetService.URL, "FLEET_SERVICE_URL")
	setString(&c.NotificationService.URL, "NOTIFICATION_SERVICE_URL")

	if err := setInt(&c.Database.Port, "DB_PORT"); err != nil {
		return err
	}
	return setInt(&c.Server.HTTPPort, "HTTP_PORT")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || v == "" {
		return nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s%s=%q is not a number", ErrInvalidConfig, envPrefix, key, v)
	}
	*dst = n
	return nil
}
