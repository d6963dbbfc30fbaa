package notificationservice

import "context"

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Sender синхронная отправка одного уведомления
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// MetricsRecorder учёт результатов отправки
type MetricsRecorder interface {
	ObserveNotification(notificationType, result string)
}
