package notificationservice

// Type тип уведомления
type Type string

const (
	TypeBookingScheduled Type = "INGRESO_PROGRAMADO"
	TypeBookingStarted   Type = "INGRESO_INICIADO"
	TypeTaskAssigned     Type = "TAREA_ASIGNADA"
	TypeTaskCompleted    Type = "TAREA_COMPLETADA"
	TypePauseRecorded    Type = "PAUSA_REGISTRADA"
	TypeBookingFinished  Type = "INGRESO_TERMINADO"
	TypeReadyForPickup   Type = "VEHICULO_LISTO_RETIRO"
)

// Notification уведомление пользователю
type Notification struct {
	UserID   int64             `json:"user_id"`
	Type     Type              `json:"type"`
	Title    string            `json:"title"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
