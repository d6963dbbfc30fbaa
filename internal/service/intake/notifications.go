package intake

import (
	"strconv"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	"github.com/m04kA/SMC-WorkshopService/internal/integrations/notificationservice"
)

const (
	notificationTypeStarted = notificationservice.TypeBookingStarted
	notificationTypePaused  = notificationservice.TypePauseRecorded
	notificationTypeReady   = notificationservice.TypeReadyForPickup
)

// notifyDriver ставит уведомление водителю в очередь; без водителя ничего не отправляется
// Ошибки доставки не влияют на результат операции
func (s *Service) notifyDriver(b *domain.Booking, kind notificationservice.Type, title, message string) {
	if b.DriverID == nil {
		return
	}

	queued := s.notifier.Dispatch(notificationservice.Notification{
		UserID:  *b.DriverID,
		Type:    kind,
		Title:   title,
		Message: message,
		Metadata: map[string]string{
			"booking_id": strconv.FormatInt(b.ID, 10),
			"plate":      b.VehiclePlate,
		},
	})
	if !queued {
		s.logger.Warn("notifyDriver: %s for booking id=%d was dropped", kind, b.ID)
	}
}
