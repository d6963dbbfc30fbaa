package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	"github.com/m04kA/SMC-WorkshopService/internal/integrations/fleetservice"
	"github.com/m04kA/SMC-WorkshopService/internal/integrations/notificationservice"
)

// Clock управляемое время
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

// NewClock часы, стоящие на t
func NewClock(t time.Time) *Clock {
	return &Clock{t: t}
}

// Now текущее значение
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance сдвигает часы вперёд
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// Fleet реестр автопарка в памяти
type Fleet struct {
	mu       sync.Mutex
	vehicles map[string]*domain.Vehicle
}

// NewFleet реестр с заданными автомобилями
func NewFleet(vehicles ...*domain.Vehicle) *Fleet {
	f := &Fleet{vehicles: map[string]*domain.Vehicle{}}
	for _, v := range vehicles {
		f.vehicles[domain.NormalizePlate(v.Plate)] = v
	}
	return f
}

// GetVehicleByPlate как fleetservice.Client: неизвестный и неактивный автомобиль не найдены
func (f *Fleet) GetVehicleByPlate(_ context.Context, plate string) (*domain.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.vehicles[domain.NormalizePlate(plate)]
	if !ok || !v.Active {
		return nil, fleetservice.ErrVehicleNotFound
	}
	out := *v
	return &out, nil
}

// Notifier запоминает отправленные уведомления
type Notifier struct {
	mu   sync.Mutex
	sent []notificationservice.Notification
}

// Dispatch сохраняет уведомление
func (n *Notifier) Dispatch(msg notificationservice.Notification) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return true
}

// Sent копия отправленных уведомлений
func (n *Notifier) Sent() []notificationservice.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notificationservice.Notification(nil), n.sent...)
}

// NopLogger логгер, который ничего не пишет
type NopLogger struct{}

func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
