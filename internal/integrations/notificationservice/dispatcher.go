package notificationservice

import (
	"context"
	"sync"
	"time"
)

const (
	resultSent    = "sent"
	resultFailed  = "failed"
	resultDropped = "dropped"
)

// Dispatcher пул воркеров асинхронной отправки уведомлений
// Dispatch никогда не блокирует вызывающего: при заполненной очереди уведомление отбрасывается
type Dispatcher struct {
	sender      Sender
	size        int
	sendTimeout time.Duration
	jobs        chan Notification
	log         Logger
	metrics     MetricsRecorder

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher создает пул из workers воркеров с очередью queueSize
// metrics может быть nil
func NewDispatcher(sender Sender, workers, queueSize int, sendTimeout time.Duration, log Logger, metrics MetricsRecorder) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = workers
	}

	return &Dispatcher{
		sender:      sender,
		size:        workers,
		sendTimeout: sendTimeout,
		jobs:        make(chan Notification, queueSize),
		log:         log,
		metrics:     metrics,
	}
}

// Start запускает воркеры; они работают до отмены ctx или вызова Stop
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.size; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

// Dispatch ставит уведомление в очередь; false, если оно отброшено
func (d *Dispatcher) Dispatch(n Notification) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.observe(n.Type, resultDropped)
		return false
	}

	select {
	case d.jobs <- n:
		return true
	default:
		d.log.Warn("Dispatch: queue is full, dropping notification type=%s user_id=%d", n.Type, n.UserID)
		d.observe(n.Type, resultDropped)
		return false
	}
}

// Stop закрывает очередь и ждёт, пока воркеры отправят оставшееся
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()

	for {
		select {
		case n, ok := <-d.jobs:
			if !ok {
				return
			}
			d.send(ctx, id, n)
		case <-ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) send(ctx context.Context, workerID int, n Notification) {
	sendCtx := context.WithoutCancel(ctx)
	if d.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(sendCtx, d.sendTimeout)
		defer cancel()
	}

	if err := d.sender.Send(sendCtx, n); err != nil {
		d.log.Error("Dispatcher: worker=%d failed to send type=%s user_id=%d: %v", workerID, n.Type, n.UserID, err)
		d.observe(n.Type, resultFailed)
		return
	}

	d.log.Info("Dispatcher: worker=%d sent type=%s user_id=%d", workerID, n.Type, n.UserID)
	d.observe(n.Type, resultSent)
}

func (d *Dispatcher) observe(t Type, result string) {
	if d.metrics != nil {
		d.metrics.ObserveNotification(string(t), result)
	}
}
