package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Skotchmaster/shop_orders/internal/metrics"
)

var ErrClosed = errors.New("dispatcher closed")

const sendTimeout = 30 * time.Second

// LocalDispatcher delivers from timers inside the API process. Pending
// notifications are lost on restart.
type LocalDispatcher struct {
	mailer Mailer
	log    *zap.Logger

	mu     sync.Mutex
	timers map[uuid.UUID]*time.Timer
	closed bool
	wg     sync.WaitGroup
}

func NewLocalDispatcher(mailer Mailer, log *zap.Logger) *LocalDispatcher {
	return &LocalDispatcher{mailer: mailer, log: log, timers: make(map[uuid.UUID]*time.Timer)}
}

func (d *LocalDispatcher) Schedule(_ context.Context, title, message, email string, delay time.Duration) error {
	n := NewNotification(title, message, email, delay)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}

	d.wg.Add(1)
	d.timers[n.ID] = time.AfterFunc(delay, func() {
		defer d.wg.Done()
		d.deliver(n)
	})
	return nil
}

func (d *LocalDispatcher) deliver(n Notification) {
	d.mu.Lock()
	delete(d.timers, n.ID)
	d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	err := d.mailer.Send(ctx, n)
	metrics.NotificationsSent.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		d.log.Error("notification_send_error", zap.String("id", n.ID.String()), zap.Error(err))
		return
	}
	d.log.Info("notification_sent", zap.String("id", n.ID.String()))
}

// Close drops pending notifications and waits for sends already in progress.
func (d *LocalDispatcher) Close() error {
	d.mu.Lock()
	d.closed = true
	dropped := 0
	for id, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
			dropped++
		}
		delete(d.timers, id)
	}
	d.mu.Unlock()

	if dropped > 0 {
		d.log.Warn("notifications_dropped", zap.Int("dropped", dropped))
	}
	d.wg.Wait()
	return nil
}
