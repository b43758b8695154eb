package notifications

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Dispatcher sends notifications in the background. A failed or slow send never
// reaches the caller; it is logged and dropped.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	log      *zap.Logger
	wg       sync.WaitGroup
}

func NewDispatcher(notifier Notifier, timeout time.Duration, log *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{notifier: notifier, timeout: timeout, log: log}
}

// Notify queues msg and returns immediately. The send outlives ctx's cancellation
// but not the dispatcher's timeout.
func (d *Dispatcher) Notify(ctx context.Context, msg Message) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error("notifier panicked", zap.String("provider", d.notifier.Name()), zap.Any("panic", r))
			}
		}()

		if err := d.notifier.Send(sendCtx, msg); err != nil {
			d.log.Warn("notification failed",
				zap.String("provider", d.notifier.Name()),
				zap.String("event", string(msg.Event)),
				zap.String("appointment_id", msg.AppointmentID),
				zap.Error(err),
			)
			return
		}
		d.log.Debug("notification sent",
			zap.String("provider", d.notifier.Name()),
			zap.String("event", string(msg.Event)),
			zap.String("appointment_id", msg.AppointmentID),
		)
	}()
}

// Wait blocks until in-flight sends finish. Called on shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
