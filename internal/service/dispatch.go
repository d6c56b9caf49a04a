package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"lunastudios/internal/domain"
)

// ActivityLog records audit entries. Writes are best effort.
type ActivityLog interface {
	Append(ctx context.Context, e domain.ActivityEntry) error
}

// NotificationCreator writes in-app notifications. Writes are best effort.
type NotificationCreator interface {
	CreateNotification(ctx context.Context, userID, subject, message string) (domain.Notification, error)
}

// Dispatcher runs side effects (mail, notifications, audit rows) off the
// request goroutine. A failed side effect is logged and otherwise dropped;
// it never changes the outcome of the request that triggered it.
type Dispatcher struct {
	Logger  *slog.Logger
	Timeout time.Duration

	wg sync.WaitGroup
}

func (d *Dispatcher) Go(name string, fn func(ctx context.Context) error) {
	if d == nil {
		return
	}
	timeout := d.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil && d.Logger != nil {
				d.Logger.Error("side effect panicked", "effect", name, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := fn(ctx); err != nil && d.Logger != nil {
			d.Logger.Warn("side effect failed", "effect", name, "error", err)
		}
	}()
}

// Wait blocks until all dispatched side effects finish. Used on shutdown
// and in tests.
func (d *Dispatcher) Wait() {
	if d != nil {
		d.wg.Wait()
	}
}

// appendActivity dispatches one audit row, stamping the client IP and user
// agent carried in the request context. The meta is read before the hand-off
// because the dispatched closure runs under its own context.
func appendActivity(ctx context.Context, d *Dispatcher, log ActivityLog, e domain.ActivityEntry) {
	meta := domain.RequestMetaFrom(ctx)
	e.IP = meta.IP
	e.UserAgent = meta.UserAgent

	d.Go("activity "+e.Action, func(ctx context.Context) error {
		return log.Append(ctx, e)
	})
}
