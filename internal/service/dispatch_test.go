package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
)

func TestDispatcherRunsEffect(t *testing.T) {
	var ran atomic.Bool
	d := &Dispatcher{}

	d.Go("test effect", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	d.Wait()

	if !ran.Load() {
		t.Fatalf("effect never ran")
	}
}

func TestDispatcherSwallowsErrorsAndPanics(t *testing.T) {
	d := &Dispatcher{Logger: slog.New(slog.DiscardHandler)}

	d.Go("failing effect", func(ctx context.Context) error {
		return errors.New("boom")
	})
	d.Go("panicking effect", func(ctx context.Context) error {
		panic("boom")
	})
	d.Wait()
	// Reaching this line means neither effect took the process down.
}

func TestNilDispatcherIsNoop(t *testing.T) {
	var d *Dispatcher
	d.Go("ignored", func(ctx context.Context) error { return nil })
	d.Wait()
}
