package shutdown

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nabeel-w/ButterCut-Assignment/internal/pkg/logger"
)

func newTestLogger() *logger.Logger {
	var buf bytes.Buffer
	return logger.New(logger.Config{
		Level:  "debug",
		Format: "json",
		Output: &buf,
	})
}

func TestNewManagerDefaultTimeout(t *testing.T) {
	mgr := NewManager(newTestLogger(), 0)
	if mgr.timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %s", mgr.timeout)
	}
}

func TestRegister(t *testing.T) {
	mgr := NewManager(newTestLogger(), 5*time.Second)

	mgr.Register("test", func(ctx context.Context) error { return nil })

	if len(mgr.handlers) != 1 {
		t.Fatalf("expected 1 handler, got %d", len(mgr.handlers))
	}
	if mgr.handlers[0].name != "test" {
		t.Errorf("expected handler name 'test', got %s", mgr.handlers[0].name)
	}
}

func TestShutdownRunsAllHandlers(t *testing.T) {
	mgr := NewManager(newTestLogger(), 5*time.Second)

	var calls int32
	for i := 0; i < 3; i++ {
		mgr.Register("h", func(ctx context.Context) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
	}

	mgr.Shutdown()

	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 handler calls, got %d", got)
	}
}

func TestShutdownIdempotent(t *testing.T) {
	mgr := NewManager(newTestLogger(), 5*time.Second)

	var calls int32
	mgr.Register("once", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	mgr.Shutdown()
	mgr.Shutdown()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected handler to run once, ran %d times", got)
	}
}

func TestShutdownToleratesHandlerError(t *testing.T) {
	mgr := NewManager(newTestLogger(), 5*time.Second)

	var ran bool
	mgr.Register("ok", func(ctx context.Context) error {
		ran = true
		return nil
	})
	mgr.Register("failing", func(ctx context.Context) error {
		return errors.New("cleanup failed")
	})

	mgr.Shutdown()

	if !ran {
		t.Error("expected other handlers to run despite a failing one")
	}
}

func TestDoneClosedAfterShutdown(t *testing.T) {
	mgr := NewManager(newTestLogger(), time.Second)
	mgr.Shutdown()

	select {
	case <-mgr.Done():
	case <-time.After(time.Second):
		t.Error("expected Done channel to be closed after shutdown")
	}
}

func TestShutdownTimeout(t *testing.T) {
	mgr := NewManager(newTestLogger(), 50*time.Millisecond)

	mgr.Register("slow", func(ctx context.Context) error {
		select {
		case <-time.After(5 * time.Second):
		case <-ctx.Done():
		}
		return ctx.Err()
	})

	start := time.Now()
	mgr.Shutdown()

	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("shutdown should give up at the timeout, took %s", elapsed)
	}
}
