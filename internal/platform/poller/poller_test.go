package poller

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestPoller_RunsAtInterval(t *testing.T) {
	var count int64
	p := New("test", 10*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt64(&count, 1)
		return nil
	}, zerolog.New(os.Stderr))

	p.Start(context.Background())
	time.Sleep(55 * time.Millisecond)
	p.Stop()

	got := atomic.LoadInt64(&count)
	if got < 2 {
		t.Errorf("expected at least 2 iterations, got %d", got)
	}
}

func TestPoller_StopHalts(t *testing.T) {
	var count int64
	p := New("test", 5*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt64(&count, 1)
		return nil
	}, zerolog.New(os.Stderr))

	p.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	p.Stop()

	after := atomic.LoadInt64(&count)
	time.Sleep(20 * time.Millisecond)
	if atomic.LoadInt64(&count) != after {
		t.Error("expected no iterations after Stop")
	}
}

func TestPoller_ErrorDoesNotStopLoop(t *testing.T) {
	var count int64
	p := New("test", 5*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt64(&count, 1)
		return errors.New("boom")
	}, zerolog.New(os.Stderr))

	p.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	p.Stop()

	if atomic.LoadInt64(&count) < 2 {
		t.Error("expected poller to keep running after an error")
	}
}

func TestPoller_ParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var count int64
	p := New("test", 5*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt64(&count, 1)
		return nil
	}, zerolog.New(os.Stderr))

	p.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)

	after := atomic.LoadInt64(&count)
	time.Sleep(20 * time.Millisecond)
	if atomic.LoadInt64(&count) != after {
		t.Error("expected no iterations after parent context cancel")
	}
}

func TestPoller_StopWithoutStart(t *testing.T) {
	p := New("test", time.Second, func(ctx context.Context) error { return nil }, zerolog.New(os.Stderr))
	// Must not panic
	p.Stop()
}
