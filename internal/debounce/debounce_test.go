package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerRunsOnlyLastCall(t *testing.T) {
	d := New(30 * time.Millisecond)
	var last atomic.Int64
	var runs atomic.Int32
	done := make(chan struct{}, 1)

	for i := int64(1); i <= 5; i++ {
		v := i
		d.Call(func() {
			last.Store(v)
			runs.Add(1)
			done <- struct{}{}
		})
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced call never ran")
	}
	time.Sleep(60 * time.Millisecond)
	if got := runs.Load(); got != 1 {
		t.Fatalf("expected one run, got %d", got)
	}
	if got := last.Load(); got != 5 {
		t.Fatalf("expected last call to win, got %d", got)
	}
}

func TestDebouncerStop(t *testing.T) {
	d := New(20 * time.Millisecond)
	var runs atomic.Int32
	d.Call(func() { runs.Add(1) })
	d.Stop()
	time.Sleep(60 * time.Millisecond)
	if runs.Load() != 0 {
		t.Fatal("expected stopped call not to run")
	}
}

func TestDebouncerStopWaitsForRunningCall(t *testing.T) {
	d := New(5 * time.Millisecond)
	started := make(chan struct{})
	var finished atomic.Bool
	d.Call(func() {
		close(started)
		time.Sleep(40 * time.Millisecond)
		finished.Store(true)
	})

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("debounced call never ran")
	}
	d.Stop()
	if !finished.Load() {
		t.Fatal("expected Stop to wait for the running call")
	}
}

func TestNewDefaultsWindow(t *testing.T) {
	if d := New(0); d.window != DefaultWindow {
		t.Fatalf("expected default window, got %v", d.window)
	}
}
