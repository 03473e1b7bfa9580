package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDoRunsSequentially(t *testing.T) {
	w, err := New("test", nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	var (
		mu      sync.Mutex
		running int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Do(context.Background(), func() error {
				mu.Lock()
				running++
				if running > maxSeen {
					maxSeen = running
				}
				mu.Unlock()

				time.Sleep(2 * time.Millisecond)

				mu.Lock()
				running--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("max concurrent jobs = %d, want 1", maxSeen)
	}
}

func TestDoReturnsJobError(t *testing.T) {
	w, err := New("test", nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	want := errors.New("boom")
	if got := w.Do(context.Background(), func() error { return want }); !errors.Is(got, want) {
		t.Errorf("Do() = %v, want %v", got, want)
	}
}

func TestDoRecoversPanic(t *testing.T) {
	w, err := New("test", nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Do(context.Background(), func() error { panic("bad") }); err == nil {
		t.Error("Do() with panicking job returned nil error")
	}
	if err := w.Do(context.Background(), func() error { return nil }); err != nil {
		t.Errorf("worker unusable after panic: %v", err)
	}
}

func TestSetupAndTeardown(t *testing.T) {
	setupErr := errors.New("no apartment")
	if _, err := New("test", func() error { return setupErr }, nil); !errors.Is(err, setupErr) {
		t.Errorf("New() error = %v, want %v", err, setupErr)
	}

	tornDown := false
	w, err := New("test", func() error { return nil }, func() { tornDown = true })
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	w.Close()
	if !tornDown {
		t.Error("teardown did not run on Close")
	}
	if err := w.Do(context.Background(), func() error { return nil }); !errors.Is(err, ErrClosed) {
		t.Errorf("Do() after Close = %v, want ErrClosed", err)
	}
}

func TestDoContextCancel(t *testing.T) {
	w, err := New("test", nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	release := make(chan struct{})
	busy := make(chan struct{})
	go w.Do(context.Background(), func() error {
		close(busy)
		<-release
		return nil
	})
	defer close(release)
	<-busy

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := w.Do(ctx, func() error { return nil }); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Do() = %v, want DeadlineExceeded", err)
	}
}
