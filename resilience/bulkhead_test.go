package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// occupy fills n slots and returns a func that frees them.
func occupy(t *testing.T, b *Bulkhead, n int) func() {
	t.Helper()
	release := make(chan struct{})
	var started, done sync.WaitGroup
	for range n {
		started.Add(1)
		done.Add(1)
		go func() {
			defer done.Done()
			_ = b.Execute(context.Background(), func() error {
				started.Done()
				<-release
				return nil
			})
		}()
	}
	started.Wait()
	return func() {
		close(release)
		done.Wait()
	}
}

func TestBulkhead_Do(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "transcribe", MaxConcurrent: 2})

	got, err := Do(context.Background(), b, func() (string, error) {
		if b.InUse() != 1 {
			t.Errorf("InUse inside call = %d", b.InUse())
		}
		return "你好", nil
	})
	if err != nil || got != "你好" {
		t.Fatalf("Do = %q, %v", got, err)
	}
	if b.InUse() != 0 {
		t.Errorf("InUse after call = %d", b.InUse())
	}

	boom := errors.New("boom")
	if _, err := Do(context.Background(), b, func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Errorf("Do error = %v, want %v", err, boom)
	}
	if b.InUse() != 0 {
		t.Error("slot leaked after a failing call")
	}
}

func TestBulkhead_DefaultCapacity(t *testing.T) {
	if c := NewBulkhead(BulkheadConfig{}).Capacity(); c != 10 {
		t.Errorf("Capacity = %d, want 10", c)
	}
}

func TestBulkhead_Rejects(t *testing.T) {
	expired, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		maxWait time.Duration
		ctx     context.Context
		want    error
	}{
		{"full without queueing", 0, context.Background(), ErrBulkheadFull},
		{"queue wait elapses", 20 * time.Millisecond, context.Background(), ErrBulkheadTimeout},
		{"caller gives up", time.Minute, expired, context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rejected []error
			b := NewBulkhead(BulkheadConfig{
				Name:          "transcribe",
				MaxConcurrent: 1,
				MaxWait:       tt.maxWait,
				OnReject: func(name string, reason error) {
					if name != "transcribe" {
						t.Errorf("OnReject name = %q", name)
					}
					rejected = append(rejected, reason)
				},
			})
			free := occupy(t, b, 1)
			defer free()

			called := false
			err := b.Execute(tt.ctx, func() error { called = true; return nil })
			if !errors.Is(err, tt.want) {
				t.Errorf("Execute = %v, want %v", err, tt.want)
			}
			if called {
				t.Error("fn ran without a slot")
			}
			if len(rejected) != 1 || !errors.Is(rejected[0], tt.want) {
				t.Errorf("OnReject reasons = %v", rejected)
			}
		})
	}
}

func TestBulkhead_QueuedCallerGetsFreedSlot(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Second})
	free := occupy(t, b, 1)

	errc := make(chan error, 1)
	go func() {
		errc <- b.Execute(context.Background(), func() error { return nil })
	}()
	time.Sleep(10 * time.Millisecond)
	free()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("queued Execute = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("queued caller never ran")
	}
}

func TestBulkhead_CapsConcurrency(t *testing.T) {
	const limit = 3
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: limit, MaxWait: time.Second})

	var (
		mu       sync.Mutex
		inFlight int
		peak     int
		wg       sync.WaitGroup
	)
	for range 12 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Execute(context.Background(), func() error {
				mu.Lock()
				inFlight++
				peak = max(peak, inFlight)
				mu.Unlock()
				time.Sleep(5 * time.Millisecond)
				mu.Lock()
				inFlight--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if peak > limit {
		t.Errorf("peak concurrency = %d, want <= %d", peak, limit)
	}
	if b.InUse() != 0 {
		t.Errorf("InUse after all calls = %d", b.InUse())
	}
}
