package writequeue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestManager(t *testing.T, cfg *Config) *Manager {
	t.Helper()
	m := New(cfg, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.Shutdown(ctx)
	})
	return m
}

func TestManagerExecute(t *testing.T) {
	m := newTestManager(t, nil)

	ran := false
	err := m.Execute(context.Background(), 1, func() error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !ran {
		t.Error("operation did not run")
	}
}

func TestManagerExecuteReturnsOpError(t *testing.T) {
	m := newTestManager(t, nil)

	want := errors.New("constraint violation")
	err := m.Execute(context.Background(), 1, func() error { return want })
	if !errors.Is(err, want) {
		t.Errorf("Execute should return the operation error, got %v", err)
	}
}

func TestManagerSerializesPerNote(t *testing.T) {
	m := newTestManager(t, nil)

	// 并发提交同一笔记的写操作，检查互斥执行
	var inFlight, maxInFlight int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Execute(context.Background(), 42, func() error {
				mu.Lock()
				inFlight++
				if inFlight > maxInFlight {
					maxInFlight = inFlight
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inFlight--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if maxInFlight != 1 {
		t.Errorf("operations on the same note overlapped: max in flight %d", maxInFlight)
	}
}

func TestManagerIndependentNotes(t *testing.T) {
	m := newTestManager(t, nil)

	// 不同笔记的队列互不阻塞
	block := make(chan struct{})
	release := sync.OnceFunc(func() { close(block) })
	defer release()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = m.Execute(context.Background(), 1, func() error {
			<-block
			return nil
		})
	}()

	done := make(chan struct{})
	go func() {
		_ = m.Execute(context.Background(), 2, func() error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("operation on another note was blocked")
	}
	release()
	wg.Wait()
}

func TestManagerQueueFull(t *testing.T) {
	m := newTestManager(t, &Config{QueueCapacity: 1, WriteTimeout: 5 * time.Second})

	block := make(chan struct{})
	defer close(block)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = m.Execute(context.Background(), 1, func() error {
			<-block
			return nil
		})
	}()

	// 等待第一个操作进入 worker
	time.Sleep(50 * time.Millisecond)

	gotFull := false
	for i := 0; i < 10; i++ {
		go func() {
			_ = m.Execute(context.Background(), 1, func() error {
				<-block
				return nil
			})
		}()
		time.Sleep(10 * time.Millisecond)
		err := m.Execute(context.Background(), 1, func() error { return nil })
		if errors.Is(err, ErrQueueFull) {
			gotFull = true
			break
		}
	}
	if !gotFull {
		t.Error("expected ErrQueueFull when the note queue is saturated")
	}
}

func TestManagerExecuteAfterShutdown(t *testing.T) {
	m := New(nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	err := m.Execute(context.Background(), 1, func() error { return nil })
	if !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed, got %v", err)
	}

	// 重复关闭应当无害
	if err := m.Shutdown(ctx); err != nil {
		t.Errorf("repeated Shutdown failed: %v", err)
	}
}

func TestManagerContextCancelled(t *testing.T) {
	m := newTestManager(t, nil)

	block := make(chan struct{})
	defer close(block)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = m.Execute(context.Background(), 1, func() error {
			<-block
			return nil
		})
	}()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.Execute(ctx, 1, func() error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestManagerConcurrentExecuteDuringShutdown(t *testing.T) {
	m := New(&Config{QueueCapacity: 8}, nil)

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(noteID int64) {
			defer wg.Done()
			<-start
			for j := 0; j < 100; j++ {
				err := m.Execute(context.Background(), noteID, func() error { return nil })
				if err != nil && !errors.Is(err, ErrQueueClosed) && !errors.Is(err, ErrQueueFull) {
					t.Errorf("unexpected execute error: %v", err)
					return
				}
				if errors.Is(err, ErrQueueClosed) {
					return
				}
			}
		}(int64(i % 4))
	}

	close(start)
	time.Sleep(time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	wg.Wait()
}
