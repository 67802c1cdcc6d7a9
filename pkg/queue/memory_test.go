package queue

import (
	"context"
	"testing"
	"time"
)

func TestMemoryQueue_PushPopFIFO(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()

	for _, v := range []string{"a", "b", "c"} {
		if err := q.PushRight(ctx, []byte(v)); err != nil {
			t.Fatalf("PushRight(%s) failed: %v", v, err)
		}
	}

	n, err := q.Length(ctx)
	if err != nil {
		t.Fatalf("Length failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected length 3, got %d", n)
	}

	for _, want := range []string{"a", "b", "c"} {
		got, err := q.BlockingPopLeft(ctx, time.Second)
		if err != nil {
			t.Fatalf("BlockingPopLeft failed: %v", err)
		}
		if string(got) != want {
			t.Errorf("expected %q, got %q", want, string(got))
		}
	}
}

func TestMemoryQueue_BlockingPopLeft_TimesOutWhenEmpty(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()

	start := time.Now()
	_, err := q.BlockingPopLeft(ctx, 50*time.Millisecond)
	elapsed := time.Since(start)

	if err != ErrEmpty {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if elapsed < 50*time.Millisecond {
		t.Errorf("expected to wait at least the timeout, waited %v", elapsed)
	}
}

func TestMemoryQueue_BlockingPopLeft_WakesOnPush(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()

	done := make(chan []byte, 1)
	go func() {
		v, err := q.BlockingPopLeft(ctx, time.Second)
		if err != nil {
			t.Errorf("BlockingPopLeft failed: %v", err)
			return
		}
		done <- v
	}()

	time.Sleep(20 * time.Millisecond)
	if err := q.PushRight(ctx, []byte("job")); err != nil {
		t.Fatalf("PushRight failed: %v", err)
	}

	select {
	case v := <-done:
		if string(v) != "job" {
			t.Errorf("expected job, got %q", string(v))
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("BlockingPopLeft did not wake up after push")
	}
}

func TestMemoryQueue_Close_UnblocksWaitersAndRejectsPush(t *testing.T) {
	q := NewMemory()
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() {
		_, err := q.BlockingPopLeft(ctx, 2*time.Second)
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)
	if err := q.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	select {
	case err := <-errc:
		if err != ErrUnavailable {
			t.Errorf("expected ErrUnavailable after close, got %v", err)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("BlockingPopLeft did not unblock after Close")
	}

	if err := q.PushRight(ctx, []byte("x")); err != ErrUnavailable {
		t.Errorf("expected ErrUnavailable on push after close, got %v", err)
	}
}
