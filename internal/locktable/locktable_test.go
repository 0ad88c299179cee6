package locktable

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tbl := New()
	if tbl == nil {
		t.Fatal("New() returned nil")
	}
	if tbl.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tbl.Len())
	}
}

func TestAcquireSerializesSameKeyAndVerb(t *testing.T) {
	tbl := New()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := tbl.Acquire(context.Background(), "/users", "GET")
			if err != nil {
				t.Errorf("Acquire() returned error: %v", err)
				return
			}
			defer release()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxInside)
	}
	if tbl.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tbl.Len())
	}
}

func TestAcquireDifferentVerbsAreIndependent(t *testing.T) {
	tbl := New()

	releaseGet, err := tbl.Acquire(context.Background(), "/users", "GET")
	if err != nil {
		t.Fatalf("Acquire(GET) error: %v", err)
	}
	defer releaseGet()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	releasePost, err := tbl.Acquire(ctx, "/users", "POST")
	if err != nil {
		t.Fatalf("Acquire(POST) should not block on GET holder: %v", err)
	}
	releasePost()

	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}
}

func TestAcquireCancelledWhileWaiting(t *testing.T) {
	tbl := New()

	release, err := tbl.Acquire(context.Background(), "/orders", "PUT")
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := tbl.Acquire(ctx, "/orders", "PUT"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Acquire() error = %v, want deadline exceeded", err)
	}

	release()

	// the abandoned waiter must not have left the lock held
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	release2, err := tbl.Acquire(ctx2, "/orders", "PUT")
	if err != nil {
		t.Fatalf("Acquire() after cancelled waiter: %v", err)
	}
	release2()
}

func TestReleaseIsIdempotent(t *testing.T) {
	tbl := New()

	release, err := tbl.Acquire(context.Background(), "/a", "DELETE")
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	release()
	release()

	r1, err := tbl.Acquire(context.Background(), "/a", "DELETE")
	if err != nil {
		t.Fatalf("Acquire() after release: %v", err)
	}
	defer r1()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := tbl.Acquire(ctx, "/a", "DELETE"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("double release must not admit two holders, got %v", err)
	}
}

func TestTableGrowsMonotonically(t *testing.T) {
	tbl := New()
	paths := []string{"/a", "/b", "/c"}
	verbs := []string{"GET", "POST"}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		for _, p := range paths {
			for _, v := range verbs {
				wg.Add(1)
				go func(p, v string) {
					defer wg.Done()
					release, err := tbl.Acquire(context.Background(), p, v)
					if err == nil {
						release()
					}
				}(p, v)
			}
		}
	}
	wg.Wait()

	if got := tbl.Len(); got != len(paths)*len(verbs) {
		t.Errorf("Len() = %d, want %d", got, len(paths)*len(verbs))
	}
}
