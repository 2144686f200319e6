package keylock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestKeyLock_SameKeySerializes(t *testing.T) {
	l := New()

	var inSection int32
	var maxInSection int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := l.Lock("shared")
			defer h.Unlock()

			n := atomic.AddInt32(&inSection, 1)
			for {
				max := atomic.LoadInt32(&maxInSection)
				if n <= max || atomic.CompareAndSwapInt32(&maxInSection, max, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inSection, -1)
		}()
	}
	wg.Wait()

	if max := atomic.LoadInt32(&maxInSection); max != 1 {
		t.Errorf("Expected at most 1 goroutine in critical section, got %d", max)
	}
}

func TestKeyLock_DistinctKeysConcurrent(t *testing.T) {
	l := New()

	h1 := l.Lock("a")
	defer h1.Unlock()

	// Locking a different key must not block while "a" is held.
	done := make(chan struct{})
	go func() {
		h2 := l.Lock("b")
		h2.Unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Lock on distinct key blocked while another key was held")
	}
}

func TestKeyLock_UnlockIdempotent(t *testing.T) {
	l := New()

	h := l.Lock("k")
	h.Unlock()
	h.Unlock() // must not panic or corrupt refcounts

	// Key must be lockable again after release.
	done := make(chan struct{})
	go func() {
		h2 := l.Lock("k")
		h2.Unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("key not lockable after idempotent unlock")
	}
}

func TestKeyLock_EntriesReleased(t *testing.T) {
	l := New()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h := l.Lock("hot")
				h.Unlock()
			}
		}()
	}
	wg.Wait()

	if n := l.Len(); n != 0 {
		t.Errorf("Expected 0 tracked keys after release, got %d", n)
	}
}

func TestKeyLock_WaiterAcquiresAfterRelease(t *testing.T) {
	l := New()

	h := l.Lock("k")

	acquired := make(chan struct{})
	go func() {
		h2 := l.Lock("k")
		close(acquired)
		h2.Unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("second Lock acquired while first still held")
	case <-time.After(50 * time.Millisecond):
	}

	h.Unlock()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never acquired lock after release")
	}
}
