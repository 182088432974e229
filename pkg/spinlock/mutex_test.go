package spinlock

import (
	"sync"
	"testing"
)

func TestMutex(t *testing.T) {
	var (
		mu Mutex
		wg sync.WaitGroup
		n  int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				mu.Lock()
				n++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if n != 8000 {
		t.Fatalf("expected 8000, got %d", n)
	}
}

func TestMutexTryLock(t *testing.T) {
	var mu Mutex
	if !mu.TryLock() {
		t.Fatal("TryLock on unlocked mutex failed")
	}
	if mu.TryLock() {
		t.Fatal("TryLock on locked mutex succeeded")
	}
	mu.Unlock()
	if !mu.TryLock() {
		t.Fatal("TryLock after Unlock failed")
	}
	mu.Unlock()
}

func BenchmarkMutex(b *testing.B) {
	var mu Mutex
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			mu.Lock()
			mu.Unlock()
		}
	})
}
