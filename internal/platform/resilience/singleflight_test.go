package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do(t *testing.T) {
	var g SingleFlight[string]
	var counter int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			got, err, _ := g.Do("list:pan_setkacup:1", func() (string, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(20 * time.Millisecond)
				return "ok", nil
			})
			if err != nil || got != "ok" {
				t.Errorf("singleflight call failed: got=%q err=%v", got, err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
}

func TestSingleFlight_ForgetsKeyAfterCompletion(t *testing.T) {
	var g SingleFlight[int]
	errBoom := errors.New("boom")

	if _, err, _ := g.Do("k", func() (int, error) { return 0, errBoom }); !errors.Is(err, errBoom) {
		t.Fatalf("expected error, got %v", err)
	}
	got, err, shared := g.Do("k", func() (int, error) { return 7, nil })
	if err != nil || got != 7 || shared {
		t.Fatalf("expected fresh call, got=%d err=%v shared=%t", got, err, shared)
	}
}
