package visits

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryCounterReturnsPreviousCount(t *testing.T) {
	c := NewMemoryCounter()
	ctx := context.Background()

	for want := int64(0); want < 3; want++ {
		got, err := c.Hit(ctx, "session-a")
		if err != nil {
			t.Fatalf("Hit: %v", err)
		}
		if got != want {
			t.Fatalf("Hit #%d = %d, want %d", want+1, got, want)
		}
	}

	if got, _ := c.Hit(ctx, "session-b"); got != 0 {
		t.Fatalf("new session starts at %d, want 0", got)
	}
}

func TestMemoryCounterConcurrentHits(t *testing.T) {
	c := NewMemoryCounter()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Hit(ctx, "shared")
		}()
	}
	wg.Wait()

	if got, _ := c.Hit(ctx, "shared"); got != 50 {
		t.Fatalf("after 50 hits count = %d", got)
	}
}
