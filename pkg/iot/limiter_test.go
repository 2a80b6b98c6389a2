package iot

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRateLimiterStore_Basic(t *testing.T) {
	store := NewRateLimiterStore(1, 2)

	limiter := store.GetLimiter("70B3D57ED0000001")
	if limiter == nil {
		t.Fatal("expected limiter, got nil")
	}
	if limiter.Limit() != 1 {
		t.Errorf("expected limit 1, got %v", limiter.Limit())
	}
}

func TestRateLimiterStore_CustomLimit(t *testing.T) {
	store := NewRateLimiterStore(1, 2)

	store.SetLimiter("70B3D57ED0000002", 5, 10)
	settings := store.Settings("70B3D57ED0000002")

	if settings.Rate != 5 {
		t.Errorf("expected rate 5, got %v", settings.Rate)
	}
	if settings.Burst != 10 {
		t.Errorf("expected burst 10, got %v", settings.Burst)
	}
}

func TestRateLimiterStore_Concurrency(t *testing.T) {
	store := NewRateLimiterStore(10, 5)
	devEUI := uuid.NewString()

	var wg sync.WaitGroup

	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.GetLimiter(devEUI) == nil {
				t.Error("expected limiter, got nil")
			}
		}()
	}

	wg.Wait()

	if store.GetLimiter(devEUI) != store.GetLimiter(devEUI) {
		t.Error("expected the same limiter for the same sensor")
	}
}

func TestRateLimiter_Enforcement(t *testing.T) {
	store := NewRateLimiterStore(2, 2) // 2 uplinks/sec

	devEUI := uuid.NewString()

	if !store.Allow(devEUI) || !store.Allow(devEUI) {
		t.Fatal("expected first two uplinks to be allowed")
	}

	if store.Allow(devEUI) {
		t.Error("expected third uplink to be rate limited")
	}

	// other sensors have their own bucket
	if !store.Allow(uuid.NewString()) {
		t.Error("expected an unrelated sensor to be allowed")
	}

	time.Sleep(600 * time.Millisecond)
	if !store.Allow(devEUI) {
		t.Error("expected one token to be available after refill")
	}
}
