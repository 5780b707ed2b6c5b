package pricing

import (
	"testing"
	"time"
)

func TestModelCacheHitAndExpiry(t *testing.T) {
	cache := newModelCache(50 * time.Millisecond)

	if _, ok := cache.Get(); ok {
		t.Fatal("empty cache must miss")
	}

	model := Model{Rates: Rates{CPUCoreHourly: 0.02, MemoryGiBHourly: 0.005}, Source: "aws"}
	cache.Set(model)

	cached, ok := cache.Get()
	if !ok {
		t.Fatal("expected cache hit right after Set")
	}
	if cached.CPUCoreHourly != 0.02 || cached.Source != "aws" {
		t.Errorf("cached model mismatch: %+v", cached)
	}

	time.Sleep(60 * time.Millisecond)

	if _, ok := cache.Get(); ok {
		t.Error("expected cache miss after TTL expiry")
	}
}

func TestModelCacheDisabled(t *testing.T) {
	cache := newModelCache(0)

	cache.Set(Model{Source: "aws"})

	if _, ok := cache.Get(); ok {
		t.Error("zero TTL must disable caching")
	}
}
