package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jknair0/beforeeach"
)

var (
	c       *Cache
	nowTime time.Time
)

func setUp() {
	nowTime = time.Unix(1700000000, 0)
	c = New()
	c.now = func() time.Time { return nowTime }
}

func tearDown() {
	c = nil
}

var it = beforeeach.Create(setUp, tearDown)

func TestSetThenGet(t *testing.T) {
	it(func() {
		c.Set("fp1", "value1", time.Hour)

		got, ok := c.Get("fp1")
		if !ok {
			t.Fatal("expected a hit immediately after Set")
		}
		if got != "value1" {
			t.Errorf("got %q, want %q", got, "value1")
		}
	})
}

func TestGetMissing(t *testing.T) {
	it(func() {
		if _, ok := c.Get("absent"); ok {
			t.Error("expected a miss for an absent fingerprint")
		}
	})
}

func TestExpiry(t *testing.T) {
	it(func() {
		c.Set("fp1", "value1", time.Hour)

		nowTime = nowTime.Add(time.Hour - time.Second)
		if _, ok := c.Get("fp1"); !ok {
			t.Error("entry expired before its TTL elapsed")
		}

		nowTime = nowTime.Add(time.Second)
		if _, ok := c.Get("fp1"); ok {
			t.Error("expected a miss once now >= storedAt + ttl")
		}
	})
}

func TestOverwriteResetsExpiry(t *testing.T) {
	it(func() {
		c.Set("fp1", "old", time.Hour)
		nowTime = nowTime.Add(30 * time.Minute)
		c.Set("fp1", "new", time.Hour)

		nowTime = nowTime.Add(45 * time.Minute)
		got, ok := c.Get("fp1")
		if !ok {
			t.Fatal("overwritten entry should live a full TTL from the second Set")
		}
		if got != "new" {
			t.Errorf("got %q, want %q", got, "new")
		}
	})
}

func TestSetAfterExpiryBehavesAsFresh(t *testing.T) {
	it(func() {
		c.Set("fp1", "old", time.Minute)
		nowTime = nowTime.Add(2 * time.Minute)
		if _, ok := c.Get("fp1"); ok {
			t.Fatal("entry should have expired")
		}

		c.Set("fp1", "new", time.Minute)
		got, ok := c.Get("fp1")
		if !ok || got != "new" {
			t.Errorf("got (%q, %v), want (%q, true)", got, ok, "new")
		}
	})
}

func TestDefaultTTLFallback(t *testing.T) {
	it(func() {
		c.Set("fp1", "value1", 0)

		nowTime = nowTime.Add(DefaultTTL - time.Second)
		if _, ok := c.Get("fp1"); !ok {
			t.Error("non-positive ttl should fall back to DefaultTTL")
		}
		nowTime = nowTime.Add(2 * time.Second)
		if _, ok := c.Get("fp1"); ok {
			t.Error("entry should expire after DefaultTTL")
		}
	})
}

func TestLen(t *testing.T) {
	it(func() {
		c.Set("fp1", "a", time.Hour)
		c.Set("fp2", "b", time.Hour)
		c.Set("fp1", "c", time.Hour)

		if got := c.Len(); got != 2 {
			t.Errorf("Len() = %d, want 2", got)
		}
	})
}

func TestConcurrentAccess(t *testing.T) {
	it(func() {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			fp := fmt.Sprintf("fp%d", i%5)
			go func(fp string) {
				defer wg.Done()
				c.Set(fp, "value", time.Hour)
			}(fp)
			go func(fp string) {
				defer wg.Done()
				c.Get(fp)
			}(fp)
		}
		wg.Wait()

		for i := 0; i < 5; i++ {
			fp := fmt.Sprintf("fp%d", i)
			if got, ok := c.Get(fp); !ok || got != "value" {
				t.Errorf("after concurrent writes, Get(%q) = (%q, %v), want (%q, true)", fp, got, ok, "value")
			}
		}
	})
}

func TestFingerprintDeterminism(t *testing.T) {
	content := []byte("prompt with image payload")
	if Fingerprint(content) != Fingerprint([]byte("prompt with image payload")) {
		t.Error("identical content must yield identical fingerprints")
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	a := Fingerprint([]byte("prompt A"))
	b := Fingerprint([]byte("prompt B"))
	if a == b {
		t.Error("different content must yield different fingerprints")
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(a))
	}
}
