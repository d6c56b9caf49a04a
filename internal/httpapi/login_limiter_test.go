package httpapi

import (
	"testing"
	"time"
)

func TestLoginLimiterWindow(t *testing.T) {
	l := newLoginLimiter(5*time.Minute, 3)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if !l.Allow("email:ana@example.com", base) {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("email:ana@example.com", base) {
		t.Fatal("fourth attempt inside the window should be blocked")
	}

	// Other keys are unaffected.
	if !l.Allow("ip:10.0.0.1", base) {
		t.Fatal("different key should not share the budget")
	}

	// Once the window slides past the burst, attempts flow again.
	if !l.Allow("email:ana@example.com", base.Add(5*time.Minute+time.Second)) {
		t.Fatal("attempt after the window should be allowed")
	}
}

func TestLoginLimiterDropsAgedKeys(t *testing.T) {
	l := newLoginLimiter(time.Minute, 5)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	l.Allow("email:old@example.com", base)
	l.Allow("email:old@example.com", base.Add(2*time.Minute))

	l.mu.Lock()
	n := len(l.entries["email:old@example.com"])
	l.mu.Unlock()
	if n != 1 {
		t.Fatalf("expected aged attempts pruned, got %d entries", n)
	}
}
