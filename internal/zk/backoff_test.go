package zk

import (
	"math/rand"
	"testing"
	"time"
)

func TestNextBackoffDelayFirstAttempt(t *testing.T) {
	cfg := BackoffConfig{InitialDelay: 250 * time.Millisecond, Multiplier: 2.0, MaxDelay: 5 * time.Second}
	if got := NextBackoffDelay(cfg, 1, nil); got != 250*time.Millisecond {
		t.Fatalf("attempt 1 delay = %s", got)
	}
}

func TestNextBackoffDelayGrowsAndCaps(t *testing.T) {
	cfg := BackoffConfig{InitialDelay: 250 * time.Millisecond, Multiplier: 2.0, MaxDelay: 2 * time.Second}
	if got := NextBackoffDelay(cfg, 2, nil); got != 500*time.Millisecond {
		t.Fatalf("attempt 2 delay = %s", got)
	}
	if got := NextBackoffDelay(cfg, 10, nil); got != 2*time.Second {
		t.Fatalf("attempt 10 delay = %s, want cap", got)
	}
}

func TestNextBackoffDelayJitterStaysBounded(t *testing.T) {
	cfg := BackoffConfig{InitialDelay: 100 * time.Millisecond, Multiplier: 2.0, MaxDelay: time.Second, Jitter: true}
	rng := rand.New(rand.NewSource(1))
	for attempt := 2; attempt < 12; attempt++ {
		d := NextBackoffDelay(cfg, attempt, rng)
		if d < 0 || d > time.Duration(1.5*float64(time.Second)) {
			t.Fatalf("attempt %d delay %s out of bounds", attempt, d)
		}
	}
}

func TestNextBackoffDelayZeroInitial(t *testing.T) {
	if got := NextBackoffDelay(BackoffConfig{}, 3, nil); got != 0 {
		t.Fatalf("zero config delay = %s", got)
	}
}
