package capture

import (
	"testing"
	"time"
)

func TestFPSMeter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	meter := NewFPSMeter(func() time.Time { return now })

	// No time elapsed yet: the rate is skipped rather than dividing by zero.
	if got := meter.Update(); got != 0 {
		t.Errorf("Update() with zero elapsed = %v, want 0", got)
	}

	now = now.Add(40 * time.Millisecond)
	if got := meter.Update(); got < 24.999 || got > 25.001 {
		t.Errorf("Update() after 40ms = %v, want 25", got)
	}

	now = now.Add(100 * time.Millisecond)
	if got := meter.Update(); got < 9.999 || got > 10.001 {
		t.Errorf("Update() after 100ms = %v, want 10", got)
	}
}

func TestFPSMeter_ZeroElapsedKeepsPrevious(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	meter := NewFPSMeter(func() time.Time { return now })

	now = now.Add(50 * time.Millisecond)
	meter.Update()
	meter.Update() // zero elapsed, skipped

	now = now.Add(50 * time.Millisecond)
	if got := meter.Update(); got < 19.999 || got > 20.001 {
		t.Errorf("Update() = %v, want 20", got)
	}
}
