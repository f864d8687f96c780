package capture

import "time"

// FPSMeter measures the frame rate from the time between consecutive updates.
type FPSMeter struct {
	now  func() time.Time
	prev time.Time
}

// NewFPSMeter creates a meter that starts counting now. A nil now uses time.Now.
func NewFPSMeter(now func() time.Time) *FPSMeter {
	if now == nil {
		now = time.Now
	}
	return &FPSMeter{now: now, prev: now()}
}

// Update records a frame and returns the instantaneous rate. When no time has
// passed since the previous frame it returns 0 and keeps the previous timestamp.
func (m *FPSMeter) Update() float64 {
	current := m.now()
	elapsed := current.Sub(m.prev).Seconds()
	if elapsed <= 0 {
		return 0
	}
	m.prev = current
	return 1 / elapsed
}
