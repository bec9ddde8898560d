package shiftlight

import "time"

const (
	// silence on the bus before the link is considered down
	defaultStaleTimeout = 3 * time.Second
	// further silence before the error is shown to the driver, so a
	// brief bus gap doesn't flash red
	defaultStaleDebounce = 3 * time.Second
)

// StalenessMonitor tracks how long it has been since the last valid CAN
// frame and raises a debounced link-down condition. Recovery is
// immediate on the next valid frame.
type StalenessMonitor struct {
	Timeout  time.Duration
	Debounce time.Duration

	lastFrame time.Time
	down      bool
	downSince time.Time
}

func NewStalenessMonitor(now time.Time) *StalenessMonitor {
	return &StalenessMonitor{
		Timeout:   defaultStaleTimeout,
		Debounce:  defaultStaleDebounce,
		lastFrame: now,
	}
}

func (m *StalenessMonitor) FrameReceived(now time.Time) {
	m.lastFrame = now
	m.down = false
}

// LinkDown reports whether the silent period has exceeded the timeout.
func (m *StalenessMonitor) LinkDown(now time.Time) bool {
	if !m.down && now.Sub(m.lastFrame) > m.Timeout {
		m.down = true
		m.downSince = now
	}
	return m.down
}

// Errored reports whether the link-down condition has persisted past
// the debounce window and should be shown to the driver.
func (m *StalenessMonitor) Errored(now time.Time) bool {
	return m.LinkDown(now) && now.Sub(m.downSince) >= m.Debounce
}
