package shiftlight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStalenessDebounce(t *testing.T) {
	clock := newFakeClock()
	m := NewStalenessMonitor(clock.Now())

	// tick at 100ms and record when the error first shows
	erroredAt := time.Duration(0)
	for elapsed := time.Duration(0); elapsed <= 6500*time.Millisecond; elapsed += 100 * time.Millisecond {
		clock.advance(100 * time.Millisecond)
		if m.Errored(clock.Now()) {
			erroredAt = elapsed + 100*time.Millisecond
			break
		}
	}
	assert.NotZero(t, erroredAt, "error never surfaced")
	assert.GreaterOrEqual(t, erroredAt, 6*time.Second)
	assert.LessOrEqual(t, erroredAt, 6200*time.Millisecond)
}

func TestStalenessNoErrorBeforeTimeout(t *testing.T) {
	clock := newFakeClock()
	m := NewStalenessMonitor(clock.Now())

	clock.advance(2900 * time.Millisecond)
	assert.False(t, m.LinkDown(clock.Now()))
	assert.False(t, m.Errored(clock.Now()))

	// condition detected, but still debouncing
	clock.advance(200 * time.Millisecond)
	assert.True(t, m.LinkDown(clock.Now()))
	assert.False(t, m.Errored(clock.Now()))
}

func TestStalenessInstantRecovery(t *testing.T) {
	clock := newFakeClock()
	m := NewStalenessMonitor(clock.Now())

	clock.advance(4 * time.Second)
	assert.True(t, m.LinkDown(clock.Now()))
	clock.advance(4 * time.Second)
	assert.True(t, m.Errored(clock.Now()))

	m.FrameReceived(clock.Now())
	assert.False(t, m.LinkDown(clock.Now()))
	assert.False(t, m.Errored(clock.Now()))
}

func TestStalenessFramesKeepLinkUp(t *testing.T) {
	clock := newFakeClock()
	m := NewStalenessMonitor(clock.Now())

	for i := 0; i < 100; i++ {
		clock.advance(time.Second)
		m.FrameReceived(clock.Now())
		assert.False(t, m.Errored(clock.Now()))
	}
}
