package shiftlight

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/jnovak/shiftlight/ledstrip"
	"github.com/stretchr/testify/assert"
)

type dashFixture struct {
	dash  *Dashboard
	strip *stripStub
	store *memStore
	out   *bytes.Buffer
	clock *fakeClock
}

func newDashFixture() *dashFixture {
	f := &dashFixture{
		strip: &stripStub{},
		store: newMemStore(),
		out:   &bytes.Buffer{},
		clock: newFakeClock(),
	}
	cfg := DefaultConfig()
	f.dash = NewDashboard(cfg, f.strip, f.store, f.out, f.clock.Now)
	return f
}

func (f *dashFixture) command(line string) {
	f.dash.cmdChan <- []byte(line + "\n")
}

func (f *dashFixture) tick() {
	f.dash.Tick(f.clock.Now())
}

// advance time in loop-sized steps, ticking as the device would
func (f *dashFixture) run(d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += tickInterval {
		f.clock.advance(tickInterval)
		f.tick()
	}
}

func TestBootsIdleWithLEDsOff(t *testing.T) {
	f := newDashFixture()
	f.run(time.Second)
	assert.Equal(t, ModeIdle, f.dash.Mode())
	assert.Zero(t, f.strip.commits, "no LED output while idle")
}

func TestStartThenNormalDrivingBar(t *testing.T) {
	f := newDashFixture()

	f.command("START")
	f.tick()
	assert.Equal(t, "OK\n", f.out.String())
	assert.Equal(t, ModeRunning, f.dash.Mode())

	f.dash.canChan <- canData{RPM: 3450, SpeedKmh: 40, SpeedKnown: true}
	f.run(tickInterval)

	// (3450-2501)/(4500-2501) of 8 pixels per side rounds to 4
	assert.Equal(t, 8, f.strip.litCount())
	assert.Equal(t, colorBar, f.strip.buf[0])
	assert.Equal(t, colorBar, f.strip.buf[3])
	assert.Equal(t, ledstrip.Color{}, f.strip.buf[4])
	assert.Equal(t, colorBar, f.strip.buf[15])
}

func TestLinkErrorAfterSilence(t *testing.T) {
	f := newDashFixture()
	f.command("START")
	f.tick()
	f.dash.canChan <- canData{RPM: 3000, SpeedKmh: 50, SpeedKnown: true}
	f.tick()

	// run silent and record when the alert animation first shows
	erroredAfter := time.Duration(0)
	for elapsed := time.Duration(0); elapsed <= 6500*time.Millisecond; elapsed += tickInterval {
		f.clock.advance(tickInterval)
		f.tick()
		if f.strip.buf[0] == colorError || f.strip.buf[1] == colorError {
			erroredAfter = elapsed + tickInterval
			break
		}
	}
	assert.NotZero(t, erroredAfter, "link error never surfaced")
	assert.GreaterOrEqual(t, erroredAfter, 6*time.Second)
	assert.LessOrEqual(t, erroredAfter, 6200*time.Millisecond)

	// a single frame recovers instantly
	f.dash.canChan <- canData{RPM: 3000, SpeedKmh: 50, SpeedKnown: true}
	f.clock.advance(tickInterval)
	f.tick()
	assert.Equal(t, colorBar, f.strip.buf[0])
}

func TestPauseClearsLEDs(t *testing.T) {
	f := newDashFixture()
	f.command("START")
	f.tick()
	f.dash.canChan <- canData{RPM: 3000, SpeedKmh: 50, SpeedKnown: true}
	f.run(tickInterval)
	assert.NotZero(t, f.strip.litCount())

	// the command waits out the inter-command interval, then the next
	// tick blanks the strip
	f.command("PAUSE")
	f.run(5 * tickInterval)
	assert.Zero(t, f.strip.litCount(), "pause must blank the strip")

	writes := f.strip.writes
	f.run(time.Second)
	assert.Equal(t, writes, f.strip.writes, "no further LED writes while paused")
}

func TestLoggingOnlyWhileRunning(t *testing.T) {
	f := newDashFixture()
	f.command("START")
	f.tick()
	f.dash.canChan <- canData{RPM: 2200, SpeedKmh: 30, SpeedKnown: true}
	f.run(time.Second)

	file := f.store.files["LOG00001.CSV"]
	rows := strings.Count(string(file), "\n")
	assert.Greater(t, rows, 5, "rows should accumulate while running")

	f.command("PAUSE")
	f.run(2 * tickInterval)
	paused := len(f.store.files["LOG00001.CSV"])
	f.run(time.Second)
	assert.Equal(t, paused, len(f.store.files["LOG00001.CSV"]),
		"no log writes while paused")
}

func TestLiveMonitorStreamsRows(t *testing.T) {
	f := newDashFixture()
	f.command("LIVE")
	f.tick()
	assert.Equal(t, "LIVE\n", f.out.String())
	f.out.Reset()

	f.dash.canChan <- canData{RPM: 4000, SpeedKmh: 80, SpeedKnown: true}
	f.run(time.Second)

	lines := strings.Split(strings.TrimSpace(f.out.String()), "\n")
	assert.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, len(strings.Split(logHeader, ",")),
		len(strings.Split(lines[0], ",")))
	assert.Contains(t, lines[0], ",4000,80,")

	// streaming does not write to storage
	assert.Empty(t, f.store.files)

	// the strip stays live in monitor mode
	assert.NotZero(t, f.strip.litCount())
}

func TestCommandRateLimiting(t *testing.T) {
	f := newDashFixture()
	f.command("STATUS")
	f.command("STATUS")
	f.tick()
	assert.Equal(t, 1, strings.Count(f.out.String(), "St:"),
		"second command must wait out the interval")

	f.run(3 * tickInterval)
	assert.Equal(t, 2, strings.Count(f.out.String(), "St:"))
}

func TestForwarderNotifiedOnChange(t *testing.T) {
	f := newDashFixture()
	fwd := &forwarderStub{}
	f.dash.AddForwarder(fwd)

	f.dash.canChan <- canData{RPM: 1500, SpeedKmh: 20, SpeedKnown: true}
	f.run(tickInterval)
	assert.Equal(t, 1, fwd.calls)
	assert.Equal(t, 1500, fwd.telemetry.RPM)

	// unchanged telemetry does not notify again
	f.run(time.Second)
	assert.Equal(t, 1, fwd.calls)

	f.dash.gpsChan <- gpsData{Latitude: 43.65, HasFix: true, Satellites: 8}
	f.run(tickInterval)
	assert.Equal(t, 2, fwd.calls)
	assert.Equal(t, 43.65, fwd.telemetry.Latitude)
}
