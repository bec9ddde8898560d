package shiftlight

import (
	"context"
	"io"
	"time"

	"github.com/jnovak/shiftlight/ledstrip"
	log "github.com/sirupsen/logrus"
)

const (
	channelBufferSize = 4

	// animation tick; 50 Hz
	tickInterval   = 20 * time.Millisecond
	logInterval    = 100 * time.Millisecond
	streamInterval = 200 * time.Millisecond
)

// Dashboard owns the cooperative loop tying everything together. Within
// one tick the order is fixed: CAN decode, staleness check,
// classification, animation render, LED commit, command handling,
// logging/streaming. All shared state is written here and only here.
type Dashboard struct {
	Telemetry Telemetry

	clock      Clock
	canPort    string
	gpsConnect func() (GPS, error)
	testMode   bool

	staleness *StalenessMonitor
	engine    *AnimationEngine
	proto     *CommandProtocol
	modes     *ModeMachine
	logw      *LogWriter

	strip LEDStrip
	out   io.Writer

	canChan chan canData
	gpsChan chan gpsData
	cmdChan chan []byte

	forwarders    []Forwarder
	prevTelemetry Telemetry

	lastLog    time.Time
	lastStream time.Time
	ledsLit    bool
}

func NewDashboard(cfg *Config, strip LEDStrip, store Storage, out io.Writer, clock Clock) *Dashboard {
	d := &Dashboard{
		clock:   clock,
		canPort: cfg.CANInterface,
		strip:   strip,
		out:     out,
		engine:  NewAnimationEngine(cfg.LEDCount),
		proto:   NewCommandProtocol(),
		canChan: make(chan canData, channelBufferSize),
		gpsChan: make(chan gpsData, channelBufferSize),
		cmdChan: make(chan []byte, channelBufferSize),
	}
	d.staleness = NewStalenessMonitor(clock())
	d.logw = NewLogWriter(store)
	d.modes = NewModeMachine(out, store, d.logw, &d.Telemetry)
	return d
}

func (d *Dashboard) Mode() Mode {
	return d.modes.Mode()
}

func (d *Dashboard) SetTestMode(on bool) {
	d.testMode = on
}

// SetGPS wires an optional GPS receiver driver.
func (d *Dashboard) SetGPS(connect func() (GPS, error)) {
	d.gpsConnect = connect
}

func (d *Dashboard) AddForwarder(fwd Forwarder) {
	d.forwarders = append(d.forwarders, fwd)
}

// Start launches the driver goroutines. The dashboard loop itself runs
// in Run.
func (d *Dashboard) Start(ctx context.Context) {
	if d.testMode {
		d.runTestMode(ctx)
		return
	}
	go runCAN(ctx, d.canPort, d.canChan)
	if d.gpsConnect != nil {
		go runGPS(ctx, d.gpsConnect, d.gpsChan)
	}
}

// ReadCommands pumps bytes from the host command channel into the loop.
func (d *Dashboard) ReadCommands(ctx context.Context, r io.Reader) {
	go func() {
		buf := make([]byte, 64)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case d.cmdChan <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if ctx.Err() == nil {
					log.WithField("err", err).Error("command channel read failed")
				}
				return
			}
		}
	}()
}

func (d *Dashboard) Run(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.Tick(d.clock())
		}
	}
}

// Tick runs one iteration of the cooperative loop.
func (d *Dashboard) Tick(now time.Time) {
	d.drainInputs(now)

	linkError := d.staleness.Errored(now)
	state := ClassifyVisual(&d.Telemetry, linkError)

	mode := d.modes.Mode()
	if animationEnabled(mode) {
		d.commit(d.engine.Render(state, &d.Telemetry, now))
		d.ledsLit = true
	} else if d.ledsLit {
		d.commit(d.engine.Blank())
		d.ledsLit = false
	}

	if cmd, ok := d.proto.Next(now); ok {
		d.modes.Apply(cmd)
		mode = d.modes.Mode()
	}

	if mode == ModeRunning && now.Sub(d.lastLog) >= logInterval {
		d.logw.Append(&d.Telemetry, now)
		d.lastLog = now
	}
	if mode == ModeLiveMonitor && now.Sub(d.lastStream) >= streamInterval {
		row := telemetryRow(&d.Telemetry, now, d.logw.Active(), d.logw.Errors())
		if _, err := io.WriteString(d.out, row+"\n"); err != nil {
			log.WithField("err", err).Warn("unable to stream telemetry")
		}
		d.lastStream = now
	}

	d.notifyForwarders()
}

// animation output is suppressed while idle or paused
func animationEnabled(mode Mode) bool {
	return mode != ModeIdle && mode != ModePaused
}

func (d *Dashboard) drainInputs(now time.Time) {
	for {
		select {
		case data := <-d.canChan:
			d.applyCAN(data, now)
		case g := <-d.gpsChan:
			d.applyGPS(g)
		case chunk := <-d.cmdChan:
			d.proto.Feed(chunk)
		default:
			return
		}
	}
}

func (d *Dashboard) applyCAN(data canData, now time.Time) {
	d.Telemetry.RPM = data.RPM
	if data.SpeedKnown {
		d.Telemetry.SpeedKmh = data.SpeedKmh
		d.Telemetry.SpeedKnown = true
	}
	d.Telemetry.CoolantTemp = data.CoolantTemp
	d.Telemetry.IntakeTemp = data.IntakeTemp
	d.Telemetry.Throttle = data.Throttle
	d.Telemetry.Load = data.Load
	d.Telemetry.LastFrame = now
	d.staleness.FrameReceived(now)
}

func (d *Dashboard) applyGPS(g gpsData) {
	d.Telemetry.Latitude = g.Latitude
	d.Telemetry.Longitude = g.Longitude
	d.Telemetry.Altitude = g.Altitude
	d.Telemetry.GPSSpeed = g.Speed
	d.Telemetry.Satellites = g.Satellites
	d.Telemetry.GPSFix = g.HasFix
}

func (d *Dashboard) commit(buf []ledstrip.Color) {
	if err := d.strip.Write(buf); err != nil {
		log.WithField("err", err).Warn("unable to write LED buffer")
		return
	}
	if err := d.strip.Commit(); err != nil {
		log.WithField("err", err).Warn("unable to commit LED buffer")
	}
}

func (d *Dashboard) notifyForwarders() {
	if telemetryEqual(d.Telemetry, d.prevTelemetry) {
		return
	}
	for _, fwd := range d.forwarders {
		if err := fwd.Forward(&d.Telemetry, &d.prevTelemetry); err != nil {
			log.WithField("err", err).Warn("forwarder failed")
		}
	}
	d.prevTelemetry = d.Telemetry
}

// telemetryEqual ignores the frame timestamp, which advances on every
// frame regardless of content.
func telemetryEqual(a, b Telemetry) bool {
	a.LastFrame = time.Time{}
	b.LastFrame = time.Time{}
	return a == b
}
