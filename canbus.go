package shiftlight

import (
	"context"

	"github.com/jnovak/shiftlight/canrpm"
	log "github.com/sirupsen/logrus"
)

// canSource feeds decoded CAN telemetry into the dashboard loop. Each
// callback updates the running snapshot and sends it; receipt of a
// snapshot is the loop's signal that a valid frame arrived.
type canSource struct {
	port     string
	c        CANBus
	sendChan chan<- canData
	data     canData
}

// to allow testing
var canConnect = func(p string) (CANBus, error) {
	return canrpm.Connect(p)
}

func (bus *canSource) Name() string {
	return "canbus"
}

func (bus *canSource) Open() error {
	c, err := canConnect(bus.port)
	bus.c = c
	return err
}

func (bus *canSource) Close() error {
	if bus.c == nil {
		return nil
	}
	return bus.c.Close()
}

func (bus *canSource) Start(ctx context.Context) error {
	return bus.c.Start(ctx, canrpm.Callbacks{
		RPM: func(v int) {
			bus.data.RPM = v
			bus.send()
		},
		Speed: func(v int) {
			bus.data.SpeedKmh = v
			bus.data.SpeedKnown = true
			bus.send()
		},
		Engine: func(e canrpm.EngineData) {
			bus.data.CoolantTemp = e.CoolantTemp
			bus.data.IntakeTemp = e.IntakeTemp
			bus.data.Throttle = e.Throttle
			bus.data.Load = e.Load
			bus.send()
		},
	})
}

func (bus *canSource) send() {
	select {
	case bus.sendChan <- bus.data:
	default:
	}
}

func runCAN(ctx context.Context, port string, sendChan chan<- canData) {
	err := maintain(ctx, &canSource{
		port:     port,
		sendChan: sendChan,
	})
	if err != nil {
		log.Errorf("canbus done: %v", err)
	}
}
