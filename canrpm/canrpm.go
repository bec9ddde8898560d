// Package canrpm decodes engine telemetry frames from the vehicle CAN
// bus. Only a small set of vehicle-specific frame identifiers is
// understood; everything else on the bus is ignored.
package canrpm

import (
	"context"
	"encoding/binary"

	"github.com/brutella/can"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	frameRPM    uint32 = 0x316
	frameSpeed         = 0x153
	frameEngine        = 0x329
)

// EngineData carries the auxiliary engine readings broadcast in the
// engine status frame.
type EngineData struct {
	CoolantTemp int
	IntakeTemp  int
	Throttle    int
	Load        int
}

type Callbacks struct {
	RPM    func(rpm int)
	Speed  func(kmh int)
	Engine func(data EngineData)
}

type CANBus interface {
	SubscribeFunc(can.HandlerFunc)
	ConnectAndPublish() error
	Disconnect() error
	Publish(can.Frame) error
}

type Connection struct {
	bus CANBus
	cb  Callbacks
}

// to allow testing
var newBus = func(portName string) (CANBus, error) {
	return can.NewBusForInterfaceWithName(portName)
}

func Connect(portName string) (*Connection, error) {
	bus, err := newBus(portName)
	if err != nil {
		return nil, err
	}
	return &Connection{
		bus: bus,
	}, nil
}

func (c *Connection) Start(ctx context.Context, cb Callbacks) error {
	c.cb = cb
	c.bus.SubscribeFunc(c.handleFrame)
	log.Info("CAN bus opened and subscribed")

	go func() {
		<-ctx.Done()
		log.Infof("stopping can bus: %v", ctx.Err())
		if err := c.bus.Disconnect(); err != nil {
			log.WithField("err", err).Warn("unable to disconnect canbus after context")
		}
	}()

	return c.bus.ConnectAndPublish()
}

func (c *Connection) Close() error {
	if c.bus == nil {
		return errors.New("can bus not connected")
	}
	return c.bus.Disconnect()
}

func (c *Connection) handleFrame(frame can.Frame) {
	log.WithField("canID", frame.ID).
		WithField("length", frame.Length).
		Debug("received canbus frame")

	switch frame.ID {
	case frameRPM:
		rpm, err := rpmResult(frame)
		if err != nil {
			log.WithField("err", err).Warn("bad rpm frame")
			return
		}
		if c.cb.RPM != nil {
			c.cb.RPM(rpm)
		}
	case frameSpeed:
		if frame.Length < 2 {
			log.WithField("length", frame.Length).Warn("bad speed frame")
			return
		}
		if c.cb.Speed != nil {
			c.cb.Speed(int(frame.Data[1]))
		}
	case frameEngine:
		if frame.Length < 4 {
			log.WithField("length", frame.Length).Warn("bad engine frame")
			return
		}
		if c.cb.Engine != nil {
			c.cb.Engine(EngineData{
				CoolantTemp: int(frame.Data[0]) - 40,
				IntakeTemp:  int(frame.Data[1]) - 40,
				Throttle:    int(frame.Data[2]),
				Load:        int(frame.Data[3]),
			})
		}
	default:
		// not ours; plenty of other traffic on the bus
		log.WithField("canID", frame.ID).Debug("ignoring unknown canID")
	}
}

func rpmResult(frame can.Frame) (int, error) {
	if frame.Length < 2 {
		return 0, errors.Errorf("incorrect frame size for rpm: %v", frame.Length)
	}
	return DecodeRPM(frame.Data[0], frame.Data[1]), nil
}

// DecodeRPM converts the 16-bit big-endian RPM field to engine RPM. The
// bus encodes RPM multiplied by four; the shift truncates rather than
// rounds, so the result can be up to one RPM low.
func DecodeRPM(hi, lo byte) int {
	return int(binary.BigEndian.Uint16([]byte{hi, lo}) >> 2)
}
