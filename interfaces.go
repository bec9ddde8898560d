package shiftlight

import (
	"context"
	"io"

	"github.com/jnovak/shiftlight/canrpm"
	"github.com/jnovak/shiftlight/ledstrip"
)

type CANBus interface {
	Close() error
	Start(context.Context, canrpm.Callbacks) error
}

// GPSFix is a single position report from whatever GPS receiver is
// attached. Parsing the receiver's wire protocol is the driver's
// problem, not ours.
type GPSFix struct {
	Latitude   float64
	Longitude  float64
	Altitude   float64
	Speed      float64
	Satellites int
	HasFix     bool
}

type GPSCallbacks struct {
	NavData func(GPSFix)
}

type GPS interface {
	Close() error
	Start(context.Context, GPSCallbacks) error
}

// LEDStrip is the addressable LED driver: write a full color buffer,
// then commit to latch it onto the strip.
type LEDStrip interface {
	Write([]ledstrip.Color) error
	Commit() error
	Close() error
}

// Storage is the card/filesystem collaborator used for log files.
type Storage interface {
	Append(name string, p []byte) error
	List() ([]string, error)
	Free() (uint64, error)
	Open(name string) (io.ReadCloser, error)
}

type Forwarder interface {
	Forward(newTelemetry *Telemetry, prevTelemetry *Telemetry) error
}
