package forwarder

import "github.com/jnovak/shiftlight"

type Header struct {
	Type uint8
}

const (
	TypeTelemetry = 1
)

// Telemetry is the fixed-size wire form of a telemetry sample. Kept
// separate from the dashboard's own struct so the packet layout stays
// stable for binary encoding.
type Telemetry struct {
	RPM         uint16
	SpeedKmh    uint16
	CoolantTemp int16
	IntakeTemp  int16
	Throttle    uint8
	Load        uint8

	Latitude   float64
	Longitude  float64
	Altitude   float32
	GPSSpeed   float32
	Satellites uint8
	GPSFix     uint8
}

func fromTelemetry(t *shiftlight.Telemetry) Telemetry {
	fix := uint8(0)
	if t.GPSFix {
		fix = 1
	}
	return Telemetry{
		RPM:         uint16(t.RPM),
		SpeedKmh:    uint16(t.SpeedKmh),
		CoolantTemp: int16(t.CoolantTemp),
		IntakeTemp:  int16(t.IntakeTemp),
		Throttle:    uint8(t.Throttle),
		Load:        uint8(t.Load),
		Latitude:    t.Latitude,
		Longitude:   t.Longitude,
		Altitude:    float32(t.Altitude),
		GPSSpeed:    float32(t.GPSSpeed),
		Satellites:  uint8(t.Satellites),
		GPSFix:      fix,
	}
}
