package shiftlight

import "time"

type gpsData struct {
	Latitude   float64
	Longitude  float64
	Altitude   float64
	Speed      float64
	Satellites int
	HasFix     bool
}

type canData struct {
	RPM        int
	SpeedKmh   int
	SpeedKnown bool

	CoolantTemp int
	IntakeTemp  int
	Throttle    int
	Load        int
}

// Telemetry is the merged view of everything the vehicle is telling us.
// It is written only by the dashboard loop and read by the classifier,
// logger and streamer.
type Telemetry struct {
	RPM        int
	SpeedKmh   int
	SpeedKnown bool

	CoolantTemp int
	IntakeTemp  int
	Throttle    int
	Load        int

	Latitude   float64
	Longitude  float64
	Altitude   float64
	GPSSpeed   float64
	Satellites int
	GPSFix     bool

	// time of the last valid CAN frame, for staleness tracking
	LastFrame time.Time
}

// Stationary reports whether the vehicle is known to be standing still.
// Without a speed source the vehicle is assumed to be moving so the RPM
// bands still apply.
func (t *Telemetry) Stationary() bool {
	return t.SpeedKnown && t.SpeedKmh == 0
}
