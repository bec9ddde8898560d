package shiftlight

import (
	"context"
	"time"
)

// runTestMode generates synthetic telemetry so the strip and the host
// protocol can be exercised on a bench with no vehicle attached.
func (d *Dashboard) runTestMode(ctx context.Context) {
	can := canData{SpeedKnown: true}
	gps := gpsData{
		Latitude:   43.6532,
		Longitude:  -79.3832,
		Satellites: 9,
		HasFix:     true,
	}

	go func() {
		down := false
		for {
			select {
			case <-time.Tick(time.Millisecond * 50):
			case <-ctx.Done():
				return
			}
			d.canChan <- can

			if down {
				can.RPM -= 50
			} else {
				can.RPM += 50
			}
			if can.RPM >= 7600 {
				down = true
			} else if can.RPM <= 0 {
				down = false
			}
			can.SpeedKmh = can.RPM / 60
			can.Throttle = can.RPM / 80
			can.Load = can.RPM / 100
		}
	}()

	go func() {
		down := false
		for {
			select {
			case <-time.Tick(time.Millisecond * 500):
			case <-ctx.Done():
				return
			}
			d.gpsChan <- gps

			if down {
				gps.Speed -= 0.5
				gps.Latitude -= 0.0001
			} else {
				gps.Speed += 0.5
				gps.Latitude += 0.0001
			}
			if gps.Speed >= 120 {
				down = true
			} else if gps.Speed <= 0 {
				down = false
			}
		}
	}()
}
