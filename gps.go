package shiftlight

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// minimum satellites before a fix is trusted
const minSatellites = 4

// gpsSource wraps whatever GPS receiver driver is wired in. The
// receiver delivers parsed fixes; we only filter and forward them.
type gpsSource struct {
	connect  func() (GPS, error)
	c        GPS
	sendChan chan<- gpsData
}

func (g *gpsSource) Name() string {
	return "gps"
}

func (g *gpsSource) Open() error {
	c, err := g.connect()
	g.c = c
	return err
}

func (g *gpsSource) Close() error {
	if g.c == nil {
		return nil
	}
	return g.c.Close()
}

func (g *gpsSource) Start(ctx context.Context) error {
	return g.c.Start(ctx, GPSCallbacks{
		NavData: g.navDataFn,
	})
}

func (g *gpsSource) navDataFn(fix GPSFix) {
	if !fix.HasFix {
		log.Warn("no satellite fix")
		return
	}
	if fix.Satellites < minSatellites {
		log.WithField("satellites", fix.Satellites).Warn("poor resolution")
		return
	}
	select {
	case g.sendChan <- gpsData{
		Latitude:   fix.Latitude,
		Longitude:  fix.Longitude,
		Altitude:   fix.Altitude,
		Speed:      fix.Speed,
		Satellites: fix.Satellites,
		HasFix:     true,
	}:
	default:
	}
}

func runGPS(ctx context.Context, connect func() (GPS, error), sendChan chan<- gpsData) {
	err := maintain(ctx, &gpsSource{
		connect:  connect,
		sendChan: sendChan,
	})
	if err != nil {
		log.Errorf("gps done: %v", err)
	}
}
