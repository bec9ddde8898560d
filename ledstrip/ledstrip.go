// Package ledstrip contains drivers for the addressable LED strip.
package ledstrip

import (
	"net"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Color struct {
	R, G, B uint8
}

// Scale returns the color dimmed to the given brightness in [0,1].
func (c Color) Scale(brightness float64) Color {
	if brightness < 0 {
		brightness = 0
	} else if brightness > 1 {
		brightness = 1
	}
	return Color{
		R: uint8(float64(c.R) * brightness),
		G: uint8(float64(c.G) * brightness),
		B: uint8(float64(c.B) * brightness),
	}
}

// Null discards all output. Used when no strip is attached.
type Null struct{}

func (Null) Write([]Color) error { return nil }
func (Null) Commit() error       { return nil }
func (Null) Close() error        { return nil }

// DRGB realtime protocol header: packet type, then the hold time in
// seconds before the controller falls back to its own effects. 255
// means hold until the next packet.
const (
	drgbType    = 2
	drgbTimeout = 255
)

// WLED streams color buffers to a WLED controller over its realtime
// UDP protocol (DRGB).
type WLED struct {
	conn    net.Conn
	pending []Color
}

func NewWLED(addr string) (*WLED, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to reach WLED controller at %s", addr)
	}
	log.WithField("addr", addr).Info("WLED strip connected")
	return &WLED{conn: conn}, nil
}

func (w *WLED) Write(colors []Color) error {
	if cap(w.pending) < len(colors) {
		w.pending = make([]Color, len(colors))
	}
	w.pending = w.pending[:len(colors)]
	copy(w.pending, colors)
	return nil
}

func (w *WLED) Commit() error {
	if w.conn == nil {
		return errors.New("WLED strip not connected")
	}
	buf := make([]byte, 2+3*len(w.pending))
	buf[0] = drgbType
	buf[1] = drgbTimeout
	for i, c := range w.pending {
		buf[2+3*i] = c.R
		buf[3+3*i] = c.G
		buf[4+3*i] = c.B
	}
	if _, err := w.conn.Write(buf); err != nil {
		return errors.Wrap(err, "unable to send LED frame")
	}
	return nil
}

func (w *WLED) Close() error {
	return w.conn.Close()
}
