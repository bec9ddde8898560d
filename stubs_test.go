package shiftlight

import (
	"bytes"
	"context"
	"io"
	"sort"
	"time"

	"github.com/jnovak/shiftlight/canrpm"
	"github.com/jnovak/shiftlight/ledstrip"
	"github.com/pkg/errors"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type memStore struct {
	files     map[string][]byte
	appendErr error
	listErr   error
	free      uint64
}

func newMemStore() *memStore {
	return &memStore{
		files: map[string][]byte{},
		free:  10 << 20,
	}
}

func (s *memStore) Append(name string, p []byte) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.files[name] = append(s.files[name], p...)
	return nil
}

func (s *memStore) List() ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	names := make([]string, 0, len(s.files))
	for n := range s.files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (s *memStore) Free() (uint64, error) {
	return s.free, nil
}

func (s *memStore) Open(name string) (io.ReadCloser, error) {
	data, ok := s.files[name]
	if !ok {
		return nil, errors.Errorf("no such file %s", name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type stripStub struct {
	buf     []ledstrip.Color
	commits int
	writes  int
}

func (s *stripStub) Write(colors []ledstrip.Color) error {
	s.buf = append(s.buf[:0], colors...)
	s.writes++
	return nil
}

func (s *stripStub) Commit() error {
	s.commits++
	return nil
}

func (s *stripStub) Close() error {
	return nil
}

func (s *stripStub) litCount() int {
	n := 0
	for _, c := range s.buf {
		if c != (ledstrip.Color{}) {
			n++
		}
	}
	return n
}

type sensorStub struct {
	startChan chan struct{}
	errChan   chan error
	fnChan    chan func()
}

func createSensorStub() *sensorStub {
	return &sensorStub{
		startChan: make(chan struct{}),
		errChan:   make(chan error),
		fnChan:    make(chan func()),
	}
}

func (s *sensorStub) Close() error {
	return nil
}

func (s *sensorStub) start(ctx context.Context) error {
	select {
	case s.startChan <- struct{}{}:
	default:
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-s.errChan:
			return err
		case fn := <-s.fnChan:
			fn()
		}
	}
}

type canBusStub struct {
	sensorStub
	callbacks canrpm.Callbacks
}

func createCANBusStub() *canBusStub {
	return &canBusStub{
		sensorStub: *createSensorStub(),
	}
}

func (c *canBusStub) Start(ctx context.Context, callbacks canrpm.Callbacks) error {
	c.callbacks = callbacks
	return c.sensorStub.start(ctx)
}

type gpsStub struct {
	sensorStub
	callbacks GPSCallbacks
}

func createGPSStub() *gpsStub {
	return &gpsStub{
		sensorStub: *createSensorStub(),
	}
}

func (g *gpsStub) Start(ctx context.Context, callbacks GPSCallbacks) error {
	g.callbacks = callbacks
	return g.sensorStub.start(ctx)
}

type forwarderStub struct {
	telemetry *Telemetry
	calls     int
}

func (fwd *forwarderStub) Forward(newTelemetry *Telemetry, prevTelemetry *Telemetry) error {
	fwd.telemetry = newTelemetry
	fwd.calls++
	return nil
}
