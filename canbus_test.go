package shiftlight

import (
	"context"
	"sync"
	"testing"

	"github.com/jnovak/shiftlight/canrpm"
	"github.com/stretchr/testify/assert"
)

func TestRunCANBus(t *testing.T) {
	canChan := make(chan canData, channelBufferSize)

	origCanConnect := canConnect
	defer func() {
		canConnect = origCanConnect
	}()

	stub := createCANBusStub()
	canConnect = func(p string) (CANBus, error) {
		return stub, nil
	}

	source := &canSource{
		port:     "can0",
		sendChan: canChan,
	}

	// close before opening
	assert.NoError(t, source.Close())
	assert.NoError(t, source.Open())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		_ = source.Start(ctx)
		wg.Done()
	}()
	<-stub.startChan

	expectedData := canData{}

	stub.fnChan <- func() {
		stub.callbacks.RPM(3450)
	}
	data := <-canChan
	expectedData.RPM = 3450
	assert.Equal(t, expectedData, data)

	stub.fnChan <- func() {
		stub.callbacks.Speed(40)
	}
	data = <-canChan
	expectedData.SpeedKmh = 40
	expectedData.SpeedKnown = true
	assert.Equal(t, expectedData, data)

	stub.fnChan <- func() {
		stub.callbacks.Engine(canrpm.EngineData{
			CoolantTemp: 90,
			IntakeTemp:  25,
			Throttle:    42,
			Load:        77,
		})
	}
	data = <-canChan
	expectedData.CoolantTemp = 90
	expectedData.IntakeTemp = 25
	expectedData.Throttle = 42
	expectedData.Load = 77
	assert.Equal(t, expectedData, data)

	cancel()
	wg.Wait()
}
