package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/jnovak/shiftlight"
	"github.com/jnovak/shiftlight/forwarder"
	"github.com/jnovak/shiftlight/ledstrip"
	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

var testMode = flag.Bool("testmode", false, "generate test data")
var printTelemetry = flag.Bool("print-telemetry", false, "print telemetry to stdout")
var forwarderConfig = flag.String("forwarder", "", "udp forwarder config file")

type printForwarder struct{}

func (printForwarder) Forward(newTelemetry *shiftlight.Telemetry, prevTelemetry *shiftlight.Telemetry) error {
	fmt.Printf("%+v\n", *newTelemetry)
	return nil
}

func main() {
	log.SetLevel(log.InfoLevel)
	flag.Parse()

	ctx := context.Background()

	cfg, err := shiftlight.LoadConfig("shiftlight.toml")
	if err != nil {
		log.Warnf("using default configuration: %v", err)
		cfg = shiftlight.DefaultConfig()
	}

	port, err := serial.Open(cfg.CommandPort, &serial.Mode{
		BaudRate: cfg.CommandBaud,
	})
	if err != nil {
		log.Fatalf("unable to open command port %s: %v", cfg.CommandPort, err)
	}
	defer port.Close()

	var strip shiftlight.LEDStrip = ledstrip.Null{}
	if cfg.WLEDAddress != "" {
		wled, err := ledstrip.NewWLED(cfg.WLEDAddress)
		if err != nil {
			log.Fatal("unable to open LED strip: ", err)
		}
		strip = wled
	}
	defer strip.Close()

	store, err := shiftlight.NewDirStore(cfg.StorageDir)
	if err != nil {
		log.Fatal("unable to open storage: ", err)
	}

	dash := shiftlight.NewDashboard(cfg, strip, store, port, shiftlight.SystemClock)
	dash.SetTestMode(*testMode)

	if *forwarderConfig != "" {
		fwder, err := forwarder.NewUDPForwarder(*forwarderConfig)
		if err != nil {
			log.Fatal("unable to load UDP forwarder: ", err)
		}
		go fwder.Start(ctx)
		dash.AddForwarder(fwder)
	}
	if *printTelemetry {
		dash.AddForwarder(printForwarder{})
	}

	dash.Start(ctx)
	dash.ReadCommands(ctx, port)
	if err := dash.Run(ctx); err != nil {
		log.Fatal("dashboard stopped: ", err)
	}
}
