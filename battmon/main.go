package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/prometheus/client_golang/prometheus"
	"tinygo.org/x/bluetooth"

	"github.com/itohio/gobatt/pkg/adc"
	"github.com/itohio/gobatt/pkg/clock"
	"github.com/itohio/gobatt/pkg/config"
	"github.com/itohio/gobatt/pkg/display"
	"github.com/itohio/gobatt/pkg/link"
	"github.com/itohio/gobatt/pkg/metrics"
	"github.com/itohio/gobatt/pkg/radio"
	"github.com/itohio/gobatt/pkg/sample"
	"github.com/itohio/gobatt/pkg/store"
	"github.com/itohio/gobatt/pkg/telemetry"
)

func main() {
	var (
		configFlag   = flag.String("config", "config.yaml", "Configuration file path")
		sourceFlag   = flag.String("source", "", "ADC source override (mock, serial, modbus)")
		portFlag     = flag.String("p", "", "Serial port override (e.g., /dev/ttyACM0)")
		headlessFlag = flag.Bool("headless", false, "Render to the terminal instead of a window")
		noRadioFlag  = flag.Bool("no-radio", false, "Do not start the BLE peripheral")
		metricsFlag  = flag.String("metrics", "", "Serve Prometheus metrics on this address (e.g., :9100)")
		listFlag     = flag.Bool("list-ports", false, "List serial ports and exit")
	)
	flag.Parse()

	if *listFlag {
		listPorts()
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *sourceFlag != "" {
		cfg.Source.Kind = *sourceFlag
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *headlessFlag {
		cfg.Display.Headless = true
	}
	if *noRadioFlag {
		cfg.Radio.Enabled = false
	}
	if *metricsFlag != "" {
		cfg.Metrics.Address = *metricsFlag
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// The log must be writable at boot; nothing else makes sense without it.
	opener := store.FileOpener{Path: cfg.Store.Path}
	if err := store.Probe(opener); err != nil {
		log.Fatalf("Storage initialization failed: %v", err)
	}
	log.Printf("Logging to %s", cfg.Store.Path)

	source := newSource(cfg)
	if err := source.Connect(); err != nil {
		log.Fatalf("Failed to connect ADC source (%s): %v", cfg.Source.Kind, err)
	}
	defer source.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	peripheral := radio.New()
	connection := link.New(peripheral)

	var notifier telemetry.Notifier
	if cfg.Radio.Enabled {
		err := peripheral.Start(bluetooth.DefaultAdapter, radio.Config{
			LocalName:          cfg.Radio.LocalName,
			ServiceUUID:        cfg.Radio.ServiceUUID,
			CharacteristicUUID: cfg.Radio.CharacteristicUUID,
		}, connection)
		if err != nil {
			log.Fatalf("Failed to start BLE peripheral: %v", err)
		}
		defer peripheral.Stop()
		notifier = peripheral
	}

	var recorder telemetry.Recorder
	if cfg.Metrics.Address != "" {
		reg := prometheus.NewRegistry()
		recorder = metrics.New(reg)
		go serveMetrics(cfg.Metrics.Address, reg)
	}

	var (
		surface display.Surface
		window  fyne.Window
	)
	if cfg.Display.Headless {
		surface = display.NewConsole(os.Stdout, cfg.Display.Title)
	} else {
		application := app.NewWithID("com.itohio.gobatt")
		window = application.NewWindow("Battery Voltage")
		view := display.NewWindow(cfg.Display.Title)
		window.SetContent(view.Content())
		window.Resize(fyne.NewSize(240, 240))
		surface = view
	}

	cycle, err := telemetry.New(telemetry.Config{
		Sampler:  sample.New(source, newClock(cfg), cfg.Sampler),
		Surface:  surface,
		Notifier: notifier,
		Logger:   store.New(opener, cfg.Store.MaxAttempts, cfg.Store.RetryDelay),
		Link:     connection,
		Recorder: recorder,
		Interval: cfg.Cycle.Interval,
	})
	if err != nil {
		log.Fatalf("Failed to create telemetry cycle: %v", err)
	}

	if window == nil {
		cycle.Run(ctx, cfg.Cycle.PollInterval)
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		cycle.Run(runCtx, cfg.Cycle.PollInterval)
	}()
	go func() {
		<-ctx.Done()
		fyne.Do(window.Close)
	}()

	window.ShowAndRun()
	cancel()
	<-done
}

// newSource builds the configured raw ADC source.
func newSource(cfg *config.Config) adc.Source {
	switch cfg.Source.Kind {
	case config.SourceSerial:
		return adc.NewSerial(cfg.Serial.Port, cfg.Serial.BaudRate)
	case config.SourceModbus:
		return adc.NewModbus(adc.ModbusConfig{
			Endpoint: cfg.Modbus.Endpoint,
			UnitID:   cfg.Modbus.UnitID,
			Register: cfg.Modbus.Register,
			Timeout:  cfg.Modbus.Timeout,
		})
	default:
		return adc.NewMock(&cfg.Mock, &cfg.Sampler)
	}
}

// newClock builds the configured timestamp provider.
func newClock(cfg *config.Config) clock.Provider {
	switch cfg.Clock.Mode {
	case config.ClockSystem:
		return clock.System{}
	case config.ClockUnset:
		return clock.NewBoot(time.Time{})
	default:
		return clock.NewBoot(cfg.Clock.BootTime)
	}
}

// listPorts prints the serial ports an ADC bridge may be attached to.
func listPorts() {
	ports, err := adc.Ports()
	if err != nil {
		log.Fatalf("Failed to list ports: %v", err)
	}
	for _, port := range ports {
		fmt.Println(port.Name)
	}
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))

	log.Printf("Serving metrics on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("Metrics server stopped: %v", err)
	}
}
