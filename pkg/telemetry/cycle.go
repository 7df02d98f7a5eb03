// Package telemetry runs the periodic sample-and-fan-out cycle.
//
// Every interval one reading is taken and handed, in this order, to the
// display, to the wireless subscriber (only while one is connected) and to
// the persistent log. A failing sink never stops the ones after it.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/itohio/gobatt/pkg/display"
	"github.com/itohio/gobatt/pkg/sample"
)

// DefaultInterval is the logical period between cycles.
const DefaultInterval = 2 * time.Second

// Sampler produces one reading per call.
type Sampler interface {
	Sample() sample.Reading
}

// Notifier pushes a payload to the subscriber without waiting for an ack.
type Notifier interface {
	Notify(payload []byte) error
}

// Logger durably appends a reading.
type Logger interface {
	Append(r sample.Reading) error
}

// Link reports whether a subscriber is attached.
type Link interface {
	IsConnected() bool
}

// Recorder observes cycle outcomes. Implementations must be cheap.
type Recorder interface {
	CycleRan(r sample.Reading)
	Notified(err error)
	Persisted(err error)
}

// Config wires the cycle. Notifier and Recorder are optional.
type Config struct {
	Sampler  Sampler
	Surface  display.Surface
	Notifier Notifier
	Logger   Logger
	Link     Link
	Recorder Recorder
	Interval time.Duration
}

// Cycle owns all state of the telemetry loop.
type Cycle struct {
	sampler  Sampler
	surface  display.Surface
	notifier Notifier
	logger   Logger
	link     Link
	recorder Recorder
	interval time.Duration

	uptime   func() time.Duration
	lastTick time.Duration
}

// New validates cfg and returns a Cycle measuring time from now.
func New(cfg Config) (*Cycle, error) {
	if cfg.Sampler == nil {
		return nil, errors.New("telemetry: sampler required")
	}
	if cfg.Surface == nil {
		return nil, errors.New("telemetry: surface required")
	}
	if cfg.Logger == nil {
		return nil, errors.New("telemetry: logger required")
	}
	if cfg.Link == nil {
		return nil, errors.New("telemetry: link required")
	}
	if cfg.Interval < 0 {
		return nil, fmt.Errorf("telemetry: interval must be >= 0, got %v", cfg.Interval)
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}

	start := time.Now()
	return &Cycle{
		sampler:  cfg.Sampler,
		surface:  cfg.Surface,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
		link:     cfg.Link,
		recorder: cfg.Recorder,
		interval: cfg.Interval,
		uptime:   func() time.Duration { return time.Since(start) },
	}, nil
}

// Tick runs one cycle if the interval has elapsed since the previous one and
// reports whether it did. It never sleeps.
func (c *Cycle) Tick() bool {
	now := c.uptime()
	if now-c.lastTick < c.interval {
		return false
	}
	c.lastTick = now

	r := c.sampler.Sample()
	if c.recorder != nil {
		c.recorder.CycleRan(r)
	}

	c.render(r)
	c.notify(r)
	c.persist(r)
	return true
}

// Run polls Tick every poll until ctx is done.
func (c *Cycle) Run(ctx context.Context, poll time.Duration) {
	if poll <= 0 {
		poll = 10 * time.Millisecond
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		c.Tick()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *Cycle) render(r sample.Reading) {
	c.surface.Clear()
	c.surface.Print(RenderText(r))
}

func (c *Cycle) notify(r sample.Reading) {
	if c.notifier == nil || !c.link.IsConnected() {
		return
	}

	payload, err := Payload(r)
	if err == nil {
		err = c.notifier.Notify(payload)
	}
	if err != nil {
		log.Printf("Notify failed: %v", err)
	}
	if c.recorder != nil {
		c.recorder.Notified(err)
	}
}

func (c *Cycle) persist(r sample.Reading) {
	err := c.logger.Append(r)
	if err != nil {
		log.Printf("Error: could not write reading %s: %v", r.Timestamp, err)
	}
	if c.recorder != nil {
		c.recorder.Persisted(err)
	}
}

// RenderText is the line drawn on the display.
func RenderText(r sample.Reading) string {
	return fmt.Sprintf("Voltage: %.2f V", r.Voltage)
}

// volts marshals as a JSON number with exactly two decimals.
type volts float32

func (v volts) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(v), 'f', 2, 32), nil
}

type payload struct {
	Voltage volts `json:"voltage"`
}

// Payload is the notification body: {"voltage":X.XX}.
func Payload(r sample.Reading) ([]byte, error) {
	return json.Marshal(payload{Voltage: volts(r.Voltage)})
}
