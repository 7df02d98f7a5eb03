package sample

import (
	"github.com/chewxy/math32"
	"github.com/itohio/gobatt/pkg/adc"
	"github.com/itohio/gobatt/pkg/clock"
	"github.com/itohio/gobatt/pkg/config"
)

// Reading represents one converted battery voltage with its timestamp.
// It lives for a single telemetry cycle.
type Reading struct {
	Voltage   float32 // Battery voltage (V)
	Timestamp string  // clock.Layout or clock.Unset
}

// Sampler reads the raw source and converts counts to volts.
type Sampler struct {
	src   adc.Source
	clock clock.Provider
	cfg   config.SamplerConfig
}

// New creates a Sampler.
func New(src adc.Source, clk clock.Provider, cfg config.SamplerConfig) *Sampler {
	return &Sampler{
		src:   src,
		clock: clk,
		cfg:   cfg,
	}
}

// Sample reads the source once (or Oversample times) and returns a Reading.
// Out-of-range counts are converted as-is.
func (s *Sampler) Sample() Reading {
	raw := s.readRaw()
	return Reading{
		Voltage:   Convert(raw, s.cfg),
		Timestamp: s.clock.Timestamp(),
	}
}

// readRaw returns a single count or the rounded mean of Oversample counts.
func (s *Sampler) readRaw() float32 {
	n := s.cfg.Oversample
	if n <= 1 {
		return float32(s.src.Read())
	}

	var sum uint32
	for i := 0; i < n; i++ {
		sum += uint32(s.src.Read())
	}
	return math32.Round(float32(sum) / float32(n))
}

// Convert applies raw * (ReferenceVoltage / FullScaleCount) * DividerRatio.
func Convert(raw float32, cfg config.SamplerConfig) float32 {
	return raw * (cfg.ReferenceVoltage / cfg.FullScaleCount) * cfg.DividerRatio
}
