package adc

import (
	"fmt"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/itohio/gobatt/pkg/config"
)

// Mock simulates a battery discharging linearly behind the voltage divider.
type Mock struct {
	cfg     config.MockConfig
	sampler config.SamplerConfig
	now     func() time.Time

	mu        sync.RWMutex
	connected bool
	startTime time.Time
}

// NewMock creates a new mocked source. A nil cfg uses the defaults.
func NewMock(cfg *config.MockConfig, sampler *config.SamplerConfig) *Mock {
	def := config.Default()
	if cfg == nil {
		cfg = &def.Mock
	}
	if sampler == nil {
		sampler = &def.Sampler
	}

	return &Mock{
		cfg:     *cfg,
		sampler: *sampler,
		now:     time.Now,
	}
}

// Connect starts the simulated discharge.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true
	m.startTime = m.now()
	return nil
}

// Close stops the mocked source.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

// IsConnected returns whether the mock is running.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Read returns the raw count for the simulated battery voltage at this moment.
func (m *Mock) Read() uint16 {
	m.mu.RLock()
	connected := m.connected
	start := m.startTime
	m.mu.RUnlock()

	if !connected {
		return 0
	}

	elapsed := m.now().Sub(start)
	return m.countAt(elapsed)
}

// countAt converts the battery voltage after elapsed into a raw count.
func (m *Mock) countAt(elapsed time.Duration) uint16 {
	progress := float32(1)
	if m.cfg.Discharge > 0 {
		progress = math32.Min(float32(elapsed)/float32(m.cfg.Discharge), 1)
	}
	battery := m.cfg.StartVoltage - (m.cfg.StartVoltage-m.cfg.EndVoltage)*progress

	// Undo the divider and reference scaling
	count := battery / m.sampler.DividerRatio / m.sampler.ReferenceVoltage * m.sampler.FullScaleCount

	// Deterministic ripple instead of random noise
	t := float32(elapsed.Seconds())
	count += (math32.Sin(t*0.7) + math32.Cos(t*1.3)) * float32(m.cfg.Noise) * 0.5

	maxCount := m.sampler.FullScaleCount - 1
	count = math32.Max(0, math32.Min(math32.Round(count), maxCount))
	return uint16(count)
}
