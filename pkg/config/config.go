package config

import (
	"fmt"
	"os"
	"time"

	"github.com/chewxy/math32"
	"gopkg.in/yaml.v3"
)

// Source kinds understood by the application.
const (
	SourceMock   = "mock"
	SourceSerial = "serial"
	SourceModbus = "modbus"
)

// Clock modes understood by the application.
const (
	ClockBoot   = "boot"   // start at Clock.BootTime and advance with uptime
	ClockSystem = "system" // host wall clock
	ClockUnset  = "unset"  // never initialized, always the sentinel
)

// Config represents the application configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Sampler SamplerConfig `yaml:"sampler"`
	Cycle   CycleConfig   `yaml:"cycle"`
	Store   StoreConfig   `yaml:"store"`
	Radio   RadioConfig   `yaml:"radio"`
	Clock   ClockConfig   `yaml:"clock"`
	Display DisplayConfig `yaml:"display"`
	Metrics MetricsConfig `yaml:"metrics"`
	Mock    MockConfig    `yaml:"mock"`
	Serial  SerialConfig  `yaml:"serial"`
	Modbus  ModbusConfig  `yaml:"modbus"`
}

// SourceConfig selects where raw ADC counts come from.
type SourceConfig struct {
	Kind string `yaml:"kind"` // mock, serial or modbus
}

// SerialConfig contains serial port configuration for the ADC bridge.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// ModbusConfig contains Modbus TCP configuration for a remote ADC.
type ModbusConfig struct {
	Endpoint string        `yaml:"endpoint"`
	UnitID   uint8         `yaml:"unit_id"`
	Register uint16        `yaml:"register"` // input register holding the raw count
	Timeout  time.Duration `yaml:"timeout"`
}

// SamplerConfig contains the raw-count to volts conversion constants.
type SamplerConfig struct {
	ReferenceVoltage float32 `yaml:"reference_voltage"`
	FullScaleCount   float32 `yaml:"full_scale_count"`
	DividerRatio     float32 `yaml:"divider_ratio"`
	Oversample       int     `yaml:"oversample"` // raw reads averaged per sample (0 or 1 = single read)
}

// CycleConfig contains telemetry cycle timing.
type CycleConfig struct {
	Interval     time.Duration `yaml:"interval"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// StoreConfig contains persistent log settings.
type StoreConfig struct {
	Path        string        `yaml:"path"`
	MaxAttempts int           `yaml:"max_attempts"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
}

// RadioConfig contains BLE peripheral settings.
type RadioConfig struct {
	Enabled            bool   `yaml:"enabled"`
	LocalName          string `yaml:"local_name"`
	ServiceUUID        string `yaml:"service_uuid"`
	CharacteristicUUID string `yaml:"characteristic_uuid"`
}

// ClockConfig contains timestamp provider settings.
type ClockConfig struct {
	Mode     string    `yaml:"mode"`
	BootTime time.Time `yaml:"boot_time"`
}

// DisplayConfig contains render surface settings.
type DisplayConfig struct {
	Headless bool   `yaml:"headless"` // console surface instead of a window
	Title    string `yaml:"title"`
}

// MetricsConfig contains the Prometheus endpoint settings.
type MetricsConfig struct {
	Address string `yaml:"address"` // empty disables the endpoint
}

// MockConfig contains mock ADC configuration.
type MockConfig struct {
	StartVoltage float32       `yaml:"start_voltage"` // battery voltage at start (V)
	EndVoltage   float32       `yaml:"end_voltage"`   // battery voltage when fully discharged (V)
	Discharge    time.Duration `yaml:"discharge"`     // time to go from start to end
	Noise        uint16        `yaml:"noise"`         // peak noise in raw counts
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Kind: SourceMock,
		},
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0",
			BaudRate: 115200,
		},
		Modbus: ModbusConfig{
			Endpoint: "localhost:502",
			UnitID:   1,
			Register: 0,
			Timeout:  time.Second,
		},
		Sampler: SamplerConfig{
			ReferenceVoltage: 3.3,
			FullScaleCount:   4096,
			DividerRatio:     2.0,
			Oversample:       1,
		},
		Cycle: CycleConfig{
			Interval:     2 * time.Second,
			PollInterval: 10 * time.Millisecond,
		},
		Store: StoreConfig{
			Path:        "log.txt",
			MaxAttempts: 3,
			RetryDelay:  100 * time.Millisecond,
		},
		Radio: RadioConfig{
			Enabled:            true,
			LocalName:          "ESP32S3_Battery",
			ServiceUUID:        "4fafc201-1fb5-459e-8fcc-c5c9c331914b",
			CharacteristicUUID: "beb5483e-36e1-4688-b7f5-ea07361b26a8",
		},
		Clock: ClockConfig{
			Mode:     ClockBoot,
			BootTime: time.Date(2025, time.March, 17, 14, 30, 0, 0, time.Local),
		},
		Display: DisplayConfig{
			Headless: false,
			Title:    "ESP32S3 - Battery Voltage",
		},
		Metrics: MetricsConfig{
			Address: "",
		},
		Mock: MockConfig{
			StartVoltage: 4.2,
			EndVoltage:   3.3,
			Discharge:    time.Hour,
			Noise:        4,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports configuration values that cannot be used at runtime.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceMock, SourceSerial, SourceModbus:
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}

	switch c.Clock.Mode {
	case ClockBoot, ClockSystem, ClockUnset:
	default:
		return fmt.Errorf("unknown clock mode %q", c.Clock.Mode)
	}

	for _, f := range []struct {
		name  string
		value float32
	}{
		{"reference_voltage", c.Sampler.ReferenceVoltage},
		{"full_scale_count", c.Sampler.FullScaleCount},
		{"divider_ratio", c.Sampler.DividerRatio},
	} {
		// !(v > 0) also rejects NaN.
		if !(f.value > 0) || math32.IsInf(f.value, 1) {
			return fmt.Errorf("sampler %s must be a finite value > 0, got %v", f.name, f.value)
		}
	}

	if c.Cycle.Interval <= 0 {
		return fmt.Errorf("cycle interval must be > 0, got %v", c.Cycle.Interval)
	}
	if c.Store.MaxAttempts < 1 {
		return fmt.Errorf("store max_attempts must be >= 1, got %d", c.Store.MaxAttempts)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Source.Kind == "" {
		c.Source.Kind = def.Source.Kind
	}

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Modbus.Endpoint == "" {
		c.Modbus.Endpoint = def.Modbus.Endpoint
	}
	if c.Modbus.Timeout == 0 {
		c.Modbus.Timeout = def.Modbus.Timeout
	}

	if c.Sampler.ReferenceVoltage == 0 {
		c.Sampler.ReferenceVoltage = def.Sampler.ReferenceVoltage
	}
	if c.Sampler.FullScaleCount == 0 {
		c.Sampler.FullScaleCount = def.Sampler.FullScaleCount
	}
	if c.Sampler.DividerRatio == 0 {
		c.Sampler.DividerRatio = def.Sampler.DividerRatio
	}
	if c.Sampler.Oversample == 0 {
		c.Sampler.Oversample = def.Sampler.Oversample
	}

	if c.Cycle.Interval == 0 {
		c.Cycle.Interval = def.Cycle.Interval
	}
	if c.Cycle.PollInterval == 0 {
		c.Cycle.PollInterval = def.Cycle.PollInterval
	}

	if c.Store.Path == "" {
		c.Store.Path = def.Store.Path
	}
	if c.Store.MaxAttempts == 0 {
		c.Store.MaxAttempts = def.Store.MaxAttempts
	}
	if c.Store.RetryDelay == 0 {
		c.Store.RetryDelay = def.Store.RetryDelay
	}

	if c.Radio.LocalName == "" {
		c.Radio.LocalName = def.Radio.LocalName
	}
	if c.Radio.ServiceUUID == "" {
		c.Radio.ServiceUUID = def.Radio.ServiceUUID
	}
	if c.Radio.CharacteristicUUID == "" {
		c.Radio.CharacteristicUUID = def.Radio.CharacteristicUUID
	}

	if c.Clock.Mode == "" {
		c.Clock.Mode = def.Clock.Mode
	}
	if c.Clock.Mode == ClockBoot && c.Clock.BootTime.IsZero() {
		c.Clock.BootTime = def.Clock.BootTime
	}

	if c.Display.Title == "" {
		c.Display.Title = def.Display.Title
	}

	if c.Mock.StartVoltage == 0 {
		c.Mock.StartVoltage = def.Mock.StartVoltage
	}
	if c.Mock.EndVoltage == 0 {
		c.Mock.EndVoltage = def.Mock.EndVoltage
	}
	if c.Mock.Discharge == 0 {
		c.Mock.Discharge = def.Mock.Discharge
	}
}
