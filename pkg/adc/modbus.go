package adc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// registerReader is the subset of modbus.Client the source needs.
type registerReader interface {
	ReadInputRegisters(address, quantity uint16) ([]byte, error)
}

// ModbusConfig is minimal transport config.
type ModbusConfig struct {
	Endpoint string
	UnitID   uint8
	Register uint16
	Timeout  time.Duration
}

// Modbus reads the raw count from a single input register (FC 4) of a
// Modbus TCP ADC module. Every Read is one request.
type Modbus struct {
	cfg ModbusConfig

	mu        sync.Mutex
	handler   *modbus.TCPClientHandler
	client    registerReader
	last      uint16
	connected bool
}

// NewModbus creates a Modbus source. Connect must be called before Read.
func NewModbus(cfg ModbusConfig) *Modbus {
	return &Modbus{cfg: cfg}
}

// Connect dials the Modbus endpoint.
func (m *Modbus) Connect() error {
	if m.cfg.Endpoint == "" {
		return errors.New("modbus source: endpoint required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	handler := modbus.NewTCPClientHandler(m.cfg.Endpoint)
	handler.Timeout = m.cfg.Timeout
	handler.SlaveId = m.cfg.UnitID
	if err := handler.Connect(); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", m.cfg.Endpoint, err)
	}

	m.handler = handler
	m.client = modbus.NewClient(handler)
	m.connected = true
	return nil
}

// Close closes the TCP connection.
func (m *Modbus) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}
	m.connected = false
	m.client = nil
	if m.handler == nil {
		return nil
	}
	err := m.handler.Close()
	m.handler = nil
	return err
}

// Read fetches the register. On failure the previous count is returned.
func (m *Modbus) Read() uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return m.last
	}

	data, err := m.client.ReadInputRegisters(m.cfg.Register, 1)
	if err != nil {
		log.Printf("Modbus read failed (register=%d): %v", m.cfg.Register, err)
		return m.last
	}
	if len(data) < 2 {
		log.Printf("Modbus short response: %d bytes", len(data))
		return m.last
	}

	m.last = binary.BigEndian.Uint16(data)
	return m.last
}

// IsConnected returns whether the TCP connection is open.
func (m *Modbus) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}
