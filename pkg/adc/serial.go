package adc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"go.bug.st/serial"
)

// DefaultBaudRate is the baud rate the bridge firmware talks at.
const DefaultBaudRate = 115200

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial reads raw counts streamed by the ADC bridge firmware, one decimal
// count per line. Read returns the most recent count received.
type Serial struct {
	port     string
	baudRate int

	conn      serial.Port
	latest    atomic.Uint32
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	done      chan struct{}
}

// NewSerial creates a new bridge source for the specified port and baud rate.
func NewSerial(port string, baudRate int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	return &Serial{
		port:     port,
		baudRate: baudRate,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading counts.
func (s *Serial) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return fmt.Errorf("already connected")
	}

	port, err := serial.Open(s.port, &serial.Mode{BaudRate: s.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.port, err)
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.conn = port
	s.connected = true
	s.done = make(chan struct{})

	go s.readCounts(port, s.done)

	return nil
}

// Close closes the port and waits for the reader to stop.
func (s *Serial) Close() error {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return nil
	}

	s.cancel()
	if err := s.conn.Close(); err != nil {
		log.Printf("Error closing serial port: %v", err)
	}
	s.conn = nil
	s.connected = false
	done := s.done
	s.mu.Unlock()

	<-done
	return nil
}

// Read returns the most recently received raw count.
func (s *Serial) Read() uint16 {
	return uint16(s.latest.Load())
}

// IsConnected returns whether the port is currently open.
func (s *Serial) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// readCounts reads lines from r until it fails or the source is closed.
func (s *Serial) readCounts(r io.Reader, done chan<- struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readCounts: %v", r)
		}
	}()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		count, err := parseLine(line)
		if err != nil {
			log.Printf("Failed to parse line '%s': %v", line, err)
			continue
		}
		s.latest.Store(uint32(count))
	}

	if err := scanner.Err(); err != nil && s.ctx.Err() == nil {
		log.Printf("Error reading from serial port: %v", err)
	}
}

// parseLine parses one bridge line into a raw count.
// Format: <count>
// Example: 2048
func parseLine(line string) (uint16, error) {
	count, err := strconv.ParseUint(line, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid count: %w", err)
	}
	return uint16(count), nil
}
