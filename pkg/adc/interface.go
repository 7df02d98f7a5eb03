package adc

// Source delivers raw ADC counts of the battery sense input (real or mocked).
//
// Read never fails: a source that cannot produce a fresh count logs the cause
// and returns the last known one, which is zero until the first good read.
type Source interface {
	Connect() error
	Close() error
	Read() uint16
	IsConnected() bool
}

// Ensure Serial implements Source.
var _ Source = (*Serial)(nil)

// Ensure Modbus implements Source.
var _ Source = (*Modbus)(nil)

// Ensure Mock implements Source.
var _ Source = (*Mock)(nil)
