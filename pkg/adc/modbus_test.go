package adc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeRegisters struct {
	data  []byte
	err   error
	calls int
	addr  uint16
	qty   uint16
}

func (f *fakeRegisters) ReadInputRegisters(address, quantity uint16) ([]byte, error) {
	f.calls++
	f.addr = address
	f.qty = quantity
	return f.data, f.err
}

func TestModbus_Read(t *testing.T) {
	fake := &fakeRegisters{data: []byte{0x08, 0x00}}
	src := NewModbus(ModbusConfig{Endpoint: "localhost:502", Register: 7})
	src.client = fake

	assert.Equal(t, uint16(2048), src.Read())
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, uint16(7), fake.addr)
	assert.Equal(t, uint16(1), fake.qty)
}

func TestModbus_ReadErrorKeepsLast(t *testing.T) {
	fake := &fakeRegisters{data: []byte{0x01, 0x00}}
	src := NewModbus(ModbusConfig{Endpoint: "localhost:502"})
	src.client = fake

	assert.Equal(t, uint16(256), src.Read())

	fake.err = errors.New("timeout")
	assert.Equal(t, uint16(256), src.Read())

	fake.err = nil
	fake.data = []byte{0x01}
	assert.Equal(t, uint16(256), src.Read(), "short response keeps last count")
}

func TestModbus_ReadBeforeConnect(t *testing.T) {
	src := NewModbus(ModbusConfig{Endpoint: "localhost:502"})
	assert.Equal(t, uint16(0), src.Read())
	assert.False(t, src.IsConnected())
	assert.NoError(t, src.Close())
}

func TestModbus_ConnectRequiresEndpoint(t *testing.T) {
	src := NewModbus(ModbusConfig{})
	assert.Error(t, src.Connect())
}
