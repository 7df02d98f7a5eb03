package display

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole_Title(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, "ESP32S3 - Battery Voltage")
	assert.Equal(t, "ESP32S3 - Battery Voltage\n", buf.String())
}

func TestConsole_NoTitle(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, "")
	assert.Empty(t, buf.String())
}

func TestConsole_ClearThenPrint(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, "")

	c.Clear()
	c.Print("Voltage: 3.30 V")
	c.Clear()
	c.Print("Voltage: 3.29 V")

	assert.Equal(t, "\r\x1b[2KVoltage: 3.30 V\r\x1b[2KVoltage: 3.29 V", buf.String())
}
