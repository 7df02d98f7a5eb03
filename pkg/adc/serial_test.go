package adc

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    uint16
		wantErr bool
	}{
		{name: "mid scale", line: "2048", want: 2048},
		{name: "zero", line: "0", want: 0},
		{name: "full scale", line: "4095", want: 4095},
		{name: "above 12 bits passes through", line: "5000", want: 5000},
		{name: "invalid - non-numeric", line: "abc", wantErr: true},
		{name: "invalid - negative", line: "-1", wantErr: true},
		{name: "invalid - overflows 16 bits", line: "70000", wantErr: true},
		{name: "invalid - legacy multi-field", line: "123,2048", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewSerial_Defaults(t *testing.T) {
	src := NewSerial("/dev/ttyACM0", 0)
	assert.Equal(t, "/dev/ttyACM0", src.port)
	assert.Equal(t, DefaultBaudRate, src.baudRate)
	assert.False(t, src.IsConnected())
	assert.Equal(t, uint16(0), src.Read())
}

func TestSerial_CloseWithoutConnect(t *testing.T) {
	src := NewSerial("/dev/ttyACM0", 9600)
	assert.NoError(t, src.Close())
}

func TestSerial_ReadCountsKeepsLatest(t *testing.T) {
	src := NewSerial("/dev/null", 0)
	src.ctx, src.cancel = context.WithCancel(context.Background())
	defer src.cancel()

	done := make(chan struct{})
	src.readCounts(strings.NewReader("100\n\n  200 \ngarbage\n2048\n"), done)

	<-done
	assert.Equal(t, uint16(2048), src.Read())
}

func TestSerial_ReadCountsSkipsBadTail(t *testing.T) {
	src := NewSerial("/dev/null", 0)
	src.ctx, src.cancel = context.WithCancel(context.Background())
	defer src.cancel()

	done := make(chan struct{})
	src.readCounts(strings.NewReader("1234\nnot-a-number\n"), done)

	<-done
	assert.Equal(t, uint16(1234), src.Read())
}
