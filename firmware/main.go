//go:build tinygo

//go:generate tinygo flash -target=xiao

// Command firmware streams raw battery ADC counts over UART, one decimal
// count per line, for the host side adc.Serial source.
package main

import (
	"machine"
	"strconv"
	"time"
)

var (
	adcBattery machine.ADC
	uart       = machine.UART0

	lastADCRead time.Time
	lineBuffer  [8]byte
)

func main() {
	PIN_BATTERY_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})

	adcBattery = machine.ADC{Pin: PIN_BATTERY_ADC}
	adcBattery.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	lastADCRead = time.Now()

	for {
		now := time.Now()

		if now.Sub(lastADCRead) >= time.Duration(SAMPLE_INTERVAL_MS)*time.Millisecond {
			lastADCRead = now
			writeCount(readCount())
		}

		time.Sleep(time.Millisecond)
	}
}

// readCount returns the battery ADC value scaled to ADC_RESOLUTION bits.
// machine.ADC.Get always returns a left-aligned 16-bit value.
func readCount() uint16 {
	return adcBattery.Get() >> (16 - ADC_RESOLUTION)
}

// writeCount writes "count\n" without allocating.
func writeCount(count uint16) {
	line := strconv.AppendUint(lineBuffer[:0], uint64(count), 10)
	line = append(line, '\n')
	uart.Write(line)
}
