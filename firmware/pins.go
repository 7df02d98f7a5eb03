//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_MS = 100 // ADC read and report interval in milliseconds

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Battery sense pin (behind a 1:2 divider)
	PIN_BATTERY_ADC = machine.A1

	// Serial configuration
	// Format "count\n", at most "4095\n" = 5 bytes per line
	// 10 lines/sec * 5 bytes = 50 bytes/sec, far below 115200 baud (11,520 bytes/sec)
	UART_BAUD_RATE = 115200
)
