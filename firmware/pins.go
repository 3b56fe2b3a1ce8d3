//go:build tinygo

package main

import (
	"machine"
	"time"
)

const (
	// Sampling configuration
	REPORT_PERIOD    = time.Second          // Delay between reports
	ACQUISITION_TIME = 2 * time.Millisecond // Settling time after selecting a channel

	// ADC configuration
	ADC_REFERENCE_MV = 5000 // Reference voltage in millivolts (5V, matches the LM35 front end)
	ADC_RESOLUTION   = 10   // ADC resolution in bits (10-bit = 0-1023)

	// Sensor pins
	PIN_TEMPERATURE = machine.A0 // LM35
	PIN_PULSE       = machine.A1 // Piezo
	PIN_PRESSURE    = machine.A2 // Cuff pressure sensor
	PIN_PPG         = machine.A3 // Photoplethysmogram

	// Serial configuration
	// Longest report "T:1023 PZ:1023 PR:1023 PPG:1023\r\n" is 33 bytes, once per second.
	// UART 8N1: 10 bits/byte = 330 baud minimum, 9600 leaves ample headroom.
	UART_BAUD_RATE = 9600
)
