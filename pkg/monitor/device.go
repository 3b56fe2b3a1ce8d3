package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the report stream rate.
	DefaultBaudRate = 9600
	// DefaultBufferSize is the default size for the readings channel buffer.
	DefaultBufferSize = 100
)

var (
	ErrAlreadyConnected = errors.New("already connected")
	ErrNotConnected     = errors.New("not connected")
	ErrClosed           = errors.New("device closed")
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial reads reports from the acquisition board over a serial port.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	readings  chan Reading
	done      chan struct{}
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	closed    bool
	restarts  int
}

// New creates a new Serial device with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		readings: make(chan Reading, bufSize),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
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

// Connect opens the serial port and starts reading reports.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return ErrAlreadyConnected
	}
	if d.closed {
		return ErrClosed
	}

	// 8N1 is the serial package default.
	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	lr := &lineReader{
		out:      d.readings,
		now:      time.Now,
		onBanner: d.onBanner,
	}
	go func() {
		defer close(d.done)
		lr.run(d.ctx, port)
	}()

	return nil
}

// Close closes the port and waits for the readings channel to close.
func (d *Serial) Close() error {
	d.mu.Lock()

	if !d.connected {
		d.mu.Unlock()
		return nil
	}

	// Cancel context to stop reading goroutine
	d.cancel()

	// Closing the port unblocks the pending read
	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	d.connected = false
	d.closed = true
	d.mu.Unlock()

	<-d.done
	return nil
}

// Readings returns the channel for reading reports.
func (d *Serial) Readings() <-chan Reading {
	return d.readings
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// Restarts returns how many startup banners have been received.
func (d *Serial) Restarts() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.restarts
}

func (d *Serial) onBanner() {
	d.mu.Lock()
	d.restarts++
	n := d.restarts
	d.mu.Unlock()
	log.Printf("Device on %s started (banner #%d)", d.port, n)
}
