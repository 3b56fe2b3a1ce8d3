package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/itohio/gobpm/pkg/board"
	"github.com/itohio/gobpm/pkg/config"
	"github.com/itohio/gobpm/pkg/sim"
)

// Mock runs the acquisition loop on simulated peripherals and reads its
// output through the same line parser as Serial.
type Mock struct {
	cfg *config.Config

	readings  chan Reading
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	closed    bool
	restarts  int

	pr   *io.PipeReader
	pw   *io.PipeWriter
	regs *sim.Registers
	wg   sync.WaitGroup
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.Config) *Mock {
	if cfg == nil {
		cfg = config.Default()
	}

	bufSize := cfg.Serial.BufferSize
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:      cfg,
		readings: make(chan Reading, bufSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Connect starts the simulated firmware.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return ErrAlreadyConnected
	}
	if m.closed {
		return ErrClosed
	}

	m.pr, m.pw = io.Pipe()

	regs, loop, err := board.Simulate(m.cfg, closedPipeWriter{m.pw})
	if err != nil {
		m.pr.Close()
		m.pw.Close()
		return fmt.Errorf("failed to build simulated firmware: %w", err)
	}
	m.regs = regs

	lr := &lineReader{
		out:      m.readings,
		now:      time.Now,
		onBanner: m.onBanner,
	}

	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		defer m.pw.Close()
		_ = loop.Run(m.ctx)
	}()
	go func() {
		defer m.wg.Done()
		lr.run(m.ctx, m.pr)
	}()

	m.connected = true
	return nil
}

// Close stops the simulated firmware and waits for the readings channel to
// close.
func (m *Mock) Close() error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return nil
	}

	m.cancel()
	// Unblocks a firmware write that the reader will never consume.
	m.pr.Close()
	m.connected = false
	m.closed = true
	m.mu.Unlock()

	m.wg.Wait()
	return nil
}

// Readings returns the channel for reading reports.
func (m *Mock) Readings() <-chan Reading {
	return m.readings
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Restarts returns how many startup banners have been received.
func (m *Mock) Restarts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.restarts
}

// Registers exposes the simulated register file, nil before Connect.
func (m *Mock) Registers() *sim.Registers {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.regs
}

func (m *Mock) onBanner() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restarts++
}

// closedPipeWriter drops writes once the reading side has gone away.
type closedPipeWriter struct {
	w io.Writer
}

func (c closedPipeWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	if errors.Is(err, io.ErrClosedPipe) {
		return len(p), nil
	}
	return n, err
}
