package monitor

import (
	"testing"
	"time"

	"github.com/itohio/gobpm/pkg/acq"
	"github.com/itohio/gobpm/pkg/config"
	"github.com/itohio/gobpm/pkg/pic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() *config.Config {
	cfg := config.Default()
	cfg.Acquisition.Period = 10 * time.Millisecond
	cfg.Acquisition.AcquisitionTime = 100 * time.Microsecond
	return cfg
}

func TestNewMock(t *testing.T) {
	cfg := fastConfig()
	cfg.Serial.BufferSize = 7

	dev := NewMock(cfg)
	assert.NotNil(t, dev)
	assert.Equal(t, cfg, dev.cfg)
	assert.Equal(t, 7, cap(dev.readings))
	assert.False(t, dev.IsConnected())
	assert.Nil(t, dev.Registers())
}

func TestNewMock_NilConfig(t *testing.T) {
	dev := NewMock(nil)
	assert.NotNil(t, dev)
	assert.NotNil(t, dev.cfg)
	assert.Equal(t, time.Second, dev.cfg.Acquisition.Period)
	assert.Equal(t, DefaultBufferSize, cap(dev.readings))
}

func TestMock_Connect_AlreadyConnected(t *testing.T) {
	dev := NewMock(fastConfig())
	defer dev.Close()

	err := dev.Connect()
	assert.NoError(t, err)

	err = dev.Connect()
	assert.ErrorIs(t, err, ErrAlreadyConnected)
}

func TestMock_Connect_InvalidBaud(t *testing.T) {
	cfg := fastConfig()
	cfg.Acquisition.BaudRate = 1

	dev := NewMock(cfg)
	err := dev.Connect()
	assert.ErrorIs(t, err, pic.ErrBaudOutOfRange)
	assert.False(t, dev.IsConnected())
}

func TestMock_Close_NotConnected(t *testing.T) {
	dev := NewMock(nil)
	assert.NoError(t, dev.Close())
}

func TestMock_ReconnectAfterClose(t *testing.T) {
	dev := NewMock(fastConfig())
	require.NoError(t, dev.Connect())
	require.NoError(t, dev.Close())

	assert.ErrorIs(t, dev.Connect(), ErrClosed)
}

func TestMock_Readings(t *testing.T) {
	dev := NewMock(fastConfig())
	require.NoError(t, dev.Connect())
	defer dev.Close()

	var got []Reading
	timeout := time.After(5 * time.Second)
	for len(got) < 3 {
		select {
		case r := <-dev.Readings():
			got = append(got, r)
		case <-timeout:
			t.Fatalf("received %d readings before timeout", len(got))
		}
	}

	for _, r := range got {
		for _, ch := range acq.Channels {
			assert.LessOrEqual(t, r.Report[ch], uint16(acq.MaxCode))
		}
		// LM35 at 36.8°C with a 5 V reference, within noise.
		assert.InDelta(t, 75, int(r.Report[acq.Temperature]), 2)
	}
	assert.Equal(t, 1, dev.Restarts())

	regs := dev.Registers()
	require.NotNil(t, regs)
	assert.GreaterOrEqual(t, regs.Conversions(), uint64(12))
}
