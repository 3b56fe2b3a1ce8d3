package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestMock_GracefulShutdown tests that Mock device closes readings channel
// when Close() is called.
func TestMock_GracefulShutdown(t *testing.T) {
	mock := NewMock(fastConfig())
	err := mock.Connect()
	assert.NoError(t, err)

	readings := mock.Readings()

	// Read a few readings
	received := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range readings {
			received++
			if received == 3 {
				// Got enough readings, now close device
				go mock.Close()
			}
		}
	}()

	// Wait for readings and channel closure
	select {
	case <-done:
		// Channel closed successfully
	case <-time.After(5 * time.Second):
		t.Fatal("Readings channel did not close within timeout")
	}

	// Should have received at least a few readings
	assert.GreaterOrEqual(t, received, 3, "Should receive readings before channel closes")
	assert.False(t, mock.IsConnected())

	// Verify channel is closed
	_, ok := <-readings
	assert.False(t, ok, "Channel should be closed")
}
