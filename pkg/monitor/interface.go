package monitor

// Device defines the interface for report sources (real or mocked).
type Device interface {
	Connect() error
	Close() error
	Readings() <-chan Reading
	IsConnected() bool
	Restarts() int
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
