package pic

import "time"

// WaitFunc blocks until done reports true.
type WaitFunc func(done func() bool)

// DelayFunc blocks for d.
type DelayFunc func(d time.Duration)

// Spin polls done in a tight loop. There is no timeout.
func Spin(done func() bool) {
	for !done() {
	}
}
