package pic

import "time"

type options struct {
	wait  WaitFunc
	delay DelayFunc
}

// Option configures how a driver blocks.
type Option func(*options)

// WithWait replaces the busy-wait used for hardware status flags.
func WithWait(wait WaitFunc) Option {
	return func(o *options) {
		o.wait = wait
	}
}

// WithDelay replaces the timed delay used for the acquisition time.
func WithDelay(delay DelayFunc) Option {
	return func(o *options) {
		o.delay = delay
	}
}

func newOptions(opts []Option) options {
	o := options{
		wait:  Spin,
		delay: time.Sleep,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
