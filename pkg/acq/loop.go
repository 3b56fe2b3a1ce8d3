package acq

import (
	"context"
	"time"
)

// DefaultPeriod is the delay between the end of one report and the start of
// the next sampling pass.
const DefaultPeriod = 1000 * time.Millisecond

// State is the acquisition loop state.
type State int

const (
	StateInit State = iota
	StateReport
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateReport:
		return "report"
	}
	return "unknown"
}

// Option configures a Loop.
type Option func(*Loop)

// WithPeriod overrides DefaultPeriod.
func WithPeriod(d time.Duration) Option {
	return func(l *Loop) {
		l.period = d
	}
}

// WithSleep replaces the inter-report delay. The context passed to Run is
// only checked once sleep returns.
func WithSleep(sleep func(time.Duration)) Option {
	return func(l *Loop) {
		l.sleep = sleep
	}
}

// WithHook registers a function called with every transmitted report.
func WithHook(hook func(Report)) Option {
	return func(l *Loop) {
		l.hook = hook
	}
}

// Loop sequences peripheral initialization and the read-format-report cycle.
type Loop struct {
	sampler Sampler
	tx      Transmitter

	period time.Duration
	sleep  func(time.Duration)
	hook   func(Report)

	state State
}

// New creates a Loop in the init state.
func New(sampler Sampler, tx Transmitter, opts ...Option) *Loop {
	l := &Loop{
		sampler: sampler,
		tx:      tx,
		period:  DefaultPeriod,
		state:   StateInit,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the current loop state.
func (l *Loop) State() State {
	return l.state
}

// Init initializes the transmitter, then the sampler, then sends the banner.
// It runs once; later calls do nothing.
func (l *Loop) Init() {
	if l.state != StateInit {
		return
	}
	l.tx.Init()
	l.sampler.Init()
	l.tx.Transmit([]byte(Banner))
	l.state = StateReport
}

// Sample reads every channel in sampling order.
func (l *Loop) Sample() Report {
	var r Report
	for _, ch := range Channels {
		r[ch] = l.sampler.Read(ch)
	}
	return r
}

// Step runs one report iteration without the trailing delay. The loop is
// initialized first if needed, so the banner always precedes the first line.
func (l *Loop) Step() Report {
	l.Init()

	var line [LineSize]byte
	r := l.Sample()
	l.tx.Transmit(AppendReport(line[:0], r))

	if l.hook != nil {
		l.hook(r)
	}
	return r
}

// Run initializes the peripherals and reports forever. It returns only when
// ctx is cancelled, which is observed between iterations.
func (l *Loop) Run(ctx context.Context) error {
	l.Init()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.Step()
		if err := l.wait(ctx); err != nil {
			return err
		}
	}
}

func (l *Loop) wait(ctx context.Context) error {
	if l.sleep != nil {
		l.sleep(l.period)
		return ctx.Err()
	}

	timer := time.NewTimer(l.period)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
