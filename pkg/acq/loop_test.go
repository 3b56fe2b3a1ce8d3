package acq

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when the loop sleeps or a fake peripheral works.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.now = c.now.Add(d)
}

type fakeSampler struct {
	clock   *fakeClock
	latency time.Duration
	values  Report
	inits   int
	reads   []Channel
}

func (s *fakeSampler) Init() {
	s.inits++
}

func (s *fakeSampler) Read(ch Channel) uint16 {
	if s.clock != nil {
		s.clock.Sleep(s.latency)
	}
	s.reads = append(s.reads, ch)
	return s.values[ch]
}

type sent struct {
	at   time.Time
	data string
}

type fakeTransmitter struct {
	clock *fakeClock
	inits int
	sent  []sent
}

func (t *fakeTransmitter) Init() {
	t.inits++
}

func (t *fakeTransmitter) Transmit(p []byte) {
	var at time.Time
	if t.clock != nil {
		at = t.clock.now
	}
	t.sent = append(t.sent, sent{at: at, data: string(p)})
}

func TestLoop_InitOnce(t *testing.T) {
	s := &fakeSampler{}
	tx := &fakeTransmitter{}
	l := New(s, tx)

	assert.Equal(t, StateInit, l.State())
	l.Init()
	l.Init()

	assert.Equal(t, StateReport, l.State())
	assert.Equal(t, 1, s.inits)
	assert.Equal(t, 1, tx.inits)
	require.Len(t, tx.sent, 1)
	assert.Equal(t, Banner, tx.sent[0].data)
}

func TestLoop_Step(t *testing.T) {
	s := &fakeSampler{values: Report{12, 500, 1000, 3}}
	tx := &fakeTransmitter{}

	var hooked []Report
	l := New(s, tx, WithHook(func(r Report) {
		hooked = append(hooked, r)
	}))

	r := l.Step()
	assert.Equal(t, Report{12, 500, 1000, 3}, r)
	assert.Equal(t, []Channel{Temperature, Pulse, Pressure, PPG}, s.reads)

	require.Len(t, tx.sent, 2)
	assert.Equal(t, Banner, tx.sent[0].data)
	assert.Equal(t, "T:12 PZ:500 PR:1000 PPG:3\r\n", tx.sent[1].data)
	assert.Equal(t, []Report{{12, 500, 1000, 3}}, hooked)
}

func TestLoop_BannerOnceBeforeReports(t *testing.T) {
	clock := &fakeClock{}
	s := &fakeSampler{values: Report{1, 2, 3, 4}}
	tx := &fakeTransmitter{}

	ctx, cancel := context.WithCancel(context.Background())
	iterations := 0
	l := New(s, tx, WithSleep(func(d time.Duration) {
		clock.Sleep(d)
		iterations++
		if iterations == 5 {
			cancel()
		}
	}))

	err := l.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	require.Len(t, tx.sent, 6)
	assert.Equal(t, Banner, tx.sent[0].data)
	for _, s := range tx.sent[1:] {
		assert.Equal(t, "T:1 PZ:2 PR:3 PPG:4\r\n", s.data)
	}
	assert.Equal(t, 1, tx.inits)
}

func TestLoop_Cadence(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	latency := 2*time.Millisecond + 20*time.Microsecond
	s := &fakeSampler{clock: clock, latency: latency}
	tx := &fakeTransmitter{clock: clock}

	ctx, cancel := context.WithCancel(context.Background())
	iterations := 0
	l := New(s, tx, WithSleep(func(d time.Duration) {
		clock.Sleep(d)
		iterations++
		if iterations == 4 {
			cancel()
		}
	}))
	_ = l.Run(ctx)

	reports := tx.sent[1:]
	require.Len(t, reports, 4)
	want := DefaultPeriod + NumChannels*latency
	for i := 1; i < len(reports); i++ {
		assert.Equal(t, want, reports[i].at.Sub(reports[i-1].at))
	}
}

func TestLoop_CustomPeriod(t *testing.T) {
	var slept []time.Duration
	ctx, cancel := context.WithCancel(context.Background())
	l := New(&fakeSampler{}, &fakeTransmitter{},
		WithPeriod(250*time.Millisecond),
		WithSleep(func(d time.Duration) {
			slept = append(slept, d)
			cancel()
		}),
	)
	_ = l.Run(ctx)
	assert.Equal(t, []time.Duration{250 * time.Millisecond}, slept)
}

func TestLoop_RunCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tx := &fakeTransmitter{}
	err := New(&fakeSampler{}, tx).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// Initialization still happens; no report is sent.
	require.Len(t, tx.sent, 1)
	assert.Equal(t, Banner, tx.sent[0].data)
}

func TestLoop_RunDefaultTimerCancels(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	tx := &fakeTransmitter{}
	done := make(chan error, 1)
	go func() {
		done <- New(&fakeSampler{}, tx).Run(ctx)
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after context deadline")
	}
	assert.Len(t, tx.sent, 2)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "init", StateInit.String())
	assert.Equal(t, "report", StateReport.String())
	assert.Equal(t, "unknown", State(9).String())
}
