package sim

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/itohio/gobpm/pkg/acq"
	"github.com/itohio/gobpm/pkg/pic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func voltsFor(codes ...uint16) *Volts {
	var v Volts
	for i, c := range codes {
		v[i] = float64(c) * DefaultVRef / acq.MaxCode
	}
	return &v
}

func noDelay(time.Duration) {}

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		vref float64
		want uint16
	}{
		{"zero", 0, 5, 0},
		{"full scale", 5, 5, 1023},
		{"half scale", 2.5, 5, 512},
		{"LM35 at 36.8C", 0.368, 5, 75},
		{"negative clamps", -1, 5, 0},
		{"above reference clamps", 7, 5, 1023},
		{"zero reference", 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.v, tt.vref))
		})
	}
}

func TestRegisters_PowerOn(t *testing.T) {
	r := New(nil, nil)
	regs := r.Snapshot()
	assert.Equal(t, uint8(0xFF), regs[pic.TRISC])
	assert.Equal(t, pic.TXIF, regs[pic.PIR1])
	assert.Zero(t, regs[pic.ADCON0])
}

func TestRegisters_TransmitPolls(t *testing.T) {
	var out bytes.Buffer
	r := New(&out, nil, WithTxPolls(3))

	r.Write(pic.TXREG, 'A')
	assert.Equal(t, "A", out.String())
	assert.Equal(t, uint64(1), r.Transmitted())

	// Three polls see the transmitter busy, the state flips on the third.
	assert.Zero(t, r.Read(pic.PIR1)&pic.TXIF)
	assert.Zero(t, r.Read(pic.PIR1)&pic.TXIF)
	assert.Zero(t, r.Read(pic.PIR1)&pic.TXIF)
	assert.NotZero(t, r.Read(pic.PIR1)&pic.TXIF)
}

func TestRegisters_TransmitImmediate(t *testing.T) {
	var out bytes.Buffer
	r := New(&out, nil)

	r.Write(pic.TXREG, 'Z')
	assert.NotZero(t, r.Read(pic.PIR1)&pic.TXIF)
	assert.Equal(t, "Z", out.String())
}

func TestRegisters_Conversion(t *testing.T) {
	r := New(nil, voltsFor(0, 0, 700), WithConversionPolls(2))
	r.Write(pic.ADCON1, pic.ADFM)
	r.Write(pic.ADCON0, pic.ADON|2<<pic.CHSShift)
	r.Write(pic.ADCON0, pic.ADON|2<<pic.CHSShift|pic.GO)

	assert.NotZero(t, r.Read(pic.ADCON0)&pic.GO)
	assert.NotZero(t, r.Read(pic.ADCON0)&pic.GO)
	assert.Zero(t, r.Read(pic.ADCON0)&pic.GO)

	assert.Equal(t, uint8(700>>8), r.Read(pic.ADRESH))
	assert.Equal(t, uint8(700&0xFF), r.Read(pic.ADRESL))
	assert.Equal(t, uint64(1), r.Conversions())
}

func TestRegisters_ConversionLeftJustified(t *testing.T) {
	r := New(nil, voltsFor(1023))
	r.Write(pic.ADCON1, 0)
	r.Write(pic.ADCON0, pic.ADON|pic.GO)

	assert.Equal(t, uint8(0xFF), r.Read(pic.ADRESH))
	assert.Equal(t, uint8(0xC0), r.Read(pic.ADRESL))
}

func TestRegisters_ConversionRequiresADON(t *testing.T) {
	r := New(nil, voltsFor(1023))
	r.Write(pic.ADCON0, pic.GO)
	assert.Zero(t, r.Conversions())
}

func TestDrivers_InitIdempotent(t *testing.T) {
	r := New(nil, nil)

	u, err := pic.NewUART(r, pic.DefaultUARTConfig())
	require.NoError(t, err)
	a := pic.NewADC(r, pic.DefaultADCConfig())

	u.Init()
	a.Init()
	first := r.Snapshot()

	u.Init()
	a.Init()
	assert.Equal(t, first, r.Snapshot())
	assert.Equal(t, uint8(129), first[pic.SPBRG])
	assert.Equal(t, uint8(0x81), first[pic.ADCON0])
	assert.Equal(t, uint8(0x80), first[pic.ADCON1])
}

func TestDrivers_ReadRange(t *testing.T) {
	r := New(nil, &Volts{-3, 0, 2.2, 9}, WithConversionPolls(4))
	a := pic.NewADC(r, pic.DefaultADCConfig(), pic.WithDelay(noDelay))
	a.Init()

	for _, ch := range acq.Channels {
		v := a.Read(ch)
		assert.LessOrEqual(t, v, uint16(acq.MaxCode), "channel %s", ch)
	}
	assert.Equal(t, uint64(4), r.Conversions())
}

func TestDrivers_LoopOutput(t *testing.T) {
	var out bytes.Buffer
	r := New(&out, voltsFor(12, 500, 1000, 3), WithTxPolls(2), WithConversionPolls(3))

	u, err := pic.NewUART(r, pic.DefaultUARTConfig())
	require.NoError(t, err)
	a := pic.NewADC(r, pic.DefaultADCConfig(), pic.WithDelay(noDelay))

	ctx, cancel := context.WithCancel(context.Background())
	iterations := 0
	loop := acq.New(a, u, acq.WithSleep(func(time.Duration) {
		iterations++
		if iterations == 2 {
			cancel()
		}
	}))
	require.ErrorIs(t, loop.Run(ctx), context.Canceled)

	want := acq.Banner +
		"T:12 PZ:500 PR:1000 PPG:3\r\n" +
		"T:12 PZ:500 PR:1000 PPG:3\r\n"
	assert.Equal(t, want, out.String())
	assert.Equal(t, uint64(len(want)), r.Transmitted())
	assert.Equal(t, uint64(8), r.Conversions())
}
