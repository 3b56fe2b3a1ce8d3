package sim

import (
	"math"
	"time"

	"github.com/itohio/gobpm/pkg/acq"
	"github.com/itohio/gobpm/pkg/config"
)

// Sensor transfer functions.
const (
	lm35VoltsPerDegree = 0.010 // LM35: 10 mV/°C
	pressureOffset     = 0.2   // V at 0 mmHg
	pressureGain       = 0.012 // V per mmHg
	piezoBaseline      = 2.5   // V
	piezoAmplitude     = 1.2   // V
	ppgBaseline        = 1.5   // V
	ppgAmplitude       = 0.6   // V
	oscillationGain    = 0.03  // Relative cuff oscillation amplitude
)

// Waveforms synthesises the four sensor signals of a cuff measurement:
// body temperature, a piezo pulse pickup, cuff pressure with oscillometric
// ripple, and a photoplethysmogram.
type Waveforms struct {
	cfg   config.SimConfig
	start time.Time
}

var _ Source = (*Waveforms)(nil)

// NewWaveforms returns waveforms with t=0 at start.
func NewWaveforms(cfg config.SimConfig, start time.Time) *Waveforms {
	return &Waveforms{
		cfg:   cfg,
		start: start,
	}
}

// Voltage implements Source. Inputs other than the four sensor channels read
// as 0 V.
func (w *Waveforms) Voltage(ch acq.Channel, t time.Time) float64 {
	elapsed := t.Sub(w.start).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	var v float64
	switch ch {
	case acq.Temperature:
		v = w.cfg.BodyTemp * lm35VoltsPerDegree
	case acq.Pulse:
		v = piezoBaseline + piezoAmplitude*pulseShape(w.beatPhase(elapsed))
	case acq.Pressure:
		v = pressureOffset + pressureGain*w.CuffPressure(elapsed)
	case acq.PPG:
		v = ppgBaseline + ppgAmplitude*ppgShape(w.beatPhase(elapsed))
	default:
		return 0
	}

	return v + w.noise(elapsed, ch)
}

// CuffPressure returns the cuff pressure in mmHg, including the oscillometric
// ripple, elapsed seconds into the run. The cuff inflates linearly to
// CuffPeak over the first tenth of CuffCycle and deflates linearly to zero
// over the rest.
func (w *Waveforms) CuffPressure(elapsed float64) float64 {
	cycle := w.cfg.CuffCycle.Seconds()
	if cycle <= 0 {
		return 0
	}
	pos := math.Mod(elapsed, cycle) / cycle

	const inflate = 0.1
	if pos < inflate {
		return w.cfg.CuffPeak * pos / inflate
	}
	p := w.cfg.CuffPeak * (1 - (pos-inflate)/(1-inflate))

	return p + p*oscillationGain*w.oscillationEnvelope(p)*math.Sin(2*math.Pi*w.beatPhase(elapsed))
}

// oscillationEnvelope peaks at mean arterial pressure and falls off outside
// the diastolic to systolic band.
func (w *Waveforms) oscillationEnvelope(p float64) float64 {
	sys, dia := w.cfg.Systolic, w.cfg.Diastolic
	if sys <= dia {
		return 0
	}
	mean := dia + (sys-dia)/3
	width := (sys - dia) / 2
	d := (p - mean) / width
	return math.Exp(-d * d)
}

// beatPhase returns the position within the current heartbeat in [0, 1).
func (w *Waveforms) beatPhase(elapsed float64) float64 {
	if w.cfg.HeartRate <= 0 {
		return 0
	}
	beats := elapsed * w.cfg.HeartRate / 60
	return beats - math.Floor(beats)
}

// noise is deterministic so repeated runs produce the same stream.
func (w *Waveforms) noise(elapsed float64, ch acq.Channel) float64 {
	k := float64(ch) + 1
	return (math.Sin(elapsed*997*k) + math.Cos(elapsed*1301*k)) * w.cfg.NoiseLevel * 0.5
}

// pulseShape is a sharp systolic upstroke followed by a decay.
func pulseShape(phase float64) float64 {
	return gauss(phase, 0.12, 0.04) - 0.3*gauss(phase, 0.25, 0.06)
}

// ppgShape is a systolic peak followed by a smaller diastolic peak after the
// dicrotic notch.
func ppgShape(phase float64) float64 {
	return gauss(phase, 0.2, 0.07) + 0.4*gauss(phase, 0.45, 0.08)
}

func gauss(x, mu, sigma float64) float64 {
	d := (x - mu) / sigma
	return math.Exp(-d * d / 2)
}
