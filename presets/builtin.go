package presets

import (
	"math"

	"github.com/sfxgraph/sfxgraph"
)

const (
	maxGain = 0.5
	minGain = 1e-3
)

func envelope(ramps ...sfxgraph.Ramp) sfxgraph.Node {
	return sfxgraph.NewNode(sfxgraph.Gain{Gain: sfxgraph.NewParam(minGain, ramps...)}, sfxgraph.Output)
}

func oscillator(w sfxgraph.Waveform, frequency sfxgraph.Param) sfxgraph.Node {
	return sfxgraph.NewNode(sfxgraph.Oscillator{Waveform: w, Frequency: frequency}, 1)
}

// Chirp is a short sine blip falling two octaves from frequency.
func Chirp(frequency float64) sfxgraph.SoundDescription {
	return sfxgraph.NewSoundDescription("Chirp", 0.2,
		oscillator(sfxgraph.Sine, sfxgraph.NewParam(frequency,
			sfxgraph.Ramp{Kind: sfxgraph.Exponential, Value: frequency / 4, EndTime: 0.2},
		)),
		envelope(
			sfxgraph.Ramp{Kind: sfxgraph.Exponential, Value: maxGain, EndTime: 0.01},
			sfxgraph.Ramp{Kind: sfxgraph.Linear, Value: minGain, EndTime: 0.2},
		),
	)
}

// Sweep is a square wave jumping up an octave every 50 ms.
func Sweep() sfxgraph.SoundDescription {
	const f = 440
	return sfxgraph.NewSoundDescription("Sweep", 0.25,
		oscillator(sfxgraph.Square, sfxgraph.NewParam(f,
			sfxgraph.Ramp{Kind: sfxgraph.Instantaneous, Value: 2 * f, EndTime: 0.05},
			sfxgraph.Ramp{Kind: sfxgraph.Instantaneous, Value: 4 * f, EndTime: 0.10},
			sfxgraph.Ramp{Kind: sfxgraph.Instantaneous, Value: 8 * f, EndTime: 0.15},
			sfxgraph.Ramp{Kind: sfxgraph.Instantaneous, Value: 16 * f, EndTime: 0.20},
		)),
		envelope(
			sfxgraph.Ramp{Kind: sfxgraph.Exponential, Value: maxGain, EndTime: 0.01},
			sfxgraph.Ramp{Kind: sfxgraph.Linear, Value: minGain, EndTime: 0.25},
		),
	)
}

// ShieldRecharge is a rising triangle hum. startFraction in [0,1] tells how
// far up the rise the sound starts; duration is the length of the rise, after
// which the sound fades out over a second.
func ShieldRecharge(startFraction, duration float64) sfxgraph.SoundDescription {
	const minFreq = 55
	maxFreq := minFreq * math.Pow(2, 0.75)
	return sfxgraph.NewSoundDescription("Shield Recharge", duration+1,
		oscillator(sfxgraph.Triangle, sfxgraph.NewParam(minFreq+startFraction*(maxFreq-minFreq),
			sfxgraph.Ramp{Kind: sfxgraph.Exponential, Value: maxFreq, EndTime: duration},
		)),
		envelope(
			sfxgraph.Ramp{Kind: sfxgraph.Exponential, Value: maxGain, EndTime: 0.01},
			sfxgraph.Ramp{Kind: sfxgraph.Exponential, Value: maxGain, EndTime: duration},
			sfxgraph.Ramp{Kind: sfxgraph.Linear, Value: minGain, EndTime: duration + 1},
		),
	)
}

// NoisePulse is a 100 ms burst of pink noise.
func NoisePulse() sfxgraph.SoundDescription {
	return sfxgraph.NewSoundDescription("Noise Pulse", 0.1,
		sfxgraph.NewNode(sfxgraph.PinkNoise{}, 1),
		envelope(
			sfxgraph.Ramp{Kind: sfxgraph.Exponential, Value: maxGain, EndTime: 0.01},
			sfxgraph.Ramp{Kind: sfxgraph.Linear, Value: minGain, EndTime: 0.1},
		),
	)
}

// Builtin returns the built-in sounds in the order they are offered to a
// new user.
func Builtin() []sfxgraph.SoundDescription {
	return []sfxgraph.SoundDescription{
		Chirp(1000),
		Sweep(),
		ShieldRecharge(0, 2),
		NoisePulse(),
	}
}
