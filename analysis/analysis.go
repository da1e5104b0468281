// Package analysis measures the level of rendered sounds: sample and true
// peak, RMS and loudness following ITU-R BS.1770 / EBU R 128.
package analysis

import (
	"fmt"
	"math"

	"github.com/sfxgraph/sfxgraph"
	"github.com/viterin/vek/vek32"
)

type (
	// Decibel is a level in dB relative to full scale. For loudness values
	// it is in LUFS. Silence is -Inf.
	Decibel float32

	Report struct {
		SamplePeak Decibel
		TruePeak   Decibel
		RMS        Decibel
		// MaxMomentary is the loudest 400 ms window.
		MaxMomentary Decibel
		// Integrated is the gated loudness over the whole sound.
		Integrated Decibel
		Duration   float64 // seconds
	}
)

const (
	blockSeconds    = 0.1 // hop between momentary windows
	momentaryBlocks = 4   // 400 ms momentary window
	absoluteGate    = -70 // LUFS
	relativeGate    = 10  // dB below the mean of the blocks above the absolute gate
)

// Analyze measures a mono buffer.
func Analyze(buffer sfxgraph.AudioBuffer) (Report, error) {
	samples, err := buffer.Mono()
	if err != nil {
		return Report{}, err
	}
	if buffer.SampleRate <= 0 {
		return Report{}, fmt.Errorf("invalid sample rate %d", buffer.SampleRate)
	}
	ret := Report{
		Duration:   float64(len(samples)) / float64(buffer.SampleRate),
		SamplePeak: Decibel(math.Inf(-1)),
		TruePeak:   Decibel(math.Inf(-1)),
		RMS:        Decibel(math.Inf(-1)),
	}
	if len(samples) == 0 {
		ret.MaxMomentary = Decibel(math.Inf(-1))
		ret.Integrated = Decibel(math.Inf(-1))
		return ret, nil
	}
	tmp := make([]float32, len(samples))
	vek32.Abs_Into(tmp, samples)
	ret.SamplePeak = amplitude2decibel(vek32.Max(tmp))

	var ov oversampler
	o := ov.oversample(samples, make([]float32, 4*len(samples)))
	vek32.Abs_Inplace(o)
	ret.TruePeak = amplitude2decibel(max(vek32.Max(o), vek32.Max(tmp)))

	sq := vek32.Mul_Into(tmp, samples, samples)
	ret.RMS = power2decibel(vek32.Mean(sq))

	ret.MaxMomentary, ret.Integrated = loudness(samples, buffer.SampleRate)
	return ret, nil
}

// loudness K-weights the signal, measures the power of 100 ms blocks and
// slides a 400 ms window over them. Blocks before the start of the sound
// count as silence, so even sounds shorter than the window get a value.
func loudness(samples []float32, sampleRate int) (maxMomentary, integrated Decibel) {
	weighted := append([]float32(nil), samples...)
	coeffs := kWeighting(sampleRate)
	states := make([]biquadState, len(coeffs))
	for i, c := range coeffs {
		states[i].filter(weighted, c)
	}
	blockLen := max(1, int(math.Round(blockSeconds*float64(sampleRate))))
	var window [momentaryBlocks]float32
	var momentary []float32
	tmp := make([]float32, blockLen)
	cursor := 0
	for start := 0; start < len(weighted); start += blockLen {
		chunk := weighted[start:min(start+blockLen, len(weighted))]
		window[cursor] = vek32.Mean(vek32.Mul_Into(tmp, chunk, chunk))
		cursor = (cursor + 1) % momentaryBlocks
		momentary = append(momentary, vek32.Mean(window[:]))
	}
	maxPower := vek32.Max(momentary)
	absThreshold := loudness2power(absoluteGate)
	var gated []float32
	for _, p := range momentary {
		if p > absThreshold {
			gated = append(gated, p)
		}
	}
	integratedPower := float32(0)
	if len(gated) > 0 {
		relThreshold := vek32.Mean(gated) / float32(math.Pow(10, relativeGate/10.0))
		var gated2 []float32
		for _, p := range gated {
			if p > relThreshold {
				gated2 = append(gated2, p)
			}
		}
		if len(gated2) > 0 {
			integratedPower = vek32.Mean(gated2)
		}
	}
	return power2loudness(maxPower), power2loudness(integratedPower)
}

func amplitude2decibel(a float32) Decibel {
	return Decibel(20 * math.Log10(float64(a)))
}

func power2decibel(p float32) Decibel {
	return Decibel(10 * math.Log10(float64(p)))
}

func power2loudness(power float32) Decibel {
	return Decibel(float32(10*math.Log10(float64(power))) + kWeightingOffset)
}

func loudness2power(loudness Decibel) float32 {
	return float32(math.Pow(10, (float64(loudness)-kWeightingOffset)/10))
}

func (d Decibel) String() string {
	if math.IsInf(float64(d), -1) {
		return "-inf"
	}
	return fmt.Sprintf("%.1f", float32(d))
}

func (r Report) String() string {
	return fmt.Sprintf("%.3f s, peak %v dBFS, true peak %v dBTP, RMS %v dBFS, max momentary %v LUFS, integrated %v LUFS",
		r.Duration, r.SamplePeak, r.TruePeak, r.RMS, r.MaxMomentary, r.Integrated)
}
