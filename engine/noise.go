package engine

import "math/rand"

// NoiseSeconds is the length of the pink noise buffer. Sources loop it, so it
// only needs to be long enough for the repetition to be inaudible.
const NoiseSeconds = 2

const noiseSeed = 1

// pinkNoise fills a buffer with pink noise using Paul Kellet's refined
// filter over a deterministic white noise source, so every engine produces
// the same buffer for the same sample rate.
func pinkNoise(sampleRate int) []float32 {
	rnd := rand.New(rand.NewSource(noiseSeed))
	ret := make([]float32, NoiseSeconds*sampleRate)
	var b0, b1, b2, b3, b4, b5, b6 float64
	for i := range ret {
		white := rnd.Float64()*2 - 1
		b0 = 0.99886*b0 + white*0.0555179
		b1 = 0.99332*b1 + white*0.0750759
		b2 = 0.96900*b2 + white*0.1538520
		b3 = 0.86650*b3 + white*0.3104856
		b4 = 0.55000*b4 + white*0.5329522
		b5 = -0.7616*b5 - white*0.0168980
		ret[i] = float32((b0 + b1 + b2 + b3 + b4 + b5 + b6 + white*0.5362) * 0.11)
		b6 = white * 0.115926
	}
	return ret
}
