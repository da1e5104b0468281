package analysis

import (
	"math"

	"github.com/viterin/vek/vek32"
)

type (
	biquadState struct {
		x1, x2, y1, y2 float32
	}

	biquadCoeff struct {
		b0, b1, b2, a1, a2 float32
	}

	oversampler struct {
		history   [11]float32
		tmp, tmp2 []float32
	}
)

// K-weighting filter design from ITU-R BS.1770: a high shelf modelling the
// head followed by a high pass (the "RLB" curve). Designing the filters from
// their analog prototypes gives the published 48 kHz coefficients and works
// for any other sample rate.
const (
	shelfFreq = 1681.974450955533
	shelfGain = 3.999843853973347 // dB
	shelfQ    = 0.7071752369554196
	hpFreq    = 38.13547087602444
	hpQ       = 0.5003270373238773

	// kWeightingOffset makes up for the slightly above unity gain of
	// K-weighting at 1 kHz.
	kWeightingOffset = -0.691
)

func kWeighting(sampleRate int) []biquadCoeff {
	fs := float64(sampleRate)
	k := math.Tan(math.Pi * shelfFreq / fs)
	vh := math.Pow(10, shelfGain/20)
	vb := math.Pow(vh, 0.4996667741545416)
	a0 := 1 + k/shelfQ + k*k
	shelf := biquadCoeff{
		b0: float32((vh + vb*k/shelfQ + k*k) / a0),
		b1: float32(2 * (k*k - vh) / a0),
		b2: float32((vh - vb*k/shelfQ + k*k) / a0),
		a1: float32(2 * (k*k - 1) / a0),
		a2: float32((1 - k/shelfQ + k*k) / a0),
	}
	k = math.Tan(math.Pi * hpFreq / fs)
	a0 = 1 + k/hpQ + k*k
	hp := biquadCoeff{
		b0: 1,
		b1: -2,
		b2: 1,
		a1: float32(2 * (k*k - 1) / a0),
		a2: float32((1 - k/hpQ + k*k) / a0),
	}
	return []biquadCoeff{shelf, hp}
}

func (state *biquadState) filter(buffer []float32, coeff biquadCoeff) {
	s := *state
	for i := 0; i < len(buffer); i++ {
		x := buffer[i]
		y := coeff.b0*x + coeff.b1*s.x1 + coeff.b2*s.x2 - coeff.a1*s.y1 - coeff.a2*s.y2
		s.x2, s.x1 = s.x1, x
		s.y2, s.y1 = s.y1, y
		buffer[i] = y
	}
	*state = s
}

// ref: https://www.itu.int/dms_pubrec/itu-r/rec/bs/R-REC-BS.1770-5-202311-I!!PDF-E.pdf
var oversamplingCoeffs = [4][12]float32{
	{0.0017089843750, 0.0109863281250, -0.0196533203125, 0.0332031250000, -0.0594482421875, 0.1373291015625, 0.9721679687500, -0.1022949218750, 0.0476074218750, -0.0266113281250, 0.0148925781250, -0.0083007812500},
	{-0.0291748046875, 0.0292968750000, -0.0517578125000, 0.0891113281250, -0.1665039062500, 0.4650878906250, 0.7797851562500, -0.2003173828125, 0.1015625000000, -0.0582275390625, 0.0330810546875, -0.0189208984375},
	{-0.0189208984375, 0.0330810546875, -0.058227539062, 0.1015625000000, -0.200317382812, 0.7797851562500, 0.4650878906250, -0.166503906250, 0.0891113281250, -0.051757812500, 0.0292968750000, -0.0291748046875},
	{-0.0083007812500, 0.0148925781250, -0.0266113281250, 0.0476074218750, -0.1022949218750, 0.9721679687500, 0.1373291015625, -0.0594482421875, 0.0332031250000, -0.0196533203125, 0.0109863281250, 0.0017089843750},
}

// oversample upsamples x by four into y, which must have room for 4*len(x)
// samples. Phase q of the output is the convolution of x with the q:th
// polyphase component of the interpolation filter; history carries the tail
// of the previous call so that x can be fed in chunks.
func (s *oversampler) oversample(x []float32, y []float32) []float32 {
	if len(x) == 0 {
		return y[:0]
	}
	setSliceLength(&s.tmp, len(x))
	setSliceLength(&s.tmp2, len(x))
	for q, coeffs := range oversamplingCoeffs {
		r := vek32.Zeros_Into(s.tmp2, len(x))
		for j, c := range coeffs {
			h := min(j, len(x)) // outputs that reach back into the history
			vek32.MulNumber_Into(s.tmp[:h], s.history[11-j:11-j+h], c)
			vek32.MulNumber_Into(s.tmp[h:], x[:len(x)-h], c)
			vek32.Add_Inplace(r, s.tmp[:len(x)])
		}
		for p, v := range r {
			y[p*4+q] = v
		}
	}
	z := min(len(x), 11)
	copy(s.history[:11-z], s.history[z:11])
	copy(s.history[11-z:], x[len(x)-z:])
	return y[:len(x)*4]
}

func setSliceLength[T any](slice *[]T, length int) {
	if len(*slice) < length {
		*slice = append(*slice, make([]T, length-len(*slice))...)
	}
	*slice = (*slice)[:length]
}
