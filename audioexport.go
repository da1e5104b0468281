package sfxgraph

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// WavMIMEType is the media type of the bytes returned by AudioBuffer.Wav.
const WavMIMEType = "audio/wav"

// wavHeaderSize is the size of the canonical RIFF/WAVE header with a 16 byte
// fmt chunk and no other chunks before data.
const wavHeaderSize = 44

var ErrUnsupportedFormat = errors.New("unsupported format")

func unsupportedChannels(n int) error {
	return fmt.Errorf("%w: only mono buffers are supported (got %d channels)", ErrUnsupportedFormat, n)
}

// Wav encodes a mono buffer as a 16-bit PCM .wav file.
func (b AudioBuffer) Wav() ([]byte, error) {
	samples, err := b.Mono()
	if err != nil {
		return nil, err
	}
	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+2*len(samples)))
	wavHeader(len(samples), b.SampleRate, buf)
	if err := rawToBuffer(samples, true, buf); err != nil {
		return nil, fmt.Errorf("Wav failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Raw encodes a mono buffer without any header, either as 16-bit PCM or as
// 32-bit floats, little-endian.
func (b AudioBuffer) Raw(pcm16 bool) ([]byte, error) {
	samples, err := b.Mono()
	if err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	if err := rawToBuffer(samples, pcm16, buf); err != nil {
		return nil, fmt.Errorf("Raw failed: %w", err)
	}
	return buf.Bytes(), nil
}

func rawToBuffer(data []float32, pcm16 bool, buf *bytes.Buffer) error {
	var err error
	if pcm16 {
		err = binary.Write(buf, binary.LittleEndian, QuantizeInt16(data, nil))
	} else {
		err = binary.Write(buf, binary.LittleEndian, data)
	}
	if err != nil {
		return fmt.Errorf("could not binary write data to binary buffer: %w", err)
	}
	return nil
}

// QuantizeInt16 converts normalized samples to 16-bit integers, appending to
// dst. Samples are scaled to the full int16 range (32767 above zero, 32768
// below), rounded half up with floor(x+0.5) and hard clipped, so 1.0 maps to
// 32767 and -1.0 to -32768. No dithering is applied.
func QuantizeInt16(samples []float32, dst []int16) []int16 {
	for _, v := range samples {
		dst = append(dst, quantize(v))
	}
	return dst
}

func quantize(v float32) int16 {
	s := float64(v)
	if math.IsNaN(s) {
		return 0
	}
	scale := float64(math.MaxInt16)
	if s < 0 {
		scale = -math.MinInt16
	}
	q := math.Floor(s*scale + 0.5)
	return int16(clamp(q, math.MinInt16, math.MaxInt16))
}

// wavHeader writes the 44 byte header of a mono 16-bit PCM .wav file
// containing sampleCount samples.
func wavHeader(sampleCount, sampleRate int, buf *bytes.Buffer) {
	// Refer to: http://www-mmsp.ece.mcgill.ca/Documents/AudioFormats/WAVE/WAVE.html
	const numChannels = 1
	const bytesPerSample = 2
	dataSize := bytesPerSample * numChannels * sampleCount
	buf.Write([]byte("RIFF"))
	binary.Write(buf, binary.LittleEndian, uint32(wavHeaderSize+dataSize-8))
	buf.Write([]byte("WAVE"))
	buf.Write([]byte("fmt "))
	binary.Write(buf, binary.LittleEndian, uint32(16))                                    // fmt chunk size
	binary.Write(buf, binary.LittleEndian, uint16(1))                                     // PCM
	binary.Write(buf, binary.LittleEndian, uint16(numChannels))                           // channels
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))                            // sample rate
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*numChannels*bytesPerSample)) // avgBytesPerSec
	binary.Write(buf, binary.LittleEndian, uint16(numChannels*bytesPerSample))            // blockAlign
	binary.Write(buf, binary.LittleEndian, uint16(8*bytesPerSample))                      // bits per sample
	buf.Write([]byte("data"))
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
