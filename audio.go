package sfxgraph

import "time"

type (
	// AudioBuffer is rendered audio: one slice of normalized float samples
	// (roughly in [-1,1]) per channel, all of the same length. The renderer
	// only ever produces mono buffers.
	AudioBuffer struct {
		SampleRate int
		Channels   [][]float32
	}

	// AudioContext plays rendered buffers. Starting to play a buffer stops
	// whatever was playing before.
	AudioContext interface {
		Play(buffer AudioBuffer) (CloserWaiter, error)
		Close() error
	}

	// CloserWaiter is a handle to a playing buffer: Close stops playback
	// early, Wait blocks until playback has finished or was stopped.
	CloserWaiter interface {
		Close() error
		Wait()
	}
)

// NewMonoBuffer wraps samples into a single channel buffer.
func NewMonoBuffer(sampleRate int, samples []float32) AudioBuffer {
	return AudioBuffer{SampleRate: sampleRate, Channels: [][]float32{samples}}
}

func (b AudioBuffer) NumChannels() int { return len(b.Channels) }

// Length is the number of sample frames in the buffer.
func (b AudioBuffer) Length() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

func (b AudioBuffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Length()) * time.Second / time.Duration(b.SampleRate)
}

// Mono returns the samples of a single channel buffer.
func (b AudioBuffer) Mono() ([]float32, error) {
	if len(b.Channels) != 1 {
		return nil, unsupportedChannels(len(b.Channels))
	}
	return b.Channels[0], nil
}
