// Package engine is a pure-Go offline audio rendering engine. It implements
// the small subset of the Web Audio node graph that sound descriptions need:
// oscillators, gains, looping buffer sources and a destination, with
// sample-accurate parameter automation.
package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sfxgraph/sfxgraph"
)

const (
	// BlockSize is the number of frames rendered at a time. Cancellation is
	// checked between blocks.
	BlockSize = 128

	MinSampleRate = 3000
	MaxSampleRate = 768000

	// MaxLength is the longest render accepted, in frames.
	MaxLength = 1 << 26
)

var ErrInvalidHandle = errors.New("invalid handle")

// Engine is an sfxgraph.Enginer. It owns sample buffers, such as the pink
// noise buffers, and shares them between all the contexts it creates. The
// zero value is ready to use; an Engine must not be copied after first use.
type Engine struct {
	mu      sync.Mutex
	buffers [][]float32
	noise   map[int]sfxgraph.BufferHandle
}

var _ sfxgraph.Enginer = (*Engine)(nil)

func New() *Engine {
	return &Engine{}
}

func (e *Engine) Name() string { return "Go" }

func (e *Engine) NewOfflineContext(numChannels, length, sampleRate int) (sfxgraph.OfflineContext, error) {
	if numChannels != 1 {
		return nil, &sfxgraph.EngineError{Op: "NewOfflineContext", Err: fmt.Errorf("only mono rendering is supported (got %d channels)", numChannels)}
	}
	if length <= 0 || length > MaxLength {
		return nil, &sfxgraph.EngineError{Op: "NewOfflineContext", Err: fmt.Errorf("length must be in [1, %d] frames (got %d)", MaxLength, length)}
	}
	if sampleRate < MinSampleRate || sampleRate > MaxSampleRate {
		return nil, &sfxgraph.EngineError{Op: "NewOfflineContext", Err: fmt.Errorf("sample rate must be in [%d, %d] Hz (got %d)", MinSampleRate, MaxSampleRate, sampleRate)}
	}
	return newContext(e, length, sampleRate), nil
}

// AddBuffer copies samples into a new engine owned buffer, which any context
// of this engine can then play with a looping buffer source.
func (e *Engine) AddBuffer(samples []float32) sfxgraph.BufferHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addBufferLocked(append([]float32(nil), samples...))
}

func (e *Engine) addBufferLocked(samples []float32) sfxgraph.BufferHandle {
	e.buffers = append(e.buffers, samples)
	return sfxgraph.BufferHandle(len(e.buffers) - 1)
}

// PinkNoise returns the pink noise buffer for a sample rate, generating it on
// first use. Later calls return the same handle.
func (e *Engine) PinkNoise(sampleRate int) sfxgraph.BufferHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	if h, ok := e.noise[sampleRate]; ok {
		return h
	}
	if e.noise == nil {
		e.noise = map[int]sfxgraph.BufferHandle{}
	}
	h := e.addBufferLocked(pinkNoise(sampleRate))
	e.noise[sampleRate] = h
	return h
}

func (e *Engine) buffer(h sfxgraph.BufferHandle) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if h < 0 || int(h) >= len(e.buffers) {
		return nil, fmt.Errorf("%w: buffer %d", ErrInvalidHandle, h)
	}
	return e.buffers[h], nil
}
