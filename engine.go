package sfxgraph

import (
	"context"
	"fmt"
)

type (
	// NodeHandle identifies a node created in an engine context. Handles are
	// only meaningful for the context that created them.
	NodeHandle int

	// BufferHandle identifies a sample buffer owned by an engine.
	BufferHandle int

	// ParamName names an automatable parameter of an engine node.
	ParamName string

	// AutomationTarget is an automatable engine parameter. Its scheduling
	// methods are stateful: each call appends an event to the parameter's
	// timeline, and ramps start from wherever the previous event left the
	// parameter, so the order of calls matters.
	AutomationTarget interface {
		SetValueAtTime(value, time float64)
		LinearRampToValueAtTime(value, endTime float64)
		ExponentialRampToValueAtTime(value, endTime float64)
	}

	// Engine is the node graph building part of an audio rendering engine.
	Engine interface {
		CreateOscillator(waveform Waveform) (NodeHandle, error)
		CreateGain() (NodeHandle, error)
		CreateLoopingBufferSource(buffer BufferHandle) (NodeHandle, error)
		// Param returns an automatable parameter of a node, e.g.
		// FrequencyParam of an oscillator or GainParam of a gain.
		Param(node NodeHandle, name ParamName) (AutomationTarget, error)
		// Destination is the final output of the engine context.
		Destination() NodeHandle
		Connect(src, dst NodeHandle) error
		Start(node NodeHandle, when float64) error
	}

	// OfflineContext is an Engine that renders a fixed number of samples as
	// fast as possible instead of in real time.
	OfflineContext interface {
		Engine
		// PinkNoiseBuffer returns a buffer of pink noise at the context's
		// sample rate. The buffer is owned by the engine and may be shared
		// between contexts.
		PinkNoiseBuffer() (BufferHandle, error)
		// StartRendering runs the render in the background. Exactly one
		// RenderResult is sent on the returned channel. A context can be
		// rendered only once.
		StartRendering(ctx context.Context) <-chan RenderResult
	}

	// Enginer creates offline contexts. It is to engines what a Synther is
	// to synths: a factory that can be shared and reused.
	Enginer interface {
		Name() string
		NewOfflineContext(numChannels, length, sampleRate int) (OfflineContext, error)
	}

	RenderResult struct {
		Buffer AudioBuffer
		Err    error
	}

	// EngineError is returned when the rendering engine fails. The engine
	// error is opaque to callers; Op tells which step failed.
	EngineError struct {
		Op  string
		Err error
	}
)

const (
	FrequencyParam ParamName = "frequency"
	GainParam      ParamName = "gain"
)

// NoBuffer is passed where a buffer is optional and none was allocated.
const NoBuffer BufferHandle = -1

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine %s failed: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}
