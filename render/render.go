// Package render turns sound descriptions into audio buffers using an
// offline rendering engine.
package render

import (
	"context"
	"math"

	"github.com/sfxgraph/sfxgraph"
	"github.com/sfxgraph/sfxgraph/pipeline"
)

// DefaultSampleRate is the rate sounds are rendered at unless configured
// otherwise.
const DefaultSampleRate = 48000

// Renderer renders descriptions into mono buffers. Independent renders may
// run concurrently: each gets its own offline context.
type Renderer struct {
	Engine     sfxgraph.Enginer
	SampleRate int
}

func New(engine sfxgraph.Enginer, sampleRate int) Renderer {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return Renderer{Engine: engine, SampleRate: sampleRate}
}

// NumSamples is the length of the buffer rendered for a sound of the given
// duration, in seconds.
func (r Renderer) NumSamples(duration float64) int {
	return int(math.Round(float64(r.SampleRate) * duration))
}

// Render compiles desc onto a fresh offline context and renders it to
// completion. All failures are *sfxgraph.EngineError; no partial buffer is
// returned.
func (r Renderer) Render(ctx context.Context, desc sfxgraph.SoundDescription) (sfxgraph.AudioBuffer, error) {
	ret := <-r.RenderAsync(ctx, desc)
	return ret.Buffer, ret.Err
}

// RenderAsync starts rendering desc and returns a channel that receives
// exactly one result.
func (r Renderer) RenderAsync(ctx context.Context, desc sfxgraph.SoundDescription) <-chan sfxgraph.RenderResult {
	oc, err := r.Engine.NewOfflineContext(1, r.NumSamples(desc.Duration()), r.SampleRate)
	if err != nil {
		return failed(asEngineError("NewOfflineContext", err))
	}
	noise := sfxgraph.NoBuffer
	if desc.HasKind(sfxgraph.PinkNoiseKind) {
		if noise, err = oc.PinkNoiseBuffer(); err != nil {
			return failed(asEngineError("PinkNoiseBuffer", err))
		}
	}
	if _, err := pipeline.Compile(desc, oc, noise); err != nil {
		return failed(asEngineError("compile", err))
	}
	return oc.StartRendering(ctx)
}

func failed(err error) <-chan sfxgraph.RenderResult {
	c := make(chan sfxgraph.RenderResult, 1)
	c <- sfxgraph.RenderResult{Err: err}
	return c
}

func asEngineError(op string, err error) error {
	if _, ok := err.(*sfxgraph.EngineError); ok {
		return err
	}
	return &sfxgraph.EngineError{Op: op, Err: err}
}
