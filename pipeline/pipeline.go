// Package pipeline compiles sound descriptions into node graphs on an audio
// rendering engine.
package pipeline

import (
	"fmt"

	"github.com/sfxgraph/sfxgraph"
)

type (
	// Pipeline is the result of compiling a description: Handles[i] is the
	// engine node instantiated for node i of the description.
	Pipeline struct {
		Handles []sfxgraph.NodeHandle
	}

	pipelineBuilder struct {
		engine  sfxgraph.Engine
		noise   sfxgraph.BufferHandle
		handles []sfxgraph.NodeHandle
	}
)

// Compile instantiates every node of desc on the engine, in node order, and
// then wires the connections. Sources are started at time zero. noise is the
// buffer played by pink noise nodes; it may be sfxgraph.NoBuffer when desc
// has none.
//
// Errors from the engine are returned wrapped. A connection to a node that
// does not exist, or a pink noise node without a noise buffer, means the
// description was built bypassing its constructors, and Compile panics.
func Compile(desc sfxgraph.SoundDescription, engine sfxgraph.Engine, noise sfxgraph.BufferHandle) (*Pipeline, error) {
	b := &pipelineBuilder{engine: engine, noise: noise, handles: make([]sfxgraph.NodeHandle, 0, desc.NumNodes())}
	nodes := desc.Nodes()
	for i, n := range nodes {
		h, err := b.instantiate(n.Data())
		if err != nil {
			return nil, fmt.Errorf("node %d (%v): %w", i, n.Kind(), err)
		}
		b.handles = append(b.handles, h)
	}
	for i, n := range nodes {
		for _, target := range n.Connections() {
			if err := b.connect(i, target); err != nil {
				return nil, fmt.Errorf("connecting node %d to %d: %w", i, target, err)
			}
		}
	}
	return &Pipeline{Handles: b.handles}, nil
}

func (b *pipelineBuilder) instantiate(data sfxgraph.NodeData) (sfxgraph.NodeHandle, error) {
	switch d := data.(type) {
	case sfxgraph.Oscillator:
		h, err := b.engine.CreateOscillator(d.Waveform)
		if err != nil {
			return 0, err
		}
		if err := b.schedule(h, sfxgraph.FrequencyParam, d.Frequency); err != nil {
			return 0, err
		}
		return h, b.engine.Start(h, 0)
	case sfxgraph.Gain:
		h, err := b.engine.CreateGain()
		if err != nil {
			return 0, err
		}
		return h, b.schedule(h, sfxgraph.GainParam, d.Gain)
	case sfxgraph.PinkNoise:
		if b.noise == sfxgraph.NoBuffer {
			panic("pipeline: pink noise node compiled without a noise buffer")
		}
		h, err := b.engine.CreateLoopingBufferSource(b.noise)
		if err != nil {
			return 0, err
		}
		return h, b.engine.Start(h, 0)
	}
	panic(fmt.Sprintf("pipeline: unknown node data %T", data))
}

// schedule sets the initial value at time zero, then applies the ramps in
// their stored order. Engine automation is order dependent: every ramp starts
// from where the previous event left the parameter.
func (b *pipelineBuilder) schedule(h sfxgraph.NodeHandle, name sfxgraph.ParamName, p sfxgraph.Param) error {
	target, err := b.engine.Param(h, name)
	if err != nil {
		return err
	}
	target.SetValueAtTime(p.InitialValue(), 0)
	for _, r := range p.Ramps() {
		switch r.Kind {
		case sfxgraph.Exponential:
			target.ExponentialRampToValueAtTime(r.Value, r.EndTime)
		case sfxgraph.Linear:
			target.LinearRampToValueAtTime(r.Value, r.EndTime)
		case sfxgraph.Instantaneous:
			target.SetValueAtTime(r.Value, r.EndTime)
		default:
			return fmt.Errorf("unknown ramp kind %v", r.Kind)
		}
	}
	return nil
}

func (b *pipelineBuilder) connect(src, target int) error {
	dst := b.engine.Destination()
	if target != sfxgraph.Output {
		if target < 0 || target >= len(b.handles) {
			panic(fmt.Sprintf("pipeline: node %d connects to missing node %d", src, target))
		}
		dst = b.handles[target]
	}
	return b.engine.Connect(b.handles[src], dst)
}
