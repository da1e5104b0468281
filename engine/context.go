package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sfxgraph/sfxgraph"
	"github.com/viterin/vek/vek32"
)

type (
	// Context is an offline rendering context. Building the graph is not
	// safe for concurrent use; rendering happens on its own goroutine after
	// StartRendering and the graph cannot be changed afterwards.
	Context struct {
		engine     *Engine
		length     int
		sampleRate int
		nodes      []*node

		mu       sync.Mutex
		rendered bool
	}

	nodeKind int

	node struct {
		kind     nodeKind
		waveform sfxgraph.Waveform
		params   map[sfxgraph.ParamName]*timeline
		buffer   []float32
		inputs   []int

		started    bool
		startFrame int
		phase      float64
		pos        int
		out        []float32
	}
)

const (
	destinationNode nodeKind = iota
	oscillatorNode
	gainNode
	bufferSourceNode
)

const destination sfxgraph.NodeHandle = 0

var (
	ErrAlreadyRendered = errors.New("context has already been rendered")
	ErrAlreadyStarted  = errors.New("source has already been started")
)

var _ sfxgraph.OfflineContext = (*Context)(nil)

func newContext(e *Engine, length, sampleRate int) *Context {
	c := &Context{engine: e, length: length, sampleRate: sampleRate}
	c.nodes = append(c.nodes, &node{kind: destinationNode})
	return c
}

func (k nodeKind) String() string {
	switch k {
	case destinationNode:
		return "destination"
	case oscillatorNode:
		return "oscillator"
	case gainNode:
		return "gain"
	case bufferSourceNode:
		return "buffer source"
	}
	return fmt.Sprintf("nodeKind(%d)", int(k))
}

func (n *node) hasInput(i int) bool {
	for _, j := range n.inputs {
		if j == i {
			return true
		}
	}
	return false
}

func (n *node) acceptsInput() bool {
	return n.kind == destinationNode || n.kind == gainNode
}

func (c *Context) add(n *node) (sfxgraph.NodeHandle, error) {
	if err := c.checkBuilding(); err != nil {
		return 0, err
	}
	c.nodes = append(c.nodes, n)
	return sfxgraph.NodeHandle(len(c.nodes) - 1), nil
}

func (c *Context) checkBuilding() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rendered {
		return ErrAlreadyRendered
	}
	return nil
}

func (c *Context) node(h sfxgraph.NodeHandle) (*node, error) {
	if h < 0 || int(h) >= len(c.nodes) {
		return nil, fmt.Errorf("%w: node %d", ErrInvalidHandle, h)
	}
	return c.nodes[h], nil
}

func (c *Context) CreateOscillator(waveform sfxgraph.Waveform) (sfxgraph.NodeHandle, error) {
	switch waveform {
	case sfxgraph.Sine, sfxgraph.Square, sfxgraph.Sawtooth, sfxgraph.Triangle:
	default:
		return 0, fmt.Errorf("unknown waveform %v", waveform)
	}
	return c.add(&node{
		kind:     oscillatorNode,
		waveform: waveform,
		params:   map[sfxgraph.ParamName]*timeline{sfxgraph.FrequencyParam: newTimeline(440)},
	})
}

func (c *Context) CreateGain() (sfxgraph.NodeHandle, error) {
	return c.add(&node{
		kind:   gainNode,
		params: map[sfxgraph.ParamName]*timeline{sfxgraph.GainParam: newTimeline(1)},
	})
}

func (c *Context) CreateLoopingBufferSource(buffer sfxgraph.BufferHandle) (sfxgraph.NodeHandle, error) {
	samples, err := c.engine.buffer(buffer)
	if err != nil {
		return 0, err
	}
	return c.add(&node{kind: bufferSourceNode, buffer: samples})
}

func (c *Context) Param(h sfxgraph.NodeHandle, name sfxgraph.ParamName) (sfxgraph.AutomationTarget, error) {
	n, err := c.node(h)
	if err != nil {
		return nil, err
	}
	p, ok := n.params[name]
	if !ok {
		return nil, fmt.Errorf("%s node %d has no parameter %q", n.kind, h, name)
	}
	return p, nil
}

func (c *Context) Destination() sfxgraph.NodeHandle { return destination }

// Connect routes the output of src into dst. Connecting the same pair twice
// has no further effect.
func (c *Context) Connect(src, dst sfxgraph.NodeHandle) error {
	if err := c.checkBuilding(); err != nil {
		return err
	}
	s, err := c.node(src)
	if err != nil {
		return err
	}
	d, err := c.node(dst)
	if err != nil {
		return err
	}
	if s.kind == destinationNode {
		return fmt.Errorf("the destination has no outputs")
	}
	if !d.acceptsInput() {
		return fmt.Errorf("%s node %d does not accept inputs", d.kind, dst)
	}
	if !d.hasInput(int(src)) {
		d.inputs = append(d.inputs, int(src))
	}
	return nil
}

// Start schedules a source node to start playing at the given time, in
// seconds. A source can be started only once.
func (c *Context) Start(h sfxgraph.NodeHandle, when float64) error {
	if err := c.checkBuilding(); err != nil {
		return err
	}
	n, err := c.node(h)
	if err != nil {
		return err
	}
	if n.kind != oscillatorNode && n.kind != bufferSourceNode {
		return fmt.Errorf("%s node %d cannot be started", n.kind, h)
	}
	if math.IsNaN(when) || math.IsInf(when, 0) || when < 0 {
		return fmt.Errorf("start time must be finite and non-negative (got %v)", when)
	}
	if n.started {
		return ErrAlreadyStarted
	}
	n.started = true
	// first frame at or after when, tolerating rounding of when*sampleRate
	n.startFrame = int(math.Ceil(when*float64(c.sampleRate) - 1e-6))
	return nil
}

func (c *Context) PinkNoiseBuffer() (sfxgraph.BufferHandle, error) {
	return c.engine.PinkNoise(c.sampleRate), nil
}

func (c *Context) StartRendering(ctx context.Context) <-chan sfxgraph.RenderResult {
	ret := make(chan sfxgraph.RenderResult, 1)
	c.mu.Lock()
	already := c.rendered
	c.rendered = true
	c.mu.Unlock()
	if already {
		ret <- sfxgraph.RenderResult{Err: &sfxgraph.EngineError{Op: "StartRendering", Err: ErrAlreadyRendered}}
		return ret
	}
	go func() {
		samples, err := c.render(ctx)
		if err != nil {
			ret <- sfxgraph.RenderResult{Err: &sfxgraph.EngineError{Op: "rendering", Err: err}}
			return
		}
		ret <- sfxgraph.RenderResult{Buffer: sfxgraph.NewMonoBuffer(c.sampleRate, samples)}
	}()
	return ret
}

func (c *Context) render(ctx context.Context) (samples []float32, renderError error) {
	defer func() {
		if err := recover(); err != nil {
			renderError = fmt.Errorf("render panicked: %v", err)
		}
	}()
	for i, n := range c.nodes {
		for name, p := range n.params {
			if p.err != nil {
				return nil, fmt.Errorf("%s node %d %s: %w", n.kind, i, name, p.err)
			}
		}
		n.out = make([]float32, BlockSize)
	}
	order, cyclic := processingOrder(c.nodes)
	samples = make([]float32, c.length)
	tmp := make([]float32, BlockSize)
	sr := float64(c.sampleRate)
	for frame := 0; frame < c.length; frame += BlockSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		size := min(BlockSize, c.length-frame)
		for _, i := range order {
			n := c.nodes[i]
			out := n.out[:size]
			if cyclic[i] {
				vek32.Zeros_Into(out, size)
				continue
			}
			switch n.kind {
			case oscillatorNode:
				n.params[sfxgraph.FrequencyParam].fill(tmp[:size], frame, sr)
				for k := range out {
					if !n.playing(frame + k) {
						out[k] = 0
						continue
					}
					out[k] = float32(wave(n.waveform, n.phase))
					n.phase += float64(tmp[k]) / sr
					n.phase -= math.Floor(n.phase)
				}
			case bufferSourceNode:
				for k := range out {
					if len(n.buffer) == 0 || !n.playing(frame + k) {
						out[k] = 0
						continue
					}
					out[k] = n.buffer[n.pos]
					n.pos = (n.pos + 1) % len(n.buffer)
				}
			case gainNode:
				c.mix(n, out)
				n.params[sfxgraph.GainParam].fill(tmp[:size], frame, sr)
				vek32.Mul_Inplace(out, tmp[:size])
			case destinationNode:
				c.mix(n, out)
			}
		}
		copy(samples[frame:frame+size], c.nodes[destination].out[:size])
	}
	return samples, nil
}

// mix sums the current block of all the inputs of n into out.
func (c *Context) mix(n *node, out []float32) {
	vek32.Zeros_Into(out, len(out))
	for _, i := range n.inputs {
		vek32.Add_Inplace(out, c.nodes[i].out[:len(out)])
	}
}

func (n *node) playing(frame int) bool {
	return n.started && frame >= n.startFrame
}

// wave evaluates a naive (not band-limited) waveform at phase in [0,1). All
// waveforms start at zero or at their positive peak and have unit amplitude.
func wave(w sfxgraph.Waveform, phase float64) float64 {
	switch w {
	case sfxgraph.Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case sfxgraph.Sawtooth:
		if phase < 0.5 {
			return 2 * phase
		}
		return 2*phase - 2
	case sfxgraph.Triangle:
		switch {
		case phase < 0.25:
			return 4 * phase
		case phase < 0.75:
			return 2 - 4*phase
		}
		return 4*phase - 4
	}
	return math.Sin(2 * math.Pi * phase)
}
