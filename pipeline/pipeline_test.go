package pipeline_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sfxgraph/sfxgraph"
	"github.com/sfxgraph/sfxgraph/pipeline"
	"github.com/stretchr/testify/require"
)

// recorder is an sfxgraph.Engine that logs every call it receives.
type recorder struct {
	calls   []string
	next    sfxgraph.NodeHandle
	failGen bool
}

type recordedParam struct {
	r    *recorder
	node sfxgraph.NodeHandle
	name sfxgraph.ParamName
}

const destination sfxgraph.NodeHandle = 100

func (r *recorder) log(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) create(format string, args ...any) (sfxgraph.NodeHandle, error) {
	if r.failGen {
		return 0, errors.New("out of nodes")
	}
	h := r.next
	r.next++
	r.log("%d = "+format, append([]any{h}, args...)...)
	return h, nil
}

func (r *recorder) CreateOscillator(w sfxgraph.Waveform) (sfxgraph.NodeHandle, error) {
	return r.create("oscillator %v", w)
}

func (r *recorder) CreateGain() (sfxgraph.NodeHandle, error) {
	return r.create("gain")
}

func (r *recorder) CreateLoopingBufferSource(b sfxgraph.BufferHandle) (sfxgraph.NodeHandle, error) {
	return r.create("loop %d", b)
}

func (r *recorder) Param(node sfxgraph.NodeHandle, name sfxgraph.ParamName) (sfxgraph.AutomationTarget, error) {
	return &recordedParam{r: r, node: node, name: name}, nil
}

func (r *recorder) Destination() sfxgraph.NodeHandle { return destination }

func (r *recorder) Connect(src, dst sfxgraph.NodeHandle) error {
	r.log("connect %d %d", src, dst)
	return nil
}

func (r *recorder) Start(node sfxgraph.NodeHandle, when float64) error {
	r.log("start %d %v", node, when)
	return nil
}

func (p *recordedParam) SetValueAtTime(value, time float64) {
	p.r.log("%d.%s set %v @ %v", p.node, p.name, value, time)
}

func (p *recordedParam) LinearRampToValueAtTime(value, endTime float64) {
	p.r.log("%d.%s linear %v @ %v", p.node, p.name, value, endTime)
}

func (p *recordedParam) ExponentialRampToValueAtTime(value, endTime float64) {
	p.r.log("%d.%s exponential %v @ %v", p.node, p.name, value, endTime)
}

func TestCompile(t *testing.T) {
	freq := sfxgraph.NewParam(440,
		sfxgraph.Ramp{Kind: sfxgraph.Linear, Value: 880, EndTime: 0.5},
		sfxgraph.Ramp{Kind: sfxgraph.Exponential, Value: 220, EndTime: 0.25},
	)
	desc := sfxgraph.NewSoundDescription("test", 1,
		sfxgraph.NewNode(sfxgraph.Oscillator{Waveform: sfxgraph.Square, Frequency: freq}, 1),
		sfxgraph.NewNode(sfxgraph.Gain{Gain: sfxgraph.NewParam(0.5,
			sfxgraph.Ramp{Kind: sfxgraph.Instantaneous, Value: 0, EndTime: 0.75},
		)}, sfxgraph.Output),
		sfxgraph.NewNode(sfxgraph.PinkNoise{}, 1, sfxgraph.Output),
	)
	r := &recorder{}
	p, err := pipeline.Compile(desc, r, 7)
	require.NoError(t, err)
	require.Equal(t, []sfxgraph.NodeHandle{0, 1, 2}, p.Handles)
	require.Equal(t, []string{
		"0 = oscillator square",
		"0.frequency set 440 @ 0",
		"0.frequency exponential 220 @ 0.25",
		"0.frequency linear 880 @ 0.5",
		"start 0 0",
		"1 = gain",
		"1.gain set 0.5 @ 0",
		"1.gain set 0 @ 0.75",
		"2 = loop 7",
		"start 2 0",
		"connect 0 1",
		"connect 1 100",
		"connect 2 100",
		"connect 2 1",
	}, r.calls)
}

func TestCompileEmpty(t *testing.T) {
	r := &recorder{}
	p, err := pipeline.Compile(sfxgraph.NewSoundDescription("empty", 1), r, sfxgraph.NoBuffer)
	require.NoError(t, err)
	require.Empty(t, p.Handles)
	require.Empty(t, r.calls)
}

func TestCompileWrapsEngineErrors(t *testing.T) {
	desc := sfxgraph.NewSoundDescription("x", 1).AddNode(sfxgraph.Gain{Gain: sfxgraph.NewParam(1)})
	_, err := pipeline.Compile(desc, &recorder{failGen: true}, sfxgraph.NoBuffer)
	require.ErrorContains(t, err, "out of nodes")
}

func TestCompilePinkNoiseWithoutBufferPanics(t *testing.T) {
	desc := sfxgraph.NewSoundDescription("x", 1).AddNode(sfxgraph.PinkNoise{})
	require.Panics(t, func() {
		pipeline.Compile(desc, &recorder{}, sfxgraph.NoBuffer)
	})
}
