package engine_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/sfxgraph/sfxgraph"
	"github.com/sfxgraph/sfxgraph/engine"
	"github.com/stretchr/testify/require"
)

const sampleRate = 48000

func render(t *testing.T, c sfxgraph.OfflineContext) []float32 {
	t.Helper()
	res := <-c.StartRendering(context.Background())
	require.NoError(t, res.Err)
	samples, err := res.Buffer.Mono()
	require.NoError(t, err)
	return samples
}

func newContext(t *testing.T, length int) sfxgraph.OfflineContext {
	t.Helper()
	c, err := engine.New().NewOfflineContext(1, length, sampleRate)
	require.NoError(t, err)
	return c
}

func TestNewOfflineContextValidates(t *testing.T) {
	e := engine.New()
	for _, tc := range []struct {
		name                   string
		channels, length, rate int
	}{
		{"stereo", 2, 100, sampleRate},
		{"empty", 1, 0, sampleRate},
		{"negative", 1, -1, sampleRate},
		{"too long", 1, engine.MaxLength + 1, sampleRate},
		{"rate too low", 1, 100, 100},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.NewOfflineContext(tc.channels, tc.length, tc.rate)
			var engineErr *sfxgraph.EngineError
			require.ErrorAs(t, err, &engineErr)
		})
	}
}

func TestEmptyGraphIsSilent(t *testing.T) {
	samples := render(t, newContext(t, 300))
	require.Len(t, samples, 300)
	for _, s := range samples {
		require.Zero(t, s)
	}
}

func TestSineOscillator(t *testing.T) {
	c := newContext(t, 480)
	osc, err := c.CreateOscillator(sfxgraph.Sine)
	require.NoError(t, err)
	p, err := c.Param(osc, sfxgraph.FrequencyParam)
	require.NoError(t, err)
	p.SetValueAtTime(1000, 0)
	require.NoError(t, c.Connect(osc, c.Destination()))
	require.NoError(t, c.Start(osc, 0))
	samples := render(t, c)
	for i, s := range samples {
		want := math.Sin(2 * math.Pi * 1000 * float64(i) / sampleRate)
		require.InDelta(t, want, s, 1e-4, "sample %d", i)
	}
}

func TestUnstartedSourceIsSilent(t *testing.T) {
	c := newContext(t, 256)
	osc, err := c.CreateOscillator(sfxgraph.Square)
	require.NoError(t, err)
	require.NoError(t, c.Connect(osc, c.Destination()))
	for _, s := range render(t, c) {
		require.Zero(t, s)
	}
}

func TestStartTimeDelaysSource(t *testing.T) {
	c := newContext(t, 200)
	osc, err := c.CreateOscillator(sfxgraph.Square)
	require.NoError(t, err)
	require.NoError(t, c.Connect(osc, c.Destination()))
	require.NoError(t, c.Start(osc, 100.0/sampleRate))
	samples := render(t, c)
	require.Zero(t, samples[99])
	require.Equal(t, float32(1), samples[100])
}

func TestGainAutomation(t *testing.T) {
	e := engine.New()
	ones := e.AddBuffer([]float32{1})
	c, err := e.NewOfflineContext(1, 4801, sampleRate)
	require.NoError(t, err)
	src, err := c.CreateLoopingBufferSource(ones)
	require.NoError(t, err)
	g, err := c.CreateGain()
	require.NoError(t, err)
	p, err := c.Param(g, sfxgraph.GainParam)
	require.NoError(t, err)
	p.SetValueAtTime(0, 0)
	p.LinearRampToValueAtTime(1, 0.1)
	require.NoError(t, c.Connect(src, g))
	require.NoError(t, c.Connect(g, c.Destination()))
	require.NoError(t, c.Start(src, 0))
	samples := render(t, c)
	require.InDelta(t, 0, samples[0], 1e-6)
	require.InDelta(t, 0.5, samples[2400], 1e-4)
	require.InDelta(t, 1, samples[4800], 1e-6)
}

func TestExponentialRampHoldsFromZero(t *testing.T) {
	e := engine.New()
	ones := e.AddBuffer([]float32{1})
	c, err := e.NewOfflineContext(1, 1000, sampleRate)
	require.NoError(t, err)
	src, _ := c.CreateLoopingBufferSource(ones)
	g, _ := c.CreateGain()
	p, err := c.Param(g, sfxgraph.GainParam)
	require.NoError(t, err)
	p.SetValueAtTime(0, 0)
	p.ExponentialRampToValueAtTime(1, 0.01)
	require.NoError(t, c.Connect(src, g))
	require.NoError(t, c.Connect(g, c.Destination()))
	require.NoError(t, c.Start(src, 0))
	samples := render(t, c)
	require.Zero(t, samples[10])
	require.Zero(t, samples[479])
	require.Equal(t, float32(1), samples[480])
}

func TestLoopingBufferSource(t *testing.T) {
	e := engine.New()
	buf := e.AddBuffer([]float32{1, 2, 3})
	c, err := e.NewOfflineContext(1, 7, sampleRate)
	require.NoError(t, err)
	src, err := c.CreateLoopingBufferSource(buf)
	require.NoError(t, err)
	require.NoError(t, c.Connect(src, c.Destination()))
	require.NoError(t, c.Start(src, 0))
	require.Equal(t, []float32{1, 2, 3, 1, 2, 3, 1}, render(t, c))
}

func TestInputsAreSummed(t *testing.T) {
	e := engine.New()
	buf := e.AddBuffer([]float32{0.25})
	c, err := e.NewOfflineContext(1, 3, sampleRate)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		src, err := c.CreateLoopingBufferSource(buf)
		require.NoError(t, err)
		require.NoError(t, c.Connect(src, c.Destination()))
		require.NoError(t, c.Connect(src, c.Destination())) // duplicate connection has no effect
		require.NoError(t, c.Start(src, 0))
	}
	require.Equal(t, []float32{0.75, 0.75, 0.75}, render(t, c))
}

func TestCycleIsMuted(t *testing.T) {
	e := engine.New()
	buf := e.AddBuffer([]float32{1})
	c, err := e.NewOfflineContext(1, 10, sampleRate)
	require.NoError(t, err)
	src, _ := c.CreateLoopingBufferSource(buf)
	g1, _ := c.CreateGain()
	g2, _ := c.CreateGain()
	require.NoError(t, c.Connect(src, g1))
	require.NoError(t, c.Connect(g1, g2))
	require.NoError(t, c.Connect(g2, g1))
	require.NoError(t, c.Connect(g2, c.Destination()))
	require.NoError(t, c.Connect(src, c.Destination()))
	require.NoError(t, c.Start(src, 0))
	for _, s := range render(t, c) {
		require.Equal(t, float32(1), s)
	}
}

func TestGraphErrors(t *testing.T) {
	c := newContext(t, 10)
	osc, err := c.CreateOscillator(sfxgraph.Sine)
	require.NoError(t, err)
	g, err := c.CreateGain()
	require.NoError(t, err)
	require.Error(t, c.Connect(g, osc), "oscillators have no inputs")
	require.Error(t, c.Connect(c.Destination(), g), "the destination has no outputs")
	require.ErrorIs(t, c.Connect(osc, 42), engine.ErrInvalidHandle)
	require.Error(t, c.Start(g, 0), "gains cannot be started")
	require.NoError(t, c.Start(osc, 0))
	require.ErrorIs(t, c.Start(osc, 0), engine.ErrAlreadyStarted)
	_, err = c.Param(osc, sfxgraph.GainParam)
	require.Error(t, err)
	_, err = c.CreateLoopingBufferSource(99)
	require.ErrorIs(t, err, engine.ErrInvalidHandle)
}

func TestInvalidAutomationFailsRender(t *testing.T) {
	c := newContext(t, 10)
	g, err := c.CreateGain()
	require.NoError(t, err)
	p, err := c.Param(g, sfxgraph.GainParam)
	require.NoError(t, err)
	p.ExponentialRampToValueAtTime(0, 1)
	res := <-c.StartRendering(context.Background())
	var engineErr *sfxgraph.EngineError
	require.ErrorAs(t, res.Err, &engineErr)
}

func TestRenderOnlyOnce(t *testing.T) {
	c := newContext(t, 10)
	render(t, c)
	res := <-c.StartRendering(context.Background())
	require.ErrorIs(t, res.Err, engine.ErrAlreadyRendered)
	_, err := c.CreateGain()
	require.ErrorIs(t, err, engine.ErrAlreadyRendered)
}

func TestCancelledRender(t *testing.T) {
	c := newContext(t, sampleRate)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := <-c.StartRendering(ctx)
	require.True(t, errors.Is(res.Err, context.Canceled))
}

func TestPinkNoiseIsCachedAndDeterministic(t *testing.T) {
	e := engine.New()
	c1, err := e.NewOfflineContext(1, 1000, sampleRate)
	require.NoError(t, err)
	c2, err := e.NewOfflineContext(1, 1000, sampleRate)
	require.NoError(t, err)
	h1, err := c1.PinkNoiseBuffer()
	require.NoError(t, err)
	h2, err := c2.PinkNoiseBuffer()
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	other := engine.New()
	c3, err := other.NewOfflineContext(1, 1000, sampleRate)
	require.NoError(t, err)
	h3, err := c3.PinkNoiseBuffer()
	require.NoError(t, err)

	play := func(c sfxgraph.OfflineContext, h sfxgraph.BufferHandle) []float32 {
		src, err := c.CreateLoopingBufferSource(h)
		require.NoError(t, err)
		require.NoError(t, c.Connect(src, c.Destination()))
		require.NoError(t, c.Start(src, 0))
		return render(t, c)
	}
	a, b := play(c1, h1), play(c3, h3)
	require.Equal(t, a, b)
	nonZero := false
	for _, s := range a {
		require.Less(t, math.Abs(float64(s)), 1.0)
		nonZero = nonZero || s != 0
	}
	require.True(t, nonZero)
}
