package render_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/sfxgraph/sfxgraph"
	"github.com/sfxgraph/sfxgraph/engine"
	"github.com/sfxgraph/sfxgraph/render"
	"github.com/stretchr/testify/require"
)

func chirp(duration float64) sfxgraph.SoundDescription {
	osc := sfxgraph.Oscillator{Waveform: sfxgraph.Sine, Frequency: sfxgraph.NewParam(1000)}
	gain := sfxgraph.Gain{Gain: sfxgraph.NewParam(1,
		sfxgraph.Ramp{Kind: sfxgraph.Exponential, Value: 0.01, EndTime: duration},
	)}
	return sfxgraph.NewSoundDescription("Chirp", duration,
		sfxgraph.NewNode(osc, 1),
		sfxgraph.NewNode(gain, sfxgraph.Output),
	)
}

func TestRenderChirp(t *testing.T) {
	r := render.New(engine.New(), 48000)
	buffer, err := r.Render(context.Background(), chirp(0.2))
	require.NoError(t, err)
	require.Equal(t, 48000, buffer.SampleRate)
	require.Equal(t, 1, buffer.NumChannels())
	require.Equal(t, 9600, buffer.Length())

	samples, err := buffer.Mono()
	require.NoError(t, err)
	peak := float32(0)
	for _, s := range samples {
		peak = max(peak, s, -s)
	}
	require.InDelta(t, 1, peak, 0.01)

	b, err := buffer.Wav()
	require.NoError(t, err)
	require.Len(t, b, 19244)
	dec := wav.NewDecoder(bytes.NewReader(b))
	require.True(t, dec.IsValidFile())
	pcm, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	require.Equal(t, 9600, pcm.NumFrames())
}

func TestRenderIsDeterministic(t *testing.T) {
	desc := chirp(0.05).AddNode(sfxgraph.PinkNoise{}).ToggleConnection(2, sfxgraph.Output, true)
	a, err := render.New(engine.New(), 0).Render(context.Background(), desc)
	require.NoError(t, err)
	b, err := render.New(engine.New(), 0).Render(context.Background(), desc)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestNumSamplesRounds(t *testing.T) {
	r := render.New(engine.New(), 44100)
	require.Equal(t, 4410, r.NumSamples(0.1))
	require.Equal(t, 1, r.NumSamples(1.0/44100*0.6))
}

func TestRenderFailuresAreEngineErrors(t *testing.T) {
	r := render.New(engine.New(), 48000)
	for _, d := range []float64{0, -1, 1e9} {
		_, err := r.Render(context.Background(), chirp(1).WithDuration(d))
		var engineErr *sfxgraph.EngineError
		require.ErrorAs(t, err, &engineErr, "duration %v", d)
	}
}

func TestLatestDiscardsStaleResults(t *testing.T) {
	l := render.NewLatest(render.New(engine.New(), 48000))
	defer l.Close()
	l.Submit(context.Background(), chirp(10))
	gen := l.Submit(context.Background(), chirp(0.01))
	require.Equal(t, gen, l.Generation())
	select {
	case res := <-l.Results():
		require.NoError(t, res.Err)
		require.Equal(t, gen, res.Generation)
		require.Equal(t, 480, res.Buffer.Length())
	case <-time.After(10 * time.Second):
		t.Fatal("no render result")
	}
}
