package oto

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sfxgraph/sfxgraph"
	"github.com/stretchr/testify/require"
)

// fakePlayer "plays" by draining its reader on Play.
type fakePlayer struct {
	mu      sync.Mutex
	r       io.Reader
	data    []byte
	playing bool
	closed  bool
	hold    bool
}

func (f *fakePlayer) Play() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data, _ = io.ReadAll(f.r)
	f.playing = f.hold
}

func (f *fakePlayer) IsPlaying() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing
}

func (f *fakePlayer) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
}

func (f *fakePlayer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func newFakeContext(hold bool) (*Context, *[]*fakePlayer) {
	var players []*fakePlayer
	c := &Context{
		sampleRate: 48000,
		newPlayer: func(r io.Reader) player {
			p := &fakePlayer{r: r, hold: hold}
			players = append(players, p)
			return p
		},
	}
	return c, &players
}

func waitDone(t *testing.T, w sfxgraph.CloserWaiter) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("playback did not finish")
	}
}

func TestPlayFinishes(t *testing.T) {
	c, players := newFakeContext(false)
	w, err := c.Play(sfxgraph.NewMonoBuffer(48000, []float32{1, -1}))
	require.NoError(t, err)
	waitDone(t, w)
	require.Equal(t, []byte{0xff, 0x7f, 0x00, 0x80}, (*players)[0].data)
}

func TestPlayStopsPrevious(t *testing.T) {
	c, players := newFakeContext(true)
	first, err := c.Play(sfxgraph.NewMonoBuffer(48000, []float32{0}))
	require.NoError(t, err)
	second, err := c.Play(sfxgraph.NewMonoBuffer(48000, []float32{0}))
	require.NoError(t, err)
	waitDone(t, first)
	require.True(t, (*players)[0].closed)
	require.False(t, (*players)[1].closed)
	require.NoError(t, c.Close())
	waitDone(t, second)
	require.True(t, (*players)[1].closed)
}

func TestPlayRejectsWrongSampleRate(t *testing.T) {
	c, _ := newFakeContext(false)
	_, err := c.Play(sfxgraph.NewMonoBuffer(44100, []float32{0}))
	require.Error(t, err)
	_, err = c.Play(sfxgraph.AudioBuffer{SampleRate: 48000, Channels: [][]float32{{0}, {0}}})
	require.ErrorIs(t, err, sfxgraph.ErrUnsupportedFormat)
}
