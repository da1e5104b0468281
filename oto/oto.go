// Package oto plays rendered sounds on the default audio device.
package oto

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/sfxgraph/sfxgraph"
)

type (
	// Context is an sfxgraph.AudioContext. Playing a buffer stops whatever
	// this context was playing before, so sounds never pile up when a user
	// auditions one edit after another.
	//
	// oto allows a single context per process.
	Context struct {
		sampleRate int
		newPlayer  func(io.Reader) player
		suspend    func() error

		mu      sync.Mutex
		current *Playback
	}

	// Playback is a sound being played.
	Playback struct {
		player player
		stop   chan struct{}
		done   chan struct{}
		once   sync.Once
	}

	player interface {
		Play()
		IsPlaying() bool
		Pause()
		Close() error
	}
)

const pollInterval = 10 * time.Millisecond

var _ sfxgraph.AudioContext = (*Context)(nil)

// NewContext opens the audio device for mono 16-bit output at sampleRate and
// waits until it is ready.
func NewContext(sampleRate int) (*Context, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{
		sampleRate: sampleRate,
		newPlayer:  func(r io.Reader) player { return ctx.NewPlayer(r) },
		suspend:    ctx.Suspend,
	}, nil
}

func (c *Context) SampleRate() int { return c.sampleRate }

// Play starts playing buffer, stopping the previous sound.
func (c *Context) Play(buffer sfxgraph.AudioBuffer) (sfxgraph.CloserWaiter, error) {
	if buffer.SampleRate != c.sampleRate {
		return nil, fmt.Errorf("cannot play a %d Hz buffer on a %d Hz context", buffer.SampleRate, c.sampleRate)
	}
	pcm, err := buffer.Raw(true)
	if err != nil {
		return nil, fmt.Errorf("cannot convert buffer for playback: %w", err)
	}
	p := &Playback{
		player: c.newPlayer(bytes.NewReader(pcm)),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	c.mu.Lock()
	prev := c.current
	c.current = p
	c.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
	p.player.Play()
	go p.watch()
	return p, nil
}

// Stop stops the current sound, if any.
func (c *Context) Stop() error {
	c.mu.Lock()
	prev := c.current
	c.current = nil
	c.mu.Unlock()
	if prev == nil {
		return nil
	}
	return prev.Close()
}

// Close stops playback and suspends the device.
func (c *Context) Close() error {
	if err := c.Stop(); err != nil {
		return err
	}
	if c.suspend != nil {
		if err := c.suspend(); err != nil {
			return fmt.Errorf("cannot suspend oto context: %w", err)
		}
	}
	return nil
}

func (p *Playback) watch() {
	defer close(p.done)
	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for p.player.IsPlaying() {
		select {
		case <-p.stop:
			return
		case <-t.C:
		}
	}
}

// Close stops the sound. It is safe to call more than once.
func (p *Playback) Close() (err error) {
	p.once.Do(func() {
		close(p.stop)
		p.player.Pause()
		if e := p.player.Close(); e != nil {
			err = fmt.Errorf("cannot close oto player: %w", e)
		}
	})
	return err
}

// Wait blocks until the sound has played to the end or was stopped.
func (p *Playback) Wait() {
	<-p.done
}
