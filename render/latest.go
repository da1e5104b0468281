package render

import (
	"context"
	"sync"

	"github.com/sfxgraph/sfxgraph"
)

type (
	// Latest renders submitted descriptions in the background and only ever
	// delivers the result of the most recent submission. Submitting cancels
	// the render in flight, and a result that arrives after a newer
	// submission is discarded. This is what an editor needs when every edit
	// triggers a re-render.
	Latest struct {
		renderer Renderer
		results  chan Rendered

		mu         sync.Mutex
		generation uint64
		cancel     context.CancelFunc
	}

	// Rendered is the result of one submission.
	Rendered struct {
		Generation  uint64
		Description sfxgraph.SoundDescription
		Buffer      sfxgraph.AudioBuffer
		Err         error
	}
)

func NewLatest(r Renderer) *Latest {
	return &Latest{renderer: r, results: make(chan Rendered, 1)}
}

// Results receives the result of the latest submission. At most one result
// is buffered; an unread result is replaced by a newer one.
func (l *Latest) Results() <-chan Rendered {
	return l.results
}

// Submit starts rendering desc and returns its generation number.
func (l *Latest) Submit(ctx context.Context, desc sfxgraph.SoundDescription) uint64 {
	ctx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.generation++
	gen := l.generation
	l.cancel = cancel
	select {
	case <-l.results: // unread and now stale
	default:
	}
	l.mu.Unlock()
	go func() {
		defer cancel()
		buffer, err := l.renderer.Render(ctx, desc)
		l.deliver(Rendered{Generation: gen, Description: desc, Buffer: buffer, Err: err})
	}()
	return gen
}

// Generation is the number of the latest submission.
func (l *Latest) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generation
}

// Close cancels the render in flight, if any.
func (l *Latest) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *Latest) deliver(r Rendered) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r.Generation != l.generation {
		return // stale
	}
	for !trySend(l.results, r) {
		// drop the unread, older result
		select {
		case <-l.results:
		default:
		}
	}
}

func trySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}
