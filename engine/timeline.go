package engine

import (
	"fmt"
	"math"
	"sort"
)

type (
	eventKind int

	event struct {
		kind  eventKind
		value float64
		time  float64
	}

	// timeline is an automatable parameter. Events are kept sorted by time;
	// an event scheduled at the same time as existing events goes after them.
	// The value between events follows the rules of Web Audio AudioParams:
	// a set event holds its value until the next event, and a ramp event
	// interpolates from the previous event's value and time to its own.
	timeline struct {
		defaultValue float64
		events       []event
		cursor       int // number of events with time <= the last rendered time
		err          error
	}
)

const (
	setValue eventKind = iota
	linearRamp
	exponentialRamp
)

func newTimeline(defaultValue float64) *timeline {
	return &timeline{defaultValue: defaultValue}
}

func (t *timeline) insert(e event) {
	if t.err != nil {
		return
	}
	if math.IsNaN(e.value) || math.IsInf(e.value, 0) {
		t.err = fmt.Errorf("automation value must be finite (got %v)", e.value)
		return
	}
	if math.IsNaN(e.time) || math.IsInf(e.time, 0) || e.time < 0 {
		t.err = fmt.Errorf("automation time must be finite and non-negative (got %v)", e.time)
		return
	}
	if e.kind == exponentialRamp && e.value == 0 {
		t.err = fmt.Errorf("exponential ramp target must be non-zero")
		return
	}
	i := sort.Search(len(t.events), func(i int) bool { return t.events[i].time > e.time })
	t.events = append(t.events, event{})
	copy(t.events[i+1:], t.events[i:])
	t.events[i] = e
}

func (t *timeline) SetValueAtTime(value, time float64) {
	t.insert(event{kind: setValue, value: value, time: time})
}

func (t *timeline) LinearRampToValueAtTime(value, endTime float64) {
	t.insert(event{kind: linearRamp, value: value, time: endTime})
}

func (t *timeline) ExponentialRampToValueAtTime(value, endTime float64) {
	t.insert(event{kind: exponentialRamp, value: value, time: endTime})
}

// fill writes the parameter value for consecutive sample frames starting at
// frame into dst. Successive calls must not go back in time.
func (t *timeline) fill(dst []float32, frame int, sampleRate float64) {
	for k := range dst {
		dst[k] = float32(t.advance(float64(frame+k) / sampleRate))
	}
}

func (t *timeline) advance(time float64) float64 {
	for t.cursor < len(t.events) && t.events[t.cursor].time <= time {
		t.cursor++
	}
	v0, t0 := t.defaultValue, 0.0
	if t.cursor > 0 {
		prev := t.events[t.cursor-1]
		v0, t0 = prev.value, prev.time
	}
	if t.cursor == len(t.events) {
		return v0
	}
	next := t.events[t.cursor]
	switch next.kind {
	case linearRamp:
		return v0 + (next.value-v0)*(time-t0)/(next.time-t0)
	case exponentialRamp:
		if v0 == 0 || (v0 < 0) != (next.value < 0) {
			return v0
		}
		return v0 * math.Pow(next.value/v0, (time-t0)/(next.time-t0))
	}
	return v0
}

// valueAt evaluates the timeline at an arbitrary time without touching the
// render cursor.
func (t *timeline) valueAt(time float64) float64 {
	c := *t
	c.cursor = 0
	return c.advance(time)
}
