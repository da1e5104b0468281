package sfxgraph

import (
	"slices"
)

// Param is an automatable parameter: an initial value followed by ramps. The
// ramps are always kept sorted by EndTime; ramps with equal end times keep
// the order they were given in. A Param is a value: all the With* methods
// return a modified copy and never touch the receiver.
type Param struct {
	initialValue float64
	ramps        []Ramp
}

// NewParam returns a Param starting at initialValue and following ramps,
// which can be given in any order.
func NewParam(initialValue float64, ramps ...Ramp) Param {
	return Param{initialValue: initialValue, ramps: sortRamps(ramps)}
}

func sortRamps(ramps []Ramp) []Ramp {
	if len(ramps) == 0 {
		return nil
	}
	ret := slices.Clone(ramps)
	slices.SortStableFunc(ret, func(a, b Ramp) int {
		switch {
		case a.EndTime < b.EndTime:
			return -1
		case a.EndTime > b.EndTime:
			return 1
		}
		return 0
	})
	return ret
}

func (p Param) InitialValue() float64 { return p.initialValue }

// Ramps returns a copy of the sorted ramps.
func (p Param) Ramps() []Ramp { return slices.Clone(p.ramps) }

func (p Param) NumRamps() int { return len(p.ramps) }

// Ramp returns the i:th ramp in end time order.
func (p Param) Ramp(i int) (Ramp, bool) {
	if i < 0 || i >= len(p.ramps) {
		return Ramp{}, false
	}
	return p.ramps[i], true
}

// LastValue is the value the parameter settles to after the last ramp.
func (p Param) LastValue() float64 {
	if len(p.ramps) == 0 {
		return p.initialValue
	}
	return p.ramps[len(p.ramps)-1].Value
}

// LastEndTime is the time of the last ramp, or 0 if there are none.
func (p Param) LastEndTime() float64 {
	if len(p.ramps) == 0 {
		return 0
	}
	return p.ramps[len(p.ramps)-1].EndTime
}

func (p Param) WithInitialValue(v float64) Param {
	p.initialValue = v
	return p
}

func (p Param) WithRamps(ramps []Ramp) Param {
	p.ramps = sortRamps(ramps)
	return p
}

// AddRamp appends a ramp that holds the last value for another quarter of a
// second, which is what the editor offers as a starting point.
func (p Param) AddRamp() Param {
	return p.WithRamps(append(p.Ramps(), Ramp{Kind: Exponential, Value: p.LastValue(), EndTime: p.LastEndTime() + 0.25}))
}

// WithRamp replaces the i:th ramp and resorts. Out of range indices return
// the Param unchanged.
func (p Param) WithRamp(i int, r Ramp) Param {
	if i < 0 || i >= len(p.ramps) {
		return p
	}
	ramps := p.Ramps()
	ramps[i] = r
	return p.WithRamps(ramps)
}

// WithoutRamp removes the i:th ramp. Out of range indices return the Param
// unchanged.
func (p Param) WithoutRamp(i int) Param {
	if i < 0 || i >= len(p.ramps) {
		return p
	}
	return p.WithRamps(slices.Delete(p.Ramps(), i, i+1))
}

// Equal reports whether both params have the same initial value and the same
// ramps in the same order.
func (p Param) Equal(o Param) bool {
	return p.initialValue == o.initialValue && slices.Equal(p.ramps, o.ramps)
}
