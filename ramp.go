package sfxgraph

import (
	"fmt"
	"strings"
)

type (
	// Ramp is one segment of a parameter's automation curve: starting from
	// wherever the previous segment ended, the parameter moves to Value so
	// that it arrives there exactly at EndTime (in seconds from the start of
	// the sound). Kind tells how the parameter gets there.
	Ramp struct {
		Kind    RampKind
		Value   float64
		EndTime float64
	}

	// RampKind is the interpolation used by a Ramp.
	RampKind int
)

const (
	Exponential RampKind = iota
	Linear
	Instantaneous
)

var rampKindNames = [...]string{"exponential", "linear", "instantaneous"}

func (k RampKind) String() string {
	if k < 0 || int(k) >= len(rampKindNames) {
		return fmt.Sprintf("RampKind(%d)", int(k))
	}
	return rampKindNames[k]
}

// ParseRampKind is the inverse of RampKind.String. Matching is case
// insensitive.
func ParseRampKind(s string) (RampKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range rampKindNames {
		if n == s {
			return RampKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown ramp kind %q", s)
}

func (k RampKind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(rampKindNames) {
		return nil, fmt.Errorf("cannot marshal invalid ramp kind %d", int(k))
	}
	return []byte(rampKindNames[k]), nil
}

func (k *RampKind) UnmarshalText(text []byte) error {
	v, err := ParseRampKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func (r Ramp) WithKind(kind RampKind) Ramp {
	r.Kind = kind
	return r
}

func (r Ramp) WithValue(value float64) Ramp {
	r.Value = value
	return r
}

func (r Ramp) WithEndTime(endTime float64) Ramp {
	r.EndTime = endTime
	return r
}
