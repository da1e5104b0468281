package sfxgraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

type (
	// soundDoc is the on-disk form of a SoundDescription, shared by the YAML
	// and JSON encodings.
	soundDoc struct {
		Name     string    `yaml:"name" json:"name"`
		Duration float64   `yaml:"duration" json:"duration"`
		Nodes    []nodeDoc `yaml:"nodes" json:"nodes"`
	}

	nodeDoc struct {
		Type        string    `yaml:"type" json:"type"`
		Waveform    string    `yaml:"waveform,omitempty" json:"waveform,omitempty"`
		Frequency   *paramDoc `yaml:"frequency,omitempty" json:"frequency,omitempty"`
		Gain        *paramDoc `yaml:"gain,omitempty" json:"gain,omitempty"`
		Connections []int     `yaml:"connections,flow" json:"connections"`
	}

	paramDoc struct {
		InitialValue float64   `yaml:"initialValue" json:"initialValue"`
		Ramps        []rampDoc `yaml:"ramps,omitempty" json:"ramps,omitempty"`
	}

	rampDoc struct {
		Type    string  `yaml:"type" json:"type"`
		Value   float64 `yaml:"value" json:"value"`
		EndTime float64 `yaml:"endTime" json:"endTime"`
	}
)

// Format is a serialization format for sound descriptions.
type Format int

const (
	YAML Format = iota
	JSON
)

func toParamDoc(p Param) *paramDoc {
	d := &paramDoc{InitialValue: p.initialValue}
	for _, r := range p.ramps {
		d.Ramps = append(d.Ramps, rampDoc{Type: r.Kind.String(), Value: r.Value, EndTime: r.EndTime})
	}
	return d
}

func (d *paramDoc) param(fallback Param) (Param, error) {
	if d == nil {
		return fallback, nil
	}
	if err := checkFinite("initial value", d.InitialValue); err != nil {
		return Param{}, err
	}
	ramps := make([]Ramp, 0, len(d.Ramps))
	for i, r := range d.Ramps {
		kind, err := ParseRampKind(r.Type)
		if err != nil {
			return Param{}, fmt.Errorf("ramp %d: %w", i, err)
		}
		if err := checkFinite("ramp value", r.Value); err != nil {
			return Param{}, fmt.Errorf("ramp %d: %w", i, err)
		}
		if err := checkFinite("ramp end time", r.EndTime); err != nil {
			return Param{}, fmt.Errorf("ramp %d: %w", i, err)
		}
		ramps = append(ramps, Ramp{Kind: kind, Value: r.Value, EndTime: r.EndTime})
	}
	return NewParam(d.InitialValue, ramps...), nil
}

func checkFinite(what string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be a finite number (got %v)", what, v)
	}
	return nil
}

func (s SoundDescription) doc() soundDoc {
	d := soundDoc{Name: s.name, Duration: s.duration, Nodes: make([]nodeDoc, 0, len(s.nodes))}
	for _, n := range s.nodes {
		nd := nodeDoc{Type: n.Kind().String(), Connections: n.Connections()}
		if nd.Connections == nil {
			nd.Connections = []int{}
		}
		switch data := n.Data().(type) {
		case Oscillator:
			nd.Waveform = data.Waveform.String()
			nd.Frequency = toParamDoc(data.Frequency)
		case Gain:
			nd.Gain = toParamDoc(data.Gain)
		}
		d.Nodes = append(d.Nodes, nd)
	}
	return d
}

func (d soundDoc) description() (SoundDescription, error) {
	if err := CheckDuration(d.Duration); err != nil {
		return SoundDescription{}, err
	}
	nodes := make([]Node, 0, len(d.Nodes))
	for i, nd := range d.Nodes {
		kind, err := ParseNodeKind(nd.Type)
		if err != nil {
			return SoundDescription{}, fmt.Errorf("node %d: %w", i, err)
		}
		var data NodeData
		switch def := DefaultNodeData(kind).(type) {
		case Oscillator:
			if nd.Waveform != "" {
				if def.Waveform, err = ParseWaveform(nd.Waveform); err != nil {
					return SoundDescription{}, fmt.Errorf("node %d: %w", i, err)
				}
			}
			if def.Frequency, err = nd.Frequency.param(def.Frequency); err != nil {
				return SoundDescription{}, fmt.Errorf("node %d frequency: %w", i, err)
			}
			data = def
		case Gain:
			if def.Gain, err = nd.Gain.param(def.Gain); err != nil {
				return SoundDescription{}, fmt.Errorf("node %d gain: %w", i, err)
			}
			data = def
		default:
			data = def
		}
		nodes = append(nodes, NewNode(data, nd.Connections...))
	}
	return NewSoundDescription(d.Name, d.Duration, nodes...), nil
}

func (s SoundDescription) MarshalYAML() (interface{}, error) {
	return s.doc(), nil
}

// UnmarshalYAML uses the callback form so that both yaml.v2 and yaml.v3
// decoders can read descriptions.
func (s *SoundDescription) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var d soundDoc
	if err := unmarshal(&d); err != nil {
		return err
	}
	ret, err := d.description()
	if err != nil {
		return err
	}
	*s = ret
	return nil
}

func (s SoundDescription) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.doc())
}

func (s *SoundDescription) UnmarshalJSON(data []byte) error {
	var d soundDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	ret, err := d.description()
	if err != nil {
		return err
	}
	*s = ret
	return nil
}

// ReadSoundDescription parses a description from r, trying JSON first and
// YAML second.
func ReadSoundDescription(r io.Reader) (SoundDescription, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return SoundDescription{}, fmt.Errorf("could not read sound description: %w", err)
	}
	return ParseSoundDescription(b)
}

func ParseSoundDescription(b []byte) (SoundDescription, error) {
	var s SoundDescription
	errJSON := json.Unmarshal(b, &s)
	if errJSON == nil {
		return s, nil
	}
	if errYaml := yaml.Unmarshal(b, &s); errYaml != nil {
		return SoundDescription{}, fmt.Errorf("the sound could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
	}
	return s, nil
}

// Write serializes the description in the given format.
func (s SoundDescription) Write(w io.Writer, format Format) error {
	switch format {
	case JSON:
		b, err := json.MarshalIndent(s.doc(), "", "  ")
		if err != nil {
			return fmt.Errorf("could not marshal sound as json: %w", err)
		}
		b = append(b, '\n')
		_, err = w.Write(b)
		return err
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("could not marshal sound as yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("could not marshal sound as yaml: %w", err)
		}
		_, err := w.Write(buf.Bytes())
		return err
	}
	return fmt.Errorf("unknown format %d", format)
}
