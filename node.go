package sfxgraph

import (
	"fmt"
	"slices"
	"strings"
)

type (
	// Node is one stage of the sound graph. Every node has a set of
	// connections; the rest depends on what kind of node it is, carried in
	// Data. A connection is either Output (-1), meaning the final output of
	// the sound, or the index of another node in the owning
	// SoundDescription.
	Node struct {
		connections []int // sorted, no duplicates
		data        NodeData
	}

	// NodeData is the kind specific payload of a Node: one of Oscillator,
	// Gain or PinkNoise. The set is closed.
	NodeData interface {
		Kind() NodeKind
		nodeData()
	}

	// Oscillator is a periodic source with an automatable frequency in Hz.
	Oscillator struct {
		Waveform  Waveform
		Frequency Param
	}

	// Gain multiplies the sum of its inputs with an automatable gain.
	Gain struct {
		Gain Param
	}

	// PinkNoise loops a precomputed pink noise buffer.
	PinkNoise struct{}

	NodeKind int
	Waveform int
)

// Output is the connection target meaning the final output of the sound.
const Output = -1

const (
	OscillatorKind NodeKind = iota
	GainKind
	PinkNoiseKind
)

const (
	Sine Waveform = iota
	Square
	Sawtooth
	Triangle
)

var nodeKindNames = [...]string{"oscillator", "gain", "pink-noise"}
var waveformNames = [...]string{"sine", "square", "sawtooth", "triangle"}

func (Oscillator) Kind() NodeKind { return OscillatorKind }
func (Gain) Kind() NodeKind       { return GainKind }
func (PinkNoise) Kind() NodeKind  { return PinkNoiseKind }

func (Oscillator) nodeData() {}
func (Gain) nodeData()       {}
func (PinkNoise) nodeData()  {}

// NewNode returns a node carrying data, connected to the given targets.
// Duplicate targets are collapsed. Whether the targets are valid can only be
// decided by the SoundDescription the node is put in.
func NewNode(data NodeData, connections ...int) Node {
	if data == nil {
		data = PinkNoise{}
	}
	return Node{data: data, connections: normalizeConnections(connections)}
}

func normalizeConnections(c []int) []int {
	if len(c) == 0 {
		return nil
	}
	ret := slices.Clone(c)
	slices.Sort(ret)
	return slices.Compact(ret)
}

// DefaultNodeData returns the payload the editor puts into a node when its
// kind is switched to kind.
func DefaultNodeData(kind NodeKind) NodeData {
	switch kind {
	case GainKind:
		return Gain{Gain: NewParam(0.5)}
	case PinkNoiseKind:
		return PinkNoise{}
	default:
		return Oscillator{Waveform: Sine, Frequency: NewParam(1000)}
	}
}

func (n Node) Data() NodeData {
	if n.data == nil {
		return PinkNoise{}
	}
	return n.data
}

func (n Node) Kind() NodeKind { return n.Data().Kind() }

// AcceptsInput reports whether other nodes may connect to this node. Only
// gains have an input; sources can only be connected from.
func (n Node) AcceptsInput() bool {
	switch n.Data().(type) {
	case Gain:
		return true
	default:
		return false
	}
}

// Connections returns a copy of the sorted connection targets.
func (n Node) Connections() []int { return slices.Clone(n.connections) }

func (n Node) HasConnection(target int) bool {
	_, ok := slices.BinarySearch(n.connections, target)
	return ok
}

func (n Node) WithConnections(connections ...int) Node {
	n.connections = normalizeConnections(connections)
	return n
}

// WithConnection adds or removes a single connection target.
func (n Node) WithConnection(target int, enabled bool) Node {
	if enabled == n.HasConnection(target) {
		return n
	}
	if enabled {
		return n.WithConnections(append(n.Connections(), target)...)
	}
	return n.WithConnections(slices.DeleteFunc(n.Connections(), func(t int) bool { return t == target })...)
}

func (n Node) WithData(data NodeData) Node {
	if data == nil {
		data = PinkNoise{}
	}
	n.data = data
	return n
}

// WithKind switches the node to another kind, keeping its connections. The
// payload is reset to the defaults of the new kind, unless the kind does not
// change.
func (n Node) WithKind(kind NodeKind) Node {
	if n.Kind() == kind {
		return n
	}
	return n.WithData(DefaultNodeData(kind))
}

// Equal compares nodes structurally.
func (n Node) Equal(o Node) bool {
	if !slices.Equal(n.connections, o.connections) {
		return false
	}
	switch a := n.Data().(type) {
	case Oscillator:
		b, ok := o.Data().(Oscillator)
		return ok && a.Waveform == b.Waveform && a.Frequency.Equal(b.Frequency)
	case Gain:
		b, ok := o.Data().(Gain)
		return ok && a.Gain.Equal(b.Gain)
	case PinkNoise:
		_, ok := o.Data().(PinkNoise)
		return ok
	}
	return false
}

func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(nodeKindNames) {
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
	return nodeKindNames[k]
}

func ParseNodeKind(s string) (NodeKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range nodeKindNames {
		if n == s {
			return NodeKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown node type %q", s)
}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveformNames) {
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
	return waveformNames[w]
}

func ParseWaveform(s string) (Waveform, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range waveformNames {
		if n == s {
			return Waveform(i), nil
		}
	}
	return 0, fmt.Errorf("unknown waveform %q", s)
}

func (w Waveform) MarshalText() ([]byte, error) {
	if w < 0 || int(w) >= len(waveformNames) {
		return nil, fmt.Errorf("cannot marshal invalid waveform %d", int(w))
	}
	return []byte(waveformNames[w]), nil
}

func (w *Waveform) UnmarshalText(text []byte) error {
	v, err := ParseWaveform(string(text))
	if err != nil {
		return err
	}
	*w = v
	return nil
}
