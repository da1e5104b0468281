package sfxgraph

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// SoundDescription is a named, fixed-length sound defined by a list of nodes.
// The position of a node in the list is its address: connections refer to
// other nodes by index. Indices are not stable identities; removing a node
// shifts every node after it.
//
// Every SoundDescription satisfies the following invariant: each connection
// target of each node is either Output or the index of a node that accepts
// input. Constructors and edit operations do not reject violating
// connections, they silently drop them, so a description heals itself after
// nodes are removed or retyped.
//
// SoundDescription is a value; none of its methods modify the receiver.
type SoundDescription struct {
	name     string
	duration float64
	nodes    []Node
}

// MaxDuration is the longest sound accepted from users, in seconds.
const MaxDuration = 60

var ErrInvalidDuration = errors.New("duration must be greater than zero and at most 60 seconds")

// CheckDuration validates a duration coming from user input. The data model
// itself stores whatever it is given.
func CheckDuration(d float64) error {
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 || d > MaxDuration {
		return fmt.Errorf("%w (got %v)", ErrInvalidDuration, d)
	}
	return nil
}

// NewSoundDescription builds a description, dropping any connection that
// does not satisfy the targeting invariant.
func NewSoundDescription(name string, duration float64, nodes ...Node) SoundDescription {
	return SoundDescription{name: name, duration: duration, nodes: filterConnections(slices.Clone(nodes))}
}

// filterConnections modifies nodes in place; callers pass a slice they own.
func filterConnections(nodes []Node) []Node {
	if len(nodes) == 0 {
		return nil
	}
	valid := func(t int) bool {
		return t == Output || (t >= 0 && t < len(nodes) && nodes[t].AcceptsInput())
	}
	filtered := make([][]int, len(nodes))
	for i, n := range nodes {
		for _, t := range n.connections {
			if valid(t) {
				filtered[i] = append(filtered[i], t)
			}
		}
	}
	for i := range nodes {
		nodes[i].connections = filtered[i]
	}
	return nodes
}

func (s SoundDescription) Name() string      { return s.name }
func (s SoundDescription) Duration() float64 { return s.duration }
func (s SoundDescription) NumNodes() int     { return len(s.nodes) }

// Nodes returns a copy of the node list.
func (s SoundDescription) Nodes() []Node { return slices.Clone(s.nodes) }

func (s SoundDescription) Node(i int) (Node, bool) {
	if i < 0 || i >= len(s.nodes) {
		return Node{}, false
	}
	return s.nodes[i], true
}

// HasKind reports whether any node is of the given kind.
func (s SoundDescription) HasKind(kind NodeKind) bool {
	return slices.ContainsFunc(s.nodes, func(n Node) bool { return n.Kind() == kind })
}

func (s SoundDescription) WithName(name string) SoundDescription {
	s.name = name
	return s
}

func (s SoundDescription) WithDuration(duration float64) SoundDescription {
	s.duration = duration
	return s
}

func (s SoundDescription) WithNodes(nodes []Node) SoundDescription {
	return NewSoundDescription(s.name, s.duration, nodes...)
}

// WithNode replaces the i:th node. Out of range indices return the
// description unchanged.
func (s SoundDescription) WithNode(i int, n Node) SoundDescription {
	if i < 0 || i >= len(s.nodes) {
		return s
	}
	nodes := s.Nodes()
	nodes[i] = n
	return s.WithNodes(nodes)
}

// AddNode appends a node with no connections.
func (s SoundDescription) AddNode(data NodeData) SoundDescription {
	return s.WithNodes(append(s.Nodes(), NewNode(data)))
}

// RemoveNode deletes the i:th node. Connections pointing at the removed node
// are dropped and connections to nodes after it are shifted down by one, so
// every surviving connection still points at the same node as before.
func (s SoundDescription) RemoveNode(i int) SoundDescription {
	if i < 0 || i >= len(s.nodes) {
		return s
	}
	nodes := slices.Delete(s.Nodes(), i, i+1)
	for k, n := range nodes {
		remapped := make([]int, 0, len(n.connections))
		for _, t := range n.connections {
			switch {
			case t == Output || t < i:
				remapped = append(remapped, t)
			case t > i:
				remapped = append(remapped, t-1)
			}
		}
		nodes[k] = n.WithConnections(remapped...)
	}
	return s.WithNodes(nodes)
}

// ToggleConnection connects or disconnects node src to target. Toggling on a
// target that is not eligible has no effect.
func (s SoundDescription) ToggleConnection(src, target int, enabled bool) SoundDescription {
	n, ok := s.Node(src)
	if !ok {
		return s
	}
	return s.WithNode(src, n.WithConnection(target, enabled))
}

// SetNodeKind changes the kind of the i:th node. Connections from other nodes
// into it are dropped if the new kind does not accept input.
func (s SoundDescription) SetNodeKind(i int, kind NodeKind) SoundDescription {
	n, ok := s.Node(i)
	if !ok {
		return s
	}
	return s.WithNode(i, n.WithKind(kind))
}

// EligibleConnections lists the targets node i may connect to: Output first,
// then every other node accepting input, in index order.
func (s SoundDescription) EligibleConnections(i int) []int {
	ret := []int{Output}
	for j, n := range s.nodes {
		if j != i && n.AcceptsInput() {
			ret = append(ret, j)
		}
	}
	return ret
}

// Equal compares descriptions structurally.
func (s SoundDescription) Equal(o SoundDescription) bool {
	return s.name == o.name && s.duration == o.duration && slices.EqualFunc(s.nodes, o.nodes, Node.Equal)
}
