package compiler

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/sfxgraph/sfxgraph"
)

type (
	// SoundMacros is the data the templates are executed with.
	SoundMacros struct {
		Name       string
		Ident      string // exported JavaScript identifier suffix, e.g. ShieldRecharge
		FileName   string // base name of the generated files, e.g. shield_recharge
		Duration   float64
		SampleRate int
		NeedsNoise bool
		Nodes      []NodeMacros
	}

	NodeMacros struct {
		Var         string // JavaScript variable holding the node
		Create      string // statement creating the node
		Setup       []string
		Schedule    []string
		Start       bool
		Connections []string
	}
)

func NewSoundMacros(sound sfxgraph.SoundDescription, sampleRate int) *SoundMacros {
	ret := &SoundMacros{
		Name:       sound.Name(),
		Ident:      identifier(sound.Name()),
		FileName:   strings.ToLower(strings.Join(words(sound.Name()), "_")),
		Duration:   sound.Duration(),
		SampleRate: sampleRate,
		NeedsNoise: sound.HasKind(sfxgraph.PinkNoiseKind),
	}
	if ret.FileName == "" {
		ret.FileName = "sound"
	}
	for i, n := range sound.Nodes() {
		v := fmt.Sprintf("n%d", i)
		m := NodeMacros{Var: v}
		switch d := n.Data().(type) {
		case sfxgraph.Oscillator:
			m.Create = "ctx.createOscillator()"
			m.Setup = []string{fmt.Sprintf("%s.type = %s;", v, strconv.Quote(d.Waveform.String()))}
			m.Schedule = schedule(v+".frequency", d.Frequency)
			m.Start = true
		case sfxgraph.Gain:
			m.Create = "ctx.createGain()"
			m.Schedule = schedule(v+".gain", d.Gain)
		case sfxgraph.PinkNoise:
			m.Create = "ctx.createBufferSource()"
			m.Setup = []string{v + ".buffer = noise;", v + ".loop = true;"}
			m.Start = true
		}
		for _, c := range n.Connections() {
			if c == sfxgraph.Output {
				m.Connections = append(m.Connections, "ctx.destination")
			} else {
				m.Connections = append(m.Connections, fmt.Sprintf("n%d", c))
			}
		}
		ret.Nodes = append(ret.Nodes, m)
	}
	return ret
}

// Num formats a number as a JavaScript literal.
func (m *SoundMacros) Num(v float64) string {
	return num(v)
}

func schedule(target string, p sfxgraph.Param) []string {
	ret := []string{fmt.Sprintf("%s.setValueAtTime(%s, 0);", target, num(p.InitialValue()))}
	for _, r := range p.Ramps() {
		var method string
		switch r.Kind {
		case sfxgraph.Exponential:
			method = "exponentialRampToValueAtTime"
		case sfxgraph.Linear:
			method = "linearRampToValueAtTime"
		default:
			method = "setValueAtTime"
		}
		ret = append(ret, fmt.Sprintf("%s.%s(%s, %s);", target, method, num(r.Value), num(r.EndTime)))
	}
	return ret
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func words(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return !(r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)))
	})
}

func identifier(name string) string {
	var b strings.Builder
	for _, w := range words(name) {
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(w[1:])
	}
	if b.Len() == 0 || unicode.IsDigit(rune(b.String()[0])) {
		return "Sound" + b.String()
	}
	return b.String()
}
