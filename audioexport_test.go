package sfxgraph_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-audio/wav"
	"github.com/sfxgraph/sfxgraph"
	"github.com/stretchr/testify/require"
)

func TestWavHeader(t *testing.T) {
	b, err := sfxgraph.NewMonoBuffer(48000, make([]float32, 9600)).Wav()
	require.NoError(t, err)
	require.Len(t, b, 44+2*9600)
	le := binary.LittleEndian
	require.Equal(t, "RIFF", string(b[0:4]))
	require.Equal(t, uint32(len(b)-8), le.Uint32(b[4:8]))
	require.Equal(t, "WAVE", string(b[8:12]))
	require.Equal(t, "fmt ", string(b[12:16]))
	require.Equal(t, uint32(16), le.Uint32(b[16:20]))
	require.Equal(t, uint16(1), le.Uint16(b[20:22]), "PCM")
	require.Equal(t, uint16(1), le.Uint16(b[22:24]), "channels")
	require.Equal(t, uint32(48000), le.Uint32(b[24:28]))
	require.Equal(t, uint32(96000), le.Uint32(b[28:32]))
	require.Equal(t, uint16(2), le.Uint16(b[32:34]))
	require.Equal(t, uint16(16), le.Uint16(b[34:36]))
	require.Equal(t, "data", string(b[36:40]))
	require.Equal(t, uint32(2*9600), le.Uint32(b[40:44]))
}

func TestWavEmptyBuffer(t *testing.T) {
	b, err := sfxgraph.NewMonoBuffer(44100, nil).Wav()
	require.NoError(t, err)
	require.Len(t, b, 44)
	require.Equal(t, uint32(36), binary.LittleEndian.Uint32(b[4:8]))
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(b[40:44]))
}

func TestWavDecodesWithGoAudio(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1, -1}
	b, err := sfxgraph.NewMonoBuffer(22050, samples).Wav()
	require.NoError(t, err)
	dec := wav.NewDecoder(bytes.NewReader(b))
	require.True(t, dec.IsValidFile())
	pcm, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	require.Equal(t, 1, pcm.Format.NumChannels)
	require.Equal(t, 22050, pcm.Format.SampleRate)
	require.Equal(t, 16, pcm.SourceBitDepth)
	require.Equal(t, []int{0, 16384, -16384, 32767, -32768}, pcm.Data)
}

func TestQuantizeInt16(t *testing.T) {
	for _, tc := range []struct {
		in   float32
		want int16
	}{
		{0, 0},
		{1, 32767},
		{-1, -32768},
		{2, 32767},
		{-3, -32768},
		{0.5, 16384},
		{-0.5, -16384},
		{float32(math.Inf(1)), 32767},
		{float32(math.Inf(-1)), -32768},
		{float32(math.NaN()), 0},
	} {
		got := sfxgraph.QuantizeInt16([]float32{tc.in}, nil)
		require.Equal(t, []int16{tc.want}, got, "quantizing %v", tc.in)
	}
}

func TestWavRejectsNonMono(t *testing.T) {
	stereo := sfxgraph.AudioBuffer{SampleRate: 48000, Channels: [][]float32{{0}, {0}}}
	_, err := stereo.Wav()
	require.ErrorIs(t, err, sfxgraph.ErrUnsupportedFormat)
	_, err = sfxgraph.AudioBuffer{SampleRate: 48000}.Wav()
	require.ErrorIs(t, err, sfxgraph.ErrUnsupportedFormat)
}

func TestRaw(t *testing.T) {
	buf := sfxgraph.NewMonoBuffer(48000, []float32{1, -1})
	pcm, err := buf.Raw(true)
	require.NoError(t, err)
	require.Equal(t, []byte{0xff, 0x7f, 0x00, 0x80}, pcm)
	f, err := buf.Raw(false)
	require.NoError(t, err)
	require.Len(t, f, 8)
	require.Equal(t, float32(-1), math.Float32frombits(binary.LittleEndian.Uint32(f[4:])))
}
