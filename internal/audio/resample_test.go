package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResamplePassthroughAt16k(t *testing.T) {
	in := []float32{0.1, 0.2, 0.3, 0.4}
	out := ResampleTo16kMono(in, 16000, 1)
	require.Len(t, out, 4)
	assert.Equal(t, in, out)
}

func TestResampleMixdownPreservesFrameCount(t *testing.T) {
	for _, channels := range []int{1, 2, 4} {
		frames := 480
		in := make([]float32, frames*channels)
		out := ResampleTo16kMono(in, 16000, channels)
		assert.Len(t, out, frames, "channels=%d", channels)
	}
}

func TestResampleStereoToMono(t *testing.T) {
	out := ResampleTo16kMono([]float32{1.0, 0.0, 1.0, 0.0}, 16000, 2)
	require.Len(t, out, 2)
	assert.InDelta(t, 0.5, out[0], 0.001)
	assert.InDelta(t, 0.5, out[1], 0.001)
}

func TestResampleDownsample48k(t *testing.T) {
	in := make([]float32, 48000)
	for i := range in {
		in[i] = float32(math.Sin(float64(i) / 48000.0))
	}
	out := ResampleTo16kMono(in, 48000, 1)
	assert.InDelta(t, 16000, len(out), 1)
}

func TestResampleEmptyInput(t *testing.T) {
	assert.Empty(t, ResampleTo16kMono(nil, 44100, 2))
	assert.Empty(t, ResampleTo16kMono([]float32{}, 48000, 1))
}

func TestMixdownDropsIncompleteFrame(t *testing.T) {
	out := Mixdown([]float32{1, 1, 1}, 2)
	require.Len(t, out, 1)
	assert.InDelta(t, 1.0, out[0], 0.0001)
}
