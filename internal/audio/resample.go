package audio

// TargetRate is the sample rate every transcription backend consumes.
const TargetRate = 16000

// Mixdown averages interleaved multi-channel samples into mono. Trailing
// samples that do not fill a complete channel group are dropped.
func Mixdown(input []float32, channels int) []float32 {
	if channels <= 1 {
		out := make([]float32, len(input))
		copy(out, input)
		return out
	}
	frames := len(input) / channels
	mono := make([]float32, 0, frames)
	for f := 0; f < frames; f++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += input[f*channels+c]
		}
		mono = append(mono, sum/float32(channels))
	}
	return mono
}

// ResampleTo16kMono converts raw interleaved capture data into the canonical
// mono 16kHz form: mix down by arithmetic mean per frame, then linearly
// interpolate to the target rate. Already-16kHz input passes through after
// the mixdown. Empty input yields empty output.
func ResampleTo16kMono(input []float32, sampleRate uint32, channels int) []float32 {
	if len(input) == 0 {
		return nil
	}

	mono := Mixdown(input, channels)
	if sampleRate == TargetRate {
		return mono
	}

	outLen := int(float64(len(mono)) * float64(TargetRate) / float64(sampleRate))
	out := make([]float32, 0, outLen)
	for i := 0; i < outLen; i++ {
		pos := float64(i) * float64(sampleRate) / float64(TargetRate)
		idx := int(pos)
		frac := float32(pos - float64(idx))
		switch {
		case idx+1 < len(mono):
			out = append(out, mono[idx]*(1-frac)+mono[idx+1]*frac)
		case idx < len(mono):
			out = append(out, mono[idx])
		}
	}
	return out
}
