package audio

import (
	"bytes"
	"fmt"
	"io"
	"math"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncodeWAV renders float samples as a mono 16-bit PCM WAV container at the
// given rate. Samples are clamped to [-1, 1] before scaling.
func EncodeWAV(samples []float32, sampleRate int) ([]byte, error) {
	ws := &memWriteSeeker{}
	enc := wav.NewEncoder(ws, sampleRate, 16, 1, 1)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(pcm16FromFloat(s))
	}
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finalize wav: %w", err)
	}
	return ws.buf, nil
}

// DecodeWAV reads a mono 16-bit PCM WAV back into float samples and its rate.
func DecodeWAV(data []byte) ([]float32, int, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode wav: %w", err)
	}
	out := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		out[i] = float32(v) / 32768.0
	}
	return out, int(dec.SampleRate), nil
}

func pcm16FromFloat(s float32) int16 {
	v := float64(s)
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int16(math.Round(v * 32767))
}

// memWriteSeeker adapts an in-memory buffer to the encoder's need to seek
// back and patch chunk sizes.
type memWriteSeeker struct {
	buf []byte
	pos int
}

func (m *memWriteSeeker) Write(p []byte) (int, error) {
	if need := m.pos + len(p); need > len(m.buf) {
		grown := make([]byte, need)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:], p)
	m.pos += len(p)
	return len(p), nil
}

func (m *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var next int
	switch whence {
	case io.SeekStart:
		next = int(offset)
	case io.SeekCurrent:
		next = m.pos + int(offset)
	case io.SeekEnd:
		next = len(m.buf) + int(offset)
	default:
		return 0, fmt.Errorf("seek: invalid whence %d", whence)
	}
	if next < 0 {
		return 0, fmt.Errorf("seek: negative position")
	}
	m.pos = next
	return int64(next), nil
}
