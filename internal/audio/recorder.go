package audio

import (
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog/log"

	"github.com/sjroesink/whisper/internal/errors"
)

// Captured holds the raw interleaved samples drained from a recording
// session together with the format they were captured in.
type Captured struct {
	Samples    []float32
	SampleRate uint32
	Channels   int
}

// Recorder accumulates microphone samples between Start and Stop. The audio
// callback only appends to the buffer under the mutex; conversion work
// happens on the caller's goroutine after Stop.
type Recorder struct {
	mu         sync.Mutex
	stream     *portaudio.Stream
	buf        []float32
	sampleRate uint32
	channels   int
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Start resolves the capture device, opens an input stream at the device's
// native rate and begins appending samples. Any previously buffered audio is
// discarded. Tries 32-bit float capture first and falls back to 16-bit
// integer, normalizing to the floating range.
func (r *Recorder) Start(deviceName string) error {
	dev, err := findDevice(deviceName)
	if err != nil {
		return err
	}

	channels := dev.MaxInputChannels
	if channels > 2 {
		channels = 2
	}

	r.mu.Lock()
	r.buf = r.buf[:0]
	r.sampleRate = uint32(dev.DefaultSampleRate)
	r.channels = channels
	r.mu.Unlock()

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: channels,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      dev.DefaultSampleRate,
		FramesPerBuffer: portaudio.FramesPerBufferUnspecified,
	}

	stream, err := portaudio.OpenStream(params, func(in []float32) {
		r.mu.Lock()
		r.buf = append(r.buf, in...)
		r.mu.Unlock()
	})
	if err != nil {
		// Some host APIs only deliver integer samples.
		stream, err = portaudio.OpenStream(params, func(in []int16) {
			r.mu.Lock()
			for _, s := range in {
				r.buf = append(r.buf, float32(s)/32768.0)
			}
			r.mu.Unlock()
		})
		if err != nil {
			return errors.DeviceErr("open input stream on %q: %v", dev.Name, err)
		}
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return errors.DeviceErr("start input stream on %q: %v", dev.Name, err)
	}

	r.mu.Lock()
	r.stream = stream
	r.mu.Unlock()

	log.Info().Str("device", dev.Name).Uint32("rate", r.sampleRate).Int("channels", channels).Msg("recording started")
	return nil
}

// Stop tears down the stream and atomically swaps out the accumulated
// buffer. An empty capture is returned as-is; callers treat it as a
// reportable condition.
func (r *Recorder) Stop() Captured {
	r.mu.Lock()
	stream := r.stream
	r.stream = nil
	r.mu.Unlock()

	if stream != nil {
		if err := stream.Stop(); err != nil {
			log.Warn().Err(err).Msg("stop input stream")
		}
		stream.Close()
	}

	r.mu.Lock()
	samples := r.buf
	r.buf = nil
	captured := Captured{Samples: samples, SampleRate: r.sampleRate, Channels: r.channels}
	r.mu.Unlock()

	log.Info().Int("samples", len(captured.Samples)).Msg("recording stopped")
	return captured
}

// Canonical converts the capture into the mono 16kHz form every backend
// consumes.
func (c Captured) Canonical() []float32 {
	return ResampleTo16kMono(c.Samples, c.SampleRate, c.Channels)
}
