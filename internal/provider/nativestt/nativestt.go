// Package nativestt transcribes through the operating system's own speech
// recognizer, shelling out to the platform's scripting bridge with a WAV
// file. No model download or API key is needed; accuracy is whatever the OS
// ships. Supported on Windows (SAPI via System.Speech) and macOS (the
// Speech framework); other platforms report unavailable.
package nativestt

import (
	"bytes"
	"context"
	"os"
	"strings"
	"time"

	"github.com/sjroesink/whisper/internal/audio"
	"github.com/sjroesink/whisper/internal/errors"
	"github.com/sjroesink/whisper/internal/provider"
)

// Name is the display name of the backend.
const Name = "OS Native STT"

type native struct{}

// New returns the OS speech recognition backend.
func New() provider.Provider { return native{} }

func (native) ID() provider.ID { return provider.NativeStt }
func (native) Name() string    { return Name }
func (native) Available() bool { return supported }

func (native) Transcribe(ctx context.Context, samples []float32, cfg provider.Config) (*provider.Result, error) {
	if !supported {
		return nil, errors.ConfigErr("native speech recognition is not available on this platform")
	}
	if len(samples) == 0 {
		return nil, errors.TranscribeErr(nil, "no audio data to transcribe")
	}

	start := time.Now()

	wavBytes, err := audio.EncodeWAV(samples, audio.TargetRate)
	if err != nil {
		return nil, errors.TranscribeErr(err, "encode audio")
	}

	tmp, err := os.CreateTemp("", "whisper_native_*.wav")
	if err != nil {
		return nil, errors.TranscribeErr(err, "create temp audio file")
	}
	wavPath := tmp.Name()
	defer os.Remove(wavPath)

	if _, err := tmp.Write(wavBytes); err != nil {
		tmp.Close()
		return nil, errors.TranscribeErr(err, "write temp audio file")
	}
	tmp.Close()

	language := cfg.Language
	if language == "" || language == "auto" {
		language = "en-US"
	}

	cmd := recognizeCmd(ctx, wavPath, language)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.TranscribeErr(err, "native recognizer: %s", strings.TrimSpace(stderr.String()))
	}

	return &provider.Result{
		Text:     strings.TrimSpace(stdout.String()),
		Provider: provider.NativeStt,
		Duration: time.Since(start),
		Language: cfg.Language,
	}, nil
}
