package provider

import (
	"bytes"
	"context"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/sjroesink/whisper/internal/audio"
	"github.com/sjroesink/whisper/internal/errors"
)

// OpenAI transcribes through the OpenAI audio transcription endpoint. The
// canonical samples are shipped as a 16-bit PCM WAV attachment.
type OpenAI struct{}

func (OpenAI) ID() ID          { return OpenAIWhisper }
func (OpenAI) Name() string    { return "OpenAI Whisper" }
func (OpenAI) Available() bool { return true }

func (OpenAI) Transcribe(ctx context.Context, samples []float32, cfg Config) (*Result, error) {
	if cfg.APIKey == "" {
		return nil, errors.ConfigErr("OpenAI API key not configured")
	}

	start := time.Now()

	wavBytes, err := audio.EncodeWAV(samples, audio.TargetRate)
	if err != nil {
		return nil, errors.TranscribeErr(err, "encode audio")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	client := openai.NewClient(opts...)

	model := cfg.Model
	if model == "" {
		model = string(openai.AudioModelWhisper1)
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(wavBytes), "audio.wav", "audio/wav"),
		Model: openai.AudioModel(model),
	}
	if cfg.Language != "" && cfg.Language != "auto" {
		params.Language = openai.String(cfg.Language)
	}

	resp, err := client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, errors.TranscribeErr(err, "OpenAI transcription request")
	}

	return &Result{
		Text:     resp.Text,
		Provider: OpenAIWhisper,
		Duration: time.Since(start),
		Language: cfg.Language,
	}, nil
}
