package constme

import (
	"context"
	"time"

	"github.com/sjroesink/whisper/internal/errors"
	"github.com/sjroesink/whisper/internal/provider"
)

// Provider exposes the native GPU bridge through the backend contract.
type Provider struct {
	loader *Loader
}

func NewProvider(dllPath, modelPath string) *Provider {
	return &Provider{loader: NewLoader(dllPath, modelPath)}
}

// Loader exposes the model cache for status queries and path rebinding.
func (p *Provider) Loader() *Loader { return p.loader }

func (p *Provider) ID() provider.ID { return provider.ConstmeWhisper }
func (p *Provider) Name() string    { return "Whisper GPU (DirectCompute)" }

func (p *Provider) Available() bool { return p.loader.Available() }

// UpdatePaths rebinds the configured library and model paths, invalidating
// the cached model.
func (p *Provider) UpdatePaths(dllPath, modelPath string) {
	p.loader.UpdatePaths(dllPath, modelPath)
}

// Transcribe runs a full inference pass over the canonical samples. A fresh
// context is created per call; the context, result and host audio buffer are
// all released on every exit path.
func (p *Provider) Transcribe(ctx context.Context, samples []float32, cfg provider.Config) (*provider.Result, error) {
	if len(samples) == 0 {
		return nil, errors.TranscribeErr(nil, "no audio data to transcribe")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	var text string
	err := p.loader.WithModel(func(m *Model) error {
		ictx, err := m.CreateContext()
		if err != nil {
			return err
		}
		defer ictx.Release()

		params, err := ictx.DefaultParams(StrategyGreedy)
		if err != nil {
			return err
		}
		if cfg.Language != "" && cfg.Language != "auto" {
			params.Language = LanguageKey(cfg.Language)
		}
		params.Flags &^= noisyFlags

		buf := NewAudioBuffer(samples)
		defer buf.Release()

		if err := ictx.RunFull(&params, buf.Ptr()); err != nil {
			return err
		}

		res, err := ictx.Results()
		if err != nil {
			return err
		}
		defer res.Release()

		text, err = res.Text()
		return err
	})
	if err != nil {
		return nil, err
	}

	return &provider.Result{
		Text:     text,
		Provider: provider.ConstmeWhisper,
		Duration: time.Since(start),
		Language: cfg.Language,
	}, nil
}
