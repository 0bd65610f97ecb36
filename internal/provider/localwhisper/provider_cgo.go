//go:build whisper_cpp

package localwhisper

import (
	"context"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/sjroesink/whisper/internal/errors"
	"github.com/sjroesink/whisper/internal/provider"
)

// local wraps a whisper.cpp model instance. The model is loaded lazily on
// the first call and kept for the provider's lifetime; each call gets its
// own decoding context.
type local struct {
	mu        sync.Mutex
	model     whisper.Model
	modelPath string
}

func newProvider(modelPath string) provider.Provider {
	return &local{modelPath: modelPath}
}

func (l *local) ID() provider.ID { return provider.LocalWhisper }
func (l *local) Name() string    { return Name }

func (l *local) Available() bool {
	return l.modelPath != ""
}

func (l *local) Transcribe(ctx context.Context, samples []float32, cfg provider.Config) (*provider.Result, error) {
	if len(samples) == 0 {
		return nil, errors.TranscribeErr(nil, "no audio data to transcribe")
	}

	start := time.Now()

	l.mu.Lock()
	if l.model == nil {
		if l.modelPath == "" {
			l.mu.Unlock()
			return nil, errors.ConfigErr("local whisper model path not configured")
		}
		model, err := whisper.New(l.modelPath)
		if err != nil {
			l.mu.Unlock()
			return nil, errors.LoadErr(err, "load whisper model %s", l.modelPath)
		}
		l.model = model
	}
	model := l.model
	l.mu.Unlock()

	wctx, err := model.NewContext()
	if err != nil {
		return nil, errors.TranscribeErr(err, "create whisper context")
	}
	wctx.SetThreads(uint(runtime.NumCPU()))

	language := "auto"
	if cfg.Language != "" && cfg.Language != "auto" {
		language = cfg.Language
	}
	if err := wctx.SetLanguage(language); err != nil {
		return nil, errors.TranscribeErr(err, "set language %q", language)
	}

	encoderCb := func() bool { return ctx.Err() == nil }
	if err := wctx.Process(samples, encoderCb, nil, nil); err != nil {
		return nil, errors.TranscribeErr(err, "whisper process")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var b strings.Builder
	for {
		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.TranscribeErr(err, "read segment")
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.TrimSpace(seg.Text))
	}

	detected := wctx.DetectedLanguage()
	if detected == "" {
		detected = language
	}

	return &provider.Result{
		Text:     strings.TrimSpace(b.String()),
		Provider: provider.LocalWhisper,
		Duration: time.Since(start),
		Language: detected,
	}, nil
}
