//go:build !whisper_cpp

package localwhisper

import (
	"context"

	"github.com/sjroesink/whisper/internal/errors"
	"github.com/sjroesink/whisper/internal/provider"
)

type stub struct{}

func newProvider(string) provider.Provider { return stub{} }

func (stub) ID() provider.ID { return provider.LocalWhisper }
func (stub) Name() string    { return Name }
func (stub) Available() bool { return false }

func (stub) Transcribe(context.Context, []float32, provider.Config) (*provider.Result, error) {
	return nil, errors.ConfigErr("local whisper not enabled; rebuild with -tags whisper_cpp")
}
