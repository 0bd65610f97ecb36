package nativestt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjroesink/whisper/internal/errors"
	"github.com/sjroesink/whisper/internal/provider"
)

func TestIdentity(t *testing.T) {
	p := New()
	assert.Equal(t, provider.NativeStt, p.ID())
	assert.Equal(t, Name, p.Name())
	assert.Equal(t, supported, p.Available())
}

func TestEmptySamples(t *testing.T) {
	if !supported {
		t.Skip("native recognition not supported on this platform")
	}
	_, err := New().Transcribe(context.Background(), nil, provider.Config{})
	require.Error(t, err)
	assert.Equal(t, errors.KindTranscribe, errors.KindOf(err))
}

func TestUnsupportedPlatform(t *testing.T) {
	if supported {
		t.Skip("platform has a native recognizer")
	}
	_, err := New().Transcribe(context.Background(), []float32{0.1}, provider.Config{})
	require.Error(t, err)
	assert.Equal(t, errors.KindConfig, errors.KindOf(err))
}
