package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjroesink/whisper/internal/errors"
)

func TestOpenAIMissingKey(t *testing.T) {
	p := OpenAI{}
	_, err := p.Transcribe(context.Background(), []float32{0.1}, Config{})
	require.Error(t, err)
	assert.Equal(t, errors.KindConfig, errors.KindOf(err))
}
