package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stub struct {
	id   ID
	text string
}

func (s *stub) ID() ID          { return s.id }
func (s *stub) Name() string    { return string(s.id) }
func (s *stub) Available() bool { return true }

func (s *stub) Transcribe(ctx context.Context, samples []float32, cfg Config) (*Result, error) {
	return &Result{Text: s.text, Provider: s.id}, nil
}

func TestActiveResolution(t *testing.T) {
	a := &stub{id: ConstmeWhisper, text: "a"}
	b := &stub{id: OpenAIWhisper, text: "b"}
	r := NewRegistry(OpenAIWhisper, a, b)

	assert.Equal(t, OpenAIWhisper, r.ActiveID())
	assert.Same(t, Provider(b), r.Active())

	r.SetActive(ConstmeWhisper)
	assert.Same(t, Provider(a), r.Active())
}

func TestActiveFallsBackToFirst(t *testing.T) {
	a := &stub{id: ConstmeWhisper}
	r := NewRegistry(ID("gone"), a)
	assert.Same(t, Provider(a), r.Active())

	empty := NewRegistry(ConstmeWhisper)
	assert.Nil(t, empty.Active())
}

func TestSwitchDoesNotAffectResolvedProvider(t *testing.T) {
	a := &stub{id: ConstmeWhisper, text: "gpu"}
	b := &stub{id: OpenAIWhisper, text: "cloud"}
	r := NewRegistry(ConstmeWhisper, a, b)

	resolved := r.Active()
	r.SetActive(OpenAIWhisper)

	res, err := resolved.Transcribe(context.Background(), []float32{0}, Config{})
	require.NoError(t, err)
	assert.Equal(t, "gpu", res.Text)

	res, err = r.Active().Transcribe(context.Background(), []float32{0}, Config{})
	require.NoError(t, err)
	assert.Equal(t, "cloud", res.Text)
}

func TestGetAndList(t *testing.T) {
	a := &stub{id: ConstmeWhisper}
	b := &stub{id: GoogleCloud}
	r := NewRegistry(ConstmeWhisper, a, b)

	assert.Same(t, Provider(b), r.Get(GoogleCloud))
	assert.Nil(t, r.Get(ID("missing")))

	infos := r.List()
	require.Len(t, infos, 2)
	assert.Equal(t, ConstmeWhisper, infos[0].ID)
	assert.True(t, infos[0].Available)
}
