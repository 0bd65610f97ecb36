package settings

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjroesink/whisper/internal/provider"
)

func TestDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	m, err := NewManager(path)
	require.NoError(t, err)

	s := m.Get()
	assert.Equal(t, string(provider.ConstmeWhisper), s.ActiveProvider)
	assert.Equal(t, "auto", s.Language)
	assert.Equal(t, "toggle", s.InteractionMode)
	assert.True(t, s.AutoPaste)
	assert.Equal(t, "127.0.0.1:5033", s.HTTPAddr)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	m, err := NewManager(path)
	require.NoError(t, err)

	s := m.Get()
	s.ActiveProvider = string(provider.OpenAIWhisper)
	s.Language = "nl"
	s.Providers = map[string]ProviderConfig{
		string(provider.OpenAIWhisper): {APIKey: "sk-test", Model: "whisper-1"},
	}
	require.NoError(t, m.Save(s))

	m2, err := NewManager(path)
	require.NoError(t, err)
	got := m2.Get()
	assert.Equal(t, string(provider.OpenAIWhisper), got.ActiveProvider)
	assert.Equal(t, "nl", got.Language)
	assert.Equal(t, "sk-test", got.Providers[string(provider.OpenAIWhisper)].APIKey)
}

func TestProviderCfgFallsBackToGlobalLanguage(t *testing.T) {
	s := Settings{
		Language: "en",
		Providers: map[string]ProviderConfig{
			string(provider.OpenAIWhisper): {APIKey: "k"},
			string(provider.GoogleCloud):   {APIKey: "k", Language: "fr-FR"},
		},
	}

	assert.Equal(t, "en", s.ProviderCfg(provider.OpenAIWhisper).Language)
	assert.Equal(t, "fr-FR", s.ProviderCfg(provider.GoogleCloud).Language)
	assert.Equal(t, "en", s.ProviderCfg(provider.LocalWhisper).Language)
}
