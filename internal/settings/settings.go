package settings

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/sjroesink/whisper/internal/errors"
	"github.com/sjroesink/whisper/internal/provider"
)

// ProviderConfig holds per-provider credentials and tuning.
type ProviderConfig struct {
	APIKey   string `mapstructure:"api_key" json:"api_key"`
	Model    string `mapstructure:"model" json:"model"`
	Language string `mapstructure:"language" json:"language"`
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
}

// Settings is the persisted application configuration.
type Settings struct {
	ActiveProvider  string                    `mapstructure:"active_provider" json:"active_provider"`
	InputDevice     string                    `mapstructure:"input_device" json:"input_device"`
	Language        string                    `mapstructure:"language" json:"language"`
	Hotkey          string                    `mapstructure:"hotkey" json:"hotkey"`
	InteractionMode string                    `mapstructure:"interaction_mode" json:"interaction_mode"`
	AutoPaste       bool                      `mapstructure:"auto_paste" json:"auto_paste"`
	Notifications   bool                      `mapstructure:"notifications" json:"notifications"`
	HTTPAddr        string                    `mapstructure:"http_addr" json:"http_addr"`
	HistoryPath     string                    `mapstructure:"history_path" json:"history_path"`
	ConstmeDLLPath  string                    `mapstructure:"constme_dll_path" json:"constme_dll_path"`
	ConstmeModel    string                    `mapstructure:"constme_model_path" json:"constme_model_path"`
	LocalModelPath  string                    `mapstructure:"local_model_path" json:"local_model_path"`
	Providers       map[string]ProviderConfig `mapstructure:"providers" json:"providers"`
}

// ProviderCfg resolves the runtime config for a provider, filling in the
// global language when the provider entry leaves it empty.
func (s *Settings) ProviderCfg(id provider.ID) provider.Config {
	pc := s.Providers[string(id)]
	cfg := provider.Config{
		APIKey:   pc.APIKey,
		Model:    pc.Model,
		Language: pc.Language,
		Endpoint: pc.Endpoint,
	}
	if cfg.Language == "" {
		cfg.Language = s.Language
	}
	return cfg
}

// Manager loads, persists and watches the settings file.
type Manager struct {
	mu       sync.RWMutex
	v        *viper.Viper
	current  Settings
	path     string
	onChange func(Settings)
}

// DefaultPath returns the settings file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "whisper", "settings.json"), nil
}

// NewManager binds a manager to path, creating the parent directory and
// applying defaults for keys the file does not set.
func NewManager(path string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.ConfigErr("create settings dir: %v", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.SetDefault("active_provider", string(provider.ConstmeWhisper))
	v.SetDefault("language", "auto")
	v.SetDefault("hotkey", "ctrl+shift+space")
	v.SetDefault("interaction_mode", "toggle")
	v.SetDefault("auto_paste", true)
	v.SetDefault("notifications", true)
	v.SetDefault("http_addr", "127.0.0.1:5033")

	m := &Manager{v: v, path: path}

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, errors.ConfigErr("read settings %s: %v", path, err)
		}
		// first run, defaults only
	}
	if err := v.Unmarshal(&m.current); err != nil {
		return nil, errors.ConfigErr("decode settings: %v", err)
	}
	return m, nil
}

// Get returns a copy of the current settings.
func (m *Manager) Get() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Save replaces the settings and writes them to disk.
func (m *Manager) Save(s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.v.Set("active_provider", s.ActiveProvider)
	m.v.Set("input_device", s.InputDevice)
	m.v.Set("language", s.Language)
	m.v.Set("hotkey", s.Hotkey)
	m.v.Set("interaction_mode", s.InteractionMode)
	m.v.Set("auto_paste", s.AutoPaste)
	m.v.Set("notifications", s.Notifications)
	m.v.Set("http_addr", s.HTTPAddr)
	m.v.Set("history_path", s.HistoryPath)
	m.v.Set("constme_dll_path", s.ConstmeDLLPath)
	m.v.Set("constme_model_path", s.ConstmeModel)
	m.v.Set("local_model_path", s.LocalModelPath)
	m.v.Set("providers", s.Providers)

	if err := m.v.WriteConfigAs(m.path); err != nil {
		return errors.ConfigErr("write settings %s: %v", m.path, err)
	}
	m.current = s
	return nil
}

// Watch reloads the settings when the file changes on disk and invokes fn
// with the new value. Call once; the watch runs for the process lifetime.
func (m *Manager) Watch(fn func(Settings)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()

	m.v.OnConfigChange(func(e fsnotify.Event) {
		var s Settings
		if err := m.v.Unmarshal(&s); err != nil {
			log.Warn().Err(err).Str("file", e.Name).Msg("reload settings failed")
			return
		}
		m.mu.Lock()
		m.current = s
		cb := m.onChange
		m.mu.Unlock()
		log.Info().Str("file", e.Name).Msg("settings reloaded")
		if cb != nil {
			cb(s)
		}
	})
	m.v.WatchConfig()
}
