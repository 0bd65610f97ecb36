// Package provider defines the polymorphic speech-to-text backend contract
// and the registry that routes transcription calls to the active backend.
package provider

import (
	"context"
	"sync"
	"time"
)

// ID identifies a backend.
type ID string

const (
	OpenAIWhisper  ID = "openai_whisper"
	GoogleCloud    ID = "google_cloud"
	LocalWhisper   ID = "local_whisper"
	ConstmeWhisper ID = "constme_whisper"
	NativeStt      ID = "native_stt"
)

// Config is the per-backend configuration snapshot taken before a call.
type Config struct {
	APIKey   string `json:"api_key,omitempty" mapstructure:"api_key"`
	Model    string `json:"model,omitempty" mapstructure:"model"`
	Language string `json:"language,omitempty" mapstructure:"language"`
	Endpoint string `json:"endpoint,omitempty" mapstructure:"endpoint"`
}

// Result is the immutable outcome of one transcription call.
type Result struct {
	Text     string        `json:"text"`
	Provider ID            `json:"provider"`
	Duration time.Duration `json:"duration"`
	Language string        `json:"language,omitempty"`
}

// Info summarises a backend for listings. Availability is recomputed per
// query, never cached.
type Info struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// Provider is implemented by every backend, bridge-based or HTTP-based. All
// backends consume the same canonical mono 16kHz float samples.
type Provider interface {
	ID() ID
	Name() string
	Available() bool
	Transcribe(ctx context.Context, samples []float32, cfg Config) (*Result, error)
}

// Registry holds one instance per backend and the mutable active id. The
// value returned by Active is independently usable: no registry lock is held
// while a transcription runs against it.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
	active    ID
}

func NewRegistry(active ID, providers ...Provider) *Registry {
	return &Registry{providers: providers, active: active}
}

// SetActive switches the backend future calls resolve to. Calls already past
// Active keep their resolved provider.
func (r *Registry) SetActive(id ID) {
	r.mu.Lock()
	r.active = id
	r.mu.Unlock()
}

// ActiveID returns the currently selected backend id.
func (r *Registry) ActiveID() ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Active resolves the active backend, falling back to the first registered
// one when the active id is unknown.
func (r *Registry) Active() Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.providers {
		if p.ID() == r.active {
			return p
		}
	}
	if len(r.providers) > 0 {
		return r.providers[0]
	}
	return nil
}

// Get returns the backend with the given id, or nil.
func (r *Registry) Get(id ID) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.providers {
		if p.ID() == id {
			return p
		}
	}
	return nil
}

// List reports every registered backend with its current availability.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]Info, 0, len(r.providers))
	for _, p := range r.providers {
		infos = append(infos, Info{ID: p.ID(), Name: p.Name(), Available: p.Available()})
	}
	return infos
}
