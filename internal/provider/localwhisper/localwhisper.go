// Package localwhisper provides a CPU whisper.cpp backend through the
// official Go bindings. It needs cgo and the whisper.cpp libraries, so the
// real implementation sits behind the whisper_cpp build tag and default
// builds get a stub that reports unavailable.
package localwhisper

import "github.com/sjroesink/whisper/internal/provider"

// Name is the display name shared by the real and stub implementations.
const Name = "Local Whisper (CPU)"

// New returns the whisper.cpp backend for the given model path.
func New(modelPath string) provider.Provider {
	return newProvider(modelPath)
}
