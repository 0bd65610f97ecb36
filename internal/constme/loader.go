package constme

import (
	"fmt"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/sjroesink/whisper/internal/errors"
)

// loadedState is the cached (library, model) pair shared by all
// transcription calls until invalidated.
type loadedState struct {
	lib         *Library
	model       *Model
	fingerprint uint64
}

func (s *loadedState) drop() {
	s.model.Release()
	s.lib.Close()
}

// Loader lazily opens the native library and model once per configuration
// and serves subsequent calls from the cache. The configured paths live
// under their own small mutex so availability queries never wait behind the
// model lock, which an in-flight foreign call holds for seconds. A failed
// load never leaves a partial cache.
type Loader struct {
	mu    sync.Mutex // guards state only
	state *loadedState

	pathMu    sync.Mutex
	dllPath   string
	modelPath string
}

func NewLoader(dllPath, modelPath string) *Loader {
	return &Loader{dllPath: dllPath, modelPath: modelPath}
}

// UpdatePaths drops the cached state and rebinds the configured paths so
// the next call reloads. Dropping waits for an in-flight call; the foreign
// model handle is released before the paths are rebound.
func (l *Loader) UpdatePaths(dllPath, modelPath string) {
	l.mu.Lock()
	if l.state != nil {
		l.state.drop()
		l.state = nil
	}
	l.mu.Unlock()

	l.pathMu.Lock()
	l.dllPath = dllPath
	l.modelPath = modelPath
	l.pathMu.Unlock()
}

func (l *Loader) paths() (string, string) {
	l.pathMu.Lock()
	defer l.pathMu.Unlock()
	return l.dllPath, l.modelPath
}

// Available reports whether both the resolved library and model files exist
// on disk. It never triggers a load and never touches the model lock, so it
// stays responsive during an in-flight transcription.
func (l *Loader) Available() bool {
	dll, model := l.paths()

	dllPath, err := resolveDLLPath(dll)
	if err != nil {
		return false
	}
	modelPath, err := resolveModelPath(model)
	if err != nil {
		return false
	}
	return fileExists(dllPath) && fileExists(modelPath)
}

// WithModel runs fn against the cached model, loading it first if needed.
// The model lock is held for the duration, so a path update waits for the
// in-flight call; callers must not hold any other shared lock here.
func (l *Loader) WithModel(fn func(*Model) error) error {
	dll, model := l.paths()

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureLoadedLocked(dll, model); err != nil {
		return err
	}
	return fn(l.state.model)
}

func (l *Loader) ensureLoadedLocked(dll, model string) error {
	dllPath, err := resolveDLLPath(dll)
	if err != nil {
		return errors.LoadErr(err, "resolve library path")
	}
	modelPath, err := resolveModelPath(model)
	if err != nil {
		return errors.LoadErr(err, "resolve model path")
	}

	fp := pathFingerprint(dllPath, modelPath)
	if l.state != nil {
		if l.state.fingerprint == fp {
			return nil
		}
		// Files changed on disk since the load; reload from scratch.
		log.Info().Msg("whisper library or model changed on disk, reloading")
		l.state.drop()
		l.state = nil
	}

	warnIfLowMemory(modelPath)

	log.Info().Str("path", dllPath).Msg("loading whisper library")
	lib, err := OpenLibrary(dllPath)
	if err != nil {
		return err
	}

	log.Info().Str("path", modelPath).Msg("loading whisper model")
	model, err := lib.LoadModel(modelPath, DefaultModelSetup())
	if err != nil {
		lib.Close()
		return err
	}
	log.Info().Msg("whisper model loaded")

	l.state = &loadedState{lib: lib, model: model, fingerprint: fp}
	return nil
}

func resolveDLLPath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	return DLLPath()
}

func resolveModelPath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	return ModelPath(DefaultModelFile)
}

// pathFingerprint hashes the identity, size and mtime of both files so a
// swapped-out model invalidates the cache on the next call.
func pathFingerprint(paths ...string) uint64 {
	h := xxhash.New()
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			fmt.Fprintf(h, "%s|%d|%d;", p, info.Size(), info.ModTime().UnixNano())
		} else {
			fmt.Fprintf(h, "%s|missing;", p)
		}
	}
	return h.Sum64()
}

func warnIfLowMemory(modelPath string) {
	info, err := os.Stat(modelPath)
	if err != nil {
		return
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return
	}
	if uint64(info.Size()) > vm.Available {
		log.Warn().
			Int64("model_bytes", info.Size()).
			Uint64("available_bytes", vm.Available).
			Msg("model is larger than available memory, load may fail")
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
