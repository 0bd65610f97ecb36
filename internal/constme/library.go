package constme

import (
	"os"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/sjroesink/whisper/internal/errors"
)

// loadModelExport is the undecorated export name; older library builds only
// ship the MSVC-decorated symbol, tried second.
const (
	loadModelExport  = "loadModel"
	loadModelMangled = "?loadModel@Whisper@@YAJPEBGAEBUsModelSetup@1@PEBUsLoadModelCallbacks@1@PEAPEAUiModel@1@@Z"
)

// Library is an opened copy of the native whisper library with its
// model-load entry point resolved.
type Library struct {
	handle    uintptr
	loadModel uintptr
}

// OpenLibrary loads the dynamic library and resolves the loadModel export,
// trying the plain name before the decorated fallback.
func OpenLibrary(path string) (*Library, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.LoadErr(err, "whisper library not found at %s", path)
	}

	handle, err := openLibrary(path)
	if err != nil {
		return nil, errors.LoadErr(err, "load whisper library %s", path)
	}

	sym, err := resolveSymbol(handle, loadModelExport)
	if err != nil {
		sym, err = resolveSymbol(handle, loadModelMangled)
		if err != nil {
			closeLibrary(handle)
			return nil, errors.LoadErr(err, "loadModel export not found in %s", path)
		}
	}

	return &Library{handle: handle, loadModel: sym}, nil
}

// LoadModel invokes the library's model-load entry point with a
// wide-character path and the given setup, wrapping the returned object in a
// model handle owned by the caller.
func (l *Library) LoadModel(modelPath string, setup ModelSetup) (*Model, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, errors.LoadErr(err, "model file not found at %s", modelPath)
	}

	wide := wideString(modelPath)
	var model uintptr
	r1, _, _ := purego.SyscallN(l.loadModel,
		uintptr(unsafe.Pointer(&wide[0])),
		uintptr(unsafe.Pointer(&setup)),
		0, // no load callbacks
		uintptr(unsafe.Pointer(&model)),
	)
	runtime.KeepAlive(wide)
	runtime.KeepAlive(&setup)

	if hr := int32(r1); hr < 0 {
		return nil, errors.LoadErr(errors.InferenceErr(hr, "loadModel"), "load whisper model %s", modelPath)
	}
	return newModel(model), nil
}

// Close unloads the library. Any model loaded from it must be released
// first.
func (l *Library) Close() {
	if l.handle != 0 {
		closeLibrary(l.handle)
		l.handle = 0
	}
}
