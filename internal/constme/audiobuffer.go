package constme

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// The host-side iAudioBuffer implementation. The library pulls PCM samples
// from it through the same vtable convention as its own objects, and manages
// its lifetime through AddRef/Release. The object stays valid until the
// reference count reaches zero, whether the last release comes from the host
// or from the library.

// audioBufferHeader is the C-visible part of the object: its first (and
// only) field is the vtable pointer, per the calling convention.
type audioBufferHeader struct {
	vtbl *audioBufferVtbl
}

type audioBufferVtbl struct {
	queryInterface uintptr
	addRef         uintptr
	release        uintptr
	countSamples   uintptr
	getPcmMono     uintptr
	getPcmStereo   uintptr
	getTime        uintptr
}

var (
	bufferVtblOnce sync.Once
	bufferVtbl     *audioBufferVtbl

	// bufferRegistry keeps every live buffer's Go memory reachable while
	// foreign code holds its pointer, and maps the this-pointer received in
	// callbacks back to the owning object.
	bufferMu       sync.Mutex
	bufferRegistry = map[uintptr]*AudioBuffer{}
)

// AudioBuffer owns a copy of canonical mono 16kHz samples and exposes it to
// the library as a reference-counted audio object.
type AudioBuffer struct {
	header  *audioBufferHeader
	samples []float32
	refs    uint32
}

// NewAudioBuffer wraps a copy of samples in a host audio object with an
// initial reference count of one, owned by the caller.
func NewAudioBuffer(samples []float32) *AudioBuffer {
	bufferVtblOnce.Do(initBufferVtbl)

	owned := make([]float32, len(samples))
	copy(owned, samples)

	b := &AudioBuffer{
		header:  &audioBufferHeader{vtbl: bufferVtbl},
		samples: owned,
		refs:    1,
	}
	bufferMu.Lock()
	bufferRegistry[uintptr(unsafe.Pointer(b.header))] = b
	bufferMu.Unlock()
	return b
}

// Ptr returns the opaque pointer handed to the library.
func (b *AudioBuffer) Ptr() uintptr {
	return uintptr(unsafe.Pointer(b.header))
}

// Release drops the caller's reference. The backing memory is freed when the
// count reaches zero, which may instead happen later via the library's own
// release call.
func (b *AudioBuffer) Release() uint32 {
	return releaseBuffer(b.Ptr())
}

// Alive reports whether the object has not yet been deallocated.
func (b *AudioBuffer) Alive() bool {
	bufferMu.Lock()
	defer bufferMu.Unlock()
	_, ok := bufferRegistry[uintptr(unsafe.Pointer(b.header))]
	return ok
}

// Refs returns the current reference count, zero once deallocated.
func (b *AudioBuffer) Refs() uint32 {
	bufferMu.Lock()
	defer bufferMu.Unlock()
	if live, ok := bufferRegistry[uintptr(unsafe.Pointer(b.header))]; ok {
		return live.refs
	}
	return 0
}

func initBufferVtbl() {
	bufferVtbl = &audioBufferVtbl{
		queryInterface: purego.NewCallback(func(this, riid, ppv uintptr) uintptr {
			// No secondary interfaces; the library uses the pointer it was
			// handed directly.
			return uintptr(uint32(eNoInterface))
		}),
		addRef: purego.NewCallback(func(this uintptr) uintptr {
			bufferMu.Lock()
			defer bufferMu.Unlock()
			b, ok := bufferRegistry[this]
			if !ok {
				return 0
			}
			b.refs++
			return uintptr(b.refs)
		}),
		release: purego.NewCallback(func(this uintptr) uintptr {
			return uintptr(releaseBuffer(this))
		}),
		countSamples: purego.NewCallback(func(this uintptr) uintptr {
			bufferMu.Lock()
			defer bufferMu.Unlock()
			if b, ok := bufferRegistry[this]; ok {
				return uintptr(len(b.samples))
			}
			return 0
		}),
		getPcmMono: purego.NewCallback(func(this uintptr) uintptr {
			bufferMu.Lock()
			defer bufferMu.Unlock()
			b, ok := bufferRegistry[this]
			if !ok || len(b.samples) == 0 {
				return 0
			}
			return uintptr(unsafe.Pointer(&b.samples[0]))
		}),
		getPcmStereo: purego.NewCallback(func(this uintptr) uintptr {
			// Only mono is ever supplied.
			return 0
		}),
		getTime: purego.NewCallback(func(this, rdi uintptr) uintptr {
			if rdi != 0 {
				*(*int64)(unsafe.Pointer(rdi)) = 0
			}
			return uintptr(uint32(sOK))
		}),
	}
}

func releaseBuffer(this uintptr) uint32 {
	bufferMu.Lock()
	defer bufferMu.Unlock()
	b, ok := bufferRegistry[this]
	if !ok || b.refs == 0 {
		return 0
	}
	b.refs--
	if b.refs == 0 {
		delete(bufferRegistry, this)
		return 0
	}
	return b.refs
}
