package constme

import (
	"runtime"
	"strings"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/sjroesink/whisper/internal/errors"
)

// Vtable slot indices. Slots 0-2 are the universal QueryInterface / AddRef /
// Release triple; object-specific methods follow in declared order.
const (
	slotQueryInterface = 0
	slotAddRef         = 1
	slotRelease        = 2

	// iModel
	slotCreateContext = 3

	// iContext
	slotRunFull           = 3
	slotGetResults        = 6
	slotFullDefaultParams = 9

	// iTranscribeResult
	slotGetSize     = 3
	slotGetSegments = 4
)

// foreign wraps a raw pointer into externally owned, reference-counted
// memory. Release must be invoked exactly once; the zeroed pointer guards
// against a double release.
type foreign struct {
	ptr uintptr
}

func (f *foreign) slot(i int) uintptr {
	vtbl := *(*uintptr)(unsafe.Pointer(f.ptr))
	return *(*uintptr)(unsafe.Pointer(vtbl + uintptr(i)*ptrSize))
}

// call invokes a vtable slot with the object as the implicit first argument
// and interprets the return value as an HRESULT-style status.
func (f *foreign) call(slot int, args ...uintptr) int32 {
	full := append([]uintptr{f.ptr}, args...)
	r1, _, _ := purego.SyscallN(f.slot(slot), full...)
	return int32(r1)
}

// Release invokes the object's release slot. Safe to call more than once;
// only the first call reaches the library.
func (f *foreign) Release() {
	if f.ptr == 0 {
		return
	}
	fn := f.slot(slotRelease)
	ptr := f.ptr
	f.ptr = 0
	purego.SyscallN(fn, ptr)
}

// Model proxies an iModel object. A model outlives many transcription calls.
type Model struct {
	foreign
}

func newModel(ptr uintptr) *Model { return &Model{foreign{ptr: ptr}} }

// CreateContext obtains a fresh inference context. The returned handle is
// scoped to a single transcription call and owned by the caller.
func (m *Model) CreateContext() (*Context, error) {
	var ctx uintptr
	if hr := m.call(slotCreateContext, uintptr(unsafe.Pointer(&ctx))); hr < 0 {
		return nil, errors.InferenceErr(hr, "iModel::createContext")
	}
	return &Context{foreign{ptr: ctx}}, nil
}

// Context proxies an iContext object.
type Context struct {
	foreign
}

// DefaultParams fills a zero-initialized parameter block with the library's
// defaults for the given sampling strategy.
func (c *Context) DefaultParams(strategy int32) (FullParams, error) {
	var params FullParams
	hr := c.call(slotFullDefaultParams, uintptr(strategy), uintptr(unsafe.Pointer(&params)))
	runtime.KeepAlive(&params)
	if hr < 0 {
		return FullParams{}, errors.InferenceErr(hr, "iContext::fullDefaultParams")
	}
	return params, nil
}

// RunFull performs a blocking transcription of the audio object. The audio
// argument is the opaque pointer of a host audio buffer; the library pulls
// samples from it through its vtable and may retain references until the
// call returns. There is no cancellation of an in-flight run.
func (c *Context) RunFull(params *FullParams, audio uintptr) error {
	hr := c.call(slotRunFull, uintptr(unsafe.Pointer(params)), audio)
	runtime.KeepAlive(params)
	if hr < 0 {
		return errors.InferenceErr(hr, "iContext::runFull")
	}
	return nil
}

// Results wraps the transcription outcome in a result handle owned by the
// caller.
func (c *Context) Results() (*TranscribeResult, error) {
	var res uintptr
	if hr := c.call(slotGetResults, uintptr(resultFlagsNone), uintptr(unsafe.Pointer(&res))); hr < 0 {
		return nil, errors.InferenceErr(hr, "iContext::getResults")
	}
	return &TranscribeResult{foreign{ptr: res}}, nil
}

// TranscribeResult proxies an iTranscribeResult object.
type TranscribeResult struct {
	foreign
}

func (r *TranscribeResult) size() (transcribeLength, error) {
	var length transcribeLength
	hr := r.call(slotGetSize, uintptr(unsafe.Pointer(&length)))
	runtime.KeepAlive(&length)
	if hr < 0 {
		return transcribeLength{}, errors.InferenceErr(hr, "iTranscribeResult::getSize")
	}
	return length, nil
}

func (r *TranscribeResult) segments() uintptr {
	ptr, _, _ := purego.SyscallN(r.slot(slotGetSegments), r.ptr)
	return ptr
}

// Text concatenates all segment texts in order and trims surrounding
// whitespace. A null segment array or empty result yields an empty string.
func (r *TranscribeResult) Text() (string, error) {
	length, err := r.size()
	if err != nil {
		return "", err
	}
	base := r.segments()
	if base == 0 || length.CountSegments == 0 {
		return "", nil
	}

	var b strings.Builder
	recSize := unsafe.Sizeof(segmentRecord{})
	for i := uintptr(0); i < uintptr(length.CountSegments); i++ {
		rec := (*segmentRecord)(unsafe.Pointer(base + i*recSize))
		if rec.Text != 0 {
			b.WriteString(goString(rec.Text))
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// goString copies a null-terminated UTF-8 span out of foreign memory.
func goString(ptr uintptr) string {
	var n uintptr
	for *(*byte)(unsafe.Pointer(ptr + n)) != 0 {
		n++
	}
	if n == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(ptr)), n))
}
