package constme

import (
	"testing"
	"unicode/utf16"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

// The parameter block is consumed byte for byte by the library; any drift in
// field order or padding corrupts the call.
func TestFullParamsLayout(t *testing.T) {
	var p FullParams

	assert.Equal(t, uintptr(112), unsafe.Sizeof(p))

	assert.Equal(t, uintptr(0), unsafe.Offsetof(p.Strategy))
	assert.Equal(t, uintptr(20), unsafe.Offsetof(p.Flags))
	assert.Equal(t, uintptr(24), unsafe.Offsetof(p.Language))
	assert.Equal(t, uintptr(60), unsafe.Offsetof(p.AudioCtx))
	assert.Equal(t, uintptr(64), unsafe.Offsetof(p.PromptTokens))
	assert.Equal(t, uintptr(72), unsafe.Offsetof(p.PromptTokenCount))
	assert.Equal(t, uintptr(80), unsafe.Offsetof(p.NewSegmentCallback))
	assert.Equal(t, uintptr(96), unsafe.Offsetof(p.EncoderBeginCallback))
	assert.Equal(t, uintptr(104), unsafe.Offsetof(p.EncoderBeginUserData))
}

func TestSegmentRecordLayout(t *testing.T) {
	var s segmentRecord

	assert.Equal(t, uintptr(32), unsafe.Sizeof(s))
	assert.Equal(t, uintptr(8), unsafe.Offsetof(s.TimeBegin))
	assert.Equal(t, uintptr(16), unsafe.Offsetof(s.TimeEnd))
	assert.Equal(t, uintptr(24), unsafe.Offsetof(s.FirstToken))
}

func TestLanguageKey(t *testing.T) {
	assert.Equal(t, uint32(0x6E65), LanguageKey("en"))
	assert.Equal(t, uint32(0x6C6E), LanguageKey("nl"))
	assert.Equal(t, uint32(0), LanguageKey(""))
	// longer codes pack at most four bytes
	assert.Equal(t, uint32(0x6F747561), LanguageKey("auto"))
	assert.Equal(t, LanguageKey("auto"), LanguageKey("autox"))
}

func TestWideString(t *testing.T) {
	w := wideString("C:\\models\\ggml.bin")
	assert.Equal(t, uint16(0), w[len(w)-1])
	decoded := string(utf16.Decode(w[:len(w)-1]))
	assert.Equal(t, "C:\\models\\ggml.bin", decoded)
}

func TestDefaultModelSetup(t *testing.T) {
	setup := DefaultModelSetup()
	assert.Equal(t, ImplGPU, setup.Implementation)
	assert.Equal(t, uint32(0), setup.Flags)
	assert.Equal(t, uintptr(0), setup.Adapter)
}
