// Package constme bridges to the Const-me/Whisper native library, a
// GPU-accelerated (DirectCompute) whisper implementation exposed through
// lightweight COM-style interfaces: every object starts with a pointer to a
// function table whose first three slots are QueryInterface, AddRef and
// Release, followed by the object's own methods in declared order. Calls
// return an HRESULT-style signed 32-bit status where negative means failure.
package constme

import "unicode/utf16"

const (
	sOK          int32 = 0
	eNoInterface int32 = -2147467262 // E_NOINTERFACE
)

const ptrSize = 8 // the published interface targets 64-bit only

// Model execution modes for sModelSetup.
const (
	ImplGPU       int32 = 1
	ImplHybrid    int32 = 2
	ImplReference int32 = 3
)

// Sampling strategies for sFullParams.
const (
	StrategyGreedy     int32 = 0
	StrategyBeamSearch int32 = 1
)

// eFullParamsFlags bits used by this bridge.
const (
	FlagTranslate       uint32 = 0x1
	FlagPrintProgress   uint32 = 0x10
	FlagPrintRealtime   uint32 = 0x20
	FlagPrintTimestamps uint32 = 0x40
)

// noisyFlags are cleared before every run so the library does not write
// progress or timestamps to the console.
const noisyFlags = FlagPrintProgress | FlagPrintRealtime | FlagPrintTimestamps

const resultFlagsNone uint32 = 0

// ModelSetup mirrors sModelSetup. Chosen once per model load; changing it
// requires a reload.
type ModelSetup struct {
	Implementation int32
	Flags          uint32
	Adapter        uintptr // const wchar_t*, 0 selects the default adapter
}

// DefaultModelSetup selects the GPU implementation on the default adapter.
func DefaultModelSetup() ModelSetup {
	return ModelSetup{Implementation: ImplGPU}
}

// FullParams mirrors sFullParams byte for byte. Field order and size are an
// ABI invariant against the published interface version; see ffi_test.go.
type FullParams struct {
	Strategy   int32
	CPUThreads int32
	MaxTextCtx int32
	OffsetMS   int32
	DurationMS int32
	Flags      uint32
	Language   uint32

	// Experimental timestamp params.
	TholdPT    float32
	TholdPTSum float32
	MaxLen     int32
	MaxTokens  int32

	GreedyNPast int32

	BeamNPast int32
	BeamWidth int32
	BeamNBest int32

	AudioCtx int32

	PromptTokens     uintptr // const int32*
	PromptTokenCount int32
	pad0             int32

	NewSegmentCallback   uintptr
	NewSegmentUserData   uintptr
	EncoderBeginCallback uintptr
	EncoderBeginUserData uintptr
}

// transcribeLength mirrors sTranscribeLength.
type transcribeLength struct {
	CountSegments uint32
	CountTokens   uint32
}

// segmentRecord mirrors sSegment: a text pointer, a begin/end pair of
// 100-nanosecond tick counts and the token span.
type segmentRecord struct {
	Text        uintptr // const char*, null-terminated UTF-8
	TimeBegin   uint64
	TimeEnd     uint64
	FirstToken  uint32
	CountTokens uint32
}

// LanguageKey packs a 2-4 character ISO language code little-endian into the
// u32 selector field of sFullParams, one byte per character.
func LanguageKey(code string) uint32 {
	var key uint32
	for i := 0; i < len(code) && i < 4; i++ {
		key |= uint32(code[i]) << (i * 8)
	}
	return key
}

// wideString encodes s as a NUL-terminated UTF-16 sequence, the wchar_t
// convention the library's loadModel export expects.
func wideString(s string) []uint16 {
	encoded := utf16.Encode([]rune(s))
	return append(encoded, 0)
}
