package constme

import (
	"testing"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The library side of the contract is exercised by invoking the vtable
// function pointers the way foreign code would.
func callSlot(fn uintptr, args ...uintptr) uintptr {
	r1, _, _ := purego.SyscallN(fn, args...)
	return r1
}

func TestAudioBufferLifecycle(t *testing.T) {
	b := NewAudioBuffer([]float32{0.1, 0.2, 0.3})
	require.True(t, b.Alive())
	assert.Equal(t, uint32(1), b.Refs())

	// the library takes its own reference during a call
	callSlot(b.header.vtbl.addRef, b.Ptr())
	assert.Equal(t, uint32(2), b.Refs())

	// host drops its reference first; the object survives
	b.Release()
	assert.True(t, b.Alive())
	assert.Equal(t, uint32(1), b.Refs())

	// the library's final release deallocates
	callSlot(b.header.vtbl.release, b.Ptr())
	assert.False(t, b.Alive())
	assert.Equal(t, uint32(0), b.Refs())
}

func TestAudioBufferHostLastReference(t *testing.T) {
	b := NewAudioBuffer([]float32{0.5})

	callSlot(b.header.vtbl.addRef, b.Ptr())
	callSlot(b.header.vtbl.release, b.Ptr())
	require.True(t, b.Alive())

	b.Release()
	assert.False(t, b.Alive())
}

func TestAudioBufferReleaseAfterDeallocIsNoop(t *testing.T) {
	b := NewAudioBuffer([]float32{1})
	b.Release()
	require.False(t, b.Alive())

	// further releases from either side must not underflow or panic
	assert.Equal(t, uint32(0), b.Release())
	assert.Equal(t, uintptr(0), callSlot(b.header.vtbl.release, b.Ptr()))
}

func TestAudioBufferSampleAccess(t *testing.T) {
	samples := []float32{0.25, -0.5, 0.75, 1.0}
	b := NewAudioBuffer(samples)
	defer b.Release()

	count := callSlot(b.header.vtbl.countSamples, b.Ptr())
	assert.Equal(t, uintptr(len(samples)), count)

	mono := callSlot(b.header.vtbl.getPcmMono, b.Ptr())
	require.NotZero(t, mono)
	got := unsafe.Slice((*float32)(unsafe.Pointer(mono)), len(samples))
	assert.Equal(t, samples, []float32(got))

	// the object owns a copy; mutating the input does not affect it
	samples[0] = 9
	assert.Equal(t, float32(0.25), got[0])

	stereo := callSlot(b.header.vtbl.getPcmStereo, b.Ptr())
	assert.Zero(t, stereo)

	var ticks int64 = -1
	hr := callSlot(b.header.vtbl.getTime, b.Ptr(), uintptr(unsafe.Pointer(&ticks)))
	assert.Equal(t, uintptr(uint32(sOK)), hr)
	assert.Equal(t, int64(0), ticks)
}

func TestAudioBufferQueryInterfaceRefused(t *testing.T) {
	b := NewAudioBuffer([]float32{0})
	defer b.Release()

	hr := callSlot(b.header.vtbl.queryInterface, b.Ptr(), 0, 0)
	assert.Equal(t, uintptr(uint32(eNoInterface)), hr)
}
